// Package analysis turns raw Terraform state documents into dependency
// graph payloads.
//
// The pipeline is pure: bytes go in, a payload comes out. It performs no
// I/O, reads no environment and keeps no state across invocations, so a
// single Analyzer may serve concurrent requests without coordination.
package analysis

import (
	"github.com/cloudleakage/cloudleakage/graph"
	"github.com/cloudleakage/cloudleakage/graph/export"
	"github.com/cloudleakage/cloudleakage/resource"
	"github.com/cloudleakage/cloudleakage/tfstate"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Defaults for Limits fields left at zero.
const (
	DefaultMaxBytes     = 32 << 20
	DefaultMaxResources = 10000
	DefaultMaxDepth     = 64
)

// Limits bound the work one analysis run may do. Pathological documents
// (very deep nesting, very large instance counts) fail with
// InputTooComplex instead of consuming unbounded time or stack.
type Limits struct {
	// MaxBytes caps the input document size.
	MaxBytes int

	// MaxResources caps the number of resource instances.
	MaxResources int

	// MaxDepth caps attribute nesting during reference scanning.
	MaxDepth int
}

func (l Limits) withDefaults() Limits {
	if l.MaxBytes == 0 {
		l.MaxBytes = DefaultMaxBytes
	}
	if l.MaxResources == 0 {
		l.MaxResources = DefaultMaxResources
	}
	if l.MaxDepth == 0 {
		l.MaxDepth = DefaultMaxDepth
	}
	return l
}

// An Analyzer runs the analysis pipeline. The zero value is ready to use
// and safe for concurrent use.
type Analyzer struct {
	// Logger logs run statistics at debug level. No-op when nil.
	Logger *zap.Logger

	// Limits bound accepted input. Zero value fields use the package
	// defaults.
	Limits Limits
}

// Analyze parses the raw bytes of a state document and produces the
// dependency graph payload.
//
// Terminal failures are returned as *Error carrying the failure kind; no
// partial payload accompanies them. Dangling references are reported in the
// payload's warnings and never fail the run.
func (a *Analyzer) Analyze(src []byte) (*export.Payload, error) {
	logger := a.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	limits := a.Limits.withDefaults()

	if len(src) > limits.MaxBytes {
		return nil, &Error{
			Kind: InputTooComplex,
			Err:  errors.Errorf("document size %d exceeds limit %d", len(src), limits.MaxBytes),
		}
	}

	doc, err := tfstate.Read(src)
	if err != nil {
		if _, ok := err.(*tfstate.UnsupportedVersionError); ok {
			return nil, &Error{Kind: UnsupportedFormatVersion, Err: err}
		}
		return nil, &Error{Kind: MalformedInput, Err: err}
	}

	resources, table, err := Normalize(doc)
	if err != nil {
		if _, ok := errors.Cause(err).(*resource.DuplicateAddressError); ok {
			return nil, &Error{Kind: DuplicateAddress, Err: err}
		}
		return nil, &Error{Kind: MalformedInput, Err: err}
	}
	if len(resources) > limits.MaxResources {
		return nil, &Error{
			Kind: InputTooComplex,
			Err:  errors.Errorf("%d resources exceed limit %d", len(resources), limits.MaxResources),
		}
	}

	edges, warnings, err := Resolve(resources, table, limits.MaxDepth)
	if err != nil {
		return nil, &Error{Kind: InputTooComplex, Err: err}
	}

	payload := export.FromGraph(graph.Build(resources, edges), warnings)

	logger.Debug("Analysis complete",
		zap.Int("resources", len(resources)),
		zap.Int("nodes", len(payload.Nodes)),
		zap.Int("edges", len(payload.Edges)),
		zap.Int("warnings", len(payload.Warnings)),
		zap.Bool("cycles", payload.HasCycles),
	)
	return payload, nil
}
