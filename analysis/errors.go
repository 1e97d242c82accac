package analysis

import (
	"fmt"

	"github.com/pkg/errors"
)

// A Kind classifies a terminal analysis failure.
type Kind string

// Failure kinds:
const (
	// MalformedInput marks input that is not a well formed state document.
	MalformedInput Kind = "malformed-input"

	// UnsupportedFormatVersion marks a document with a missing or
	// unsupported state format version.
	UnsupportedFormatVersion Kind = "unsupported-format-version"

	// DuplicateAddress marks a document in which two resources derive the
	// same address.
	DuplicateAddress Kind = "duplicate-address"

	// InputTooComplex marks input that exceeds the configured size,
	// resource count or nesting limits.
	InputTooComplex Kind = "input-too-complex"
)

// An Error is a terminal analysis failure. No partial result accompanies an
// Error.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

// Cause returns the underlying error.
func (e *Error) Cause() error { return e.Err }

// KindOf returns the failure kind of an error returned from Analyze. Returns
// an empty kind for errors that are not analysis failures.
func KindOf(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	if e, ok := errors.Cause(err).(*Error); ok {
		return e.Kind
	}
	return ""
}
