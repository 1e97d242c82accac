package graph

import (
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/multi"
)

// A Reason classifies why an edge exists.
type Reason string

// Valid edge reasons:
const (
	// ReasonExplicit marks an edge declared in a resource's depends_on
	// list.
	ReasonExplicit Reason = "explicit-depends-on"

	// ReasonReference marks an edge inferred from an attribute value
	// containing another resource's address.
	ReasonReference Reason = "attribute-reference"

	// ReasonContainment marks an edge linking a resource or module to the
	// module containing it. Containment is presentation structure, not a
	// dependency.
	ReasonContainment Reason = "module-containment"
)

// An Edge is one directed relation between two node ids.
//
// Multiple edges between the same pair with different reasons are distinct;
// duplicate triples collapse when the graph is built.
type Edge struct {
	From   string
	To     string
	Reason Reason
}

type depLine struct {
	graph.Line
	edge Edge
}

// EdgeList returns every edge in the graph as (from, to, reason) triples.
//
// The order of the returned results is not deterministic.
func (g *Graph) EdgeList() []Edge {
	var list []Edge
	it := g.Edges()
	for it.Next() {
		e, ok := it.Edge().(multi.Edge)
		if !ok {
			continue
		}
		for e.Lines.Next() {
			if l, ok := e.Lines.Line().(*depLine); ok {
				list = append(list, l.edge)
			}
		}
	}
	return list
}
