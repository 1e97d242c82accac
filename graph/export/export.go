// Package export serializes analysis graphs into the interchange payload
// consumed by visualization and storage layers.
package export

import (
	"sort"

	"github.com/cloudleakage/cloudleakage/graph"
	"github.com/cloudleakage/cloudleakage/resource"
)

// ModuleKind is the node kind for synthetic module boundary nodes.
const ModuleKind = "module"

// DanglingReference is the warning kind for explicit dependency addresses
// that do not resolve to any resource in the document.
const DanglingReference = "DanglingReference"

// A Payload is the serialized result of one analysis run.
type Payload struct {
	Nodes     []Node    `json:"nodes"`
	Edges     []Edge    `json:"edges"`
	Warnings  []Warning `json:"warnings"`
	HasCycles bool      `json:"hasCycles"`
}

// A Node describes one graph node.
type Node struct {
	ID     string `json:"id"`
	Label  string `json:"label"`
	Kind   string `json:"kind"`
	Module string `json:"module"`
}

// An Edge describes one directed edge.
type Edge struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason"`
}

// A Warning is a non-fatal finding collected during analysis.
type Warning struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

// FromGraph builds the payload for a graph.
//
// The output order is deterministic: nodes sort by id, edges by from, to and
// reason, warnings by kind and detail with exact duplicates collapsed.
// Analyzing an unchanged document therefore marshals to identical bytes.
func FromGraph(g *graph.Graph, warnings []Warning) *Payload {
	p := &Payload{
		Nodes:     make([]Node, 0, g.Nodes().Len()),
		Edges:     make([]Edge, 0),
		Warnings:  make([]Warning, 0, len(warnings)),
		HasCycles: g.HasCycles(),
	}

	it := g.Nodes()
	for it.Next() {
		switch n := it.Node().(type) {
		case *graph.ResourceNode:
			r := n.Resource
			p.Nodes = append(p.Nodes, Node{
				ID:     r.ID,
				Label:  r.DisplayName,
				Kind:   r.Kind,
				Module: r.Module,
			})
		case *graph.ModuleNode:
			p.Nodes = append(p.Nodes, Node{
				ID:     n.Path,
				Label:  resource.ModuleLabel(n.Path),
				Kind:   ModuleKind,
				Module: resource.ParentModule(n.Path),
			})
		}
	}
	sort.Slice(p.Nodes, func(i, j int) bool { return p.Nodes[i].ID < p.Nodes[j].ID })

	for _, e := range g.EdgeList() {
		p.Edges = append(p.Edges, Edge{From: e.From, To: e.To, Reason: string(e.Reason)})
	}
	sort.Slice(p.Edges, func(i, j int) bool {
		a, b := p.Edges[i], p.Edges[j]
		if a.From != b.From {
			return a.From < b.From
		}
		if a.To != b.To {
			return a.To < b.To
		}
		return a.Reason < b.Reason
	})

	seen := make(map[Warning]struct{}, len(warnings))
	for _, w := range warnings {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		p.Warnings = append(p.Warnings, w)
	}
	sort.Slice(p.Warnings, func(i, j int) bool {
		a, b := p.Warnings[i], p.Warnings[j]
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Detail < b.Detail
	})

	return p
}
