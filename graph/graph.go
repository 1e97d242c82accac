// Package graph assembles the resource dependency graph for one analysis
// run.
package graph

import (
	"sort"

	"github.com/cloudleakage/cloudleakage/resource"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/multi"
	"gonum.org/v1/gonum/graph/topo"
)

// A Graph holds resource nodes, synthetic module nodes and the dependency
// edges between them. The graph is assembled once per analysis run and not
// mutated afterwards.
//
// The Graph should be created with New() or Build().
type Graph struct {
	*multi.DirectedGraph
	resources map[string]*ResourceNode
	modules   map[string]*ModuleNode
}

// New creates a new empty graph.
func New() *Graph {
	return &Graph{
		DirectedGraph: multi.NewDirectedGraph(),
		resources:     make(map[string]*ResourceNode),
		modules:       make(map[string]*ModuleNode),
	}
}

// Build assembles a graph from normalized resources and resolved edges.
//
// Self edges and duplicate (from, to, reason) triples are dropped. An edge
// endpoint that does not name a resource refers to a synthetic module
// boundary node, which is created on first use.
func Build(resources []*resource.Resource, edges []Edge) *Graph {
	g := New()
	for _, r := range resources {
		g.AddResource(r)
	}
	seen := make(map[Edge]struct{}, len(edges))
	for _, e := range edges {
		if e.From == e.To {
			continue
		}
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		g.SetLine(&depLine{
			Line: g.NewLine(g.node(e.From), g.node(e.To)),
			edge: e,
		})
	}
	return g
}

// AddResource adds a node for a resource instance.
func (g *Graph) AddResource(res *resource.Resource) *ResourceNode {
	n := &ResourceNode{
		id:       g.NewNode().ID(),
		Resource: res,
	}
	g.AddNode(n)
	g.resources[res.ID] = n
	return n
}

// Module returns the synthetic node for a module path, creating it on first
// use.
func (g *Graph) Module(path string) *ModuleNode {
	if n, ok := g.modules[path]; ok {
		return n
	}
	n := &ModuleNode{
		id:   g.NewNode().ID(),
		Path: path,
	}
	g.AddNode(n)
	g.modules[path] = n
	return n
}

// Resource returns the node for a canonical resource address.
func (g *Graph) Resource(id string) (*ResourceNode, bool) {
	n, ok := g.resources[id]
	return n, ok
}

func (g *Graph) node(id string) graph.Node {
	if n, ok := g.resources[id]; ok {
		return n
	}
	return g.Module(id)
}

// HasCycles reports whether the graph contains a dependency cycle. Cycles
// are a legitimate possibility in state documents and do not fail analysis.
func (g *Graph) HasCycles() bool {
	for _, scc := range topo.TarjanSCC(g) {
		if len(scc) > 1 {
			return true
		}
	}
	return false
}

// A Degree holds connectivity counts for one node.
type Degree struct {
	In  int
	Out int
}

// Degrees returns the number of distinct predecessor and successor nodes
// per node id. The counts are derived data, recomputed on every call.
func (g *Graph) Degrees() map[string]Degree {
	degrees := make(map[string]Degree)
	it := g.Nodes()
	for it.Next() {
		n := it.Node()
		degrees[NodeID(n)] = Degree{
			In:  count(g.To(n.ID())),
			Out: count(g.From(n.ID())),
		}
	}
	return degrees
}

// ModuleGroups returns resource ids grouped by module path. Each group is
// sorted.
func (g *Graph) ModuleGroups() map[string][]string {
	groups := make(map[string][]string)
	for id, n := range g.resources {
		groups[n.Resource.Module] = append(groups[n.Resource.Module], id)
	}
	for _, ids := range groups {
		sort.Strings(ids)
	}
	return groups
}

func count(it graph.Nodes) int {
	n := 0
	for it.Next() {
		n++
	}
	return n
}
