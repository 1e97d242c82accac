package graph

import (
	"fmt"

	"github.com/cloudleakage/cloudleakage/resource"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
)

// A ResourceNode is a node for one resource instance.
type ResourceNode struct {
	id       int64
	Resource *resource.Resource
}

// ID returns the unique identifier for a resource node.
func (n *ResourceNode) ID() int64 { return n.id }

// DOTID returns the node name when the graph is marshalled to graphviz dot
// format.
func (n *ResourceNode) DOTID() string { return n.Resource.ID }

// Attributes returns attributes for the node when the graph is marshalled
// to graphviz dot format.
func (n *ResourceNode) Attributes() []encoding.Attribute {
	return []encoding.Attribute{
		{Key: "label", Value: fmt.Sprintf("%s\n%s", n.Resource.Mode, n.Resource.DisplayName)},
		{Key: "shape", Value: "box"},
	}
}

// A ModuleNode is a synthetic node representing a module boundary. Module
// nodes group the resources contained in the module and are never the
// source of a dependency.
type ModuleNode struct {
	id   int64
	Path string
}

// ID returns the unique identifier for a module node.
func (n *ModuleNode) ID() int64 { return n.id }

// DOTID returns the node name when the graph is marshalled to graphviz dot
// format.
func (n *ModuleNode) DOTID() string { return n.Path }

// Attributes returns attributes for the node when the graph is marshalled
// to graphviz dot format.
func (n *ModuleNode) Attributes() []encoding.Attribute {
	return []encoding.Attribute{
		{Key: "label", Value: fmt.Sprintf("module\n%s", resource.ModuleLabel(n.Path))},
		{Key: "shape", Value: "folder"},
	}
}

// NodeID returns the stable string id for a node in the graph.
func NodeID(n graph.Node) string {
	switch n := n.(type) {
	case *ResourceNode:
		return n.Resource.ID
	case *ModuleNode:
		return n.Path
	}
	return ""
}
