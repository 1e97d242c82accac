package export

import (
	"github.com/cloudleakage/cloudleakage/graph"
	"gonum.org/v1/gonum/graph/encoding/dot"
)

// DOT renders the graph in graphviz dot format.
func DOT(g *graph.Graph) ([]byte, error) {
	return dot.MarshalMulti(g, "state", "", "  ")
}
