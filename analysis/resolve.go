package analysis

import (
	"strings"

	"github.com/cloudleakage/cloudleakage/graph"
	"github.com/cloudleakage/cloudleakage/graph/export"
	"github.com/cloudleakage/cloudleakage/resource"
)

// Resolve infers the edge set for a normalized resource list.
//
// Explicit depends_on entries and scanned attribute references resolve
// through the lookup table; resources inside modules gain containment edges
// to synthetic module nodes. Unresolvable depends_on entries are collected
// as DanglingReference warnings, never edges. Self references are
// discarded.
//
// The result depends only on document order, never on map iteration order.
func Resolve(resources []*resource.Resource, table *resource.Table, maxDepth int) ([]graph.Edge, []export.Warning, error) {
	var edges []graph.Edge
	var warnings []export.Warning

	for _, r := range resources {
		for _, raw := range r.DependsOn {
			addr := strings.TrimSpace(raw)
			ids := table.Resolve(addr)
			if len(ids) == 0 {
				warnings = append(warnings, export.Warning{
					Kind:   export.DanglingReference,
					Detail: r.ID + ": " + addr,
				})
				continue
			}
			for _, id := range ids {
				if id == r.ID {
					continue
				}
				edges = append(edges, graph.Edge{From: r.ID, To: id, Reason: graph.ReasonExplicit})
			}
		}

		sc := newScanner(table, maxDepth)
		if err := sc.value(r.Attributes, 0); err != nil {
			return nil, nil, err
		}
		for _, id := range sc.hits {
			if id == r.ID {
				continue
			}
			edges = append(edges, graph.Edge{From: r.ID, To: id, Reason: graph.ReasonReference})
		}
	}

	edges = append(edges, containment(resources)...)
	return edges, warnings, nil
}

// containment links resources to the module containing them, and nested
// module nodes up the module hierarchy.
func containment(resources []*resource.Resource) []graph.Edge {
	var edges []graph.Edge
	seen := make(map[string]struct{})
	var modules []string
	for _, r := range resources {
		if r.Module == resource.RootModule {
			continue
		}
		edges = append(edges, graph.Edge{From: r.ID, To: r.Module, Reason: graph.ReasonContainment})
		if _, ok := seen[r.Module]; !ok {
			seen[r.Module] = struct{}{}
			modules = append(modules, r.Module)
		}
	}
	for i := 0; i < len(modules); i++ {
		parent := resource.ParentModule(modules[i])
		if parent == resource.RootModule {
			continue
		}
		edges = append(edges, graph.Edge{From: modules[i], To: parent, Reason: graph.ReasonContainment})
		if _, ok := seen[parent]; !ok {
			seen[parent] = struct{}{}
			modules = append(modules, parent)
		}
	}
	return edges
}
