package analysis_test

import (
	"testing"

	"github.com/cloudleakage/cloudleakage/analysis"
	"github.com/cloudleakage/cloudleakage/graph"
	"github.com/cloudleakage/cloudleakage/graph/export"
	"github.com/cloudleakage/cloudleakage/resource"
	"github.com/cloudleakage/cloudleakage/tfstate"
	"github.com/google/go-cmp/cmp"
)

func mustResources(t *testing.T, src string) ([]*resource.Resource, *resource.Table) {
	t.Helper()
	doc, err := tfstate.Read([]byte(src))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	resources, table, err := analysis.Normalize(doc)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}
	return resources, table
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name         string
		src          string
		wantEdges    []graph.Edge
		wantWarnings []export.Warning
	}{
		{
			name: "ExplicitDependency",
			src: `{
				"version": 4,
				"resources": [
					{"mode": "managed", "type": "aws_instance", "name": "web", "instances": [
						{"attributes": {}, "dependencies": ["aws_security_group.sg"]}
					]},
					{"mode": "managed", "type": "aws_security_group", "name": "sg", "instances": [{"attributes": {}}]}
				]
			}`,
			wantEdges: []graph.Edge{
				{From: "root.aws_instance.web", To: "root.aws_security_group.sg", Reason: graph.ReasonExplicit},
			},
		},
		{
			name: "ExplicitFanOutToInstances",
			src: `{
				"version": 4,
				"resources": [
					{"mode": "managed", "type": "aws_instance", "name": "web", "instances": [
						{"attributes": {}, "dependencies": ["aws_subnet.a"]}
					]},
					{"mode": "managed", "type": "aws_subnet", "name": "a", "instances": [
						{"index_key": 0, "attributes": {}},
						{"index_key": 1, "attributes": {}}
					]}
				]
			}`,
			wantEdges: []graph.Edge{
				{From: "root.aws_instance.web", To: "root.aws_subnet.a[0]", Reason: graph.ReasonExplicit},
				{From: "root.aws_instance.web", To: "root.aws_subnet.a[1]", Reason: graph.ReasonExplicit},
			},
		},
		{
			name: "DanglingDependency",
			src: `{
				"version": 4,
				"resources": [
					{"mode": "managed", "type": "aws_instance", "name": "web", "instances": [
						{"attributes": {}, "dependencies": ["aws_security_group.missing"]}
					]}
				]
			}`,
			wantWarnings: []export.Warning{
				{Kind: export.DanglingReference, Detail: "root.aws_instance.web: aws_security_group.missing"},
			},
		},
		{
			name: "AttributeReference",
			src: `{
				"version": 4,
				"resources": [
					{"mode": "managed", "type": "aws_instance", "name": "web", "instances": [
						{"attributes": {"security_groups": ["aws_security_group.sg"]}}
					]},
					{"mode": "managed", "type": "aws_security_group", "name": "sg", "instances": [{"attributes": {}}]}
				]
			}`,
			wantEdges: []graph.Edge{
				{From: "root.aws_instance.web", To: "root.aws_security_group.sg", Reason: graph.ReasonReference},
			},
		},
		{
			name: "NestedAttributeReference",
			src: `{
				"version": 4,
				"resources": [
					{"mode": "managed", "type": "aws_instance", "name": "web", "instances": [
						{"attributes": {"network": {"interfaces": [{"note": "uses ${aws_security_group.sg.id} here"}]}}}
					]},
					{"mode": "managed", "type": "aws_security_group", "name": "sg", "instances": [{"attributes": {}}]}
				]
			}`,
			wantEdges: []graph.Edge{
				{From: "root.aws_instance.web", To: "root.aws_security_group.sg", Reason: graph.ReasonReference},
			},
		},
		{
			name: "NoPartialTokenMatch",
			src: `{
				"version": 4,
				"resources": [
					{"mode": "managed", "type": "aws_instance", "name": "web", "instances": [
						{"attributes": {"a": "aws_security_group.sg2", "b": "xaws_security_group.sg"}}
					]},
					{"mode": "managed", "type": "aws_security_group", "name": "sg", "instances": [{"attributes": {}}]}
				]
			}`,
		},
		{
			name: "SelfReferenceDiscarded",
			src: `{
				"version": 4,
				"resources": [
					{"mode": "managed", "type": "aws_instance", "name": "web", "instances": [
						{"attributes": {"tag": "aws_instance.web"}, "dependencies": ["aws_instance.web"]}
					]}
				]
			}`,
		},
		{
			name: "ModuleContainmentChain",
			src: `{
				"version": 4,
				"resources": [
					{"module": "module.a.module.b", "mode": "managed", "type": "aws_vpc", "name": "main", "instances": [
						{"attributes": {}}
					]}
				]
			}`,
			wantEdges: []graph.Edge{
				{From: "module.a.module.b.aws_vpc.main", To: "module.a.module.b", Reason: graph.ReasonContainment},
				{From: "module.a.module.b", To: "module.a", Reason: graph.ReasonContainment},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resources, table := mustResources(t, tt.src)
			edges, warnings, err := analysis.Resolve(resources, table, analysis.DefaultMaxDepth)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if diff := cmp.Diff(edges, tt.wantEdges, sortEdges(), equateEmpty()); diff != "" {
				t.Errorf("Resolve() edges (-got, +want)\n%s", diff)
			}
			if diff := cmp.Diff(warnings, tt.wantWarnings, equateEmpty()); diff != "" {
				t.Errorf("Resolve() warnings (-got, +want)\n%s", diff)
			}
		})
	}
}

func TestResolve_depthLimit(t *testing.T) {
	resources, table := mustResources(t, `{
		"version": 4,
		"resources": [
			{"mode": "managed", "type": "aws_instance", "name": "web", "instances": [
				{"attributes": {"a": {"b": {"c": {"d": "deep"}}}}}
			]}
		]
	}`)
	if _, _, err := analysis.Resolve(resources, table, 2); err == nil {
		t.Error("Resolve() expected depth error, got nil")
	}
	if _, _, err := analysis.Resolve(resources, table, analysis.DefaultMaxDepth); err != nil {
		t.Errorf("Resolve() error = %v", err)
	}
}
