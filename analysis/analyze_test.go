package analysis_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/cloudleakage/cloudleakage/analysis"
	"github.com/cloudleakage/cloudleakage/graph"
	"github.com/cloudleakage/cloudleakage/graph/export"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/pkg/errors"
	"go.uber.org/zap/zaptest"
)

func sortEdges() cmp.Option {
	return cmpopts.SortSlices(func(a, b graph.Edge) bool {
		if a.From != b.From {
			return a.From < b.From
		}
		if a.To != b.To {
			return a.To < b.To
		}
		return a.Reason < b.Reason
	})
}

func equateEmpty() cmp.Option { return cmpopts.EquateEmpty() }

func TestAnalyze(t *testing.T) {
	a := &analysis.Analyzer{Logger: zaptest.NewLogger(t)}
	got, err := a.Analyze([]byte(`{
		"version": 4,
		"terraform_version": "0.12.6",
		"resources": [
			{"mode": "managed", "type": "aws_instance", "name": "web", "instances": [
				{"attributes": {"id": "i-1", "security_groups": ["aws_security_group.sg"]}}
			]},
			{"mode": "managed", "type": "aws_security_group", "name": "sg", "instances": [
				{"attributes": {"id": "sg-1"}}
			]}
		]
	}`))
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	want := &export.Payload{
		Nodes: []export.Node{
			{ID: "root.aws_instance.web", Label: "aws_instance.web", Kind: "aws_instance", Module: "root"},
			{ID: "root.aws_security_group.sg", Label: "aws_security_group.sg", Kind: "aws_security_group", Module: "root"},
		},
		Edges: []export.Edge{
			{From: "root.aws_instance.web", To: "root.aws_security_group.sg", Reason: string(graph.ReasonReference)},
		},
		Warnings: []export.Warning{},
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Analyze() (-got, +want)\n%s", diff)
	}
}

func TestAnalyze_modules(t *testing.T) {
	a := &analysis.Analyzer{}
	got, err := a.Analyze([]byte(`{
		"version": 4,
		"resources": [
			{"module": "module.network", "mode": "managed", "type": "aws_vpc", "name": "main", "instances": [
				{"attributes": {"id": "vpc-1"}}
			]},
			{"mode": "managed", "type": "aws_subnet", "name": "a", "instances": [
				{"attributes": {"vpc_id": "${module.network.aws_vpc.main.id}"}}
			]}
		]
	}`))
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	want := &export.Payload{
		Nodes: []export.Node{
			{ID: "module.network", Label: "network", Kind: export.ModuleKind, Module: "root"},
			{ID: "module.network.aws_vpc.main", Label: "aws_vpc.main", Kind: "aws_vpc", Module: "module.network"},
			{ID: "root.aws_subnet.a", Label: "aws_subnet.a", Kind: "aws_subnet", Module: "root"},
		},
		Edges: []export.Edge{
			{From: "module.network.aws_vpc.main", To: "module.network", Reason: string(graph.ReasonContainment)},
			{From: "root.aws_subnet.a", To: "module.network.aws_vpc.main", Reason: string(graph.ReasonReference)},
		},
		Warnings: []export.Warning{},
	}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Errorf("Analyze() (-got, +want)\n%s", diff)
	}
}

func TestAnalyze_danglingDependency(t *testing.T) {
	a := &analysis.Analyzer{}
	got, err := a.Analyze([]byte(`{
		"version": 4,
		"resources": [
			{"mode": "managed", "type": "aws_instance", "name": "web", "instances": [
				{"attributes": {}, "dependencies": ["aws_security_group.missing"]}
			]}
		]
	}`))
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(got.Edges) != 0 {
		t.Errorf("Edges = %v, want none", got.Edges)
	}
	want := []export.Warning{
		{Kind: export.DanglingReference, Detail: "root.aws_instance.web: aws_security_group.missing"},
	}
	if diff := cmp.Diff(got.Warnings, want); diff != "" {
		t.Errorf("Warnings (-got, +want)\n%s", diff)
	}
}

func TestAnalyze_selfReference(t *testing.T) {
	a := &analysis.Analyzer{}
	got, err := a.Analyze([]byte(`{
		"version": 4,
		"resources": [
			{"mode": "managed", "type": "aws_instance", "name": "web", "instances": [
				{"attributes": {"tag": "aws_instance.web"}, "dependencies": ["aws_instance.web"]}
			]}
		]
	}`))
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(got.Edges) != 0 {
		t.Errorf("Edges = %v, want none", got.Edges)
	}
	if len(got.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", got.Warnings)
	}
}

func TestAnalyze_explicitRoundTrip(t *testing.T) {
	a := &analysis.Analyzer{}
	got, err := a.Analyze([]byte(`{
		"version": 4,
		"resources": [
			{"mode": "managed", "type": "aws_instance", "name": "web", "instances": [
				{"attributes": {}, "dependencies": ["aws_security_group.sg"]}
			]},
			{"mode": "managed", "type": "aws_security_group", "name": "sg", "instances": [
				{"attributes": {}}
			]}
		]
	}`))
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	want := []export.Edge{
		{From: "root.aws_instance.web", To: "root.aws_security_group.sg", Reason: string(graph.ReasonExplicit)},
	}
	if diff := cmp.Diff(got.Edges, want); diff != "" {
		t.Errorf("Edges (-got, +want)\n%s", diff)
	}
}

func TestAnalyze_deterministic(t *testing.T) {
	src := `{
		"version": 4,
		"resources": [
			{"mode": "managed", "type": "aws_instance", "name": "web", "instances": [
				{"attributes": {"sg": "aws_security_group.sg"}, "dependencies": ["aws_subnet.a"]}
			]},
			{"mode": "managed", "type": "aws_security_group", "name": "sg", "instances": [{"attributes": {}}]},
			{"module": "module.network", "mode": "managed", "type": "aws_subnet", "name": "a", "instances": [{"attributes": {}}]}
		]
	}`

	a := &analysis.Analyzer{}
	first, err := a.Analyze([]byte(src))
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	second, err := a.Analyze([]byte(src))
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	firstJSON, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	secondJSON, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !bytes.Equal(firstJSON, secondJSON) {
		t.Errorf("payloads differ between runs:\n%s\n%s", firstJSON, secondJSON)
	}

	// Resource order in the document must not leak into the payload.
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(src), &doc); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	resources := doc["resources"].([]interface{})
	for i, j := 0, len(resources)-1; i < j; i, j = i+1, j-1 {
		resources[i], resources[j] = resources[j], resources[i]
	}
	reordered, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	third, err := a.Analyze(reordered)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	thirdJSON, err := json.Marshal(third)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !bytes.Equal(firstJSON, thirdJSON) {
		t.Errorf("payloads differ after reordering resources:\n%s\n%s", firstJSON, thirdJSON)
	}
}

func TestAnalyze_errors(t *testing.T) {
	tooManyResources := `{"version": 4, "resources": [
		{"mode": "managed", "type": "aws_instance", "name": "a", "instances": [{"attributes": {}}]},
		{"mode": "managed", "type": "aws_instance", "name": "b", "instances": [{"attributes": {}}]}
	]}`

	tests := []struct {
		name   string
		src    string
		limits analysis.Limits
		want   analysis.Kind
	}{
		{
			name: "Malformed",
			src:  `{"version": 4, "resources":`,
			want: analysis.MalformedInput,
		},
		{
			name: "NotAnObject",
			src:  `[1, 2, 3]`,
			want: analysis.MalformedInput,
		},
		{
			name: "UnsupportedVersion",
			src:  `{"version": 0, "resources": []}`,
			want: analysis.UnsupportedFormatVersion,
		},
		{
			name: "VersionMissing",
			src:  `{"resources": []}`,
			want: analysis.UnsupportedFormatVersion,
		},
		{
			name: "DuplicateAddress",
			src: `{"version": 4, "resources": [
				{"mode": "managed", "type": "aws_instance", "name": "web", "instances": [{"attributes": {}}]},
				{"mode": "managed", "type": "aws_instance", "name": "web", "instances": [{"attributes": {}}]}
			]}`,
			want: analysis.DuplicateAddress,
		},
		{
			name:   "TooManyBytes",
			src:    tooManyResources,
			limits: analysis.Limits{MaxBytes: 16},
			want:   analysis.InputTooComplex,
		},
		{
			name:   "TooManyResources",
			src:    tooManyResources,
			limits: analysis.Limits{MaxResources: 1},
			want:   analysis.InputTooComplex,
		},
		{
			name: "TooDeep",
			src: `{"version": 4, "resources": [
				{"mode": "managed", "type": "aws_instance", "name": "web", "instances": [
					{"attributes": {"a": {"b": {"c": {"d": {"e": "deep"}}}}}}
				]}
			]}`,
			limits: analysis.Limits{MaxDepth: 2},
			want:   analysis.InputTooComplex,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &analysis.Analyzer{Limits: tt.limits}
			payload, err := a.Analyze([]byte(tt.src))
			if err == nil {
				t.Fatal("Analyze() expected error, got nil")
			}
			if payload != nil {
				t.Errorf("Analyze() payload = %v, want nil", payload)
			}
			if got := analysis.KindOf(err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKindOf_unknown(t *testing.T) {
	if got := analysis.KindOf(errors.New("boom")); got != "" {
		t.Errorf("KindOf() = %q, want empty", got)
	}
}
