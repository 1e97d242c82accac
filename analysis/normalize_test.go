package analysis_test

import (
	"testing"

	"github.com/cloudleakage/cloudleakage/analysis"
	"github.com/cloudleakage/cloudleakage/resource"
	"github.com/cloudleakage/cloudleakage/tfstate"
	"github.com/google/go-cmp/cmp"
	"github.com/zclconf/go-cty/cty"
)

var ctyComparer = cmp.Comparer(func(a, b cty.Value) bool { return a.RawEquals(b) })

func TestNormalize(t *testing.T) {
	doc := &tfstate.Document{
		FormatVersion: 4,
		Resources: []tfstate.ResourceBlock{
			{
				Mode: "managed",
				Type: "aws_instance",
				Name: "web",
				Instances: []tfstate.Instance{
					{
						Attributes: []byte(`{"id": "i-1", "count": 2}`),
						DependsOn:  []string{"aws_security_group.sg"},
					},
				},
			},
			{
				Mode: "managed",
				Type: "aws_subnet",
				Name: "a",
				Instances: []tfstate.Instance{
					{IndexKey: int64(0)},
					{IndexKey: "blue"},
				},
			},
			{
				Module: "module.network",
				Mode:   "data",
				Type:   "aws_vpc",
				Name:   "main",
				Instances: []tfstate.Instance{
					{Attributes: []byte(`{"id": "vpc-1"}`)},
				},
			},
		},
	}

	got, table, err := analysis.Normalize(doc)
	if err != nil {
		t.Fatalf("Normalize() error = %v", err)
	}

	want := []*resource.Resource{
		{
			ID:          "root.aws_instance.web",
			Kind:        "aws_instance",
			DisplayName: "aws_instance.web",
			Module:      "root",
			Mode:        "managed",
			Attributes: cty.ObjectVal(map[string]cty.Value{
				"id":    cty.StringVal("i-1"),
				"count": cty.NumberIntVal(2),
			}),
			DependsOn: []string{"aws_security_group.sg"},
		},
		{
			ID:          "root.aws_subnet.a[0]",
			Kind:        "aws_subnet",
			DisplayName: "aws_subnet.a[0]",
			Module:      "root",
			Mode:        "managed",
			Attributes:  cty.EmptyObjectVal,
		},
		{
			ID:          `root.aws_subnet.a["blue"]`,
			Kind:        "aws_subnet",
			DisplayName: `aws_subnet.a["blue"]`,
			Module:      "root",
			Mode:        "managed",
			Attributes:  cty.EmptyObjectVal,
		},
		{
			ID:          "module.network.aws_vpc.main",
			Kind:        "aws_vpc",
			DisplayName: "aws_vpc.main",
			Module:      "module.network",
			Mode:        "data",
			Attributes: cty.ObjectVal(map[string]cty.Value{
				"id": cty.StringVal("vpc-1"),
			}),
		},
	}
	if diff := cmp.Diff(got, want, ctyComparer); diff != "" {
		t.Errorf("Normalize() (-got, +want)\n%s", diff)
	}

	if got, want := table.Len(), 4; got != want {
		t.Errorf("table.Len() = %d, want %d", got, want)
	}
	if ids := table.Resolve("aws_subnet.a"); len(ids) != 2 {
		t.Errorf("Resolve(aws_subnet.a) = %v, want both instances", ids)
	}
}

func TestNormalize_duplicateAddress(t *testing.T) {
	doc := &tfstate.Document{
		FormatVersion: 4,
		Resources: []tfstate.ResourceBlock{
			{Mode: "managed", Type: "aws_instance", Name: "web", Instances: []tfstate.Instance{{}}},
			{Mode: "managed", Type: "aws_instance", Name: "web", Instances: []tfstate.Instance{{}}},
		},
	}
	_, _, err := analysis.Normalize(doc)
	derr, ok := err.(*resource.DuplicateAddressError)
	if !ok {
		t.Fatalf("Normalize() error = %v, want DuplicateAddressError", err)
	}
	if got, want := derr.Address, "root.aws_instance.web"; got != want {
		t.Errorf("Address = %q, want %q", got, want)
	}
}
