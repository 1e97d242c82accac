package analysis

import (
	"encoding/json"

	"github.com/cloudleakage/cloudleakage/resource"
	"github.com/cloudleakage/cloudleakage/tfstate"
	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
)

// Normalize extracts one Resource per instance from a document and builds
// the address lookup table for reference resolution.
//
// Normalization is resource type agnostic: every instance becomes a
// resource regardless of whether its attribute schema is known.
func Normalize(doc *tfstate.Document) ([]*resource.Resource, *resource.Table, error) {
	var list []*resource.Resource
	table := resource.NewTable()
	for _, block := range doc.Resources {
		for _, inst := range block.Instances {
			addr := resource.Address{
				Module: block.Module,
				Type:   block.Type,
				Name:   block.Name,
				Key:    inst.IndexKey,
			}
			id, err := table.Add(addr)
			if err != nil {
				return nil, nil, err
			}

			attrs, err := decodeAttributes(inst.Attributes)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "attributes of %s", id)
			}

			module := block.Module
			if module == "" {
				module = resource.RootModule
			}
			list = append(list, &resource.Resource{
				ID:          id,
				Kind:        block.Type,
				DisplayName: addr.Local(),
				Module:      module,
				Mode:        block.Mode,
				Attributes:  attrs,
				DependsOn:   inst.DependsOn,
			})
		}
	}
	return list, table, nil
}

// decodeAttributes turns a raw attribute object into a generic value tree.
// The type is implied from the data so provider specific schemas are not
// required.
func decodeAttributes(raw json.RawMessage) (cty.Value, error) {
	if len(raw) == 0 {
		return cty.EmptyObjectVal, nil
	}
	ty, err := ctyjson.ImpliedType(raw)
	if err != nil {
		return cty.NilVal, err
	}
	return ctyjson.Unmarshal(raw, ty)
}
