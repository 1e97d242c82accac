package resource

import "github.com/zclconf/go-cty/cty"

// A Resource is one concrete resource instance extracted from a state
// document. Resources are created fresh for every analysis run and are not
// mutated after normalization.
type Resource struct {
	// ID is the canonical address of the instance, unique within a
	// document.
	ID string

	// Kind is the provider resource type, retained verbatim. Unknown kinds
	// are valid, every instance becomes a resource regardless of whether
	// its schema is known.
	Kind string

	// DisplayName labels the resource in rendered output. It carries the
	// type, name and instance key but not the module path.
	DisplayName string

	// Module is the dotted module path containing the resource, RootModule
	// for the root module.
	Module string

	// Mode distinguishes managed resources from data sources.
	Mode string

	// Attributes holds the instance attributes as a generic value tree.
	Attributes cty.Value

	// DependsOn lists explicit dependency addresses as written in the
	// document.
	DependsOn []string
}
