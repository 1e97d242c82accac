// Package tfstate reads Terraform state documents into a schema-tolerant
// model. Provider specific attribute shapes are retained as raw values so
// callers can process resources without knowing their schemas.
package tfstate

import "encoding/json"

// FormatVersion is the state file format version the reader supports.
const FormatVersion = 4

// A Document is the parsed root of a state file.
type Document struct {
	// FormatVersion is the state format version declared by the document.
	FormatVersion int

	// TerraformVersion is the tool version that wrote the document.
	// Informational only.
	TerraformVersion string

	// Resources holds the resource blocks in document order.
	Resources []ResourceBlock
}

// A ResourceBlock is one resource entry as found in the source file.
type ResourceBlock struct {
	// Module is the dotted module path containing the resource. Empty for
	// the root module.
	Module string

	// Mode is the resource mode, typically "managed" or "data". Unknown
	// modes are retained as found.
	Mode string

	// Type is the provider resource type.
	Type string

	// Name is the logical name of the resource.
	Name string

	// Instances holds the concrete instances in document order.
	Instances []Instance
}

// An Instance is one concrete instance of a resource.
type Instance struct {
	// IndexKey is set when the instance was created with count or for_each.
	// The value is an int64 or a string, nil otherwise.
	IndexKey interface{}

	// Attributes is the raw attribute object. May be nil when the document
	// carries no attributes for the instance.
	Attributes json.RawMessage

	// DependsOn lists explicit dependency addresses as written in the
	// document.
	DependsOn []string
}
