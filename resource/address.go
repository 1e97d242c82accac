// Package resource defines the normalized resource records extracted from a
// state document and the addressing scheme used to reference them.
package resource

import (
	"strconv"
	"strings"
)

// RootModule is the module path of resources outside any module.
const RootModule = "root"

// An Address names one resource instance within a document.
type Address struct {
	// Module is the dotted module path. Empty or RootModule for the root
	// module.
	Module string

	// Type is the provider resource type.
	Type string

	// Name is the logical resource name.
	Name string

	// Key is the instance key for resources created with count or for_each.
	// An int64 or string, nil when the resource has a single unkeyed
	// instance.
	Key interface{}
}

// String returns the canonical derived address, with the module path
// defaulting to RootModule.
func (a Address) String() string {
	mod := a.Module
	if mod == "" {
		mod = RootModule
	}
	return mod + "." + a.Local()
}

// Local returns the address without its module path.
func (a Address) Local() string {
	return a.Type + "." + a.Name + keySuffix(a.Key)
}

// Ref returns the spelling used to reference the address from within the
// same document. Root module resources are referenced without a module
// path.
func (a Address) Ref() string {
	if a.Module == "" || a.Module == RootModule {
		return a.Local()
	}
	return a.String()
}

func keySuffix(key interface{}) string {
	switch k := key.(type) {
	case nil:
		return ""
	case int:
		return "[" + strconv.Itoa(k) + "]"
	case int64:
		return "[" + strconv.FormatInt(k, 10) + "]"
	case string:
		return `["` + k + `"]`
	}
	return ""
}

// ParentModule returns the module path containing the given module.
// Top level modules are contained in the root module.
func ParentModule(path string) string {
	if i := strings.LastIndex(path, ".module."); i >= 0 {
		return path[:i]
	}
	return RootModule
}

// ModuleLabel returns the display label for a module path, dropping the
// "module" keyword segments: "module.a.module.b" becomes "a.b".
func ModuleLabel(path string) string {
	parts := strings.Split(path, ".")
	names := make([]string, 0, len(parts)/2)
	for i := 1; i < len(parts); i += 2 {
		names = append(names, parts[i])
	}
	if len(names) == 0 {
		return path
	}
	return strings.Join(names, ".")
}
