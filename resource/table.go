package resource

import "fmt"

// A DuplicateAddressError is returned when two resources derive the same
// canonical address.
type DuplicateAddressError struct {
	Address string
}

func (e *DuplicateAddressError) Error() string {
	return fmt.Sprintf("duplicate resource address %s", e.Address)
}

// A Table resolves address spellings to resource ids.
//
// Every resource is reachable under its canonical address and under the
// spelling documents use to reference it (root module resources are
// referenced without the module path). The index-less spelling of a keyed
// resource resolves to all of its instances.
type Table struct {
	canonical map[string]string
	ids       map[string][]string
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{
		canonical: make(map[string]string),
		ids:       make(map[string][]string),
	}
}

// Add registers a resource address and returns its canonical id. Fails with
// DuplicateAddressError when the canonical address was already added.
func (t *Table) Add(addr Address) (string, error) {
	id := addr.String()
	if _, ok := t.canonical[id]; ok {
		return "", &DuplicateAddressError{Address: id}
	}
	t.canonical[id] = id

	base := addr
	base.Key = nil
	spellings := map[string]struct{}{
		id:            {},
		addr.Ref():    {},
		base.String(): {},
		base.Ref():    {},
	}
	for s := range spellings {
		t.ids[s] = append(t.ids[s], id)
	}
	return id, nil
}

// Resolve returns the ids a spelling refers to, in the order the resources
// were added. The result is empty for unknown spellings.
func (t *Table) Resolve(spelling string) []string {
	return t.ids[spelling]
}

// Len returns the number of resources in the table.
func (t *Table) Len() int {
	return len(t.canonical)
}
