package analysis

import (
	"regexp"
	"strings"

	"github.com/cloudleakage/cloudleakage/resource"
	"github.com/pkg/errors"
	"github.com/zclconf/go-cty/cty"
)

// addrPattern matches a maximal address shaped token run: two or more
// dotted segments with an optional index suffix. Whether a run actually
// names a resource is decided against the lookup table.
var addrPattern = regexp.MustCompile(`[A-Za-z_][0-9A-Za-z_-]*(?:\.[0-9A-Za-z_-]+)+(?:\[[0-9]+\]|\["[^"]*"\])?`)

var errTooDeep = errors.New("value nesting exceeds depth limit")

// A scanner finds resource references inside the attribute values of one
// resource. Hits are recorded in match order, each id at most once.
type scanner struct {
	table    *resource.Table
	maxDepth int

	hits []string
	seen map[string]struct{}
}

func newScanner(table *resource.Table, maxDepth int) *scanner {
	return &scanner{
		table:    table,
		maxDepth: maxDepth,
		seen:     make(map[string]struct{}),
	}
}

// value walks an attribute value, scanning every string at any depth.
func (s *scanner) value(v cty.Value, depth int) error {
	if depth > s.maxDepth {
		return errTooDeep
	}
	if v.IsNull() || !v.IsKnown() {
		return nil
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		s.scan(v.AsString())
	case ty.IsTupleType(), ty.IsListType(), ty.IsSetType(), ty.IsMapType(), ty.IsObjectType():
		it := v.ElementIterator()
		for it.Next() {
			_, ev := it.Element()
			if err := s.value(ev, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

// scan records table hits for address shaped runs in one string.
//
// Matching is anchored at the start of each run and trims from the right
// until the run names a resource: a fuller address always wins over its own
// prefix, trailing attribute paths trim away, and substrings inside larger
// tokens never match.
func (s *scanner) scan(str string) {
	for _, loc := range addrPattern.FindAllStringIndex(str, -1) {
		if loc[0] > 0 && isTokenByte(str[loc[0]-1]) {
			continue
		}
		run := str[loc[0]:loc[1]]
		for cur := run; strings.Contains(cur, "."); cur = trimTail(cur) {
			ids := s.table.Resolve(cur)
			if len(ids) == 0 {
				continue
			}
			for _, id := range ids {
				if _, ok := s.seen[id]; ok {
					continue
				}
				s.seen[id] = struct{}{}
				s.hits = append(s.hits, id)
			}
			break
		}
	}
}

// trimTail removes the rightmost index suffix or dotted segment.
func trimTail(s string) string {
	if strings.HasSuffix(s, "]") {
		if i := strings.LastIndex(s, "["); i >= 0 {
			return s[:i]
		}
	}
	i := strings.LastIndex(s, ".")
	if i < 0 {
		return ""
	}
	return s[:i]
}

func isTokenByte(b byte) bool {
	return b == '_' || b == '-' || b == '.' ||
		'0' <= b && b <= '9' ||
		'a' <= b && b <= 'z' ||
		'A' <= b && b <= 'Z'
}
