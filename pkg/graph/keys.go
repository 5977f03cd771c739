package graph

import (
	"slices"
	"strings"
)

// KeySet controls participation in key-filtered traversals. Terms
// prefixed with "!" exclude; all others include.
type KeySet struct {
	Include []string
	Exclude []string
}

// ParseKeySet splits s on commas and whitespace.
func ParseKeySet(s string) KeySet {
	var k KeySet
	for _, f := range strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	}) {
		if term, ok := strings.CutPrefix(f, "!"); ok {
			if term != "" {
				k.Exclude = append(k.Exclude, term)
			}
			continue
		}
		k.Include = append(k.Include, f)
	}
	return k
}

// IsEmpty reports whether no terms are declared.
func (k KeySet) IsEmpty() bool {
	return len(k.Include) == 0 && len(k.Exclude) == 0
}

// Traverse reports whether an edge or node carrying k may be followed when
// the requested keys are active. Exclusion wins over inclusion.
func (k KeySet) Traverse(requested []string) bool {
	for _, r := range requested {
		if slices.Contains(k.Exclude, r) {
			return false
		}
	}
	if len(k.Include) == 0 {
		return true
	}
	for _, r := range requested {
		if slices.Contains(k.Include, r) {
			return true
		}
	}
	return false
}

func (k KeySet) String() string {
	parts := slices.Clone(k.Include)
	for _, e := range k.Exclude {
		parts = append(parts, "!"+e)
	}
	return strings.Join(parts, ",")
}
