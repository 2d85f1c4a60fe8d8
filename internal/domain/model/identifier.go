package model

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// keySeparator joins identifier parts into a single comparison key.
const keySeparator = "\x1f"

// Identifier names a root cause. The composite form carries a category, a
// host (cmdb id) and a metric; simple identifiers only set Metric.
type Identifier struct {
	Category string
	Host     string
	Metric   string
}

// Key returns the case-folded comparison key of the identifier.
func (id Identifier) Key() string {
	c := cases.Fold()
	return c.String(strings.TrimSpace(id.Category)) + keySeparator +
		c.String(strings.TrimSpace(id.Host)) + keySeparator +
		c.String(strings.TrimSpace(id.Metric))
}

// String renders the identifier for logs and reports.
func (id Identifier) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{id.Category, id.Host, id.Metric} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "/")
}

// IdentifierSet is a set of identifiers keyed by their normalized form.
type IdentifierSet map[string]Identifier

// NewIdentifierSet builds a set; duplicates differing only in case collapse.
func NewIdentifierSet(ids ...Identifier) IdentifierSet {
	s := make(IdentifierSet, len(ids))
	for _, id := range ids {
		s[id.Key()] = id
	}
	return s
}

// Len returns the number of distinct identifiers.
func (s IdentifierSet) Len() int { return len(s) }

// Contains reports whether id is a member of the set.
func (s IdentifierSet) Contains(id Identifier) bool {
	_, ok := s[id.Key()]
	return ok
}

// Intersect counts the identifiers present in both sets.
func (s IdentifierSet) Intersect(other IdentifierSet) int {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	n := 0
	for k := range small {
		if _, ok := large[k]; ok {
			n++
		}
	}
	return n
}

// Sorted returns the members ordered by key, for stable output.
func (s IdentifierSet) Sorted() []Identifier {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Identifier, len(keys))
	for i, k := range keys {
		out[i] = s[k]
	}
	return out
}
