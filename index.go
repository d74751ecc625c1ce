package inject

import (
	"fmt"
	"slices"
	"strings"
)

// buildIndex files every entry under each base of its type's supertype closure and
// sorts each list most specific first. Two bindings of the same resource and
// declaration kind clash.
func (c *Container) buildIndex() error {
	seen := make(map[string]*entry, len(c.entries))
	for _, e := range c.entries {
		k := fmt.Sprintf("%s/%d", e.binding.Resource.key(), e.binding.Source.Kind)
		if first, ok := seen[k]; ok {
			return BuildError{
				Phase:   "index",
				Details: fmt.Sprintf("bindings %d and %d", first.serial, e.serial),
				Cause:   ClashError{First: first.binding, Second: e.binding},
			}
		}
		seen[k] = e
	}

	c.index = make(map[*Base][]*entry)
	for _, e := range c.entries {
		for _, s := range e.binding.Resource.Instance.Type.Supertypes() {
			c.index[s.base] = append(c.index[s.base], e)
		}
	}
	for _, list := range c.index {
		slices.SortStableFunc(list, compareEntries)
	}
	return nil
}

// compareEntries is the ranking comparator: name, target, declaration kind
// (higher first), type, then the canonical resource form. Only the serial number
// separates bindings that clash, and those are rejected by buildIndex.
func compareEntries(a, b *entry) int {
	if c := compareBindings(a.binding, b.binding); c != 0 {
		return c
	}
	return compareInt(a.serial, b.serial)
}

func compareBindings(a, b Binding) int {
	ar, br := a.Resource, b.Resource
	if c := compareNames(ar.Instance.Name, br.Instance.Name); c != 0 {
		return c
	}
	if c := compareTargets(ar.Target, br.Target); c != 0 {
		return c
	}
	if c := compareInt(int(b.Source.Kind), int(a.Source.Kind)); c != 0 {
		return c
	}
	if c := compareTypes(ar.Instance.Type, br.Instance.Type); c != 0 {
		return c
	}
	return strings.Compare(ar.key(), br.key())
}
