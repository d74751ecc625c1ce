package inject

import (
	"slices"
	"strings"
)

// Packages is the visibility partition of a Target: the set of packages whose
// types may directly consume a binding. The zero value is AllPackages.
//
// An entry ending in "/..." covers the package and all of its subpackages,
// following the go tool convention.
type Packages struct {
	restricted bool
	paths      []string
}

// AllPackages makes a binding visible everywhere.
var AllPackages = Packages{}

// PackagesOf restricts visibility to the given package paths.
// Without paths it returns AllPackages.
func PackagesOf(paths ...string) Packages {
	if len(paths) == 0 {
		return AllPackages
	}
	sorted := slices.Clone(paths)
	slices.Sort(sorted)
	return Packages{restricted: true, paths: slices.Compact(sorted)}
}

// IsAll reports whether the set is unrestricted.
func (p Packages) IsAll() bool { return !p.restricted }

// Paths returns a copy of the restricting entries.
func (p Packages) Paths() []string { return slices.Clone(p.paths) }

// Contains reports whether pkg lies in the set.
func (p Packages) Contains(pkg string) bool {
	if !p.restricted {
		return true
	}
	for _, path := range p.paths {
		if tree, ok := strings.CutSuffix(path, "/..."); ok {
			if pkg == tree || strings.HasPrefix(pkg, tree+"/") {
				return true
			}
			continue
		}
		if pkg == path {
			return true
		}
	}
	return false
}

// Equal reports whether both sets have the same entries.
func (p Packages) Equal(o Packages) bool {
	return p.restricted == o.restricted && slices.Equal(p.paths, o.paths)
}

func (p Packages) String() string {
	if !p.restricted {
		return "*"
	}
	return "{" + strings.Join(p.paths, ", ") + "}"
}

// comparePackages orders restricted sets before unrestricted ones, smaller and
// more exact sets first.
func comparePackages(a, b Packages) int {
	if a.restricted != b.restricted {
		if a.restricted {
			return -1
		}
		return 1
	}
	if c := compareInt(len(a.paths), len(b.paths)); c != 0 {
		return c
	}
	if c := compareInt(a.subtrees(), b.subtrees()); c != 0 {
		return c
	}
	return strings.Compare(a.String(), b.String())
}

func (p Packages) subtrees() int {
	n := 0
	for _, path := range p.paths {
		if strings.HasSuffix(path, "/...") {
			n++
		}
	}
	return n
}
