package inject

import "strings"

// Target describes where a binding may be injected.
//
// Parents lists the instances that must enclose the consumer, outermost first.
// Consumer is the instance being constructed when the dependency is requested; the
// any-instance (zero Instance or AnyName with no type) accepts every consumer.
// Packages restricts the package of the consumer's type.
//
// The zero Target makes a binding available everywhere.
type Target struct {
	Parents  []Instance
	Consumer Instance
	Packages Packages
}

// Everywhere is the unrestricted target.
var Everywhere = Target{}

// Into returns a target requiring the given consumer.
func Into(consumer Instance) Target {
	return Target{Consumer: consumer}
}

// Within returns a copy of t that additionally requires the given parents,
// outermost first, around the existing chain.
func (t Target) Within(parents ...Instance) Target {
	t.Parents = append(append([]Instance(nil), parents...), t.Parents...)
	return t
}

// In returns a copy of t visible only from the given packages.
func (t Target) In(packages ...string) Target {
	t.Packages = PackagesOf(packages...)
	return t
}

// chain returns Parents followed by Consumer with leading any-instances trimmed.
func (t Target) chain() []Instance {
	chain := make([]Instance, 0, len(t.Parents)+1)
	chain = append(chain, t.Parents...)
	chain = append(chain, t.Consumer)
	for len(chain) > 0 && chain[0].IsAny() {
		chain = chain[1:]
	}
	return chain
}

// IsAvailableFor reports whether a binding with this target may satisfy dep.
//
// The required chain must match the innermost frames of the dependency hierarchy,
// innermost last, each required instance matching the resource produced in that
// frame. The package of the immediate consumer's type must lie in Packages; a
// top-level request has no consumer and passes the package check.
func (t Target) IsAvailableFor(dep Dependency) bool {
	frames := dep.hierarchy

	if t.Packages.restricted && len(frames) > 0 {
		consumer := frames[len(frames)-1].Target.Instance.Type
		if consumer.IsZero() || !t.Packages.Contains(consumer.Base().Package()) {
			return false
		}
	}

	chain := t.chain()
	if len(chain) > len(frames) {
		return false
	}
	offset := len(frames) - len(chain)
	for i, required := range chain {
		if required.IsAny() {
			continue
		}
		if !required.Matches(frames[offset+i].Target.Instance) {
			return false
		}
	}
	return true
}

// Equal reports whether both targets impose the same requirements.
func (t Target) Equal(o Target) bool {
	a, b := t.chain(), o.chain()
	if len(a) != len(b) || !t.Packages.Equal(o.Packages) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func (t Target) String() string {
	chain := t.chain()
	if len(chain) == 0 && t.Packages.IsAll() {
		return "anywhere"
	}
	var b strings.Builder
	if len(chain) > 0 {
		b.WriteString("into ")
		for i, inst := range chain {
			if i > 0 {
				b.WriteString(" > ")
			}
			b.WriteString(inst.String())
		}
	}
	if !t.Packages.IsAll() {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString("from ")
		b.WriteString(t.Packages.String())
	}
	return b.String()
}

func (t Target) key() string {
	var b strings.Builder
	for _, inst := range t.chain() {
		b.WriteString(inst.key())
		b.WriteByte('>')
	}
	b.WriteString(t.Packages.String())
	return b.String()
}

// compareTargets ranks targets: longer required chains first, then the required
// instances from the innermost outward, then the package restriction.
func compareTargets(a, b Target) int {
	ac, bc := a.chain(), b.chain()
	if c := compareInt(len(bc), len(ac)); c != 0 {
		return c
	}
	for i := len(ac) - 1; i >= 0; i-- {
		if c := compareInstances(ac[i], bc[i]); c != 0 {
			return c
		}
	}
	return comparePackages(a.Packages, b.Packages)
}
