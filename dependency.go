package inject

import "strings"

// Injection is one frame of a dependency hierarchy: the instance that was
// requested, the resource chosen to satisfy it and the scope that resource lives in.
type Injection struct {
	Requested Instance
	Target    Resource
	Scope     Scope

	// kind of the binding that supplies Target, when pushed by a container
	kind DeclarationKind
}

// Equal reports whether both frames requested the same instance and chose the same
// resource. The scope is not compared.
func (i Injection) Equal(o Injection) bool {
	return i.Requested.Equal(o.Requested) && i.Target.Equal(o.Target)
}

func (i Injection) String() string {
	if i.Requested.Equal(i.Target.Instance) {
		return i.Target.String()
	}
	return i.Requested.String() + " as " + i.Target.String()
}

// Dependency is a request for an instance together with the stack of injections
// that led to it, outermost first. Dependencies are values: Push and Uninject
// return new dependencies and never modify the receiver's frames.
type Dependency struct {
	Wanted    Instance
	hierarchy []Injection
}

// DependencyOn returns a top-level dependency on inst.
func DependencyOn(inst Instance) Dependency {
	return Dependency{Wanted: inst}
}

// Hierarchy returns a copy of the enclosing injections, outermost first.
func (d Dependency) Hierarchy() []Injection {
	return append([]Injection(nil), d.hierarchy...)
}

// Depth returns the number of enclosing injections.
func (d Dependency) Depth() int { return len(d.hierarchy) }

// Target returns the innermost injection, the one being produced.
// ok is false for a top-level dependency.
func (d Dependency) Target() (Injection, bool) {
	if len(d.hierarchy) == 0 {
		return Injection{}, false
	}
	return d.hierarchy[len(d.hierarchy)-1], true
}

// Request returns a dependency on inst with the same hierarchy.
// Suppliers use it to resolve what they need from inside their own injection.
func (d Dependency) Request(inst Instance) Dependency {
	return Dependency{Wanted: inst, hierarchy: d.hierarchy}
}

// Push records that d is about to be satisfied by target living in scope s.
//
// It fails with a CycleError when the same instance was already requested and
// satisfied by the same resource further out, and with an UnstableDependencyError
// when s is not stable in the scope of some enclosing injection.
func (d Dependency) Push(target Resource, s Scope) (Dependency, error) {
	return d.push(target, Default, s)
}

func (d Dependency) push(target Resource, kind DeclarationKind, s Scope) (Dependency, error) {
	if s == nil {
		return d, ErrScopeNil
	}

	frame := Injection{Requested: d.Wanted, Target: target, Scope: s, kind: kind}

	for i, f := range d.hierarchy {
		if f.Equal(frame) {
			path := append(append([]Injection(nil), d.hierarchy[i:]...), frame)
			return d, CycleError{Dependency: d, Injection: frame, Path: path}
		}
	}

	for _, f := range d.hierarchy {
		if !s.StableIn(f.Scope) {
			return d, UnstableDependencyError{Dependency: d, Injection: frame, Outer: f}
		}
	}

	return Dependency{
		Wanted:    d.Wanted,
		hierarchy: append(d.hierarchy[:len(d.hierarchy):len(d.hierarchy)], frame),
	}, nil
}

// Uninject pops the innermost injection. The remaining frames are not re-checked.
func (d Dependency) Uninject() Dependency {
	if len(d.hierarchy) == 0 {
		return d
	}
	return Dependency{Wanted: d.Wanted, hierarchy: d.hierarchy[:len(d.hierarchy)-1 : len(d.hierarchy)-1]}
}

// String renders the path from the outermost injection to the wanted instance.
func (d Dependency) String() string {
	var b strings.Builder
	for _, f := range d.hierarchy {
		b.WriteString(f.Target.Instance.String())
		b.WriteString(" -> ")
	}
	b.WriteString(d.Wanted.String())
	return b.String()
}
