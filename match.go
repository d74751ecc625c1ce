package inject

// check tests one entry against dep, cheapest check first.
// It returns 0 for a candidate and the rejection reason otherwise.
func check(e *entry, dep Dependency) RejectionReason {
	res := e.binding.Resource
	if !res.Instance.Name.IsCompatibleWith(dep.Wanted.Name) {
		return RejectedName
	}
	if !res.Target.IsAvailableFor(dep) {
		return RejectedTarget
	}
	if !res.Instance.Type.IsAssignableTo(dep.Wanted.Type) {
		return RejectedType
	}
	return 0
}

// first returns the best ranked candidate for dep.
func (c *Container) first(dep Dependency) (*entry, bool) {
	for _, e := range c.index[dep.Wanted.Type.base] {
		if check(e, dep) == 0 {
			return e, true
		}
	}
	return nil, false
}

// all returns every candidate for dep in rank order.
func (c *Container) all(dep Dependency) []*entry {
	var out []*entry
	for _, e := range c.index[dep.Wanted.Type.base] {
		if check(e, dep) == 0 {
			out = append(out, e)
		}
	}
	return out
}

// rejections lists the bindings of the wanted base that did not match dep.
func (c *Container) rejections(dep Dependency) []Rejection {
	var out []Rejection
	for _, e := range c.index[dep.Wanted.Type.base] {
		if reason := check(e, dep); reason != 0 {
			out = append(out, Rejection{Binding: e.binding, Reason: reason})
		}
	}
	return out
}

// Candidates returns the bindings that may satisfy dep in rank order, and the
// bindings of the same base that were rejected. Resolution picks the first
// candidate of a scalar dependency.
func (c *Container) Candidates(dep Dependency) ([]Binding, []Rejection) {
	if dep.Wanted.Type.IsZero() {
		return nil, nil
	}
	var out []Binding
	for _, e := range c.all(dep) {
		out = append(out, e.binding)
	}
	return out, c.rejections(dep)
}
