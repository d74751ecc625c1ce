package inject

// Resource is what a binding offers and where: an instance plus a target.
type Resource struct {
	Instance Instance
	Target   Target
}

// ResourceOf returns a resource of inst available everywhere.
func ResourceOf(inst Instance) Resource {
	return Resource{Instance: inst}
}

// Equal reports whether both resources have equal instances and targets.
func (r Resource) Equal(o Resource) bool {
	return r.Instance.Equal(o.Instance) && r.Target.Equal(o.Target)
}

func (r Resource) String() string {
	if t := r.Target.String(); t != "anywhere" {
		return r.Instance.String() + " " + t
	}
	return r.Instance.String()
}

func (r Resource) key() string {
	return r.Instance.key() + "@" + r.Target.key()
}
