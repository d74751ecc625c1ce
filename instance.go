package inject

import "strings"

// Instance identifies what is bound or wanted: a name and a type.
type Instance struct {
	Name Name
	Type Type
}

// InstanceOf returns the default-named instance of t.
func InstanceOf(t Type) Instance {
	return Instance{Name: DefaultName, Type: t}
}

// NamedInstance returns the instance of t with the given name.
func NamedInstance(name Name, t Type) Instance {
	return Instance{Name: name, Type: t}
}

// AnyOf returns the instance of t with any name.
func AnyOf(t Type) Instance {
	return Instance{Name: AnyName, Type: t}
}

// IsAny reports whether i places no requirement: no type and a default or any name.
func (i Instance) IsAny() bool {
	return i.Type.IsZero() && (i.Name.IsAny() || i.Name.IsDefault())
}

// Equal reports whether both instances have the same name and equal types.
func (i Instance) Equal(o Instance) bool {
	return i.Name == o.Name && i.Type.Equal(o.Type)
}

// Matches reports whether actual satisfies i used as a requirement: the names are
// compatible and actual's type is assignable to i's type (a zero type accepts any).
func (i Instance) Matches(actual Instance) bool {
	if !i.Name.IsCompatibleWith(actual.Name) {
		return false
	}
	return i.Type.IsZero() || actual.Type.IsAssignableTo(i.Type)
}

// MoreQualifiedThan compares types first and names second.
func (i Instance) MoreQualifiedThan(o Instance) bool {
	if i.Type.MoreQualifiedThan(o.Type) {
		return true
	}
	return i.Type.Equal(o.Type) && i.Name.MoreQualifiedThan(o.Name)
}

func (i Instance) String() string {
	if i.Type.IsZero() {
		return i.Name.String() + " <any>"
	}
	return i.Name.String() + " " + i.Type.String()
}

func (i Instance) key() string {
	return string(i.Name) + "|" + i.Type.key()
}

// compareInstances ranks instances: any-instances last, then by type, then name.
func compareInstances(a, b Instance) int {
	if a.IsAny() != b.IsAny() {
		if a.IsAny() {
			return 1
		}
		return -1
	}
	if c := compareTypes(a.Type, b.Type); c != 0 {
		return c
	}
	if c := compareNames(a.Name, b.Name); c != 0 {
		return c
	}
	return strings.Compare(a.key(), b.key())
}
