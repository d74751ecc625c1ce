package inject

import (
	"strconv"
	"strings"
)

// Type is an immutable, structural type descriptor: a base, its type parameters
// (none for a raw type, otherwise exactly the base's arity) and an upper-bound flag.
// An upper-bound type stands for "this type or any subtype" (a wildcard).
//
// The zero Type describes no type at all.
type Type struct {
	base   *Base
	params []Type
	upper  bool
}

// ArrayOf returns the array type with the given element type.
func ArrayOf(elem Type) Type {
	return Type{base: ArrayBase, params: []Type{elem}}
}

// IsZero reports whether t describes no type.
func (t Type) IsZero() bool { return t.base == nil }

// Base returns the base of t.
func (t Type) Base() *Base { return t.base }

// IsRaw reports whether t carries no type parameters.
func (t Type) IsRaw() bool { return len(t.params) == 0 }

// IsUpperBound reports whether t is a wildcard.
func (t Type) IsUpperBound() bool { return t.upper }

// IsArray reports whether t is an array type.
func (t Type) IsArray() bool { return t.base != nil && t.base.array }

// IsVariable reports whether t is a type variable created by Var.
func (t Type) IsVariable() bool { return t.base != nil && t.base.variable != 0 }

// Elem returns the element type of an array type, or the zero Type.
func (t Type) Elem() Type {
	if !t.IsArray() || t.IsRaw() {
		return Type{}
	}
	return t.params[0]
}

// Parameter returns the i-th type parameter, or the zero Type when there is none.
func (t Type) Parameter(i int) Type {
	if i < 0 || i >= len(t.params) {
		return Type{}
	}
	return t.params[i]
}

// Params returns a copy of the type parameters.
func (t Type) Params() []Type {
	return append([]Type(nil), t.params...)
}

// AsUpperBound returns the wildcard form of t.
func (t Type) AsUpperBound() Type {
	t.upper = true
	return t
}

// AsExact returns t without the wildcard flag.
func (t Type) AsExact() Type {
	t.upper = false
	return t
}

// Raw returns t without type parameters and without the wildcard flag.
func (t Type) Raw() Type {
	return Type{base: t.base}
}

// Equal reports whether two descriptors have the same base, pairwise equal
// parameters and the same bound flag.
func (t Type) Equal(o Type) bool {
	if t.base != o.base || t.upper != o.upper || len(t.params) != len(o.params) {
		return false
	}
	for i := range t.params {
		if !t.params[i].Equal(o.params[i]) {
			return false
		}
	}
	return true
}

// Supertypes returns t followed by all of its transitive supertypes, each exactly
// once, with parameters substituted. Supertypes of a raw type are raw.
// The bound flag of t is not carried to the result.
func (t Type) Supertypes() []Type {
	if t.base == nil {
		return nil
	}
	result := make([]Type, 0, len(t.base.closure))
	for _, s := range t.base.closure {
		sup := s.substitute(t.params)
		if !containsType(result, sup) {
			result = append(result, sup)
		}
	}
	return result
}

// IsAssignableTo reports whether a value of type t can be used where other is wanted.
// The wildcard flags of t and other themselves are ignored; within parameters a
// wildcard in other accepts any assignable parameter, otherwise parameters must be
// equal. Array elements are covariant.
func (t Type) IsAssignableTo(other Type) bool {
	if t.base == nil || other.base == nil {
		return false
	}
	for _, s := range t.Supertypes() {
		if s.base != other.base {
			continue
		}
		if s.IsRaw() || other.IsRaw() || paramsAssignable(s, other) {
			return true
		}
	}
	return false
}

func paramsAssignable(have, want Type) bool {
	for i, w := range want.params {
		h := have.params[i]
		if w.upper || want.base.array {
			if !h.IsAssignableTo(w) {
				return false
			}
			continue
		}
		if !h.Equal(w) {
			return false
		}
	}
	return true
}

// MoreQualifiedThan is a strict partial order over related types.
//
// A strict subtype is more qualified than its supertype; a concrete type is more
// qualified than a compatible wildcard of the same base; a parameterized type is
// more qualified than its raw form; for two assignable descriptors of one base and
// bound, the one that is more qualified in a strict majority of parameter positions
// wins.
// Unrelated types are not more qualified either way.
func (t Type) MoreQualifiedThan(other Type) bool {
	if t.base == nil || other.base == nil || t.Equal(other) {
		return false
	}

	if t.base != other.base {
		return t.IsAssignableTo(other) && !other.IsAssignableTo(t)
	}

	if t.upper != other.upper {
		return !t.upper && t.IsAssignableTo(other)
	}

	if t.IsRaw() || other.IsRaw() {
		return !t.IsRaw()
	}

	if !t.IsAssignableTo(other) && !other.IsAssignableTo(t) {
		return false
	}

	more := 0
	for i := range t.params {
		if t.params[i].MoreQualifiedThan(other.params[i]) {
			more++
		}
	}
	return more*2 > len(t.params)
}

// String renders t as Base[Params], wildcards prefixed with '?' and arrays as []Elem.
func (t Type) String() string {
	var b strings.Builder
	t.write(&b, false)
	return b.String()
}

// key is an injective rendering of t used for canonical ordering and identity.
func (t Type) key() string {
	var b strings.Builder
	t.write(&b, true)
	return b.String()
}

func (t Type) write(b *strings.Builder, withID bool) {
	if t.base == nil {
		b.WriteString("<none>")
		return
	}
	if t.upper {
		b.WriteByte('?')
	}
	if t.base.array && !t.IsRaw() {
		b.WriteString("[]")
		t.params[0].write(b, withID)
		return
	}
	b.WriteString(t.base.String())
	if withID {
		b.WriteByte('#')
		b.WriteString(strconv.FormatUint(t.base.id, 10))
	}
	if len(t.params) == 0 {
		return
	}
	b.WriteByte('[')
	for i, p := range t.params {
		if i > 0 {
			b.WriteString(", ")
		}
		p.write(b, withID)
	}
	b.WriteByte(']')
}

// substitute replaces type variables with args. With no args the result is raw.
func (t Type) substitute(args []Type) Type {
	if t.base == nil {
		return t
	}
	if t.base.variable != 0 {
		if len(args) == 0 {
			return t
		}
		sub := args[t.base.variable-1]
		if t.upper {
			sub.upper = true
		}
		return sub
	}
	if len(t.params) == 0 {
		return t
	}
	if len(args) == 0 {
		return Type{base: t.base, upper: t.upper}
	}
	params := make([]Type, len(t.params))
	for i, p := range t.params {
		params[i] = p.substitute(args)
	}
	return Type{base: t.base, params: params, upper: t.upper}
}

// maxVar returns one more than the highest type variable index used in t, or 0.
func (t Type) maxVar() int {
	if t.base == nil {
		return 0
	}
	highest := t.base.variable
	for _, p := range t.params {
		if m := p.maxVar(); m > highest {
			highest = m
		}
	}
	return highest
}

// hasVariables reports whether t mentions any type variable.
func (t Type) hasVariables() bool {
	return t.maxVar() > 0
}

// compareTypes orders types from most to least specific. It is a total order that
// refines the subtype and wildcard parts of MoreQualifiedThan: more supertypes
// first, concrete before wildcard, parameterized before raw, then parameters
// left to right, then the canonical key.
func compareTypes(a, b Type) int {
	if c := compareInt(len(b.Supertypes()), len(a.Supertypes())); c != 0 {
		return c
	}
	if a.upper != b.upper {
		if a.upper {
			return 1
		}
		return -1
	}
	if c := compareInt(len(b.params), len(a.params)); c != 0 {
		return c
	}
	for i := range a.params {
		if c := compareTypes(a.params[i], b.params[i]); c != 0 {
			return c
		}
	}
	return strings.Compare(a.key(), b.key())
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
