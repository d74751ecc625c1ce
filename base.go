package inject

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// maxTypeVars bounds the arity of a declared base.
const maxTypeVars = 8

// baseCounter hands out base identities in declaration order.
var baseCounter uint64

// Base is a declared nominal type: the "raw" part of every Type.
//
// Bases are created once at bootstrap with NewBase and are immutable afterwards.
// Supertypes may refer to the base's own type parameters with Var:
//
//	collection := inject.NewBase("coll.Collection", 1)
//	list := inject.NewBase("coll.List", 1, collection.Of(inject.Var(0)))
type Base struct {
	id     uint64
	name   string
	pkg    string
	arity  int
	supers []Type

	// closure is the supertype closure of the generic self type,
	// expressed over Var(0..arity-1), self first.
	closure []Type

	array    bool
	variable int // index+1 for type variables, 0 otherwise
}

// ArrayBase is the builtin base of array and collection types.
// Array element types are covariant.
var ArrayBase = newArrayBase()

var typeVars = func() [maxTypeVars]*Base {
	var vars [maxTypeVars]*Base
	for i := range vars {
		vars[i] = &Base{
			id:       atomic.AddUint64(&baseCounter, 1),
			name:     fmt.Sprintf("$%d", i),
			variable: i + 1,
		}
		vars[i].closure = []Type{{base: vars[i]}}
	}
	return vars
}()

func newArrayBase() *Base {
	b := &Base{
		id:    atomic.AddUint64(&baseCounter, 1),
		name:  "Array",
		arity: 1,
		array: true,
	}
	b.closure = []Type{b.generic()}
	return b
}

// Var returns the i-th type variable of the base being declared.
// It is only meaningful inside the supertypes passed to NewBase.
func Var(i int) Type {
	if i < 0 || i >= maxTypeVars {
		panic(TypeArityError{Got: i + 1, Want: maxTypeVars})
	}
	return Type{base: typeVars[i]}
}

// NewBase declares a base type. The qualified name has the form "pkg/path.Name";
// the part before the last dot is the package used for visibility checks.
// It panics when the declaration is invalid; use DeclareBase to get an error instead.
func NewBase(qualified string, arity int, supers ...Type) *Base {
	b, err := DeclareBase(qualified, arity, supers...)
	if err != nil {
		panic(err)
	}
	return b
}

// DeclareBase declares a base type, validating the supertypes against the arity.
func DeclareBase(qualified string, arity int, supers ...Type) (*Base, error) {
	if qualified == "" {
		return nil, DeclarationError{Name: qualified, Cause: ErrBaseNameEmpty}
	}

	if arity < 0 || arity > maxTypeVars {
		return nil, DeclarationError{Name: qualified, Cause: TypeArityError{Got: arity, Want: maxTypeVars}}
	}

	for _, s := range supers {
		if s.IsZero() || s.base.variable != 0 {
			return nil, DeclarationError{Name: qualified, Cause: fmt.Errorf("supertype %v is not a declared base", s)}
		}
		if s.upper {
			return nil, DeclarationError{Name: qualified, Cause: fmt.Errorf("supertype %v cannot be a wildcard", s)}
		}
		if highest := s.maxVar(); highest > arity {
			return nil, DeclarationError{Name: qualified, Cause: fmt.Errorf("supertype %v uses type variable $%d of a base with %d parameters", s, highest-1, arity)}
		}
	}

	pkg, name := "", qualified
	if i := strings.LastIndex(qualified, "."); i >= 0 {
		pkg, name = qualified[:i], qualified[i+1:]
	}

	b := &Base{
		id:     atomic.AddUint64(&baseCounter, 1),
		name:   name,
		pkg:    pkg,
		arity:  arity,
		supers: append([]Type(nil), supers...),
	}
	b.closure = b.computeClosure()

	return b, nil
}

// Name returns the simple name of the base.
func (b *Base) Name() string { return b.name }

// Package returns the package path the base was declared in.
func (b *Base) Package() string { return b.pkg }

// Arity returns the number of type parameters the base declares.
func (b *Base) Arity() int { return b.arity }

// String returns the qualified name.
func (b *Base) String() string {
	if b == nil {
		return "<nil>"
	}
	if b.pkg == "" {
		return b.name
	}
	return b.pkg + "." + b.name
}

// Raw returns the raw (unparameterized) type of this base.
func (b *Base) Raw() Type {
	return Type{base: b}
}

// Of returns the base parameterized with the given types.
// It panics with a TypeArityError when the count does not match the arity.
func (b *Base) Of(params ...Type) Type {
	t, err := Parameterize(b, params...)
	if err != nil {
		panic(err)
	}
	return t
}

// Parameterize returns b parameterized with params, or a TypeArityError.
func Parameterize(b *Base, params ...Type) (Type, error) {
	if len(params) == 0 {
		return Type{base: b}, nil
	}
	if len(params) != b.arity {
		return Type{}, TypeArityError{Base: b, Got: len(params), Want: b.arity}
	}
	for _, p := range params {
		if p.IsZero() {
			return Type{}, DeclarationError{Name: b.String(), Cause: ErrTypeNil}
		}
	}
	return Type{base: b, params: append([]Type(nil), params...)}, nil
}

// generic returns b parameterized with its own type variables.
func (b *Base) generic() Type {
	if b.arity == 0 {
		return Type{base: b}
	}
	params := make([]Type, b.arity)
	for i := range params {
		params[i] = Var(i)
	}
	return Type{base: b, params: params}
}

// computeClosure enumerates self and every transitive supertype exactly once,
// substituting declared parameters on the way up.
func (b *Base) computeClosure() []Type {
	closure := []Type{b.generic()}
	for _, s := range b.supers {
		for _, ancestor := range s.base.closure {
			sub := ancestor.substitute(s.params)
			if !containsType(closure, sub) {
				closure = append(closure, sub)
			}
		}
	}
	return closure
}

func containsType(types []Type, t Type) bool {
	for _, x := range types {
		if x.Equal(t) {
			return true
		}
	}
	return false
}
