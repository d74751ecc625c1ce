package manifest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/junioryono/inject"
)

// typeParser reads type references of the form
//
//	example.com/vehicle.Engine      a declared base
//	example.com/coll.Pair[K, V]     a parameterized base
//	[]example.com/vehicle.Wheel     an array
//	?example.com/vehicle.Engine     a wildcard (upper bound)
//	$0                              a type variable, inside supertypes only
type typeParser struct {
	src    string
	pos    int
	lookup func(name string) (*inject.Base, error)
	// vars is the number of type variables in scope; zero outside supertypes.
	vars int
}

func parseType(src string, vars int, lookup func(string) (*inject.Base, error)) (inject.Type, error) {
	p := &typeParser{src: src, lookup: lookup, vars: vars}
	t, err := p.parse()
	if err != nil {
		return inject.Type{}, TypeRefError{Ref: src, Cause: err}
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return inject.Type{}, TypeRefError{Ref: src, Cause: fmt.Errorf("unexpected %q at offset %d", p.src[p.pos:], p.pos)}
	}
	return t, nil
}

func (p *typeParser) parse() (inject.Type, error) {
	p.skipSpace()
	switch {
	case p.eof():
		return inject.Type{}, fmt.Errorf("missing type at offset %d", p.pos)

	case strings.HasPrefix(p.src[p.pos:], "[]"):
		p.pos += 2
		elem, err := p.parse()
		if err != nil {
			return inject.Type{}, err
		}
		return inject.ArrayOf(elem), nil

	case p.src[p.pos] == '?':
		p.pos++
		t, err := p.parse()
		if err != nil {
			return inject.Type{}, err
		}
		return t.AsUpperBound(), nil

	case p.src[p.pos] == '$':
		p.pos++
		start := p.pos
		for !p.eof() && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
			p.pos++
		}
		i, err := strconv.Atoi(p.src[start:p.pos])
		if err != nil {
			return inject.Type{}, fmt.Errorf("malformed type variable at offset %d", start-1)
		}
		if i >= p.vars {
			return inject.Type{}, fmt.Errorf("type variable $%d out of range (%d in scope)", i, p.vars)
		}
		return inject.Var(i), nil
	}

	name := p.ident()
	if name == "" {
		return inject.Type{}, fmt.Errorf("unexpected %q at offset %d", p.src[p.pos], p.pos)
	}
	base, err := p.lookup(name)
	if err != nil {
		return inject.Type{}, err
	}

	p.skipSpace()
	if p.eof() || p.src[p.pos] != '[' {
		return base.Raw(), nil
	}
	p.pos++

	var params []inject.Type
	for {
		param, err := p.parse()
		if err != nil {
			return inject.Type{}, err
		}
		params = append(params, param)

		p.skipSpace()
		if p.eof() {
			return inject.Type{}, fmt.Errorf("unclosed parameter list of %s", name)
		}
		c := p.src[p.pos]
		p.pos++
		if c == ']' {
			break
		}
		if c != ',' {
			return inject.Type{}, fmt.Errorf("unexpected %q in parameter list of %s", c, name)
		}
	}

	return inject.Parameterize(base, params...)
}

func (p *typeParser) ident() string {
	start := p.pos
	for !p.eof() {
		switch c := p.src[p.pos]; c {
		case '[', ']', ',', ' ', '\t', '?', '$':
			return p.src[start:p.pos]
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *typeParser) skipSpace() {
	for !p.eof() && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *typeParser) eof() bool {
	return p.pos >= len(p.src)
}
