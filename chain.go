package inject

import (
	"context"
	"errors"
)

// Chain composes two injectors. Scalar dependencies are resolved by branch and
// fall back to root only when branch has no resource for that very dependency.
// Array dependencies are resolved by both, branch elements first.
//
// Suppliers of either side receive the chain as their injector, so their nested
// dependencies see the whole composition.
func Chain(branch, root Injector) Injector {
	return &chain{branch: branch, root: root}
}

type chain struct {
	branch Injector
	root   Injector
}

func (ch *chain) Resolve(ctx context.Context, dep Dependency) (any, error) {
	return ch.resolveFrom(ctx, dep, ch)
}

func (ch *chain) resolveFrom(ctx context.Context, dep Dependency, entry Injector) (any, error) {
	if ch.branch == nil || ch.root == nil {
		return nil, ErrInjectorNil
	}

	if t := dep.Wanted.Type; t.IsArray() && !t.IsRaw() {
		return ch.resolveArray(ctx, dep, entry)
	}

	v, err := delegate(ctx, ch.branch, dep, entry)
	if err == nil || !missing(err, dep) {
		return v, err
	}
	return delegate(ctx, ch.root, dep, entry)
}

func (ch *chain) resolveArray(ctx context.Context, dep Dependency, entry Injector) (any, error) {
	bv, err := delegate(ctx, ch.branch, dep, entry)
	if err != nil {
		return nil, err
	}
	rv, err := delegate(ctx, ch.root, dep, entry)
	if err != nil {
		return nil, err
	}

	be, bok := bv.([]any)
	re, rok := rv.([]any)
	switch {
	case bok && rok:
		return append(append(make([]any, 0, len(be)+len(re)), be...), re...), nil
	case !bok:
		// an explicit array binding in branch wins
		return bv, nil
	default:
		return rv, nil
	}
}

func delegate(ctx context.Context, inj Injector, dep Dependency, entry Injector) (any, error) {
	if r, ok := inj.(resolver); ok {
		return r.resolveFrom(ctx, dep, entry)
	}
	return inj.Resolve(ctx, dep)
}

// missing reports whether err says there is no resource for dep itself, as
// opposed to one of its nested dependencies.
func missing(err error, dep Dependency) bool {
	var nr NoResourceError
	if !errors.As(err, &nr) {
		return false
	}
	return nr.Dependency.Depth() == dep.Depth() && nr.Dependency.Wanted.Equal(dep.Wanted)
}
