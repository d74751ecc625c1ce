package inject

import (
	"context"
	"fmt"
	"reflect"
)

// Resolve resolves the default-named instance of t and asserts the result to T.
//
// Example:
//
//	engine, err := inject.Resolve[Engine](ctx, container, engineType)
//	if err != nil {
//	    // Handle error
//	}
func Resolve[T any](ctx context.Context, inj Injector, t Type) (T, error) {
	return ResolveNamed[T](ctx, inj, DefaultName, t)
}

// ResolveNamed resolves the instance of t with the given name and asserts the
// result to T.
func ResolveNamed[T any](ctx context.Context, inj Injector, name Name, t Type) (T, error) {
	var zero T

	if inj == nil {
		return zero, ErrInjectorNil
	}

	v, err := inj.Resolve(ctx, DependencyOn(NamedInstance(name, t)))
	if err != nil {
		return zero, err
	}

	result, ok := v.(T)
	if !ok {
		return zero, TypeMismatchError{
			Expected: reflect.TypeOf((*T)(nil)).Elem(),
			Actual:   reflect.TypeOf(v),
			Context:  fmt.Sprintf("type assertion for %s", NamedInstance(name, t)),
		}
	}

	return result, nil
}

// MustResolve resolves the default-named instance of t.
// It panics if the instance cannot be resolved.
func MustResolve[T any](ctx context.Context, inj Injector, t Type) T {
	v, err := Resolve[T](ctx, inj, t)
	if err != nil {
		panic(fmt.Sprintf("failed to resolve %s: %v", t, err))
	}
	return v
}

// ResolveAll resolves every instance of element type t, whatever its name, in
// rank order.
//
// Example:
//
//	engines, err := inject.ResolveAll[Engine](ctx, container, engineType)
func ResolveAll[T any](ctx context.Context, inj Injector, t Type) ([]T, error) {
	if inj == nil {
		return nil, ErrInjectorNil
	}

	v, err := inj.Resolve(ctx, DependencyOn(AnyOf(ArrayOf(t))))
	if err != nil {
		return nil, err
	}

	switch values := v.(type) {
	case []T:
		return values, nil
	case []any:
		results := make([]T, 0, len(values))
		for i, value := range values {
			result, ok := value.(T)
			if !ok {
				return nil, TypeMismatchError{
					Expected: reflect.TypeOf((*T)(nil)).Elem(),
					Actual:   reflect.TypeOf(value),
					Context:  fmt.Sprintf("type assertion for element %d of %s", i, ArrayOf(t)),
				}
			}
			results = append(results, result)
		}
		return results, nil
	default:
		return nil, TypeMismatchError{
			Expected: reflect.TypeOf((*[]T)(nil)).Elem(),
			Actual:   reflect.TypeOf(v),
			Context:  fmt.Sprintf("type assertion for %s", ArrayOf(t)),
		}
	}
}
