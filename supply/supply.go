// Package supply provides ready-made suppliers for inject bindings.
package supply

import (
	"context"

	"github.com/junioryono/inject"
)

// Constant supplies v.
func Constant(v any) inject.Supplier {
	return inject.SupplierFunc(func(context.Context, inject.Dependency, inject.Injector) (any, error) {
		return v, nil
	})
}

// Func supplies the result of fn. fn is called each time the binding's
// repository produces a value.
func Func(fn func(ctx context.Context) (any, error)) inject.Supplier {
	return inject.SupplierFunc(func(ctx context.Context, _ inject.Dependency, _ inject.Injector) (any, error) {
		return fn(ctx)
	})
}
