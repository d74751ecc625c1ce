package supply

import (
	"context"

	"github.com/junioryono/inject"
)

// Deferred resolves an instance on call.
type Deferred func(ctx context.Context) (any, error)

// Provider supplies a Deferred that resolves inst when called. The deferred
// resolution runs as if requested by the consumer of the provider: the provider's
// own injection is popped from the hierarchy.
//
// Bind providers in the injection scope.
func Provider(inst inject.Instance) inject.Supplier {
	return inject.SupplierFunc(func(_ context.Context, dep inject.Dependency, inj inject.Injector) (any, error) {
		target := dep.Uninject().Request(inst)
		return Deferred(func(ctx context.Context) (any, error) {
			return inj.Resolve(ctx, target)
		}), nil
	})
}
