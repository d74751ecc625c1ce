package supply

import (
	"context"
	"fmt"

	"github.com/junioryono/inject"
	"github.com/junioryono/inject/internal/invoke"
)

var analyzer = invoke.New()

// Constructor supplies the result of calling fn with one resolved argument per
// entry of deps, in order. fn may take a leading context.Context, which is not
// listed in deps, and must return T or (T, error).
//
// Array dependencies are converted to the parameter's slice type.
//
//	supply.Constructor(NewCar, inject.InstanceOf(engineType), inject.AnyOf(inject.ArrayOf(wheelType)))
func Constructor(fn any, deps ...inject.Instance) (inject.Supplier, error) {
	sig, err := analyzer.Analyze(fn)
	if err != nil {
		return nil, err
	}
	if len(sig.Params) != len(deps) {
		return nil, fmt.Errorf("constructor %s takes %d dependencies, %d declared", sig.Type, len(sig.Params), len(deps))
	}

	deps = append([]inject.Instance(nil), deps...)

	return inject.SupplierFunc(func(ctx context.Context, dep inject.Dependency, inj inject.Injector) (any, error) {
		args := make([]any, len(deps))
		for i, d := range deps {
			v, err := inj.Resolve(ctx, dep.Request(d))
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		return sig.Call(ctx, args)
	}), nil
}

// MustConstructor is like Constructor but panics on error.
func MustConstructor(fn any, deps ...inject.Instance) inject.Supplier {
	s, err := Constructor(fn, deps...)
	if err != nil {
		panic(err)
	}
	return s
}
