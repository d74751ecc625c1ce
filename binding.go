package inject

import (
	"context"
	"fmt"
)

// Supplier produces the value of a binding.
//
// dep is the dependency being served, with the binding's injection already pushed
// onto its hierarchy. Nested dependencies are resolved through inj, usually with
// dep.Request so the hierarchy is kept.
type Supplier interface {
	Supply(ctx context.Context, dep Dependency, inj Injector) (any, error)
}

// SupplierFunc adapts a function to Supplier.
type SupplierFunc func(ctx context.Context, dep Dependency, inj Injector) (any, error)

// Supply calls f.
func (f SupplierFunc) Supply(ctx context.Context, dep Dependency, inj Injector) (any, error) {
	return f(ctx, dep, inj)
}

// Injector resolves dependencies. *Container and the result of Chain implement it.
type Injector interface {
	Resolve(ctx context.Context, dep Dependency) (any, error)
}

// Binding maps a resource to its supplier, scope and provenance.
// Bindings are values; a container copies them at construction.
type Binding struct {
	Resource Resource
	Supplier Supplier
	Scope    ScopeID
	Source   Source
}

func (b Binding) String() string {
	return fmt.Sprintf("%s in %s (%s)", b.Resource, b.Scope, b.Source)
}
