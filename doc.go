// Package inject provides a dependency-resolution engine built around explicit type
// descriptors, named instances and scoped repositories.
//
// # Overview
//
// A container is built once from an immutable list of bindings. Each binding maps a
// Resource (an Instance, that is a Name and a Type, plus a Target saying where it may
// be injected) to a Supplier, a Scope and a Source. Resolving a Dependency selects
// the most specific matching binding, serves it through the binding's scope and
// tracks the chain of enclosing injections to reject cycles and unstable nesting.
//
//   - Structural, parameterized types with wildcards and covariant arrays
//   - Named instances with prefix patterns
//   - Targets restricting the enclosing instances and consumer packages
//   - Canonical scopes: container, application, strand, injection,
//     dependency-type and target-instance, plus custom scopes
//   - Array aggregation and chained containers
//   - Thread-safe, at-most-once production per cache slot
//
// # Basic Usage
//
// Declare bases once, then bind and resolve:
//
//	engine := inject.NewBase("example.com/car.Engine", 0)
//	v8 := inject.NewBase("example.com/car.V8", 0, engine.Raw())
//
//	c, err := inject.New([]inject.Binding{
//	    {
//	        Resource: inject.ResourceOf(inject.InstanceOf(engine.Raw())),
//	        Supplier: supply.Constant(&V6{}),
//	    },
//	    {
//	        Resource: inject.ResourceOf(inject.NamedInstance("primary", v8.Raw())),
//	        Supplier: supply.Constant(&V8{}),
//	        Scope:    inject.ScopeContainer,
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
//	e, err := inject.ResolveNamed[Engine](ctx, c, "primary", engine.Raw())
//
// # Ranking
//
// Candidates are ordered by name, target, declaration kind and type, most specific
// first. Two bindings of the same resource and declaration kind clash, and New
// rejects them with a ClashError.
//
// # Scopes
//
// Strand-scoped bindings produce one instance per strand. A strand is carried by a
// context:
//
//	ctx, release := inject.WithStrand(ctx)
//	defer release()
//
// # Error Handling
//
// Resolution errors carry the full Dependency. Use errors.As with NoResourceError,
// CycleError, UnstableDependencyError, ProductionError, UsageError or DepthError:
//
//	var nr inject.NoResourceError
//	if errors.As(err, &nr) {
//	    for _, r := range nr.Rejected {
//	        log.Printf("%s rejected by %s", r.Binding.Resource, r.Reason)
//	    }
//	}
package inject
