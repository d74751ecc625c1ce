package main

import (
	"context"

	"github.com/junioryono/inject"
	"github.com/junioryono/inject/internal/graph"
)

// tracer records every production into a graph, keyed by the produced resource
// and linked to the resource it was produced for.
type tracer struct {
	graph *graph.Graph
}

func newTracer() *tracer {
	return &tracer{graph: graph.New()}
}

// wrap returns copies of bindings whose suppliers report to the tracer.
func (tr *tracer) wrap(bindings []inject.Binding) []inject.Binding {
	out := make([]inject.Binding, len(bindings))
	for i, b := range bindings {
		supplier := b.Supplier
		b.Supplier = inject.SupplierFunc(func(ctx context.Context, dep inject.Dependency, inj inject.Injector) (any, error) {
			tr.record(dep)
			return supplier.Supply(ctx, dep, inj)
		})
		out[i] = b
	}
	return out
}

func (tr *tracer) record(dep inject.Dependency) {
	frames := dep.Hierarchy()
	if len(frames) == 0 {
		return
	}

	current := frames[len(frames)-1]
	key := current.Target.String()
	tr.graph.AddNode(key, string(current.Scope.Name()))
	if len(frames) > 1 {
		tr.graph.AddEdge(frames[len(frames)-2].Target.String(), key)
	}
}
