package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/junioryono/inject"
)

// BindingsBuilder collects bindings for a test container.
type BindingsBuilder struct {
	t        *testing.T
	bindings []inject.Binding
}

// NewBindingsBuilder creates an empty builder.
func NewBindingsBuilder(t *testing.T) *BindingsBuilder {
	return &BindingsBuilder{t: t}
}

// Bind adds an explicit, untargeted binding of inst.
func (b *BindingsBuilder) Bind(inst inject.Instance, supplier inject.Supplier, scope inject.ScopeID) *BindingsBuilder {
	return b.BindResource(inject.ResourceOf(inst), supplier, scope)
}

// BindResource adds an explicit binding of res.
func (b *BindingsBuilder) BindResource(res inject.Resource, supplier inject.Supplier, scope inject.ScopeID) *BindingsBuilder {
	b.bindings = append(b.bindings, inject.Binding{
		Resource: res,
		Supplier: supplier,
		Scope:    scope,
		Source:   inject.Source{Kind: inject.Explicit, Origin: b.t.Name()},
	})
	return b
}

// Add appends fully specified bindings.
func (b *BindingsBuilder) Add(bindings ...inject.Binding) *BindingsBuilder {
	b.bindings = append(b.bindings, bindings...)
	return b
}

// Bindings returns the collected bindings.
func (b *BindingsBuilder) Bindings() []inject.Binding {
	return append([]inject.Binding(nil), b.bindings...)
}

// Build builds a container and closes it when the test ends.
func (b *BindingsBuilder) Build(opts ...inject.Option) *inject.Container {
	b.t.Helper()
	c, err := inject.New(b.bindings, append([]inject.Option{inject.WithLogger(Logger(b.t))}, opts...)...)
	require.NoError(b.t, err)
	b.t.Cleanup(func() { _ = c.Close() })
	return c
}
