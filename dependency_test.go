package inject_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junioryono/inject"
	"github.com/junioryono/inject/internal/testutil"
)

func lookupScope(t *testing.T, r *inject.ScopeRegistry, id inject.ScopeID) inject.Scope {
	t.Helper()
	s, ok := r.Lookup(id)
	require.True(t, ok, "scope %s not registered", id)
	return s
}

func TestDependency_Push(t *testing.T) {
	t.Parallel()

	registry := inject.MustScopeRegistry()
	container := lookupScope(t, registry, inject.ScopeContainer)
	injection := lookupScope(t, registry, inject.ScopeInjection)
	strand := lookupScope(t, registry, inject.ScopeStrand)

	car := inject.ResourceOf(inject.InstanceOf(testutil.CarType))
	engine := inject.ResourceOf(inject.InstanceOf(testutil.EngineType))

	t.Run("records frames outermost first", func(t *testing.T) {
		t.Parallel()

		dep, err := inject.DependencyOn(car.Instance).Push(car, container)
		require.NoError(t, err)
		dep, err = dep.Request(engine.Instance).Push(engine, container)
		require.NoError(t, err)

		h := dep.Hierarchy()
		require.Len(t, h, 2)
		assert.True(t, h[0].Target.Equal(car))
		assert.True(t, h[1].Target.Equal(engine))
		assert.Equal(t, inject.ScopeContainer, h[1].Scope.Name())

		target, ok := dep.Target()
		require.True(t, ok)
		assert.True(t, target.Target.Equal(engine))
	})

	t.Run("does not modify receiver", func(t *testing.T) {
		t.Parallel()

		base, err := inject.DependencyOn(car.Instance).Push(car, container)
		require.NoError(t, err)

		a, err := base.Request(engine.Instance).Push(engine, container)
		require.NoError(t, err)
		b, err := base.Request(car.Instance).Push(inject.ResourceOf(inject.NamedInstance("other", testutil.CarType)), container)
		require.NoError(t, err)

		assert.Equal(t, 1, base.Depth())
		assert.True(t, a.Hierarchy()[1].Target.Equal(engine))
		assert.Equal(t, inject.Name("other"), b.Hierarchy()[1].Target.Instance.Name)
	})

	t.Run("cycle", func(t *testing.T) {
		t.Parallel()

		dep, err := inject.DependencyOn(car.Instance).Push(car, container)
		require.NoError(t, err)
		dep, err = dep.Request(engine.Instance).Push(engine, container)
		require.NoError(t, err)

		_, err = dep.Request(car.Instance).Push(car, container)
		var ce inject.CycleError
		require.ErrorAs(t, err, &ce)
		assert.Len(t, ce.Path, 3)
		assert.True(t, inject.IsCycle(err))
		assert.Contains(t, err.Error(), "(cycle)")
	})

	t.Run("same resource requested differently is no cycle", func(t *testing.T) {
		t.Parallel()

		dep, err := inject.DependencyOn(engine.Instance).Push(engine, container)
		require.NoError(t, err)

		_, err = dep.Request(inject.AnyOf(testutil.EngineType)).Push(engine, container)
		assert.NoError(t, err)
	})

	t.Run("unstable", func(t *testing.T) {
		t.Parallel()

		dep, err := inject.DependencyOn(car.Instance).Push(car, container)
		require.NoError(t, err)

		_, err = dep.Request(engine.Instance).Push(engine, injection)
		var ue inject.UnstableDependencyError
		require.ErrorAs(t, err, &ue)
		assert.True(t, ue.Outer.Target.Equal(car))
		assert.Contains(t, err.Error(), "longer-lived scope")
	})

	t.Run("stable checked against every frame", func(t *testing.T) {
		t.Parallel()

		dep, err := inject.DependencyOn(car.Instance).Push(car, container)
		require.NoError(t, err)
		dep, err = dep.Request(engine.Instance).Push(engine, injection)
		require.Error(t, err)

		dep, err = inject.DependencyOn(car.Instance).Push(car, strand)
		require.NoError(t, err)
		dep, err = dep.Request(engine.Instance).Push(engine, injection)
		require.Error(t, err, "injection is not stable in strand")

		dep, err = inject.DependencyOn(car.Instance).Push(car, injection)
		require.NoError(t, err)
		_, err = dep.Request(engine.Instance).Push(engine, container)
		require.NoError(t, err, "container is stable in injection")
	})

	t.Run("nil scope", func(t *testing.T) {
		t.Parallel()

		_, err := inject.DependencyOn(car.Instance).Push(car, nil)
		assert.ErrorIs(t, err, inject.ErrScopeNil)
	})
}

func TestDependency_Uninject(t *testing.T) {
	t.Parallel()

	container := lookupScope(t, inject.MustScopeRegistry(), inject.ScopeContainer)
	car := inject.ResourceOf(inject.InstanceOf(testutil.CarType))
	engine := inject.ResourceOf(inject.InstanceOf(testutil.EngineType))

	top := inject.DependencyOn(car.Instance)
	assert.Equal(t, 0, top.Uninject().Depth())

	_, ok := top.Target()
	assert.False(t, ok)

	dep, err := top.Push(car, container)
	require.NoError(t, err)
	dep, err = dep.Request(engine.Instance).Push(engine, container)
	require.NoError(t, err)

	popped := dep.Uninject()
	assert.Equal(t, 1, popped.Depth())
	assert.Equal(t, 2, dep.Depth())

	// Pushing after a pop must not overwrite frames shared with dep.
	_, err = popped.Request(engine.Instance).Push(inject.ResourceOf(inject.InstanceOf(testutil.V8Type)), container)
	require.NoError(t, err)
	assert.True(t, dep.Hierarchy()[1].Target.Equal(engine))
}

func TestDependency_String(t *testing.T) {
	t.Parallel()

	container := lookupScope(t, inject.MustScopeRegistry(), inject.ScopeContainer)
	car := inject.ResourceOf(inject.InstanceOf(testutil.CarType))

	dep, err := inject.DependencyOn(car.Instance).Push(car, container)
	require.NoError(t, err)

	assert.Equal(t,
		"default example.com/vehicle.Car -> default example.com/vehicle.Engine",
		dep.Request(inject.InstanceOf(testutil.EngineType)).String())
}
