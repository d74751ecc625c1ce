package supply_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/dig"

	"github.com/junioryono/inject"
	"github.com/junioryono/inject/internal/invoke"
	"github.com/junioryono/inject/internal/testutil"
	"github.com/junioryono/inject/supply"
)

var (
	engine  = inject.InstanceOf(testutil.EngineType)
	car     = inject.InstanceOf(testutil.CarType)
	garage  = inject.InstanceOf(testutil.GarageType)
	wheels  = inject.AnyOf(inject.ArrayOf(testutil.WheelType))
	wheelAt = func(pos string) inject.Instance { return inject.NamedInstance(inject.Name(pos), testutil.WheelType) }
)

func TestConstant(t *testing.T) {
	t.Parallel()

	v8 := testutil.NewV8()
	c := testutil.NewBindingsBuilder(t).Bind(engine, supply.Constant(v8), inject.ScopeInjection).Build()

	assert.Same(t, v8, testutil.AssertResolvable[testutil.Engine](t, c, engine))
	assert.Same(t, v8, testutil.AssertResolvable[testutil.Engine](t, c, engine))
}

func TestFunc(t *testing.T) {
	t.Parallel()

	type key struct{}
	c := testutil.NewBindingsBuilder(t).
		Bind(engine, supply.Func(func(ctx context.Context) (any, error) {
			if ctx.Value(key{}) == nil {
				return nil, testutil.ErrTest
			}
			return testutil.NewV6(), nil
		}), inject.ScopeInjection).
		Build()

	_, err := c.Resolve(context.Background(), inject.DependencyOn(engine))
	assert.ErrorIs(t, err, testutil.ErrTest)

	ctx := context.WithValue(context.Background(), key{}, true)
	_, err = c.Resolve(ctx, inject.DependencyOn(engine))
	assert.NoError(t, err)
}

func TestConstructor(t *testing.T) {
	t.Parallel()

	t.Run("resolves arguments in order", func(t *testing.T) {
		t.Parallel()

		c := testutil.NewBindingsBuilder(t).
			Bind(inject.InstanceOf(testutil.V8Type), supply.MustConstructor(testutil.NewV8), "").
			Bind(wheelAt("fl"), supply.Constant(&testutil.Wheel{Position: "fl"}), "").
			Bind(wheelAt("fr"), supply.Constant(&testutil.Wheel{Position: "fr"}), "").
			Bind(car, supply.MustConstructor(testutil.NewCar, engine, wheels), "").
			Bind(garage, supply.MustConstructor(testutil.NewGarage, car), "").
			Build()

		g := testutil.AssertResolvable[*testutil.Garage](t, c, garage)
		require.NotNil(t, g.Car)
		assert.Equal(t, 8, g.Car.Engine.Cylinders())
		require.Len(t, g.Car.Wheels, 2)
		assert.Equal(t, "fl", g.Car.Wheels[0].Position)
	})

	t.Run("context and error", func(t *testing.T) {
		t.Parallel()

		newEngine := func(ctx context.Context) (testutil.Engine, error) {
			if ctx == nil {
				return nil, testutil.ErrTest
			}
			return testutil.NewV6(), nil
		}
		failing := func(testutil.Engine) (*testutil.Car, error) {
			return nil, testutil.ErrIntentional
		}

		c := testutil.NewBindingsBuilder(t).
			Bind(engine, supply.MustConstructor(newEngine), "").
			Bind(car, supply.MustConstructor(failing, engine), "").
			Build()

		testutil.AssertResolvable[testutil.Engine](t, c, engine)

		_, err := c.Resolve(context.Background(), inject.DependencyOn(car))
		var pe inject.ProductionError
		require.ErrorAs(t, err, &pe)
		assert.ErrorIs(t, err, testutil.ErrIntentional)
	})

	t.Run("missing argument", func(t *testing.T) {
		t.Parallel()

		c := testutil.NewBindingsBuilder(t).
			Bind(car, supply.MustConstructor(testutil.NewCar, engine, wheels), "").
			Build()

		_, err := c.Resolve(context.Background(), inject.DependencyOn(car))
		nr := testutil.AssertNoResource(t, err)
		assert.True(t, nr.Dependency.Wanted.Equal(engine))
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()

		_, err := supply.Constructor(42)
		assert.ErrorIs(t, err, invoke.ErrNotFunc)

		_, err = supply.Constructor(func() {})
		assert.ErrorIs(t, err, invoke.ErrReturns)

		_, err = supply.Constructor(testutil.NewCar, engine)
		assert.Error(t, err, "argument count must match")

		assert.Panics(t, func() { supply.MustConstructor(nil) })
	})
}

func TestProvider(t *testing.T) {
	t.Parallel()

	provider := inject.InstanceOf(inject.NewBase("example.com/vehicle.EngineProvider", 0).Raw())

	t.Run("resolves on call", func(t *testing.T) {
		t.Parallel()

		s := testutil.Counting(func() any { return testutil.NewV6() })
		c := testutil.NewBindingsBuilder(t).
			Bind(engine, s, inject.ScopeInjection).
			Bind(provider, supply.Provider(engine), inject.ScopeInjection).
			Build()

		get := testutil.AssertResolvable[supply.Deferred](t, c, provider)
		assert.Equal(t, 0, s.Calls())

		a, err := get(context.Background())
		require.NoError(t, err)
		b, err := get(context.Background())
		require.NoError(t, err)
		assert.NotSame(t, a, b)
		assert.Equal(t, 2, s.Calls())
	})

	t.Run("keeps the consumer's injection", func(t *testing.T) {
		t.Parallel()

		// The provider's consumer is the car, so a binding targeted into the car
		// is visible through the provider.
		v8 := testutil.NewV8()
		c := testutil.NewBindingsBuilder(t).
			Bind(engine, supply.Constant(testutil.NewV6()), "").
			BindResource(inject.Resource{Instance: engine, Target: inject.Into(car)}, supply.Constant(v8), "").
			Bind(provider, supply.Provider(engine), inject.ScopeInjection).
			Bind(car, inject.SupplierFunc(func(ctx context.Context, dep inject.Dependency, inj inject.Injector) (any, error) {
				v, err := inj.Resolve(ctx, dep.Request(provider))
				if err != nil {
					return nil, err
				}
				e, err := v.(supply.Deferred)(ctx)
				if err != nil {
					return nil, err
				}
				return testutil.NewCar(e.(testutil.Engine), nil), nil
			}), inject.ScopeInjection).
			Build()

		assert.Same(t, v8, testutil.AssertResolvable[*testutil.Car](t, c, car).Engine)
	})
}

type digConfig struct {
	DSN string
}

func TestDig(t *testing.T) {
	t.Parallel()

	dc := dig.New()
	require.NoError(t, dc.Provide(func() *digConfig { return &digConfig{DSN: "primary"} }))
	require.NoError(t, dc.Provide(func() *digConfig { return &digConfig{DSN: "replica"} }, dig.Name("replica")))

	configBase := inject.NewBase("example.com/db.Config", 0)
	configType := reflect.TypeOf(&digConfig{})

	c := testutil.NewBindingsBuilder(t).
		Bind(inject.InstanceOf(configBase.Raw()), supply.Dig(dc, configType), "").
		Bind(inject.NamedInstance("replica", configBase.Raw()), supply.DigNamed(dc, configType, "replica"), "").
		Bind(inject.NamedInstance("missing", configBase.Raw()), supply.DigNamed(dc, configType, "missing"), "").
		Build()

	primary := testutil.AssertResolvable[*digConfig](t, c, inject.InstanceOf(configBase.Raw()))
	assert.Equal(t, "primary", primary.DSN)

	replica := testutil.AssertResolvable[*digConfig](t, c, inject.NamedInstance("replica", configBase.Raw()))
	assert.Equal(t, "replica", replica.DSN)

	_, err := c.Resolve(context.Background(), inject.DependencyOn(inject.NamedInstance("missing", configBase.Raw())))
	var pe inject.ProductionError
	assert.ErrorAs(t, err, &pe)
}
