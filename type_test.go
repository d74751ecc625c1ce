package inject_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junioryono/inject"
	"github.com/junioryono/inject/internal/testutil"
)

var (
	number  = testutil.NumberBase.Raw()
	integer = testutil.IntegerBase.Raw()
)

func TestBase_Declare(t *testing.T) {
	t.Parallel()

	t.Run("package and name", func(t *testing.T) {
		t.Parallel()

		b := testutil.V8Base
		assert.Equal(t, "V8", b.Name())
		assert.Equal(t, testutil.VehiclePkg, b.Package())
		assert.Equal(t, 0, b.Arity())
		assert.Equal(t, testutil.VehiclePkg+".V8", b.String())
	})

	t.Run("empty name", func(t *testing.T) {
		t.Parallel()

		_, err := inject.DeclareBase("", 0)
		require.ErrorIs(t, err, inject.ErrBaseNameEmpty)

		var de inject.DeclarationError
		require.ErrorAs(t, err, &de)
	})

	t.Run("supertype uses undeclared variable", func(t *testing.T) {
		t.Parallel()

		_, err := inject.DeclareBase("example.com/bad.Bad", 1, testutil.CollectionBase.Of(inject.Var(1)))
		require.Error(t, err)
	})

	t.Run("wildcard supertype", func(t *testing.T) {
		t.Parallel()

		_, err := inject.DeclareBase("example.com/bad.Bad", 0, testutil.EngineType.AsUpperBound())
		require.Error(t, err)
	})

	t.Run("wrong arity", func(t *testing.T) {
		t.Parallel()

		_, err := inject.Parameterize(testutil.PairBase, integer)
		var ae inject.TypeArityError
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, 1, ae.Got)
		assert.Equal(t, 2, ae.Want)

		assert.Panics(t, func() { testutil.PairBase.Of(integer) })
	})
}

func TestType_Supertypes(t *testing.T) {
	t.Parallel()

	t.Run("substitutes parameters", func(t *testing.T) {
		t.Parallel()

		got := testutil.ArrayListBase.Of(integer).Supertypes()
		want := []inject.Type{
			testutil.ArrayListBase.Of(integer),
			testutil.ListBase.Of(integer),
			testutil.CollectionBase.Of(integer),
		}
		require.Len(t, got, len(want))
		for i := range want {
			assert.True(t, want[i].Equal(got[i]), "%s != %s", want[i], got[i])
		}
	})

	t.Run("fixed parameters", func(t *testing.T) {
		t.Parallel()

		got := testutil.IntPairBase.Of(testutil.WheelType).Supertypes()
		require.Len(t, got, 2)
		assert.True(t, testutil.PairBase.Of(number, testutil.WheelType).Equal(got[1]))
	})

	t.Run("raw stays raw", func(t *testing.T) {
		t.Parallel()

		for _, s := range testutil.ArrayListBase.Raw().Supertypes() {
			assert.True(t, s.IsRaw(), "%s", s)
		}
	})

	t.Run("each ancestor once", func(t *testing.T) {
		t.Parallel()

		diamondTop := inject.NewBase("example.com/diamond.Top", 0)
		left := inject.NewBase("example.com/diamond.Left", 0, diamondTop.Raw())
		right := inject.NewBase("example.com/diamond.Right", 0, diamondTop.Raw())
		bottom := inject.NewBase("example.com/diamond.Bottom", 0, left.Raw(), right.Raw())

		assert.Len(t, bottom.Raw().Supertypes(), 4)
	})
}

func TestType_IsAssignableTo(t *testing.T) {
	t.Parallel()

	coll := testutil.CollectionBase
	tests := []struct {
		name string
		from inject.Type
		to   inject.Type
		want bool
	}{
		{"subtype", testutil.V8Type, testutil.EngineType, true},
		{"supertype", testutil.EngineType, testutil.V8Type, false},
		{"siblings", testutil.V8Type, testutil.V6Type, false},
		{"self", testutil.EngineType, testutil.EngineType, true},
		{"wildcard target", testutil.V8Type, testutil.EngineType.AsUpperBound(), true},
		{"parameterized subtype", testutil.ArrayListBase.Of(integer), coll.Of(integer), true},
		{"invariant parameters", testutil.ArrayListBase.Of(integer), coll.Of(number), false},
		{"wildcard parameter", testutil.ArrayListBase.Of(integer), coll.Of(number.AsUpperBound()), true},
		{"wildcard parameter mismatch", testutil.ArrayListBase.Of(number), coll.Of(integer.AsUpperBound()), false},
		{"raw source", testutil.ArrayListBase.Raw(), coll.Of(integer), true},
		{"raw target", testutil.ArrayListBase.Of(integer), coll.Raw(), true},
		{"unrelated generic", testutil.BoxBase.Of(integer), coll.Of(integer), false},
		{"covariant arrays", inject.ArrayOf(testutil.V8Type), inject.ArrayOf(testutil.EngineType), true},
		{"arrays not contravariant", inject.ArrayOf(testutil.EngineType), inject.ArrayOf(testutil.V8Type), false},
		{"fixed parameter", testutil.IntPairBase.Of(testutil.WheelType), testutil.PairBase.Of(number, testutil.WheelType), true},
		{"fixed parameter mismatch", testutil.IntPairBase.Of(testutil.WheelType), testutil.PairBase.Of(integer, testutil.WheelType), false},
		{"zero", inject.Type{}, testutil.EngineType, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.IsAssignableTo(tt.to), "%s -> %s", tt.from, tt.to)
		})
	}
}

func TestType_MoreQualifiedThan(t *testing.T) {
	t.Parallel()

	pair := testutil.PairBase
	tests := []struct {
		name string
		a, b inject.Type
		want bool
	}{
		{"subtype beats supertype", testutil.V8Type, testutil.EngineType, true},
		{"supertype loses", testutil.EngineType, testutil.V8Type, false},
		{"concrete beats wildcard", testutil.EngineType, testutil.EngineType.AsUpperBound(), true},
		{"wildcard loses", testutil.EngineType.AsUpperBound(), testutil.EngineType, false},
		{"parameterized beats raw", testutil.CollectionBase.Of(integer), testutil.CollectionBase.Raw(), true},
		{"majority of parameters", pair.Of(integer, integer), pair.Of(number.AsUpperBound(), number.AsUpperBound()), true},
		{"incompatible parameters", pair.Of(integer, integer), pair.Of(number, number), false},
		{"incompatible parameters reversed", pair.Of(number, number), pair.Of(integer, integer), false},
		{"invariant element", testutil.BoxBase.Of(testutil.V8Type), testutil.BoxBase.Of(testutil.EngineType), false},
		{"tie", pair.Of(integer, number.AsUpperBound()), pair.Of(number.AsUpperBound(), number.AsUpperBound()), false},
		{"tie reversed", pair.Of(number.AsUpperBound(), number.AsUpperBound()), pair.Of(integer, number.AsUpperBound()), false},
		{"unrelated", testutil.V8Type, testutil.V6Type, false},
		{"unrelated reversed", testutil.V6Type, testutil.V8Type, false},
		{"irreflexive", testutil.EngineType, testutil.EngineType, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.MoreQualifiedThan(tt.b), "%s > %s", tt.a, tt.b)
		})
	}
}

func TestType_Accessors(t *testing.T) {
	t.Parallel()

	arr := inject.ArrayOf(testutil.V8Type)
	assert.True(t, arr.IsArray())
	assert.True(t, testutil.V8Type.Equal(arr.Elem()))
	assert.True(t, testutil.EngineType.Elem().IsZero())

	p := testutil.PairBase.Of(integer, number)
	assert.True(t, integer.Equal(p.Parameter(0)))
	assert.True(t, number.Equal(p.Parameter(1)))
	assert.True(t, p.Parameter(2).IsZero())
	assert.True(t, p.Raw().IsRaw())

	w := testutil.EngineType.AsUpperBound()
	assert.True(t, w.IsUpperBound())
	assert.False(t, w.Equal(testutil.EngineType))
	assert.True(t, w.AsExact().Equal(testutil.EngineType))

	assert.True(t, inject.Var(0).IsVariable())
}

func TestType_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "example.com/vehicle.Engine", testutil.EngineType.String())
	assert.Equal(t, "?example.com/vehicle.Engine", testutil.EngineType.AsUpperBound().String())
	assert.Equal(t, "[]example.com/vehicle.V8", inject.ArrayOf(testutil.V8Type).String())
	assert.Equal(t,
		"example.com/coll.Pair[example.com/num.Integer, ?example.com/num.Number]",
		testutil.PairBase.Of(integer, number.AsUpperBound()).String())
	assert.Equal(t, "<none>", inject.Type{}.String())
}
