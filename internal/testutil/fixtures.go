package testutil

import "github.com/junioryono/inject"

// Package paths of the test type universe.
const (
	VehiclePkg = "example.com/vehicle"
	ShopPkg    = "example.com/shop"
)

// Test type universe. Bases are declared once per process.
var (
	EngineBase = inject.NewBase(VehiclePkg+".Engine", 0)
	V6Base     = inject.NewBase(VehiclePkg+".V6", 0, EngineBase.Raw())
	V8Base     = inject.NewBase(VehiclePkg+".V8", 0, EngineBase.Raw())
	WheelBase  = inject.NewBase(VehiclePkg+".Wheel", 0)
	CarBase    = inject.NewBase(VehiclePkg+".Car", 0)
	GarageBase = inject.NewBase(ShopPkg+".Garage", 0)

	// Collection[T] <- List[T] <- ArrayList[T]; Box[T] is unrelated.
	CollectionBase = inject.NewBase("example.com/coll.Collection", 1)
	ListBase       = inject.NewBase("example.com/coll.List", 1, CollectionBase.Of(inject.Var(0)))
	ArrayListBase  = inject.NewBase("example.com/coll.ArrayList", 1, ListBase.Of(inject.Var(0)))
	BoxBase        = inject.NewBase("example.com/coll.Box", 1)

	// Pair[K, V] <- IntPair[V] fixes K to Number.
	NumberBase  = inject.NewBase("example.com/num.Number", 0)
	IntegerBase = inject.NewBase("example.com/num.Integer", 0, NumberBase.Raw())
	PairBase    = inject.NewBase("example.com/coll.Pair", 2)
	IntPairBase = inject.NewBase("example.com/coll.IntPair", 1, PairBase.Of(NumberBase.Raw(), inject.Var(0)))
)

// Convenience types of the universe.
var (
	EngineType = EngineBase.Raw()
	V6Type     = V6Base.Raw()
	V8Type     = V8Base.Raw()
	WheelType  = WheelBase.Raw()
	CarType    = CarBase.Raw()
	GarageType = GarageBase.Raw()
)
