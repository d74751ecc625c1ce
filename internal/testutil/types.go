package testutil

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/junioryono/inject"
)

// Common test errors
var (
	ErrTest        = errors.New("test error")
	ErrIntentional = errors.New("intentional error")
	ErrDisposal    = errors.New("disposal error")
)

// Engine is implemented by every test engine.
type Engine interface {
	Cylinders() int
}

// V6 is a six cylinder engine.
type V6 struct{ ID string }

func (*V6) Cylinders() int { return 6 }

// V8 is an eight cylinder engine.
type V8 struct{ ID string }

func (*V8) Cylinders() int { return 8 }

// NewV6 creates a V6 with a unique ID.
func NewV6() *V6 { return &V6{ID: uuid.NewString()} }

// NewV8 creates a V8 with a unique ID.
func NewV8() *V8 { return &V8{ID: uuid.NewString()} }

// Wheel is a named wheel position.
type Wheel struct{ Position string }

// Car is built from an engine and wheels.
type Car struct {
	ID     string
	Engine Engine
	Wheels []*Wheel
}

// NewCar creates a car.
func NewCar(engine Engine, wheels []*Wheel) *Car {
	return &Car{ID: uuid.NewString(), Engine: engine, Wheels: wheels}
}

// Garage holds a car.
type Garage struct {
	Car *Car
}

// NewGarage creates a garage.
func NewGarage(car *Car) *Garage {
	return &Garage{Car: car}
}

// Closer records Close calls in a shared log.
type Closer struct {
	Name string
	Log  *CloseLog
	Err  error
}

func (c *Closer) Close() error {
	c.Log.Add(c.Name)
	return c.Err
}

// CloseLog is a concurrency-safe record of closed names.
type CloseLog struct {
	mu    sync.Mutex
	names []string
}

// Add appends a name.
func (l *CloseLog) Add(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.names = append(l.names, name)
}

// Names returns the recorded names in order.
func (l *CloseLog) Names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.names...)
}

// CountingSupplier counts how often it produces.
type CountingSupplier struct {
	calls int64
	fn    func(ctx context.Context, dep inject.Dependency, inj inject.Injector) (any, error)
}

// NewCountingSupplier wraps fn.
func NewCountingSupplier(fn func(ctx context.Context, dep inject.Dependency, inj inject.Injector) (any, error)) *CountingSupplier {
	return &CountingSupplier{fn: fn}
}

// Counting returns a supplier producing a fresh value of newValue on every call.
func Counting(newValue func() any) *CountingSupplier {
	return NewCountingSupplier(func(context.Context, inject.Dependency, inject.Injector) (any, error) {
		return newValue(), nil
	})
}

// Supply implements inject.Supplier.
func (s *CountingSupplier) Supply(ctx context.Context, dep inject.Dependency, inj inject.Injector) (any, error) {
	atomic.AddInt64(&s.calls, 1)
	return s.fn(ctx, dep, inj)
}

// Calls returns the number of Supply calls so far.
func (s *CountingSupplier) Calls() int {
	return int(atomic.LoadInt64(&s.calls))
}
