package supply

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/dig"

	"github.com/junioryono/inject"
)

var errType = reflect.TypeOf((*error)(nil)).Elem()

// ErrDigExtract is returned when a dig container invokes the extractor without a value.
var ErrDigExtract = errors.New("dig did not provide a value")

// digLocks serializes invocations per dig container.
var digLocks sync.Map // *dig.Container -> *sync.Mutex

func digLock(c *dig.Container) *sync.Mutex {
	mu, _ := digLocks.LoadOrStore(c, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// Dig supplies the value of type typ from a dig container.
func Dig(c *dig.Container, typ reflect.Type) inject.Supplier {
	return DigNamed(c, typ, "")
}

// DigNamed supplies the value of type typ provided to c with dig.Name(name).
// An empty name selects the unnamed value.
func DigNamed(c *dig.Container, typ reflect.Type, name string) inject.Supplier {
	return inject.SupplierFunc(func(context.Context, inject.Dependency, inject.Injector) (any, error) {
		if c == nil || typ == nil {
			return nil, fmt.Errorf("dig supplier: container and type are required")
		}
		return extract(c, typ, name)
	})
}

func extract(c *dig.Container, typ reflect.Type, name string) (any, error) {
	paramType := typ
	if name != "" {
		paramType = reflect.StructOf([]reflect.StructField{
			{
				Name:      "In",
				Type:      reflect.TypeOf(dig.In{}),
				Anonymous: true,
			},
			{
				Name: "Value",
				Type: typ,
				Tag:  reflect.StructTag(fmt.Sprintf(`name:"%s"`, name)),
			},
		})
	}

	var result any
	fnType := reflect.FuncOf([]reflect.Type{paramType}, []reflect.Type{errType}, false)
	fn := reflect.MakeFunc(fnType, func(args []reflect.Value) []reflect.Value {
		if len(args) == 0 || !args[0].IsValid() {
			return []reflect.Value{reflect.ValueOf(&ErrDigExtract).Elem()}
		}
		v := args[0]
		if name != "" {
			v = v.FieldByName("Value")
		}
		result = v.Interface()
		return []reflect.Value{reflect.Zero(errType)}
	})

	mu := digLock(c)
	mu.Lock()
	err := c.Invoke(fn.Interface())
	mu.Unlock()

	if err != nil {
		return nil, fmt.Errorf("dig supplier for %s: %w", typ, err)
	}
	return result, nil
}
