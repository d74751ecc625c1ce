// Package invoke analyzes and calls constructor functions by reflection.
package invoke

import (
	"context"
	"reflect"
	"sync"

	"github.com/pkg/errors"
)

var (
	ctxType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errType = reflect.TypeOf((*error)(nil)).Elem()
)

var (
	// ErrNotFunc is returned for constructors that are not functions.
	ErrNotFunc = errors.New("constructor must be a function")

	// ErrNilFunc is returned for nil constructors.
	ErrNilFunc = errors.New("constructor cannot be nil")

	// ErrReturns is returned for constructors without a value result.
	ErrReturns = errors.New("constructor must return (T) or (T, error)")
)

// Signature describes an analyzed constructor.
type Signature struct {
	Type  reflect.Type
	Value reflect.Value

	// TakesContext is set when the first parameter is a context.Context. It is not
	// part of Params.
	TakesContext bool
	Params       []reflect.Type
	Result       reflect.Type
	HasError     bool
}

// Analyzer caches signatures by function pointer.
type Analyzer struct {
	mu    sync.RWMutex
	cache map[uintptr]*Signature
}

// New creates a new Analyzer.
func New() *Analyzer {
	return &Analyzer{cache: make(map[uintptr]*Signature)}
}

// Analyze validates fn and describes its parameters and results.
func (a *Analyzer) Analyze(fn any) (*Signature, error) {
	if fn == nil {
		return nil, ErrNilFunc
	}

	val := reflect.ValueOf(fn)
	if val.Kind() != reflect.Func {
		return nil, errors.Wrapf(ErrNotFunc, "got %T", fn)
	}
	if val.IsNil() {
		return nil, ErrNilFunc
	}

	key := val.Pointer()
	a.mu.RLock()
	if sig, ok := a.cache[key]; ok && sig.Type == val.Type() {
		a.mu.RUnlock()
		return sig, nil
	}
	a.mu.RUnlock()

	sig, err := analyze(val)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.cache[key] = sig
	a.mu.Unlock()

	return sig, nil
}

func analyze(val reflect.Value) (*Signature, error) {
	typ := val.Type()
	sig := &Signature{Type: typ, Value: val}

	if typ.IsVariadic() {
		return nil, errors.Errorf("variadic constructor %s is not supported", typ)
	}

	start := 0
	if typ.NumIn() > 0 && typ.In(0) == ctxType {
		sig.TakesContext = true
		start = 1
	}
	for i := start; i < typ.NumIn(); i++ {
		sig.Params = append(sig.Params, typ.In(i))
	}

	switch typ.NumOut() {
	case 1:
		if typ.Out(0) == errType {
			return nil, errors.Wrapf(ErrReturns, "%s", typ)
		}
	case 2:
		if typ.Out(1) != errType {
			return nil, errors.Wrapf(ErrReturns, "%s", typ)
		}
		sig.HasError = true
	default:
		return nil, errors.Wrapf(ErrReturns, "%s", typ)
	}
	sig.Result = typ.Out(0)

	return sig, nil
}

// Call invokes the constructor with args, which must match Params in number.
// Arguments are converted to the parameter types; nil becomes the zero value.
func (s *Signature) Call(ctx context.Context, args []any) (any, error) {
	if len(args) != len(s.Params) {
		return nil, errors.Errorf("%s takes %d arguments, got %d", s.Type, len(s.Params), len(args))
	}

	in := make([]reflect.Value, 0, len(args)+1)
	if s.TakesContext {
		in = append(in, reflect.ValueOf(&ctx).Elem())
	}
	for i, arg := range args {
		v, err := convert(arg, s.Params[i])
		if err != nil {
			return nil, errors.Wrapf(err, "argument %d of %s", i, s.Type)
		}
		in = append(in, v)
	}

	out := s.Value.Call(in)

	if s.HasError && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	return out[0].Interface(), nil
}

func convert(arg any, to reflect.Type) (reflect.Value, error) {
	if arg == nil {
		return reflect.Zero(to), nil
	}
	v := reflect.ValueOf(arg)
	switch {
	case v.Type().AssignableTo(to):
		if v.Type() == to {
			return v, nil
		}
		r := reflect.New(to).Elem()
		r.Set(v)
		return r, nil
	case v.Type().ConvertibleTo(to) && to.Kind() != reflect.String:
		return v.Convert(to), nil
	case to.Kind() == reflect.Slice:
		return convertSlice(v, to)
	}
	return reflect.Value{}, errors.Errorf("cannot use %s as %s", v.Type(), to)
}

// convertSlice converts an aggregate ([]any) into a typed slice.
func convertSlice(v reflect.Value, to reflect.Type) (reflect.Value, error) {
	if v.Kind() != reflect.Slice {
		return reflect.Value{}, errors.Errorf("cannot use %s as %s", v.Type(), to)
	}
	out := reflect.MakeSlice(to, 0, v.Len())
	for i := 0; i < v.Len(); i++ {
		e, err := convert(v.Index(i).Interface(), to.Elem())
		if err != nil {
			return reflect.Value{}, errors.Wrapf(err, "element %d", i)
		}
		out = reflect.Append(out, e)
	}
	return out, nil
}
