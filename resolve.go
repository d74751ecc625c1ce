package inject

import (
	"context"
	"errors"
	"runtime/debug"
	"time"

	"github.com/sirupsen/logrus"
)

// resolver is implemented by injectors that can resolve on behalf of an outer
// injector, so suppliers see the whole composition.
type resolver interface {
	resolveFrom(ctx context.Context, dep Dependency, entry Injector) (any, error)
}

// resolutionError marks the engine's own resolution errors. A supplier returning
// one of them unwrapped passes it through without a ProductionError around it.
type resolutionError interface {
	error
	resolution()
}

func (NoResourceError) resolution()         {}
func (CycleError) resolution()              {}
func (UnstableDependencyError) resolution() {}
func (ProductionError) resolution()         {}
func (UsageError) resolution()              {}
func (DepthError) resolution()              {}

func (c *Container) resolveFrom(ctx context.Context, dep Dependency, entry Injector) (any, error) {
	if c.isClosed() {
		return nil, ErrContainerClosed
	}

	start := time.Now()
	v, err := c.resolve(ctx, dep, entry)
	c.metrics.resolved(time.Since(start), err)

	if err != nil {
		c.log(dep).WithError(err).Debug("resolution failed")
	}
	return v, err
}

func (c *Container) resolve(ctx context.Context, dep Dependency, entry Injector) (any, error) {
	wanted := dep.Wanted.Type
	switch {
	case wanted.IsZero():
		return nil, UsageError{Dependency: dep, Cause: ErrMissingType}
	case wanted.hasVariables():
		return nil, UsageError{Dependency: dep, Cause: ErrTypeVariable}
	case wanted.IsUpperBound() && dep.Depth() == 0:
		return nil, UsageError{Dependency: dep, Cause: ErrWildcardRequest}
	}

	if c.maxDepth > 0 && dep.Depth() >= c.maxDepth {
		return nil, DepthError{Dependency: dep, MaxDepth: c.maxDepth}
	}

	if wanted.IsArray() && !wanted.IsRaw() {
		return c.resolveArray(ctx, dep, entry)
	}

	e, ok := c.first(dep)
	if !ok {
		return nil, NoResourceError{Dependency: dep, Rejected: c.rejections(dep)}
	}
	return c.yield(ctx, dep, e, entry)
}

// resolveArray serves an explicit binding of the array type when there is one.
// Otherwise it produces every element candidate in rank order; elements that
// fail are left out.
func (c *Container) resolveArray(ctx context.Context, dep Dependency, entry Injector) (any, error) {
	if e, ok := c.first(dep); ok {
		return c.yield(ctx, dep, e, entry)
	}

	elem := dep.Request(Instance{Name: dep.Wanted.Name, Type: dep.Wanted.Type.Elem()})
	if elem.Wanted.Type.hasVariables() {
		return nil, UsageError{Dependency: dep, Cause: ErrTypeVariable}
	}

	candidates := c.all(elem)
	values := make([]any, 0, len(candidates))
	for _, e := range candidates {
		v, err := c.yield(ctx, elem, e, entry)
		if err != nil {
			c.log(elem).WithError(err).WithField("binding", e.binding.Resource.String()).
				Debug("array element excluded")
			continue
		}
		values = append(values, v)
	}
	return values, nil
}

// yield pushes the injection of e and serves it through e's repository.
func (c *Container) yield(ctx context.Context, dep Dependency, e *entry, entry Injector) (any, error) {
	pushed, err := dep.push(e.binding.Resource, e.binding.Source.Kind, e.scope)
	if err != nil {
		return nil, err
	}

	produced := false
	v, err := e.repo.Serve(ctx, e.serial, pushed, func(ctx context.Context) (v any, err error) {
		produced = true
		defer func() {
			if r := recover(); r != nil {
				err = ProductionError{
					Dependency: dep,
					Binding:    e.binding,
					Panic:      r,
					Stack:      debug.Stack(),
				}
			}
		}()

		v, err = e.binding.Supplier.Supply(ctx, pushed, entry)
		if err != nil {
			if re, ok := err.(resolutionError); ok {
				return nil, re
			}
			return nil, ProductionError{Dependency: dep, Binding: e.binding, Cause: err}
		}
		return v, nil
	})

	if err != nil {
		if isReentrant(err) {
			frame, _ := pushed.Target()
			return nil, CycleError{Dependency: dep, Injection: frame, Path: []Injection{frame}}
		}
		return nil, err
	}

	c.metrics.served(e.scope.Name(), !produced)
	c.log(dep).WithFields(logrus.Fields{
		"binding": e.binding.Resource.String(),
		"scope":   e.scope.Name(),
		"cached":  !produced,
	}).Debug("resolved")

	return v, nil
}

func isReentrant(err error) bool {
	if _, ok := err.(resolutionError); ok {
		return false
	}
	return errors.Is(err, ErrReentrantProduction)
}

func (c *Container) log(dep Dependency) logrus.FieldLogger {
	return c.logger.WithFields(logrus.Fields{
		"container":  c.id,
		"dependency": dep.String(),
	})
}
