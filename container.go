package inject

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	metrics "github.com/rcrowley/go-metrics"
	"github.com/sirupsen/logrus"
)

// Container resolves dependencies against an immutable set of bindings.
// It is safe for concurrent use.
type Container struct {
	id string

	// immutable after New
	entries []*entry
	index   map[*Base][]*entry

	// one repository per scope in use, in registration order of first use
	repos     map[ScopeID]Repository
	repoOrder []ScopeID

	scopes     *ScopeRegistry
	ownsScopes bool

	logger   logrus.FieldLogger
	metrics  *resolveMetrics
	maxDepth int

	closed int32 // atomic
}

// entry is a binding as held by a container.
type entry struct {
	binding Binding
	serial  int
	scope   Scope
	repo    Repository
}

// New builds a container from bindings.
//
// Building fails with a BuildError when a binding is invalid, refers to an
// unregistered scope, or clashes with another binding of the same resource and
// declaration kind.
func New(bindings []Binding, opts ...Option) (*Container, error) {
	o, err := buildOptions(opts)
	if err != nil {
		return nil, BuildError{Phase: "options", Details: "scope registry", Cause: err}
	}

	c := &Container{
		id:         uuid.NewString(),
		repos:      make(map[ScopeID]Repository),
		scopes:     o.scopes,
		ownsScopes: o.ownsScopes,
		logger:     o.logger,
		metrics:    newResolveMetrics(o.metrics),
		maxDepth:   o.maxDepth,
	}

	if err := c.validate(bindings); err != nil {
		return nil, err
	}
	if err := c.assignScopes(bindings); err != nil {
		return nil, err
	}
	if err := c.buildIndex(); err != nil {
		_ = c.closeRepositories()
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"container": c.id,
		"bindings":  len(c.entries),
		"scopes":    len(c.repoOrder),
	}).Info("container built")

	return c, nil
}

// MustNew is like New but panics on error.
func MustNew(bindings []Binding, opts ...Option) *Container {
	c, err := New(bindings, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Container) validate(bindings []Binding) error {
	for i, b := range bindings {
		var cause error
		t := b.Resource.Instance.Type
		switch {
		case b.Supplier == nil:
			cause = ErrSupplierNil
		case t.IsZero():
			cause = ErrMissingType
		case t.IsUpperBound():
			cause = ErrResourceWildcard
		case t.hasVariables():
			cause = ErrTypeVariable
		}
		if cause != nil {
			return BuildError{
				Phase:   "validation",
				Details: fmt.Sprintf("binding %d (%s)", i, b.Resource),
				Cause:   cause,
			}
		}
	}
	return nil
}

func (c *Container) assignScopes(bindings []Binding) error {
	c.entries = make([]*entry, len(bindings))
	for i, b := range bindings {
		if b.Scope == "" {
			b.Scope = ScopeContainer
		}

		s, ok := c.scopes.Lookup(b.Scope)
		if !ok {
			_ = c.closeRepositories()
			bc := b
			return BuildError{
				Phase:   "scopes",
				Details: fmt.Sprintf("binding %d (%s)", i, b.Resource),
				Cause:   ScopeError{Binding: &bc, Scope: b.Scope, Cause: ErrScopeUnregistered},
			}
		}

		repo, ok := c.repos[b.Scope]
		if !ok {
			repo = s.NewRepository()
			c.repos[b.Scope] = repo
			c.repoOrder = append(c.repoOrder, b.Scope)
		}

		c.entries[i] = &entry{binding: b, serial: i, scope: s, repo: repo}
	}
	return nil
}

// ID returns the unique identifier of the container.
func (c *Container) ID() string {
	return c.id
}

// Bindings returns a copy of the container's bindings in serial order.
// Bindings declared without a scope report ScopeContainer.
func (c *Container) Bindings() []Binding {
	out := make([]Binding, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.binding
	}
	return out
}

// Scopes returns the registry the container was built against.
func (c *Container) Scopes() *ScopeRegistry {
	return c.scopes
}

// Metrics returns the registry resolution metrics are recorded in.
func (c *Container) Metrics() metrics.Registry {
	return c.metrics.registry
}

// Close disposes every instance cached by the container's repositories, most
// recently used scope first. Application-scoped instances are disposed with the
// ScopeRegistry unless the container created its own registry.
func (c *Container) Close() error {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}

	err := c.closeRepositories()
	if c.ownsScopes {
		err = errors.Join(err, c.scopes.Close())
	}

	c.logger.WithField("container", c.id).Debug("container closed")
	return err
}

func (c *Container) closeRepositories() error {
	var errs []error
	for i := len(c.repoOrder) - 1; i >= 0; i-- {
		id := c.repoOrder[i]
		if err := c.repos[id].Close(); err != nil {
			errs = append(errs, fmt.Errorf("scope %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

func (c *Container) isClosed() bool {
	return atomic.LoadInt32(&c.closed) != 0
}

// Resolve resolves dep. Suppliers receive c as their injector.
func (c *Container) Resolve(ctx context.Context, dep Dependency) (any, error) {
	return c.resolveFrom(ctx, dep, c)
}

func (c *Container) String() string {
	return fmt.Sprintf("Container(%s, %d bindings)", c.id, len(c.entries))
}
