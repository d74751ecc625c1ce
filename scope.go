package inject

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/junioryono/inject/internal/repository"
)

// ScopeID names a scope. Bindings refer to their scope by ID.
type ScopeID string

// Canonical scopes, registered in every ScopeRegistry.
const (
	// ScopeContainer caches one instance per binding per container.
	ScopeContainer ScopeID = "container"

	// ScopeApplication caches one instance per resource across all containers
	// sharing a ScopeRegistry.
	ScopeApplication ScopeID = "application"

	// ScopeStrand caches one instance per binding per strand. See WithStrand.
	ScopeStrand ScopeID = "strand"

	// ScopeInjection never caches: every injection gets a new instance.
	ScopeInjection ScopeID = "injection"

	// ScopeDependencyType caches one instance per binding and wanted type.
	ScopeDependencyType ScopeID = "dependency-type"

	// ScopeTargetInstance caches one instance per binding and consumer resource.
	ScopeTargetInstance ScopeID = "target-instance"
)

func (id ScopeID) String() string { return string(id) }

// Provide produces a value for a repository slot.
type Provide func(ctx context.Context) (any, error)

// Repository is the instance cache behind a scope within one container.
//
// Serve returns the value for the slot derived from serial and dep, calling
// provide at most once per slot. dep already carries the binding's injection as
// its innermost frame.
type Repository interface {
	Serve(ctx context.Context, serial int, dep Dependency, provide Provide) (any, error)
	Close() error
}

// Scope is a lifecycle policy: a name, a stability relation and a repository factory.
type Scope interface {
	Name() ScopeID

	// StableIn reports whether instances of this scope may be injected into
	// instances of outer.
	StableIn(outer Scope) bool

	// NewRepository creates the repository a container uses for this scope.
	NewRepository() Repository
}

// KeyFunc derives the cache key of a slot. Keys must be comparable.
type KeyFunc func(serial int, dep Dependency) any

type scope struct {
	name     ScopeID
	stableIn func(outer Scope) bool
	newRepo  func() Repository
}

func (s *scope) Name() ScopeID             { return s.name }
func (s *scope) StableIn(outer Scope) bool { return s.stableIn(outer) }
func (s *scope) NewRepository() Repository { return s.newRepo() }
func (s *scope) String() string            { return string(s.name) }

// NewScope creates a scope with a custom stability relation and repository.
func NewScope(name ScopeID, stableIn func(outer Scope) bool, newRepository func() Repository) Scope {
	return &scope{name: name, stableIn: stableIn, newRepo: newRepository}
}

// Keyed creates a caching scope whose slots are derived with key. A scope that is
// stable by design may be injected anywhere; otherwise it is stable in itself and
// in the injection scope only.
func Keyed(name ScopeID, key KeyFunc, stableByDesign bool) Scope {
	return &scope{
		name:     name,
		stableIn: stability(name, stableByDesign),
		newRepo:  func() Repository { return &cachingRepository{cache: repository.New(), key: key} },
	}
}

func stability(name ScopeID, stableByDesign bool) func(Scope) bool {
	return func(outer Scope) bool {
		if stableByDesign {
			return true
		}
		return outer.Name() == name || outer.Name() == ScopeInjection
	}
}

// cachingRepository serves slots from one cache.
type cachingRepository struct {
	cache *repository.Cache
	key   KeyFunc
	// shared repositories are closed by their owner
	shared bool
}

func (r *cachingRepository) Serve(ctx context.Context, serial int, dep Dependency, provide Provide) (any, error) {
	v, _, err := r.cache.Serve(ctx, r.key(serial, dep), repository.Produce(provide))
	return v, err
}

func (r *cachingRepository) Close() error {
	if r.shared {
		return nil
	}
	return r.cache.Close()
}

type injectionRepository struct{}

func (injectionRepository) Serve(ctx context.Context, _ int, _ Dependency, provide Provide) (any, error) {
	return provide(ctx)
}

func (injectionRepository) Close() error { return nil }

// strandRepository keeps one cache per strand. Caches are released with the strand.
type strandRepository struct {
	strands *repository.Strands
}

func (r *strandRepository) Serve(ctx context.Context, serial int, _ Dependency, provide Provide) (any, error) {
	st, ok := StrandFrom(ctx)
	if !ok {
		return nil, ErrNoStrand
	}

	cache, fresh, err := r.strands.For(st.ID())
	if err != nil {
		return nil, err
	}
	if fresh {
		id := st.ID()
		if !st.onRelease(func() error { return r.strands.Release(id) }) {
			_ = r.strands.Release(id)
			return nil, ErrStrandReleased
		}
	}

	v, _, err := cache.Serve(ctx, serial, repository.Produce(provide))
	return v, err
}

func (r *strandRepository) Close() error {
	return r.strands.Close()
}

type slotKey struct {
	serial int
	key    string
}

func serialKey(serial int, _ Dependency) any { return serial }

func wantedTypeKey(serial int, dep Dependency) any {
	return slotKey{serial: serial, key: dep.Wanted.Type.key()}
}

func consumerKey(serial int, dep Dependency) any {
	h := dep.hierarchy
	if len(h) < 2 {
		return slotKey{serial: serial}
	}
	return slotKey{serial: serial, key: h[len(h)-2].Target.key()}
}

// resourceKey identifies a binding across containers: bindings of one resource
// differ only by declaration kind.
func resourceKey(_ int, dep Dependency) any {
	f, ok := dep.Target()
	if !ok {
		return ""
	}
	return f.Target.key() + "/" + f.kind.String()
}

func canonicalScopes(app *repository.Cache) []Scope {
	strandStable := func(outer Scope) bool {
		return outer.Name() == ScopeStrand || outer.Name() == ScopeInjection
	}
	return []Scope{
		Keyed(ScopeContainer, serialKey, true),
		NewScope(ScopeApplication, stability(ScopeApplication, true), func() Repository {
			return &cachingRepository{cache: app, key: resourceKey, shared: true}
		}),
		NewScope(ScopeStrand, strandStable, func() Repository {
			return &strandRepository{strands: repository.NewStrands()}
		}),
		NewScope(ScopeInjection, func(outer Scope) bool { return outer.Name() == ScopeInjection }, func() Repository {
			return injectionRepository{}
		}),
		Keyed(ScopeDependencyType, wantedTypeKey, true),
		Keyed(ScopeTargetInstance, consumerKey, true),
	}
}

// ScopeRegistry maps scope IDs to scopes. Containers built with the same registry
// share the application scope's instances.
type ScopeRegistry struct {
	mu     sync.RWMutex
	scopes map[ScopeID]Scope
	app    *repository.Cache
}

// NewScopeRegistry creates a registry holding the canonical scopes plus custom.
// Registering a name twice is an error.
func NewScopeRegistry(custom ...Scope) (*ScopeRegistry, error) {
	r := &ScopeRegistry{
		scopes: make(map[ScopeID]Scope),
		app:    repository.New(),
	}
	for _, s := range canonicalScopes(r.app) {
		r.scopes[s.Name()] = s
	}
	for _, s := range custom {
		if err := r.Register(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// MustScopeRegistry is like NewScopeRegistry but panics on error.
func MustScopeRegistry(custom ...Scope) *ScopeRegistry {
	r, err := NewScopeRegistry(custom...)
	if err != nil {
		panic(err)
	}
	return r
}

// Register adds a custom scope.
func (r *ScopeRegistry) Register(s Scope) error {
	if s == nil {
		return ScopeError{Cause: ErrScopeNil}
	}
	if s.Name() == "" {
		return ScopeError{Cause: ErrScopeNameEmpty}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.scopes[s.Name()]; exists {
		return ScopeError{Scope: s.Name(), Cause: ErrScopeDuplicate}
	}
	r.scopes[s.Name()] = s
	return nil
}

// Lookup returns the scope registered under id.
func (r *ScopeRegistry) Lookup(id ScopeID) (Scope, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.scopes[id]
	return s, ok
}

// IDs returns the registered scope IDs in lexical order.
func (r *ScopeRegistry) IDs() []ScopeID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]ScopeID, 0, len(r.scopes))
	for id := range r.scopes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Close disposes the application scope's instances.
func (r *ScopeRegistry) Close() error {
	if err := r.app.Close(); err != nil {
		return fmt.Errorf("close application scope: %w", err)
	}
	return nil
}

func (r *ScopeRegistry) String() string {
	ids := r.IDs()
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Quote(string(id))
	}
	return fmt.Sprintf("ScopeRegistry%v", parts)
}
