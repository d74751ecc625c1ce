// Package repository implements the per-key instance caches behind scopes.
//
// A Cache produces each key at most once. Callers racing on a missing key block on
// that key's slot only; unrelated keys never contend. A caller that would wait on a
// slot whose producer, directly or transitively, waits on a slot the caller holds
// gets ErrReentrant instead of blocking.
package repository

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	pkgerrors "github.com/pkg/errors"
)

var (
	// ErrReentrant is returned when a producer asks, directly or through nested
	// resolution, for the key it is producing, or when waiting for a slot would
	// close a cycle of call paths waiting on each other.
	ErrReentrant = errors.New("re-entrant production of a cache slot")

	// ErrClosed is returned by Serve after Close.
	ErrClosed = errors.New("repository is closed")
)

// Produce creates the value of a slot. The context carries the held slots.
type Produce func(ctx context.Context) (any, error)

// Disposable is implemented by values that need cleanup but are not io.Closers.
type Disposable interface {
	Dispose() error
}

// Statistics tracks cache activity.
type Statistics struct {
	Hits     int64
	Misses   int64
	Failures int64
	Created  int64
	Disposed int64
}

// Cache is a concurrent map of key to lazily produced value.
type Cache struct {
	slots sync.Map // key -> *slot

	// created values in production order, for LIFO disposal
	mu      sync.Mutex
	created []any

	stats  Statistics
	closed int32
}

type slot struct {
	mu    sync.Mutex
	ready atomic.Bool
	value any

	// owner is the held entry of the caller producing the slot
	owner atomic.Pointer[held]
}

// held is a linked list of slots held by the current call path.
type held struct {
	slot *slot
	next *held

	// waiting is the slot this producer, or one nested in it, is blocked on
	waiting atomic.Pointer[slot]
}

// maxWaitChain bounds the walk over waiting producers. A cycle among other
// callers is reported to one of them.
const maxWaitChain = 1 << 10

type heldKey struct{}

func (h *held) contains(s *slot) bool {
	for ; h != nil; h = h.next {
		if h.slot == s {
			return true
		}
	}
	return false
}

// closesCycle reports whether waiting for s would deadlock: the producer of s,
// or a producer it waits for in turn, waits for a slot h holds.
func (h *held) closesCycle(s *slot) bool {
	for i := 0; s != nil && i < maxWaitChain; i++ {
		if h.contains(s) {
			return true
		}
		owner := s.owner.Load()
		if owner == nil {
			return false
		}
		s = owner.waiting.Load()
	}
	return false
}

func (h *held) wait(s *slot) {
	for ; h != nil; h = h.next {
		h.waiting.Store(s)
	}
}

func (h *held) done(s *slot) {
	for ; h != nil; h = h.next {
		h.waiting.CompareAndSwap(s, nil)
	}
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{}
}

// Serve returns the value for key, calling produce at most once across all callers.
// hit reports whether the value was already present. Errors are not cached: the
// next caller produces again.
func (c *Cache) Serve(ctx context.Context, key any, produce Produce) (value any, hit bool, err error) {
	if c.isClosed() {
		return nil, false, ErrClosed
	}

	actual, _ := c.slots.LoadOrStore(key, &slot{})
	s := actual.(*slot)

	if s.ready.Load() {
		atomic.AddInt64(&c.stats.Hits, 1)
		return s.value, true, nil
	}

	chain, _ := ctx.Value(heldKey{}).(*held)
	if chain.contains(s) {
		return nil, false, pkgerrors.WithStack(ErrReentrant)
	}

	if !s.mu.TryLock() {
		if chain != nil {
			chain.wait(s)
			if chain.closesCycle(s) {
				chain.done(s)
				return nil, false, pkgerrors.WithStack(ErrReentrant)
			}
		}
		s.mu.Lock()
		chain.done(s)
	}
	h := &held{slot: s, next: chain}
	s.owner.Store(h)
	defer func() {
		s.owner.Store(nil)
		s.mu.Unlock()
	}()

	// Another caller may have published while we waited.
	if s.ready.Load() {
		atomic.AddInt64(&c.stats.Hits, 1)
		return s.value, true, nil
	}

	atomic.AddInt64(&c.stats.Misses, 1)
	value, err = produce(context.WithValue(ctx, heldKey{}, h))
	if err != nil {
		atomic.AddInt64(&c.stats.Failures, 1)
		return nil, false, err
	}

	s.value = value
	s.ready.Store(true)
	c.track(value)

	return value, false, nil
}

// Get returns the published value for key.
func (c *Cache) Get(key any) (any, bool) {
	actual, ok := c.slots.Load(key)
	if !ok {
		return nil, false
	}
	s := actual.(*slot)
	if !s.ready.Load() {
		return nil, false
	}
	return s.value, true
}

// Len returns the number of published values.
func (c *Cache) Len() int {
	n := 0
	c.slots.Range(func(_, v any) bool {
		if v.(*slot).ready.Load() {
			n++
		}
		return true
	})
	return n
}

// Statistics returns a snapshot of the cache counters.
func (c *Cache) Statistics() Statistics {
	return Statistics{
		Hits:     atomic.LoadInt64(&c.stats.Hits),
		Misses:   atomic.LoadInt64(&c.stats.Misses),
		Failures: atomic.LoadInt64(&c.stats.Failures),
		Created:  atomic.LoadInt64(&c.stats.Created),
		Disposed: atomic.LoadInt64(&c.stats.Disposed),
	}
}

func (c *Cache) track(value any) {
	atomic.AddInt64(&c.stats.Created, 1)
	switch value.(type) {
	case io.Closer, Disposable:
	default:
		return
	}
	c.mu.Lock()
	c.created = append(c.created, value)
	c.mu.Unlock()
}

// Close disposes produced values in reverse creation order and joins their errors.
// Closing twice is a no-op.
func (c *Cache) Close() error {
	if !atomic.CompareAndSwapInt32(&c.closed, 0, 1) {
		return nil
	}

	c.mu.Lock()
	created := c.created
	c.created = nil
	c.mu.Unlock()

	var errs []error
	for i := len(created) - 1; i >= 0; i-- {
		if err := dispose(created[i]); err != nil {
			errs = append(errs, err)
		}
		atomic.AddInt64(&c.stats.Disposed, 1)
	}

	c.slots.Range(func(k, _ any) bool {
		c.slots.Delete(k)
		return true
	})

	return errors.Join(errs...)
}

func (c *Cache) isClosed() bool {
	return atomic.LoadInt32(&c.closed) == 1
}

func dispose(value any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = pkgerrors.Errorf("panic while disposing %T: %v", value, r)
		}
	}()

	switch v := value.(type) {
	case io.Closer:
		err = v.Close()
	case Disposable:
		err = v.Dispose()
	}
	if err != nil {
		return pkgerrors.Wrapf(err, "dispose %T", value)
	}
	return nil
}
