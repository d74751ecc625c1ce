package repository

import (
	"errors"
	"sync"
	"sync/atomic"
)

// Strands keeps one Cache per strand identity. Caches of different strands never
// share slots, so strands do not contend with each other.
type Strands struct {
	caches sync.Map // strand id -> *Cache
	closed int32
}

// NewStrands creates an empty strand set.
func NewStrands() *Strands {
	return &Strands{}
}

// For returns the cache of strand id. fresh reports whether this call created it.
func (s *Strands) For(id string) (cache *Cache, fresh bool, err error) {
	if atomic.LoadInt32(&s.closed) == 1 {
		return nil, false, ErrClosed
	}
	actual, loaded := s.caches.LoadOrStore(id, New())
	return actual.(*Cache), !loaded, nil
}

// Release closes and forgets the cache of strand id.
func (s *Strands) Release(id string) error {
	actual, ok := s.caches.LoadAndDelete(id)
	if !ok {
		return nil
	}
	return actual.(*Cache).Close()
}

// Active returns the number of strands with a cache.
func (s *Strands) Active() int {
	n := 0
	s.caches.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Close releases every strand.
func (s *Strands) Close() error {
	if !atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		return nil
	}
	var errs []error
	s.caches.Range(func(k, _ any) bool {
		if err := s.Release(k.(string)); err != nil {
			errs = append(errs, err)
		}
		return true
	})
	return errors.Join(errs...)
}
