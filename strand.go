package inject

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// Strand is an isolated line of work, such as one request, carried by a context.
// Strand-scoped bindings produce one instance per strand.
type Strand struct {
	id string

	mu       sync.Mutex
	hooks    []func() error
	released bool
}

type strandKey struct{}

// WithStrand returns a context carrying a new strand and the function releasing it.
// Releasing disposes the strand's instances in every container it was used with.
func WithStrand(ctx context.Context) (context.Context, func() error) {
	st := &Strand{id: uuid.NewString()}
	return context.WithValue(ctx, strandKey{}, st), st.release
}

// StrandFrom returns the strand carried by ctx.
func StrandFrom(ctx context.Context) (*Strand, bool) {
	st, ok := ctx.Value(strandKey{}).(*Strand)
	return st, ok
}

// ID returns the strand's unique identifier.
func (s *Strand) ID() string { return s.id }

// onRelease registers fn to run on release. It reports false when the strand is
// already released.
func (s *Strand) onRelease(fn func() error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return false
	}
	s.hooks = append(s.hooks, fn)
	return true
}

func (s *Strand) release() error {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return nil
	}
	s.released = true
	hooks := s.hooks
	s.hooks = nil
	s.mu.Unlock()

	var errs []error
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
