package inject_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/junioryono/inject"
)

func TestScopeRegistry(t *testing.T) {
	t.Parallel()

	t.Run("canonical scopes", func(t *testing.T) {
		t.Parallel()

		r := inject.MustScopeRegistry()
		assert.Equal(t, []inject.ScopeID{
			inject.ScopeApplication,
			inject.ScopeContainer,
			inject.ScopeDependencyType,
			inject.ScopeInjection,
			inject.ScopeStrand,
			inject.ScopeTargetInstance,
		}, r.IDs())
		assert.Contains(t, r.String(), `"strand"`)
	})

	t.Run("custom scope", func(t *testing.T) {
		t.Parallel()

		tenant := inject.Keyed("tenant", func(serial int, _ inject.Dependency) any { return serial }, false)
		r, err := inject.NewScopeRegistry(tenant)
		require.NoError(t, err)

		s, ok := r.Lookup("tenant")
		require.True(t, ok)
		assert.Equal(t, inject.ScopeID("tenant"), s.Name())
	})

	t.Run("duplicate", func(t *testing.T) {
		t.Parallel()

		dup := inject.Keyed(inject.ScopeContainer, func(serial int, _ inject.Dependency) any { return serial }, true)
		_, err := inject.NewScopeRegistry(dup)

		var se inject.ScopeError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, inject.ScopeContainer, se.Scope)
		assert.ErrorIs(t, err, inject.ErrScopeDuplicate)
		assert.Panics(t, func() { inject.MustScopeRegistry(dup) })
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()

		r := inject.MustScopeRegistry()
		assert.ErrorIs(t, r.Register(nil), inject.ErrScopeNil)
		assert.ErrorIs(t, r.Register(inject.Keyed("", nil, true)), inject.ErrScopeNameEmpty)
	})

	t.Run("unknown", func(t *testing.T) {
		t.Parallel()

		_, ok := inject.MustScopeRegistry().Lookup("nope")
		assert.False(t, ok)
	})
}

func TestScope_StableIn(t *testing.T) {
	t.Parallel()

	tenant := inject.Keyed("tenant", func(serial int, _ inject.Dependency) any { return serial }, false)
	r := inject.MustScopeRegistry(tenant)

	ids := []inject.ScopeID{
		inject.ScopeContainer,
		inject.ScopeApplication,
		inject.ScopeStrand,
		inject.ScopeInjection,
		inject.ScopeDependencyType,
		inject.ScopeTargetInstance,
		"tenant",
	}

	// stable[inner] lists the outer scopes inner may be injected into.
	stable := map[inject.ScopeID][]inject.ScopeID{
		inject.ScopeContainer:      ids,
		inject.ScopeApplication:    ids,
		inject.ScopeDependencyType: ids,
		inject.ScopeTargetInstance: ids,
		inject.ScopeStrand:         {inject.ScopeStrand, inject.ScopeInjection},
		inject.ScopeInjection:      {inject.ScopeInjection},
		"tenant":                   {"tenant", inject.ScopeInjection},
	}

	for _, inner := range ids {
		for _, outer := range ids {
			want := false
			for _, id := range stable[inner] {
				if id == outer {
					want = true
				}
			}
			got := lookupScope(t, r, inner).StableIn(lookupScope(t, r, outer))
			assert.Equal(t, want, got, "%s in %s", inner, outer)
		}
	}
}

func TestStrand(t *testing.T) {
	t.Parallel()

	_, ok := inject.StrandFrom(context.Background())
	assert.False(t, ok)

	ctx, release := inject.WithStrand(context.Background())
	st, ok := inject.StrandFrom(ctx)
	require.True(t, ok)
	assert.NotEmpty(t, st.ID())

	other, releaseOther := inject.WithStrand(context.Background())
	defer func() { _ = releaseOther() }()
	ost, _ := inject.StrandFrom(other)
	assert.NotEqual(t, st.ID(), ost.ID())

	require.NoError(t, release())
	require.NoError(t, release(), "release is idempotent")
}
