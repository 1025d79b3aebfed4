package testsupport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formkit/pkg/schema"
	"github.com/goliatone/go-formkit/pkg/store"
)

// RunStoreContract exercises the behaviour every store backend shares. open
// must return a fresh, empty store on each call.
func RunStoreContract(t *testing.T, open func(t *testing.T) store.Store) {
	t.Helper()

	t.Run("empty store loads empty list", func(t *testing.T) {
		s := open(t)
		defer s.Close()

		got, err := s.Load(Context())
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("save then load keeps list order and content", func(t *testing.T) {
		s := open(t)
		defer s.Close()

		order := MustLoadFixture(t, OrderFixture)
		signup := MustLoadFixture(t, SignupFixture)
		require.NoError(t, s.Save(Context(), []schema.FormSchema{signup, order}))

		got, err := s.Load(Context())
		require.NoError(t, err)
		require.Len(t, got, 2)
		if diff := CompareGolden([]schema.FormSchema{signup, order}, got); diff != "" {
			t.Fatalf("loaded forms mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("save replaces previous list", func(t *testing.T) {
		s := open(t)
		defer s.Close()

		order := MustLoadFixture(t, OrderFixture)
		signup := MustLoadFixture(t, SignupFixture)
		require.NoError(t, s.Save(Context(), []schema.FormSchema{signup, order}))
		require.NoError(t, s.Save(Context(), []schema.FormSchema{order}))

		got, err := s.Load(Context())
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, order.ID, got[0].ID)
	})

	t.Run("closed store rejects calls", func(t *testing.T) {
		s := open(t)
		require.NoError(t, s.Close())

		_, err := s.Load(Context())
		assert.ErrorIs(t, err, store.ErrClosed)
		assert.ErrorIs(t, s.Save(Context(), nil), store.ErrClosed)
		assert.NoError(t, s.Close())
	})
}
