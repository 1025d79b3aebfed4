package sqlitestore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formkit/pkg/schema"
	"github.com/goliatone/go-formkit/pkg/store"
	"github.com/goliatone/go-formkit/pkg/testsupport"
)

func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "forms.db")
	s, err := Open(context.Background(), path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func form(id string, created time.Time) schema.FormSchema {
	return schema.FormSchema{
		ID:        id,
		Name:      "Form " + id,
		CreatedAt: created,
		Fields: []schema.Field{
			{ID: "pw", Label: "Password", Type: schema.FieldTypeText, Validations: []schema.ValidationRule{schema.Password(8, true)}},
		},
	}
}

func TestSaveLoadPreservesOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := createTestStore(t)
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	forms := []schema.FormSchema{form("c", base.Add(2*time.Hour)), form("a", base), form("b", base.Add(time.Hour))}
	require.NoError(t, s.Save(ctx, forms))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{got[0].ID, got[1].ID, got[2].ID})
	assert.True(t, got[1].CreatedAt.Equal(base))
	assert.Equal(t, []schema.ValidationRule{schema.Password(8, true)}, got[0].Fields[0].Validations)
}

func TestSaveReplacesPreviousRows(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := createTestStore(t)
	now := time.Now().UTC()

	require.NoError(t, s.Save(ctx, []schema.FormSchema{form("a", now), form("b", now)}))
	require.NoError(t, s.Save(ctx, []schema.FormSchema{form("b", now)}))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)

	require.NoError(t, s.Save(ctx, nil))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDataSurvivesReopen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "forms.db")

	s, err := Open(ctx, path, nil)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, []schema.FormSchema{form("a", time.Now().UTC())}))
	require.NoError(t, s.Close())

	reopened, err := store.Open(ctx, store.Config{Driver: Driver, Path: path})
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Form a", got[0].Name)
}

func TestInMemoryDriver(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, err := store.Open(ctx, store.Config{Driver: Driver, InMemory: true})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Save(ctx, []schema.FormSchema{form("m", time.Now().UTC())}))
	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestStoreContract(t *testing.T) {
	testsupport.RunStoreContract(t, func(t *testing.T) store.Store {
		return createTestStore(t)
	})
}
