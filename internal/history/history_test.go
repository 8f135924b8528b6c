package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "data", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreAddAndRecent(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	first, err := store.Add(ctx, Record{
		Platform:    "telegram",
		Success:     true,
		PostID:      "42",
		ContentKind: "text",
		CreatedAt:   base,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID, "a missing ID is generated")

	_, err = store.Add(ctx, Record{
		Platform:  "facebook",
		Success:   false,
		Error:     "request failed (status 401)",
		CreatedAt: base.Add(time.Minute),
	})
	require.NoError(t, err)

	records, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "facebook", records[0].Platform, "newest first")
	assert.False(t, records[0].Success)
	assert.Equal(t, "request failed (status 401)", records[0].Error)

	assert.Equal(t, "telegram", records[1].Platform)
	assert.True(t, records[1].Success)
	assert.Equal(t, "42", records[1].PostID)
	assert.Equal(t, "text", records[1].ContentKind)
}

func TestStoreRecentLimit(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		_, err := store.Add(ctx, Record{
			Platform:  "telegram",
			Success:   true,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	records, err := store.Recent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestStoreCounts(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	total, succeeded, err := store.Counts(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Zero(t, succeeded)

	for _, ok := range []bool{true, true, false} {
		_, err := store.Add(ctx, Record{Platform: "linkedin", Success: ok})
		require.NoError(t, err)
	}

	total, succeeded, err = store.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, int64(2), succeeded)
}

func TestOpenCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "posts.db")
	store, err := Open(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}
