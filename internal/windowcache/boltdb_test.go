package windowcache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SteelMorgan/logslice/internal/domain"
)

func newTestStore(t *testing.T) *BoltStore {
	t.Helper()
	store, err := NewBoltStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestBoltStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	want := domain.Window{Start: 1024, End: 4096}
	require.NoError(t, store.Put(ctx, "/var/log/app.log", 10_000, "2024-01-02", want))

	got, ok, err := store.Get(ctx, "/var/log/app.log", 10_000, "2024-01-02")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestBoltStoreMiss(t *testing.T) {
	store := newTestStore(t)

	_, ok, err := store.Get(context.Background(), "/var/log/app.log", 10_000, "2024-01-02")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBoltStoreKeyIncludesFileSize(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// A grown file must not reuse a window located against the old size.
	require.NoError(t, store.Put(ctx, "/var/log/app.log", 10_000, "2024-01-02", domain.Window{Start: 0, End: 10_000}))

	_, ok, err := store.Get(ctx, "/var/log/app.log", 20_000, "2024-01-02")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBoltStoreKeyIncludesDate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "/var/log/app.log", 10_000, "2024-01-02", domain.Window{Start: 0, End: 512}))

	_, ok, err := store.Get(ctx, "/var/log/app.log", 10_000, "2024-01-03")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBoltStorePutOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a.log", 100, "2024-01-02", domain.Window{Start: 1, End: 2}))
	require.NoError(t, store.Put(ctx, "a.log", 100, "2024-01-02", domain.Window{Start: 3, End: 4}))

	got, ok, err := store.Get(ctx, "a.log", 100, "2024-01-02")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.Window{Start: 3, End: 4}, got)
}
