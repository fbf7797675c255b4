package cache

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSQLiteStore_RoundTrip(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "artifacts.db"))
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	_, err = store.Get(ctx, "tracks")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Put(ctx, "tracks", "tracking", []byte(`{"a":1}`)))
	require.NoError(t, store.Put(ctx, "tracks", "tracking", []byte(`{"a":2}`)))

	got, err := store.Get(ctx, "tracks")
	require.NoError(t, err)
	require.JSONEq(t, `{"a":2}`, string(got))

	require.NoError(t, store.Delete(ctx, "tracks"))
	_, err = store.Get(ctx, "tracks")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_BacksCache(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "artifacts.db"))
	require.NoError(t, err)
	defer store.Close()
	c, _ := newTestCache(t, store)
	calls := 0
	st := countingStage(&calls, payload{Frames: []int{1, 2}}, nil)

	_, _, err = LoadOrCompute(context.Background(), c, st, true)
	require.NoError(t, err)
	v, status, err := LoadOrCompute(context.Background(), c, st, true)
	require.NoError(t, err)

	require.Equal(t, Hit, status)
	require.Equal(t, 1, calls)
	require.Equal(t, []int{1, 2}, v.Frames)
}

func TestFileStore_DeleteMissing(t *testing.T) {
	require.NoError(t, NewFileStore(t.TempDir()).Delete(context.Background(), "nope"))
}
