package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()

	sqlite, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "sub", "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlite.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()

	for name, store := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := store.Get(ctx, "token")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, store.Put(ctx, map[string]string{"token": "abc", "username": "alice"}))

			v, ok, err := store.Get(ctx, "token")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "abc", v)

			require.NoError(t, store.Put(ctx, map[string]string{"token": "def"}))
			v, _, _ = store.Get(ctx, "token")
			assert.Equal(t, "def", v, "put should overwrite")

			require.NoError(t, store.Delete(ctx, "token", "username", "never-set"))
			_, ok, _ = store.Get(ctx, "token")
			assert.False(t, ok)
			_, ok, _ = store.Get(ctx, "username")
			assert.False(t, ok)
		})
	}
}

func TestSQLiteStore_PersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "session.db")

	s1, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s1.Put(ctx, map[string]string{"username": "alice"}))
	require.NoError(t, s1.Close())

	s2, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer s2.Close()

	v, ok, err := s2.Get(ctx, "username")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "alice", v)
}
