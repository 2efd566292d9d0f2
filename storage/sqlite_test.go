package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "data", "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteUsers(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()

	class, err := s.GetClass(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, class)

	require.NoError(t, s.SaveClass(ctx, 42, "10Б"))
	require.NoError(t, s.SaveClass(ctx, 7, "9 А"))
	require.NoError(t, s.SaveClass(ctx, 42, "11В"))

	class, err = s.GetClass(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, "11В", class)

	ids, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{7, 42}, ids)
}

func TestSQLiteDocument(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()

	data, err := s.LoadDocument(ctx)
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, s.SaveDocument(ctx, []byte("%PDF-1")))
	require.NoError(t, s.SaveDocument(ctx, []byte("%PDF-2")))

	data, err = s.LoadDocument(ctx)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-2", string(data))
}

func TestOpenSQLiteBackend(t *testing.T) {
	store, err := Open(context.Background(), Options{
		Backend:    "sqlite",
		SQLitePath: filepath.Join(t.TempDir(), "bot.db"),
	})
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.SaveClass(context.Background(), 1, "5А"))
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), Options{Backend: "mongo"})
	assert.ErrorContains(t, err, "unknown storage backend")
}
