package kv

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) *sqliteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")
	s, err := openSQLite(context.Background(), "sqlite://"+dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStores(t *testing.T) {
	backends := map[string]func(t *testing.T) Store{
		"mem":    func(t *testing.T) Store { return NewMem() },
		"sqlite": func(t *testing.T) Store { return openTestSQLite(t) },
	}
	for name, mk := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := mk(t)

			_, err := s.Get(ctx, "missing")
			require.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, s.Set(ctx, "theme", "dark"))
			v, err := s.Get(ctx, "theme")
			require.NoError(t, err)
			assert.Equal(t, "dark", v)

			require.NoError(t, s.Set(ctx, "theme", "light"))
			v, err = s.Get(ctx, "theme")
			require.NoError(t, err)
			assert.Equal(t, "light", v)

			require.NoError(t, s.SetMany(ctx, Pair{"notes", "[]"}, Pair{"lastActiveNote", "1"}))
			keys, err := s.Keys(ctx)
			require.NoError(t, err)
			assert.Equal(t, []string{"lastActiveNote", "notes", "theme"}, keys)

			require.NoError(t, s.Delete(ctx, "theme"))
			require.NoError(t, s.Delete(ctx, "theme"))
			_, err = s.Get(ctx, "theme")
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestSQLiteChecksumMismatch(t *testing.T) {
	ctx := context.Background()
	s := openTestSQLite(t)
	require.NoError(t, s.Set(ctx, "notes", `[{"id":"1"}]`))

	_, err := s.db.ExecContext(ctx, `UPDATE kv SET value=? WHERE key=?`, `[{"id":"1"`, "notes")
	require.NoError(t, err)

	v, err := s.Get(ctx, "notes")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCorrupt))
	assert.Equal(t, `[{"id":"1"`, v, "raw value is still returned for salvage")
}

func TestSQLitePersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")

	s1, err := Open(ctx, "sqlite://"+path)
	require.NoError(t, err)
	require.NoError(t, s1.Set(ctx, "k", "v"))
	require.NoError(t, s1.Close())

	s2, err := Open(ctx, "sqlite://"+path)
	require.NoError(t, err)
	defer s2.Close()
	v, err := s2.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)
}

func TestOpenURL(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, "mem://")
	require.NoError(t, err)
	assert.IsType(t, &Mem{}, s)

	_, err = Open(ctx, "")
	require.Error(t, err)

	_, err = Open(ctx, "postgres://localhost/db")
	require.Error(t, err)
}
