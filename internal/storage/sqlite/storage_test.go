package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) (*SQLiteStorage, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "nested", "sendpanel.db")
	s, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})

	return s, dbPath
}

func TestSetGetOverwrite(t *testing.T) {
	s, _ := newTestStorage(t)
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "botConfig")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.Set(ctx, "botConfig", `{"limit":"50"}`))
	require.NoError(t, s.Set(ctx, "botConfig", `{"limit":"75"}`))

	v, ok, err := s.Get(ctx, "botConfig")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `{"limit":"75"}`, v)
}

func TestDeleteAndKeys(t *testing.T) {
	s, _ := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "theme", "dark"))
	require.NoError(t, s.Set(ctx, "botConfig", "{}"))

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"botConfig", "theme"}, keys)

	require.NoError(t, s.Delete(ctx, "theme"))
	require.NoError(t, s.Delete(ctx, "theme"))
	keys, err = s.Keys(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"botConfig"}, keys)
}

func TestValuesSurviveReopen(t *testing.T) {
	s, dbPath := newTestStorage(t)
	require.NoError(t, s.Set(context.Background(), "theme", "dark"))

	reopened, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	v, ok, err := reopened.Get(context.Background(), "theme")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "dark", v)
}

func TestInvalidInputs(t *testing.T) {
	_, err := NewSQLiteStorage("  ")
	require.Error(t, err)

	s, _ := newTestStorage(t)
	require.ErrorIs(t, s.Set(context.Background(), "", "x"), ErrInvalidKey)
	_, _, err = s.Get(context.Background(), "")
	require.ErrorIs(t, err, ErrInvalidKey)
}
