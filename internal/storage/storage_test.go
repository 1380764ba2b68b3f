package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/cristianoliveira/sendpanel/internal/config"
	"github.com/cristianoliveira/sendpanel/internal/storage/sqlite"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "theme", "dark"))
	v, ok, err := m.Get(ctx, "theme")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "dark", v)

	require.NoError(t, m.Delete(ctx, "theme"))
	keys, err := m.Keys(ctx)
	require.NoError(t, err)
	require.Empty(t, keys)
	require.NoError(t, m.Close())
}

func TestNewFromConfigOpensSQLiteUnderStateDir(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	t.Setenv("SENDPANEL_STATE_DIR", filepath.Join(tmp, "state"))
	config.Load()

	s := NewFromConfig()
	defer s.Close()

	require.IsType(t, &sqlite.SQLiteStorage{}, s)
	require.FileExists(t, filepath.Join(tmp, "state", DBFileName))
}
