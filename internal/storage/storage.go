// Package storage provides the local key/value store backing persisted
// preferences, and backend selection.
package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/cristianoliveira/sendpanel/internal/colors"
	"github.com/cristianoliveira/sendpanel/internal/config"
	"github.com/cristianoliveira/sendpanel/internal/storage/sqlite"
)

// DBFileName is the SQLite file kept under state_dir.
const DBFileName = "sendpanel.db"

// Storage is a string key/value store.
type Storage interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Keys lists the stored keys in ascending order.
	Keys(ctx context.Context) ([]string, error)
	// Close releases the backend.
	Close() error
}

var _ Storage = (*sqlite.SQLiteStorage)(nil)
var _ Storage = (*Memory)(nil)

// NewFromConfig opens the SQLite store under state_dir. If it cannot be
// opened the session falls back to an in-memory store so the panel still
// works; preferences then do not survive a restart.
func NewFromConfig() Storage {
	dbPath := filepath.Join(config.Get("state_dir", ""), DBFileName)
	s, err := sqlite.NewSQLiteStorage(dbPath)
	if err != nil {
		colors.Warning(fmt.Sprintf("failed to open %s, preferences will not persist: %v", dbPath, err))
		return NewMemory()
	}
	return s
}

// Memory is an in-process Storage.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *Memory) Keys(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *Memory) Close() error { return nil }
