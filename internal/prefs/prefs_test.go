package prefs

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/cristianoliveira/sendpanel/internal/domain"
	"github.com/cristianoliveira/sendpanel/internal/logging"
	"github.com/cristianoliveira/sendpanel/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingBackend struct{}

func (failingBackend) Get(context.Context, string) (string, bool, error) {
	return "", false, fmt.Errorf("disk unavailable")
}

func (failingBackend) Set(context.Context, string, string) error {
	return fmt.Errorf("disk unavailable")
}

func intPtr(v int) *int { return &v }

func TestLoadWithNothingStoredReturnsDefaults(t *testing.T) {
	s := New(storage.NewMemory(), nil)
	require.Equal(t, domain.DefaultPreferences(), s.Load())
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	backend := storage.NewMemory()
	s := New(backend, nil)
	dark := domain.ThemeDark
	msg := "Hi {nombre}"
	s.Save(Partial{MessageLimit: intPtr(75), DelayMillis: intPtr(100), MessageTemplate: &msg, Theme: &dark})

	got := New(backend, nil).Load()
	assert.Equal(t, domain.Preferences{MessageLimit: 75, DelayMillis: 100, MessageTemplate: msg, Theme: domain.ThemeDark}, got)
}

func TestSaveMergesPartialOverCurrent(t *testing.T) {
	backend := storage.NewMemory()
	s := New(backend, nil)
	s.Save(Partial{MessageLimit: intPtr(10)})
	s.Save(Partial{DelayMillis: intPtr(5)})

	got := New(backend, nil).Load()
	assert.Equal(t, 10, got.MessageLimit)
	assert.Equal(t, 5, got.DelayMillis)
}

func TestLoadAcceptsStringAndNumberFields(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemory()
	require.NoError(t, backend.Set(ctx, KeyBotConfig, `{"limit":"30","delay":45,"message":"x"}`))

	got := New(backend, nil).Load()
	assert.Equal(t, 30, got.MessageLimit)
	assert.Equal(t, 45, got.DelayMillis)
	assert.Equal(t, "x", got.MessageTemplate)
}

func TestLoadMissingOrInvalidFieldsFallBackToDefaults(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		limit int
		delay int
	}{
		{"empty strings", `{"limit":"","delay":""}`, domain.DefaultMessageLimit, domain.DefaultDelayMillis},
		{"nulls", `{"limit":null,"delay":null}`, domain.DefaultMessageLimit, domain.DefaultDelayMillis},
		{"missing", `{"message":"x"}`, domain.DefaultMessageLimit, domain.DefaultDelayMillis},
		{"zero limit and negative delay", `{"limit":"0","delay":"-5"}`, domain.DefaultMessageLimit, domain.DefaultDelayMillis},
		{"zero delay is kept", `{"limit":"10","delay":"0"}`, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := storage.NewMemory()
			require.NoError(t, backend.Set(context.Background(), KeyBotConfig, tt.raw))

			got := New(backend, nil).Load()
			assert.Equal(t, tt.limit, got.MessageLimit)
			assert.Equal(t, tt.delay, got.DelayMillis)
		})
	}
}

func TestSaveZeroDelayRoundTrips(t *testing.T) {
	backend := storage.NewMemory()
	s := New(backend, nil)
	saved := s.Save(Partial{DelayMillis: intPtr(0)})

	got := New(backend, nil).Load()
	assert.Equal(t, saved, got)
	assert.Equal(t, 0, got.DelayMillis)
}

func TestLoadCorruptValueFallsBackAndLogs(t *testing.T) {
	ctx := context.Background()
	backend := storage.NewMemory()
	require.NoError(t, backend.Set(ctx, KeyBotConfig, `{not json`))
	require.NoError(t, backend.Set(ctx, KeyTheme, "purple"))

	var buf bytes.Buffer
	got := New(backend, logging.New(&buf, "debug")).Load()

	assert.Equal(t, domain.DefaultPreferences(), got)
	assert.Contains(t, buf.String(), "corrupt value")
}

func TestBackendFailuresNeverSurface(t *testing.T) {
	s := New(failingBackend{}, nil)
	assert.Equal(t, domain.DefaultPreferences(), s.Load())

	got := s.Save(Partial{MessageLimit: intPtr(9)})
	assert.Equal(t, 9, got.MessageLimit)
	assert.Equal(t, 9, s.Current().MessageLimit)
}

func TestToggleThemePersists(t *testing.T) {
	backend := storage.NewMemory()
	s := New(backend, nil)
	s.Load()

	assert.Equal(t, domain.ThemeDark, s.ToggleTheme())
	assert.Equal(t, domain.ThemeDark, New(backend, nil).Load().Theme)
	assert.Equal(t, domain.ThemeLight, s.ToggleTheme())
}
