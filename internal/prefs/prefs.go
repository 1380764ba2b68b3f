// Package prefs persists the operator's run configuration and theme.
//
// Values live under two keys of the local key/value store: botConfig holds
// {limit, delay, message} and theme holds "light" or "dark". Loading never
// fails; unreadable or corrupt data yields the defaults.
package prefs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cristianoliveira/sendpanel/internal/domain"
	"github.com/cristianoliveira/sendpanel/internal/errors"
	"github.com/cristianoliveira/sendpanel/internal/logging"
)

// Storage keys.
const (
	KeyBotConfig = "botConfig"
	KeyTheme     = "theme"
)

const ioTimeout = 5 * time.Second

// Backend is the key/value store preferences are kept in.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Partial carries the fields to change on Save. Nil fields keep their value.
type Partial struct {
	MessageLimit    *int
	DelayMillis     *int
	MessageTemplate *string
	Theme           *domain.Theme
}

// Store loads and saves Preferences.
type Store struct {
	mu      sync.Mutex
	backend Backend
	logger  logging.Logger
	current domain.Preferences
}

// New creates a Store over backend. A nil logger discards log output.
func New(backend Backend, logger logging.Logger) *Store {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Store{
		backend: backend,
		logger:  logger.With("component", "prefs"),
		current: domain.DefaultPreferences(),
	}
}

// botConfig is the stored shape of the run configuration. Numbers may be
// stored as JSON numbers or numeric strings.
type botConfig struct {
	Limit   flexInt `json:"limit"`
	Delay   flexInt `json:"delay"`
	Message string  `json:"message"`
}

// flexInt is an integer field that remembers whether a value was stored.
// Missing, null and empty-string values leave Set false.
type flexInt struct {
	N   int
	Set bool
}

func storedInt(n int) flexInt { return flexInt{N: n, Set: true} }

func (f *flexInt) UnmarshalJSON(data []byte) error {
	*f = flexInt{}
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("not a number: %q", s)
		}
		*f = storedInt(n)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = storedInt(int(n))
	return nil
}

func (f flexInt) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.Itoa(f.N))
}

// Load reads the stored preferences. Missing fields fall back to their
// defaults, as do a limit below 1 and a negative delay; a corrupt record falls
// back entirely.
func (s *Store) Load() domain.Preferences {
	ctx, cancel := context.WithTimeout(context.Background(), ioTimeout)
	defer cancel()

	p := domain.DefaultPreferences()

	if raw, ok, err := s.backend.Get(ctx, KeyBotConfig); err != nil {
		s.logger.Warn("load failed", "key", KeyBotConfig, "error", errors.Persistence("prefs.load", err).Error())
	} else if ok {
		var bc botConfig
		if err := json.Unmarshal([]byte(raw), &bc); err != nil {
			s.logger.Warn("corrupt value, using defaults", "key", KeyBotConfig, "error", errors.Persistence("prefs.load", err).Error())
		} else {
			if bc.Limit.Set && bc.Limit.N > 0 {
				p.MessageLimit = bc.Limit.N
			}
			if bc.Delay.Set && bc.Delay.N >= 0 {
				p.DelayMillis = bc.Delay.N
			}
			p.MessageTemplate = bc.Message
		}
	}

	if raw, ok, err := s.backend.Get(ctx, KeyTheme); err != nil {
		s.logger.Warn("load failed", "key", KeyTheme, "error", errors.Persistence("prefs.load", err).Error())
	} else if ok {
		if t := domain.Theme(strings.TrimSpace(raw)); t.IsValid() {
			p.Theme = t
		}
	}

	s.mu.Lock()
	s.current = p
	s.mu.Unlock()
	return p
}

// Current returns the last loaded or saved preferences.
func (s *Store) Current() domain.Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Save merges p over the current preferences and writes them. Write failures
// are logged and never returned; the in-memory value is updated regardless.
func (s *Store) Save(p Partial) domain.Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current
	if p.MessageLimit != nil {
		next.MessageLimit = *p.MessageLimit
	}
	if p.DelayMillis != nil {
		next.DelayMillis = *p.DelayMillis
	}
	if p.MessageTemplate != nil {
		next.MessageTemplate = *p.MessageTemplate
	}
	if p.Theme != nil && p.Theme.IsValid() {
		next.Theme = *p.Theme
	}
	s.current = next
	s.write(next)
	return next
}

// ToggleTheme flips and saves the theme, returning the new value.
func (s *Store) ToggleTheme() domain.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Theme = s.current.Theme.Toggle()
	s.write(s.current)
	return s.current.Theme
}

// write must be called with s.mu held.
func (s *Store) write(p domain.Preferences) {
	ctx, cancel := context.WithTimeout(context.Background(), ioTimeout)
	defer cancel()

	data, err := json.Marshal(botConfig{
		Limit:   storedInt(p.MessageLimit),
		Delay:   storedInt(p.DelayMillis),
		Message: p.MessageTemplate,
	})
	if err != nil {
		s.logger.Warn("save failed", "key", KeyBotConfig, "error", errors.Persistence("prefs.save", err).Error())
		return
	}
	if err := s.backend.Set(ctx, KeyBotConfig, string(data)); err != nil {
		s.logger.Warn("save failed", "key", KeyBotConfig, "error", errors.Persistence("prefs.save", err).Error())
	}
	if err := s.backend.Set(ctx, KeyTheme, string(p.Theme)); err != nil {
		s.logger.Warn("save failed", "key", KeyTheme, "error", errors.Persistence("prefs.save", err).Error())
	}
}
