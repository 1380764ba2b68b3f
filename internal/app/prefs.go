package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/cristianoliveira/sendpanel/internal/domain"
	"github.com/cristianoliveira/sendpanel/internal/errors"
	"github.com/cristianoliveira/sendpanel/internal/prefs"
	"github.com/pelletier/go-toml/v2"
)

// FormatTOML prints preferences in config file syntax.
const FormatTOML = "toml"

// PrefsClient defines the preference store operations the prefs commands need.
type PrefsClient interface {
	Current() domain.Preferences
	Save(p prefs.Partial) domain.Preferences
}

// PrefsUseCase coordinates the prefs commands.
type PrefsUseCase struct {
	client PrefsClient
}

// NewPrefsUseCase creates a prefs use-case.
func NewPrefsUseCase(client PrefsClient) *PrefsUseCase {
	if client == nil {
		panic("NewPrefsUseCase: client dependency cannot be nil")
	}
	return &PrefsUseCase{client: client}
}

// prefsView is the printable form of domain.Preferences.
type prefsView struct {
	Limit   int    `json:"limit" toml:"limit"`
	Delay   int    `json:"delay" toml:"delay"`
	Message string `json:"message" toml:"message"`
	Theme   string `json:"theme" toml:"theme"`
}

func newPrefsView(p domain.Preferences) prefsView {
	return prefsView{
		Limit:   p.MessageLimit,
		Delay:   p.DelayMillis,
		Message: p.MessageTemplate,
		Theme:   string(p.Theme),
	}
}

// Show prints the stored preferences.
func (u *PrefsUseCase) Show(w io.Writer, format string) error {
	view := newPrefsView(u.client.Current())
	switch format {
	case FormatJSON:
		return writeJSON(w, view)
	case FormatTOML:
		data, err := toml.Marshal(view)
		if err != nil {
			return fmt.Errorf("failed to marshal preferences: %w", err)
		}
		_, err = w.Write(data)
		return err
	}
	fmt.Fprintf(w, "Message limit: %d\n", view.Limit)
	fmt.Fprintf(w, "Delay (ms):    %d\n", view.Delay)
	fmt.Fprintf(w, "Message:       %s\n", view.Message)
	fmt.Fprintf(w, "Theme:         %s\n", view.Theme)
	return nil
}

// SetPrefsInput carries the values to change. Nil fields are left alone.
type SetPrefsInput struct {
	Limit   *int
	Delay   *int
	Message *string
	Theme   *string
}

// Set validates and persists the given values.
func (u *PrefsUseCase) Set(input SetPrefsInput) (domain.Preferences, error) {
	var p prefs.Partial
	if input.Limit != nil {
		if *input.Limit < 0 {
			return domain.Preferences{}, errors.Validation("prefs.set", "Message limit cannot be negative")
		}
		p.MessageLimit = input.Limit
	}
	if input.Delay != nil {
		if *input.Delay < 0 {
			return domain.Preferences{}, errors.Validation("prefs.set", "Delay cannot be negative")
		}
		p.DelayMillis = input.Delay
	}
	if input.Message != nil {
		p.MessageTemplate = input.Message
	}
	if input.Theme != nil {
		theme := domain.Theme(strings.ToLower(strings.TrimSpace(*input.Theme)))
		if !theme.IsValid() {
			return domain.Preferences{}, errors.Validation("prefs.set", fmt.Sprintf("Invalid theme %q (expected light or dark)", *input.Theme))
		}
		p.Theme = &theme
	}
	if p == (prefs.Partial{}) {
		return u.client.Current(), errors.Validation("prefs.set", "Nothing to set")
	}
	return u.client.Save(p), nil
}
