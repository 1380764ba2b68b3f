package domain

// Theme is the panel color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// IsValid checks if the theme is known.
func (t Theme) IsValid() bool {
	return t == ThemeLight || t == ThemeDark
}

// Toggle returns the opposite theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// Default preference values.
const (
	DefaultMessageLimit = 50
	DefaultDelayMillis  = 20
)

// Preferences holds the operator's persisted run configuration and theme.
type Preferences struct {
	MessageLimit    int
	DelayMillis     int
	MessageTemplate string
	Theme           Theme
}

// DefaultPreferences returns the documented defaults.
func DefaultPreferences() Preferences {
	return Preferences{
		MessageLimit:    DefaultMessageLimit,
		DelayMillis:     DefaultDelayMillis,
		MessageTemplate: "",
		Theme:           ThemeLight,
	}
}
