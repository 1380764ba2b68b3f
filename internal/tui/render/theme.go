package render

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/cristianoliveira/sendpanel/internal/domain"
	"github.com/cristianoliveira/sendpanel/internal/run"
)

// Palette is the set of colors for one theme.
type Palette struct {
	Text    lipgloss.Color
	Muted   lipgloss.Color
	Border  lipgloss.Color
	Accent  lipgloss.Color
	OnBadge lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Warning lipgloss.Color
	Info    lipgloss.Color
	Neutral lipgloss.Color
}

var (
	lightPalette = Palette{
		Text:    lipgloss.Color("#1f2937"),
		Muted:   lipgloss.Color("#6b7280"),
		Border:  lipgloss.Color("#d1d5db"),
		Accent:  lipgloss.Color("#2563eb"),
		OnBadge: lipgloss.Color("#ffffff"),
		Success: lipgloss.Color("#16a34a"),
		Error:   lipgloss.Color("#dc2626"),
		Warning: lipgloss.Color("#ca8a04"),
		Info:    lipgloss.Color("#2563eb"),
		Neutral: lipgloss.Color("#6b7280"),
	}
	darkPalette = Palette{
		Text:    lipgloss.Color("#e5e7eb"),
		Muted:   lipgloss.Color("#9ca3af"),
		Border:  lipgloss.Color("#374151"),
		Accent:  lipgloss.Color("#60a5fa"),
		OnBadge: lipgloss.Color("#111827"),
		Success: lipgloss.Color("#4ade80"),
		Error:   lipgloss.Color("#f87171"),
		Warning: lipgloss.Color("#facc15"),
		Info:    lipgloss.Color("#60a5fa"),
		Neutral: lipgloss.Color("#9ca3af"),
	}
)

// PaletteFor returns the palette for theme.
func PaletteFor(theme domain.Theme) Palette {
	if theme == domain.ThemeDark {
		return darkPalette
	}
	return lightPalette
}

// SeverityColor maps a notification severity to a color.
func (p Palette) SeverityColor(s domain.Severity) lipgloss.Color {
	switch s {
	case domain.SeveritySuccess:
		return p.Success
	case domain.SeverityError:
		return p.Error
	case domain.SeverityWarning:
		return p.Warning
	default:
		return p.Info
	}
}

// TokenColor maps a run status color token to a color.
func (p Palette) TokenColor(t run.ColorToken) lipgloss.Color {
	switch t {
	case run.ColorPending:
		return p.Warning
	case run.ColorActive:
		return p.Info
	case run.ColorSuccess:
		return p.Success
	case run.ColorDanger:
		return p.Error
	default:
		return p.Neutral
	}
}
