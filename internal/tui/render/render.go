// Package render draws the panel's sections as strings.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/cristianoliveira/sendpanel/internal/contacts"
	"github.com/cristianoliveira/sendpanel/internal/domain"
	"github.com/cristianoliveira/sendpanel/internal/run"
)

const (
	nameWidth  = 24
	phoneWidth = 16
	minWidth   = 20
)

// Title renders the panel header with the connection indicator.
func Title(p Palette, connected bool, width int) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(p.Accent).Render("sendpanel")
	dot, label := "○", "offline"
	color := p.Error
	if connected {
		dot, label, color = "●", "connected", p.Success
	}
	status := lipgloss.NewStyle().Foreground(color).Render(dot + " " + label)
	gap := width - lipgloss.Width(title) - lipgloss.Width(status)
	if gap < 1 {
		gap = 1
	}
	return title + strings.Repeat(" ", gap) + status
}

// Badge renders a run status label on its color.
func Badge(p Palette, label string, token run.ColorToken) string {
	return lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1).
		Foreground(p.OnBadge).
		Background(p.TokenColor(token)).
		Render(label)
}

// Section renders a titled block.
func Section(p Palette, title, body string) string {
	head := lipgloss.NewStyle().Bold(true).Foreground(p.Text).Render(title)
	return head + "\n" + body
}

// Muted renders secondary text.
func Muted(p Palette, s string) string {
	return lipgloss.NewStyle().Foreground(p.Muted).Render(s)
}

// StatsLine summarizes run progress, e.g. "50/120 sent (42%)".
func StatsLine(stats domain.RunStats) string {
	return fmt.Sprintf("%d/%d sent (%d%%)", stats.MessagesSent, stats.TotalContacts, stats.Percent())
}

// FileSummary describes the current contact file.
func FileSummary(p Palette, file domain.ContactFile, ok bool, pending int) string {
	var b strings.Builder
	switch {
	case ok:
		fmt.Fprintf(&b, "%s  %s", file.DisplayName, Muted(p, fmt.Sprintf("%d contacts", file.ContactCount)))
	default:
		b.WriteString(Muted(p, "No file selected"))
	}
	if pending > 0 {
		b.WriteString("  ")
		b.WriteString(lipgloss.NewStyle().Foreground(p.Warning).Render("uploading..."))
	}
	return b.String()
}

// ContactPreview renders the preview rows of a file.
func ContactPreview(p Palette, contacts []domain.Contact, width int) string {
	if len(contacts) == 0 {
		return ""
	}
	nw := nameWidth
	if width > 0 && width < nameWidth+phoneWidth+2 {
		nw = max(width-phoneWidth-2, minWidth/2)
	}
	head := lipgloss.NewStyle().Foreground(p.Muted)
	lines := []string{head.Render(fmt.Sprintf("%-*s  %s", nw, "NAME", "PHONE"))}
	for _, c := range contacts {
		lines = append(lines, fmt.Sprintf("%-*s  %s", nw, Truncate(c.Name, nw), Truncate(c.Phone, phoneWidth)))
	}
	return strings.Join(lines, "\n")
}

// RemoteFiles renders the files already stored on the worker.
func RemoteFiles(p Palette, files []contacts.RemoteFile, width int) string {
	if len(files) == 0 {
		return ""
	}
	lines := make([]string, 0, len(files))
	for _, f := range files {
		line := fmt.Sprintf("%s (%d contacts)", f.Name, f.ContactCount)
		if f.Unreadable {
			line += " unreadable"
		}
		lines = append(lines, Muted(p, Truncate(line, width)))
	}
	return strings.Join(lines, "\n")
}

// Notifications renders the feed, newest last.
func Notifications(p Palette, list []domain.Notification, width int) string {
	if len(list) == 0 {
		return ""
	}
	lines := make([]string, 0, len(list))
	for _, n := range list {
		style := lipgloss.NewStyle().Foreground(p.SeverityColor(n.Severity))
		lines = append(lines, style.Render(Truncate(severityIcon(n.Severity)+" "+n.Text, width)))
	}
	return strings.Join(lines, "\n")
}

func severityIcon(s domain.Severity) string {
	switch s {
	case domain.SeveritySuccess:
		return "✔"
	case domain.SeverityError:
		return "✖"
	case domain.SeverityWarning:
		return "▲"
	default:
		return "ℹ"
	}
}

// Truncate shortens s to width cells, adding an ellipsis when cut.
func Truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	if width <= 3 {
		return strings.Repeat(".", width)
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+3 > width {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}
