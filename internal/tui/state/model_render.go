package state

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/cristianoliveira/sendpanel/internal/formatter"
	"github.com/cristianoliveira/sendpanel/internal/tui/render"
)

var fieldLabels = [fieldCount]string{
	fieldFile:     "Contacts file",
	fieldLimit:    "Message limit",
	fieldDelay:    "Delay (ms)",
	fieldTemplate: "Message",
}

// View renders the panel.
func (m *Model) View() string {
	p := render.PaletteFor(m.theme)
	var sections []string

	sections = append(sections, render.Title(p, m.connected, m.width))

	file := []string{m.field(fieldFile), render.FileSummary(p, m.file, m.hasFile, m.pending)}
	if m.hasFile {
		if preview := render.ContactPreview(p, m.file.Preview, m.width); preview != "" {
			file = append(file, preview)
		}
	} else if remote := render.RemoteFiles(p, m.remote, m.width); remote != "" {
		file = append(file, render.Muted(p, "On server:"), remote)
	}
	sections = append(sections, render.Section(p, "File", strings.Join(file, "\n")))

	cfg := []string{m.field(fieldLimit), m.field(fieldDelay), m.field(fieldTemplate)}
	if preview, ok := m.messagePreview(); ok {
		cfg = append(cfg, render.Muted(p, render.Truncate("Preview: "+preview, m.width)))
	}
	sections = append(sections, render.Section(p, "Configuration", strings.Join(cfg, "\n")))

	status := render.Badge(p, m.view.Label, m.view.Color) + "  " + render.StatsLine(m.view.Stats)
	runLines := []string{status, m.progress.ViewAs(m.view.Stats.Ratio()), m.controls()}
	if m.view.State.Reason != "" {
		runLines = append(runLines, lipgloss.NewStyle().Foreground(p.Error).Render(m.view.State.Reason))
	}
	sections = append(sections, render.Section(p, "Run", strings.Join(runLines, "\n")))

	if notes := render.Notifications(p, m.notes, m.width); notes != "" {
		sections = append(sections, notes)
	}

	sections = append(sections, m.help.View(m.keys))

	return lipgloss.NewStyle().Foreground(p.Text).Render(strings.Join(sections, "\n\n"))
}

// messagePreview renders the template being edited for the first contact.
func (m *Model) messagePreview() (string, bool) {
	if !m.hasFile {
		return "", false
	}
	tmpl := m.inputs[fieldTemplate].Value()
	if tmpl == "" {
		tmpl = m.inputs[fieldTemplate].Placeholder
	}
	return formatter.Preview(m.engine, tmpl, m.file)
}

func (m *Model) field(i int) string {
	label := fieldLabels[i]
	if i == m.focus {
		label = lipgloss.NewStyle().Bold(true).Render(label)
	}
	return label + "\n" + m.inputs[i].View()
}

// controls shows the one run affordance that is currently offered.
func (m *Model) controls() string {
	if m.view.Controls.StopVisible {
		return "[" + m.keys.Stop.Help().Key + "] Stop"
	}
	return "[" + m.keys.Start.Help().Key + "] Start"
}
