package state

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cristianoliveira/sendpanel/internal/errors"
	"github.com/cristianoliveira/sendpanel/internal/prefs"
)

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.NextField):
		m.commitField(m.focus)
		m.setFocus((m.focus + 1) % fieldCount)
		return m, nil
	case key.Matches(msg, m.keys.PrevField):
		m.commitField(m.focus)
		m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		if m.focus == fieldFile {
			return m, m.uploadCmd(m.inputs[fieldFile].Value())
		}
		m.commitField(m.focus)
		return m, nil
	case key.Matches(msg, m.keys.Start):
		for i := fieldLimit; i < fieldCount; i++ {
			m.commitField(i)
		}
		_ = m.session.StartRun()
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.Stop):
		_ = m.session.StopRun()
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.RemoveFile):
		m.session.RemoveFile()
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.Theme):
		m.session.ToggleTheme()
		m.refresh()
		return m, nil
	case key.Matches(msg, m.keys.Dismiss):
		if len(m.notes) > 0 {
			m.session.Dismiss(m.notes[0].ID)
			m.refresh()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m *Model) setFocus(i int) {
	m.inputs[m.focus].Blur()
	m.focus = i
	m.inputs[m.focus].Focus()
}

// syncInputs fills the configuration fields from the preferences.
func (m *Model) syncInputs() {
	m.inputs[fieldLimit].SetValue(strconv.Itoa(m.prefs.MessageLimit))
	m.inputs[fieldDelay].SetValue(strconv.Itoa(m.prefs.DelayMillis))
	m.inputs[fieldTemplate].SetValue(m.prefs.MessageTemplate)
}

// commitField saves the edited configuration field. Non-numeric limit or
// delay values are reported and the field is reset.
func (m *Model) commitField(i int) {
	value := strings.TrimSpace(m.inputs[i].Value())
	switch i {
	case fieldLimit:
		n, ok := m.parseNumber("panel.limit", "Message limit", value)
		if !ok {
			m.inputs[i].SetValue(strconv.Itoa(m.prefs.MessageLimit))
			return
		}
		if n != m.prefs.MessageLimit {
			m.prefs = m.session.SavePrefs(prefs.Partial{MessageLimit: &n})
		}
	case fieldDelay:
		n, ok := m.parseNumber("panel.delay", "Delay", value)
		if !ok {
			m.inputs[i].SetValue(strconv.Itoa(m.prefs.DelayMillis))
			return
		}
		if n != m.prefs.DelayMillis {
			m.prefs = m.session.SavePrefs(prefs.Partial{DelayMillis: &n})
		}
	case fieldTemplate:
		raw := m.inputs[i].Value()
		if raw != m.prefs.MessageTemplate {
			m.prefs = m.session.SavePrefs(prefs.Partial{MessageTemplate: &raw})
		}
	}
}

func (m *Model) parseNumber(op, label, value string) (int, bool) {
	n, err := strconv.Atoi(value)
	if err != nil {
		m.session.Report(errors.Validation(op, label+" must be a whole number"))
		return 0, false
	}
	return n, true
}

// uploadCmd opens path and submits it in the background.
func (m *Model) uploadCmd(path string) tea.Cmd {
	path = expandHome(strings.TrimSpace(path))
	if path == "" {
		m.session.Report(errors.Validation("panel.upload", "Please select a contacts file"))
		return nil
	}
	ctx, s, open := m.ctx, m.session, m.openFile
	return func() tea.Msg {
		f, err := open(path)
		if err != nil {
			s.Report(errors.Validation("panel.upload", fmt.Sprintf("Cannot open %s", path)))
			return uploadDoneMsg{err: err}
		}
		defer closeQuietly(f)
		cf, err := s.Upload(ctx, filepath.Base(path), f)
		return uploadDoneMsg{file: cf, err: err}
	}
}

func closeQuietly(c io.Closer) { _ = c.Close() }

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
