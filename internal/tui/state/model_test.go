package state

import (
	"context"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cristianoliveira/sendpanel/internal/contacts"
	"github.com/cristianoliveira/sendpanel/internal/domain"
	"github.com/cristianoliveira/sendpanel/internal/errors"
	"github.com/cristianoliveira/sendpanel/internal/prefs"
	"github.com/cristianoliveira/sendpanel/internal/run"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	changes  chan struct{}
	prefs    domain.Preferences
	file     domain.ContactFile
	hasFile  bool
	view     run.View
	notes    []domain.Notification
	reported []error
	uploaded []string
	saved    []prefs.Partial
	started  int
	stopped  int
	removed  int
	toggled  int
	dismiss  []string
}

func newFakeSession() *fakeSession {
	return &fakeSession{
		changes: make(chan struct{}, 1),
		prefs: domain.Preferences{
			MessageLimit:    50,
			DelayMillis:     20,
			MessageTemplate: "Hola {nombre}",
			Theme:           domain.ThemeLight,
		},
		view: run.View{
			State:    domain.Idle(),
			Label:    "Idle",
			Color:    run.ColorNeutral,
			Controls: run.Controls{StartVisible: true},
		},
	}
}

func (f *fakeSession) Changes() <-chan struct{} { return f.changes }
func (f *fakeSession) Connected() bool { return true }
func (f *fakeSession) Preferences() domain.Preferences { return f.prefs }
func (f *fakeSession) CurrentFile() (domain.ContactFile, bool) { return f.file, f.hasFile }
func (f *fakeSession) PendingUploads() int { return 0 }
func (f *fakeSession) RemoteFiles() []contacts.RemoteFile { return nil }
func (f *fakeSession) RunView() run.View { return f.view }
func (f *fakeSession) Notifications() []domain.Notification { return f.notes }
func (f *fakeSession) Report(err error) { f.reported = append(f.reported, err) }
func (f *fakeSession) RemoveFile() { f.removed++ }
func (f *fakeSession) StartRun() error { f.started++; return nil }
func (f *fakeSession) StopRun() error { f.stopped++; return nil }
func (f *fakeSession) Dismiss(id string) bool { f.dismiss = append(f.dismiss, id); return true }
func (f *fakeSession) ToggleTheme() domain.Theme { f.toggled++; f.prefs.Theme = f.prefs.Theme.Toggle(); return f.prefs.Theme }

func (f *fakeSession) Upload(_ context.Context, name string, content io.Reader) (domain.ContactFile, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return domain.ContactFile{}, err
	}
	f.uploaded = append(f.uploaded, name+":"+string(data))
	f.file, f.hasFile = domain.ContactFile{ID: "srv_" + name, DisplayName: name, ContactCount: 3}, true
	return f.file, nil
}

func (f *fakeSession) SavePrefs(p prefs.Partial) domain.Preferences {
	f.saved = append(f.saved, p)
	if p.MessageLimit != nil {
		f.prefs.MessageLimit = *p.MessageLimit
	}
	if p.DelayMillis != nil {
		f.prefs.DelayMillis = *p.DelayMillis
	}
	if p.MessageTemplate != nil {
		f.prefs.MessageTemplate = *p.MessageTemplate
	}
	return f.prefs
}

func keyPress(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func newTestModel(s *fakeSession) *Model {
	m := NewModel(context.Background(), s)
	m.openFile = func(path string) (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader("name,phone")), nil
	}
	return m
}

func TestNewModelFillsInputsFromPreferences(t *testing.T) {
	m := newTestModel(newFakeSession())

	assert.Equal(t, "50", m.inputs[fieldLimit].Value())
	assert.Equal(t, "20", m.inputs[fieldDelay].Value())
	assert.Equal(t, "Hola {nombre}", m.inputs[fieldTemplate].Value())
	assert.Equal(t, fieldFile, m.focus)
}

func TestInitListensForChanges(t *testing.T) {
	m := newTestModel(newFakeSession())
	assert.NotNil(t, m.Init())
}

func TestSessionChangeRefreshesAndRelistens(t *testing.T) {
	s := newFakeSession()
	m := newTestModel(s)

	s.view = run.View{State: domain.RunState{Kind: domain.StateRunning}, Label: "Running", Controls: run.Controls{StopVisible: true}}
	_, cmd := m.Update(sessionChangedMsg{})

	require.NotNil(t, cmd)
	assert.Equal(t, domain.StateRunning, m.view.State.Kind)
	assert.False(t, m.keys.Start.Enabled())
	assert.True(t, m.keys.Stop.Enabled())
}

func TestStartOnlyWhenOffered(t *testing.T) {
	s := newFakeSession()
	m := newTestModel(s)

	m.Update(keyPress(tea.KeyCtrlS))
	assert.Equal(t, 1, s.started)

	s.view.Controls = run.Controls{StopVisible: true}
	m.Update(sessionChangedMsg{})

	m.Update(keyPress(tea.KeyCtrlS))
	assert.Equal(t, 1, s.started)

	m.Update(keyPress(tea.KeyCtrlX))
	assert.Equal(t, 1, s.stopped)
}

func TestStopIgnoredWhenIdle(t *testing.T) {
	s := newFakeSession()
	m := newTestModel(s)

	m.Update(keyPress(tea.KeyCtrlX))
	assert.Equal(t, 0, s.stopped)
}

func TestSubmitOnFileFieldUploads(t *testing.T) {
	s := newFakeSession()
	m := newTestModel(s)
	m.inputs[fieldFile].SetValue("/tmp/lista.csv")

	_, cmd := m.Update(keyPress(tea.KeyEnter))
	require.NotNil(t, cmd)

	msg := cmd()
	done, ok := msg.(uploadDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.err)
	assert.Equal(t, []string{"lista.csv:name,phone"}, s.uploaded)

	m.Update(done)
	assert.Equal(t, "", m.inputs[fieldFile].Value())
	assert.True(t, m.hasFile)
}

func TestSubmitWithoutPathReportsValidation(t *testing.T) {
	s := newFakeSession()
	m := newTestModel(s)

	_, cmd := m.Update(keyPress(tea.KeyEnter))

	assert.Nil(t, cmd)
	require.Len(t, s.reported, 1)
	assert.Equal(t, errors.KindValidation, errors.KindOf(s.reported[0]))
	assert.Equal(t, "Please select a contacts file", errors.Message(s.reported[0]))
}

func TestLeavingLimitFieldSavesIt(t *testing.T) {
	s := newFakeSession()
	m := newTestModel(s)

	m.Update(keyPress(tea.KeyTab))
	require.Equal(t, fieldLimit, m.focus)
	m.inputs[fieldLimit].SetValue("75")
	m.Update(keyPress(tea.KeyTab))

	require.Len(t, s.saved, 1)
	require.NotNil(t, s.saved[0].MessageLimit)
	assert.Equal(t, 75, *s.saved[0].MessageLimit)
	assert.Equal(t, fieldDelay, m.focus)
}

func TestUnchangedFieldIsNotSaved(t *testing.T) {
	s := newFakeSession()
	m := newTestModel(s)

	m.Update(keyPress(tea.KeyTab))
	m.Update(keyPress(tea.KeyTab))
	m.Update(keyPress(tea.KeyTab))

	assert.Empty(t, s.saved)
}

func TestNonNumericLimitIsReportedAndReset(t *testing.T) {
	s := newFakeSession()
	m := newTestModel(s)

	m.Update(keyPress(tea.KeyTab))
	m.inputs[fieldLimit].SetValue("lots")
	m.Update(keyPress(tea.KeyEnter))

	assert.Empty(t, s.saved)
	require.Len(t, s.reported, 1)
	assert.Equal(t, errors.KindValidation, errors.KindOf(s.reported[0]))
	assert.Equal(t, "50", m.inputs[fieldLimit].Value())
}

func TestStartCommitsEditedTemplate(t *testing.T) {
	s := newFakeSession()
	m := newTestModel(s)

	m.inputs[fieldTemplate].SetValue("Hi {name}")
	m.Update(keyPress(tea.KeyCtrlS))

	require.Len(t, s.saved, 1)
	require.NotNil(t, s.saved[0].MessageTemplate)
	assert.Equal(t, "Hi {name}", *s.saved[0].MessageTemplate)
	assert.Equal(t, 1, s.started)
}

func TestThemeToggle(t *testing.T) {
	s := newFakeSession()
	m := newTestModel(s)

	m.Update(keyPress(tea.KeyCtrlT))

	assert.Equal(t, 1, s.toggled)
	assert.Equal(t, domain.ThemeDark, m.theme)
}

func TestDismissOldestNotification(t *testing.T) {
	s := newFakeSession()
	s.notes = []domain.Notification{{ID: "a", Text: "one"}, {ID: "b", Text: "two"}}
	m := newTestModel(s)

	m.Update(keyPress(tea.KeyCtrlD))

	assert.Equal(t, []string{"a"}, s.dismiss)
}

func TestRemoveFile(t *testing.T) {
	s := newFakeSession()
	m := newTestModel(s)

	m.Update(keyPress(tea.KeyCtrlR))

	assert.Equal(t, 1, s.removed)
}

func TestQuit(t *testing.T) {
	m := newTestModel(newFakeSession())

	_, cmd := m.Update(keyPress(tea.KeyCtrlC))

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestViewShowsOneRunControl(t *testing.T) {
	s := newFakeSession()
	m := newTestModel(s)

	out := m.View()
	assert.Contains(t, out, "Start")
	assert.NotContains(t, out, "] Stop")

	s.view = run.View{
		State:    domain.RunState{Kind: domain.StateRunning},
		Label:    "Running",
		Color:    run.ColorActive,
		Controls: run.Controls{StopVisible: true},
		Stats:    domain.RunStats{MessagesSent: 50, TotalContacts: 120},
	}
	m.Update(sessionChangedMsg{})

	out = m.View()
	assert.Contains(t, out, "] Stop")
	assert.NotContains(t, out, "] Start")
	assert.Contains(t, out, "50/120 sent (42%)")
}

func TestWindowResize(t *testing.T) {
	m := newTestModel(newFakeSession())

	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.Equal(t, 120, m.width)
	assert.Equal(t, 40, m.height)
}

func TestViewShowsMessagePreview(t *testing.T) {
	s := newFakeSession()
	s.file = domain.ContactFile{
		ID:           "srv_lista.csv",
		DisplayName:  "lista.csv",
		ContactCount: 1,
		Preview:      []domain.Contact{{Name: "Ana", Phone: "1"}},
	}
	s.hasFile = true
	m := newTestModel(s)

	assert.Contains(t, m.View(), "Preview: Hola Ana")
}
