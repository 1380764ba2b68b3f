// Package state holds the bubbletea model for the control panel.
package state

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cristianoliveira/sendpanel/internal/contacts"
	"github.com/cristianoliveira/sendpanel/internal/domain"
	"github.com/cristianoliveira/sendpanel/internal/formatter"
	"github.com/cristianoliveira/sendpanel/internal/prefs"
	"github.com/cristianoliveira/sendpanel/internal/run"
	"github.com/cristianoliveira/sendpanel/internal/tui/render"
)

const (
	defaultWidth     = 80
	maxProgressWidth = 60
)

// Input fields, in focus order.
const (
	fieldFile = iota
	fieldLimit
	fieldDelay
	fieldTemplate
	fieldCount
)

// Session is what the panel drives.
type Session interface {
	Changes() <-chan struct{}
	Connected() bool
	Preferences() domain.Preferences
	CurrentFile() (domain.ContactFile, bool)
	PendingUploads() int
	RemoteFiles() []contacts.RemoteFile
	RunView() run.View
	Notifications() []domain.Notification

	Upload(ctx context.Context, name string, content io.Reader) (domain.ContactFile, error)
	RemoveFile()
	StartRun() error
	StopRun() error
	SavePrefs(p prefs.Partial) domain.Preferences
	ToggleTheme() domain.Theme
	Dismiss(id string) bool
	Report(err error)
}

// Model is the panel.
type Model struct {
	session  Session
	ctx      context.Context
	openFile func(path string) (io.ReadCloser, error)
	engine   formatter.TemplateEngine

	inputs   [fieldCount]textinput.Model
	focus    int
	keys     KeyMap
	help     help.Model
	progress progress.Model
	width    int
	height   int

	// Snapshot of the session, refreshed on every change signal.
	prefs     domain.Preferences
	file      domain.ContactFile
	hasFile   bool
	pending   int
	remote    []contacts.RemoteFile
	view      run.View
	notes     []domain.Notification
	connected bool
	theme     domain.Theme
}

// NewModel creates the panel for s. ctx bounds uploads started from it.
func NewModel(ctx context.Context, s Session) *Model {
	m := &Model{
		session:  s,
		ctx:      ctx,
		openFile: func(path string) (io.ReadCloser, error) { return os.Open(path) },
		engine:   formatter.NewTemplateEngine(),
		keys:     DefaultKeyMap(),
		help:     help.New(),
		width:    defaultWidth,
	}
	m.inputs[fieldFile] = newInput("path/to/contacts.csv", 0)
	m.inputs[fieldLimit] = newInput("50", 6)
	m.inputs[fieldDelay] = newInput("20", 6)
	m.inputs[fieldTemplate] = newInput("Hola {nombre}, este es un mensaje automático.", 0)
	m.inputs[fieldFile].Focus()

	m.refresh()
	m.syncInputs()
	return m
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "> "
	if limit > 0 {
		ti.CharLimit = limit
	}
	return ti
}

// Init starts listening for session changes.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, listenForChanges(m.session.Changes()))
}

// Update handles messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resizeProgress()
		return m, nil

	case sessionChangedMsg:
		m.refresh()
		return m, listenForChanges(m.session.Changes())

	case uploadDoneMsg:
		if msg.err == nil {
			m.inputs[fieldFile].SetValue("")
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// refresh copies the session state into the model.
func (m *Model) refresh() {
	m.prefs = m.session.Preferences()
	m.file, m.hasFile = m.session.CurrentFile()
	m.pending = m.session.PendingUploads()
	m.remote = m.session.RemoteFiles()
	m.view = m.session.RunView()
	m.notes = m.session.Notifications()
	m.connected = m.session.Connected()

	m.keys.Start.SetEnabled(m.view.Controls.StartVisible)
	m.keys.Stop.SetEnabled(m.view.Controls.StopVisible)

	if m.theme != m.prefs.Theme {
		m.theme = m.prefs.Theme
		m.resizeProgress()
	}
}

func (m *Model) resizeProgress() {
	w := m.width - 4
	if w > maxProgressWidth {
		w = maxProgressWidth
	}
	if w < 10 {
		w = 10
	}
	p := render.PaletteFor(m.theme)
	m.progress = progress.New(
		progress.WithSolidFill(string(p.Accent)),
		progress.WithoutPercentage(),
		progress.WithWidth(w),
	)
}

