package session

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cristianoliveira/sendpanel/internal/contacts"
	"github.com/cristianoliveira/sendpanel/internal/domain"
	"github.com/cristianoliveira/sendpanel/internal/filesession"
	"github.com/cristianoliveira/sendpanel/internal/prefs"
	"github.com/cristianoliveira/sendpanel/internal/run"
	"github.com/cristianoliveira/sendpanel/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	mu       sync.Mutex
	events   chan domain.Event
	starts   []domain.RunConfig
	stops    int
	onChange func()
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{events: make(chan domain.Event, 16)}
}

func (c *fakeChannel) Start(cfg domain.RunConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.starts = append(c.starts, cfg)
	return nil
}

func (c *fakeChannel) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stops++
	return nil
}

func (c *fakeChannel) Run(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func (c *fakeChannel) Next(ctx context.Context) (domain.Event, error) {
	select {
	case <-ctx.Done():
		return domain.Event{}, ctx.Err()
	case ev := <-c.events:
		return ev, nil
	}
}

func (c *fakeChannel) Connected() bool   { return true }
func (c *fakeChannel) OnChange(fn func()) { c.onChange = fn }

func (c *fakeChannel) startCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.starts)
}

func newTestSession(t *testing.T) (*Session, *fakeChannel, *filesession.MockUploader, *storage.Memory) {
	t.Helper()
	up := new(filesession.MockUploader)
	up.On("Upload", mock.Anything, "contacts.csv", mock.Anything).
		Return(contacts.UploadResult{Filename: "contacts.csv", ContactCount: 120}, nil).Maybe()
	up.On("ListFiles", mock.Anything).Return([]contacts.RemoteFile{}, nil).Maybe()
	ch := newFakeChannel()
	backend := storage.NewMemory()
	s := New(Deps{Backend: backend, Uploader: up, Channel: ch, DefaultTemplate: "Hola {nombre}"})
	return s, ch, up, backend
}

func feedTexts(s *Session) []string {
	var out []string
	for _, n := range s.Feed.List() {
		out = append(out, string(n.Severity)+":"+n.Text)
	}
	return out
}

func TestEndToEndRun(t *testing.T) {
	s, ch, _, _ := newTestSession(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Connect(ctx)

	_, err := s.Upload(ctx, "contacts.csv", strings.NewReader("x"))
	require.NoError(t, err)

	limit, delay, msg := 50, 20, "Hi {name}"
	s.SavePrefs(prefs.Partial{MessageLimit: &limit, DelayMillis: &delay, MessageTemplate: &msg})
	require.NoError(t, s.StartRun())
	require.Equal(t, 1, ch.startCount())
	assert.Equal(t, domain.RunConfig{SourceFileID: "contacts.csv", MessageLimit: 50, DelayMillis: 20, MessageTemplate: "Hi {name}"}, ch.starts[0])

	ch.events <- domain.Event{Name: domain.EventStarted}
	ch.events <- domain.Event{Name: domain.EventStatusUpdate, Stats: &domain.RunStats{TotalContacts: 120, MessagesSent: 50}}
	require.Eventually(t, func() bool { return s.Run.View().Stats.MessagesSent == 50 }, time.Second, 5*time.Millisecond)
	v := s.Run.View()
	assert.Equal(t, domain.StateRunning, v.State.Kind)
	assert.True(t, v.Controls.StopVisible)
	assert.Equal(t, 42, v.Percent())

	ch.events <- domain.Event{Name: domain.EventCompleted}
	require.Eventually(t, func() bool { return s.Run.State().Kind == domain.StateCompleted }, time.Second, 5*time.Millisecond)
	assert.True(t, s.Run.View().Controls.StartVisible)
	assert.Equal(t, []string{
		"success:File loaded: 120 contacts",
		"info:" + run.MsgStarting,
		"success:" + run.MsgStarted,
		"success:" + run.MsgCompleted,
	}, feedTexts(s))
}

func TestStartWithoutFileQueuesOneError(t *testing.T) {
	s, ch, _, _ := newTestSession(t)

	require.Error(t, s.StartRun())
	assert.Equal(t, domain.StateIdle, s.Run.State().Kind)
	assert.Equal(t, 0, ch.startCount())
	assert.Equal(t, []string{"error:" + run.MsgNoFile}, feedTexts(s))
}

func TestPreferencesAreLoadedAtConstruction(t *testing.T) {
	backend := storage.NewMemory()
	require.NoError(t, backend.Set(context.Background(), prefs.KeyTheme, "dark"))
	require.NoError(t, backend.Set(context.Background(), prefs.KeyBotConfig, `{"limit":"75","delay":"10","message":"m"}`))

	s := New(Deps{Backend: backend, Uploader: new(filesession.MockUploader), Channel: newFakeChannel()})
	p := s.Prefs.Current()
	assert.Equal(t, domain.ThemeDark, p.Theme)
	assert.Equal(t, 75, p.MessageLimit)
}

func TestChangesCoalesce(t *testing.T) {
	s, _, _, _ := newTestSession(t)

	s.Feed.Info("a")
	s.Feed.Info("b")
	s.ToggleTheme()

	select {
	case <-s.Changes():
	case <-time.After(time.Second):
		t.Fatal("expected a change signal")
	}
	select {
	case <-s.Changes():
		t.Fatal("signals should coalesce")
	default:
	}
}

func TestPumpStopsOnCancel(t *testing.T) {
	s, _, _, _ := newTestSession(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, s.Pump(ctx), context.Canceled)
}

func TestStopRunSendsOnlyWhileActive(t *testing.T) {
	s, ch, _, _ := newTestSession(t)
	ctx := context.Background()

	require.NoError(t, s.StopRun())
	assert.Equal(t, 0, ch.stops)

	_, err := s.Upload(ctx, "contacts.csv", strings.NewReader("x"))
	require.NoError(t, err)
	require.NoError(t, s.StartRun())
	require.NoError(t, s.StopRun())
	assert.Equal(t, 1, ch.stops)
}
