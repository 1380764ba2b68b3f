// Package session owns one operator session: the preference store, the
// current file, the run controller, the worker channel and the
// notification feed, wired together.
package session

import (
	"context"
	"io"
	"time"

	"github.com/cristianoliveira/sendpanel/internal/channel"
	"github.com/cristianoliveira/sendpanel/internal/config"
	"github.com/cristianoliveira/sendpanel/internal/contacts"
	"github.com/cristianoliveira/sendpanel/internal/domain"
	"github.com/cristianoliveira/sendpanel/internal/errors"
	"github.com/cristianoliveira/sendpanel/internal/filesession"
	"github.com/cristianoliveira/sendpanel/internal/hooks"
	"github.com/cristianoliveira/sendpanel/internal/logging"
	"github.com/cristianoliveira/sendpanel/internal/notification"
	"github.com/cristianoliveira/sendpanel/internal/prefs"
	"github.com/cristianoliveira/sendpanel/internal/run"
	"github.com/cristianoliveira/sendpanel/internal/storage"
)

// Channel is the worker event channel.
type Channel interface {
	run.Commander
	Run(ctx context.Context) error
	Next(ctx context.Context) (domain.Event, error)
	Connected() bool
	OnChange(fn func())
}

// Deps are the collaborators a Session is built from.
type Deps struct {
	Backend  prefs.Backend
	Uploader filesession.Uploader
	Channel  Channel
	// Hooks is optional.
	Hooks *hooks.Runner
	// Feed is created from FeedOptions when nil.
	Feed            *notification.Feed
	FeedOptions     notification.Options
	DefaultTemplate string
	Logger          logging.Logger
}

// Session is the single owner of all session state.
type Session struct {
	Feed  *notification.Feed
	Files *filesession.Manager
	Run   *run.Controller
	Prefs *prefs.Store

	channel  Channel
	hooks    *hooks.Runner
	reporter *errors.Reporter
	logger   logging.Logger
	changes  chan struct{}
}

// New wires a Session from deps and loads the stored preferences.
func New(deps Deps) *Session {
	if deps.Logger == nil {
		deps.Logger = logging.Nop()
	}
	feed := deps.Feed
	if feed == nil {
		if deps.FeedOptions.Logger == nil {
			deps.FeedOptions.Logger = deps.Logger
		}
		feed = notification.NewFeed(deps.FeedOptions)
	}
	files := filesession.New(deps.Uploader, feed, deps.Logger)
	s := &Session{
		Feed:  feed,
		Files: files,
		Run: run.New(run.Options{
			Files:           files,
			Commander:       deps.Channel,
			Sink:            feed,
			Logger:          deps.Logger,
			DefaultTemplate: deps.DefaultTemplate,
		}),
		Prefs:    prefs.New(deps.Backend, deps.Logger),
		channel:  deps.Channel,
		hooks:    deps.Hooks,
		reporter: errors.NewReporter(feed, deps.Logger),
		logger:   deps.Logger.With("component", "session"),
		changes:  make(chan struct{}, 1),
	}

	s.Prefs.Load()
	feed.OnChange(s.notify)
	files.OnChange(s.notify)
	s.Run.OnChange(s.notify)
	deps.Channel.OnChange(s.notify)
	if s.hooks != nil {
		s.Run.OnFinish(s.hooks.RunFinished)
	}
	return s
}

// Resources are the concrete collaborators built by NewFromConfig.
type Resources struct {
	Storage  storage.Storage
	Contacts *contacts.Client
	Hooks    *hooks.Runner
}

// Close releases the resources.
func (r Resources) Close() error {
	if r.Hooks != nil {
		r.Hooks.Wait()
	}
	if r.Storage != nil {
		return r.Storage.Close()
	}
	return nil
}

// NewFromConfig builds a Session from the loaded configuration.
func NewFromConfig(logger logging.Logger) (*Session, Resources, error) {
	store := storage.NewFromConfig()
	client := contacts.NewFromConfig(logger)
	runner := hooks.NewFromConfig(logger)
	res := Resources{Storage: store, Contacts: client, Hooks: runner}

	feed := notification.NewFeed(notification.Options{
		TTL:    config.GetDuration("notification_ttl", notification.DefaultTTL),
		Max:    config.GetInt("max_notifications", notification.DefaultMax),
		Logger: logger,
	})
	adapter, err := channel.NewFromConfig(feed, logger)
	if err != nil {
		_ = res.Close()
		return nil, Resources{}, err
	}

	s := New(Deps{
		Backend:         store,
		Uploader:        client,
		Channel:         adapter,
		Hooks:           runner,
		Feed:            feed,
		DefaultTemplate: config.Get("default_message", config.DefaultMessageTemplate),
		Logger:          logger,
	})
	return s, res, nil
}

// Changes signals that some session state changed. Signals coalesce: a
// single receive covers any number of changes since the last one.
func (s *Session) Changes() <-chan struct{} {
	return s.changes
}

func (s *Session) notify() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}

// Connect runs the channel and the event pump until ctx is done, and
// recovers the server file list in the background.
func (s *Session) Connect(ctx context.Context) {
	go func() {
		_ = s.channel.Run(ctx)
	}()
	go func() {
		_ = s.Pump(ctx)
	}()
	go func() {
		rctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		s.Files.Recover(rctx)
	}()
}

// Pump applies channel events to the run controller, one at a time, in
// delivery order. It returns when ctx is done.
func (s *Session) Pump(ctx context.Context) error {
	for {
		ev, err := s.channel.Next(ctx)
		if err != nil {
			return err
		}
		s.logger.Debug("event", "name", string(ev.Name))
		s.Run.Apply(ev)
	}
}

// Connected reports whether the worker channel is up.
func (s *Session) Connected() bool {
	return s.channel.Connected()
}

// Upload submits a contacts file.
func (s *Session) Upload(ctx context.Context, name string, content io.Reader) (domain.ContactFile, error) {
	return s.Files.Submit(ctx, filesession.RawFile{Name: name, Content: content})
}

// RemoveFile clears the current file.
func (s *Session) RemoveFile() {
	s.Files.Remove()
}

// StartRun starts a run with the current preferences.
func (s *Session) StartRun() error {
	return s.Run.Start(s.Prefs.Current())
}

// StopRun asks the worker to stop.
func (s *Session) StopRun() error {
	return s.Run.Stop()
}

// SavePrefs persists edited configuration fields.
func (s *Session) SavePrefs(p prefs.Partial) domain.Preferences {
	next := s.Prefs.Save(p)
	s.notify()
	return next
}

// ToggleTheme flips and persists the theme.
func (s *Session) ToggleTheme() domain.Theme {
	t := s.Prefs.ToggleTheme()
	s.notify()
	return t
}

// Report routes err to the feed or the log according to its kind.
func (s *Session) Report(err error) {
	s.reporter.Report(err)
}

// Preferences returns the current preferences.
func (s *Session) Preferences() domain.Preferences {
	return s.Prefs.Current()
}

// CurrentFile returns the current contact file, if any.
func (s *Session) CurrentFile() (domain.ContactFile, bool) {
	return s.Files.Current()
}

// PendingUploads returns the number of uploads in flight.
func (s *Session) PendingUploads() int {
	return s.Files.Pending()
}

// RemoteFiles returns the files found on the worker at startup.
func (s *Session) RemoteFiles() []contacts.RemoteFile {
	return s.Files.Available()
}

// RunView returns a snapshot of the run.
func (s *Session) RunView() run.View {
	return s.Run.View()
}

// Notifications returns the live notifications, oldest first.
func (s *Session) Notifications() []domain.Notification {
	return s.Feed.List()
}

// Dismiss removes a notification.
func (s *Session) Dismiss(id string) bool {
	return s.Feed.Dismiss(id)
}
