package app

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/cristianoliveira/sendpanel/internal/colors"
	"github.com/cristianoliveira/sendpanel/internal/domain"
	"github.com/cristianoliveira/sendpanel/internal/errors"
	"github.com/cristianoliveira/sendpanel/internal/formatter"
	"github.com/cristianoliveira/sendpanel/internal/prefs"
	"github.com/cristianoliveira/sendpanel/internal/run"
)

// DefaultConnectTimeout bounds the wait for the worker channel.
const DefaultConnectTimeout = 15 * time.Second

// RunSession defines the session operations a headless run needs.
type RunSession interface {
	Connect(ctx context.Context)
	Connected() bool
	Changes() <-chan struct{}
	Upload(ctx context.Context, name string, content io.Reader) (domain.ContactFile, error)
	Preferences() domain.Preferences
	SavePrefs(p prefs.Partial) domain.Preferences
	StartRun() error
	RunView() run.View
	Notifications() []domain.Notification
}

// ReportedError wraps an error whose message already reached the operator
// through the notification feed.
type ReportedError struct {
	Err error
}

func (e *ReportedError) Error() string { return e.Err.Error() }

func (e *ReportedError) Unwrap() error { return e.Err }

// HeadlessRunUseCase uploads a file and drives one run to its end without
// the panel.
type HeadlessRunUseCase struct {
	session RunSession
	engine  formatter.TemplateEngine
}

// NewHeadlessRunUseCase creates a headless run use-case.
func NewHeadlessRunUseCase(session RunSession) *HeadlessRunUseCase {
	if session == nil {
		panic("NewHeadlessRunUseCase: session dependency cannot be nil")
	}
	return &HeadlessRunUseCase{session: session, engine: formatter.NewTemplateEngine()}
}

// HeadlessRunInput carries the file and run overrides.
type HeadlessRunInput struct {
	Path    string
	Open    func(path string) (io.ReadCloser, error)
	Limit   *int
	Delay   *int
	Message *string
	// ConnectTimeout defaults to DefaultConnectTimeout.
	ConnectTimeout time.Duration
	// Progress receives one line per progress change. Nil discards them.
	Progress io.Writer
}

// Execute runs the file to completion and returns the final run view. The
// returned error is set when the run could not start or ctx ended first; a
// run that started and then failed is reported through the view. Feed
// notifications are printed as they appear.
func (u *HeadlessRunUseCase) Execute(ctx context.Context, input HeadlessRunInput) (run.View, error) {
	if input.Open == nil {
		return run.View{}, fmt.Errorf("headless run: no file opener")
	}
	timeout := input.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}
	progress := input.Progress
	if progress == nil {
		progress = io.Discard
	}
	seen := make(map[string]bool)

	u.session.Connect(ctx)

	if err := u.waitConnected(ctx, timeout, seen); err != nil {
		return u.session.RunView(), err
	}

	f, err := input.Open(input.Path)
	if err != nil {
		return u.session.RunView(), errors.Validation("run.open", fmt.Sprintf("Cannot open %s", input.Path))
	}
	file, err := u.session.Upload(ctx, filepath.Base(input.Path), f)
	_ = f.Close()
	u.flushNotifications(seen)
	if err != nil {
		return u.session.RunView(), &ReportedError{Err: err}
	}

	current := u.session.Preferences()
	overrides := prefs.Partial{MessageLimit: input.Limit, DelayMillis: input.Delay, MessageTemplate: input.Message}
	if overrides != (prefs.Partial{}) {
		current = u.session.SavePrefs(overrides)
	}
	if preview, ok := formatter.Preview(u.engine, current.MessageTemplate, file); ok {
		fmt.Fprintf(progress, "Message preview: %s\n", preview)
	}

	if err := u.session.StartRun(); err != nil {
		u.flushNotifications(seen)
		return u.session.RunView(), &ReportedError{Err: err}
	}

	lastSent := -1
	for {
		u.flushNotifications(seen)
		view := u.session.RunView()
		if view.Stats.MessagesSent != lastSent && view.State.Kind == domain.StateRunning {
			lastSent = view.Stats.MessagesSent
			fmt.Fprintf(progress, "%d/%d sent (%d%%)\n", view.Stats.MessagesSent, view.Stats.TotalContacts, view.Percent())
		}
		if view.State.Finished() {
			return view, nil
		}
		select {
		case <-ctx.Done():
			return view, ctx.Err()
		case <-u.session.Changes():
		}
	}
}

func (u *HeadlessRunUseCase) waitConnected(ctx context.Context, timeout time.Duration, seen map[string]bool) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for !u.session.Connected() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			u.flushNotifications(seen)
			return errors.Transport("run.connect", fmt.Sprintf("Worker not reachable after %s", timeout), nil)
		case <-u.session.Changes():
		}
	}
	return nil
}

// flushNotifications prints feed entries not printed before.
func (u *HeadlessRunUseCase) flushNotifications(seen map[string]bool) {
	for _, n := range u.session.Notifications() {
		if seen[n.ID] {
			continue
		}
		seen[n.ID] = true
		colors.Notify(n.Severity.String(), n.Text)
	}
}
