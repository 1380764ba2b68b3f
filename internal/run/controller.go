// Package run implements the messaging run lifecycle.
//
// The Controller is the only authority on whether start or stop may be
// issued. Local calls (Start, Stop) and inbound worker events (Apply) are
// the only inputs; inbound events are dispatched through a typed table.
package run

import (
	"strings"
	"sync"

	"github.com/cristianoliveira/sendpanel/internal/domain"
	"github.com/cristianoliveira/sendpanel/internal/errors"
	"github.com/cristianoliveira/sendpanel/internal/logging"
)

// Operator-facing messages, one per transition kind.
const (
	MsgNoFile        = "Please select a contacts file"
	MsgAlreadyActive = "A run is already in progress"
	MsgStarting      = "Starting run..."
	MsgStarted       = "Bot started successfully"
	MsgCompleted     = "Sending completed successfully"
	MsgStopped       = "Bot stopped"
	msgUnknownError  = "Unknown worker error"
)

// Commander sends commands to the worker.
type Commander interface {
	Start(cfg domain.RunConfig) error
	Stop() error
}

// FileSource provides the contact file a run is started against.
type FileSource interface {
	Current() (domain.ContactFile, bool)
}

// Outcome describes a run that reached Completed, Stopped or Failed.
type Outcome struct {
	State  domain.RunState
	Config domain.RunConfig
	Stats  domain.RunStats
}

// Options configures a Controller.
type Options struct {
	Files     FileSource
	Commander Commander
	Sink      errors.ErrorHandler
	Logger    logging.Logger
	// DefaultTemplate replaces an empty message template at start.
	DefaultTemplate string
}

// Controller owns RunState and RunStats.
type Controller struct {
	mu              sync.Mutex
	files           FileSource
	cmd             Commander
	sink            errors.ErrorHandler
	logger          logging.Logger
	defaultTemplate string

	state  domain.RunState
	stats  domain.RunStats
	config *domain.RunConfig

	onFinish []func(Outcome)
	onChange func()
}

// New creates an idle Controller.
func New(opts Options) *Controller {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	return &Controller{
		files:           opts.Files,
		cmd:             opts.Commander,
		sink:            opts.Sink,
		logger:          opts.Logger.With("component", "run"),
		defaultTemplate: opts.DefaultTemplate,
		state:           domain.Idle(),
	}
}

// OnFinish registers fn to observe every run that ends.
func (c *Controller) OnFinish(fn func(Outcome)) {
	c.mu.Lock()
	c.onFinish = append(c.onFinish, fn)
	c.mu.Unlock()
}

// OnChange registers fn to be called after every state or stats change.
func (c *Controller) OnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// notice is an operator-facing message queued while the lock is held and
// delivered after it is released.
type notice struct {
	severity domain.Severity
	text     string
}

// effects collects what a locked section wants to emit.
type effects struct {
	notices  []notice
	changed  bool
	finished *Outcome
}

func (e *effects) notify(sev domain.Severity, text string) {
	e.notices = append(e.notices, notice{severity: sev, text: text})
}

func (c *Controller) flush(e effects) {
	c.mu.Lock()
	onChange := c.onChange
	onFinish := append([]func(Outcome){}, c.onFinish...)
	c.mu.Unlock()

	for _, n := range e.notices {
		c.emit(n)
	}
	if e.changed && onChange != nil {
		onChange()
	}
	if e.finished != nil {
		for _, fn := range onFinish {
			fn(*e.finished)
		}
	}
}

func (c *Controller) emit(n notice) {
	if c.sink == nil {
		return
	}
	switch n.severity {
	case domain.SeverityError:
		c.sink.Error(n.text)
	case domain.SeverityWarning:
		c.sink.Warning(n.text)
	case domain.SeveritySuccess:
		c.sink.Success(n.text)
	default:
		c.sink.Info(n.text)
	}
}

// Start begins a new run from the current file and prefs. Without a current
// file nothing is sent and the state is unchanged. A run already starting or
// running is not replaced. If the command cannot be sent the state is
// unchanged and the disruption is reported as a warning.
func (c *Controller) Start(prefs domain.Preferences) error {
	const op = "run.start"
	var fx effects
	defer func() { c.flush(fx) }()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Active() {
		c.logger.Info("start rejected", "state", c.state.String())
		fx.notify(domain.SeverityWarning, MsgAlreadyActive)
		return errors.Validation(op, MsgAlreadyActive)
	}

	file, ok := c.files.Current()
	if !ok {
		c.logger.Info("start rejected", "reason", "no file")
		fx.notify(domain.SeverityError, MsgNoFile)
		return errors.Validation(op, MsgNoFile)
	}

	cfg := domain.RunConfig{
		SourceFileID:    file.ID,
		MessageLimit:    prefs.MessageLimit,
		DelayMillis:     prefs.DelayMillis,
		MessageTemplate: prefs.MessageTemplate,
	}
	if strings.TrimSpace(cfg.MessageTemplate) == "" {
		cfg.MessageTemplate = c.defaultTemplate
	}

	if err := c.cmd.Start(cfg); err != nil {
		c.logger.Warn("start_bot not sent", "error", err.Error())
		fx.notify(domain.SeverityWarning, errors.Message(err))
		return err
	}

	c.config = &cfg
	c.stats = domain.RunStats{TotalContacts: file.ContactCount}
	c.transition(&fx, domain.RunState{Kind: domain.StateStarting})
	fx.notify(domain.SeverityInfo, MsgStarting)
	c.logger.Info("start_bot sent", "file", cfg.SourceFileID, "limit", cfg.MessageLimit, "delay", cfg.DelayMillis)
	return nil
}

// Stop asks the worker to stop the active run. It sends exactly one
// stop_bot when starting or running and is a no-op otherwise. The state
// only changes when the worker confirms.
func (c *Controller) Stop() error {
	var fx effects
	defer func() { c.flush(fx) }()

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.Active() {
		c.logger.Debug("stop ignored", "state", c.state.String())
		return nil
	}
	if err := c.cmd.Stop(); err != nil {
		c.logger.Warn("stop_bot not sent", "error", err.Error())
		fx.notify(domain.SeverityWarning, errors.Message(err))
		return err
	}
	c.logger.Info("stop_bot sent")
	return nil
}

// transition is one row of the event table. from lists the states the
// event is accepted in; apply runs with the lock held.
type transition struct {
	from  []domain.StateKind
	apply func(c *Controller, fx *effects, ev domain.Event)
}

var transitions = map[domain.EventName]transition{
	domain.EventStarted: {
		from: []domain.StateKind{domain.StateStarting},
		apply: func(c *Controller, fx *effects, _ domain.Event) {
			c.transition(fx, domain.RunState{Kind: domain.StateRunning})
			fx.notify(domain.SeveritySuccess, MsgStarted)
		},
	},
	domain.EventStatusUpdate: {
		from: []domain.StateKind{domain.StateRunning},
		apply: func(c *Controller, fx *effects, ev domain.Event) {
			if ev.Stats != nil {
				c.refreshStats(*ev.Stats)
				fx.changed = true
			}
			if ev.Message != "" {
				fx.notify(domain.SeverityInfo, ev.Message)
			}
		},
	},
	domain.EventCompleted: {
		from: []domain.StateKind{domain.StateRunning},
		apply: func(c *Controller, fx *effects, ev domain.Event) {
			if ev.Stats != nil {
				c.refreshStats(*ev.Stats)
			}
			c.transition(fx, domain.RunState{Kind: domain.StateCompleted})
			fx.notify(domain.SeveritySuccess, MsgCompleted)
		},
	},
	domain.EventStopped: {
		from: []domain.StateKind{domain.StateStarting, domain.StateRunning},
		apply: func(c *Controller, fx *effects, _ domain.Event) {
			c.transition(fx, domain.RunState{Kind: domain.StateStopped})
			fx.notify(domain.SeverityWarning, MsgStopped)
		},
	},
	domain.EventError: {
		from: []domain.StateKind{domain.StateStarting, domain.StateRunning},
		apply: func(c *Controller, fx *effects, ev domain.Event) {
			reason := errorReason(ev)
			c.transition(fx, domain.Failed(reason))
			fx.notify(domain.SeverityError, reason)
		},
	},
}

// Apply feeds one inbound worker event to the state machine. Events not
// accepted in the current state are ignored, except error events, which are
// always shown to the operator.
func (c *Controller) Apply(ev domain.Event) {
	var fx effects
	defer func() { c.flush(fx) }()

	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := transitions[ev.Name]
	if !ok {
		c.logger.Warn("unknown event", "event", string(ev.Name))
		return
	}
	if !accepts(t.from, c.state.Kind) {
		c.logger.Info("event ignored", "event", string(ev.Name), "state", c.state.String())
		if ev.Name == domain.EventError {
			fx.notify(domain.SeverityError, errorReason(ev))
		}
		return
	}
	t.apply(c, &fx, ev)
}

func accepts(from []domain.StateKind, k domain.StateKind) bool {
	for _, f := range from {
		if f == k {
			return true
		}
	}
	return false
}

func errorReason(ev domain.Event) string {
	if strings.TrimSpace(ev.Message) == "" {
		return msgUnknownError
	}
	return ev.Message
}

// refreshStats keeps messagesSent non-decreasing within a run.
func (c *Controller) refreshStats(s domain.RunStats) {
	if s.TotalContacts > 0 {
		c.stats.TotalContacts = s.TotalContacts
	}
	if s.MessagesSent > c.stats.MessagesSent {
		c.stats.MessagesSent = s.MessagesSent
	}
}

// transition must be called with c.mu held.
func (c *Controller) transition(fx *effects, next domain.RunState) {
	prev := c.state
	c.state = next
	fx.changed = true
	c.logger.Info("transition", "from", prev.String(), "to", next.String())
	if next.Finished() && c.config != nil {
		fx.finished = &Outcome{State: next, Config: *c.config, Stats: c.stats}
	}
}

// State returns the current run state.
func (c *Controller) State() domain.RunState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Stats returns the stats of the current or last run.
func (c *Controller) Stats() domain.RunStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
