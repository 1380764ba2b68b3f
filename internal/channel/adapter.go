// Package channel maintains the bidirectional event channel to the worker.
//
// Inbound frames are read by a single goroutine per connection and handed
// to the consumer in receive order. Every connection gets a fresh session
// id; once a new session exists, events still buffered from an older one
// are dropped. Disconnects are reported as transport warnings and never
// touch the run state.
package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cristianoliveira/sendpanel/internal/config"
	"github.com/cristianoliveira/sendpanel/internal/domain"
	"github.com/cristianoliveira/sendpanel/internal/errors"
	"github.com/cristianoliveira/sendpanel/internal/logging"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait     = 10 * time.Second
	pongWait      = 60 * time.Second
	pingPeriod    = 20 * time.Second
	defaultBuffer = 64
)

// Operator-facing messages.
const (
	MsgNotConnected = "Not connected to worker"
	MsgDisconnected = "Connection to worker lost, reconnecting"
	MsgReconnected  = "Reconnected to worker"
	msgUnreachable  = "Cannot reach worker at %s"
	msgSendFailed   = "Failed to send command to worker"
)

// Envelope is an inbound event tagged with the session it arrived on.
type Envelope struct {
	Session string
	Seq     int64
	Event   domain.Event
}

// Options configures an Adapter.
type Options struct {
	URL               string
	ReconnectDelay    time.Duration
	MaxReconnectDelay time.Duration
	Sink              errors.ErrorHandler
	Logger            logging.Logger
	Dialer            *websocket.Dialer
	Buffer            int
}

// Adapter owns the websocket connection to the worker.
type Adapter struct {
	url       string
	baseDelay time.Duration
	maxDelay  time.Duration
	dialer    *websocket.Dialer
	sink      errors.ErrorHandler
	reporter  *errors.Reporter
	logger    logging.Logger
	events    chan Envelope

	mu       sync.Mutex
	conn     *websocket.Conn
	session  string
	lastSeq  int64
	onChange func()

	writeMu sync.Mutex
}

// New creates an Adapter. Call Run to connect.
func New(opts Options) *Adapter {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = 2 * time.Second
	}
	if opts.MaxReconnectDelay < opts.ReconnectDelay {
		opts.MaxReconnectDelay = opts.ReconnectDelay
	}
	if opts.Dialer == nil {
		opts.Dialer = &websocket.Dialer{HandshakeTimeout: writeWait}
	}
	if opts.Buffer <= 0 {
		opts.Buffer = defaultBuffer
	}
	logger := opts.Logger.With("component", "channel")
	return &Adapter{
		url:       opts.URL,
		baseDelay: opts.ReconnectDelay,
		maxDelay:  opts.MaxReconnectDelay,
		dialer:    opts.Dialer,
		sink:      opts.Sink,
		reporter:  errors.NewReporter(opts.Sink, logger),
		logger:    logger,
		events:    make(chan Envelope, opts.Buffer),
	}
}

// NewFromConfig creates an Adapter for server_url and channel_path.
func NewFromConfig(sink errors.ErrorHandler, logger logging.Logger) (*Adapter, error) {
	u, err := ChannelURL(config.Get("server_url", "http://localhost:5000"), config.Get("channel_path", "/ws"))
	if err != nil {
		return nil, err
	}
	return New(Options{
		URL:               u,
		ReconnectDelay:    config.GetDuration("reconnect_delay", 2*time.Second),
		MaxReconnectDelay: config.GetDuration("max_reconnect_delay", 30*time.Second),
		Sink:              sink,
		Logger:            logger,
	}), nil
}

// ChannelURL derives the websocket address from the worker's HTTP address.
func ChannelURL(serverURL, path string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server url %q: %w", serverURL, err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("invalid server url %q: unsupported scheme", serverURL)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	return u.String(), nil
}

// URL returns the websocket address.
func (a *Adapter) URL() string { return a.url }

// OnChange registers fn to be called when the connection comes up or drops.
func (a *Adapter) OnChange(fn func()) {
	a.mu.Lock()
	a.onChange = fn
	a.mu.Unlock()
}

// Connected reports whether a connection is currently up.
func (a *Adapter) Connected() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.conn != nil
}

// Session returns the id of the newest session, or "" before the first
// connection.
func (a *Adapter) Session() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

// Run connects and keeps the channel up until ctx is done, reconnecting
// with exponential backoff. It returns ctx.Err().
func (a *Adapter) Run(ctx context.Context) error {
	delay := a.baseDelay
	everConnected := false
	reportedDown := false

	for {
		conn, _, err := a.dialer.DialContext(ctx, a.url, nil)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if !reportedDown {
				a.reporter.Report(errors.Transport("channel.dial", fmt.Sprintf(msgUnreachable, a.url), err))
				reportedDown = true
			} else {
				a.logger.Debug("dial failed", "url", a.url, "error", err.Error())
			}
		} else {
			session := a.attach(conn)
			a.logger.Info("connected", "url", a.url, "session", session)
			if everConnected && a.sink != nil {
				a.sink.Info(MsgReconnected)
			}
			everConnected = true
			reportedDown = false
			delay = a.baseDelay

			readErr := a.readLoop(ctx, conn, session)
			a.detach(conn)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			a.reporter.Report(errors.Transport("channel.read", MsgDisconnected, readErr))
			reportedDown = true
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
		if delay > a.maxDelay {
			delay = a.maxDelay
		}
	}
}

// attach installs conn under a new session id.
func (a *Adapter) attach(conn *websocket.Conn) string {
	a.mu.Lock()
	a.conn = conn
	a.session = uuid.NewString()
	a.lastSeq = 0
	session := a.session
	fn := a.onChange
	a.mu.Unlock()
	if fn != nil {
		fn()
	}
	return session
}

// detach closes conn. The session id is kept so events read before the
// drop are still delivered until a new session replaces it.
func (a *Adapter) detach(conn *websocket.Conn) {
	a.mu.Lock()
	if a.conn == conn {
		a.conn = nil
	}
	fn := a.onChange
	a.mu.Unlock()

	a.writeMu.Lock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	_ = conn.Close()
	a.writeMu.Unlock()

	if fn != nil {
		fn()
	}
}

func (a *Adapter) readLoop(ctx context.Context, conn *websocket.Conn, session string) error {
	done := make(chan struct{})
	defer close(done)

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go a.keepAlive(conn, done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		frame, err := DecodeFrame(msg)
		if err != nil {
			a.logger.Warn("malformed frame", "session", session, "error", err.Error())
			continue
		}
		ev, err := frame.ToEvent()
		if err != nil {
			a.logger.Warn("unusable frame", "session", session, "event", frame.Event, "error", err.Error())
			continue
		}

		select {
		case a.events <- Envelope{Session: session, Seq: frame.Seq, Event: ev}:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (a *Adapter) keepAlive(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			a.writeMu.Lock()
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			a.writeMu.Unlock()
			if err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// Next blocks until the next deliverable event. Events are returned in the
// order they were read; stale and duplicate ones are skipped.
func (a *Adapter) Next(ctx context.Context) (domain.Event, error) {
	for {
		select {
		case <-ctx.Done():
			return domain.Event{}, ctx.Err()
		case env := <-a.events:
			if a.accept(env) {
				return env.Event, nil
			}
		}
	}
}

// accept reports whether env belongs to the newest session and, when
// numbered, is newer than anything already delivered from it.
func (a *Adapter) accept(env Envelope) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if env.Session != a.session {
		a.logger.Info("stale event dropped", "event", string(env.Event.Name), "session", env.Session)
		return false
	}
	if env.Seq > 0 {
		if env.Seq <= a.lastSeq {
			a.logger.Info("duplicate event dropped", "event", string(env.Event.Name), "seq", env.Seq)
			return false
		}
		a.lastSeq = env.Seq
	}
	return true
}

// Start sends a start_bot command.
func (a *Adapter) Start(cfg domain.RunConfig) error {
	frame, err := StartFrame(cfg)
	if err != nil {
		return errors.Transport("channel.start", msgSendFailed, err)
	}
	return a.send("channel.start", frame)
}

// Stop sends a stop_bot command.
func (a *Adapter) Stop() error {
	return a.send("channel.stop", StopFrame())
}

func (a *Adapter) send(op string, frame Frame) error {
	a.mu.Lock()
	conn := a.conn
	a.mu.Unlock()
	if conn == nil {
		return errors.Transport(op, MsgNotConnected, nil)
	}

	a.writeMu.Lock()
	defer a.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := writeJSON(conn, frame); err != nil {
		a.logger.Warn("send failed", "event", frame.Event, "error", err.Error())
		return errors.Transport(op, msgSendFailed, err)
	}
	a.logger.Debug("sent", "event", frame.Event)
	return nil
}

// writeJSON writes v as one text message without HTML escaping, so message
// templates reach the worker unchanged.
func writeJSON(conn *websocket.Conn, v any) error {
	w, err := conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return w.Close()
}
