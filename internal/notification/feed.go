// Package notification implements the panel's transient message feed.
//
// Every entry expires on its own timer after the configured TTL and can be
// dismissed earlier. Expiry and dismissal only ever remove their own entry.
package notification

import (
	"sync"
	"time"

	"github.com/cristianoliveira/sendpanel/internal/domain"
	"github.com/cristianoliveira/sendpanel/internal/logging"
	"github.com/google/uuid"
)

// Defaults used when Options leaves a field zero.
const (
	DefaultTTL = 5 * time.Second
	DefaultMax = 20
)

// Timer is a cancellable scheduled callback.
type Timer interface {
	Stop() bool
}

// Clock abstracts time so expiry can be driven by tests.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// RealClock returns a Clock backed by the time package.
func RealClock() Clock { return realClock{} }

// Options configures a Feed.
type Options struct {
	TTL    time.Duration
	Max    int
	Clock  Clock
	Logger logging.Logger
}

type entry struct {
	n     domain.Notification
	timer Timer
}

// Feed is an ordered, bounded list of live notifications.
type Feed struct {
	mu       sync.Mutex
	ttl      time.Duration
	max      int
	clock    Clock
	logger   logging.Logger
	entries  []entry
	onChange func()
}

// NewFeed creates an empty feed.
func NewFeed(opts Options) *Feed {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Max <= 0 {
		opts.Max = DefaultMax
	}
	if opts.Clock == nil {
		opts.Clock = RealClock()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	return &Feed{
		ttl:    opts.TTL,
		max:    opts.Max,
		clock:  opts.Clock,
		logger: opts.Logger.With("component", "notification"),
	}
}

// OnChange registers fn to be called after every mutation. fn runs without
// the feed lock held and may call back into the feed.
func (f *Feed) OnChange(fn func()) {
	f.mu.Lock()
	f.onChange = fn
	f.mu.Unlock()
}

// Push appends a notification and schedules its expiry. When the feed is
// full the oldest entry is evicted.
func (f *Feed) Push(text string, severity domain.Severity) domain.Notification {
	if !severity.IsValid() {
		severity = domain.SeverityInfo
	}
	n := domain.Notification{
		ID:        uuid.NewString(),
		Text:      text,
		Severity:  severity,
		CreatedAt: f.clock.Now(),
	}

	f.mu.Lock()
	for len(f.entries) >= f.max {
		oldest := f.entries[0]
		oldest.timer.Stop()
		f.entries = f.entries[1:]
		f.logger.Debug("evicted", "id", oldest.n.ID)
	}
	id := n.ID
	timer := f.clock.AfterFunc(f.ttl, func() { f.expire(id) })
	f.entries = append(f.entries, entry{n: n, timer: timer})
	cb := f.onChange
	f.mu.Unlock()

	f.logger.Debug("pushed", "id", n.ID, "severity", string(severity), "text", text)
	if cb != nil {
		cb()
	}
	return n
}

// Dismiss removes the notification with id and cancels its timer. It
// reports whether an entry was removed.
func (f *Feed) Dismiss(id string) bool {
	if !f.remove(id, true) {
		return false
	}
	f.logger.Debug("dismissed", "id", id)
	return true
}

// List returns the live notifications, oldest first.
func (f *Feed) List() []domain.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Notification, len(f.entries))
	for i, e := range f.entries {
		out[i] = e.n
	}
	return out
}

// Len returns the number of live notifications.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

// Clear dismisses every notification.
func (f *Feed) Clear() {
	f.mu.Lock()
	had := len(f.entries) > 0
	for _, e := range f.entries {
		e.timer.Stop()
	}
	f.entries = nil
	cb := f.onChange
	f.mu.Unlock()
	if had && cb != nil {
		cb()
	}
}

func (f *Feed) expire(id string) {
	if f.remove(id, false) {
		f.logger.Debug("expired", "id", id)
	}
}

func (f *Feed) remove(id string, stop bool) bool {
	f.mu.Lock()
	idx := -1
	for i, e := range f.entries {
		if e.n.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		f.mu.Unlock()
		return false
	}
	if stop {
		f.entries[idx].timer.Stop()
	}
	f.entries = append(f.entries[:idx], f.entries[idx+1:]...)
	cb := f.onChange
	f.mu.Unlock()

	if cb != nil {
		cb()
	}
	return true
}

// Error pushes an error notification.
func (f *Feed) Error(msg string) { f.Push(msg, domain.SeverityError) }

// Warning pushes a warning notification.
func (f *Feed) Warning(msg string) { f.Push(msg, domain.SeverityWarning) }

// Info pushes an info notification.
func (f *Feed) Info(msg string) { f.Push(msg, domain.SeverityInfo) }

// Success pushes a success notification.
func (f *Feed) Success(msg string) { f.Push(msg, domain.SeveritySuccess) }
