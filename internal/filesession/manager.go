// Package filesession owns the contact file currently selected for a run.
//
// At most one ContactFile is current. Uploads and removals may overlap; the
// one that settles last decides what is left standing.
package filesession

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/cristianoliveira/sendpanel/internal/contacts"
	"github.com/cristianoliveira/sendpanel/internal/domain"
	"github.com/cristianoliveira/sendpanel/internal/errors"
	"github.com/cristianoliveira/sendpanel/internal/logging"
)

// Operator-facing messages.
const (
	MsgFileRemoved = "File removed"
	msgFileLoaded  = "File loaded: %d contacts"
)

// Uploader is the file parsing service.
type Uploader interface {
	Upload(ctx context.Context, name string, content io.Reader) (contacts.UploadResult, error)
	ListFiles(ctx context.Context) ([]contacts.RemoteFile, error)
}

// RawFile is a file picked by the operator, not yet parsed.
type RawFile struct {
	Name    string
	Content io.Reader
}

// Manager holds the current ContactFile.
type Manager struct {
	mu        sync.Mutex
	uploader  Uploader
	sink      errors.ErrorHandler
	logger    logging.Logger
	current   *domain.ContactFile
	pending   int
	available []contacts.RemoteFile
	onChange  func()
}

// New creates a Manager. Operator-facing outcomes are sent to sink, which may
// be nil.
func New(uploader Uploader, sink errors.ErrorHandler, logger logging.Logger) *Manager {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Manager{
		uploader: uploader,
		sink:     sink,
		logger:   logger.With("component", "filesession"),
	}
}

// OnChange registers fn to be called after the current file or the pending
// count changes. fn runs without the manager lock held.
func (m *Manager) OnChange(fn func()) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

// Submit uploads raw for parsing. On success the result replaces the current
// file; on failure the current file is left untouched and the service's
// message is reported as an error.
func (m *Manager) Submit(ctx context.Context, raw RawFile) (domain.ContactFile, error) {
	m.mu.Lock()
	m.pending++
	m.mu.Unlock()
	m.changed()

	cf, err := m.upload(ctx, raw)

	m.mu.Lock()
	m.pending--
	if err == nil {
		m.current = &cf
	}
	m.mu.Unlock()
	m.changed()

	if err != nil {
		m.logger.Warn("submit failed", "file", raw.Name, "kind", errors.KindOf(err).String(), "error", err.Error())
		m.report(domain.SeverityError, errors.Message(err))
		return domain.ContactFile{}, err
	}
	m.logger.Info("file loaded", "file", cf.ID, "contacts", cf.ContactCount)
	m.report(domain.SeveritySuccess, fmt.Sprintf(msgFileLoaded, cf.ContactCount))
	return cf, nil
}

func (m *Manager) upload(ctx context.Context, raw RawFile) (domain.ContactFile, error) {
	const op = "filesession.submit"
	if raw.Content == nil {
		return domain.ContactFile{}, errors.Validation(op, "Please select a contacts file")
	}
	res, err := m.uploader.Upload(ctx, raw.Name, raw.Content)
	if err != nil {
		return domain.ContactFile{}, err
	}
	cf, err := res.ContactFile(raw.Name)
	if err != nil {
		return domain.ContactFile{}, errors.Validation(op, err.Error())
	}
	return cf, nil
}

// Remove clears the current file. It always succeeds.
func (m *Manager) Remove() {
	m.mu.Lock()
	had := m.current != nil
	m.current = nil
	m.mu.Unlock()
	m.changed()

	m.logger.Info("file removed", "had_file", had)
	m.report(domain.SeverityInfo, MsgFileRemoved)
}

func (m *Manager) report(sev domain.Severity, text string) {
	if m.sink == nil {
		return
	}
	switch sev {
	case domain.SeverityError:
		m.sink.Error(text)
	case domain.SeveritySuccess:
		m.sink.Success(text)
	default:
		m.sink.Info(text)
	}
}

// Current returns the current file, if any.
func (m *Manager) Current() (domain.ContactFile, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return domain.ContactFile{}, false
	}
	return *m.current, true
}

// TotalContacts is the contact count of the current file, or 0.
func (m *Manager) TotalContacts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return 0
	}
	return m.current.ContactCount
}

// Pending returns the number of uploads in flight.
func (m *Manager) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending
}

// Recover lists files already stored on the worker. Failures are logged
// only; the list is informational and never selects a file.
func (m *Manager) Recover(ctx context.Context) []contacts.RemoteFile {
	files, err := m.uploader.ListFiles(ctx)
	if err != nil {
		m.logger.Warn("recover failed", "error", err.Error())
		return nil
	}
	m.mu.Lock()
	m.available = files
	m.mu.Unlock()
	m.logger.Info("server files", "count", len(files))
	m.changed()
	return files
}

// Available returns the files found by the last Recover.
func (m *Manager) Available() []contacts.RemoteFile {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]contacts.RemoteFile, len(m.available))
	copy(out, m.available)
	return out
}

func (m *Manager) changed() {
	m.mu.Lock()
	fn := m.onChange
	m.mu.Unlock()
	if fn != nil {
		fn()
	}
}
