package errors

import "github.com/cristianoliveira/sendpanel/internal/logging"

// Reporter terminates every failure path in a handler entry, a log line, or both.
type Reporter struct {
	handler ErrorHandler
	logger  logging.Logger
}

// NewReporter creates a Reporter. A nil logger discards log output.
func NewReporter(handler ErrorHandler, logger logging.Logger) *Reporter {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Reporter{handler: handler, logger: logger}
}

// Report routes err by kind: validation and channel errors become error
// messages, transport errors become warnings, persistence errors are only
// logged. Unclassified errors are treated as errors.
func (r *Reporter) Report(err error) {
	if err == nil {
		return
	}
	kind := KindOf(err)
	msg := Message(err)
	switch kind {
	case KindPersistence:
		r.logger.Warn("persistence failure", "error", err.Error())
		return
	case KindTransport:
		r.logger.Warn("transport disruption", "error", err.Error())
		if r.handler != nil {
			r.handler.Warning(msg)
		}
	default:
		r.logger.Error("operation failed", "kind", kind.String(), "error", err.Error())
		if r.handler != nil {
			r.handler.Error(msg)
		}
	}
}
