package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a failure by how it must be surfaced.
type Kind int

const (
	// KindUnknown is any error not produced by this package.
	KindUnknown Kind = iota
	// KindValidation is a locally recoverable input problem (no file, bad upload).
	KindValidation
	// KindChannel is an explicit error event from the worker; fatal to the run only.
	KindChannel
	// KindTransport is a network or channel disruption; never changes run state.
	KindTransport
	// KindPersistence is unreadable or malformed stored preferences; logged only.
	KindPersistence
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindChannel:
		return "channel"
	case KindTransport:
		return "transport"
	case KindPersistence:
		return "persistence"
	default:
		return "unknown"
	}
}

// Error is a classified failure. Msg is shown to the operator verbatim.
type Error struct {
	Kind Kind
	Op   string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Op == "" {
		return msg
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind, so callers can write
// errors.Is(err, &Error{Kind: KindTransport}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Op == "" || t.Op == e.Op)
}

// Validation returns a validation error with an operator-facing message.
func Validation(op, msg string) *Error {
	return &Error{Kind: KindValidation, Op: op, Msg: msg}
}

// Channel returns a worker-reported error.
func Channel(op, msg string) *Error {
	return &Error{Kind: KindChannel, Op: op, Msg: msg}
}

// Transport wraps a network failure with an operator-facing message.
func Transport(op, msg string, err error) *Error {
	return &Error{Kind: KindTransport, Op: op, Msg: msg, Err: err}
}

// Persistence wraps a storage read/parse failure.
func Persistence(op string, err error) *Error {
	return &Error{Kind: KindPersistence, Op: op, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Message returns the operator-facing message of err.
func Message(err error) string {
	var e *Error
	if stderrors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
