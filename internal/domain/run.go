package domain

import (
	"fmt"
	"math"
)

// StateKind enumerates the run lifecycle states.
type StateKind string

const (
	StateIdle      StateKind = "idle"
	StateStarting  StateKind = "starting"
	StateRunning   StateKind = "running"
	StateCompleted StateKind = "completed"
	StateStopped   StateKind = "stopped"
	StateFailed    StateKind = "failed"
)

// RunState is the controller's single source of truth for the run.
// Reason is only set for StateFailed.
type RunState struct {
	Kind   StateKind
	Reason string
}

// Idle returns the initial run state.
func Idle() RunState { return RunState{Kind: StateIdle} }

// Failed returns a failed state carrying reason.
func Failed(reason string) RunState { return RunState{Kind: StateFailed, Reason: reason} }

// Active reports whether a run is starting or running.
func (s RunState) Active() bool {
	return s.Kind == StateStarting || s.Kind == StateRunning
}

// Finished reports whether the state ends a run (completed, stopped or failed).
func (s RunState) Finished() bool {
	switch s.Kind {
	case StateCompleted, StateStopped, StateFailed:
		return true
	default:
		return false
	}
}

// String returns the state name, with the failure reason if any.
func (s RunState) String() string {
	if s.Kind == StateFailed && s.Reason != "" {
		return fmt.Sprintf("%s(%s)", s.Kind, s.Reason)
	}
	return string(s.Kind)
}

// RunStats holds the live progress of a run.
type RunStats struct {
	TotalContacts int `json:"total_contacts"`
	MessagesSent  int `json:"messages_sent"`
}

// Ratio returns messagesSent/totalContacts, or 0 when the total is unknown.
func (s RunStats) Ratio() float64 {
	if s.TotalContacts <= 0 {
		return 0
	}
	r := float64(s.MessagesSent) / float64(s.TotalContacts)
	if r > 1 {
		return 1
	}
	return r
}

// Percent returns the progress rounded to the nearest integer percent.
func (s RunStats) Percent() int {
	return int(math.Round(s.Ratio() * 100))
}

// RunConfig is the immutable configuration submitted for a run.
type RunConfig struct {
	SourceFileID    string
	MessageLimit    int
	DelayMillis     int
	MessageTemplate string
}

// EventName identifies an inbound worker event.
type EventName string

const (
	EventStarted      EventName = "bot_started"
	EventStatusUpdate EventName = "status_update"
	EventCompleted    EventName = "bot_completed"
	EventStopped      EventName = "bot_stopped"
	EventError        EventName = "error"
)

// IsValid checks if the event name is one the controller understands.
func (e EventName) IsValid() bool {
	switch e {
	case EventStarted, EventStatusUpdate, EventCompleted, EventStopped, EventError:
		return true
	default:
		return false
	}
}

// Event is a decoded inbound worker event.
type Event struct {
	Name EventName
	// Stats is set for status updates that carry stats.
	Stats *RunStats
	// Message is the optional human-readable text (status_update, error).
	Message string
}
