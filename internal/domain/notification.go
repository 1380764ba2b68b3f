// Package domain provides the domain layer for the send panel.
// It contains value objects shared by the session components.
package domain

import (
	"fmt"
	"time"
)

// Severity represents how a notification is presented to the operator.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// IsValid checks if the severity is one of the known values.
func (s Severity) IsValid() bool {
	switch s {
	case SeveritySuccess, SeverityError, SeverityWarning, SeverityInfo:
		return true
	default:
		return false
	}
}

// String returns the string representation of the severity.
func (s Severity) String() string {
	return string(s)
}

// ParseSeverity parses a string into a Severity.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(s)
	if !sev.IsValid() {
		return "", fmt.Errorf("invalid severity: %s", s)
	}
	return sev, nil
}

// Notification is an ephemeral, user-visible message.
type Notification struct {
	ID        string
	Text      string
	Severity  Severity
	CreatedAt time.Time
}
