package state

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/cristianoliveira/sendpanel/internal/domain"
)

// sessionChangedMsg is sent when the session reports a change.
type sessionChangedMsg struct{}

// uploadDoneMsg carries the outcome of an upload started by the panel.
type uploadDoneMsg struct {
	file domain.ContactFile
	err  error
}

// listenForChanges waits for the next session change signal.
func listenForChanges(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return sessionChangedMsg{}
	}
}
