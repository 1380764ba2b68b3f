package run

import "github.com/cristianoliveira/sendpanel/internal/domain"

// ColorToken names the badge color for a state. Renderers map tokens to
// concrete colors.
type ColorToken string

const (
	ColorNeutral ColorToken = "neutral"
	ColorPending ColorToken = "pending"
	ColorActive  ColorToken = "active"
	ColorSuccess ColorToken = "success"
	ColorDanger  ColorToken = "danger"
)

// Controls says which run affordance is offered. Exactly one is visible.
type Controls struct {
	StartVisible bool
	StopVisible  bool
}

// View is a consistent snapshot for rendering.
type View struct {
	State    domain.RunState
	Label    string
	Color    ColorToken
	Controls Controls
	Stats    domain.RunStats
	// Config is the configuration of the current or last run, if any.
	Config *domain.RunConfig
}

// Percent is the rounded progress of the run.
func (v View) Percent() int { return v.Stats.Percent() }

// ControlsFor derives the affordances for a state.
func ControlsFor(s domain.RunState) Controls {
	active := s.Active()
	return Controls{StartVisible: !active, StopVisible: active}
}

// Badge returns the status label and color for a state.
func Badge(s domain.RunState) (string, ColorToken) {
	switch s.Kind {
	case domain.StateStarting:
		return "Starting...", ColorPending
	case domain.StateRunning:
		return "Running", ColorActive
	case domain.StateCompleted:
		return "Completed", ColorSuccess
	case domain.StateStopped:
		return "Stopped", ColorDanger
	case domain.StateFailed:
		return "Error", ColorDanger
	default:
		return "Idle", ColorNeutral
	}
}

// View returns a snapshot of the controller.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	label, color := Badge(c.state)
	v := View{
		State:    c.state,
		Label:    label,
		Color:    color,
		Controls: ControlsFor(c.state),
		Stats:    c.stats,
	}
	if c.config != nil {
		cfg := *c.config
		v.Config = &cfg
	}
	return v
}
