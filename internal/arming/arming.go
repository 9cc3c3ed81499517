package arming

import (
	"time"
)

// DefaultTimeout is the command silence after which an armed vehicle disarms.
const DefaultTimeout = 2000 * time.Millisecond

// Transition describes what a call did to the armed flag.
type Transition int

const (
	// NoChange means the armed flag was left as it was.
	NoChange Transition = iota
	Armed
	Disarmed
	Failsafe
)

func (t Transition) String() string {
	switch t {
	case Armed:
		return "armed"
	case Disarmed:
		return "disarmed"
	case Failsafe:
		return "failsafe"
	default:
		return "none"
	}
}

// State is a snapshot of the arming machine.
type State struct {
	Armed       bool
	LastCommand time.Time
}

// StateMachine tracks arming and the last accepted command time.
type StateMachine struct {
	timeout time.Duration
	state   State
}

// New creates a disarmed machine. A non-positive timeout selects DefaultTimeout.
func New(timeout time.Duration) *StateMachine {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &StateMachine{timeout: timeout}
}

// State returns the current state.
func (m *StateMachine) State() State {
	return m.state
}

// Armed reports the armed flag.
func (m *StateMachine) Armed() bool {
	return m.state.Armed
}

// Timeout returns the configured failsafe timeout.
func (m *StateMachine) Timeout() time.Duration {
	return m.timeout
}

// Touch records an accepted control request.
func (m *StateMachine) Touch(now time.Time) {
	m.state.LastCommand = now
}

// Arm arms the vehicle and refreshes the timeout clock.
func (m *StateMachine) Arm(now time.Time) Transition {
	m.Touch(now)
	if m.state.Armed {
		return NoChange
	}
	m.state.Armed = true
	return Armed
}

// Disarm disarms the vehicle. Disarming while disarmed only refreshes the timestamp.
func (m *StateMachine) Disarm(now time.Time) Transition {
	m.Touch(now)
	if !m.state.Armed {
		return NoChange
	}
	m.state.Armed = false
	return Disarmed
}

// Apply evaluates an arm field: "1" arms, "0" disarms, anything else is
// ignored. The timestamp is refreshed in every case.
func (m *StateMachine) Apply(value string, now time.Time) Transition {
	switch value {
	case "1":
		return m.Arm(now)
	case "0":
		return m.Disarm(now)
	default:
		m.Touch(now)
		return NoChange
	}
}

// CheckFailsafe disarms when armed and the last command is older than the
// timeout. Silence of exactly the timeout does not trip.
func (m *StateMachine) CheckFailsafe(now time.Time) Transition {
	if !m.state.Armed {
		return NoChange
	}
	if now.Sub(m.state.LastCommand) > m.timeout {
		m.state.Armed = false
		return Failsafe
	}
	return NoChange
}
