package timeout

import "time"

// State is the guard's position in its lifecycle.
type State int8

const (
	Active State = iota
	Warning
	LoggedOut
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Warning:
		return "warning"
	case LoggedOut:
		return "logged_out"
	default:
		return "unknown"
	}
}

// MarshalText renders the state name, so JSON payloads carry "warning"
// rather than an integer.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ActivityKind names the user interactions that count as activity.
type ActivityKind string

const (
	MouseMove ActivityKind = "mousemove"
	KeyUp     ActivityKind = "keyup"
	Scroll    ActivityKind = "scroll"
)

// ParseActivity maps an event name to an ActivityKind.
func ParseActivity(name string) (ActivityKind, bool) {
	switch kind := ActivityKind(name); kind {
	case MouseMove, KeyUp, Scroll:
		return kind, true
	}
	return "", false
}

// Status is a point-in-time view used by status endpoints.
type Status struct {
	State    State `json:"state"`
	TimeLeft int64 `json:"time_left_ms"`
}

// Seconds returns the remaining countdown in whole seconds.
func (s Status) Seconds() int64 {
	return s.TimeLeft / int64(time.Second/time.Millisecond)
}
