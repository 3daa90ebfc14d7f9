package timeout

import "time"

// Timer is a pending callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks. The guard never reads wall time directly.
type Clock interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// RealClock schedules callbacks with the runtime timer.
type RealClock struct{}

// AfterFunc wraps time.AfterFunc.
func (RealClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
