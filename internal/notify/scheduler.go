package notify

import "time"

// Timer is a pending scheduled task.
type Timer interface {
	// Stop cancels the task. It reports false when the task already ran or
	// was stopped.
	Stop() bool
}

// Scheduler runs a function once after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Realtime schedules on the wall clock via time.AfterFunc.
type Realtime struct{}

func (Realtime) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
