package session

import "time"

// Clock supplies wall time and one-shot callbacks to the coordinator.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a cancellable scheduled callback. *time.Timer satisfies it.
type Timer interface {
	Stop() bool
}

type systemClock struct{}

// SystemClock returns the process wall clock.
func SystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
