package common

import "time"

// Clock supplies the current time. Anything that derives "current month" or
// "yesterday" takes a Clock so tests can fix time deterministically.
type Clock interface {
	Now() time.Time
}

// NewClock returns a Clock backed by the system time in UTC.
func NewClock() Clock {
	return systemClock{}
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time {
	return f()
}

// FixedClock returns a Clock frozen at t.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}
