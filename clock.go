package authsession

import "time"

// Clock supplies wall-clock time and single-shot timers to the Manager. Tests inject a
// manual clock; production code uses the system clock.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending single-shot callback.
type Timer interface {
	// Stop prevents the callback from firing. It reports false when the callback has
	// already fired or been stopped.
	Stop() bool
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
