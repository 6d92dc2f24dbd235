package bolt

import "time"

// Clock supplies the current time. Tests substitute a fake to control idle
// time measurement.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

// Now returns the current wall clock time
func (SystemClock) Now() time.Time {
	return time.Now()
}
