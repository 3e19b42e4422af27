package protocol

import "time"

// Clock supplies time and delays to the framer and the driver.
//
// Timeouts follow one pattern throughout the module:
//
//	mark := clock.Now()
//	for !Expired(clock, mark, budget) {
//	    clock.Sleep(poll)
//	}
type Clock interface {
	// Now returns the current time
	Now() time.Time

	// Sleep blocks for d
	Sleep(d time.Duration)
}

// SystemClock is the Clock backed by package time.
var SystemClock Clock = systemClock{}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// Expired reports whether budget has elapsed on c since mark.
func Expired(c Clock, mark time.Time, budget time.Duration) bool {
	return c.Now().Sub(mark) >= budget
}
