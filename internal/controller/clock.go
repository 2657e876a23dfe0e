package controller

import "time"

// Clock abstracts wall-clock time so the bounded-wait connect logic and the
// reconnect rate limiter can run against a simulated clock in tests.
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// SystemClock returns a Clock backed by real time.
func SystemClock() Clock {
	return systemClock{}
}

// awaitLink polls check every poll interval until it reports true or the
// deadline passes. It always checks at least once, and checks immediately
// rather than only at timeout so success is detected promptly.
func awaitLink(clk Clock, deadline time.Time, poll time.Duration, check func() bool) bool {
	for {
		if check() {
			return true
		}
		if !clk.Now().Before(deadline) {
			return false
		}
		clk.Sleep(poll)
	}
}
