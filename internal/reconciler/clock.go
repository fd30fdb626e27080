package reconciler

import "time"

// Clock abstracts wall time so the loop can be driven by a fake in tests
// instead of waiting out real poll intervals.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

// SystemClock returns a Clock backed by real wall time.
func SystemClock() Clock { return systemClock{} }
