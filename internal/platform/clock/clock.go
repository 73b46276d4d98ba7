// Package clock provides the time seam for the progression engine. All
// "now", "today" and hour-of-day reads route through a Clock so tests can
// supply fixed times.
package clock

import (
	"sync"
	"time"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// System is a Clock backed by the wall clock, in UTC.
type System struct{}

// Now implements the Clock interface.
func (System) Now() time.Time {
	return time.Now().UTC()
}

// Fake is a settable Clock for tests.
type Fake struct {
	mu  sync.Mutex
	now time.Time
}

// NewFake returns a Fake frozen at the given time.
func NewFake(now time.Time) *Fake {
	return &Fake{now: now}
}

// Now implements the Clock interface.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Set moves the fake clock to the given time.
func (f *Fake) Set(now time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = now
}

// Advance moves the fake clock forward by d.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}
