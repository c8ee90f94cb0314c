package clock

import (
	"sync"
	"time"
)

// Clocker abstracts time so callers can replace real time in tests.
type Clocker interface {
	Now() time.Time
}

// TimeClocker is the production clock implementation backed by time.Now.
type TimeClocker struct{}

// New returns a TimeClocker that reads the current system time.
func New() *TimeClocker {
	return &TimeClocker{}
}

// Now returns the current system time.
func (*TimeClocker) Now() time.Time {
	return time.Now()
}

// Manual is a Clocker that only moves when told to.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

// NewManual returns a Manual clock frozen at t.
func NewManual(t time.Time) *Manual {
	return &Manual{now: t}
}

// NewManualUnix returns a Manual clock frozen at the given Unix second.
func NewManualUnix(sec int64) *Manual {
	return NewManual(time.Unix(sec, 0).UTC())
}

// Now returns the frozen time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Set moves the clock to t. Moving backwards is allowed.
func (m *Manual) Set(t time.Time) {
	m.mu.Lock()
	m.now = t
	m.mu.Unlock()
}

// Advance moves the clock forward by d and returns the new time.
func (m *Manual) Advance(d time.Duration) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = m.now.Add(d)
	return m.now
}
