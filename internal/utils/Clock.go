package utils

import "time"

// Clock abstracts wall-clock time so closure dates and scoring windows can be
// pinned in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock backed by time.Now.
type SystemClock struct{}

func (s SystemClock) Now() time.Time {
	return time.Now()
}

// MockClock returns a fixed instant until SetNow moves it.
type MockClock struct {
	FixedNow time.Time
}

func (m *MockClock) Now() time.Time {
	return m.FixedNow
}

// SetNow re-pins the mock to a new instant.
func (m *MockClock) SetNow(now time.Time) {
	m.FixedNow = now
}
