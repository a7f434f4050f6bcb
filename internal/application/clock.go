package application

import "time"

// Clock interface supaya gampang ditest
type Clock interface {
	Now() time.Time
}

// SystemClock implementasi default, pakai time.Now()
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// FixedClock always returns T; used by tests and the CLI dry runs.
type FixedClock struct{ T time.Time }

func (c FixedClock) Now() time.Time { return c.T }

// Stamp returns the clock time in UTC truncated to whole seconds, the
// precision every store keeps, so a reloaded record equals the original.
func Stamp(c Clock) time.Time {
	if c == nil {
		c = SystemClock{}
	}
	return c.Now().UTC().Truncate(time.Second)
}
