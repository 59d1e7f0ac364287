package clock

import "time"

//go:generate mockgen -package=mocks -destination=mocks/mock_clock.go github.com/boardbank/boardbank/internal/common/clock Clock

// Clock supplies the current time. Injecting it keeps every server-assigned
// timestamp deterministic under test.
type Clock interface {
	Now() time.Time
}

// DefaultClock implements the Clock interface using the system clock
type DefaultClock struct{}

// New returns a system-clock backed Clock
func New() *DefaultClock {
	return &DefaultClock{}
}

// Now returns the current time
func (c *DefaultClock) Now() time.Time {
	return time.Now()
}
