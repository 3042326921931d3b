package clock

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrNegativeDuration is returned when the clock is fed a negative real delta.
var ErrNegativeDuration = errors.New("clock: negative duration")

// SimClock converts real elapsed time into simulated time using a fixed
// multiplicative factor.
type SimClock struct {
	factor   float64
	total    time.Duration
	baseline time.Duration
}

// NewSimClock creates a clock. The factor must be finite and positive.
func NewSimClock(factor float64) (*SimClock, error) {
	if factor <= 0 || math.IsInf(factor, 0) || math.IsNaN(factor) {
		return nil, fmt.Errorf("clock: invalid time factor %v", factor)
	}
	return &SimClock{factor: factor}, nil
}

// Update accumulates realDt scaled by the time factor.
func (c *SimClock) Update(realDt time.Duration) error {
	if realDt < 0 {
		return fmt.Errorf("update by %v: %w", realDt, ErrNegativeDuration)
	}
	c.total += time.Duration(float64(realDt) * c.factor)
	return nil
}

// DeltaTime returns the simulated time accumulated since the previous call
// and resets the baseline.
func (c *SimClock) DeltaTime() time.Duration {
	d := c.total - c.baseline
	c.baseline = c.total
	return d
}

// Now returns the total simulated time.
func (c *SimClock) Now() time.Duration { return c.total }

// Factor returns the real-to-simulated time multiplier.
func (c *SimClock) Factor() float64 { return c.factor }
