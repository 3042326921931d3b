// Package clock provides simulated-time bookkeeping: countdown timers owned by
// agents and the clock that maps real frame time onto simulated time.
package clock

import "time"

// Timer counts simulated time against a period.
//
// A one-shot timer latches once the period is reached and stops accumulating
// until Restart. A periodic timer keeps the remainder and fires again on every
// further multiple of the period.
type Timer struct {
	period   time.Duration
	elapsed  time.Duration
	periodic bool
	fired    bool
}

// NewTimer creates a timer. A negative period panics. A one-shot timer with a
// zero period is elapsed from the start.
func NewTimer(period time.Duration, periodic bool) Timer {
	if period < 0 {
		panic("clock: negative timer period")
	}
	return Timer{
		period:   period,
		periodic: periodic,
		fired:    !periodic && period == 0,
	}
}

// Update advances the timer by dt and reports whether the period was crossed
// during this call.
func (t *Timer) Update(dt time.Duration) bool {
	if dt <= 0 {
		return false
	}

	if t.periodic {
		if t.period == 0 {
			return true
		}
		t.elapsed += dt
		if t.elapsed >= t.period {
			t.elapsed %= t.period
			return true
		}
		return false
	}

	if t.fired {
		return false
	}
	t.elapsed += dt
	if t.elapsed >= t.period {
		t.fired = true
		return true
	}
	return false
}

// IsElapsed reports whether a one-shot timer has latched. Periodic timers
// never latch and always report false.
func (t *Timer) IsElapsed() bool {
	return !t.periodic && t.fired
}

// Restart clears accumulated time and the elapsed flag.
func (t *Timer) Restart() {
	t.elapsed = 0
	t.fired = !t.periodic && t.period == 0
}

// Advance pre-loads the timer with d of elapsed time without reporting a
// crossing. Used to desynchronise freshly spawned agents.
func (t *Timer) Advance(d time.Duration) {
	if d <= 0 {
		return
	}
	t.Update(d)
}

func (t *Timer) Elapsed() time.Duration { return t.elapsed }
func (t *Timer) Period() time.Duration  { return t.period }
func (t *Timer) Periodic() bool         { return t.periodic }

// Progress returns elapsed/period in [0, 1].
func (t *Timer) Progress() float64 {
	if t.period == 0 {
		return 1
	}
	p := float64(t.elapsed) / float64(t.period)
	if p > 1 {
		return 1
	}
	return p
}
