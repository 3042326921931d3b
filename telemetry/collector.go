package telemetry

import (
	"time"

	"github.com/pthm-cable/meadow/components"
	"github.com/pthm-cable/meadow/config"
	"github.com/pthm-cable/meadow/sim"
)

// Collector accumulates events within time windows and produces WindowStats.
// It implements sim.Observer.
type Collector struct {
	window time.Duration

	// Current window tracking
	windowStart     time.Duration
	windowStartTick int32

	// Event counters for current window
	preyBirths  int
	predBirths  int
	preyDeaths  int
	predDeaths  int
	preyStarved int
	preyKilled  int
	rotted      int
	kills       int
	bites       int
	mates       int
	foodEaten   float64

	preyLifespan, predLifespan lifespanSum
}

type lifespanSum struct {
	total float64
	n     int
}

func (l *lifespanSum) add(age float64) {
	l.total += age
	l.n++
}

func (l lifespanSum) mean() float64 {
	if l.n == 0 {
		return 0
	}
	return l.total / float64(l.n)
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulated seconds.
func NewCollector(windowDurationSec float64) *Collector {
	w := config.Seconds(windowDurationSec)
	if w <= 0 {
		w = time.Second
	}
	return &Collector{window: w}
}

// Observe records a lifecycle event.
func (c *Collector) Observe(e sim.Event) {
	switch e.Type {
	case sim.EventBirth:
		if e.Kind == components.KindPrey {
			c.preyBirths++
		} else {
			c.predBirths++
		}
	case sim.EventDeath:
		if e.Kind == components.KindPrey {
			c.preyDeaths++
			c.preyLifespan.add(e.Age)
			if e.Cause == sim.CauseKilled {
				c.preyKilled++
			} else {
				c.preyStarved++
			}
		} else {
			c.predDeaths++
			c.predLifespan.add(e.Age)
		}
	case sim.EventRot:
		c.rotted++
	case sim.EventKill:
		c.kills++
	case sim.EventBite:
		c.bites++
	case sim.EventMate:
		c.mates++
	case sim.EventForage:
		c.foodEaten += e.Amount
	}
}

// ShouldFlush returns true once a full window of simulated time has passed.
func (c *Collector) ShouldFlush(now time.Duration) bool {
	return now-c.windowStart >= c.window
}

// Sample is the population state read at the end of a window.
type Sample struct {
	Stats      sim.Stats
	PreyHunger []float64
	PredHunger []float64
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(sample Sample) WindowStats {
	s := sample.Stats
	preyMean, preyStd, preyP10, preyP50, preyP90 := ComputeHungerStats(sample.PreyHunger)
	predMean, predStd, predP10, predP50, predP90 := ComputeHungerStats(sample.PredHunger)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   s.Tick,
		SimTimeSec:      s.SimTime.Seconds(),

		PreyCount: s.Prey,
		LivePrey:  s.LivePrey,
		PredCount: s.Predators,
		FoodCount: s.Food,

		PreyFindFood:    s.PreyByState[components.PreyFindFood],
		PreyFindPartner: s.PreyByState[components.PreyFindPartner],
		PreyNormal:      s.PreyByState[components.PreyNormal],
		PreyScary:       s.PreyByState[components.PreyScary],
		PreyBodies:      s.PreyByState[components.PreyDeadBody],
		PredFindFood:    s.PredatorByState[components.PredatorFindFood],
		PredFindPartner: s.PredatorByState[components.PredatorFindPartner],
		PredNormal:      s.PredatorByState[components.PredatorNormal],

		PreyBirths:  c.preyBirths,
		PredBirths:  c.predBirths,
		PreyDeaths:  c.preyDeaths,
		PredDeaths:  c.predDeaths,
		PreyStarved: c.preyStarved,
		PreyKilled:  c.preyKilled,
		Rotted:      c.rotted,
		Kills:       c.kills,
		Bites:       c.bites,
		Mates:       c.mates,
		FoodEaten:   c.foodEaten,

		PreyHungerMean: preyMean,
		PreyHungerStd:  preyStd,
		PreyHungerP10:  preyP10,
		PreyHungerP50:  preyP50,
		PreyHungerP90:  preyP90,

		PredHungerMean: predMean,
		PredHungerStd:  predStd,
		PredHungerP10:  predP10,
		PredHungerP50:  predP50,
		PredHungerP90:  predP90,

		PreyLifespan: c.preyLifespan.mean(),
		PredLifespan: c.predLifespan.mean(),
	}

	// Reset for next window
	*c = Collector{
		window:          c.window,
		windowStart:     s.SimTime,
		windowStartTick: s.Tick,
	}

	return stats
}

// Window returns the simulated duration of one window.
func (c *Collector) Window() time.Duration {
	return c.window
}
