package telemetry

import (
	"testing"
	"time"

	"github.com/pthm-cable/meadow/components"
	"github.com/pthm-cable/meadow/sim"
)

func TestCollector_CountsEventsAndResets(t *testing.T) {
	c := NewCollector(10)

	events := []sim.Event{
		{Type: sim.EventBirth, Kind: components.KindPrey},
		{Type: sim.EventBirth, Kind: components.KindPrey},
		{Type: sim.EventBirth, Kind: components.KindPredator},
		{Type: sim.EventDeath, Kind: components.KindPrey, Cause: sim.CauseKilled, Age: 10},
		{Type: sim.EventDeath, Kind: components.KindPrey, Cause: sim.CauseStarved, Age: 30},
		{Type: sim.EventDeath, Kind: components.KindPredator, Cause: sim.CauseStarved, Age: 50},
		{Type: sim.EventKill, Kind: components.KindPredator},
		{Type: sim.EventBite, Kind: components.KindPredator},
		{Type: sim.EventBite, Kind: components.KindPredator},
		{Type: sim.EventRot, Kind: components.KindPrey},
		{Type: sim.EventMate, Kind: components.KindPrey},
		{Type: sim.EventForage, Kind: components.KindPrey, Amount: 2.5},
		{Type: sim.EventForage, Kind: components.KindPrey, Amount: 1.5},
	}
	for _, e := range events {
		c.Observe(e)
	}

	if c.ShouldFlush(9 * time.Second) {
		t.Error("window should not be complete at 9s")
	}
	if !c.ShouldFlush(10 * time.Second) {
		t.Error("window should be complete at 10s")
	}

	sample := Sample{
		Stats: sim.Stats{
			Tick:      600,
			SimTime:   10 * time.Second,
			Prey:      12,
			LivePrey:  11,
			Predators: 3,
			Food:      40,
		},
		PreyHunger: []float64{10, 20, 30},
		PredHunger: []float64{50},
	}
	sample.Stats.PreyByState[components.PreyNormal] = 11
	sample.Stats.PreyByState[components.PreyDeadBody] = 1

	s := c.Flush(sample)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"prey births", float64(s.PreyBirths), 2},
		{"pred births", float64(s.PredBirths), 1},
		{"prey deaths", float64(s.PreyDeaths), 2},
		{"prey killed", float64(s.PreyKilled), 1},
		{"prey starved", float64(s.PreyStarved), 1},
		{"pred deaths", float64(s.PredDeaths), 1},
		{"kills", float64(s.Kills), 1},
		{"bites", float64(s.Bites), 2},
		{"rotted", float64(s.Rotted), 1},
		{"mates", float64(s.Mates), 1},
		{"food eaten", s.FoodEaten, 4},
		{"prey lifespan", s.PreyLifespan, 20},
		{"pred lifespan", s.PredLifespan, 50},
		{"prey hunger mean", s.PreyHungerMean, 20},
		{"pred hunger mean", s.PredHungerMean, 50},
		{"prey normal", float64(s.PreyNormal), 11},
		{"prey bodies", float64(s.PreyBodies), 1},
		{"sim time", s.SimTimeSec, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %v, want %v", tt.got, tt.want)
			}
		})
	}
	if s.WindowStartTick != 0 || s.WindowEndTick != 600 {
		t.Errorf("window ticks = %d..%d, want 0..600", s.WindowStartTick, s.WindowEndTick)
	}

	// Next window starts clean at the flush point.
	if c.ShouldFlush(15 * time.Second) {
		t.Error("new window should not be complete 5s after flush")
	}
	next := c.Flush(Sample{Stats: sim.Stats{Tick: 1200, SimTime: 20 * time.Second}})
	if next.PreyBirths != 0 || next.FoodEaten != 0 || next.WindowStartTick != 600 {
		t.Errorf("counters not reset: %+v", next)
	}
}

func TestCollector_WithWorld(t *testing.T) {
	w := newWorld(t)
	c := NewCollector(1)
	w.SetObserver(c)

	if err := w.Setup(sim.Counts{Prey: 30, Predators: 3, Food: 40}); err != nil {
		t.Fatal(err)
	}
	for !c.ShouldFlush(w.SimTime()) {
		if err := w.Step(100 * time.Millisecond); err != nil {
			t.Fatal(err)
		}
	}
	prey, pred := w.Hungers()
	s := c.Flush(Sample{Stats: w.Stats(), PreyHunger: prey, PredHunger: pred})
	if s.PreyCount != w.PreyCount() || s.PredCount != w.PredatorCount() {
		t.Errorf("population mismatch: %+v", s)
	}
	if s.WindowEndTick != w.Tick() {
		t.Errorf("WindowEndTick = %d, want %d", s.WindowEndTick, w.Tick())
	}
}
