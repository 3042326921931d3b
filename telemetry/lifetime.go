package telemetry

import (
	"github.com/pthm-cable/meadow/components"
	"github.com/pthm-cable/meadow/sim"
)

// LifetimeStats tracks per-agent statistics over its lifetime.
type LifetimeStats struct {
	Kind       components.Kind
	BirthTick  int32
	Generation int32
	Parent     uint32 // first parent, 0 for founders

	Children  int
	Mates     int
	Bites     int     // predators
	Kills     int     // predators
	FoodEaten float64 // prey

	// Set when the agent dies; bodies stay tracked until they rot.
	Dead  bool
	Cause sim.DeathCause
	Age   float64
}

// LifetimeTracker manages per-agent lifetime statistics keyed by agent ID.
// It implements sim.Observer.
type LifetimeTracker struct {
	stats map[uint32]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[uint32]*LifetimeStats),
	}
}

// Register creates lifetime stats for an agent that was not born through a
// birth event, such as the founders placed by Setup.
func (lt *LifetimeTracker) Register(v sim.AgentView) {
	lt.stats[v.ID] = &LifetimeStats{
		Kind:       v.Kind,
		BirthTick:  v.BirthTick,
		Generation: v.Generation,
	}
}

// Observe updates the tracked stats from a lifecycle event.
func (lt *LifetimeTracker) Observe(e sim.Event) {
	switch e.Type {
	case sim.EventBirth:
		parent := lt.stats[e.TargetID]
		s := &LifetimeStats{Kind: e.Kind, BirthTick: e.Tick, Parent: e.TargetID}
		if parent != nil {
			parent.Children++
			s.Generation = parent.Generation + 1
		}
		lt.stats[e.ID] = s
	case sim.EventMate:
		if s := lt.stats[e.ID]; s != nil {
			s.Mates++
		}
		if s := lt.stats[e.TargetID]; s != nil {
			s.Mates++
		}
	case sim.EventBite:
		if s := lt.stats[e.ID]; s != nil {
			s.Bites++
		}
	case sim.EventKill:
		if s := lt.stats[e.ID]; s != nil {
			s.Kills++
		}
	case sim.EventForage:
		if s := lt.stats[e.ID]; s != nil {
			s.FoodEaten += e.Amount
		}
	case sim.EventDeath:
		if e.Kind == components.KindPredator {
			delete(lt.stats, e.ID)
			return
		}
		if s := lt.stats[e.ID]; s != nil {
			s.Dead = true
			s.Cause = e.Cause
			s.Age = e.Age
		}
	case sim.EventRot:
		delete(lt.stats, e.ID)
	}
}

// Get returns the lifetime stats for an agent, or nil if not found.
func (lt *LifetimeTracker) Get(id uint32) *LifetimeStats {
	return lt.stats[id]
}

// Count returns the number of tracked agents.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}

// MaxGeneration returns the highest generation among tracked agents of kind.
func (lt *LifetimeTracker) MaxGeneration(kind components.Kind) int32 {
	var best int32
	for _, s := range lt.stats {
		if s.Kind == kind && s.Generation > best {
			best = s.Generation
		}
	}
	return best
}
