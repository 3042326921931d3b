package sim

import "github.com/pthm-cable/meadow/components"

// EventType identifies lifecycle events emitted during Step.
type EventType uint8

const (
	EventBirth EventType = iota
	EventDeath
	EventRot
	EventKill
	EventBite
	EventForage
	EventMate
)

func (t EventType) String() string {
	switch t {
	case EventBirth:
		return "birth"
	case EventDeath:
		return "death"
	case EventRot:
		return "rot"
	case EventKill:
		return "kill"
	case EventBite:
		return "bite"
	case EventForage:
		return "forage"
	case EventMate:
		return "mate"
	}
	return "unknown"
}

// DeathCause says why an agent died.
type DeathCause uint8

const (
	CauseNone DeathCause = iota
	CauseStarved
	CauseKilled
)

func (c DeathCause) String() string {
	switch c {
	case CauseStarved:
		return "starved"
	case CauseKilled:
		return "killed"
	}
	return ""
}

// Event is a single lifecycle event.
type Event struct {
	Type EventType
	Tick int32
	Kind components.Kind
	ID   uint32

	// Optional fields depending on event type
	TargetID uint32     // prey bitten/killed, partner, or a newborn's first parent
	Amount   float64    // hunger eaten or damage dealt
	Cause    DeathCause // death events only
	Age      float64    // simulated seconds lived, death and rot events
}

// Observer receives events as they happen inside Step.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// Observe calls f(e).
func (f ObserverFunc) Observe(e Event) { f(e) }

// PhaseTimer is told when Step enters each phase.
type PhaseTimer interface {
	StartPhase(phase string)
}

// Phase names reported to a PhaseTimer.
const (
	PhasePrey      = "prey"
	PhasePredators = "predators"
	PhaseFood      = "food"
	PhaseBirths    = "births"
)
