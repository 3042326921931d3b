// Package components defines ECS components for the simulation.
package components

import (
	"time"

	"github.com/pthm-cable/meadow/clock"
	"github.com/pthm-cable/meadow/geom"
)

// Kind distinguishes the two agent populations.
type Kind uint8

const (
	KindPrey Kind = iota
	KindPredator
	KindFood
)

// Position represents an entity's arena position.
type Position struct {
	geom.Vec2
}

// Motion holds the movement target and wander heading of a mobile agent.
type Motion struct {
	Target    geom.Vec2
	HasTarget bool    // false means a new target is needed
	Wandering bool    // target came from the wander sampler
	Heading   float64 // last wander angle, radians
	Speed     float64 // speed used on the last move, for display
}

// ClearTarget drops the current destination.
func (m *Motion) ClearTarget() {
	m.HasTarget = false
	m.Wandering = false
	m.Target = geom.Vec2{}
}

// SetTarget sets a destination chosen by perception.
func (m *Motion) SetTarget(t geom.Vec2) {
	m.Target = t
	m.HasTarget = true
	m.Wandering = false
}

// SetWander sets a wander destination and the heading that produced it.
func (m *Motion) SetWander(t geom.Vec2, heading float64) {
	m.Target = t
	m.HasTarget = true
	m.Wandering = true
	m.Heading = heading
}

// Physiology holds hunger and health. Health is only meaningful for prey.
type Physiology struct {
	Hunger float64
	Health float64
	Eating bool
}

// Lifecycle holds the timers gating reproduction and body decay.
type Lifecycle struct {
	Reproduction clock.Timer
	Decay        clock.Timer
	Decaying     bool    // decay timer armed
	Integrity    float64 // remaining body integrity once decaying
}

// Prey tags a prey entity and carries its state machine.
type Prey struct {
	State PreyState
}

// Predator tags a predator entity and carries its state machine.
type Predator struct {
	State PredatorState
}

// Food marks a food item. Stock is only consumed when depletion is enabled.
type Food struct {
	Stock float64
}

// Identity holds bookkeeping that outlives a single tick.
type Identity struct {
	ID         uint32
	BirthTick  int32
	BornAt     time.Duration // simulated time of birth
	Generation int32
}
