package sim

import (
	"log/slog"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/meadow/components"
	"github.com/pthm-cable/meadow/geom"
)

// AgentView is a read-only copy of one agent.
type AgentView struct {
	Entity    ecs.Entity
	ID        uint32
	Kind      components.Kind
	Pos       geom.Vec2
	Target    geom.Vec2
	HasTarget bool
	Heading   float64
	Speed     float64

	Hunger    float64
	Health    float64
	Integrity float64
	Eating    bool

	PreyState     components.PreyState
	PredatorState components.PredatorState

	ReproductionReady bool
	Generation        int32
	BirthTick         int32
}

// FoodView is a read-only copy of one food item.
type FoodView struct {
	Entity ecs.Entity
	Pos    geom.Vec2
	Stock  float64
}

// Prey returns views of every prey in population order.
func (w *World) Prey() []AgentView {
	out := make([]AgentView, 0, len(w.prey))
	for _, e := range w.prey {
		pos, mot, phys, life, id, tag := w.preyMapper.Get(e)
		v := agentView(e, components.KindPrey, pos, mot, phys, life, id)
		v.PreyState = tag.State
		out = append(out, v)
	}
	return out
}

// Predators returns views of every predator in population order.
func (w *World) Predators() []AgentView {
	out := make([]AgentView, 0, len(w.predators))
	for _, e := range w.predators {
		pos, mot, phys, life, id, tag := w.predMapper.Get(e)
		v := agentView(e, components.KindPredator, pos, mot, phys, life, id)
		v.PredatorState = tag.State
		out = append(out, v)
	}
	return out
}

// Food returns views of every food item in population order.
func (w *World) Food() []FoodView {
	out := make([]FoodView, 0, len(w.food))
	for _, e := range w.food {
		pos, food := w.foodMapper.Get(e)
		out = append(out, FoodView{Entity: e, Pos: pos.Vec2, Stock: food.Stock})
	}
	return out
}

func agentView(
	e ecs.Entity,
	kind components.Kind,
	pos *components.Position,
	mot *components.Motion,
	phys *components.Physiology,
	life *components.Lifecycle,
	id *components.Identity,
) AgentView {
	return AgentView{
		Entity:            e,
		ID:                id.ID,
		Kind:              kind,
		Pos:               pos.Vec2,
		Target:            mot.Target,
		HasTarget:         mot.HasTarget,
		Heading:           mot.Heading,
		Speed:             mot.Speed,
		Hunger:            phys.Hunger,
		Health:            phys.Health,
		Integrity:         life.Integrity,
		Eating:            phys.Eating,
		ReproductionReady: life.Reproduction.IsElapsed(),
		Generation:        id.Generation,
		BirthTick:         id.BirthTick,
	}
}

// Stats is a point-in-time summary of the populations.
type Stats struct {
	Tick      int32
	SimTime   time.Duration
	Prey      int
	Predators int
	Food      int

	PreyByState     [components.NumPreyStates]int
	PredatorByState [components.NumPredatorStates]int

	// Live prey excludes bodies.
	LivePrey int

	Counters Counters
}

// Stats counts the populations by state.
func (w *World) Stats() Stats {
	s := Stats{
		Tick:      w.tick,
		SimTime:   w.clock.Now(),
		Prey:      len(w.prey),
		Predators: len(w.predators),
		Food:      len(w.food),
		Counters:  w.counters,
	}

	q := w.preyFilter.Query()
	for q.Next() {
		tag, _ := q.Get()
		s.PreyByState[tag.State]++
		if tag.State.Alive() {
			s.LivePrey++
		}
	}

	pq := w.predFilter.Query()
	for pq.Next() {
		tag, _ := pq.Get()
		s.PredatorByState[tag.State]++
	}
	return s
}

// LogValue implements slog.LogValuer.
func (s Stats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("tick", int(s.Tick)),
		slog.Float64("sim_time", s.SimTime.Seconds()),
		slog.Int("prey", s.Prey),
		slog.Int("live_prey", s.LivePrey),
		slog.Int("predators", s.Predators),
		slog.Int("food", s.Food),
	}
	for i, n := range s.PreyByState {
		attrs = append(attrs, slog.Int("prey_"+components.PreyState(i).String(), n))
	}
	for i, n := range s.PredatorByState {
		attrs = append(attrs, slog.Int("pred_"+components.PredatorState(i).String(), n))
	}
	attrs = append(attrs,
		slog.Int("births", s.Counters.PreyBirths+s.Counters.PredatorBirths),
		slog.Int("kills", s.Counters.Kills),
		slog.Int("rotted", s.Counters.Rotted),
	)
	return slog.GroupValue(attrs...)
}

// Hungers returns the hunger of every live prey and every predator, in
// archetype order.
func (w *World) Hungers() (prey, predators []float64) {
	q := w.preyFilter.Query()
	for q.Next() {
		tag, phys := q.Get()
		if tag.State.Alive() {
			prey = append(prey, phys.Hunger)
		}
	}
	pq := w.predFilter.Query()
	for pq.Next() {
		_, phys := pq.Get()
		predators = append(predators, phys.Hunger)
	}
	return prey, predators
}
