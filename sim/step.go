package sim

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/meadow/clock"
	"github.com/pthm-cable/meadow/components"
	"github.com/pthm-cable/meadow/config"
	"github.com/pthm-cable/meadow/geom"
	"github.com/pthm-cable/meadow/systems"
)

// Step advances the world by one tick. realDt is scaled by the clock's time
// factor; a zero delta leaves every piece of state untouched.
//
// Prey are processed first, then predators against the updated prey. Both
// passes iterate a snapshot of their population while spatial queries read
// the live lists, so later agents see earlier agents' moves this tick.
// Newborns join at the end of the tick.
func (w *World) Step(realDt time.Duration) error {
	if err := w.clock.Update(realDt); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	dt := w.clock.DeltaTime()
	if dt <= 0 {
		return nil
	}
	w.lastDt = dt

	w.phase(PhasePrey)
	w.updatePrey(dt)

	w.phase(PhasePredators)
	w.updatePredators(dt)

	w.phase(PhaseFood)
	w.updateFood(dt)

	w.phase(PhaseBirths)
	w.flushBirths()

	w.tick++
	return nil
}

func (w *World) updatePrey(dt time.Duration) {
	snapshot := slices.Clone(w.prey)
	for _, e := range snapshot {
		if !w.world.Alive(e) {
			continue
		}
		w.updateOnePrey(e, dt)
	}
}

func (w *World) updateOnePrey(e ecs.Entity, dt time.Duration) {
	cfg := &w.cfg.Prey
	secs := dt.Seconds()
	pos, mot, phys, life, id, tag := w.preyMapper.Get(e)

	if life.Decaying {
		life.Decay.Update(dt)
	} else {
		if !phys.Eating {
			phys.Hunger += cfg.HungerRate * secs
		}
		life.Reproduction.Update(dt)
	}
	mustFinite(phys.Hunger, "hunger", id.ID)

	var threats []geom.Vec2
	if !life.Decaying && phys.Hunger < w.preyTh.Die && phys.Health > 0 {
		threats = w.threatsNear(pos.Vec2)
	}

	next := systems.NextPreyState(systems.PreyInputs{
		Hunger:            phys.Hunger,
		Health:            phys.Health,
		Eating:            phys.Eating,
		ReproductionReady: life.Reproduction.IsElapsed(),
		Decaying:          life.Decaying,
		DecayElapsed:      life.Decay.IsElapsed(),
		Integrity:         life.Integrity,
		ThreatNearby:      len(threats) > 0,
	}, w.preyTh)
	if next != tag.State {
		mot.ClearTarget()
		tag.State = next
	}

	switch next {
	case components.PreyRottenBody:
		w.counters.Rotted++
		w.emit(Event{Type: EventRot, Kind: components.KindPrey, ID: id.ID, Age: w.age(id)})
		w.prey = w.removeFrom(w.prey, e)
		return
	case components.PreyDeadBody:
		if !life.Decaying {
			w.killPrey(id, phys, life)
		}
		return
	case components.PreyScary:
		w.flee(pos, mot, threats, cfg.PerceptionRadius, cfg.WanderSigma)
	case components.PreyFindFood:
		w.forage(pos, mot, phys, id, secs)
	case components.PreyFindPartner:
		w.court(e, components.KindPrey, w.prey, w.preyEligible, pos, mot, life, id, &cfg.AgentConfig, secs)
	case components.PreyNormal:
		w.wander(pos, mot, cfg.PerceptionRadius, cfg.WanderSigma)
	}
	if next != components.PreyFindFood {
		phys.Eating = false
	}

	w.move(pos, mot, systems.PreySpeed(next, cfg), secs)
}

// killPrey turns a prey into a body and arms its decay timer.
func (w *World) killPrey(id *components.Identity, phys *components.Physiology, life *components.Lifecycle) {
	cause := CauseStarved
	if phys.Health <= 0 {
		cause = CauseKilled
	}
	phys.Eating = false
	life.Decaying = true
	life.Decay = clock.NewTimer(w.cfg.Derived.DecayDuration, false)
	life.Integrity = w.cfg.Prey.BodyIntegrity

	w.counters.PreyDeaths++
	w.emit(Event{Type: EventDeath, Kind: components.KindPrey, ID: id.ID, Cause: cause, Age: w.age(id)})
}

func (w *World) threatsNear(p geom.Vec2) []geom.Vec2 {
	return systems.Within(p, w.cfg.Derived.ScaryRadius, len(w.predators), w.posOf(w.predators), nil)
}

func (w *World) flee(pos *components.Position, mot *components.Motion, threats []geom.Vec2, radius, sigma float64) {
	target, ok := systems.Escape(pos.Vec2, threats, radius)
	if !ok {
		w.wander(pos, mot, radius, sigma)
		return
	}
	target, _ = w.arena.Clamp(target)
	mot.SetTarget(target)
	if d := target.Sub(pos.Vec2); d.LenSq() > 0 {
		mot.Heading = d.Angle()
	}
}

// wander keeps an existing wander target, otherwise samples a new one.
func (w *World) wander(pos *components.Position, mot *components.Motion, radius, sigma float64) {
	if mot.HasTarget && mot.Wandering {
		return
	}
	target, heading := systems.Wander(w.rng, w.arena, pos.Vec2, mot.Heading, radius, sigma)
	mot.SetWander(target, heading)
}

func (w *World) forage(pos *components.Position, mot *components.Motion, phys *components.Physiology, id *components.Identity, secs float64) {
	cfg := &w.cfg.Prey

	idx, _, ok := systems.Nearest(pos.Vec2, cfg.PerceptionRadius, len(w.food), w.posOf(w.food), nil)
	if !ok {
		phys.Eating = false
		w.wander(pos, mot, cfg.PerceptionRadius, cfg.WanderSigma)
		return
	}

	f := w.food[idx]
	fpos := w.posMap.Get(f).Vec2
	mot.SetTarget(fpos)
	if pos.Dist(fpos) > systems.ArrivalRadius(cfg.ArrivalRadius, cfg.SpeedFindFood, secs) {
		phys.Eating = false
		return
	}

	bite := min(cfg.EatRate*secs, phys.Hunger)
	if w.cfg.Food.Depletes {
		item := w.foodMap.Get(f)
		bite = min(bite, item.Stock)
		item.Stock -= bite
		if item.Stock <= 0 {
			w.counters.FoodDepleted++
			w.food = w.removeFrom(w.food, f)
		}
	}
	phys.Hunger = systems.Floor0(phys.Hunger - bite)
	phys.Eating = phys.Hunger > 0

	w.counters.FoodEaten += bite
	w.emit(Event{Type: EventForage, Kind: components.KindPrey, ID: id.ID, Amount: bite})
}

// court moves toward the nearest eligible partner of the same kind and mates
// on arrival when both sides still pass the gate.
func (w *World) court(
	e ecs.Entity,
	kind components.Kind,
	pool []ecs.Entity,
	eligible func(ecs.Entity) bool,
	pos *components.Position,
	mot *components.Motion,
	life *components.Lifecycle,
	id *components.Identity,
	cfg *config.AgentConfig,
	secs float64,
) {
	idx, _, ok := systems.Nearest(pos.Vec2, cfg.PerceptionRadius, len(pool), w.posOf(pool), func(i int) bool {
		return pool[i] != e && eligible(pool[i])
	})
	if !ok {
		w.wander(pos, mot, cfg.PerceptionRadius, cfg.WanderSigma)
		return
	}

	mate := pool[idx]
	mpos := w.posMap.Get(mate).Vec2
	mot.SetTarget(mpos)
	if pos.Dist(mpos) > systems.ArrivalRadius(cfg.ArrivalRadius, cfg.SpeedFindPartner, secs) {
		return
	}
	if !eligible(e) || !eligible(mate) || !w.hasRoomFor(kind) {
		return
	}

	mateLife := w.lifeMap.Get(mate)
	mateID := w.idMap.Get(mate)
	life.Reproduction.Restart()
	mateLife.Reproduction.Restart()

	w.births = append(w.births, birth{
		kind:       kind,
		pos:        pos.Lerp(mpos, 0.5),
		parents:    [2]uint32{id.ID, mateID.ID},
		generation: max(id.Generation, mateID.Generation) + 1,
	})
	w.emit(Event{Type: EventMate, Kind: kind, ID: id.ID, TargetID: mateID.ID})
}

func (w *World) preyEligible(e ecs.Entity) bool {
	life := w.lifeMap.Get(e)
	return systems.CanReproduce(
		life.Reproduction.IsElapsed(),
		w.physMap.Get(e).Eating,
		w.preyMap.Get(e).State == components.PreyFindPartner,
	)
}

func (w *World) predatorEligible(e ecs.Entity) bool {
	life := w.lifeMap.Get(e)
	return systems.CanReproduce(
		life.Reproduction.IsElapsed(),
		w.physMap.Get(e).Eating,
		w.predMap.Get(e).State == components.PredatorFindPartner,
	)
}

// hasRoomFor reports whether another birth of kind fits under its cap,
// counting births already queued this tick.
func (w *World) hasRoomFor(kind components.Kind) bool {
	limit, n := w.cfg.Population.MaxPrey, len(w.prey)
	if kind == components.KindPredator {
		limit, n = w.cfg.Population.MaxPredators, len(w.predators)
	}
	if limit <= 0 {
		return true
	}
	for _, b := range w.births {
		if b.kind == kind {
			n++
		}
	}
	return n < limit
}

func (w *World) move(pos *components.Position, mot *components.Motion, speed, secs float64) {
	mot.Speed = speed
	if !mot.HasTarget || speed <= 0 {
		return
	}
	next, reached := systems.MoveToward(pos.Vec2, mot.Target, speed*secs)
	pos.Vec2, _ = w.arena.Clamp(next)
	if reached {
		mot.ClearTarget()
	}
}

func (w *World) updatePredators(dt time.Duration) {
	snapshot := slices.Clone(w.predators)
	for _, e := range snapshot {
		if !w.world.Alive(e) {
			continue
		}
		w.updateOnePredator(e, dt)
	}
}

func (w *World) updateOnePredator(e ecs.Entity, dt time.Duration) {
	cfg := &w.cfg.Predator
	secs := dt.Seconds()
	pos, mot, phys, life, id, tag := w.predMapper.Get(e)

	if !phys.Eating {
		phys.Hunger += cfg.HungerRate * secs
	}
	life.Reproduction.Update(dt)
	mustFinite(phys.Hunger, "hunger", id.ID)

	next := systems.NextPredatorState(systems.PredatorInputs{
		Hunger:            phys.Hunger,
		Eating:            phys.Eating,
		ReproductionReady: life.Reproduction.IsElapsed(),
	}, w.predTh)
	if next != tag.State {
		mot.ClearTarget()
		tag.State = next
	}

	switch next {
	case components.PredatorDead:
		w.counters.PredatorDeaths++
		w.emit(Event{Type: EventDeath, Kind: components.KindPredator, ID: id.ID, Cause: CauseStarved, Age: w.age(id)})
		w.predators = w.removeFrom(w.predators, e)
		return
	case components.PredatorFindFood:
		w.hunt(pos, mot, phys, id, secs)
	case components.PredatorFindPartner:
		w.court(e, components.KindPredator, w.predators, w.predatorEligible, pos, mot, life, id, &cfg.AgentConfig, secs)
	case components.PredatorNormal:
		w.wander(pos, mot, cfg.PerceptionRadius, cfg.WanderSigma)
	}
	if next != components.PredatorFindFood {
		phys.Eating = false
	}

	w.move(pos, mot, systems.PredatorSpeed(next, phys.Hunger, cfg), secs)
}

// hunt targets the nearest live prey in range, falling back to the nearest
// body only when no live prey is visible.
func (w *World) hunt(pos *components.Position, mot *components.Motion, phys *components.Physiology, id *components.Identity, secs float64) {
	cfg := &w.cfg.Predator
	pool := w.prey
	at := w.posOf(pool)

	idx, _, ok := systems.Nearest(pos.Vec2, cfg.PerceptionRadius, len(pool), at, func(i int) bool {
		return w.preyMap.Get(pool[i]).State.Alive()
	})
	if !ok {
		idx, _, ok = systems.Nearest(pos.Vec2, cfg.PerceptionRadius, len(pool), at, func(i int) bool {
			return w.preyMap.Get(pool[i]).State == components.PreyDeadBody
		})
	}
	if !ok {
		phys.Eating = false
		w.wander(pos, mot, cfg.PerceptionRadius, cfg.WanderSigma)
		return
	}

	target := pool[idx]
	tpos := w.posMap.Get(target).Vec2
	mot.SetTarget(tpos)
	speed := systems.PredatorSpeed(components.PredatorFindFood, phys.Hunger, cfg)
	if pos.Dist(tpos) > systems.ArrivalRadius(cfg.ArrivalRadius, speed, secs) {
		phys.Eating = false
		return
	}

	// Nothing left to eat once another predator has emptied the target.
	if !w.hasFlesh(target) {
		phys.Eating = false
		return
	}

	eaten := min(cfg.EatRate*secs, phys.Hunger)
	phys.Hunger = systems.Floor0(phys.Hunger - eaten)
	phys.Eating = phys.Hunger > 0

	damage := cfg.BiteDamage * secs
	w.emit(Event{Type: EventBite, Kind: components.KindPredator, ID: id.ID, TargetID: w.idMap.Get(target).ID, Amount: damage})
	w.damagePrey(target, damage, id.ID)
}

// hasFlesh reports whether a prey still has health, or integrity once it is
// a body.
func (w *World) hasFlesh(e ecs.Entity) bool {
	if life := w.lifeMap.Get(e); life.Decaying {
		return life.Integrity > 0
	}
	return w.physMap.Get(e).Health > 0
}

func (w *World) updateFood(dt time.Duration) {
	if !w.regrowOn || !w.regrow.Update(dt) {
		return
	}
	for i := 0; i < w.cfg.Food.RegrowCount; i++ {
		if limit := w.cfg.Population.MaxFood; limit > 0 && len(w.food) >= limit {
			break
		}
		w.spawnFood(w.arena.RandomPoint(w.rng))
	}
}

func (w *World) flushBirths() {
	for _, b := range w.births {
		heading := w.rng.Float64() * 2 * math.Pi
		var e ecs.Entity
		switch b.kind {
		case components.KindPrey:
			e = w.spawnPrey(b.pos, heading, 0, false, b.generation)
			w.counters.PreyBirths++
		case components.KindPredator:
			e = w.spawnPredator(b.pos, heading, 0, false, b.generation)
			w.counters.PredatorBirths++
		}
		w.emit(Event{Type: EventBirth, Kind: b.kind, ID: w.idMap.Get(e).ID, TargetID: b.parents[0]})
	}
	w.births = w.births[:0]
}

func (w *World) posOf(list []ecs.Entity) func(int) geom.Vec2 {
	return func(i int) geom.Vec2 { return w.posMap.Get(list[i]).Vec2 }
}

func (w *World) age(id *components.Identity) float64 {
	return (w.clock.Now() - id.BornAt).Seconds()
}
