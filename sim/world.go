// Package sim implements the predator/prey engine: it owns every agent and
// food item and advances them one tick at a time.
package sim

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"slices"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/meadow/clock"
	"github.com/pthm-cable/meadow/components"
	"github.com/pthm-cable/meadow/config"
	"github.com/pthm-cable/meadow/geom"
	"github.com/pthm-cable/meadow/systems"
)

// Counts is the number of each kind scattered by Setup.
type Counts struct {
	Prey      int
	Predators int
	Food      int
}

// Spawn describes one entry inserted into a population.
type Spawn struct {
	Kind    components.Kind
	Pos     geom.Vec2
	Hunger  float64
	Heading float64

	// ReproductionReady starts the agent with its cooldown already elapsed.
	ReproductionReady bool

	// Generation of the new agent; newborns are one past their parents.
	Generation int32
}

// Counters are cumulative totals since the world was created.
type Counters struct {
	PreyBirths     int
	PredatorBirths int
	PreyDeaths     int
	PredatorDeaths int
	Rotted         int
	Kills          int
	FoodSpawned    int
	FoodDepleted   int
	FoodEaten      float64
}

type birth struct {
	kind       components.Kind
	pos        geom.Vec2
	parents    [2]uint32
	generation int32
}

// World owns all agents and food. Entities live in an ark world; the ordered
// slices fix iteration order so runs are reproducible for a seed.
type World struct {
	cfg   *config.Config
	arena systems.Arena
	rng   *rand.Rand
	clock *clock.SimClock

	preyTh, predTh systems.Thresholds
	regrow         clock.Timer
	regrowOn       bool

	world *ecs.World

	preyMapper *ecs.Map6[
		components.Position,
		components.Motion,
		components.Physiology,
		components.Lifecycle,
		components.Identity,
		components.Prey,
	]
	predMapper *ecs.Map6[
		components.Position,
		components.Motion,
		components.Physiology,
		components.Lifecycle,
		components.Identity,
		components.Predator,
	]
	foodMapper *ecs.Map2[components.Position, components.Food]

	posMap  *ecs.Map1[components.Position]
	physMap *ecs.Map1[components.Physiology]
	lifeMap *ecs.Map1[components.Lifecycle]
	idMap   *ecs.Map1[components.Identity]
	preyMap *ecs.Map[components.Prey]
	predMap *ecs.Map[components.Predator]
	foodMap *ecs.Map[components.Food]

	preyFilter *ecs.Filter2[components.Prey, components.Physiology]
	predFilter *ecs.Filter2[components.Predator, components.Physiology]

	prey      []ecs.Entity
	predators []ecs.Entity
	food      []ecs.Entity
	births    []birth

	tick     int32
	lastDt   time.Duration
	nextID   uint32
	counters Counters

	observer Observer
	phases   PhaseTimer
}

// New creates an empty world. The config is validated and must not be
// modified afterwards.
func New(cfg *config.Config, seed int64) (*World, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", ErrInvalidArgument)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}
	clk, err := clock.NewSimClock(cfg.Clock.TimeFactor)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	world := ecs.NewWorld()

	w := &World{
		cfg:    cfg,
		arena:  systems.NewArena(cfg.Arena.Width, cfg.Arena.Height),
		rng:    rand.New(rand.NewSource(seed)),
		clock:  clk,
		preyTh: systems.ThresholdsFrom(cfg.Prey.AgentConfig),
		predTh: systems.ThresholdsFrom(cfg.Predator.AgentConfig),
		world:  world,
		nextID: 1,
		preyMapper: ecs.NewMap6[
			components.Position,
			components.Motion,
			components.Physiology,
			components.Lifecycle,
			components.Identity,
			components.Prey,
		](world),
		predMapper: ecs.NewMap6[
			components.Position,
			components.Motion,
			components.Physiology,
			components.Lifecycle,
			components.Identity,
			components.Predator,
		](world),
		foodMapper: ecs.NewMap2[components.Position, components.Food](world),
		posMap:     ecs.NewMap1[components.Position](world),
		physMap:    ecs.NewMap1[components.Physiology](world),
		lifeMap:    ecs.NewMap1[components.Lifecycle](world),
		idMap:      ecs.NewMap1[components.Identity](world),
		preyMap:    ecs.NewMap[components.Prey](world),
		predMap:    ecs.NewMap[components.Predator](world),
		foodMap:    ecs.NewMap[components.Food](world),
		preyFilter: ecs.NewFilter2[components.Prey, components.Physiology](world),
		predFilter: ecs.NewFilter2[components.Predator, components.Physiology](world),
	}

	if cfg.Food.RegrowInterval > 0 && cfg.Food.RegrowCount > 0 {
		w.regrow = clock.NewTimer(cfg.Derived.RegrowDuration, true)
		w.regrowOn = true
	}

	return w, nil
}

// SetObserver installs the receiver for lifecycle events. nil disables events.
func (w *World) SetObserver(o Observer) { w.observer = o }

// SetPhaseTimer installs a receiver for phase boundaries. nil disables it.
func (w *World) SetPhaseTimer(p PhaseTimer) { w.phases = p }

// Setup scatters the given counts uniformly at random inside the arena.
// Reproduction cooldowns are pre-advanced by a random jitter so the founders
// do not all mature on the same tick.
func (w *World) Setup(c Counts) error {
	if c.Prey < 0 || c.Predators < 0 || c.Food < 0 {
		return fmt.Errorf("%w: negative population count %+v", ErrInvalidArgument, c)
	}

	for i := 0; i < c.Food; i++ {
		w.spawnFood(w.arena.RandomPoint(w.rng))
	}
	for i := 0; i < c.Prey; i++ {
		e := w.spawnPrey(w.arena.RandomPoint(w.rng), w.rng.Float64()*2*math.Pi, 0, false, 0)
		w.jitterCooldown(e, w.cfg.Derived.PreyJitter)
	}
	for i := 0; i < c.Predators; i++ {
		e := w.spawnPredator(w.arena.RandomPoint(w.rng), w.rng.Float64()*2*math.Pi, 0, false, 0)
		w.jitterCooldown(e, w.cfg.Derived.PredatorJitter)
	}

	slog.Info("world setup",
		"prey", c.Prey,
		"predators", c.Predators,
		"food", c.Food,
		"arena_w", w.arena.Width(),
		"arena_h", w.arena.Height(),
	)
	return nil
}

func (w *World) jitterCooldown(e ecs.Entity, jitter time.Duration) {
	if jitter <= 0 {
		return
	}
	life := w.lifeMap.Get(e)
	life.Reproduction.Advance(time.Duration(w.rng.Int63n(int64(jitter))))
}

// Spawn inserts a single entry. This is the typed boundary for population
// insertion: unknown kinds, positions outside the arena and negative or
// non-finite hunger are rejected with ErrInvalidArgument. A prey spawned at or
// above its die threshold arrives as a body and counts as a starvation death.
func (w *World) Spawn(s Spawn) (ecs.Entity, error) {
	if !s.Pos.IsFinite() || !w.arena.Contains(s.Pos) {
		return ecs.Entity{}, fmt.Errorf("%w: position %v outside arena", ErrInvalidArgument, s.Pos)
	}
	if s.Hunger < 0 || math.IsNaN(s.Hunger) || math.IsInf(s.Hunger, 0) {
		return ecs.Entity{}, fmt.Errorf("%w: hunger %v", ErrInvalidArgument, s.Hunger)
	}

	switch s.Kind {
	case components.KindPrey:
		return w.spawnPrey(s.Pos, s.Heading, s.Hunger, s.ReproductionReady, s.Generation), nil
	case components.KindPredator:
		return w.spawnPredator(s.Pos, s.Heading, s.Hunger, s.ReproductionReady, s.Generation), nil
	case components.KindFood:
		return w.spawnFood(s.Pos), nil
	}
	return ecs.Entity{}, fmt.Errorf("%w: unknown kind %d", ErrInvalidArgument, s.Kind)
}

func (w *World) newIdentity(gen int32) components.Identity {
	id := components.Identity{
		ID:         w.nextID,
		BirthTick:  w.tick,
		BornAt:     w.clock.Now(),
		Generation: gen,
	}
	w.nextID++
	return id
}

func (w *World) spawnPrey(p geom.Vec2, heading, hunger float64, ready bool, gen int32) ecs.Entity {
	cfg := &w.cfg.Prey

	pos := components.Position{Vec2: p}
	mot := components.Motion{Heading: heading}
	phys := components.Physiology{Hunger: hunger, Health: cfg.MaxHealth}
	life := components.Lifecycle{Reproduction: clock.NewTimer(w.cfg.Derived.PreyCooldown, false)}
	if ready {
		life.Reproduction.Advance(w.cfg.Derived.PreyCooldown)
	}
	id := w.newIdentity(gen)
	tag := components.Prey{State: systems.NextPreyState(systems.PreyInputs{
		Hunger:            phys.Hunger,
		Health:            phys.Health,
		ReproductionReady: life.Reproduction.IsElapsed(),
	}, w.preyTh)}
	// Starved on arrival: counted as a death and left as an armed body.
	if tag.State == components.PreyDeadBody {
		w.killPrey(&id, &phys, &life)
	}

	e := w.preyMapper.NewEntity(&pos, &mot, &phys, &life, &id, &tag)
	w.prey = append(w.prey, e)
	return e
}

func (w *World) spawnPredator(p geom.Vec2, heading, hunger float64, ready bool, gen int32) ecs.Entity {
	pos := components.Position{Vec2: p}
	mot := components.Motion{Heading: heading}
	phys := components.Physiology{Hunger: hunger}
	life := components.Lifecycle{Reproduction: clock.NewTimer(w.cfg.Derived.PredatorCooldown, false)}
	if ready {
		life.Reproduction.Advance(w.cfg.Derived.PredatorCooldown)
	}
	id := w.newIdentity(gen)
	tag := components.Predator{State: systems.NextPredatorState(systems.PredatorInputs{
		Hunger:            phys.Hunger,
		ReproductionReady: life.Reproduction.IsElapsed(),
	}, w.predTh)}

	e := w.predMapper.NewEntity(&pos, &mot, &phys, &life, &id, &tag)
	w.predators = append(w.predators, e)
	return e
}

func (w *World) spawnFood(p geom.Vec2) ecs.Entity {
	pos := components.Position{Vec2: p}
	food := components.Food{Stock: w.cfg.Food.Stock}
	e := w.foodMapper.NewEntity(&pos, &food)
	w.food = append(w.food, e)
	w.counters.FoodSpawned++
	return e
}

// removeFrom deletes e from list preserving order. Entities are removed from
// the ark world only here, never while a query is open.
func (w *World) removeFrom(list []ecs.Entity, e ecs.Entity) []ecs.Entity {
	if i := slices.Index(list, e); i >= 0 {
		list = slices.Delete(list, i, i+1)
	}
	w.world.RemoveEntity(e)
	return list
}

// Damage applies an explicit hit to a prey: it lowers health while alive and
// body integrity once dead. It is the only way health decreases.
func (w *World) Damage(e ecs.Entity, amount float64) error {
	if amount < 0 || math.IsNaN(amount) {
		return fmt.Errorf("%w: damage %v", ErrInvalidArgument, amount)
	}
	if !w.world.Alive(e) || !w.preyMap.Has(e) {
		return fmt.Errorf("%w: entity is not a live prey", ErrInvalidArgument)
	}
	w.damagePrey(e, amount, 0)
	return nil
}

func (w *World) damagePrey(e ecs.Entity, amount float64, attacker uint32) {
	phys := w.physMap.Get(e)
	life := w.lifeMap.Get(e)
	if life.Decaying {
		life.Integrity = systems.Floor0(life.Integrity - amount)
		return
	}
	wasAlive := phys.Health > 0
	phys.Health = systems.Floor0(phys.Health - amount)
	if wasAlive && phys.Health <= 0 && attacker != 0 {
		w.counters.Kills++
		w.emit(Event{Type: EventKill, Kind: components.KindPredator, ID: attacker, TargetID: w.idMap.Get(e).ID})
	}
}

func (w *World) emit(ev Event) {
	if w.observer == nil {
		return
	}
	ev.Tick = w.tick
	w.observer.Observe(ev)
}

func (w *World) phase(name string) {
	if w.phases != nil {
		w.phases.StartPhase(name)
	}
}

// Tick returns the number of completed non-empty steps.
func (w *World) Tick() int32 { return w.tick }

// SimTime returns total simulated time.
func (w *World) SimTime() time.Duration { return w.clock.Now() }

// LastDelta returns the simulated delta of the most recent step.
func (w *World) LastDelta() time.Duration { return w.lastDt }

// Config returns the configuration the world was built with.
func (w *World) Config() *config.Config { return w.cfg }

// Arena returns the arena bounds.
func (w *World) Arena() systems.Arena { return w.arena }

// Counters returns the cumulative counters.
func (w *World) Counters() Counters { return w.counters }

func (w *World) PreyCount() int     { return len(w.prey) }
func (w *World) PredatorCount() int { return len(w.predators) }
func (w *World) FoodCount() int     { return len(w.food) }
