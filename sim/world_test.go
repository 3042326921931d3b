package sim

import (
	"errors"
	"math"
	"slices"
	"testing"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/meadow/clock"
	"github.com/pthm-cable/meadow/components"
	"github.com/pthm-cable/meadow/config"
	"github.com/pthm-cable/meadow/geom"
)

const tick = 100 * time.Millisecond

// newTestWorld builds an empty world with food regrowth and depletion off.
func newTestWorld(t *testing.T, mutate func(*config.Config)) *World {
	t.Helper()
	cfg := config.Default()
	cfg.Food.RegrowInterval = 0
	cfg.Food.Depletes = false
	if mutate != nil {
		mutate(cfg)
	}
	if err := cfg.Recompute(); err != nil {
		t.Fatalf("config: %v", err)
	}
	w, err := New(cfg, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return w
}

func mustSpawn(t *testing.T, w *World, s Spawn) ecs.Entity {
	t.Helper()
	e, err := w.Spawn(s)
	if err != nil {
		t.Fatalf("Spawn(%+v): %v", s, err)
	}
	return e
}

func mustStep(t *testing.T, w *World, dt time.Duration) {
	t.Helper()
	if err := w.Step(dt); err != nil {
		t.Fatalf("Step: %v", err)
	}
}

func preyByID(t *testing.T, w *World, id uint32) AgentView {
	t.Helper()
	for _, v := range w.Prey() {
		if v.ID == id {
			return v
		}
	}
	t.Fatalf("prey %d not found", id)
	return AgentView{}
}

// ---------- construction and insertion ----------

func TestNew_RejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Prey.EatThreshold = cfg.Prey.DieThreshold + 1

	_, err := New(cfg, 1)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if !errors.Is(err, config.ErrInvalid) {
		t.Errorf("expected wrapped config.ErrInvalid, got %v", err)
	}

	if _, err := New(nil, 1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("nil config: expected ErrInvalidArgument, got %v", err)
	}
}

func TestSetup_Counts(t *testing.T) {
	w := newTestWorld(t, nil)
	if err := w.Setup(Counts{Prey: 10, Predators: 3, Food: 7}); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if w.PreyCount() != 10 || w.PredatorCount() != 3 || w.FoodCount() != 7 {
		t.Errorf("counts = %d/%d/%d, want 10/3/7", w.PreyCount(), w.PredatorCount(), w.FoodCount())
	}
	for _, v := range w.Prey() {
		if !w.Arena().Contains(v.Pos) {
			t.Errorf("prey %d spawned outside arena at %v", v.ID, v.Pos)
		}
	}

	if err := w.Setup(Counts{Prey: -1}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("negative count: expected ErrInvalidArgument, got %v", err)
	}
}

func TestSpawn_Invalid(t *testing.T) {
	w := newTestWorld(t, nil)

	tests := []struct {
		name string
		s    Spawn
	}{
		{"outside arena", Spawn{Kind: components.KindPrey, Pos: geom.V(-1, 10)}},
		{"far outside", Spawn{Kind: components.KindPredator, Pos: geom.V(10, 1e6)}},
		{"negative hunger", Spawn{Kind: components.KindPrey, Pos: geom.V(10, 10), Hunger: -1}},
		{"unknown kind", Spawn{Kind: components.Kind(42), Pos: geom.V(10, 10)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := w.Spawn(tt.s); !errors.Is(err, ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
	if w.PreyCount()+w.PredatorCount()+w.FoodCount() != 0 {
		t.Errorf("rejected spawns must not insert anything")
	}
}

func TestSpawn_InitialState(t *testing.T) {
	w := newTestWorld(t, nil)
	mustSpawn(t, w, Spawn{Kind: components.KindPrey, Pos: geom.V(10, 10), Hunger: 60})
	mustSpawn(t, w, Spawn{Kind: components.KindPrey, Pos: geom.V(20, 10), ReproductionReady: true})
	mustSpawn(t, w, Spawn{Kind: components.KindPredator, Pos: geom.V(30, 10), Hunger: 45})

	prey := w.Prey()
	if prey[0].PreyState != components.PreyFindFood {
		t.Errorf("hungry prey state = %v, want FindFood", prey[0].PreyState)
	}
	if prey[1].PreyState != components.PreyFindPartner {
		t.Errorf("ready prey state = %v, want FindPartner", prey[1].PreyState)
	}
	if got := w.Predators()[0].PredatorState; got != components.PredatorFindFood {
		t.Errorf("hungry predator state = %v, want FindFood", got)
	}
	if prey[0].ID == 0 || prey[0].ID == prey[1].ID {
		t.Errorf("ids must be unique and non-zero, got %d and %d", prey[0].ID, prey[1].ID)
	}
}

// ---------- Step ----------

func TestStep_ZeroIsNoOp(t *testing.T) {
	w := newTestWorld(t, nil)
	if err := w.Setup(Counts{Prey: 20, Predators: 4, Food: 10}); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	mustStep(t, w, tick)

	prey, preds, food := w.Prey(), w.Predators(), w.Food()
	tickBefore, timeBefore := w.Tick(), w.SimTime()

	mustStep(t, w, 0)

	if w.Tick() != tickBefore || w.SimTime() != timeBefore {
		t.Errorf("tick/time changed on zero step")
	}
	if !slices.Equal(prey, w.Prey()) || !slices.Equal(preds, w.Predators()) || !slices.Equal(food, w.Food()) {
		t.Errorf("state changed on zero step")
	}
}

func TestStep_NegativeDelta(t *testing.T) {
	w := newTestWorld(t, nil)
	err := w.Step(-tick)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if !errors.Is(err, clock.ErrNegativeDuration) {
		t.Errorf("expected wrapped clock.ErrNegativeDuration, got %v", err)
	}
	if w.Tick() != 0 {
		t.Errorf("tick advanced on error")
	}
}

func TestStep_PreyReachesFoodAndEats(t *testing.T) {
	w := newTestWorld(t, nil)
	eat := w.Config().Prey.EatThreshold
	mustSpawn(t, w, Spawn{Kind: components.KindPrey, Pos: geom.V(0, 0), Hunger: eat})
	food := geom.V(10, 0)
	mustSpawn(t, w, Spawn{Kind: components.KindFood, Pos: food})

	lastDist := w.Prey()[0].Pos.Dist(food)
	lastHunger := w.Prey()[0].Hunger
	started := false

	for i := 0; i < 40; i++ {
		mustStep(t, w, tick)
		v := w.Prey()[0]

		if !started {
			d := v.Pos.Dist(food)
			if d > lastDist {
				t.Fatalf("tick %d: distance to food grew from %v to %v", i, lastDist, d)
			}
			lastDist = d
			if v.Hunger < lastHunger {
				started = true
			}
		} else if lastHunger > 0 && !(v.Hunger < lastHunger) {
			t.Fatalf("tick %d: hunger did not decrease while eating (%v -> %v)", i, lastHunger, v.Hunger)
		}
		if v.Hunger < 0 {
			t.Fatalf("tick %d: negative hunger %v", i, v.Hunger)
		}
		lastHunger = v.Hunger
		if started && v.Hunger == 0 {
			break
		}
	}

	if !started {
		t.Fatal("prey never started eating")
	}
	if lastHunger != 0 {
		t.Errorf("hunger = %v after eating, want 0", lastHunger)
	}
	if w.Counters().FoodEaten <= 0 {
		t.Errorf("FoodEaten counter not updated")
	}
}

func TestStep_FoodDepletes(t *testing.T) {
	w := newTestWorld(t, func(c *config.Config) {
		c.Food.Depletes = true
		c.Food.Stock = 1
	})
	mustSpawn(t, w, Spawn{Kind: components.KindFood, Pos: geom.V(50, 50)})
	mustSpawn(t, w, Spawn{Kind: components.KindPrey, Pos: geom.V(50, 50), Hunger: 60})

	mustStep(t, w, tick)

	if w.FoodCount() != 0 {
		t.Errorf("food count = %d, want 0", w.FoodCount())
	}
	if w.Counters().FoodDepleted != 1 {
		t.Errorf("FoodDepleted = %d, want 1", w.Counters().FoodDepleted)
	}
	// 60 + 2*0.1 hunger gained, then a bite capped at the stock of 1
	if got := w.Prey()[0].Hunger; got < 59.1 || got > 59.3 {
		t.Errorf("hunger = %v, want about 59.2", got)
	}
}

func TestStep_FoodRegrowsUpToCap(t *testing.T) {
	w := newTestWorld(t, func(c *config.Config) {
		c.Food.RegrowInterval = 1
		c.Food.RegrowCount = 3
		c.Population.MaxFood = 4
	})

	mustStep(t, w, time.Second)
	if w.FoodCount() != 3 {
		t.Errorf("after first pulse food = %d, want 3", w.FoodCount())
	}
	mustStep(t, w, time.Second)
	if w.FoodCount() != 4 {
		t.Errorf("after second pulse food = %d, want 4", w.FoodCount())
	}
}

func TestStep_MatingProducesOneOffspring(t *testing.T) {
	w := newTestWorld(t, nil)
	a := geom.V(100, 100)
	b := geom.V(102, 100)
	mustSpawn(t, w, Spawn{Kind: components.KindPrey, Pos: a, ReproductionReady: true})
	mustSpawn(t, w, Spawn{Kind: components.KindPrey, Pos: b, ReproductionReady: true})

	var mates int
	w.SetObserver(ObserverFunc(func(e Event) {
		if e.Type == EventMate {
			mates++
		}
	}))

	mustStep(t, w, tick)

	if w.PreyCount() != 3 {
		t.Fatalf("prey count = %d, want 3", w.PreyCount())
	}
	if mates != 1 {
		t.Errorf("mate events = %d, want 1", mates)
	}

	prey := w.Prey()
	for _, parent := range prey[:2] {
		if parent.ReproductionReady {
			t.Errorf("parent %d cooldown was not restarted", parent.ID)
		}
	}
	child := prey[2]
	if want := geom.V(101, 100); child.Pos != want {
		t.Errorf("offspring at %v, want midpoint %v", child.Pos, want)
	}
	if child.Hunger != 0 || child.Generation != 1 {
		t.Errorf("offspring hunger=%v gen=%d, want 0 and 1", child.Hunger, child.Generation)
	}
	if w.Counters().PreyBirths != 1 {
		t.Errorf("PreyBirths = %d, want 1", w.Counters().PreyBirths)
	}
}

func TestStep_MatingRespectsCap(t *testing.T) {
	w := newTestWorld(t, func(c *config.Config) { c.Population.MaxPrey = 2 })
	mustSpawn(t, w, Spawn{Kind: components.KindPrey, Pos: geom.V(100, 100), ReproductionReady: true})
	mustSpawn(t, w, Spawn{Kind: components.KindPrey, Pos: geom.V(102, 100), ReproductionReady: true})

	mustStep(t, w, tick)

	if w.PreyCount() != 2 {
		t.Errorf("prey count = %d, want 2", w.PreyCount())
	}
	for _, v := range w.Prey() {
		if !v.ReproductionReady {
			t.Errorf("prey %d cooldown restarted by a failed attempt", v.ID)
		}
	}
}

func TestStep_PredatorStarves(t *testing.T) {
	w := newTestWorld(t, nil)
	die := w.Config().Predator.DieThreshold
	mustSpawn(t, w, Spawn{Kind: components.KindPredator, Pos: geom.V(300, 300), Hunger: die})

	var deaths []Event
	w.SetObserver(ObserverFunc(func(e Event) {
		if e.Type == EventDeath {
			deaths = append(deaths, e)
		}
	}))

	mustStep(t, w, tick)

	if w.PredatorCount() != 0 {
		t.Errorf("starving predator still present")
	}
	if len(deaths) != 1 || deaths[0].Cause != CauseStarved || deaths[0].Kind != components.KindPredator {
		t.Errorf("death events = %+v", deaths)
	}
	if w.Counters().PredatorDeaths != 1 {
		t.Errorf("PredatorDeaths = %d, want 1", w.Counters().PredatorDeaths)
	}
}

func TestStep_PreyFleesPredator(t *testing.T) {
	w := newTestWorld(t, nil)
	mustSpawn(t, w, Spawn{Kind: components.KindPrey, Pos: geom.V(500, 400)})
	mustSpawn(t, w, Spawn{Kind: components.KindPredator, Pos: geom.V(520, 400)})

	mustStep(t, w, tick)

	v := w.Prey()[0]
	if v.PreyState != components.PreyScary {
		t.Fatalf("prey state = %v, want Scary", v.PreyState)
	}
	if v.Pos.X >= 500 {
		t.Errorf("prey moved toward the threat: x = %v", v.Pos.X)
	}
}

func TestStep_PredatorPrefersLivePrey(t *testing.T) {
	w := newTestWorld(t, nil)
	die := w.Config().Prey.DieThreshold
	mustSpawn(t, w, Spawn{Kind: components.KindPrey, Pos: geom.V(510, 400), Hunger: die})
	live := mustSpawn(t, w, Spawn{Kind: components.KindPrey, Pos: geom.V(600, 400)})
	mustSpawn(t, w, Spawn{Kind: components.KindPredator, Pos: geom.V(500, 400), Hunger: 50})

	mustStep(t, w, tick)

	liveID := w.idMap.Get(live).ID
	target := preyByID(t, w, liveID).Pos
	pred := w.Predators()[0]
	if !pred.HasTarget || pred.Target != target {
		t.Errorf("predator target = %v (has=%v), want live prey at %v", pred.Target, pred.HasTarget, target)
	}
}

func TestStep_KillDecayAndRot(t *testing.T) {
	w := newTestWorld(t, func(c *config.Config) {
		c.Prey.SpeedScary = 0
		c.Predator.BiteDamage = 2000
	})
	mustSpawn(t, w, Spawn{Kind: components.KindPrey, Pos: geom.V(502, 400)})
	mustSpawn(t, w, Spawn{Kind: components.KindPredator, Pos: geom.V(500, 400), Hunger: 50})

	var events []Event
	w.SetObserver(ObserverFunc(func(e Event) { events = append(events, e) }))

	// bite kills
	mustStep(t, w, tick)
	if w.Counters().Kills != 1 {
		t.Fatalf("Kills = %d, want 1", w.Counters().Kills)
	}
	if h := w.Prey()[0].Health; h != 0 {
		t.Errorf("health = %v after lethal bite, want 0", h)
	}

	// prey becomes a body, predator bites the body
	mustStep(t, w, tick)
	v := w.Prey()[0]
	if v.PreyState != components.PreyDeadBody {
		t.Fatalf("prey state = %v, want DeadBody", v.PreyState)
	}
	if v.Integrity != 0 {
		t.Errorf("integrity = %v, want 0 after bite", v.Integrity)
	}

	// body with no integrity left rots
	mustStep(t, w, tick)
	if w.PreyCount() != 0 {
		t.Errorf("rotten body still present")
	}
	if w.Counters().Rotted != 1 {
		t.Errorf("Rotted = %d, want 1", w.Counters().Rotted)
	}

	var death *Event
	for i := range events {
		if events[i].Type == EventDeath && events[i].Kind == components.KindPrey {
			death = &events[i]
		}
	}
	if death == nil || death.Cause != CauseKilled {
		t.Errorf("expected prey death caused by kill, got %+v", death)
	}
}

func TestStep_BodyRotsAfterDecayTime(t *testing.T) {
	w := newTestWorld(t, func(c *config.Config) { c.Prey.DecayTime = 15 })
	die := w.Config().Prey.DieThreshold
	mustSpawn(t, w, Spawn{Kind: components.KindPrey, Pos: geom.V(50, 50), Hunger: die})

	// spawning starved arms the decay timer
	for i := 0; i < 14; i++ {
		mustStep(t, w, time.Second)
	}
	if w.PreyCount() != 1 || w.Prey()[0].PreyState != components.PreyDeadBody {
		t.Fatalf("body should still be present before decay elapses")
	}
	mustStep(t, w, time.Second)
	if w.PreyCount() != 0 {
		t.Errorf("body not removed after decay time")
	}
	if c := w.Counters(); c.PreyDeaths != 1 || c.Rotted != 1 {
		t.Errorf("counters = %+v", c)
	}
}

func TestSpawn_StarvedPreyIsArmedBody(t *testing.T) {
	w := newTestWorld(t, nil)
	die := w.Config().Prey.DieThreshold

	var deaths []Event
	w.SetObserver(ObserverFunc(func(e Event) {
		if e.Type == EventDeath {
			deaths = append(deaths, e)
		}
	}))

	mustSpawn(t, w, Spawn{Kind: components.KindPrey, Pos: geom.V(50, 50), Hunger: die + 5})

	v := w.Prey()[0]
	if v.PreyState != components.PreyDeadBody {
		t.Fatalf("state = %v, want DeadBody", v.PreyState)
	}
	if v.Integrity != w.Config().Prey.BodyIntegrity {
		t.Errorf("integrity = %v, want %v", v.Integrity, w.Config().Prey.BodyIntegrity)
	}
	if c := w.Counters(); c.PreyDeaths != 1 {
		t.Errorf("PreyDeaths = %d, want 1", c.PreyDeaths)
	}
	if len(deaths) != 1 || deaths[0].Cause != CauseStarved || deaths[0].Kind != components.KindPrey {
		t.Errorf("death events = %+v", deaths)
	}

	// The body is not killed a second time.
	mustStep(t, w, tick)
	if c := w.Counters(); c.PreyDeaths != 1 {
		t.Errorf("PreyDeaths after step = %d, want 1", c.PreyDeaths)
	}
}

func TestStep_PredatorsShareEmptyBody(t *testing.T) {
	w := newTestWorld(t, func(c *config.Config) {
		c.Predator.BiteDamage = 100000
	})
	cfg := w.Config().Predator
	body := mustSpawn(t, w, Spawn{Kind: components.KindPrey, Pos: geom.V(500, 400), Hunger: w.Config().Prey.DieThreshold})
	mustSpawn(t, w, Spawn{Kind: components.KindPredator, Pos: geom.V(500, 400), Hunger: 80})
	mustSpawn(t, w, Spawn{Kind: components.KindPredator, Pos: geom.V(500, 400), Hunger: 80})

	var bites []Event
	w.SetObserver(ObserverFunc(func(e Event) {
		if e.Type == EventBite {
			bites = append(bites, e)
		}
	}))

	mustStep(t, w, tick)

	if len(bites) != 1 {
		t.Fatalf("bites = %d, want 1", len(bites))
	}
	if bites[0].TargetID != w.idMap.Get(body).ID {
		t.Errorf("bite target = %d, want the body", bites[0].TargetID)
	}

	secs := tick.Seconds()
	fed := 80 + cfg.HungerRate*secs - cfg.EatRate*secs
	hungry := 80 + cfg.HungerRate*secs

	var got []float64
	for _, v := range w.Predators() {
		got = append(got, v.Hunger)
	}
	slices.Sort(got)
	want := []float64{fed, hungry}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("predator hungers = %v, want %v", got, want)
			break
		}
	}
	for _, v := range w.Predators() {
		if v.Hunger == hungry && v.Eating {
			t.Errorf("predator %d marked eating with nothing to eat", v.ID)
		}
	}
}

func TestDamage(t *testing.T) {
	w := newTestWorld(t, nil)
	prey := mustSpawn(t, w, Spawn{Kind: components.KindPrey, Pos: geom.V(50, 50)})
	food := mustSpawn(t, w, Spawn{Kind: components.KindFood, Pos: geom.V(60, 50)})

	if err := w.Damage(prey, 40); err != nil {
		t.Fatalf("Damage: %v", err)
	}
	if h := w.Prey()[0].Health; h != 60 {
		t.Errorf("health = %v, want 60", h)
	}
	if err := w.Damage(prey, -1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("negative damage: expected ErrInvalidArgument, got %v", err)
	}
	if err := w.Damage(food, 1); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("damage to food: expected ErrInvalidArgument, got %v", err)
	}

	if err := w.Damage(prey, 1000); err != nil {
		t.Fatalf("Damage: %v", err)
	}
	if h := w.Prey()[0].Health; h != 0 {
		t.Errorf("health = %v, want clamped to 0", h)
	}
	if w.Counters().Kills != 0 {
		t.Errorf("external damage must not count as a kill")
	}

	mustStep(t, w, tick)
	if s := w.Prey()[0].PreyState; s != components.PreyDeadBody {
		t.Errorf("state = %v, want DeadBody", s)
	}
}

// ---------- whole-run properties ----------

func TestStep_Invariants(t *testing.T) {
	w := newTestWorld(t, func(c *config.Config) {
		c.Food.Depletes = true
		c.Food.RegrowInterval = 2
		c.Food.RegrowCount = 4
	})
	if err := w.Setup(Counts{Prey: 60, Predators: 6, Food: 80}); err != nil {
		t.Fatalf("Setup: %v", err)
	}

	// Health only ever falls, and only for prey bitten that tick.
	bitten := make(map[uint32]bool)
	w.SetObserver(ObserverFunc(func(e Event) {
		if e.Type == EventBite {
			bitten[e.TargetID] = true
		}
	}))
	health := make(map[uint32]float64)

	arena := w.Arena()
	for i := 0; i < 600; i++ {
		clear(bitten)
		mustStep(t, w, tick)
		for _, v := range w.Prey() {
			prev, ok := health[v.ID]
			if !ok {
				continue
			}
			if v.Health > prev {
				t.Fatalf("tick %d: prey %d health rose %v -> %v", i, v.ID, prev, v.Health)
			}
			if v.Health < prev && !bitten[v.ID] {
				t.Fatalf("tick %d: prey %d health fell %v -> %v without a bite", i, v.ID, prev, v.Health)
			}
		}
		clear(health)
		for _, v := range w.Prey() {
			health[v.ID] = v.Health
		}
		for _, v := range append(w.Prey(), w.Predators()...) {
			if v.Hunger < 0 {
				t.Fatalf("tick %d: agent %d hunger %v", i, v.ID, v.Hunger)
			}
			if v.Health < 0 {
				t.Fatalf("tick %d: agent %d health %v", i, v.ID, v.Health)
			}
			if !arena.Contains(v.Pos) {
				t.Fatalf("tick %d: agent %d outside arena at %v", i, v.ID, v.Pos)
			}
		}
		for _, v := range w.Predators() {
			if v.PredatorState == components.PredatorDead {
				t.Fatalf("tick %d: dead predator %d left in population", i, v.ID)
			}
		}
		for _, v := range w.Prey() {
			if v.PreyState == components.PreyRottenBody {
				t.Fatalf("tick %d: rotten prey %d left in population", i, v.ID)
			}
		}
	}
}

func TestStep_Deterministic(t *testing.T) {
	run := func() ([]AgentView, []AgentView, Counters) {
		w := newTestWorld(t, nil)
		if err := w.Setup(Counts{Prey: 40, Predators: 5, Food: 50}); err != nil {
			t.Fatalf("Setup: %v", err)
		}
		for i := 0; i < 300; i++ {
			mustStep(t, w, tick)
		}
		return w.Prey(), w.Predators(), w.Counters()
	}

	p1, d1, c1 := run()
	p2, d2, c2 := run()
	if !slices.Equal(p1, p2) || !slices.Equal(d1, d2) || c1 != c2 {
		t.Errorf("two runs with the same seed diverged")
	}
}

func TestStats(t *testing.T) {
	w := newTestWorld(t, nil)
	die := w.Config().Prey.DieThreshold
	mustSpawn(t, w, Spawn{Kind: components.KindPrey, Pos: geom.V(10, 10)})
	mustSpawn(t, w, Spawn{Kind: components.KindPrey, Pos: geom.V(20, 10), Hunger: die})
	mustSpawn(t, w, Spawn{Kind: components.KindPredator, Pos: geom.V(900, 700)})

	s := w.Stats()
	if s.Prey != 2 || s.LivePrey != 1 || s.Predators != 1 {
		t.Errorf("stats = %+v", s)
	}
	if s.PreyByState[components.PreyDeadBody] != 1 || s.PreyByState[components.PreyNormal] != 1 {
		t.Errorf("prey by state = %v", s.PreyByState)
	}

	prey, preds := w.Hungers()
	if len(prey) != 1 || len(preds) != 1 {
		t.Errorf("hungers = %v / %v, want one live prey and one predator", prey, preds)
	}
}
