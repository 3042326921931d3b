package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/meadow/camera"
	"github.com/pthm-cable/meadow/config"
	"github.com/pthm-cable/meadow/feed"
	"github.com/pthm-cable/meadow/inspector"
	"github.com/pthm-cable/meadow/sim"
	"github.com/pthm-cable/meadow/telemetry"
)

// maxStepsPerUpdate bounds the speed control.
const maxStepsPerUpdate = 10

// Options configures game behavior.
type Options struct {
	Seed           int64
	LogStats       bool
	StatsWindowSec float64
	SnapshotDir    string
	OutputDir      string
	Headless       bool
	StepsPerUpdate int

	// Config overrides the global config. Used by the optimizer, which runs
	// several games with different parameters at once.
	Config *config.Config

	// StatsCallback is called with every flushed window.
	StatsCallback func(telemetry.WindowStats)

	// Feed receives a frame every feed.interval ticks when set.
	Feed *feed.Hub

	// Archive records windows and bookmarks when set.
	Archive *telemetry.Archive
}

// Game holds the simulation and everything observing it.
type Game struct {
	world   *sim.World
	cfg     *config.Config
	rngSeed int64

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	bookmarkDetector *telemetry.BookmarkDetector
	lifetimeTracker  *telemetry.LifetimeTracker
	outputManager    *telemetry.OutputManager
	archive          *telemetry.Archive
	feed             *feed.Hub
	statsCallback    func(telemetry.WindowStats)
	lastStats        telemetry.WindowStats
	logStats         bool
	snapshotDir      string

	// State
	headless       bool
	paused         bool
	stepsPerUpdate int
	err            error

	screenWidth, screenHeight float32
	camera                    *camera.Camera

	// UI
	inspector       *inspector.Inspector
	populationPanel *inspector.PopulationPanel
	showPopulation  bool
}

// NewGameWithOptions creates a game, seeds the world with the configured
// populations and opens the requested outputs.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	world, err := sim.New(cfg, opts.Seed)
	if err != nil {
		return nil, fmt.Errorf("creating world: %w", err)
	}

	statsWindow := opts.StatsWindowSec
	if statsWindow <= 0 {
		statsWindow = cfg.Telemetry.StatsWindow
	}

	steps := opts.StepsPerUpdate
	if steps < 1 {
		steps = 1
	}

	g := &Game{
		world:            world,
		cfg:              cfg,
		rngSeed:          opts.Seed,
		collector:        telemetry.NewCollector(statsWindow),
		perfCollector:    telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		bookmarkDetector: telemetry.NewBookmarkDetector(cfg.Telemetry.BookmarkHistorySize, cfg.Bookmarks),
		lifetimeTracker:  telemetry.NewLifetimeTracker(),
		archive:          opts.Archive,
		feed:             opts.Feed,
		statsCallback:    opts.StatsCallback,
		logStats:         opts.LogStats,
		snapshotDir:      opts.SnapshotDir,
		headless:         opts.Headless,
		stepsPerUpdate:   steps,
		screenWidth:      cfg.Derived.ScreenW32,
		screenHeight:     cfg.Derived.ScreenH32,
	}

	g.camera = camera.New(g.screenWidth, g.screenHeight, float32(cfg.Arena.Width), float32(cfg.Arena.Height))
	g.inspector = inspector.NewInspector(int32(cfg.Screen.Width), int32(cfg.Screen.Height))
	g.populationPanel = inspector.NewPopulationPanel(int32(cfg.Screen.Width), int32(cfg.Screen.Height))
	g.showPopulation = true

	world.SetObserver(sim.ObserverFunc(g.observe))
	world.SetPhaseTimer(g.perfCollector)

	if err := world.Setup(sim.Counts{
		Prey:      cfg.Population.Prey,
		Predators: cfg.Population.Predators,
		Food:      cfg.Population.Food,
	}); err != nil {
		return nil, fmt.Errorf("seeding world: %w", err)
	}
	for _, v := range world.Prey() {
		g.lifetimeTracker.Register(v)
	}
	for _, v := range world.Predators() {
		g.lifetimeTracker.Register(v)
	}

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			return nil, err
		}
		if err := om.WriteConfig(cfg); err != nil {
			om.Close()
			return nil, err
		}
		g.outputManager = om
	}

	slog.Info("setup",
		"seed", opts.Seed,
		"prey", world.PreyCount(),
		"predators", world.PredatorCount(),
		"food", world.FoodCount(),
		"arena_w", cfg.Arena.Width,
		"arena_h", cfg.Arena.Height,
	)

	return g, nil
}

// observe fans lifecycle events out to the window collector and the
// lifetime tracker.
func (g *Game) observe(e sim.Event) {
	g.collector.Observe(e)
	g.lifetimeTracker.Observe(e)

	switch e.Type {
	case sim.EventBirth:
		slog.Debug("birth", "tick", e.Tick, "kind", e.Kind.String(), "id", e.ID, "parent", e.TargetID)
	case sim.EventDeath:
		slog.Debug("death", "tick", e.Tick, "kind", e.Kind.String(), "id", e.ID, "cause", e.Cause.String(), "age", e.Age)
	}
}

// step advances the world by one fixed tick and runs the telemetry hooks.
func (g *Game) step() error {
	g.perfCollector.StartTick()
	if err := g.world.Step(g.cfg.Derived.TickDuration); err != nil {
		return err
	}
	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()
	g.publishFrame()
	g.perfCollector.EndTick()
	return nil
}

// UpdateHeadless runs StepsPerUpdate ticks without any rendering or input.
// It stops at the first step error, which is kept and returned by Err.
func (g *Game) UpdateHeadless() {
	if g.err != nil {
		return
	}
	for range g.stepsPerUpdate {
		if err := g.step(); err != nil {
			g.err = err
			slog.Error("step failed", "tick", g.world.Tick(), "error", err)
			return
		}
	}
}

// Update processes input and advances the simulation unless paused.
func (g *Game) Update() {
	g.handleInput()
	g.perfCollector.RecordFrame()

	if g.paused {
		return
	}
	g.UpdateHeadless()
}

// Err returns the error that stopped the simulation, if any.
func (g *Game) Err() error {
	return g.err
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int32 {
	return g.world.Tick()
}

// World exposes the simulation for read-only inspection.
func (g *Game) World() *sim.World {
	return g.world
}

// PreyCount returns the number of prey, bodies included.
func (g *Game) PreyCount() int {
	return g.world.PreyCount()
}

// LivePreyCount returns the number of prey that are not bodies.
func (g *Game) LivePreyCount() int {
	return g.world.Stats().LivePrey
}

// PredCount returns the number of predators.
func (g *Game) PredCount() int {
	return g.world.PredatorCount()
}

// LastStats returns the most recently flushed window.
func (g *Game) LastStats() telemetry.WindowStats {
	return g.lastStats
}

// Paused reports whether the simulation is paused.
func (g *Game) Paused() bool {
	return g.paused
}

// SetPaused pauses or resumes the simulation.
func (g *Game) SetPaused(p bool) {
	g.paused = p
}

// StepsPerUpdate returns the number of ticks run per update.
func (g *Game) StepsPerUpdate() int {
	return g.stepsPerUpdate
}

// SetStepsPerUpdate sets the number of ticks per update, clamped to [1, 10].
func (g *Game) SetStepsPerUpdate(n int) {
	g.stepsPerUpdate = min(max(n, 1), maxStepsPerUpdate)
}

// Unload closes output files.
func (g *Game) Unload() {
	if g.outputManager != nil {
		if err := g.outputManager.Close(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
		g.outputManager = nil
	}
}
