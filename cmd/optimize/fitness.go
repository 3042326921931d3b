package main

import (
	"math"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/meadow/config"
	"github.com/pthm-cable/meadow/game"
	"github.com/pthm-cable/meadow/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxSimTime  time.Duration
	seeds       []int64
	baseConfig  *config.Config
	statsWindow float64

	// Best run tracking
	mu          sync.Mutex
	bestFitness float64
	bestWindows []telemetry.WindowStats
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxSimTime time.Duration, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxSimTime:  maxSimTime,
		seeds:       seeds,
		baseConfig:  baseCfg,
		statsWindow: 10.0,
		bestFitness: math.Inf(1),
	}
}

// BestWindows returns the window stats of the best single run.
func (fe *FitnessEvaluator) BestWindows() []telemetry.WindowStats {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestWindows
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// Minimum viable population: if either species stays below this for
// extinctionGrace of simulated time, it counts as functionally extinct.
const (
	minViablePop    = 2
	extinctionGrace = 30 * time.Second
	warmup          = 5 * time.Second
)

// runResult holds the results from a single simulation run.
type runResult struct {
	survival    time.Duration           // simulated time before functional extinction
	windowStats []telemetry.WindowStats // collected via StatsCallback each window
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness float64
	quality float64
	windows []telemetry.WindowStats
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Invalid parameter combinations get +Inf.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.baseConfig.Clone()
	if err := fe.params.ApplyToConfig(cfg, x); err != nil {
		return math.Inf(1)
	}

	// Seeds run in parallel; each run owns its world and only reads cfg.
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			result := fe.runSimulation(cfg, s)
			quality := computeQuality(result.windowStats)
			results[idx] = seedResult{
				fitness: computeFitness(result.survival, quality),
				quality: quality,
				windows: result.windowStats,
			}
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalQuality float64
	best := results[0]
	for _, r := range results {
		totalFitness += r.fitness
		totalQuality += r.quality
		if r.fitness < best.fitness {
			best = r
		}
	}

	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
		fe.bestWindows = best.windows
	}
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return avgFitness
}

// runSimulation executes a single headless simulation run.
// Runs until functional extinction or maxSimTime, whichever comes first.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) *runResult {
	result := &runResult{}

	g, err := game.NewGameWithOptions(game.Options{
		Seed:           seed,
		Headless:       true,
		StatsWindowSec: fe.statsWindow,
		StepsPerUpdate: 1,
		Config:         cfg,
		StatsCallback: func(stats telemetry.WindowStats) {
			result.windowStats = append(result.windowStats, stats)
		},
	})
	if err != nil {
		return result
	}
	defer g.Unload()

	var preyBelowSince, predBelowSince time.Duration = -1, -1

	for {
		g.UpdateHeadless()
		now := g.World().SimTime()
		if g.Err() != nil || now >= fe.maxSimTime {
			result.survival = now
			return result
		}
		if now < warmup {
			continue
		}

		prey := g.LivePreyCount()
		pred := g.PredCount()

		// Hard extinction: either species completely gone
		if prey == 0 || pred == 0 {
			result.survival = now
			return result
		}

		// Functional extinction: species below minimum viable population too long
		preyBelowSince = belowSince(preyBelowSince, prey, now)
		predBelowSince = belowSince(predBelowSince, pred, now)
		if (preyBelowSince >= 0 && now-preyBelowSince >= extinctionGrace) ||
			(predBelowSince >= 0 && now-predBelowSince >= extinctionGrace) {
			result.survival = now
			return result
		}
	}
}

// belowSince tracks when a population first dropped below minViablePop.
// It returns -1 while the population is viable.
func belowSince(since time.Duration, pop int, now time.Duration) time.Duration {
	if pop >= minViablePop {
		return -1
	}
	if since < 0 {
		return now
	}
	return since
}

// computeFitness calculates the scalar fitness (lower = better).
// Survival dominates; quality adds up to 20% bonus to differentiate
// configs with similar survival.
func computeFitness(survival time.Duration, quality float64) float64 {
	return -(survival.Seconds() * (1.0 + 0.2*quality))
}

// Quality component weights.
const (
	qualityWeightRatio     = 0.35
	qualityWeightStability = 0.35
	qualityWeightHunting   = 0.30

	qualityWarmupWindows = 2 // skip first N windows (warmup)
	qualityMinPop        = 2 // exclude windows where either species < this
	targetRatio          = 10.0
)

// computeQuality computes ecosystem quality in [0, 1] from window stats.
func computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}

	var ratioSum, huntSum float64
	var ratioCount, huntCount int
	preyCounts := make([]float64, 0, len(windows))
	predCounts := make([]float64, 0, len(windows))

	for _, w := range windows[qualityWarmupWindows:] {
		if w.LivePrey < qualityMinPop || w.PredCount < qualityMinPop {
			continue
		}

		preyCounts = append(preyCounts, float64(w.LivePrey))
		predCounts = append(predCounts, float64(w.PredCount))

		// Population ratio score, log-normal around the target ratio
		logErr := math.Log(float64(w.LivePrey) / float64(w.PredCount) / targetRatio)
		ratioSum += math.Exp(-logErr * logErr)
		ratioCount++

		// Hunting activity: kills per predator per window, saturating
		if w.Bites > 0 {
			killsPerPred := float64(w.Kills) / float64(w.PredCount)
			huntSum += 1.0 - math.Exp(-killsPerPred)
			huntCount++
		}
	}

	if ratioCount == 0 {
		return 0
	}

	ratioScore := ratioSum / float64(ratioCount)

	stabilityScore := 0.0
	if len(preyCounts) >= 2 {
		cvPrey := cv(preyCounts)
		cvPred := cv(predCounts)
		stabilityScore = math.Exp(-(cvPrey*cvPrey + cvPred*cvPred))
	}

	huntScore := 0.0
	if huntCount > 0 {
		huntScore = huntSum / float64(huntCount)
	}

	quality := qualityWeightRatio*ratioScore +
		qualityWeightStability*stabilityScore +
		qualityWeightHunting*huntScore

	return min(max(quality, 0), 1)
}

// cv computes the coefficient of variation (std/mean) for a slice of values.
func cv(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}
