package telemetry

import (
	"log/slog"
	"slices"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population counts at window end
	PreyCount int `csv:"prey"`
	LivePrey  int `csv:"live_prey"`
	PredCount int `csv:"pred"`
	FoodCount int `csv:"food"`

	// State breakdown at window end
	PreyFindFood    int `csv:"prey_find_food"`
	PreyFindPartner int `csv:"prey_find_partner"`
	PreyNormal      int `csv:"prey_normal"`
	PreyScary       int `csv:"prey_scary"`
	PreyBodies      int `csv:"prey_bodies"`
	PredFindFood    int `csv:"pred_find_food"`
	PredFindPartner int `csv:"pred_find_partner"`
	PredNormal      int `csv:"pred_normal"`

	// Events during window
	PreyBirths  int     `csv:"prey_births"`
	PredBirths  int     `csv:"pred_births"`
	PreyDeaths  int     `csv:"prey_deaths"`
	PredDeaths  int     `csv:"pred_deaths"`
	PreyStarved int     `csv:"prey_starved"`
	PreyKilled  int     `csv:"prey_killed"`
	Rotted      int     `csv:"rotted"`
	Kills       int     `csv:"kills"`
	Bites       int     `csv:"bites"`
	Mates       int     `csv:"mates"`
	FoodEaten   float64 `csv:"food_eaten"`

	// Hunger distribution (sampled at window end)
	PreyHungerMean float64 `csv:"prey_hunger_mean"`
	PreyHungerStd  float64 `csv:"prey_hunger_std"`
	PreyHungerP10  float64 `csv:"prey_hunger_p10"`
	PreyHungerP50  float64 `csv:"prey_hunger_p50"`
	PreyHungerP90  float64 `csv:"prey_hunger_p90"`

	PredHungerMean float64 `csv:"pred_hunger_mean"`
	PredHungerStd  float64 `csv:"pred_hunger_std"`
	PredHungerP10  float64 `csv:"pred_hunger_p10"`
	PredHungerP50  float64 `csv:"pred_hunger_p50"`
	PredHungerP90  float64 `csv:"pred_hunger_p90"`

	// Mean age at death of agents that died this window, simulated seconds
	PreyLifespan float64 `csv:"prey_lifespan"`
	PredLifespan float64 `csv:"pred_lifespan"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeHungerStats calculates mean, population std and percentiles.
func ComputeHungerStats(values []float64) (mean, std, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0, 0
	}

	mean, std = stat.PopMeanStdDev(values, nil)

	sorted := slices.Clone(values)
	slices.Sort(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("prey", s.PreyCount),
		slog.Int("live_prey", s.LivePrey),
		slog.Int("pred", s.PredCount),
		slog.Int("food", s.FoodCount),
		slog.Int("prey_births", s.PreyBirths),
		slog.Int("pred_births", s.PredBirths),
		slog.Int("prey_deaths", s.PreyDeaths),
		slog.Int("pred_deaths", s.PredDeaths),
		slog.Int("prey_killed", s.PreyKilled),
		slog.Int("rotted", s.Rotted),
		slog.Int("kills", s.Kills),
		slog.Int("bites", s.Bites),
		slog.Int("mates", s.Mates),
		slog.Float64("food_eaten", s.FoodEaten),
		slog.Float64("prey_hunger_mean", s.PreyHungerMean),
		slog.Float64("prey_hunger_std", s.PreyHungerStd),
		slog.Float64("pred_hunger_mean", s.PredHungerMean),
		slog.Float64("pred_hunger_std", s.PredHungerStd),
		slog.Float64("prey_lifespan", s.PreyLifespan),
		slog.Float64("pred_lifespan", s.PredLifespan),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
