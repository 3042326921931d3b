package systems

import (
	"github.com/pthm-cable/meadow/components"
	"github.com/pthm-cable/meadow/config"
)

// Thresholds are the hunger levels driving an agent's state machine.
type Thresholds struct {
	Partner float64 // may seek a partner below this
	Eat     float64 // seeks food at or above this
	Die     float64 // starves at or above this
}

// ThresholdsFrom extracts the thresholds from an agent config.
func ThresholdsFrom(c config.AgentConfig) Thresholds {
	return Thresholds{
		Partner: c.PartnerThreshold,
		Eat:     c.EatThreshold,
		Die:     c.DieThreshold,
	}
}

// PreyInputs is everything the prey state machine looks at.
type PreyInputs struct {
	Hunger            float64
	Health            float64
	Eating            bool
	ReproductionReady bool
	Decaying          bool // decay timer armed, i.e. already a body
	DecayElapsed      bool
	Integrity         float64
	ThreatNearby      bool // a predator inside the scary radius
}

// NextPreyState evaluates the prey transition rules in priority order.
// It depends only on its arguments.
func NextPreyState(in PreyInputs, th Thresholds) components.PreyState {
	switch {
	case in.Decaying && (in.DecayElapsed || in.Integrity <= 0):
		return components.PreyRottenBody
	case in.Decaying || in.Hunger >= th.Die || in.Health <= 0:
		return components.PreyDeadBody
	case in.ThreatNearby:
		return components.PreyScary
	case in.Hunger >= th.Eat || in.Eating:
		return components.PreyFindFood
	case in.Hunger < th.Partner && in.ReproductionReady && !in.Eating:
		return components.PreyFindPartner
	default:
		return components.PreyNormal
	}
}

// PredatorInputs is everything the predator state machine looks at.
type PredatorInputs struct {
	Hunger            float64
	Eating            bool
	ReproductionReady bool
}

// NextPredatorState evaluates the predator transition rules in priority order.
func NextPredatorState(in PredatorInputs, th Thresholds) components.PredatorState {
	switch {
	case in.Hunger >= th.Die:
		return components.PredatorDead
	case in.Hunger >= th.Eat || in.Eating:
		return components.PredatorFindFood
	case in.Hunger < th.Partner && in.ReproductionReady && !in.Eating:
		return components.PredatorFindPartner
	default:
		return components.PredatorNormal
	}
}

// CanReproduce is the mating gate shared by both kinds: cooldown over, not
// feeding, and currently looking for a partner.
func CanReproduce(ready, eating, seeking bool) bool {
	return ready && !eating && seeking
}

// PreySpeed returns the movement speed for a prey state.
func PreySpeed(s components.PreyState, c *config.PreyConfig) float64 {
	switch s {
	case components.PreyFindFood:
		return c.SpeedFindFood
	case components.PreyFindPartner:
		return c.SpeedFindPartner
	case components.PreyScary:
		return c.SpeedScary
	case components.PreyNormal:
		return c.SpeedNormal
	}
	return 0
}

// PredatorSpeed returns the movement speed for a predator. Hunting predators
// get faster the closer they are to starving.
func PredatorSpeed(s components.PredatorState, hunger float64, c *config.PredatorConfig) float64 {
	switch s {
	case components.PredatorFindFood:
		return c.SpeedFindFood * StarvingMultiplier(hunger, c.EatThreshold, c.DieThreshold, c.StarvingBoost)
	case components.PredatorFindPartner:
		return c.SpeedFindPartner
	case components.PredatorNormal:
		return c.SpeedNormal
	}
	return 0
}

// StarvingMultiplier is 1 below the eat threshold and rises linearly to
// 1+boost at the die threshold.
func StarvingMultiplier(hunger, eat, die, boost float64) float64 {
	if hunger <= eat || die <= eat {
		return 1
	}
	return 1 + boost*clamp01((hunger-eat)/(die-eat))
}

// ArrivalRadius is the distance at which a target counts as reached: the
// configured minimum or one tick of travel, whichever is larger.
func ArrivalRadius(minRadius, speed, dtSec float64) float64 {
	return max(minRadius, speed*dtSec)
}
