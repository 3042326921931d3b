package systems

import (
	"testing"

	"github.com/pthm-cable/meadow/components"
	"github.com/pthm-cable/meadow/config"
)

var testThresholds = Thresholds{Partner: 30, Eat: 50, Die: 100}

func TestNextPreyStatePriority(t *testing.T) {
	healthy := PreyInputs{Hunger: 10, Health: 100, Integrity: 0}

	tests := []struct {
		name string
		in   PreyInputs
		want components.PreyState
	}{
		{"normal", healthy, components.PreyNormal},
		{"find partner", PreyInputs{Hunger: 10, Health: 100, ReproductionReady: true}, components.PreyFindPartner},
		{"partner blocked while eating", PreyInputs{Hunger: 10, Health: 100, ReproductionReady: true, Eating: true}, components.PreyFindFood},
		{"partner blocked by hunger", PreyInputs{Hunger: 40, Health: 100, ReproductionReady: true}, components.PreyNormal},
		{"find food", PreyInputs{Hunger: 50, Health: 100}, components.PreyFindFood},
		{"keeps eating below threshold", PreyInputs{Hunger: 5, Health: 100, Eating: true}, components.PreyFindFood},
		{"scary beats hunger", PreyInputs{Hunger: 80, Health: 100, ThreatNearby: true}, components.PreyScary},
		{"scary beats partner", PreyInputs{Hunger: 0, Health: 100, ReproductionReady: true, ThreatNearby: true}, components.PreyScary},
		{"starved", PreyInputs{Hunger: 100, Health: 100, ThreatNearby: true}, components.PreyDeadBody},
		{"killed", PreyInputs{Hunger: 0, Health: 0, ThreatNearby: true}, components.PreyDeadBody},
		{"body stays dead", PreyInputs{Hunger: 0, Health: 50, Decaying: true, Integrity: 10}, components.PreyDeadBody},
		{"rots on timer", PreyInputs{Hunger: 100, Decaying: true, DecayElapsed: true, Integrity: 10}, components.PreyRottenBody},
		{"rots when eaten", PreyInputs{Hunger: 100, Decaying: true, Integrity: 0}, components.PreyRottenBody},
		{"zero integrity before death is not rot", PreyInputs{Hunger: 10, Health: 100, Integrity: 0}, components.PreyNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextPreyState(tt.in, testThresholds)
			if got != tt.want {
				t.Errorf("NextPreyState() = %v, want %v", got, tt.want)
			}
			// Same inputs, same answer.
			for i := 0; i < 3; i++ {
				if again := NextPreyState(tt.in, testThresholds); again != got {
					t.Fatalf("evaluation %d gave %v, first gave %v", i, again, got)
				}
			}
		})
	}
}

func TestNextPredatorStatePriority(t *testing.T) {
	tests := []struct {
		name string
		in   PredatorInputs
		want components.PredatorState
	}{
		{"normal", PredatorInputs{Hunger: 35}, components.PredatorNormal},
		{"partner", PredatorInputs{Hunger: 0, ReproductionReady: true}, components.PredatorFindPartner},
		{"partner needs cooldown", PredatorInputs{Hunger: 0}, components.PredatorNormal},
		{"hungry", PredatorInputs{Hunger: 60, ReproductionReady: true}, components.PredatorFindFood},
		{"still eating", PredatorInputs{Hunger: 10, Eating: true, ReproductionReady: true}, components.PredatorFindFood},
		{"dead at threshold", PredatorInputs{Hunger: 100, Eating: true}, components.PredatorDead},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextPredatorState(tt.in, testThresholds); got != tt.want {
				t.Errorf("NextPredatorState() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanReproduce(t *testing.T) {
	if !CanReproduce(true, false, true) {
		t.Error("eligible agent rejected")
	}
	for _, c := range [][3]bool{{false, false, true}, {true, true, true}, {true, false, false}} {
		if CanReproduce(c[0], c[1], c[2]) {
			t.Errorf("CanReproduce(%v) = true", c)
		}
	}
}

func TestStarvingMultiplierMonotone(t *testing.T) {
	prev := 0.0
	for h := 0.0; h <= 120; h += 5 {
		m := StarvingMultiplier(h, 40, 100, 0.6)
		if m < prev {
			t.Fatalf("multiplier decreased at hunger %v: %v < %v", h, m, prev)
		}
		if h <= 40 && m != 1 {
			t.Errorf("multiplier below eat threshold = %v, want 1", m)
		}
		prev = m
	}
	if got := StarvingMultiplier(100, 40, 100, 0.6); got != 1.6 {
		t.Errorf("multiplier at die threshold = %v, want 1.6", got)
	}
	if got := StarvingMultiplier(500, 40, 100, 0.6); got != 1.6 {
		t.Errorf("multiplier beyond die threshold = %v, want capped 1.6", got)
	}
}

func TestSpeeds(t *testing.T) {
	cfg := config.Default()

	if got := PreySpeed(components.PreyDeadBody, &cfg.Prey); got != 0 {
		t.Errorf("dead prey speed = %v, want 0", got)
	}
	if got := PreySpeed(components.PreyScary, &cfg.Prey); got != cfg.Prey.SpeedScary {
		t.Errorf("scary speed = %v, want %v", got, cfg.Prey.SpeedScary)
	}

	calm := PredatorSpeed(components.PredatorFindFood, cfg.Predator.EatThreshold, &cfg.Predator)
	starving := PredatorSpeed(components.PredatorFindFood, cfg.Predator.DieThreshold-1, &cfg.Predator)
	if starving <= calm {
		t.Errorf("starving predator (%v) not faster than calm one (%v)", starving, calm)
	}
}

func TestArrivalRadius(t *testing.T) {
	if got := ArrivalRadius(4, 2, 0.5); got != 4 {
		t.Errorf("ArrivalRadius slow = %v, want 4", got)
	}
	if got := ArrivalRadius(4, 40, 0.5); got != 20 {
		t.Errorf("ArrivalRadius fast = %v, want 20", got)
	}
}
