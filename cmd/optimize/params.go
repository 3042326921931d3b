// Package main provides CMA-ES optimization for meadow simulation parameters.
package main

import (
	"fmt"

	"github.com/pthm-cable/meadow/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value

	// field returns the config value this parameter controls.
	field func(*config.Config) *float64
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
// Threshold ranges meet at a single value so partner <= eat always holds.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Prey metabolism
			{Name: "prey_hunger_rate", Path: "prey.hunger_rate", Min: 0.5, Max: 5.0, Default: 2.0,
				field: func(c *config.Config) *float64 { return &c.Prey.HungerRate }},
			{Name: "prey_eat_rate", Path: "prey.eat_rate", Min: 5, Max: 60, Default: 30,
				field: func(c *config.Config) *float64 { return &c.Prey.EatRate }},
			{Name: "prey_partner_threshold", Path: "prey.partner_threshold", Min: 10, Max: 45, Default: 30,
				field: func(c *config.Config) *float64 { return &c.Prey.PartnerThreshold }},
			{Name: "prey_eat_threshold", Path: "prey.eat_threshold", Min: 45, Max: 90, Default: 50,
				field: func(c *config.Config) *float64 { return &c.Prey.EatThreshold }},
			{Name: "prey_cooldown", Path: "prey.reproduction_cooldown", Min: 4, Max: 40, Default: 12,
				field: func(c *config.Config) *float64 { return &c.Prey.ReproductionCooldown }},
			// Prey escape
			{Name: "prey_speed_scary", Path: "prey.speed_scary", Min: 40, Max: 100, Default: 70,
				field: func(c *config.Config) *float64 { return &c.Prey.SpeedScary }},
			{Name: "prey_scary_factor", Path: "prey.scary_factor", Min: 0.2, Max: 1.0, Default: 0.5,
				field: func(c *config.Config) *float64 { return &c.Prey.ScaryFactor }},
			// Predator metabolism
			{Name: "pred_hunger_rate", Path: "predator.hunger_rate", Min: 0.5, Max: 5.0, Default: 2.5,
				field: func(c *config.Config) *float64 { return &c.Predator.HungerRate }},
			{Name: "pred_eat_rate", Path: "predator.eat_rate", Min: 5, Max: 60, Default: 25,
				field: func(c *config.Config) *float64 { return &c.Predator.EatRate }},
			{Name: "pred_partner_threshold", Path: "predator.partner_threshold", Min: 10, Max: 40, Default: 25,
				field: func(c *config.Config) *float64 { return &c.Predator.PartnerThreshold }},
			{Name: "pred_eat_threshold", Path: "predator.eat_threshold", Min: 40, Max: 90, Default: 40,
				field: func(c *config.Config) *float64 { return &c.Predator.EatThreshold }},
			{Name: "pred_cooldown", Path: "predator.reproduction_cooldown", Min: 8, Max: 60, Default: 25,
				field: func(c *config.Config) *float64 { return &c.Predator.ReproductionCooldown }},
			// Hunting
			{Name: "pred_bite_damage", Path: "predator.bite_damage", Min: 20, Max: 200, Default: 60,
				field: func(c *config.Config) *float64 { return &c.Predator.BiteDamage }},
			{Name: "pred_speed_find_food", Path: "predator.speed_find_food", Min: 35, Max: 90, Default: 55,
				field: func(c *config.Config) *float64 { return &c.Predator.SpeedFindFood }},
			// Food supply
			{Name: "food_stock", Path: "food.stock", Min: 20, Max: 200, Default: 60,
				field: func(c *config.Config) *float64 { return &c.Food.Stock }},
			{Name: "food_regrow_interval", Path: "food.regrow_interval", Min: 0.5, Max: 10, Default: 2,
				field: func(c *config.Config) *float64 { return &c.Food.RegrowInterval }},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg and refreshes its
// derived values.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) error {
	for i, v := range pv.Clamp(values) {
		*pv.Specs[i].field(cfg) = v
	}
	if err := cfg.Recompute(); err != nil {
		return fmt.Errorf("applying parameters: %w", err)
	}
	return nil
}

// ExtractFromConfig reads parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = *spec.field(cfg)
	}
	return v
}
