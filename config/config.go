// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Arena      ArenaConfig      `yaml:"arena"`
	Clock      ClockConfig      `yaml:"clock"`
	Population PopulationConfig `yaml:"population"`
	Food       FoodConfig       `yaml:"food"`
	Prey       PreyConfig       `yaml:"prey"`
	Predator   PredatorConfig   `yaml:"predator"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Bookmarks  BookmarksConfig  `yaml:"bookmarks"`
	Feed       FeedConfig       `yaml:"feed"`
	Archive    ArchiveConfig    `yaml:"archive"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings for the windowed viewer.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// ArenaConfig holds the simulation bounds. Positions are clamped into
// [0, width] x [0, height].
type ArenaConfig struct {
	Width    float64 `yaml:"width"`
	Height   float64 `yaml:"height"`
	Boundary string  `yaml:"boundary"` // only "clamp" is supported
}

// ClockConfig holds time scaling parameters.
type ClockConfig struct {
	TimeFactor float64 `yaml:"time_factor"` // simulated seconds per real second
	TickRate   float64 `yaml:"tick_rate"`   // fixed real ticks per second in headless mode
}

// PopulationConfig holds initial counts and caps.
type PopulationConfig struct {
	Prey         int `yaml:"prey"`
	Predators    int `yaml:"predators"`
	Food         int `yaml:"food"`
	MaxPrey      int `yaml:"max_prey"`
	MaxPredators int `yaml:"max_predators"`
	MaxFood      int `yaml:"max_food"`
}

// FoodConfig controls food consumption and regrowth.
type FoodConfig struct {
	Depletes       bool    `yaml:"depletes"`        // eating drains stock and removes empty items
	Stock          float64 `yaml:"stock"`           // hunger units one item provides when depleting
	RegrowInterval float64 `yaml:"regrow_interval"` // seconds between regrowth pulses (0 = off)
	RegrowCount    int     `yaml:"regrow_count"`    // items added per pulse
}

// AgentConfig holds parameters shared by both agent kinds.
type AgentConfig struct {
	PerceptionRadius     float64 `yaml:"perception_radius"`
	ArrivalRadius        float64 `yaml:"arrival_radius"`
	HungerRate           float64 `yaml:"hunger_rate"`      // hunger per simulated second
	EatRate              float64 `yaml:"eat_rate"`         // hunger removed per simulated second while eating
	EatThreshold         float64 `yaml:"eat_threshold"`    // start looking for food
	PartnerThreshold     float64 `yaml:"partner_threshold"` // may look for a partner below this
	DieThreshold         float64 `yaml:"die_threshold"`    // starve at or above this
	ReproductionCooldown float64 `yaml:"reproduction_cooldown"`
	CooldownJitter       float64 `yaml:"cooldown_jitter"` // random pre-elapsed cooldown at setup
	WanderSigma          float64 `yaml:"wander_sigma"`    // heading perturbation std dev (radians)
	SpeedNormal          float64 `yaml:"speed_normal"`
	SpeedFindFood        float64 `yaml:"speed_find_food"`
	SpeedFindPartner     float64 `yaml:"speed_find_partner"`
}

// PreyConfig holds prey-specific parameters.
type PreyConfig struct {
	AgentConfig   `yaml:",inline"`
	MaxHealth     float64 `yaml:"max_health"`
	SpeedScary    float64 `yaml:"speed_scary"`
	ScaryFactor   float64 `yaml:"scary_factor"`   // fraction of perception radius that triggers fleeing
	DecayTime     float64 `yaml:"decay_time"`     // seconds a body persists before rotting
	BodyIntegrity float64 `yaml:"body_integrity"` // bite damage a body absorbs before rotting
}

// PredatorConfig holds predator-specific parameters.
type PredatorConfig struct {
	AgentConfig   `yaml:",inline"`
	BiteDamage    float64 `yaml:"bite_damage"`    // damage per simulated second while feeding
	StarvingBoost float64 `yaml:"starving_boost"` // extra speed fraction at the die threshold
}

// TelemetryConfig holds telemetry and logging parameters.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window"` // simulated seconds per window
	BookmarkHistorySize int     `yaml:"bookmark_history_size"`
	PerfWindow          int     `yaml:"perf_window"` // ticks averaged by the perf collector
}

// BookmarksConfig holds bookmark detection thresholds.
type BookmarksConfig struct {
	PreyCrashDrop      float64 `yaml:"prey_crash_drop"`      // fraction drop from peak
	PredatorRecoveryX  float64 `yaml:"predator_recovery_x"`  // multiple of recent minimum
	StableWindows      int     `yaml:"stable_windows"`       // consecutive low-variance windows
	StableCVThreshold  float64 `yaml:"stable_cv_threshold"`  // coefficient of variation
}

// FeedConfig holds websocket feed parameters.
type FeedConfig struct {
	Interval int `yaml:"interval"` // ticks between broadcast frames
	Buffer   int `yaml:"buffer"`   // per-client send buffer
}

// ArchiveConfig holds the SQLite run archive location.
type ArchiveConfig struct {
	Path string `yaml:"path"` // empty disables the archive
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	ScreenW32 float32
	ScreenH32 float32

	TickDuration       time.Duration
	PreyCooldown       time.Duration
	PredatorCooldown   time.Duration
	PreyJitter         time.Duration
	PredatorJitter     time.Duration
	DecayDuration      time.Duration
	RegrowDuration     time.Duration
	ScaryRadius        float64
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns a fresh copy of the embedded defaults.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Clone returns a deep copy of the config.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	if c.Arena.Width <= 0 || c.Arena.Height <= 0 {
		return fmt.Errorf("%w: arena must have positive size, got %vx%v", ErrInvalid, c.Arena.Width, c.Arena.Height)
	}
	if c.Arena.Boundary != "" && c.Arena.Boundary != "clamp" {
		return fmt.Errorf("%w: unsupported arena boundary %q", ErrInvalid, c.Arena.Boundary)
	}
	if !(c.Clock.TimeFactor > 0) || math.IsInf(c.Clock.TimeFactor, 0) {
		return fmt.Errorf("%w: clock.time_factor must be positive", ErrInvalid)
	}
	if c.Clock.TickRate <= 0 {
		return fmt.Errorf("%w: clock.tick_rate must be positive", ErrInvalid)
	}
	if err := c.Prey.AgentConfig.validate("prey"); err != nil {
		return err
	}
	if err := c.Predator.AgentConfig.validate("predator"); err != nil {
		return err
	}
	if c.Prey.MaxHealth <= 0 {
		return fmt.Errorf("%w: prey.max_health must be positive", ErrInvalid)
	}
	if c.Prey.ScaryFactor < 0 || c.Prey.ScaryFactor > 1 {
		return fmt.Errorf("%w: prey.scary_factor must be in [0, 1]", ErrInvalid)
	}
	if c.Prey.DecayTime < 0 || c.Prey.BodyIntegrity <= 0 {
		return fmt.Errorf("%w: prey decay_time/body_integrity out of range", ErrInvalid)
	}
	if c.Predator.BiteDamage < 0 || c.Predator.StarvingBoost < 0 {
		return fmt.Errorf("%w: predator bite_damage/starving_boost must be non-negative", ErrInvalid)
	}
	if c.Food.Depletes && c.Food.Stock <= 0 {
		return fmt.Errorf("%w: food.stock must be positive when food depletes", ErrInvalid)
	}
	if c.Food.RegrowInterval < 0 || c.Food.RegrowCount < 0 {
		return fmt.Errorf("%w: food regrowth must be non-negative", ErrInvalid)
	}
	if c.Feed.Interval < 1 || c.Feed.Buffer < 1 {
		return fmt.Errorf("%w: feed interval and buffer must be at least 1", ErrInvalid)
	}
	return nil
}

func (a AgentConfig) validate(kind string) error {
	if a.PerceptionRadius <= 0 {
		return fmt.Errorf("%w: %s.perception_radius must be positive", ErrInvalid, kind)
	}
	if a.ArrivalRadius <= 0 {
		return fmt.Errorf("%w: %s.arrival_radius must be positive", ErrInvalid, kind)
	}
	if !(a.PartnerThreshold <= a.EatThreshold && a.EatThreshold < a.DieThreshold) {
		return fmt.Errorf("%w: %s thresholds must satisfy partner <= eat < die (%v, %v, %v)",
			ErrInvalid, kind, a.PartnerThreshold, a.EatThreshold, a.DieThreshold)
	}
	if a.HungerRate < 0 || a.EatRate <= 0 {
		return fmt.Errorf("%w: %s hunger_rate must be >= 0 and eat_rate > 0", ErrInvalid, kind)
	}
	if a.ReproductionCooldown < 0 || a.CooldownJitter < 0 {
		return fmt.Errorf("%w: %s cooldowns must be non-negative", ErrInvalid, kind)
	}
	if a.SpeedNormal < 0 || a.SpeedFindFood < 0 || a.SpeedFindPartner < 0 {
		return fmt.Errorf("%w: %s speeds must be non-negative", ErrInvalid, kind)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.ScreenW32 = float32(c.Screen.Width)
	c.Derived.ScreenH32 = float32(c.Screen.Height)

	c.Derived.TickDuration = Seconds(1 / c.Clock.TickRate)
	c.Derived.PreyCooldown = Seconds(c.Prey.ReproductionCooldown)
	c.Derived.PredatorCooldown = Seconds(c.Predator.ReproductionCooldown)
	c.Derived.PreyJitter = Seconds(c.Prey.CooldownJitter)
	c.Derived.PredatorJitter = Seconds(c.Predator.CooldownJitter)
	c.Derived.DecayDuration = Seconds(c.Prey.DecayTime)
	c.Derived.RegrowDuration = Seconds(c.Food.RegrowInterval)
	c.Derived.ScaryRadius = c.Prey.PerceptionRadius * c.Prey.ScaryFactor
}

// Recompute refreshes derived values after fields were changed in code.
func (c *Config) Recompute() error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.computeDerived()
	return nil
}

// Seconds converts float seconds to a Duration.
func Seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
