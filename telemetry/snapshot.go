package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pthm-cable/meadow/components"
	"github.com/pthm-cable/meadow/sim"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 2

// Snapshot holds the observable simulation state at one tick.
type Snapshot struct {
	Version int   `json:"version"`
	RNGSeed int64 `json:"rng_seed"`

	ArenaWidth  float64 `json:"arena_width"`
	ArenaHeight float64 `json:"arena_height"`

	Tick       int32   `json:"tick"`
	SimTimeSec float64 `json:"sim_time_sec"`

	Entities []EntityState `json:"entities"`
	Food     []FoodState   `json:"food"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// EntityState holds one agent's state.
type EntityState struct {
	ID   uint32          `json:"id"`
	Kind components.Kind `json:"kind"`

	// Position and movement
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	TargetX   float64 `json:"target_x"`
	TargetY   float64 `json:"target_y"`
	HasTarget bool    `json:"has_target"`
	Heading   float64 `json:"heading"`

	// Physiology
	Hunger    float64 `json:"hunger"`
	Health    float64 `json:"health"`
	Integrity float64 `json:"integrity"`
	Eating    bool    `json:"eating"`
	State     string  `json:"state"`

	ReproductionReady bool  `json:"reproduction_ready"`
	Generation        int32 `json:"generation"`
	BirthTick         int32 `json:"birth_tick"`

	// Lifetime stats
	Lifetime *LifetimeStatsJSON `json:"lifetime,omitempty"`
}

// FoodState holds one food item.
type FoodState struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Stock float64 `json:"stock"`
}

// LifetimeStatsJSON is the JSON-serializable form of LifetimeStats.
type LifetimeStatsJSON struct {
	Parent    uint32  `json:"parent,omitempty"`
	Children  int     `json:"children"`
	Mates     int     `json:"mates"`
	Bites     int     `json:"bites"`
	Kills     int     `json:"kills"`
	FoodEaten float64 `json:"food_eaten"`
}

// ToJSON converts LifetimeStats to its JSON form.
func (ls *LifetimeStats) ToJSON() *LifetimeStatsJSON {
	if ls == nil {
		return nil
	}
	return &LifetimeStatsJSON{
		Parent:    ls.Parent,
		Children:  ls.Children,
		Mates:     ls.Mates,
		Bites:     ls.Bites,
		Kills:     ls.Kills,
		FoodEaten: ls.FoodEaten,
	}
}

// BuildSnapshot captures the world's current state. lt and bookmark may be nil.
func BuildSnapshot(w *sim.World, seed int64, lt *LifetimeTracker, bookmark *Bookmark) *Snapshot {
	arena := w.Arena()
	snap := &Snapshot{
		Version:     SnapshotVersion,
		RNGSeed:     seed,
		ArenaWidth:  arena.Width(),
		ArenaHeight: arena.Height(),
		Tick:        w.Tick(),
		SimTimeSec:  w.SimTime().Seconds(),
		Bookmark:    bookmark,
	}

	add := func(v sim.AgentView, state string) {
		es := EntityState{
			ID:                v.ID,
			Kind:              v.Kind,
			X:                 v.Pos.X,
			Y:                 v.Pos.Y,
			TargetX:           v.Target.X,
			TargetY:           v.Target.Y,
			HasTarget:         v.HasTarget,
			Heading:           v.Heading,
			Hunger:            v.Hunger,
			Health:            v.Health,
			Integrity:         v.Integrity,
			Eating:            v.Eating,
			State:             state,
			ReproductionReady: v.ReproductionReady,
			Generation:        v.Generation,
			BirthTick:         v.BirthTick,
		}
		if lt != nil {
			es.Lifetime = lt.Get(v.ID).ToJSON()
		}
		snap.Entities = append(snap.Entities, es)
	}
	for _, v := range w.Prey() {
		add(v, v.PreyState.String())
	}
	for _, v := range w.Predators() {
		add(v, v.PredatorState.String())
	}
	for _, f := range w.Food() {
		snap.Food = append(snap.Food, FoodState{X: f.Pos.X, Y: f.Pos.Y, Stock: f.Stock})
	}
	return snap
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	// Build filename
	name := fmt.Sprintf("snapshot_%d", snapshot.Tick)
	if snapshot.Bookmark != nil {
		// Sanitize bookmark type for filename
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_%d_%s", snapshot.Tick, sanitized)
	}
	name += ".json"

	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}

	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}

	return &snapshot, nil
}
