package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/pthm-cable/meadow/config"
)

// ErrNoRun is returned when recording before StartRun.
var ErrNoRun = errors.New("archive: no run started")

// Archive persists runs and their telemetry windows to a SQLite database so
// separate runs can be compared after the fact.
type Archive struct {
	db    *sql.DB
	runID string
}

// OpenArchive opens or creates the database at path and ensures the schema.
func OpenArchive(ctx context.Context, path string) (*Archive, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating archive directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("pinging archive: %w", err)
	}
	if err := createArchiveSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating archive schema: %w", err)
	}
	return &Archive{db: db}, nil
}

func createArchiveSchema(ctx context.Context, db *sql.DB) error {
	schemas := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			started_at DATETIME NOT NULL,
			config TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS windows (
			run_id TEXT NOT NULL,
			window_end INTEGER NOT NULL,
			sim_time REAL NOT NULL,
			prey INTEGER NOT NULL,
			live_prey INTEGER NOT NULL,
			predators INTEGER NOT NULL,
			food INTEGER NOT NULL,
			prey_births INTEGER NOT NULL,
			pred_births INTEGER NOT NULL,
			prey_deaths INTEGER NOT NULL,
			pred_deaths INTEGER NOT NULL,
			kills INTEGER NOT NULL,
			rotted INTEGER NOT NULL,
			food_eaten REAL NOT NULL,
			prey_hunger_mean REAL NOT NULL,
			pred_hunger_mean REAL NOT NULL,
			PRIMARY KEY (run_id, window_end),
			FOREIGN KEY (run_id) REFERENCES runs(id)
		);`,
		`CREATE TABLE IF NOT EXISTS bookmarks (
			run_id TEXT NOT NULL,
			tick INTEGER NOT NULL,
			type TEXT NOT NULL,
			description TEXT NOT NULL,
			FOREIGN KEY (run_id) REFERENCES runs(id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_bookmarks_run_id ON bookmarks(run_id);`,
	}
	for _, query := range schemas {
		if _, err := db.ExecContext(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

// StartRun records a new run and makes it the target of later writes.
// It returns the generated run ID.
func (a *Archive) StartRun(ctx context.Context, seed int64, cfg *config.Config) (string, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshaling run config: %w", err)
	}

	id := uuid.NewString()
	_, err = a.db.ExecContext(ctx,
		`INSERT INTO runs (id, seed, started_at, config) VALUES (?, ?, ?, ?)`,
		id, seed, time.Now().UTC(), string(data))
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}
	a.runID = id
	return id, nil
}

// RunID returns the current run, or "" before StartRun.
func (a *Archive) RunID() string {
	return a.runID
}

// RecordWindow stores one telemetry window for the current run.
func (a *Archive) RecordWindow(ctx context.Context, s WindowStats) error {
	if a.runID == "" {
		return ErrNoRun
	}
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO windows (
			run_id, window_end, sim_time, prey, live_prey, predators, food,
			prey_births, pred_births, prey_deaths, pred_deaths, kills, rotted,
			food_eaten, prey_hunger_mean, pred_hunger_mean
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, window_end) DO NOTHING`,
		a.runID, s.WindowEndTick, s.SimTimeSec, s.PreyCount, s.LivePrey, s.PredCount, s.FoodCount,
		s.PreyBirths, s.PredBirths, s.PreyDeaths, s.PredDeaths, s.Kills, s.Rotted,
		s.FoodEaten, s.PreyHungerMean, s.PredHungerMean,
	)
	if err != nil {
		return fmt.Errorf("inserting window: %w", err)
	}
	return nil
}

// RecordBookmark stores a bookmark for the current run.
func (a *Archive) RecordBookmark(ctx context.Context, b Bookmark) error {
	if a.runID == "" {
		return ErrNoRun
	}
	_, err := a.db.ExecContext(ctx,
		`INSERT INTO bookmarks (run_id, tick, type, description) VALUES (?, ?, ?, ?)`,
		a.runID, b.Tick, string(b.Type), b.Description)
	if err != nil {
		return fmt.Errorf("inserting bookmark: %w", err)
	}
	return nil
}

// Windows loads the stored windows of a run in tick order. Only the archived
// columns are populated.
func (a *Archive) Windows(ctx context.Context, runID string) ([]WindowStats, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT window_end, sim_time, prey, live_prey, predators, food,
			prey_births, pred_births, prey_deaths, pred_deaths, kills, rotted,
			food_eaten, prey_hunger_mean, pred_hunger_mean
		FROM windows WHERE run_id = ? ORDER BY window_end`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying windows: %w", err)
	}
	defer rows.Close()

	var out []WindowStats
	for rows.Next() {
		var s WindowStats
		if err := rows.Scan(
			&s.WindowEndTick, &s.SimTimeSec, &s.PreyCount, &s.LivePrey, &s.PredCount, &s.FoodCount,
			&s.PreyBirths, &s.PredBirths, &s.PreyDeaths, &s.PredDeaths, &s.Kills, &s.Rotted,
			&s.FoodEaten, &s.PreyHungerMean, &s.PredHungerMean,
		); err != nil {
			return nil, fmt.Errorf("scanning window: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// RunSeed returns the seed a run was started with.
func (a *Archive) RunSeed(ctx context.Context, runID string) (int64, bool, error) {
	var seed int64
	err := a.db.QueryRowContext(ctx, `SELECT seed FROM runs WHERE id = ?`, runID).Scan(&seed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return seed, true, nil
}

// Close closes the database.
func (a *Archive) Close() error {
	if a == nil || a.db == nil {
		return nil
	}
	return a.db.Close()
}
