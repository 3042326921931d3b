package telemetry

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/meadow/config"
)

func TestArchive_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "runs", "archive.db")

	a, err := OpenArchive(ctx, path)
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	defer a.Close()

	if err := a.RecordWindow(ctx, WindowStats{}); !errors.Is(err, ErrNoRun) {
		t.Errorf("expected ErrNoRun before StartRun, got %v", err)
	}

	runID, err := a.StartRun(ctx, 99, config.Default())
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if runID == "" || a.RunID() != runID {
		t.Fatalf("run id = %q, RunID() = %q", runID, a.RunID())
	}

	windows := []WindowStats{
		{WindowEndTick: 600, SimTimeSec: 10, PreyCount: 50, LivePrey: 48, PredCount: 6, Kills: 2, FoodEaten: 12.5},
		{WindowEndTick: 1200, SimTimeSec: 20, PreyCount: 55, LivePrey: 55, PredCount: 7, PreyHungerMean: 31},
	}
	for _, w := range windows {
		if err := a.RecordWindow(ctx, w); err != nil {
			t.Fatalf("RecordWindow: %v", err)
		}
	}
	if err := a.RecordBookmark(ctx, Bookmark{Type: BookmarkPreyCrash, Tick: 1200, Description: "x"}); err != nil {
		t.Fatalf("RecordBookmark: %v", err)
	}

	got, err := a.Windows(ctx, runID)
	if err != nil {
		t.Fatalf("Windows: %v", err)
	}
	if len(got) != len(windows) {
		t.Fatalf("got %d windows, want %d", len(got), len(windows))
	}
	for i := range windows {
		if got[i] != windows[i] {
			t.Errorf("window %d = %+v, want %+v", i, got[i], windows[i])
		}
	}

	seed, ok, err := a.RunSeed(ctx, runID)
	if err != nil || !ok || seed != 99 {
		t.Errorf("RunSeed = %d, %v, %v", seed, ok, err)
	}
	if _, ok, err := a.RunSeed(ctx, "missing"); ok || err != nil {
		t.Errorf("missing run: ok=%v err=%v", ok, err)
	}
}

func TestArchive_SeparateRuns(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "archive.db")

	a, err := OpenArchive(ctx, path)
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	first, err := a.StartRun(ctx, 1, config.Default())
	if err != nil {
		t.Fatal(err)
	}
	if err := a.RecordWindow(ctx, WindowStats{WindowEndTick: 1}); err != nil {
		t.Fatal(err)
	}
	second, err := a.StartRun(ctx, 2, config.Default())
	if err != nil {
		t.Fatal(err)
	}
	if first == second {
		t.Fatal("run ids must differ")
	}
	if err := a.Close(); err != nil {
		t.Fatal(err)
	}

	// Reopening keeps earlier data.
	b, err := OpenArchive(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b.Close()
	got, err := b.Windows(ctx, first)
	if err != nil || len(got) != 1 {
		t.Errorf("first run windows = %v, %v", got, err)
	}
	got, err = b.Windows(ctx, second)
	if err != nil || len(got) != 0 {
		t.Errorf("second run windows = %v, %v", got, err)
	}
}
