package telemetry

import (
	"testing"

	"github.com/pthm-cable/meadow/config"
)

func testBookmarksConfig() config.BookmarksConfig {
	return config.Default().Bookmarks
}

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_HuntBreakthrough(t *testing.T) {
	bd := NewBookmarkDetector(10, testBookmarksConfig())

	// Add some history with few kills
	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{
			WindowEndTick: int32(i * 600),
			LivePrey:      100,
			PredCount:     10,
			Kills:         2,
		})
	}

	// Now a window with far more kills (>2x average)
	bookmarks := bd.Check(WindowStats{
		WindowEndTick: 3000,
		LivePrey:      100,
		PredCount:     10,
		Kills:         8,
	})
	if !hasBookmark(bookmarks, BookmarkHuntBreakthrough) {
		t.Error("expected hunt_breakthrough bookmark")
	}
}

func TestBookmarkDetector_PreyCrash(t *testing.T) {
	bd := NewBookmarkDetector(10, testBookmarksConfig())

	// Build up prey population
	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{
			WindowEndTick: int32(i * 600),
			LivePrey:      100,
			PredCount:     10,
		})
	}

	// Now crash prey population
	bookmarks := bd.Check(WindowStats{
		WindowEndTick: 3000,
		LivePrey:      50, // 50% drop
		PredCount:     10,
	})
	if !hasBookmark(bookmarks, BookmarkPreyCrash) {
		t.Error("expected prey_crash bookmark")
	}
}

func TestBookmarkDetector_PredatorRecovery(t *testing.T) {
	bd := NewBookmarkDetector(10, testBookmarksConfig())

	// Predator population drops to critical level
	for i := 0; i < 3; i++ {
		bd.Check(WindowStats{
			WindowEndTick: int32(i * 600),
			LivePrey:      100,
			PredCount:     2, // Critical low
		})
	}

	// Predator recovers to 5x the minimum
	bookmarks := bd.Check(WindowStats{
		WindowEndTick: 2400,
		LivePrey:      100,
		PredCount:     10,
	})
	if !hasBookmark(bookmarks, BookmarkPredatorRecovery) {
		t.Error("expected predator_recovery bookmark")
	}
}

func TestBookmarkDetector_StableEcosystem(t *testing.T) {
	cfg := testBookmarksConfig()
	cfg.StableWindows = 5
	bd := NewBookmarkDetector(10, cfg)

	var fired []int
	for i := 0; i < 12; i++ {
		bookmarks := bd.Check(WindowStats{
			WindowEndTick: int32(i * 600),
			LivePrey:      100,
			PredCount:     20,
		})
		if hasBookmark(bookmarks, BookmarkStableEcosystem) {
			fired = append(fired, i)
		}
	}

	// Stability is measured once 4 windows of history exist, so the count
	// starts at window 4 and reaches 5 at window 8.
	if len(fired) != 1 || fired[0] != 8 {
		t.Errorf("stable_ecosystem fired at %v, want [8]", fired)
	}
}

func TestBookmarkDetector_UnstableResetsCount(t *testing.T) {
	cfg := testBookmarksConfig()
	cfg.StableWindows = 3
	bd := NewBookmarkDetector(10, cfg)

	counts := []int{100, 20, 100, 20, 100, 20, 100, 20}
	for i, n := range counts {
		bookmarks := bd.Check(WindowStats{WindowEndTick: int32(i), LivePrey: n, PredCount: 20})
		if hasBookmark(bookmarks, BookmarkStableEcosystem) {
			t.Fatalf("oscillating population flagged stable at window %d", i)
		}
	}
}

func TestBookmarkDetector_ExtinctionFiresOnce(t *testing.T) {
	bd := NewBookmarkDetector(10, testBookmarksConfig())

	bd.Check(WindowStats{WindowEndTick: 1, LivePrey: 30, PredCount: 4})

	first := bd.Check(WindowStats{WindowEndTick: 2, LivePrey: 30, PredCount: 0})
	if !hasBookmark(first, BookmarkPredatorExtinct) {
		t.Error("expected predator_extinct bookmark")
	}
	if hasBookmark(first, BookmarkPreyExtinct) {
		t.Error("prey are not extinct")
	}

	again := bd.Check(WindowStats{WindowEndTick: 3, LivePrey: 30, PredCount: 0})
	if hasBookmark(again, BookmarkPredatorExtinct) {
		t.Error("predator_extinct should fire only once")
	}
}
