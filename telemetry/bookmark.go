package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/meadow/config"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkHuntBreakthrough BookmarkType = "hunt_breakthrough"
	BookmarkPredatorRecovery BookmarkType = "predator_recovery"
	BookmarkPreyCrash        BookmarkType = "prey_crash"
	BookmarkStableEcosystem  BookmarkType = "stable_ecosystem"
	BookmarkPreyExtinct      BookmarkType = "prey_extinct"
	BookmarkPredatorExtinct  BookmarkType = "predator_extinct"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type" json:"type"`
	Tick        int32        `csv:"tick" json:"tick"`
	Description string       `csv:"description" json:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// stableLookback is how many past windows the stability check compares.
const stableLookback = 4

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	cfg config.BookmarksConfig

	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	recentPredMin      int  // minimum predator count since the last recovery
	predMinSet         bool // recentPredMin holds a real observation
	recentPreyPeak     int  // peak prey count since the last crash
	stableWindowsCount int  // consecutive windows with stable populations
	preyExtinct        bool
	predExtinct        bool
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int, cfg config.BookmarksConfig) *BookmarkDetector {
	if historySize < stableLookback+1 {
		historySize = stableLookback + 1
	}
	return &BookmarkDetector{
		cfg:         cfg,
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		for _, check := range []func(WindowStats) *Bookmark{
			bd.checkHuntBreakthrough,
			bd.checkPredatorRecovery,
			bd.checkPreyCrash,
			bd.checkStableEcosystem,
		} {
			if b := check(stats); b != nil {
				bookmarks = append(bookmarks, *b)
			}
		}
	}
	bookmarks = append(bookmarks, bd.checkExtinctions(stats)...)

	bd.addToHistory(stats)

	if !bd.predMinSet || stats.PredCount < bd.recentPredMin {
		bd.recentPredMin = stats.PredCount
		bd.predMinSet = true
	}
	if stats.LivePrey > bd.recentPreyPeak {
		bd.recentPreyPeak = stats.LivePrey
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// getHistory returns past windows oldest first.
func (bd *BookmarkDetector) getHistory() []WindowStats {
	if !bd.historyFull {
		return bd.history[:bd.historyIdx]
	}
	out := make([]WindowStats, 0, bd.historySize)
	out = append(out, bd.history[bd.historyIdx:]...)
	return append(out, bd.history[:bd.historyIdx]...)
}

func (bd *BookmarkDetector) checkHuntBreakthrough(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var totalKills int
	for _, h := range history {
		totalKills += h.Kills
	}
	avgKills := float64(totalKills) / float64(len(history))
	if avgKills == 0 {
		return nil
	}

	if float64(stats.Kills) > avgKills*2.0 && stats.Kills >= 3 {
		return &Bookmark{
			Type:        BookmarkHuntBreakthrough,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%d kills is %.1fx average (%.2f)", stats.Kills, float64(stats.Kills)/avgKills, avgKills),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkPredatorRecovery(stats WindowStats) *Bookmark {
	if !bd.predMinSet || bd.recentPredMin == 0 || bd.recentPredMin > 3 {
		return nil
	}

	threshold := int(float64(bd.recentPredMin) * bd.cfg.PredatorRecoveryX)
	if stats.PredCount >= threshold && stats.PredCount >= 6 {
		// Reset the minimum after triggering
		oldMin := bd.recentPredMin
		bd.recentPredMin = stats.PredCount

		return &Bookmark{
			Type:        BookmarkPredatorRecovery,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Predator population recovered from %d to %d", oldMin, stats.PredCount),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkPreyCrash(stats WindowStats) *Bookmark {
	if bd.recentPreyPeak == 0 {
		return nil
	}

	drop := 1.0 - float64(stats.LivePrey)/float64(bd.recentPreyPeak)
	if drop > bd.cfg.PreyCrashDrop && stats.LivePrey < bd.recentPreyPeak-10 {
		// Reset peak after crash
		oldPeak := bd.recentPreyPeak
		bd.recentPreyPeak = stats.LivePrey

		return &Bookmark{
			Type:        BookmarkPreyCrash,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Prey crashed %.0f%% from peak %d to %d", drop*100, oldPeak, stats.LivePrey),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkStableEcosystem(stats WindowStats) *Bookmark {
	// Need both populations present
	if stats.LivePrey < 10 || stats.PredCount < 3 {
		bd.stableWindowsCount = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < stableLookback {
		return nil
	}

	recent := history[len(history)-stableLookback:]
	prey := make([]float64, len(recent))
	pred := make([]float64, len(recent))
	for i, h := range recent {
		prey[i] = float64(h.LivePrey)
		pred[i] = float64(h.PredCount)
	}

	if cv(prey) < bd.cfg.StableCVThreshold && cv(pred) < bd.cfg.StableCVThreshold {
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}

	if bd.stableWindowsCount == bd.cfg.StableWindows {
		return &Bookmark{
			Type:        BookmarkStableEcosystem,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Stable ecosystem with %d prey, %d predators over %d+ windows", stats.LivePrey, stats.PredCount, bd.cfg.StableWindows),
		}
	}
	return nil
}

// checkExtinctions fires once when a population first reaches zero.
func (bd *BookmarkDetector) checkExtinctions(stats WindowStats) []Bookmark {
	var out []Bookmark
	if stats.LivePrey == 0 && !bd.preyExtinct {
		bd.preyExtinct = true
		out = append(out, Bookmark{
			Type:        BookmarkPreyExtinct,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Prey extinct at %.0fs", stats.SimTimeSec),
		})
	}
	if stats.PredCount == 0 && !bd.predExtinct {
		bd.predExtinct = true
		out = append(out, Bookmark{
			Type:        BookmarkPredatorExtinct,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Predators extinct at %.0fs", stats.SimTimeSec),
		})
	}
	return out
}

// cv is the coefficient of variation (population std over mean).
func cv(x []float64) float64 {
	mean, std := stat.PopMeanStdDev(x, nil)
	if mean == 0 {
		return 0
	}
	return std / mean
}
