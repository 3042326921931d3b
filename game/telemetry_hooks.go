package game

import (
	"context"
	"log/slog"
	"time"

	"github.com/pthm-cable/meadow/feed"
	"github.com/pthm-cable/meadow/telemetry"
)

// archiveTimeout bounds a single archive write.
const archiveTimeout = 5 * time.Second

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.world.SimTime()) {
		return
	}

	preyHunger, predHunger := g.world.Hungers()
	stats := g.collector.Flush(telemetry.Sample{
		Stats:      g.world.Stats(),
		PreyHunger: preyHunger,
		PredHunger: predHunger,
	})
	perfStats := g.perfCollector.Stats()
	g.lastStats = stats
	g.populationPanel.Update(stats)

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}

	if g.archive != nil {
		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		if err := g.archive.RecordWindow(ctx, stats); err != nil {
			slog.Error("failed to archive window", "error", err)
		}
		cancel()
	}

	bookmarks := g.bookmarkDetector.Check(stats)
	for _, bm := range bookmarks {
		if g.logStats {
			bm.LogBookmark()
		}

		if g.outputManager != nil {
			if err := g.outputManager.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}

		if g.archive != nil {
			ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
			if err := g.archive.RecordBookmark(ctx, bm); err != nil {
				slog.Error("failed to archive bookmark", "error", err)
			}
			cancel()
		}

		if g.snapshotDir != "" {
			g.saveSnapshot(&bm)
		}
	}
}

// publishFrame sends the world state to feed clients every feed.interval ticks.
func (g *Game) publishFrame() {
	if g.feed == nil || g.world.Tick()%int32(g.cfg.Feed.Interval) != 0 {
		return
	}
	if g.feed.Clients() == 0 {
		return
	}
	if err := g.feed.PublishFrame(feed.BuildFrame(g.world)); err != nil {
		slog.Error("failed to publish frame", "error", err)
	}
}

// DumpStats logs the current population summary and, when a snapshot
// directory is configured, saves a snapshot.
func (g *Game) DumpStats() {
	slog.Info("stats", "world", g.world.Stats(), "tracked", g.lifetimeTracker.Count())
	if g.snapshotDir != "" {
		g.saveSnapshot(nil)
	}
}

// saveSnapshot creates and saves a snapshot to disk.
func (g *Game) saveSnapshot(bookmark *telemetry.Bookmark) {
	snapshot := telemetry.BuildSnapshot(g.world, g.rngSeed, g.lifetimeTracker, bookmark)

	path, err := telemetry.SaveSnapshot(snapshot, g.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}

	slog.Info("snapshot saved", "path", path, "tick", g.world.Tick())
}
