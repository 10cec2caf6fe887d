package game

import (
	"log/slog"
	"math"
	"path/filepath"
	"time"

	"github.com/pthm-cable/carsim/neural"
	"github.com/pthm-cable/carsim/telemetry"
)

// recordGeneration logs, writes and bookmarks one generation's stats.
func (g *Game) recordGeneration(r neural.Report) {
	g.bestEver = math.Max(g.bestEver, r.BestFitness)

	stats := telemetry.NewGenerationStats(r, filepath.Base(g.current.info.File), g.bestEver, time.Since(g.started))
	perfStats := g.perf.Stats()

	if g.opts.OnGeneration != nil {
		g.opts.OnGeneration(stats)
	}

	if r.Generation%g.cfg.Telemetry.LogEvery == 0 {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := g.output.WriteGeneration(stats); err != nil {
		slog.Error("failed to write generation", "error", err)
	}
	if err := g.output.WritePerf(perfStats, r.Generation); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	for _, bm := range g.bookmarks.Check(stats) {
		bm.LogBookmark()
		if err := g.output.WriteBookmark(bm); err != nil {
			slog.Error("failed to write bookmark", "error", err)
		}
	}
}
