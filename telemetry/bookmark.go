package telemetry

import (
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkNewRecord     BookmarkType = "new_record"
	BookmarkBreakthrough  BookmarkType = "breakthrough"
	BookmarkFirstSurvivor BookmarkType = "first_survivor"
	BookmarkPlateau       BookmarkType = "plateau"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Generation  int          `csv:"generation"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"generation", b.Generation,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting generations in a run.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []GenerationStats
	historySize int
	historyIdx  int
	historyFull bool

	bestEver      float64
	haveBest      bool
	sawSurvivor   bool
	flatCount     int // consecutive generations without a new record
	plateauMarked bool
}

// NewBookmarkDetector creates a detector with the given history size.
// The history size is also the plateau length.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3
	}
	return &BookmarkDetector{
		history:     make([]GenerationStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats GenerationStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkBreakthrough(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkRecord(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkFirstSurvivor(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkPlateau(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats GenerationStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []GenerationStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

// checkRecord fires when the generation beats every earlier generation.
func (bd *BookmarkDetector) checkRecord(stats GenerationStats) *Bookmark {
	if !bd.haveBest {
		bd.bestEver, bd.haveBest = stats.FitnessMax, true
		return nil
	}
	if stats.FitnessMax <= bd.bestEver {
		bd.flatCount++
		return nil
	}

	old := bd.bestEver
	bd.bestEver = stats.FitnessMax
	bd.flatCount = 0
	bd.plateauMarked = false
	return &Bookmark{
		Type:        BookmarkNewRecord,
		Generation:  stats.Generation,
		Description: fmt.Sprintf("Best fitness %.1f beats previous %.1f", stats.FitnessMax, old),
	}
}

// checkBreakthrough fires when the best fitness more than doubles the
// rolling average of recent bests.
func (bd *BookmarkDetector) checkBreakthrough(stats GenerationStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	best := make([]float64, len(history))
	for i, h := range history {
		best[i] = h.FitnessMax
	}
	avg := stat.Mean(best, nil)
	if avg <= 0 {
		return nil
	}

	if stats.FitnessMax > avg*2 {
		return &Bookmark{
			Type:        BookmarkBreakthrough,
			Generation:  stats.Generation,
			Description: fmt.Sprintf("Best fitness %.1f is %.1fx average (%.1f)", stats.FitnessMax, stats.FitnessMax/avg, avg),
		}
	}
	return nil
}

// checkFirstSurvivor fires once, the first time a car outlasts the tick budget.
func (bd *BookmarkDetector) checkFirstSurvivor(stats GenerationStats) *Bookmark {
	if bd.sawSurvivor || stats.Survivors == 0 {
		return nil
	}
	bd.sawSurvivor = true
	return &Bookmark{
		Type:        BookmarkFirstSurvivor,
		Generation:  stats.Generation,
		Description: fmt.Sprintf("%d cars survived all %d ticks", stats.Survivors, stats.Ticks),
	}
}

// checkPlateau fires once per plateau, after historySize generations without a record.
func (bd *BookmarkDetector) checkPlateau(stats GenerationStats) *Bookmark {
	if bd.plateauMarked || bd.flatCount < bd.historySize {
		return nil
	}
	bd.plateauMarked = true
	return &Bookmark{
		Type:        BookmarkPlateau,
		Generation:  stats.Generation,
		Description: fmt.Sprintf("No improvement on %.1f for %d generations", bd.bestEver, bd.flatCount),
	}
}
