package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkFirstScore          BookmarkType = "first_score"
	BookmarkScoreRecord         BookmarkType = "score_record"
	BookmarkOffenseBreakthrough BookmarkType = "offense_breakthrough"
	BookmarkDefenseShutout      BookmarkType = "defense_shutout"
)

// Bookmark marks a generation worth looking at.
type Bookmark struct {
	RunID       string       `csv:"run_id"`
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

// BookmarkDetector watches generation stats for milestones.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []GenerationStats
	historySize int
	historyIdx  int
	historyFull bool

	scored    bool
	bestRate  float64
	prevScore int
	seen      bool
}

// NewBookmarkDetector creates a detector averaging over historySize generations.
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
	add := func(b *Bookmark) {
		if b != nil {
			b.RunID = stats.RunID
			b.Generation = stats.Generation
			bookmarks = append(bookmarks, *b)
		}
	}

	add(bd.checkFirstScore(stats))
	add(bd.checkScoreRecord(stats))
	add(bd.checkBreakthrough(stats))
	add(bd.checkShutout(stats))

	bd.addToHistory(stats)
	if stats.ScoreRate > bd.bestRate {
		bd.bestRate = stats.ScoreRate
	}
	if stats.Scores > 0 {
		bd.scored = true
	}
	bd.prevScore = stats.Scores
	bd.seen = true

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

func (bd *BookmarkDetector) checkFirstScore(stats GenerationStats) *Bookmark {
	if bd.scored || stats.Scores == 0 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkFirstScore,
		Description: fmt.Sprintf("First touchdown: %d of %d plays scored", stats.Scores, stats.Plays),
	}
}

func (bd *BookmarkDetector) checkScoreRecord(stats GenerationStats) *Bookmark {
	if bd.bestRate == 0 || stats.ScoreRate <= bd.bestRate {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkScoreRecord,
		Description: fmt.Sprintf("Score rate %.3f beats previous best %.3f", stats.ScoreRate, bd.bestRate),
	}
}

func (bd *BookmarkDetector) checkBreakthrough(stats GenerationStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.ScoreRate
	}
	avg := total / float64(len(history))
	if avg == 0 {
		return nil
	}

	if stats.ScoreRate > avg*2.0 && stats.Scores >= 3 {
		return &Bookmark{
			Type:        BookmarkOffenseBreakthrough,
			Description: fmt.Sprintf("Score rate %.3f is %.1fx average (%.3f)", stats.ScoreRate, stats.ScoreRate/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkShutout(stats GenerationStats) *Bookmark {
	if !bd.seen || bd.prevScore == 0 || stats.Scores > 0 {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkDefenseShutout,
		Description: fmt.Sprintf("Defense held every play after %d scores last generation", bd.prevScore),
	}
}
