package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// GenerationStats holds aggregated statistics for one generation.
type GenerationStats struct {
	RunID      string `csv:"run_id"`
	Generation int    `csv:"generation"`
	Strategy   string `csv:"strategy"`

	Plays int `csv:"plays"`
	Ticks int `csv:"ticks"` // manager steps run before every play ended or the budget ran out

	// Outcomes
	Scores    int     `csv:"scores"`
	Tackles   int     `csv:"tackles"`
	Timeouts  int     `csv:"timeouts"`
	ScoreRate float64 `csv:"score_rate"`

	// Points per play
	PointsMean float64 `csv:"points_mean"`
	PointsStd  float64 `csv:"points_std"`

	// Play length in ticks
	PlayTicksMean float64 `csv:"play_ticks_mean"`
	PlayTicksP10  float64 `csv:"play_ticks_p10"`
	PlayTicksP50  float64 `csv:"play_ticks_p50"`
	PlayTicksP90  float64 `csv:"play_ticks_p90"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// MeanStd returns the mean and population standard deviation of values.
func MeanStd(values []float64) (mean, std float64) {
	if len(values) == 0 {
		return 0, 0
	}
	return stat.PopMeanStdDev(values, nil)
}

// ComputeTickStats calculates mean and percentiles of play lengths.
func ComputeTickStats(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}
	mean = stat.Mean(values, nil)

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	return mean, Percentile(sorted, 0.10), Percentile(sorted, 0.50), Percentile(sorted, 0.90)
}

// LogValue implements slog.LogValuer for structured logging.
func (s GenerationStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("run_id", s.RunID),
		slog.Int("generation", s.Generation),
		slog.String("strategy", s.Strategy),
		slog.Int("plays", s.Plays),
		slog.Int("ticks", s.Ticks),
		slog.Int("scores", s.Scores),
		slog.Int("tackles", s.Tackles),
		slog.Int("timeouts", s.Timeouts),
		slog.Float64("score_rate", s.ScoreRate),
		slog.Float64("points_mean", s.PointsMean),
		slog.Float64("points_std", s.PointsStd),
		slog.Float64("play_ticks_mean", s.PlayTicksMean),
		slog.Float64("play_ticks_p10", s.PlayTicksP10),
		slog.Float64("play_ticks_p50", s.PlayTicksP50),
		slog.Float64("play_ticks_p90", s.PlayTicksP90),
	)
}

// LogStats logs the generation stats using slog.
func (s GenerationStats) LogStats() {
	slog.Info("generation_complete",
		"generation", s.Generation,
		"ticks", s.Ticks,
		"scores", s.Scores,
		"tackles", s.Tackles,
		"timeouts", s.Timeouts,
		"score_rate", s.ScoreRate,
		"points_mean", s.PointsMean,
		"points_std", s.PointsStd,
		"play_ticks_mean", s.PlayTicksMean,
		"play_ticks_p50", s.PlayTicksP50,
		"play_ticks_p90", s.PlayTicksP90,
	)
}
