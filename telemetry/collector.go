package telemetry

import "github.com/pthm-cable/gridiron/components"

// PlayRecord is the outcome of a single play, one row of plays.csv.
type PlayRecord struct {
	RunID      string  `csv:"run_id"`
	Generation int     `csv:"generation"`
	Play       int     `csv:"play"`
	Outcome    string  `csv:"outcome"`
	Points     int     `csv:"points"`
	Ticks      int     `csv:"ticks"`
	CarrierX   float64 `csv:"carrier_x"` // final ball carrier position
	CarrierY   float64 `csv:"carrier_y"`
}

// Collector accumulates play outcomes within a generation and produces GenerationStats.
type Collector struct {
	runID      string
	generation int

	records  []PlayRecord
	scores   int
	tackles  int
	timeouts int
}

// NewCollector creates a collector that stamps every record with runID.
func NewCollector(runID string) *Collector {
	return &Collector{runID: runID}
}

// Begin starts collecting for a generation, discarding anything unflushed.
func (c *Collector) Begin(generation int) {
	c.generation = generation
	c.reset()
}

// RecordPlay records one ended play.
func (c *Collector) RecordPlay(index int, outcome components.Outcome, points, ticks int, carrier components.Position) {
	switch outcome {
	case components.OutcomeScore:
		c.scores++
	case components.OutcomeTackle:
		c.tackles++
	case components.OutcomeTimeout:
		c.timeouts++
	}
	c.records = append(c.records, PlayRecord{
		RunID:      c.runID,
		Generation: c.generation,
		Play:       index,
		Outcome:    outcome.String(),
		Points:     points,
		Ticks:      ticks,
		CarrierX:   carrier.X,
		CarrierY:   carrier.Y,
	})
}

// Flush produces the generation's stats and play records and resets the collector.
// generationTicks is the number of manager steps the generation ran.
func (c *Collector) Flush(generationTicks int, strategy string) (GenerationStats, []PlayRecord) {
	n := len(c.records)
	points := make([]float64, n)
	ticks := make([]float64, n)
	for i, r := range c.records {
		points[i] = float64(r.Points)
		ticks[i] = float64(r.Ticks)
	}

	var scoreRate float64
	if n > 0 {
		scoreRate = float64(c.scores) / float64(n)
	}
	pointsMean, pointsStd := MeanStd(points)
	ticksMean, p10, p50, p90 := ComputeTickStats(ticks)

	stats := GenerationStats{
		RunID:      c.runID,
		Generation: c.generation,
		Strategy:   strategy,
		Plays:      n,
		Ticks:      generationTicks,

		Scores:    c.scores,
		Tackles:   c.tackles,
		Timeouts:  c.timeouts,
		ScoreRate: scoreRate,

		PointsMean: pointsMean,
		PointsStd:  pointsStd,

		PlayTicksMean: ticksMean,
		PlayTicksP10:  p10,
		PlayTicksP50:  p50,
		PlayTicksP90:  p90,
	}
	records := c.records

	c.reset()
	return stats, records
}

func (c *Collector) reset() {
	c.records = nil
	c.scores = 0
	c.tackles = 0
	c.timeouts = 0
}
