package telemetry

import (
	"log/slog"
	"time"
)

// Phase is a timed section of a generation.
type Phase uint8

const (
	PhasePlays  Phase = iota // ticking every active play
	PhaseScene               // mirroring the watched play
	PhaseEvolve              // timeouts, selection and reproduction
	numPhases
)

func (p Phase) String() string {
	switch p {
	case PhasePlays:
		return "plays"
	case PhaseScene:
		return "scene"
	case PhaseEvolve:
		return "evolve"
	default:
		return "unknown"
	}
}

// PerfCollector accumulates wall-clock timings for one generation: manager
// steps, split into phases, plus the evolve phase that runs outside any step.
type PerfCollector struct {
	steps     int
	stepTotal time.Duration
	stepMin   time.Duration
	stepMax   time.Duration
	phases    [numPhases]time.Duration

	stepStart  time.Time
	phaseStart time.Time
	current    Phase
	inPhase    bool
}

// NewPerfCollector creates an empty collector.
func NewPerfCollector() *PerfCollector {
	return &PerfCollector{}
}

// StartStep begins timing a manager step.
func (p *PerfCollector) StartStep() {
	p.stepStart = time.Now()
	p.inPhase = false
}

// StartPhase closes the running phase, if any, and starts timing ph.
func (p *PerfCollector) StartPhase(ph Phase) {
	now := time.Now()
	p.closePhase(now)
	p.current = ph
	p.phaseStart = now
	p.inPhase = true
}

// EndPhase closes the running phase without recording a step.
func (p *PerfCollector) EndPhase() {
	p.closePhase(time.Now())
}

// EndStep closes the running phase and records the step duration.
func (p *PerfCollector) EndStep() {
	now := time.Now()
	p.closePhase(now)

	d := now.Sub(p.stepStart)
	if p.steps == 0 || d < p.stepMin {
		p.stepMin = d
	}
	p.stepMax = max(p.stepMax, d)
	p.stepTotal += d
	p.steps++
}

func (p *PerfCollector) closePhase(now time.Time) {
	if !p.inPhase {
		return
	}
	p.phases[p.current] += now.Sub(p.phaseStart)
	p.inPhase = false
}

// Reset drops everything recorded so far.
func (p *PerfCollector) Reset() {
	*p = PerfCollector{}
}

// PerfStats holds one generation's aggregated timings.
type PerfStats struct {
	Steps          int
	AvgStep        time.Duration
	MinStep        time.Duration
	MaxStep        time.Duration
	StepsPerSecond float64

	// Total time and share of all timed work per phase, indexed by Phase
	PhaseTotal [numPhases]time.Duration
	PhasePct   [numPhases]float64
}

// Stats aggregates what has been recorded since the last Reset.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{
		Steps:      p.steps,
		MinStep:    p.stepMin,
		MaxStep:    p.stepMax,
		PhaseTotal: p.phases,
	}
	if p.steps > 0 {
		s.AvgStep = p.stepTotal / time.Duration(p.steps)
	}
	if s.AvgStep > 0 {
		s.StepsPerSecond = float64(time.Second) / float64(s.AvgStep)
	}

	var timed time.Duration
	for _, d := range p.phases {
		timed += d
	}
	if timed > 0 {
		for i, d := range p.phases {
			s.PhasePct[i] = float64(d) / float64(timed) * 100
		}
	}
	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("steps", s.Steps),
		slog.Int64("avg_step_us", s.AvgStep.Microseconds()),
		slog.Int64("min_step_us", s.MinStep.Microseconds()),
		slog.Int64("max_step_us", s.MaxStep.Microseconds()),
		slog.Int("steps_per_sec", int(s.StepsPerSecond)),
	}
	for ph := Phase(0); ph < numPhases; ph++ {
		attrs = append(attrs, slog.Float64(ph.String()+"_pct", float64(int(s.PhasePct[ph]*10))/10))
	}
	return slog.GroupValue(attrs...)
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	slog.Info("perf", "stats", s)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	RunID       string  `csv:"run_id"`
	Generation  int     `csv:"generation"`
	Steps       int     `csv:"steps"`
	AvgStepUS   int64   `csv:"avg_step_us"`
	MinStepUS   int64   `csv:"min_step_us"`
	MaxStepUS   int64   `csv:"max_step_us"`
	StepsPerSec float64 `csv:"steps_per_sec"`
	PlaysPct    float64 `csv:"plays_pct"`
	ScenePct    float64 `csv:"scene_pct"`
	EvolvePct   float64 `csv:"evolve_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(runID string, generation int) PerfStatsCSV {
	return PerfStatsCSV{
		RunID:       runID,
		Generation:  generation,
		Steps:       s.Steps,
		AvgStepUS:   s.AvgStep.Microseconds(),
		MinStepUS:   s.MinStep.Microseconds(),
		MaxStepUS:   s.MaxStep.Microseconds(),
		StepsPerSec: s.StepsPerSecond,
		PlaysPct:    s.PhasePct[PhasePlays],
		ScenePct:    s.PhasePct[PhaseScene],
		EvolvePct:   s.PhasePct[PhaseEvolve],
	}
}
