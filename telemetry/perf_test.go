package telemetry

import (
	"testing"
	"time"
)

func TestPerfCollectorSteps(t *testing.T) {
	pc := NewPerfCollector()

	for i := 0; i < 5; i++ {
		pc.StartStep()
		pc.StartPhase(PhasePlays)
		time.Sleep(100 * time.Microsecond)
		pc.StartPhase(PhaseScene)
		time.Sleep(200 * time.Microsecond)
		pc.EndStep()
	}

	s := pc.Stats()
	if s.Steps != 5 {
		t.Errorf("Steps = %d, want 5", s.Steps)
	}
	if s.AvgStep <= 0 || s.StepsPerSecond <= 0 {
		t.Errorf("avg %v, steps/s %v: want positive", s.AvgStep, s.StepsPerSecond)
	}
	if s.MinStep > s.AvgStep || s.AvgStep > s.MaxStep {
		t.Errorf("min %v avg %v max %v out of order", s.MinStep, s.AvgStep, s.MaxStep)
	}
	if s.PhaseTotal[PhasePlays] <= 0 || s.PhaseTotal[PhaseScene] <= 0 {
		t.Errorf("phase totals = %v", s.PhaseTotal)
	}
	if s.PhaseTotal[PhaseEvolve] != 0 {
		t.Errorf("evolve was never timed, got %v", s.PhaseTotal[PhaseEvolve])
	}
}

func TestPerfCollectorEvolveOutsideStep(t *testing.T) {
	pc := NewPerfCollector()

	pc.StartStep()
	pc.StartPhase(PhasePlays)
	pc.EndStep()

	pc.StartPhase(PhaseEvolve)
	time.Sleep(2 * time.Millisecond)
	pc.EndPhase()

	s := pc.Stats()
	if s.Steps != 1 {
		t.Errorf("evolve phase counted as a step: Steps = %d", s.Steps)
	}
	if s.PhasePct[PhaseEvolve] <= s.PhasePct[PhasePlays] {
		t.Errorf("evolve %v%% should dominate plays %v%%", s.PhasePct[PhaseEvolve], s.PhasePct[PhasePlays])
	}

	var sum float64
	for _, pct := range s.PhasePct {
		sum += pct
	}
	if sum < 99.9 || sum > 100.1 {
		t.Errorf("phase percentages sum to %v", sum)
	}
}

func TestPerfCollectorEmptyAndReset(t *testing.T) {
	pc := NewPerfCollector()
	if s := pc.Stats(); s.Steps != 0 || s.AvgStep != 0 || s.StepsPerSecond != 0 {
		t.Errorf("empty stats = %+v", s)
	}

	pc.StartStep()
	pc.StartPhase(PhasePlays)
	pc.EndStep()
	pc.Reset()
	if s := pc.Stats(); s.Steps != 0 || s.PhaseTotal[PhasePlays] != 0 {
		t.Errorf("Reset kept %+v", s)
	}
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		ph   Phase
		want string
	}{
		{PhasePlays, "plays"},
		{PhaseScene, "scene"},
		{PhaseEvolve, "evolve"},
		{numPhases, "unknown"},
	}
	for _, tt := range tests {
		if got := tt.ph.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.ph, got, tt.want)
		}
	}
}

func TestPerfStatsToCSV(t *testing.T) {
	var s PerfStats
	s.Steps = 12
	s.AvgStep = 1500 * time.Microsecond
	s.StepsPerSecond = 666
	s.PhasePct[PhasePlays] = 80
	s.PhasePct[PhaseEvolve] = 15

	row := s.ToCSV("run", 4)
	if row.RunID != "run" || row.Generation != 4 || row.Steps != 12 || row.AvgStepUS != 1500 {
		t.Errorf("row = %+v", row)
	}
	if row.PlaysPct != 80 || row.EvolvePct != 15 || row.ScenePct != 0 {
		t.Errorf("phase pct = %v/%v/%v", row.PlaysPct, row.ScenePct, row.EvolvePct)
	}
}
