package main

import (
	"bytes"
	"encoding/csv"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pthm-cable/gridiron/config"
	"github.com/pthm-cable/gridiron/telemetry"
)

func TestParamVectorRoundTrip(t *testing.T) {
	pv := NewParamVector()
	def := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(def))
	for i := range def {
		if math.Abs(back[i]-def[i]) > 1e-12 {
			t.Errorf("%s: %v -> %v", pv.Specs[i].Name, def[i], back[i])
		}
	}
}

func TestParamVectorMatchesDefaults(t *testing.T) {
	pv := NewParamVector()
	got := pv.ExtractFromConfig(config.Default())
	for i, spec := range pv.Specs {
		if got[i] != spec.Default {
			t.Errorf("%s: config default %v, spec default %v", spec.Name, got[i], spec.Default)
		}
	}
}

func TestApplyToConfigClamps(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Default()
	pv.ApplyToConfig(cfg, []float64{2, -1, 1, 0.9})

	if cfg.Mutation.Rate != 1 || cfg.Mutation.Magnitude != 0.1 {
		t.Errorf("mutation = %v/%v, want clamped 1/0.1", cfg.Mutation.Rate, cfg.Mutation.Magnitude)
	}
	if cfg.Play.PushMultiplier != 1 || cfg.Play.HitBoxRatio != 0.9 {
		t.Errorf("play = %v/%v", cfg.Play.PushMultiplier, cfg.Play.HitBoxRatio)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("applied config invalid: %v", err)
	}
}

func TestComputeQuality(t *testing.T) {
	if q := computeQuality(nil); q != 0 {
		t.Errorf("empty run quality = %v", q)
	}

	gen := func(rate float64, timeouts int) telemetry.GenerationStats {
		return telemetry.GenerationStats{Plays: 100, Scores: int(rate * 100), ScoreRate: rate, Timeouts: timeouts}
	}
	balanced := []telemetry.GenerationStats{gen(0, 0), gen(0, 0), gen(0.45, 0), gen(0.55, 0), gen(0.5, 0)}
	lopsided := []telemetry.GenerationStats{gen(0, 0), gen(0, 0), gen(0, 100), gen(0, 100), gen(0, 100)}

	qb, ql := computeQuality(balanced), computeQuality(lopsided)
	if !(qb > ql) {
		t.Errorf("balanced quality %v should beat lopsided %v", qb, ql)
	}
	if qb < 0 || qb > 1 || ql < 0 || ql > 1 {
		t.Errorf("quality outside [0,1]: %v %v", qb, ql)
	}
}

func TestEvaluateSmallRun(t *testing.T) {
	pv := NewParamVector()
	fe := NewFitnessEvaluator(pv, "", 3, 4, []int64{1, 2})

	f := fe.Evaluate(pv.DefaultVector())
	if f > 0 || f < -1 {
		t.Errorf("fitness = %v, want in [-1, 0]", f)
	}
	if fe.LastQuality() != -f {
		t.Errorf("LastQuality = %v, fitness = %v", fe.LastQuality(), f)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0m00s"},
		{95 * time.Second, "1m35s"},
		{time.Hour + 2*time.Minute + 3*time.Second, "1h02m03s"},
		{1499 * time.Millisecond, "0m01s"},
	}
	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestEvalLogTracksBest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "optimize_log.csv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	pv := NewParamVector()
	l, err := newEvalLog(f, pv, 3)
	if err != nil {
		t.Fatal(err)
	}

	l.record([]float64{0.1, 1, 1, 0.6}, -0.2, 0.2)
	l.record([]float64{0.2, 2, 2, 0.7}, -0.6, 0.6)
	l.record([]float64{0.3, 3, 3, 0.8}, -0.4, 0.4)
	f.Close()

	if l.bestFitness != -0.6 || l.best[0] != 0.2 {
		t.Errorf("best = %v at %v, want -0.6 at mutation_rate 0.2", l.bestFitness, l.best)
	}

	rf, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer rf.Close()
	rows, err := csv.NewReader(rf).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want header + 3", len(rows))
	}
	if len(rows[0]) != 3+pv.Dim() || rows[0][3] != "mutation_rate" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[2][0] != "2" || rows[2][2] != "0.600000" {
		t.Errorf("second row = %v", rows[2])
	}
}

func TestEvaluateLogsFailedRuns(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	pv := NewParamVector()
	missing := filepath.Join(t.TempDir(), "missing.yaml")
	fe := NewFitnessEvaluator(pv, missing, 3, 4, []int64{7})

	if f := fe.Evaluate(pv.DefaultVector()); f != 0 {
		t.Errorf("failed run fitness = %v, want 0", f)
	}
	out := buf.String()
	if !strings.Contains(out, "seed 7 failed") || !strings.Contains(out, "reading config file") {
		t.Errorf("log output = %q, want the seed and the cause", out)
	}
}
