package main

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"sync"

	"github.com/pthm-cable/gridiron/config"
	"github.com/pthm-cable/gridiron/game"
	"github.com/pthm-cable/gridiron/telemetry"
)

// FitnessEvaluator runs headless evolutions and scores how balanced the
// offense/defense arms race stays.
type FitnessEvaluator struct {
	params      *ParamVector
	configPath  string
	generations int
	population  int
	seeds       []int64

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator. Each evaluation reloads the base
// config from configPath (empty = defaults) so runs never share state.
func NewFitnessEvaluator(params *ParamVector, configPath string, generations, population int, seeds []int64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		configPath:  configPath,
		generations: generations,
		population:  population,
		seeds:       seeds,
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is the negated mean quality across seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	qualities := make([]float64, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			stats, err := fe.runEvolution(x, s)
			if err != nil {
				// Unrunnable parameters score worst
				log.Printf("evaluation seed %d failed, scoring 0: %v", s, err)
				return
			}
			qualities[idx] = computeQuality(stats)
		}(i, seed)
	}
	wg.Wait()

	var total float64
	for _, q := range qualities {
		total += q
	}
	avg := total / float64(len(fe.seeds))

	fe.mu.Lock()
	fe.lastQuality = avg
	fe.mu.Unlock()

	return -avg
}

// runEvolution runs one seeded evolution and returns its generation stats.
func (fe *FitnessEvaluator) runEvolution(x []float64, seed int64) ([]telemetry.GenerationStats, error) {
	cfg, err := fe.loadConfig(x)
	if err != nil {
		return nil, err
	}

	m, err := game.NewManager(cfg, rand.New(rand.NewSource(seed)), game.Options{RunID: fmt.Sprintf("seed-%d", seed)})
	if err != nil {
		return nil, err
	}

	stats := make([]telemetry.GenerationStats, 0, fe.generations)
	for g := 0; g < fe.generations; g++ {
		res, err := m.RunGeneration(context.Background())
		if err != nil {
			return nil, err
		}
		stats = append(stats, res.Stats)
	}
	return stats, nil
}

// loadConfig creates a fresh config with x applied.
func (fe *FitnessEvaluator) loadConfig(x []float64) (*config.Config, error) {
	cfg, err := config.Load(fe.configPath)
	if err != nil {
		return nil, err
	}
	fe.params.ApplyToConfig(cfg, x)
	if fe.population > 0 {
		cfg.Population.Size = fe.population
	}
	if cfg.Telemetry.WatchPlay >= cfg.Population.Size {
		cfg.Telemetry.WatchPlay = 0
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Quality component weights.
const (
	qualityWeightBalance  = 0.50
	qualityWeightDecisive = 0.30
	qualityWeightChurn    = 0.20

	qualityWarmupGenerations = 2   // skip first N generations
	targetScoreRate          = 0.5 // offense and defense win equally often
)

// computeQuality scores a run in [0, 1]. Runs score well when the score rate sits
// near the target with few timeouts and keeps moving between generations.
func computeQuality(gens []telemetry.GenerationStats) float64 {
	if len(gens) <= qualityWarmupGenerations {
		return 0
	}
	valid := gens[qualityWarmupGenerations:]

	var balanceSum, decisiveSum float64
	rates := make([]float64, 0, len(valid))
	for _, g := range valid {
		if g.Plays == 0 {
			continue
		}
		balanceSum += math.Exp(-math.Pow((g.ScoreRate-targetScoreRate)/0.2, 2))
		decisiveSum += 1 - float64(g.Timeouts)/float64(g.Plays)
		rates = append(rates, g.ScoreRate)
	}
	if len(rates) == 0 {
		return 0
	}
	n := float64(len(rates))

	churn := 0.0
	if len(rates) >= 2 {
		_, std := telemetry.MeanStd(rates)
		churn = 1 - math.Exp(-std/0.05)
	}

	quality := qualityWeightBalance*balanceSum/n +
		qualityWeightDecisive*decisiveSum/n +
		qualityWeightChurn*churn

	return clamp01(quality)
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
