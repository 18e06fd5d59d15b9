// Package main tunes mutation and contact parameters with CMA-ES so that
// neither side runs away with the arms race.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/gridiron/config"
)

// formatDuration renders d as 1h02m03s, or 2m03s under an hour.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h, m, s := int(d.Hours()), int(d.Minutes())%60, int(d.Seconds())%60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

// evalLog records every evaluation to optimize_log.csv and remembers the best.
type evalLog struct {
	w        *csv.Writer
	params   *ParamVector
	maxEvals int
	start    time.Time

	count       int
	bestFitness float64
	best        []float64
}

func newEvalLog(f *os.File, params *ParamVector, maxEvals int) (*evalLog, error) {
	l := &evalLog{
		w:           csv.NewWriter(f),
		params:      params,
		maxEvals:    maxEvals,
		start:       time.Now(),
		bestFitness: 1e9,
	}
	header := []string{"eval", "fitness", "quality"}
	for _, s := range params.Specs {
		header = append(header, s.Name)
	}
	if err := l.w.Write(header); err != nil {
		return nil, err
	}
	l.w.Flush()
	return l, l.w.Error()
}

// record logs one evaluation of values (already clamped).
func (l *evalLog) record(values []float64, fitness, quality float64) {
	l.count++
	if fitness < l.bestFitness {
		l.bestFitness = fitness
		l.best = values
	}

	row := []string{strconv.Itoa(l.count), strconv.FormatFloat(fitness, 'f', 6, 64), strconv.FormatFloat(quality, 'f', 6, 64)}
	for _, v := range values {
		row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
	}
	if err := l.w.Write(row); err != nil {
		log.Printf("writing eval %d: %v", l.count, err)
	}
	l.w.Flush()

	elapsed := time.Since(l.start)
	eta := time.Duration(l.maxEvals-l.count) * (elapsed / time.Duration(l.count))
	fmt.Printf("Eval %d/%d: quality=%.3f (best=%.3f) | elapsed: %s, ETA: %s\n",
		l.count, l.maxEvals, quality, -l.bestFitness, formatDuration(elapsed), formatDuration(eta))
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	generations := flag.Int("generations", 20, "Generations per evaluation run")
	population := flag.Int("population", 60, "Rosters per side during evaluation (0 = use config)")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 100, "Maximum number of evaluations")
	cmaPopulation := flag.Int("cma-population", 0, "CMA-ES population size (0 = 4 + 1.5*dim)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}
	if _, err := config.Load(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	params := NewParamVector()
	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, *configPath, *generations, *population, evalSeeds)

	logFile, err := os.Create(filepath.Join(*outputDir, "optimize_log.csv"))
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()
	evals, err := newEvalLog(logFile, params, *maxEvals)
	if err != nil {
		log.Fatalf("failed to write log header: %v", err)
	}

	// CMA-ES works in the unit cube; evaluations see clamped config values
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			values := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(values)
			evals.record(values, fitness, evaluator.LastQuality())
			return fitness
		},
	}

	popSize := *cmaPopulation
	if popSize == 0 {
		popSize = 4 + 3*params.Dim()/2
	}
	method := &optimize.CmaEsChol{InitStepSize: 0.3, Population: popSize}
	settings := &optimize.Settings{FuncEvaluations: *maxEvals}

	fmt.Printf("Starting CMA-ES optimization with %d parameters, population=%d, max_evals=%d\n",
		params.Dim(), popSize, *maxEvals)
	fmt.Printf("Seeds per evaluation: %d, generations per run: %d\n", *seeds, *generations)

	result, err := optimize.Minimize(problem, params.Normalize(params.DefaultVector()), settings, method)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}

	best := evals.best
	if best == nil && result != nil {
		best = params.Clamp(params.Denormalize(result.X))
	}
	if best == nil {
		log.Fatal("no evaluation completed")
	}

	fmt.Printf("\nOptimization complete after %d evaluations in %s\n", evals.count, formatDuration(time.Since(evals.start)))
	fmt.Printf("Best quality: %.3f\n\nBest parameters:\n", -evals.bestFitness)
	for i, s := range params.Specs {
		fmt.Printf("  %s (%s): %.6f\n", s.Name, s.Path, best[i])
	}

	bestCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to reload config: %v", err)
	}
	params.ApplyToConfig(bestCfg, best)

	out := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(out); err != nil {
		log.Fatalf("failed to write best config: %v", err)
	}
	fmt.Printf("\nBest config saved to: %s\n", out)
}
