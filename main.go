package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/pthm-cable/gridiron/config"
	"github.com/pthm-cable/gridiron/game"
	"github.com/pthm-cable/gridiron/telemetry"
)

// options holds the parsed command line.
type options struct {
	configPath  string
	seed        int64
	generations int
	population  int
	outputDir   string
	logStats    bool
	logLevel    string
	trace       bool
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "Path to config.yaml (empty = use defaults)")
	flag.Int64Var(&opts.seed, "seed", 0, "RNG seed (0 = time-based)")
	flag.IntVar(&opts.generations, "generations", -1, "Generations to run (0 = unlimited, -1 = use config)")
	flag.IntVar(&opts.population, "population", 0, "Rosters per side, must be even (0 = use config)")
	flag.StringVar(&opts.outputDir, "output-dir", "", "Output directory for CSV logs and config snapshot")
	flag.BoolVar(&opts.logStats, "log-stats", false, "Output per-generation stats via slog")
	flag.StringVar(&opts.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.BoolVar(&opts.trace, "trace", false, "Log the watched play every tick (needs -log-level debug)")
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(opts.logLevel)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid -log-level %q: %v\n", opts.logLevel, err)
		os.Exit(2)
	}

	// Set up slog (JSON to stdout for structured logging)
	runID := uuid.New().String()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger.With("run_id", runID))

	if err := run(opts, runID); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(opts options, runID string) error {
	// Initialize config before anything else
	if err := config.Init(opts.configPath); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := config.Cfg()
	if opts.population > 0 {
		cfg.Population.Size = opts.population
	}
	if opts.generations >= 0 {
		cfg.Population.Generations = opts.generations
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("applying flags: %w", err)
	}

	rngSeed := opts.seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(rngSeed))

	om, err := telemetry.NewOutputManager(opts.outputDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := om.Close(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
	}()
	if err := om.WriteConfig(cfg); err != nil {
		return fmt.Errorf("writing config snapshot: %w", err)
	}

	gameOpts := game.Options{RunID: runID}
	if opts.trace {
		gameOpts.OnStep = func(m *game.Manager) {
			slog.Debug("frame",
				"generation", m.Generation(),
				"tick", m.Tick(),
				"sprites", m.Scene().Sprites(),
			)
			if p := m.Scene().Play(); p != nil {
				if c := p.Offense.Carrier(); c != nil {
					slog.Debug("carrier_inputs", slog.Group("inputs", c.InputAttrs(p.Defense)...))
				}
			}
		}
	}
	m, err := game.NewManager(cfg, rng, gameOpts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting simulation",
		"seed", rngSeed,
		"population", cfg.Population.Size,
		"tick_budget", cfg.Population.TickBudget,
		"generations", cfg.Population.Generations,
		"strategy", m.Strategy().Name(),
		"output_dir", om.Dir(),
	)

	r := &reporter{
		om:        om,
		bookmarks: telemetry.NewBookmarkDetector(10),
		logStats:  opts.logStats,
		logEvery:  cfg.Telemetry.LogEvery,
		runID:     runID,
	}
	start := time.Now()
	for g := 0; cfg.Population.Generations == 0 || g < cfg.Population.Generations; g++ {
		res, err := m.RunGeneration(ctx)
		if errors.Is(err, context.Canceled) {
			slog.Info("interrupted", "generation", m.Generation())
			break
		}
		if err != nil {
			return err
		}
		if err := r.report(res); err != nil {
			return err
		}
	}

	slog.Info("simulation finished",
		"generations", m.Generation(),
		"plays", humanize.Comma(int64(r.plays)),
		"scores", humanize.Comma(int64(r.scores)),
		"tackles", humanize.Comma(int64(r.tackles)),
		"timeouts", humanize.Comma(int64(r.timeouts)),
		"ticks", humanize.Comma(int64(r.ticks)),
		"elapsed", time.Since(start).Round(time.Millisecond).String(),
	)
	return nil
}

// reporter logs and persists each generation's results and keeps run totals.
type reporter struct {
	om        *telemetry.OutputManager
	bookmarks *telemetry.BookmarkDetector
	logStats  bool
	logEvery  int
	runID     string

	plays, scores, tackles, timeouts, ticks int
}

func (r *reporter) report(res game.Result) error {
	s := res.Stats
	r.plays += s.Plays
	r.scores += s.Scores
	r.tackles += s.Tackles
	r.timeouts += s.Timeouts
	r.ticks += s.Ticks

	if r.logStats && (r.logEvery <= 1 || s.Generation%r.logEvery == 0) {
		s.LogStats()
		res.Perf.LogStats()
	}

	if err := r.om.WriteGeneration(s); err != nil {
		return err
	}
	if err := r.om.WritePlays(res.Plays); err != nil {
		return err
	}
	if err := r.om.WritePerf(res.Perf, r.runID, s.Generation); err != nil {
		return err
	}

	for _, bm := range r.bookmarks.Check(s) {
		if r.logStats {
			bm.LogBookmark()
		}
		if err := r.om.WriteBookmark(bm); err != nil {
			return err
		}
	}
	return nil
}
