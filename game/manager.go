// Package game runs scrimmages between evolving offense and defense rosters.
package game

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/gridiron/components"
	"github.com/pthm-cable/gridiron/config"
	"github.com/pthm-cable/gridiron/neural"
	"github.com/pthm-cable/gridiron/team"
	"github.com/pthm-cable/gridiron/telemetry"
)

// Options configures a Manager beyond what the config file holds.
type Options struct {
	// Strategy selects and reproduces rosters. Defaults to Truncation
	// with the configured mutation.
	Strategy Strategy

	// RunID is stamped on every telemetry record.
	RunID string

	// OnStep, if set, is called after every manager step.
	OnStep func(m *Manager)
}

// Result is what a finished generation produced.
type Result struct {
	Stats telemetry.GenerationStats
	Plays []telemetry.PlayRecord
	Perf  telemetry.PerfStats
}

// Manager owns both populations and runs them through generations of plays.
type Manager struct {
	cfg      *config.Config
	rng      *rand.Rand
	strategy Strategy
	onStep   func(m *Manager)

	field Field
	rules Rules

	offense []*team.Roster
	defense []*team.Roster
	plays   []*Play

	generation int
	tick       int

	scene     *Scene
	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
}

// NewManager builds N random rosters per side. N must be even and at least 2.
func NewManager(cfg *config.Config, rng *rand.Rand, opts Options) (*Manager, error) {
	n := cfg.Population.Size
	if n < 2 || n%2 != 0 {
		return nil, fmt.Errorf("%w: population.size must be even and >= 2, got %d", config.ErrInvalidConfig, n)
	}
	if cfg.Population.TickBudget <= 0 {
		return nil, fmt.Errorf("%w: population.tick_budget must be positive", config.ErrInvalidConfig)
	}

	strategy := opts.Strategy
	if strategy == nil {
		strategy = Truncation{Mutation: neural.MutationConfig{
			Rate:           cfg.Mutation.Rate,
			Magnitude:      cfg.Mutation.Magnitude,
			FirstLayerOnly: cfg.Mutation.FirstLayerOnly,
		}}
	}

	m := &Manager{
		cfg:      cfg,
		rng:      rng,
		strategy: strategy,
		onStep:   opts.OnStep,
		field:    NewField(cfg),
		rules: Rules{
			AgentSize:      cfg.Field.AgentSize,
			HitBoxRatio:    cfg.Play.HitBoxRatio,
			PushMultiplier: cfg.Play.PushMultiplier,
			ScorePoints:    cfg.Play.ScorePoints,
		},
		offense:   make([]*team.Roster, 0, n),
		defense:   make([]*team.Roster, 0, n),
		scene:     NewScene(),
		collector: telemetry.NewCollector(opts.RunID),
		perf:      telemetry.NewPerfCollector(),
	}

	for i := 0; i < n; i++ {
		off, err := team.NewRoster(rng, components.SideOffense, cfg.Offense, cfg.Derived.OffenseLayers)
		if err != nil {
			return nil, fmt.Errorf("building offense: %w", err)
		}
		def, err := team.NewRoster(rng, components.SideDefense, cfg.Defense, cfg.Derived.DefenseLayers)
		if err != nil {
			return nil, fmt.Errorf("building defense: %w", err)
		}
		m.offense = append(m.offense, off)
		m.defense = append(m.defense, def)
	}

	slog.Debug("manager_created",
		"population", n,
		"strategy", strategy.Name(),
		"offense_layers", cfg.Derived.OffenseLayers,
		"defense_layers", cfg.Derived.DefenseLayers,
	)
	return m, nil
}

// StartGeneration shuffles both populations independently and pairs them into plays.
func (m *Manager) StartGeneration() error {
	off := m.shuffled(m.offense)
	def := m.shuffled(m.defense)

	plays := make([]*Play, len(off))
	for i := range off {
		p, err := NewPlay(m.rng, off[i], def[i], m.field, m.rules)
		if err != nil {
			return fmt.Errorf("pairing play %d: %w", i, err)
		}
		plays[i] = p
	}
	m.plays = plays
	m.tick = 0

	m.collector.Begin(m.generation)
	m.perf.Reset()
	if w := m.cfg.Telemetry.WatchPlay; w >= 0 && w < len(plays) {
		m.scene.Watch(plays[w])
	}

	slog.Info("generation", "index", m.generation, "plays", len(plays))
	return nil
}

func (m *Manager) shuffled(rosters []*team.Roster) []*team.Roster {
	out := make([]*team.Roster, len(rosters))
	copy(out, rosters)
	m.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// Step updates every play once. It returns false without doing anything once the
// tick budget is spent or every play has ended.
func (m *Manager) Step() bool {
	if m.plays == nil || m.tick >= m.cfg.Population.TickBudget || m.allEnded() {
		return false
	}

	m.perf.StartStep()
	m.perf.StartPhase(telemetry.PhasePlays)
	for _, p := range m.plays {
		p.Update()
	}
	m.tick++

	m.perf.StartPhase(telemetry.PhaseScene)
	m.scene.Sync()
	m.perf.EndStep()

	if m.onStep != nil {
		m.onStep(m)
	}
	return true
}

func (m *Manager) allEnded() bool {
	for _, p := range m.plays {
		if p.Status() != StatusEnded {
			return false
		}
	}
	return true
}

// EndGeneration times out unfinished plays, breeds the next populations and
// reports the generation.
func (m *Manager) EndGeneration() (Result, error) {
	if m.plays == nil {
		return Result{}, fmt.Errorf("ending generation %d: not started", m.generation)
	}

	m.perf.StartPhase(telemetry.PhaseEvolve)
	for i, p := range m.plays {
		p.Timeout()

		var carrierPos components.Position
		if c := p.Offense.Carrier(); c != nil {
			carrierPos = c.Pos
		}
		m.collector.RecordPlay(i, p.Outcome(), p.Points(), p.Ticks(), carrierPos)
		slog.Debug("play_ended",
			"generation", m.generation,
			"play", i,
			"outcome", p.Outcome().String(),
			"points", p.Points(),
			"ticks", p.Ticks(),
		)
	}

	offBreeders, defBreeders := m.strategy.Select(m.plays)
	m.offense = m.strategy.Reproduce(m.rng, offBreeders)
	m.defense = m.strategy.Reproduce(m.rng, defBreeders)
	m.perf.EndPhase()

	if len(m.offense) != m.cfg.Population.Size || len(m.defense) != m.cfg.Population.Size {
		return Result{}, fmt.Errorf("strategy %s produced %d/%d rosters, want %d",
			m.strategy.Name(), len(m.offense), len(m.defense), m.cfg.Population.Size)
	}

	stats, records := m.collector.Flush(m.tick, m.strategy.Name())
	res := Result{Stats: stats, Plays: records, Perf: m.perf.Stats()}

	m.plays = nil
	m.generation++
	return res, nil
}

// RunGeneration runs one full generation: pairing, ticks until every play ends
// or the budget runs out, then selection and reproduction. Cancellation is
// checked between ticks and leaves the populations untouched.
func (m *Manager) RunGeneration(ctx context.Context) (Result, error) {
	if err := m.StartGeneration(); err != nil {
		return Result{}, err
	}
	for m.Step() {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
	}
	return m.EndGeneration()
}

// Generation returns the index of the current (or next) generation.
func (m *Manager) Generation() int { return m.generation }

// Tick returns the number of steps run in the current generation.
func (m *Manager) Tick() int { return m.tick }

// Plays returns the current generation's plays, or nil between generations.
func (m *Manager) Plays() []*Play { return m.plays }

// Offense returns the offense population.
func (m *Manager) Offense() []*team.Roster { return m.offense }

// Defense returns the defense population.
func (m *Manager) Defense() []*team.Roster { return m.defense }

// Scene returns the mirror of the watched play.
func (m *Manager) Scene() *Scene { return m.scene }

// Field returns the field geometry.
func (m *Manager) Field() Field { return m.field }

// Strategy returns the selection strategy in use.
func (m *Manager) Strategy() Strategy { return m.strategy }
