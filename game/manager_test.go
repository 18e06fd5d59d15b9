package game

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/pthm-cable/gridiron/config"
	"github.com/pthm-cable/gridiron/team"
)

func smallConfig() *config.Config {
	cfg := config.Default()
	cfg.Population.Size = 6
	cfg.Population.TickBudget = 60
	return cfg
}

func newTestManager(t *testing.T, cfg *config.Config, seed int64) *Manager {
	t.Helper()
	m, err := NewManager(cfg, rand.New(rand.NewSource(seed)), Options{RunID: "test"})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func TestNewManagerRejectsBadPopulation(t *testing.T) {
	for _, n := range []int{0, 1, 5, -2} {
		cfg := smallConfig()
		cfg.Population.Size = n
		_, err := NewManager(cfg, rand.New(rand.NewSource(1)), Options{})
		if !errors.Is(err, config.ErrInvalidConfig) {
			t.Errorf("size %d: error = %v, want ErrInvalidConfig", n, err)
		}
	}
}

func TestStartGenerationPairsEveryRosterOnce(t *testing.T) {
	m := newTestManager(t, smallConfig(), 1)
	if err := m.StartGeneration(); err != nil {
		t.Fatal(err)
	}

	plays := m.Plays()
	if len(plays) != 6 {
		t.Fatalf("got %d plays, want 6", len(plays))
	}
	offUsed := make(map[*team.Roster]int)
	defUsed := make(map[*team.Roster]int)
	for _, p := range plays {
		offUsed[p.Offense]++
		defUsed[p.Defense]++
		if p.Status() != StatusSetup {
			t.Errorf("new play status = %v", p.Status())
		}
	}
	for _, r := range m.Offense() {
		if offUsed[r] != 1 {
			t.Errorf("offense roster used %d times", offUsed[r])
		}
	}
	for _, r := range m.Defense() {
		if defUsed[r] != 1 {
			t.Errorf("defense roster used %d times", defUsed[r])
		}
	}
	if m.Scene().Play() != plays[0] || m.Scene().Len() != 6 {
		t.Errorf("scene watches %p with %d agents", m.Scene().Play(), m.Scene().Len())
	}
}

func TestStepRespectsBudget(t *testing.T) {
	cfg := smallConfig()
	cfg.Population.TickBudget = 5
	m := newTestManager(t, cfg, 2)

	if m.Step() {
		t.Fatal("Step before StartGeneration should do nothing")
	}
	if err := m.StartGeneration(); err != nil {
		t.Fatal(err)
	}
	steps := 0
	for m.Step() {
		steps++
	}
	if steps > 5 || m.Tick() != steps {
		t.Errorf("ran %d steps (tick %d), budget 5", steps, m.Tick())
	}
	for _, p := range m.Plays() {
		// The first step only places the rosters
		if p.Ticks() > 4 {
			t.Errorf("play ran %d ticks", p.Ticks())
		}
	}
}

func TestRunGenerationKeepsPopulationSize(t *testing.T) {
	cfg := smallConfig()
	m := newTestManager(t, cfg, 3)

	for g := 0; g < 4; g++ {
		prevOff := make(map[*team.Roster]bool)
		prevDef := make(map[*team.Roster]bool)
		for _, r := range m.Offense() {
			prevOff[r] = true
		}
		for _, r := range m.Defense() {
			prevDef[r] = true
		}

		res, err := m.RunGeneration(context.Background())
		if err != nil {
			t.Fatalf("generation %d: %v", g, err)
		}

		if len(m.Offense()) != cfg.Population.Size || len(m.Defense()) != cfg.Population.Size {
			t.Fatalf("generation %d: population %d/%d, want %d", g, len(m.Offense()), len(m.Defense()), cfg.Population.Size)
		}

		carried := 0
		for _, r := range m.Offense() {
			if prevOff[r] {
				carried++
			}
		}
		if carried != cfg.Population.Size/2 {
			t.Errorf("generation %d: %d offense breeders carried over, want %d", g, carried, cfg.Population.Size/2)
		}
		carried = 0
		for _, r := range m.Defense() {
			if prevDef[r] {
				carried++
			}
		}
		if carried != cfg.Population.Size/2 {
			t.Errorf("generation %d: %d defense breeders carried over, want %d", g, carried, cfg.Population.Size/2)
		}

		s := res.Stats
		if s.Generation != g || s.RunID != "test" || s.Strategy != "truncation" {
			t.Errorf("stats identity = %d/%q/%q", s.Generation, s.RunID, s.Strategy)
		}
		if s.Plays != 6 || s.Scores+s.Tackles+s.Timeouts != 6 {
			t.Errorf("outcomes %d+%d+%d over %d plays", s.Scores, s.Tackles, s.Timeouts, s.Plays)
		}
		if len(res.Plays) != 6 {
			t.Errorf("got %d play records", len(res.Plays))
		}
		for _, rec := range res.Plays {
			if rec.Points != 0 && rec.Points != cfg.Play.ScorePoints {
				t.Errorf("play %d scored %d points", rec.Play, rec.Points)
			}
			if rec.Outcome == "none" {
				t.Errorf("play %d never ended", rec.Play)
			}
		}
		if m.Plays() != nil {
			t.Error("plays should be cleared after the generation")
		}
	}
	if m.Generation() != 4 {
		t.Errorf("Generation() = %d, want 4", m.Generation())
	}
}

func TestRunGenerationDeterministic(t *testing.T) {
	run := func() []int {
		m := newTestManager(t, smallConfig(), 42)
		var out []int
		for g := 0; g < 3; g++ {
			res, err := m.RunGeneration(context.Background())
			if err != nil {
				t.Fatal(err)
			}
			out = append(out, res.Stats.Scores, res.Stats.Tackles, res.Stats.Ticks)
			for _, rec := range res.Plays {
				out = append(out, rec.Ticks)
			}
		}
		return out
	}

	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("runs differ in length: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("seeded runs diverge at %d: %v vs %v", i, a, b)
		}
	}
}

func TestRunGenerationCancelled(t *testing.T) {
	m := newTestManager(t, smallConfig(), 5)
	before := m.Offense()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.RunGeneration(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if m.Generation() != 0 {
		t.Errorf("generation advanced to %d", m.Generation())
	}
	for i, r := range m.Offense() {
		if r != before[i] {
			t.Fatal("cancelled generation replaced the population")
		}
	}
}

func TestOnStepAndSceneSync(t *testing.T) {
	cfg := smallConfig()
	calls := 0
	m, err := NewManager(cfg, rand.New(rand.NewSource(6)), Options{
		OnStep: func(mm *Manager) {
			calls++
			watched := mm.Scene().Play()
			want := watched.Sprites()
			got := mm.Scene().Sprites()
			if len(got) != len(want) {
				t.Fatalf("scene has %d sprites, play has %d", len(got), len(want))
			}
			for i := range want {
				if got[i] != want[i] {
					t.Fatalf("tick %d sprite %d: scene %+v, play %+v", mm.Tick(), i, got[i], want[i])
				}
			}
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := m.RunGeneration(context.Background()); err != nil {
		t.Fatal(err)
	}
	if calls == 0 {
		t.Error("OnStep never called")
	}
}

func TestEndGenerationBeforeStart(t *testing.T) {
	m := newTestManager(t, smallConfig(), 7)
	if _, err := m.EndGeneration(); err == nil {
		t.Error("EndGeneration before StartGeneration should fail")
	}
}
