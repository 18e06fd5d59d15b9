package game

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/gridiron/components"
	"github.com/pthm-cable/gridiron/config"
	"github.com/pthm-cable/gridiron/neural"
	"github.com/pthm-cable/gridiron/team"
)

func testRosters(t *testing.T, rng *rand.Rand, side components.Side, n int) []*team.Roster {
	t.Helper()
	cfg := config.Default()
	table, layers := cfg.Offense, cfg.Derived.OffenseLayers
	if side == components.SideDefense {
		table, layers = cfg.Defense, cfg.Derived.DefenseLayers
	}
	out := make([]*team.Roster, n)
	for i := range out {
		r, err := team.NewRoster(rng, side, table, layers)
		if err != nil {
			t.Fatal(err)
		}
		out[i] = r
	}
	return out
}

func TestTruncationSelect(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	off := testRosters(t, rng, components.SideOffense, 6)
	def := testRosters(t, rng, components.SideDefense, 6)

	points := []int{0, 7, 0, 7, 7, 0}
	plays := make([]*Play, len(points))
	for i, pts := range points {
		plays[i] = &Play{Offense: off[i], Defense: def[i], points: pts, status: StatusEnded}
	}

	offBreeders, defBreeders := Truncation{}.Select(plays)

	wantOff := []*team.Roster{off[1], off[3], off[4]}
	wantDef := []*team.Roster{def[0], def[2], def[5]}
	if len(offBreeders) != 3 || len(defBreeders) != 3 {
		t.Fatalf("got %d/%d breeders, want 3/3", len(offBreeders), len(defBreeders))
	}
	for i := range wantOff {
		if offBreeders[i] != wantOff[i] {
			t.Errorf("offense breeder %d is not from a scoring play", i)
		}
		if defBreeders[i] != wantDef[i] {
			t.Errorf("defense breeder %d is not from a held play", i)
		}
	}

	// Every play contributes exactly one breeder
	seen := make(map[*Play]int)
	for _, p := range plays {
		for _, b := range offBreeders {
			if b == p.Offense {
				seen[p]++
			}
		}
		for _, b := range defBreeders {
			if b == p.Defense {
				seen[p]++
			}
		}
	}
	for i, p := range plays {
		if seen[p] != 1 {
			t.Errorf("play %d contributed %d breeders, want 1", i, seen[p])
		}
	}

	// Input order is untouched
	if plays[0].Points() != 0 || plays[1].Points() != 7 {
		t.Error("Select reordered its input")
	}
}

func TestTruncationReproduce(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	breeders := testRosters(t, rng, components.SideDefense, 3)
	strat := Truncation{Mutation: neural.MutationConfig{Rate: 1, Magnitude: 3, FirstLayerOnly: true}}

	next := strat.Reproduce(rng, breeders)
	if len(next) != 6 {
		t.Fatalf("got %d rosters, want 6", len(next))
	}
	for i, b := range breeders {
		if next[i] != b {
			t.Errorf("breeder %d not carried over by reference", i)
		}
		child := next[len(breeders)+i]
		if child == b {
			t.Errorf("child %d is its parent", i)
		}
		if child.Agents[0].Brain.Weights()[0][0] == b.Agents[0].Brain.Weights()[0][0] {
			t.Errorf("child %d was not mutated", i)
		}
		if child.Side != components.SideDefense || child.Len() != b.Len() {
			t.Errorf("child %d has side %v and %d agents", i, child.Side, child.Len())
		}
	}
	if strat.Name() != "truncation" {
		t.Errorf("Name() = %q", strat.Name())
	}
}
