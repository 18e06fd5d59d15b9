package game

import (
	"math/rand"
	"sort"

	"github.com/pthm-cable/gridiron/neural"
	"github.com/pthm-cable/gridiron/team"
)

// Strategy decides which rosters breed and how the next population is built.
type Strategy interface {
	Name() string
	// Select picks breeders from ended plays.
	Select(plays []*Play) (offense, defense []*team.Roster)
	// Reproduce builds the next population for one side from its breeders.
	Reproduce(rng *rand.Rand, breeders []*team.Roster) []*team.Roster
}

// Truncation ranks plays by points and keeps the top half's offenses and the
// bottom half's defenses. Each breeder survives unchanged and contributes one
// mutated clone.
type Truncation struct {
	Mutation neural.MutationConfig
}

// Name implements Strategy.
func (Truncation) Name() string { return "truncation" }

// Select implements Strategy. Ties keep play order.
func (Truncation) Select(plays []*Play) (offense, defense []*team.Roster) {
	ranked := make([]*Play, len(plays))
	copy(ranked, plays)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Points() > ranked[j].Points()
	})

	half := len(ranked) / 2
	offense = make([]*team.Roster, 0, half)
	defense = make([]*team.Roster, 0, len(ranked)-half)
	for _, p := range ranked[:half] {
		offense = append(offense, p.Offense)
	}
	for _, p := range ranked[half:] {
		defense = append(defense, p.Defense)
	}
	return offense, defense
}

// Reproduce implements Strategy.
func (t Truncation) Reproduce(rng *rand.Rand, breeders []*team.Roster) []*team.Roster {
	next := make([]*team.Roster, 0, 2*len(breeders))
	next = append(next, breeders...)
	for _, b := range breeders {
		child := b.Clone()
		child.MutateAll(rng, t.Mutation)
		next = append(next, child)
	}
	return next
}
