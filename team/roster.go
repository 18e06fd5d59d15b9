package team

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/pthm-cable/gridiron/components"
	"github.com/pthm-cable/gridiron/config"
	"github.com/pthm-cable/gridiron/neural"
)

// ErrInvalidRoster is returned (wrapped) when a role table cannot build a roster.
var ErrInvalidRoster = errors.New("invalid roster")

// Roster is the ordered set of agents for one side, built from the side's role table.
type Roster struct {
	Side   components.Side
	Agents []*Agent

	table  config.SideConfig
	layers []int
}

// NewRoster builds one agent per role slot, in table order, each with a fresh
// random network of the given layer sizes.
func NewRoster(rng *rand.Rand, side components.Side, table config.SideConfig, layers []int) (*Roster, error) {
	r, err := newEmptyRoster(side, table, layers)
	if err != nil {
		return nil, err
	}
	for _, a := range r.Agents {
		brain, err := neural.NewNetwork(rng, layers)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRoster, err)
		}
		a.Brain = brain
	}
	return r, nil
}

// newEmptyRoster lays out agents from the table without networks.
func newEmptyRoster(side components.Side, table config.SideConfig, layers []int) (*Roster, error) {
	if table.Size() == 0 {
		return nil, fmt.Errorf("%w: side %q has no agents", ErrInvalidRoster, table.Name)
	}
	if len(layers) < 2 {
		return nil, fmt.Errorf("%w: need at least two layer sizes, got %v", ErrInvalidRoster, layers)
	}

	r := &Roster{
		Side:   side,
		table:  table,
		layers: append([]int(nil), layers...),
	}
	id := 0
	for _, role := range table.Roles {
		if role.Count <= 0 || role.Speed <= 0 || role.Strength <= 0 {
			return nil, fmt.Errorf("%w: role %q", ErrInvalidRoster, role.Name)
		}
		for i := 0; i < role.Count; i++ {
			r.Agents = append(r.Agents, &Agent{
				ID:       id,
				Role:     role.Name,
				Side:     side,
				Speed:    role.Speed,
				Strength: role.Strength,
				Heading:  table.Heading,
				Inputs:   make([]float64, layers[0]),
			})
			id++
		}
	}
	return r, nil
}

// Len returns the number of agents.
func (r *Roster) Len() int {
	return len(r.Agents)
}

// Table returns the role table the roster was built from.
func (r *Roster) Table() config.SideConfig {
	return r.table
}

// Place puts every agent on the line y facing heading, at an X drawn uniformly
// from a band half the field wide starting an eighth of the field in from the
// left sideline. Ball-carrier roles receive possession.
func (r *Roster) Place(rng *rand.Rand, left, right, y, heading float64) {
	width := right - left
	carriers := r.carrierRoles()
	for _, a := range r.Agents {
		a.Pos = components.Position{
			X: left + width/8 + rng.Float64()*width/2,
			Y: y,
		}
		a.Heading = heading
		a.HasBall = carriers[a.Role]
		for i := range a.Inputs {
			a.Inputs[i] = 0
		}
	}
}

func (r *Roster) carrierRoles() map[string]bool {
	m := make(map[string]bool, len(r.table.Roles))
	for _, role := range r.table.Roles {
		if role.BallCarrier {
			m[role.Name] = true
		}
	}
	return m
}

// Carrier returns the agent holding the ball, or nil if none does.
func (r *Roster) Carrier() *Agent {
	for _, a := range r.Agents {
		if a.HasBall {
			return a
		}
	}
	return nil
}

// MutateAll mutates every agent's network.
func (r *Roster) MutateAll(rng *rand.Rand, cfg neural.MutationConfig) {
	for _, a := range r.Agents {
		a.Brain.Mutate(rng, cfg)
	}
}

// Clone returns a new roster for the same side whose agents carry deep copies
// of this roster's networks. Stats and composition come from the role table,
// not from the source agents.
func (r *Roster) Clone() *Roster {
	c, err := newEmptyRoster(r.Side, r.table, r.layers)
	if err != nil {
		// r was built from the same table and layers
		panic(fmt.Sprintf("team: cloning a valid roster: %v", err))
	}
	for i, a := range c.Agents {
		a.Brain = r.Agents[i].Brain.Clone()
	}
	return c
}

// Sprites returns the view of every agent.
func (r *Roster) Sprites() []components.Sprite {
	out := make([]components.Sprite, len(r.Agents))
	for i, a := range r.Agents {
		out[i] = a.View()
	}
	return out
}
