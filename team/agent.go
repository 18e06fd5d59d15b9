// Package team holds agents and the fixed-composition rosters they play in.
package team

import (
	"github.com/pthm-cable/gridiron/components"
	"github.com/pthm-cable/gridiron/neural"
	"github.com/pthm-cable/gridiron/systems"
)

// Agent is one player: physical stats from its role, kinematic state, and the
// network that controls it.
type Agent struct {
	ID   int // unique within the roster, also the agent's sensory slot on the opposing side
	Role string
	Side components.Side

	Speed    float64 // immutable, from the role table
	Strength float64 // immutable, from the role table

	Pos     components.Position
	Heading float64 // degrees in [0, 360)
	HasBall bool

	// Inputs is the sensory vector: a (distance, bearing) pair per opponent
	// followed by a pair per field reference point.
	Inputs []float64
	Brain  *neural.Network
}

// SetOpponentDistance writes the normalized distance to the opponent with the given id.
// The play computes each pair's distance once and writes it to both agents.
func (a *Agent) SetOpponentDistance(opponentID int, d float64) {
	a.Inputs[2*opponentID] = d
}

// SenseBearings writes the bearing slot for every opponent.
func (a *Agent) SenseBearings(opponents []*Agent) {
	for _, o := range opponents {
		a.Inputs[2*o.ID+1] = systems.Bearing(a.Pos, a.Heading, o.Pos)
	}
}

// SenseReferences writes distance and bearing for each reference point into the
// trailing slots, in order.
func (a *Agent) SenseReferences(refs []components.Position, maxDistance float64) {
	base := len(a.Inputs) - 2*len(refs)
	for k, p := range refs {
		a.Inputs[base+2*k] = systems.NormalizedDistance(a.Pos, p, maxDistance)
		a.Inputs[base+2*k+1] = systems.Bearing(a.Pos, a.Heading, p)
	}
}

// Sense recomputes the whole sensory vector against opponents and reference points.
func (a *Agent) Sense(opponents []*Agent, refs []components.Position, maxDistance float64) {
	for _, o := range opponents {
		a.SetOpponentDistance(o.ID, systems.NormalizedDistance(a.Pos, o.Pos, maxDistance))
	}
	a.SenseBearings(opponents)
	a.SenseReferences(refs, maxDistance)
}

// DecideAndMove feeds the sensory vector through the network, turns, and moves.
// The turn rate is twice the agent's speed. The external force only applies on
// ticks where the agent chooses to move.
func (a *Agent) DecideAndMove(bounds systems.Bounds, force components.Vector) {
	out := a.Brain.Feedforward(a.Inputs)
	move, turn := out[0], out[1]

	a.Heading = systems.Turn(a.Heading, turn, 2*a.Speed)

	if move > systems.MoveAbove {
		step := systems.MovementVector(a.Speed, a.Heading)
		a.Pos = systems.Step(a.Pos, step, force, bounds)
	}
}

// Push is the movement vector the agent applies to a weaker opponent it runs into:
// its strength along its heading.
func (a *Agent) Push() components.Vector {
	return systems.MovementVector(a.Strength, a.Heading)
}

// Box returns the agent's bounding box.
func (a *Agent) Box(size float64) systems.Rect {
	return systems.BoxAround(a.Pos, size)
}

// FaceCorners returns the two front corners of the agent's box.
func (a *Agent) FaceCorners(size float64) (components.Position, components.Position) {
	return systems.FaceCorners(a.Pos, a.Heading, size)
}

// View returns the read-only state a renderer needs.
func (a *Agent) View() components.Sprite {
	return components.Sprite{
		Side:    a.Side,
		ID:      a.ID,
		Role:    a.Role,
		X:       a.Pos.X,
		Y:       a.Pos.Y,
		Heading: a.Heading,
		HasBall: a.HasBall,
	}
}
