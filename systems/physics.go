// Package systems holds the geometry, sensing and movement rules shared by agents and plays.
package systems

import (
	"math"

	"github.com/pthm-cable/gridiron/components"
)

// Turn thresholds on the turn output. Between them is a dead zone.
const (
	TurnLeftBelow  = 0.25
	TurnRightAbove = 0.75
	MoveAbove      = 0.5
)

// MovementVector returns a vector of the given length along heading (degrees).
// Screen Y grows downward, so a heading of 90 points toward smaller Y.
func MovementVector(length, heading float64) components.Vector {
	rad := heading * math.Pi / 180
	return components.Vector{
		X: math.Cos(rad) * length,
		Y: -math.Sin(rad) * length,
	}
}

// Turn returns the new heading for a turn output. Below TurnLeftBelow the
// heading increases by rate, above TurnRightAbove it decreases, otherwise unchanged.
func Turn(heading, signal, rate float64) float64 {
	switch {
	case signal < TurnLeftBelow:
		return WrapDegrees(heading + rate)
	case signal > TurnRightAbove:
		return WrapDegrees(heading - rate)
	default:
		return heading
	}
}

// Bounds is the open region agents may occupy.
type Bounds struct {
	Left, Right float64 // X must stay strictly inside
	MaxHeight   float64 // Y must stay strictly inside (0, MaxHeight)
}

// Step proposes pos + step + force and commits each axis independently, only
// when it stays strictly inside the bounds. A rejected axis keeps its old value.
func Step(pos components.Position, step, force components.Vector, b Bounds) components.Position {
	x := pos.X + step.X + force.X
	y := pos.Y + step.Y + force.Y
	if x > b.Left && x < b.Right {
		pos.X = x
	}
	if y > 0 && y < b.MaxHeight {
		pos.Y = y
	}
	return pos
}
