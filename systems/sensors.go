package systems

import (
	"math"

	"github.com/pthm-cable/gridiron/components"
)

// NormalizedDistance returns the distance between a and b divided by maxDistance.
// Points inside the field give values in [0, 1].
func NormalizedDistance(a, b components.Position, maxDistance float64) float64 {
	if maxDistance <= 0 {
		return 0
	}
	return distance(a.X, a.Y, b.X, b.Y) / maxDistance
}

// Bearing returns the signed angle from the facing direction of an agent at
// from with the given heading to the point to, in half-turns: [-1, 1].
// It uses atan2 of the cross and dot products, so it is defined for every
// input; a target at the agent's own position reads 0.
func Bearing(from components.Position, heading float64, to components.Position) float64 {
	rad := heading * math.Pi / 180
	vx, vy := math.Cos(rad), -math.Sin(rad)
	dx, dy := to.X-from.X, to.Y-from.Y

	dot := vx*dx + vy*dy
	cross := vx*dy - vy*dx
	return clampUnit(math.Atan2(cross, dot) / math.Pi)
}
