package components

// Position represents an agent's field position (screen units, Y grows downward).
type Position struct {
	X, Y float64
}

// Vector is a 2-D displacement, used for movement steps and external forces.
type Vector struct {
	X, Y float64
}

// Add returns v + o.
func (v Vector) Add(o Vector) Vector {
	return Vector{X: v.X + o.X, Y: v.Y + o.Y}
}

// Scale returns v * k.
func (v Vector) Scale(k float64) Vector {
	return Vector{X: v.X * k, Y: v.Y * k}
}

// Facing represents an agent's heading in degrees, counter-clockwise from +X
// as seen on screen (90 points toward smaller Y).
type Facing struct {
	Degrees float64
}
