package systems

import (
	"math"

	"github.com/pthm-cable/gridiron/components"
)

// Rect is an axis-aligned box.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// BoxAround returns the square of the given side centered on pos.
func BoxAround(pos components.Position, size float64) Rect {
	h := size / 2
	return Rect{MinX: pos.X - h, MinY: pos.Y - h, MaxX: pos.X + h, MaxY: pos.Y + h}
}

// Scaled returns r scaled by ratio around its center.
func (r Rect) Scaled(ratio float64) Rect {
	cx, cy := (r.MinX+r.MaxX)/2, (r.MinY+r.MaxY)/2
	hw, hh := (r.MaxX-r.MinX)/2*ratio, (r.MaxY-r.MinY)/2*ratio
	return Rect{MinX: cx - hw, MinY: cy - hh, MaxX: cx + hw, MaxY: cy + hh}
}

// Overlaps reports whether the interiors of r and o intersect. Boxes that only
// share an edge do not overlap.
func (r Rect) Overlaps(o Rect) bool {
	return r.MinX < o.MaxX && o.MinX < r.MaxX && r.MinY < o.MaxY && o.MinY < r.MaxY
}

// ClipsSegment reports whether any part of segment a-b lies inside r (edges included).
// Liang-Barsky clipping.
func (r Rect) ClipsSegment(a, b components.Position) bool {
	dx, dy := b.X-a.X, b.Y-a.Y
	t0, t1 := 0.0, 1.0

	clip := func(p, q float64) bool {
		if p == 0 {
			return q >= 0
		}
		t := q / p
		if p < 0 {
			if t > t1 {
				return false
			}
			if t > t0 {
				t0 = t
			}
		} else {
			if t < t0 {
				return false
			}
			if t < t1 {
				t1 = t
			}
		}
		return true
	}

	return clip(-dx, a.X-r.MinX) &&
		clip(dx, r.MaxX-a.X) &&
		clip(-dy, a.Y-r.MinY) &&
		clip(dy, r.MaxY-a.Y) &&
		t0 <= t1
}

// FaceCorners returns the two front corners of a square agent of the given side
// facing heading: the box corners at heading+45 and heading-45 degrees.
func FaceCorners(pos components.Position, heading, size float64) (components.Position, components.Position) {
	r := math.Sqrt2 * size / 2
	left := MovementVector(r, heading+45)
	right := MovementVector(r, heading-45)
	return components.Position{X: pos.X + left.X, Y: pos.Y + left.Y},
		components.Position{X: pos.X + right.X, Y: pos.Y + right.Y}
}
