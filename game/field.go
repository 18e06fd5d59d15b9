package game

import (
	"math"

	"github.com/pthm-cable/gridiron/components"
	"github.com/pthm-cable/gridiron/config"
	"github.com/pthm-cable/gridiron/systems"
)

// Field is the resolved geometry of the playing field in screen units.
// Screen Y grows downward; the offense drives toward smaller Y.
type Field struct {
	Left, Right float64
	Height      float64

	ScoreLine  float64 // offense scores when the ball carrier reaches it
	SafetyLine float64
	Scrimmage  float64

	OffenseStart float64 // formation line for the offense
	DefenseStart float64 // formation line for the defense

	// MaxDistance normalizes every sensed distance: the diagonal between
	// the score line and the safety line.
	MaxDistance float64

	yardsTotal float64
}

// NewField resolves yard lines from the configuration.
func NewField(cfg *config.Config) Field {
	f := Field{
		Left:       cfg.Field.Left,
		Right:      cfg.Field.Left + cfg.Field.Width,
		Height:     cfg.Field.Height,
		yardsTotal: cfg.Play.YardsTotal,
	}
	off := cfg.Play.YardOffset
	f.ScoreLine = f.YardToY(cfg.Play.ScoreYard, 0)
	f.SafetyLine = f.YardToY(cfg.Play.SafetyYard, 0)
	f.Scrimmage = f.YardToY(cfg.Play.ScrimmageYard, off)
	f.OffenseStart = f.YardToY(cfg.Offense.StartYard, off)
	f.DefenseStart = f.YardToY(cfg.Defense.StartYard, off)

	span := f.SafetyLine - f.ScoreLine
	f.MaxDistance = math.Sqrt(cfg.Field.Width*cfg.Field.Width + span*span)
	return f
}

// YardToY converts a yard line to screen Y.
func (f Field) YardToY(yard, offset float64) float64 {
	return (yard + offset) * f.Height / f.yardsTotal
}

// Width returns the distance between the sidelines.
func (f Field) Width() float64 {
	return f.Right - f.Left
}

// Bounds returns the open region agents may occupy.
func (f Field) Bounds() systems.Bounds {
	return systems.Bounds{Left: f.Left, Right: f.Right, MaxHeight: f.Height}
}

// References returns the reference points every agent senses, in slot order:
// the left and right sideline corners of the score line.
func (f Field) References() []components.Position {
	return []components.Position{
		{X: f.Left, Y: f.ScoreLine},
		{X: f.Right, Y: f.ScoreLine},
	}
}
