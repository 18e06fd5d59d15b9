// Package components defines the value types shared by the simulation and its
// render-facing scene.
package components

// Side identifies which team an agent plays for.
type Side uint8

const (
	SideOffense Side = iota
	SideDefense
)

// String returns the side name.
func (s Side) String() string {
	switch s {
	case SideOffense:
		return "offense"
	case SideDefense:
		return "defense"
	default:
		return "unknown"
	}
}

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == SideOffense {
		return SideDefense
	}
	return SideOffense
}

// Marker identifies the agent an entity mirrors in the scene.
type Marker struct {
	Side    Side
	ID      int    // agent id within its roster
	Role    string // role tag from the side's role table
	HasBall bool
}

// Sprite is the read-only per-tick view of one agent, enough for a renderer to draw it.
type Sprite struct {
	Side    Side
	ID      int
	Role    string
	X, Y    float64
	Heading float64 // degrees
	HasBall bool
}

// Outcome is how a play ended.
type Outcome uint8

const (
	OutcomeNone    Outcome = iota // still running
	OutcomeScore                  // ball carrier crossed the score line
	OutcomeTackle                 // ball carrier was caught
	OutcomeTimeout                // tick budget ran out
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeScore:
		return "score"
	case OutcomeTackle:
		return "tackle"
	case OutcomeTimeout:
		return "timeout"
	default:
		return "none"
	}
}
