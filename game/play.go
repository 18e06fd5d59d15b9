package game

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/pthm-cable/gridiron/components"
	"github.com/pthm-cable/gridiron/systems"
	"github.com/pthm-cable/gridiron/team"
)

// ErrIncompatibleRosters is returned (wrapped) when two rosters cannot play each other.
var ErrIncompatibleRosters = errors.New("incompatible rosters")

// Status is the lifecycle state of a play.
type Status uint8

const (
	StatusSetup Status = iota
	StatusActive
	StatusEnded
)

func (s Status) String() string {
	switch s {
	case StatusSetup:
		return "setup"
	case StatusActive:
		return "active"
	default:
		return "ended"
	}
}

// Rules are the scrimmage constants a play is judged by.
type Rules struct {
	AgentSize      float64
	HitBoxRatio    float64
	PushMultiplier float64
	ScorePoints    int
}

// Play is one scrimmage between an offense and a defense roster.
// The first Update places both rosters; each later Update is one tick.
type Play struct {
	Offense *team.Roster
	Defense *team.Roster

	field Field
	rules Rules
	rng   *rand.Rand

	status  Status
	outcome components.Outcome
	points  int
	ticks   int
}

// NewPlay pairs two rosters on a field. Every agent's sensory vector must have
// one pair per opponent plus one pair per field reference point, and the offense
// must have exactly one ball-carrier role.
func NewPlay(rng *rand.Rand, offense, defense *team.Roster, field Field, rules Rules) (*Play, error) {
	if offense == nil || defense == nil {
		return nil, fmt.Errorf("%w: missing roster", ErrIncompatibleRosters)
	}
	refs := len(field.References())
	for _, side := range []struct {
		own, opp *team.Roster
	}{{offense, defense}, {defense, offense}} {
		want := 2*side.opp.Len() + 2*refs
		for _, a := range side.own.Agents {
			if len(a.Inputs) != want || a.Brain == nil || a.Brain.Inputs() != want {
				return nil, fmt.Errorf("%w: %s agent %d senses %d inputs, want %d",
					ErrIncompatibleRosters, side.own.Side, a.ID, len(a.Inputs), want)
			}
		}
	}
	carriers := 0
	for _, role := range offense.Table().Roles {
		if role.BallCarrier {
			carriers += role.Count
		}
	}
	if carriers != 1 {
		return nil, fmt.Errorf("%w: offense has %d ball carriers, want 1", ErrIncompatibleRosters, carriers)
	}

	return &Play{
		Offense: offense,
		Defense: defense,
		field:   field,
		rules:   rules,
		rng:     rng,
	}, nil
}

// Update advances the play. In SETUP it places both rosters and becomes ACTIVE.
// In ACTIVE it runs one tick. In ENDED it does nothing.
func (p *Play) Update() {
	switch p.status {
	case StatusSetup:
		p.setup()
	case StatusActive:
		p.tick()
	}
}

// Timeout ends an unfinished play with no points.
func (p *Play) Timeout() {
	if p.status != StatusEnded {
		p.end(components.OutcomeTimeout, 0)
	}
}

// Points returns the points earned so far: 0 unless the offense scored.
func (p *Play) Points() int { return p.points }

// Status returns the lifecycle state.
func (p *Play) Status() Status { return p.status }

// Outcome returns how the play ended, or OutcomeNone while it runs.
func (p *Play) Outcome() components.Outcome { return p.outcome }

// Ticks returns the number of ACTIVE ticks run.
func (p *Play) Ticks() int { return p.ticks }

// Field returns the geometry the play runs on.
func (p *Play) Field() Field { return p.field }

// Sprites returns the current view of every agent, offense first.
func (p *Play) Sprites() []components.Sprite {
	return append(p.Offense.Sprites(), p.Defense.Sprites()...)
}

// agent returns the agent with the given side and id, or nil.
func (p *Play) agent(side components.Side, id int) *team.Agent {
	r := p.Offense
	if side == components.SideDefense {
		r = p.Defense
	}
	if id < 0 || id >= r.Len() {
		return nil
	}
	return r.Agents[id]
}

func (p *Play) setup() {
	p.Offense.Place(p.rng, p.field.Left, p.field.Right, p.field.OffenseStart, p.Offense.Table().Heading)
	p.Defense.Place(p.rng, p.field.Left, p.field.Right, p.field.DefenseStart, p.Defense.Table().Heading)
	p.status = StatusActive
}

func (p *Play) end(outcome components.Outcome, points int) {
	p.status = StatusEnded
	p.outcome = outcome
	p.points = points
}

// tick runs sense, contact and force summing, decide-and-move, then scoring.
// A tackle ends the play before anyone moves.
func (p *Play) tick() {
	p.ticks++
	p.sense()

	contacts := p.contacts()
	carrier := p.Offense.Carrier()
	if len(contacts[carrier]) > 0 {
		p.end(components.OutcomeTackle, 0)
		return
	}

	// Forces are fixed from tick-start positions before anyone moves
	forces := make(map[*team.Agent]components.Vector, len(contacts))
	for a, opponents := range contacts {
		forces[a] = p.force(a, opponents)
	}

	bounds := p.field.Bounds()
	carrier.DecideAndMove(bounds, forces[carrier])
	for _, a := range p.Offense.Agents {
		if a != carrier {
			a.DecideAndMove(bounds, forces[a])
		}
	}
	for _, a := range p.Defense.Agents {
		a.DecideAndMove(bounds, forces[a])
	}

	if carrier.Pos.Y <= p.field.ScoreLine {
		p.end(components.OutcomeScore, p.rules.ScorePoints)
	}
}

// sense refreshes every agent's inputs. Each offense/defense distance is
// computed once and written to both agents.
func (p *Play) sense() {
	refs := p.field.References()
	maxDist := p.field.MaxDistance

	for _, o := range p.Offense.Agents {
		for _, d := range p.Defense.Agents {
			dist := systems.NormalizedDistance(o.Pos, d.Pos, maxDist)
			o.SetOpponentDistance(d.ID, dist)
			d.SetOpponentDistance(o.ID, dist)
		}
	}
	for _, o := range p.Offense.Agents {
		o.SenseBearings(p.Defense.Agents)
		o.SenseReferences(refs, maxDist)
	}
	for _, d := range p.Defense.Agents {
		d.SenseBearings(p.Offense.Agents)
		d.SenseReferences(refs, maxDist)
	}
}

// contacts maps each agent to the opponents whose scaled hit boxes overlap its own.
// Agents with no contact are absent, so a lookup yields an empty set.
func (p *Play) contacts() map[*team.Agent][]*team.Agent {
	size, ratio := p.rules.AgentSize, p.rules.HitBoxRatio
	hits := make(map[*team.Agent][]*team.Agent)
	for _, o := range p.Offense.Agents {
		ob := o.Box(size).Scaled(ratio)
		for _, d := range p.Defense.Agents {
			if ob.Overlaps(d.Box(size).Scaled(ratio)) {
				hits[o] = append(hits[o], d)
				hits[d] = append(hits[d], o)
			}
		}
	}
	return hits
}

// force sums the pushes a subject receives this tick. An opponent pushes only
// if it is strictly stronger and its front face reaches the subject's box.
func (p *Play) force(subject *team.Agent, opponents []*team.Agent) components.Vector {
	var f components.Vector
	size := p.rules.AgentSize
	box := subject.Box(size)
	for _, o := range opponents {
		if o.Strength <= subject.Strength {
			continue
		}
		l, r := o.FaceCorners(size)
		if box.ClipsSegment(l, r) {
			f = f.Add(o.Push().Scale(p.rules.PushMultiplier))
		}
	}
	return f
}
