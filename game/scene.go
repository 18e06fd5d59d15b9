package game

import (
	"sort"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/gridiron/components"
	"github.com/pthm-cable/gridiron/team"
)

// Scene mirrors one watched play into an ECS world, one entity per agent,
// so a renderer can query positions without touching the simulation.
type Scene struct {
	world *ecs.World

	mapper *ecs.Map3[components.Position, components.Facing, components.Marker]
	filter *ecs.Filter3[components.Position, components.Facing, components.Marker]

	entities []ecs.Entity
	play     *Play
}

// NewScene creates an empty scene.
func NewScene() *Scene {
	world := ecs.NewWorld()
	return &Scene{
		world:  world,
		mapper: ecs.NewMap3[components.Position, components.Facing, components.Marker](world),
		filter: ecs.NewFilter3[components.Position, components.Facing, components.Marker](world),
	}
}

// Watch replaces the mirrored play. Entities of the previous play are removed
// from the world.
func (s *Scene) Watch(p *Play) {
	for _, e := range s.entities {
		if s.world.Alive(e) {
			s.world.RemoveEntity(e)
		}
	}
	s.entities = s.entities[:0]
	s.play = p
	if p == nil {
		return
	}

	for _, r := range []*team.Roster{p.Offense, p.Defense} {
		for _, a := range r.Agents {
			pos := a.Pos
			facing := components.Facing{Degrees: a.Heading}
			marker := components.Marker{Side: a.Side, ID: a.ID, Role: a.Role, HasBall: a.HasBall}
			s.entities = append(s.entities, s.mapper.NewEntity(&pos, &facing, &marker))
		}
	}
}

// Sync copies the watched play's current agent state into the world.
func (s *Scene) Sync() {
	if s.play == nil {
		return
	}
	query := s.filter.Query()
	for query.Next() {
		pos, facing, marker := query.Get()
		a := s.play.agent(marker.Side, marker.ID)
		if a == nil {
			continue
		}
		*pos = a.Pos
		facing.Degrees = a.Heading
		marker.HasBall = a.HasBall
	}
}

// Play returns the watched play, or nil.
func (s *Scene) Play() *Play {
	return s.play
}

// Len returns the number of mirrored agents.
func (s *Scene) Len() int {
	return len(s.entities)
}

// Sprites queries the world for every mirrored agent, offense first, then by id.
func (s *Scene) Sprites() []components.Sprite {
	out := make([]components.Sprite, 0, len(s.entities))
	query := s.filter.Query()
	for query.Next() {
		pos, facing, marker := query.Get()
		out = append(out, components.Sprite{
			Side:    marker.Side,
			ID:      marker.ID,
			Role:    marker.Role,
			X:       pos.X,
			Y:       pos.Y,
			Heading: facing.Degrees,
			HasBall: marker.HasBall,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Side != out[j].Side {
			return out[i].Side < out[j].Side
		}
		return out[i].ID < out[j].ID
	})
	return out
}
