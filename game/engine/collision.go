package engine

import "math/rand/v2"

// Contact summarises what the collision pass found on one tick.
type Contact struct {
	Dots     int
	PowerUps int
	Captured []int
	Fatal    bool
	FatalBy  int
}

// CollisionResolver consumes pickups and settles ghost contact. Dots and
// power-ups are handled before ghosts, so a power-up eaten on the same tick
// a ghost is touched already protects Pac-Man.
type CollisionResolver struct {
	grid  *GridMap
	rules Rules
	rng   *rand.Rand
}

// NewCollisionResolver creates a resolver for a grid and rule set.
func NewCollisionResolver(grid *GridMap, rules Rules, rng *rand.Rand) *CollisionResolver {
	return &CollisionResolver{grid: grid, rules: rules, rng: rng}
}

// PickupRadius is the pixel distance within which pickups are eaten.
func (r *CollisionResolver) PickupRadius() float64 {
	return PickupRadiusFactor * float64(r.grid.CellSize())
}

// GhostRadius is the pixel distance within which Pac-Man touches a ghost.
func (r *CollisionResolver) GhostRadius() float64 {
	return GhostRadiusFactor * float64(r.grid.CellSize())
}

// Resolve applies one tick of collisions to the state. It does not end the
// game; the caller acts on Contact.Fatal.
func (r *CollisionResolver) Resolve(s *GameState) Contact {
	var c Contact
	pac := s.Pacman.Pos

	s.Dots = r.consume(s.Dots, pac, func() {
		c.Dots++
		s.Score += r.rules.PickupScore
		s.DotsEaten++
	})

	s.PowerUps = r.consume(s.PowerUps, pac, func() {
		c.PowerUps++
		for _, gh := range s.Ghosts {
			gh.FearTicks = r.rules.FearTicks
		}
	})

	for _, gh := range s.Ghosts {
		if Distance(pac, gh.Pos) > r.GhostRadius() {
			continue
		}
		if gh.Feared() {
			spawns := r.grid.spawns
			gh.sendHome(r.grid.PixelOf(spawns[r.rng.IntN(len(spawns))]))
			s.Score += r.rules.GhostScore
			s.GhostsEaten++
			c.Captured = append(c.Captured, gh.ID)
			continue
		}
		c.Fatal = true
		c.FatalBy = gh.ID
		break
	}

	return c
}

// consume removes every cell within pickup range of pac, keeping order.
func (r *CollisionResolver) consume(cells []Cell, pac Position, eaten func()) []Cell {
	radius := r.PickupRadius()
	kept := cells[:0]
	for _, cell := range cells {
		if Distance(pac, r.grid.PixelOf(cell)) <= radius {
			eaten()
			continue
		}
		kept = append(kept, cell)
	}
	return kept
}
