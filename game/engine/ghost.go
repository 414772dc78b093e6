package engine

import "fmt"

// GhostState is derived from a ghost's fields, never stored
type GhostState int

const (
	StateNormal GhostState = iota
	StateSpawnExit
	StateFeared
)

func (s GhostState) String() string {
	switch s {
	case StateSpawnExit:
		return "spawn_exit"
	case StateFeared:
		return "feared"
	default:
		return "normal"
	}
}

// Ghost is one ghost agent
type Ghost struct {
	ID           int         `json:"id"`
	Pos          Position    `json:"pos"`
	Dir          Direction   `json:"dir"`
	FearTicks    int         `json:"fear_ticks"`
	InSpawn      bool        `json:"in_spawn"`
	ReleaseTicks int         `json:"release_ticks"`
	Policy       GhostPolicy `json:"-"`
}

// State returns the ghost's behaviour state. Leaving the spawn takes
// precedence over fear.
func (gh *Ghost) State() GhostState {
	switch {
	case gh.InSpawn:
		return StateSpawnExit
	case gh.FearTicks > 0:
		return StateFeared
	default:
		return StateNormal
	}
}

// Feared reports whether the ghost can currently be captured.
func (gh *Ghost) Feared() bool {
	return gh.FearTicks > 0
}

// PolicyName returns the name of the ghost's own policy.
func (gh *Ghost) PolicyName() string {
	if gh.Policy == nil {
		return ""
	}
	return gh.Policy.Name()
}

// Update runs one tick for the ghost: decide at an aligned cell, move one
// pixel, then age the fear timer. Ghosts still waiting for release only
// age their timers. The returned error is informational; the ghost has
// already recovered from it.
func (gh *Ghost) Update(g *GridMap, pacman Cell, flee GhostPolicy) error {
	if gh.ReleaseTicks > 0 {
		gh.ReleaseTicks--
		gh.decrementFear()
		return nil
	}

	var err error
	if g.Aligned(gh.Pos) {
		err = gh.decide(g, pacman, flee)
	}

	if gh.Dir != None {
		gh.Pos = g.WrapPosition(step(gh.Pos, gh.Dir))
	}
	gh.decrementFear()
	return err
}

func (gh *Ghost) decide(g *GridMap, pacman Cell, flee GhostPolicy) error {
	cell := g.CellOf(gh.Pos)

	if gh.InSpawn {
		if kind, _ := g.Kind(cell); kind == Path {
			gh.InSpawn = false
		} else {
			d, ok := exitDirection(g, cell)
			if !ok {
				gh.Dir = None
				return fmt.Errorf("ghost %d has no way out of spawn at %s: %w", gh.ID, cell, ErrNoLegalDirection)
			}
			gh.Dir = d
			return nil
		}
	}

	policy := gh.Policy
	if gh.Feared() && flee != nil {
		policy = flee
	}

	_, err := LegalDirections(g, cell, gh.Dir)
	if policy != nil {
		gh.Dir = policy.Decide(pacman, g, gh)
	}
	if err != nil {
		return fmt.Errorf("ghost %d: %w", gh.ID, err)
	}
	return nil
}

func (gh *Ghost) decrementFear() {
	if gh.FearTicks > 0 {
		gh.FearTicks--
	}
}

// sendHome resets a captured ghost onto a spawn cell.
func (gh *Ghost) sendHome(pos Position) {
	gh.Pos = pos
	gh.Dir = None
	gh.FearTicks = 0
	gh.InSpawn = true
	gh.ReleaseTicks = 0
}
