package engine

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
)

// GhostPolicy chooses a ghost's next direction at an aligned cell.
type GhostPolicy interface {
	Name() string
	Decide(pacman Cell, grid *GridMap, self *Ghost) Direction
}

// Policy names accepted in map configs
const (
	PolicyRandom = "random"
	PolicyChase  = "chase"
	PolicyFlee   = "flee"
)

// DefaultGhosts is the ghost lineup used when a map does not name one.
var DefaultGhosts = []string{PolicyChase, PolicyRandom, PolicyChase, PolicyRandom}

// LegalDirections lists the directions a ghost on an open cell may take:
// walkable neighbours other than the way it came. When only the reverse is
// open it is returned alone together with ErrNoLegalDirection.
func LegalDirections(g *GridMap, from Cell, current Direction) ([]Direction, error) {
	var options []Direction
	back := current.Reverse()
	reverseOpen := false

	for _, d := range Directions {
		_, kind, err := g.Neighbor(from, d)
		if err != nil || !IsWalkable(kind, false) {
			continue
		}
		if d == back {
			reverseOpen = true
			continue
		}
		options = append(options, d)
	}

	if len(options) > 0 {
		return options, nil
	}
	if reverseOpen {
		return []Direction{back}, fmt.Errorf("dead end at %s heading %s: %w", from, current, ErrNoLegalDirection)
	}
	return nil, fmt.Errorf("walled in at %s: %w", from, ErrNoLegalDirection)
}

// RandomPolicy picks uniformly among the legal directions.
type RandomPolicy struct {
	rng *rand.Rand
}

// NewRandomPolicy creates a random policy drawing from rng.
func NewRandomPolicy(rng *rand.Rand) *RandomPolicy {
	return &RandomPolicy{rng: rng}
}

func (p *RandomPolicy) Name() string { return PolicyRandom }

func (p *RandomPolicy) Decide(_ Cell, grid *GridMap, self *Ghost) Direction {
	options, _ := LegalDirections(grid, grid.CellOf(self.Pos), self.Dir)
	if len(options) == 0 {
		return None
	}
	return options[p.rng.IntN(len(options))]
}

// ChasePolicy greedily minimises the Manhattan distance to Pac-Man.
type ChasePolicy struct{}

func (ChasePolicy) Name() string { return PolicyChase }

func (ChasePolicy) Decide(pacman Cell, grid *GridMap, self *Ghost) Direction {
	return greedy(pacman, grid, self, func(d, best int) bool { return d < best })
}

// FleePolicy greedily maximises the Manhattan distance to Pac-Man. Feared
// ghosts use it instead of their own policy.
type FleePolicy struct{}

func (FleePolicy) Name() string { return PolicyFlee }

func (FleePolicy) Decide(pacman Cell, grid *GridMap, self *Ghost) Direction {
	return greedy(pacman, grid, self, func(d, best int) bool { return d > best })
}

// greedy scores each legal direction by the distance from the cell it leads
// to. Only a strictly better score replaces the current pick, so ties go to
// the earlier direction in Up, Down, Left, Right order.
func greedy(pacman Cell, grid *GridMap, self *Ghost, better func(d, best int) bool) Direction {
	from := grid.CellOf(self.Pos)
	options, _ := LegalDirections(grid, from, self.Dir)

	choice := None
	best := 0
	for _, d := range options {
		next, _, _ := grid.Neighbor(from, d)
		dist := next.Manhattan(pacman)
		if choice == None || better(dist, best) {
			choice, best = d, dist
		}
	}
	return choice
}

// NewPolicy builds the named policy. Random policies draw from rng.
func NewPolicy(name string, rng *rand.Rand) (GhostPolicy, error) {
	switch strings.ToLower(name) {
	case PolicyRandom:
		return NewRandomPolicy(rng), nil
	case PolicyChase:
		return ChasePolicy{}, nil
	case PolicyFlee:
		return FleePolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown ghost policy %q (known: %s)", name, strings.Join(PolicyNames(), ", "))
	}
}

// PolicyNames lists the known policy names in sorted order.
func PolicyNames() []string {
	names := []string{PolicyRandom, PolicyChase, PolicyFlee}
	sort.Strings(names)
	return names
}
