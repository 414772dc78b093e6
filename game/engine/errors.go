package engine

import "errors"

var (
	// ErrOutOfBounds is returned for grid queries outside the map. Callers
	// must apply tunnel wrap before querying edge neighbours.
	ErrOutOfBounds = errors.New("cell out of bounds")

	// ErrIllegalTurn is returned when a steer would enter a wall or gate, or
	// turn onto the perpendicular axis between two grid lines.
	ErrIllegalTurn = errors.New("illegal turn")

	// ErrNoLegalDirection is returned when a ghost has nowhere to go except back.
	ErrNoLegalDirection = errors.New("no legal direction")

	// ErrInvalidMap is returned when a map configuration cannot build a game.
	ErrInvalidMap = errors.New("invalid map")

	// ErrLoopStopped is returned when starting a loop that already ran.
	ErrLoopStopped = errors.New("loop already stopped")

	// ErrLoopRunning is returned when starting a loop twice.
	ErrLoopRunning = errors.New("loop already running")
)
