package scores

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/wricardo/mcp-training/pacman/game/engine"
)

// Submission is one finished game.
type Submission struct {
	ID          uuid.UUID        `json:"id"`
	PlayerID    string           `json:"player_id"`
	SessionID   string           `json:"session_id"`
	MapName     string           `json:"map"`
	Score       int              `json:"score"`
	Reason      engine.EndReason `json:"reason"`
	Ticks       uint64           `json:"ticks"`
	DotsEaten   int              `json:"dots_eaten"`
	GhostsEaten int              `json:"ghosts_eaten"`
	SubmittedAt time.Time        `json:"submitted_at"`
}

// NewSubmission builds a submission for a finished game.
func NewSubmission(playerID, sessionID, mapName string, result engine.Result) Submission {
	return Submission{
		ID:          uuid.New(),
		PlayerID:    playerID,
		SessionID:   sessionID,
		MapName:     mapName,
		Score:       result.Score,
		Reason:      result.Reason,
		Ticks:       result.Ticks,
		DotsEaten:   result.DotsEaten,
		GhostsEaten: result.GhostsEaten,
		SubmittedAt: time.Now().UTC(),
	}
}

// Submitter receives finished games.
type Submitter interface {
	Submit(ctx context.Context, sub Submission) error
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, sub Submission) error

// Submit calls f.
func (f SubmitterFunc) Submit(ctx context.Context, sub Submission) error {
	return f(ctx, sub)
}

// Multi submits to every submitter and joins their errors.
type Multi []Submitter

// Submit hands sub to each submitter in order. A failing submitter does not
// stop the others.
func (m Multi) Submit(ctx context.Context, sub Submission) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Submit(ctx, sub); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
