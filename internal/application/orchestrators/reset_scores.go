package orchestrators

import (
	"context"
	"errors"
	"log/slog"
)

// ResetScoresInput carries input for the administrative bulk reset.
type ResetScoresInput struct {
	Scope   string // ledger.ScopePoints, ScopeCards or ScopeAll
	ActorID string // admin performing the reset
}

// ResetScoresDeps holds dependencies for the reset.
type ResetScoresDeps struct {
	Ledger interface {
		Reset(ctx context.Context, scope string) error
	}
}

// ExecuteResetScores zeroes the scoped counters for every member in one
// all-or-nothing operation. A reset that cannot be verified complete is
// reported as an error with no partial application; the admin retries.
// PRE: ActorID identifies an authorized admin (enforced upstream)
// POST: All members' scoped counters are zero, or none changed
func ExecuteResetScores(ctx context.Context, input ResetScoresInput, deps ResetScoresDeps) error {
	if input.ActorID == "" {
		return errors.New("actor ID is required")
	}

	if err := deps.Ledger.Reset(ctx, input.Scope); err != nil {
		return err
	}

	slog.Info("scores_reset", "scope", input.Scope, "actor_id", input.ActorID)
	return nil
}
