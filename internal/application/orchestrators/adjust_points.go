package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"pointsboard/internal/domain/member"
)

// LedgerStore is the ledger interface the point and card orchestrators
// need. Mutations pair the member update with its audit entry in one
// storage transaction.
type LedgerStore interface {
	AdjustPoints(ctx context.Context, memberID string, delta int, reason, actorID string, now time.Time) (member.Member, error)
	GiveCard(ctx context.Context, memberID, kind string, penalty int, reason, actorID string, now time.Time) (member.Member, error)
	Reset(ctx context.Context, scope string) error
}

// AdjustPointsInput carries input for a point adjustment.
type AdjustPointsInput struct {
	MemberID string
	Delta    int    // signed; negative deducts
	Reason   string // optional free text for the audit trail
	ActorID  string // admin performing the adjustment
}

// AdjustPointsResult carries the member state after the adjustment.
type AdjustPointsResult struct {
	Member    member.Member
	NewPoints int
}

// AdjustPointsDeps holds dependencies for the adjustment.
type AdjustPointsDeps struct {
	Ledger LedgerStore
	Now    func() time.Time
}

// ExecuteAdjustPoints applies a signed point delta to a member. A delta
// that would drive the balance negative is rejected and leaves state
// unchanged; acceptance writes the balance and its audit entry together.
// PRE: MemberID and ActorID are non-empty, Delta != 0
// POST: Member balance reflects the delta and one audit entry exists
func ExecuteAdjustPoints(ctx context.Context, input AdjustPointsInput, deps AdjustPointsDeps) (AdjustPointsResult, error) {
	if input.MemberID == "" {
		return AdjustPointsResult{}, errors.New("member ID is required")
	}
	if input.ActorID == "" {
		return AdjustPointsResult{}, errors.New("actor ID is required")
	}
	if input.Delta == 0 {
		return AdjustPointsResult{}, member.ErrZeroDelta
	}

	m, err := deps.Ledger.AdjustPoints(ctx, input.MemberID, input.Delta, input.Reason, input.ActorID, deps.Now())
	if err != nil {
		return AdjustPointsResult{}, err
	}

	slog.Info("points_adjusted", "member_id", m.ID, "delta", input.Delta, "new_points", m.Points, "actor_id", input.ActorID)
	return AdjustPointsResult{Member: m, NewPoints: m.Points}, nil
}
