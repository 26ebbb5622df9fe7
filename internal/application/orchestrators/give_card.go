package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"pointsboard/internal/domain/member"
)

// GiveCardInput carries input for a card grant.
type GiveCardInput struct {
	MemberID string
	Kind     string // member.CardYellow or member.CardRed
	Penalty  int    // red only; <= 0 means member.DefaultRedCardPenalty
	Reason   string // optional free text for the audit trail
	ActorID  string // admin giving the card
}

// GiveCardResult carries the member state after the card grant.
type GiveCardResult struct {
	Member member.Member
}

// GiveCardDeps holds dependencies for the card grant.
type GiveCardDeps struct {
	Ledger LedgerStore
	Now    func() time.Time
}

// ExecuteGiveCard records a yellow or red card. Red cards deduct up to
// the penalty, capped at the current balance so the card always
// registers even when the point debt cannot be fully paid.
// PRE: MemberID and ActorID are non-empty, Kind is a valid card kind
// POST: Card count updated; any point change has a matching audit entry
func ExecuteGiveCard(ctx context.Context, input GiveCardInput, deps GiveCardDeps) (GiveCardResult, error) {
	if input.MemberID == "" {
		return GiveCardResult{}, errors.New("member ID is required")
	}
	if input.ActorID == "" {
		return GiveCardResult{}, errors.New("actor ID is required")
	}
	if input.Kind != member.CardYellow && input.Kind != member.CardRed {
		return GiveCardResult{}, member.ErrInvalidCardKind
	}

	penalty := 0
	if input.Kind == member.CardRed {
		penalty = input.Penalty
		if penalty <= 0 {
			penalty = member.DefaultRedCardPenalty
		}
	}

	reason := input.Reason
	if reason == "" {
		reason = input.Kind + " card"
	}

	m, err := deps.Ledger.GiveCard(ctx, input.MemberID, input.Kind, penalty, reason, input.ActorID, deps.Now())
	if err != nil {
		return GiveCardResult{}, err
	}

	slog.Info("card_given", "member_id", m.ID, "kind", input.Kind, "penalty", penalty, "new_points", m.Points, "actor_id", input.ActorID)
	return GiveCardResult{Member: m}, nil
}
