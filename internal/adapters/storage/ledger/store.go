package ledger

import (
	"context"
	"errors"
	"time"

	domain "pointsboard/internal/domain/member"
)

// Reset scope constants.
const (
	ScopePoints = "points"
	ScopeCards  = "cards"
	ScopeAll    = "all"
)

// Store errors.
var (
	// ErrResetIncomplete reports that a bulk reset could not be verified
	// complete for all members. The reset transaction rolled back: no
	// member was partially reset, and the admin should retry.
	ErrResetIncomplete = errors.New("reset could not be verified for all members")

	ErrUnknownScope = errors.New("reset scope must be 'points', 'cards' or 'all'")
)

// Store applies point and card mutations together with their audit log
// entry. Each mutation is one storage transaction: a reader can never
// observe an updated balance without its admin_log entry or vice versa.
type Store interface {
	// AdjustPoints applies a signed delta to a member's balance and
	// appends the audit entry, both-or-neither. A delta that would drive
	// the balance negative fails with member.ErrInsufficientPoints and
	// changes nothing.
	AdjustPoints(ctx context.Context, memberID string, delta int, reason, actorID string, now time.Time) (domain.Member, error)

	// GiveCard records a yellow or red card. Red cards deduct up to
	// penalty points, capped at the current balance. Every card writes
	// an audit entry; points_changed is the applied (possibly capped)
	// delta.
	GiveCard(ctx context.Context, memberID, kind string, penalty int, reason, actorID string, now time.Time) (domain.Member, error)

	// Reset zeroes points and/or card counts for every member in one
	// transaction, verifying the post-condition before committing.
	Reset(ctx context.Context, scope string) error
}
