package adminlog

import (
	"context"

	domain "pointsboard/internal/domain/adminlog"
)

// Store reads the append-only admin log. Writes happen inside the
// ledger store's transactions so an entry can never land without its
// member mutation.
type Store interface {
	// List returns entries with optional filtering.
	// PRE: limit > 0
	// POST: Returns entries ordered by created_at desc
	List(ctx context.Context, filter Filter, limit, offset int) ([]domain.Entry, error)

	// Count returns the number of entries matching the filter.
	Count(ctx context.Context, filter Filter) (int, error)
}

// Filter defines query parameters for listing admin log entries.
type Filter struct {
	MemberID *string
	ActorID  *string
	FromDate *string
	ToDate   *string
}
