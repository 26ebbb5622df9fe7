package rotation

import (
	"context"

	domain "pointsboard/internal/domain/rotation"
)

// SelectionStore persists the one-per-date committed speaker selections.
type SelectionStore interface {
	// Get returns the selection for a date, or domain.ErrNoSelection.
	Get(ctx context.Context, date string) (domain.Selection, error)

	// Create inserts a new selection. The insert is gated by the unique
	// constraint on selected_date: a losing racer gets
	// domain.ErrSelectionExists, never a partial write.
	Create(ctx context.Context, sel domain.Selection) error

	// Delete removes a date's selection (admin reshuffle path).
	Delete(ctx context.Context, date string) error
}

// HistoryStore persists per-member speaker history.
type HistoryStore interface {
	// ListAll returns every history entry.
	ListAll(ctx context.Context) ([]domain.HistoryEntry, error)

	// RecordSelection marks a member as selected on a date, creating the
	// entry with count 1 or incrementing an existing count.
	RecordSelection(ctx context.Context, memberID, date string) error
}
