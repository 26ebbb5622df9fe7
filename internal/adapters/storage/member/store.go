package member

import (
	"context"

	domain "pointsboard/internal/domain/member"
)

// Store persists Member state. Point and card mutations go through the
// ledger store, which pairs them with their audit entry; this store
// covers directory reads and membership management.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Member, error)
	Save(ctx context.Context, value domain.Member) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]domain.Member, error)
}
