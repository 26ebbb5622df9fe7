package projections

import (
	"context"

	"pointsboard/internal/adapters/storage/adminlog"
	"pointsboard/internal/application/listutil"
	domain "pointsboard/internal/domain/adminlog"
)

// LogHistoryStore defines the admin log interface needed by the log projection.
type LogHistoryStore interface {
	List(ctx context.Context, filter adminlog.Filter, limit, offset int) ([]domain.Entry, error)
	Count(ctx context.Context, filter adminlog.Filter) (int, error)
}

// GetLogHistoryQuery carries query parameters for the log projection.
type GetLogHistoryQuery struct {
	MemberID string
	ActorID  string
	FromDate string // YYYY-MM-DD, inclusive
	ToDate   string // YYYY-MM-DD, inclusive
	Page     listutil.PageParams
}

// GetLogHistoryResult carries one page of log entries.
type GetLogHistoryResult struct {
	Entries  []domain.Entry
	PageInfo listutil.PageInfo
}

// GetLogHistoryDeps holds dependencies for the log projection.
type GetLogHistoryDeps struct {
	LogStore LogHistoryStore
}

// QueryGetLogHistory returns a filtered page of admin log entries,
// newest first.
func QueryGetLogHistory(ctx context.Context, query GetLogHistoryQuery, deps GetLogHistoryDeps) (GetLogHistoryResult, error) {
	filter := adminlog.Filter{
		MemberID: optional(query.MemberID),
		ActorID:  optional(query.ActorID),
		FromDate: optional(query.FromDate),
		ToDate:   optional(query.ToDate),
	}

	total, err := deps.LogStore.Count(ctx, filter)
	if err != nil {
		return GetLogHistoryResult{}, err
	}
	info := listutil.NewPageInfo(query.Page.Page, query.Page.PerPage, total)

	entries, err := deps.LogStore.List(ctx, filter, info.PerPage, info.Offset())
	if err != nil {
		return GetLogHistoryResult{}, err
	}

	return GetLogHistoryResult{Entries: entries, PageInfo: info}, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
