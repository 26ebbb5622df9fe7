package adminlog

import (
	"context"
	"database/sql"
	"time"

	"pointsboard/internal/adapters/storage"
	domain "pointsboard/internal/domain/adminlog"
)

const timestampLayout = "2006-01-02T15:04:05.999999999Z07:00"

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements the admin log Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new admin log store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// filterClause builds the WHERE clause and args shared by List and Count.
func filterClause(filter Filter) (string, []any) {
	where := " WHERE 1=1"
	var args []any

	if filter.MemberID != nil {
		where += " AND member_id = ?"
		args = append(args, *filter.MemberID)
	}
	if filter.ActorID != nil {
		where += " AND actor_id = ?"
		args = append(args, *filter.ActorID)
	}
	if filter.FromDate != nil {
		where += " AND created_at >= ?"
		args = append(args, *filter.FromDate)
	}
	if filter.ToDate != nil {
		// Inclusive of the whole end day: timestamps sort after the
		// bare date, so compare against the next midnight.
		where += " AND created_at < date(?, '+1 day')"
		args = append(args, *filter.ToDate)
	}
	return where, args
}

// List returns admin log entries with optional filtering.
// PRE: limit > 0
// POST: Returns entries ordered by created_at desc
func (s *SQLiteStore) List(ctx context.Context, filter Filter, limit, offset int) ([]domain.Entry, error) {
	where, args := filterClause(filter)
	query := "SELECT id, created_at, member_id, member_name, points_changed, reason, actor_id FROM admin_log" +
		where + " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the number of entries matching the filter.
// POST: Returns count >= 0
func (s *SQLiteStore) Count(ctx context.Context, filter Filter) (int, error) {
	where, args := filterClause(filter)
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM admin_log"+where, args...).Scan(&count)
	return count, err
}

// scanEntry scans one row into an Entry.
func scanEntry(rows *sql.Rows) (domain.Entry, error) {
	var e domain.Entry
	var createdAt string
	var reason sql.NullString
	err := rows.Scan(&e.ID, &createdAt, &e.MemberID, &e.MemberName, &e.PointsChanged, &reason, &e.ActorID)
	if err != nil {
		return domain.Entry{}, err
	}
	e.Reason = reason.String
	e.CreatedAt, _ = time.Parse(timestampLayout, createdAt)
	return e, nil
}
