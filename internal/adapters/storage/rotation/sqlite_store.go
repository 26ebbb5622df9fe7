package rotation

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"pointsboard/internal/adapters/storage"
	domain "pointsboard/internal/domain/rotation"
)

const timestampLayout = "2006-01-02T15:04:05.999999999Z07:00"

// Ensure the SQLite stores implement their interfaces.
var (
	_ SelectionStore = (*SelectionSQLiteStore)(nil)
	_ HistoryStore   = (*HistorySQLiteStore)(nil)
)

// SelectionSQLiteStore implements SelectionStore using SQLite.
type SelectionSQLiteStore struct {
	db storage.SQLDB
}

// NewSelectionSQLiteStore creates a new daily-selection store.
func NewSelectionSQLiteStore(db storage.SQLDB) *SelectionSQLiteStore {
	return &SelectionSQLiteStore{db: db}
}

// Get returns the committed selection for a date.
// PRE: date is formatted YYYY-MM-DD
// POST: Returns the selection or domain.ErrNoSelection
func (s *SelectionSQLiteStore) Get(ctx context.Context, date string) (domain.Selection, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT selected_date, member_ids, created_at FROM daily_selection WHERE selected_date = ?", date)

	var sel domain.Selection
	var memberIDs, createdAt string
	err := row.Scan(&sel.SelectedDate, &memberIDs, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Selection{}, domain.ErrNoSelection
	}
	if err != nil {
		return domain.Selection{}, err
	}
	if err := json.Unmarshal([]byte(memberIDs), &sel.MemberIDs); err != nil {
		return domain.Selection{}, fmt.Errorf("corrupt member_ids for %s: %w", date, err)
	}
	sel.CreatedAt, _ = time.Parse(timestampLayout, createdAt)
	return sel, nil
}

// Create inserts a selection row. Plain INSERT, never upsert: the unique
// primary key on selected_date is the only serialization point for
// concurrent first callers.
// PRE: sel has been validated
// POST: Row is inserted, or domain.ErrSelectionExists if a racer won
func (s *SelectionSQLiteStore) Create(ctx context.Context, sel domain.Selection) error {
	memberIDs, err := json.Marshal(sel.MemberIDs)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO daily_selection (selected_date, member_ids, created_at) VALUES (?, ?, ?)",
		sel.SelectedDate, string(memberIDs), sel.CreatedAt.Format(timestampLayout))
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint") {
		return domain.ErrSelectionExists
	}
	return err
}

// Delete removes a date's selection. Deleting an absent row is a no-op.
// PRE: date is formatted YYYY-MM-DD
// POST: No selection row exists for the date
func (s *SelectionSQLiteStore) Delete(ctx context.Context, date string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM daily_selection WHERE selected_date = ?", date)
	return err
}

// HistorySQLiteStore implements HistoryStore using SQLite.
type HistorySQLiteStore struct {
	db storage.SQLDB
}

// NewHistorySQLiteStore creates a new speaker-history store.
func NewHistorySQLiteStore(db storage.SQLDB) *HistorySQLiteStore {
	return &HistorySQLiteStore{db: db}
}

// ListAll returns every history entry.
// POST: Returns entries for every member who has ever been selected
func (s *HistorySQLiteStore) ListAll(ctx context.Context) ([]domain.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT member_id, last_selected_date, selection_count FROM speaker_history")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.HistoryEntry
	for rows.Next() {
		var e domain.HistoryEntry
		if err := rows.Scan(&e.MemberID, &e.LastSelectedDate, &e.SelectionCount); err != nil {
			return nil, err
		}
		results = append(results, e)
	}
	return results, rows.Err()
}

// RecordSelection upserts a member's history entry for a selection date.
// The increment happens in SQL so concurrent writers cannot lose updates.
// PRE: memberID and date are non-empty
// POST: Entry exists with last_selected_date=date and count incremented
func (s *HistorySQLiteStore) RecordSelection(ctx context.Context, memberID, date string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO speaker_history (member_id, last_selected_date, selection_count)
		 VALUES (?, ?, 1)
		 ON CONFLICT(member_id) DO UPDATE SET
		   last_selected_date=excluded.last_selected_date,
		   selection_count=speaker_history.selection_count+1`,
		memberID, date)
	return err
}
