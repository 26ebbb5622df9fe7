package storage

import (
	"database/sql"
	"fmt"
)

// InitDB initializes the database schema.
// PRE: db is a valid database connection
// POST: All tables are created, WAL mode enabled
func InitDB(db *sql.DB) error {
	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	// Enable foreign key enforcement
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Create tables. The primary key on daily_selection.selected_date is
	// the concurrency gate for speaker selection: racing first callers
	// serialize on this constraint, not on application locks.
	schema := `
	CREATE TABLE IF NOT EXISTS member (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		points INTEGER NOT NULL DEFAULT 0,
		yellow_cards INTEGER NOT NULL DEFAULT 0,
		red_cards INTEGER NOT NULL DEFAULT 0,
		CHECK (points >= 0)
	);

	CREATE TABLE IF NOT EXISTS speaker_history (
		member_id TEXT PRIMARY KEY,
		last_selected_date TEXT NOT NULL,
		selection_count INTEGER NOT NULL DEFAULT 0,
		FOREIGN KEY (member_id) REFERENCES member(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS daily_selection (
		selected_date TEXT PRIMARY KEY,
		member_ids TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- admin_log deliberately has no foreign key on member_id: the audit
	-- trail outlives member deletion, with member_name as the snapshot.
	CREATE TABLE IF NOT EXISTS admin_log (
		id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		member_id TEXT NOT NULL,
		member_name TEXT NOT NULL,
		points_changed INTEGER NOT NULL DEFAULT 0,
		reason TEXT,
		actor_id TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_admin_log_member ON admin_log(member_id, created_at);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}
