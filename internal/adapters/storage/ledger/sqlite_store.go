package ledger

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"pointsboard/internal/adapters/storage"
	logdomain "pointsboard/internal/domain/adminlog"
	domain "pointsboard/internal/domain/member"
)

const timestampLayout = "2006-01-02T15:04:05.999999999Z07:00"

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements the ledger Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new ledger store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// lockMember reads a member inside the transaction. SQLite serializes
// writers, so the read-modify-write below cannot lose updates.
func lockMember(ctx context.Context, tx *sql.Tx, memberID string) (domain.Member, error) {
	row := tx.QueryRowContext(ctx,
		"SELECT id, name, points, yellow_cards, red_cards FROM member WHERE id = ?", memberID)
	var m domain.Member
	err := row.Scan(&m.ID, &m.Name, &m.Points, &m.YellowCards, &m.RedCards)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Member{}, domain.ErrNotFound
	}
	return m, err
}

// writeMutation updates the member row and appends the audit entry.
// Runs inside the caller's transaction so both land together.
func writeMutation(ctx context.Context, tx *sql.Tx, m domain.Member, entry logdomain.Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx,
		"UPDATE member SET points = ?, yellow_cards = ?, red_cards = ? WHERE id = ?",
		m.Points, m.YellowCards, m.RedCards, m.ID)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO admin_log (id, created_at, member_id, member_name, points_changed, reason, actor_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.CreatedAt.Format(timestampLayout), entry.MemberID,
		entry.MemberName, entry.PointsChanged, entry.Reason, entry.ActorID)
	return err
}

// AdjustPoints applies a signed delta and its audit entry atomically.
// PRE: delta != 0, actorID is non-empty
// POST: Member balance and audit entry committed together, or neither
func (s *SQLiteStore) AdjustPoints(ctx context.Context, memberID string, delta int, reason, actorID string, now time.Time) (domain.Member, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Member{}, err
	}
	defer tx.Rollback()

	m, err := lockMember(ctx, tx, memberID)
	if err != nil {
		return domain.Member{}, err
	}
	if err := m.AdjustPoints(delta); err != nil {
		return domain.Member{}, err
	}

	// MemberName is snapshotted here: later renames must not rewrite
	// what the log said at the time.
	entry := logdomain.NewEntry(now, m.ID, m.Name, delta, reason, actorID)
	if err := writeMutation(ctx, tx, m, entry); err != nil {
		return domain.Member{}, err
	}
	return m, tx.Commit()
}

// GiveCard records a card grant and its audit entry atomically.
// PRE: kind is member.CardYellow or member.CardRed; penalty >= 0
// POST: Card count, any point deduction, and audit entry committed together
func (s *SQLiteStore) GiveCard(ctx context.Context, memberID, kind string, penalty int, reason, actorID string, now time.Time) (domain.Member, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Member{}, err
	}
	defer tx.Rollback()

	m, err := lockMember(ctx, tx, memberID)
	if err != nil {
		return domain.Member{}, err
	}

	pointsChanged := 0
	switch kind {
	case domain.CardYellow:
		m.GiveYellowCard()
	case domain.CardRed:
		applied, err := m.GiveRedCard(penalty)
		if err != nil {
			return domain.Member{}, err
		}
		pointsChanged = -applied
	default:
		return domain.Member{}, domain.ErrInvalidCardKind
	}

	entry := logdomain.NewEntry(now, m.ID, m.Name, pointsChanged, reason, actorID)
	if err := writeMutation(ctx, tx, m, entry); err != nil {
		return domain.Member{}, err
	}
	return m, tx.Commit()
}

// Reset zeroes the scoped columns for every member in one transaction
// and verifies the post-condition before committing. A single UPDATE is
// already all-or-nothing; the verification guards against partial
// application ever being reported as success.
// PRE: scope is 'points', 'cards' or 'all'
// POST: Every member's scoped columns are zero, or ErrResetIncomplete
func (s *SQLiteStore) Reset(ctx context.Context, scope string) error {
	var update, verify string
	switch scope {
	case ScopePoints:
		update = "UPDATE member SET points = 0"
		verify = "SELECT COUNT(*) FROM member WHERE points != 0"
	case ScopeCards:
		update = "UPDATE member SET yellow_cards = 0, red_cards = 0"
		verify = "SELECT COUNT(*) FROM member WHERE yellow_cards != 0 OR red_cards != 0"
	case ScopeAll:
		update = "UPDATE member SET points = 0, yellow_cards = 0, red_cards = 0"
		verify = "SELECT COUNT(*) FROM member WHERE points != 0 OR yellow_cards != 0 OR red_cards != 0"
	default:
		return ErrUnknownScope
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, update); err != nil {
		return err
	}

	var remaining int
	if err := tx.QueryRowContext(ctx, verify).Scan(&remaining); err != nil {
		return err
	}
	if remaining != 0 {
		return ErrResetIncomplete
	}
	return tx.Commit()
}
