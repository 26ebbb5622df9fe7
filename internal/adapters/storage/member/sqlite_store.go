package member

import (
	"context"
	"database/sql"
	"errors"

	"pointsboard/internal/adapters/storage"
	domain "pointsboard/internal/domain/member"
)

// Ensure SQLiteStore implements Store interface.
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements the member Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new member store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Member by its ID.
// PRE: id is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Member, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, points, yellow_cards, red_cards FROM member WHERE id = ?", id)

	var entity domain.Member
	err := row.Scan(&entity.ID, &entity.Name, &entity.Points, &entity.YellowCards, &entity.RedCards)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Member{}, domain.ErrNotFound
	}
	return entity, err
}

// Save persists a Member to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Member) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO member (id, name, points, yellow_cards, red_cards)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, points=excluded.points,
		   yellow_cards=excluded.yellow_cards, red_cards=excluded.red_cards`,
		entity.ID, entity.Name, entity.Points, entity.YellowCards, entity.RedCards)
	return err
}

// Delete removes a Member from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM member WHERE id = ?", id)
	return err
}

// List retrieves the full member directory ordered by name.
// POST: Returns all members
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Member, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, points, yellow_cards, red_cards FROM member ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Member
	for rows.Next() {
		var entity domain.Member
		if err := rows.Scan(&entity.ID, &entity.Name, &entity.Points, &entity.YellowCards, &entity.RedCards); err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
