package rotation

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"pointsboard/internal/adapters/storage"
	domain "pointsboard/internal/domain/rotation"
)

func newTestStores(t *testing.T) (*SelectionSQLiteStore, *HistorySQLiteStore) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := storage.InitDB(db); err != nil {
		t.Fatalf("failed to init schema: %v", err)
	}

	// History rows reference members.
	for _, id := range []string{"m1", "m2"} {
		if _, err := db.Exec("INSERT INTO member (id, name) VALUES (?, ?)", id, "Member "+id); err != nil {
			t.Fatalf("failed to seed member %s: %v", id, err)
		}
	}
	return NewSelectionSQLiteStore(db), NewHistorySQLiteStore(db)
}

// TestSelectionStore_RoundTrip tests create, get and delete.
func TestSelectionStore_RoundTrip(t *testing.T) {
	ss, _ := newTestStores(t)
	ctx := context.Background()

	sel := domain.Selection{
		SelectedDate: "2026-09-01",
		MemberIDs:    []string{"m1", "m2"},
		CreatedAt:    time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
	}
	if err := ss.Create(ctx, sel); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := ss.Get(ctx, "2026-09-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.SelectedDate != sel.SelectedDate {
		t.Errorf("expected date %s, got %s", sel.SelectedDate, got.SelectedDate)
	}
	if len(got.MemberIDs) != 2 || got.MemberIDs[0] != "m1" || got.MemberIDs[1] != "m2" {
		t.Errorf("member ids did not round-trip: %v", got.MemberIDs)
	}
	if !got.CreatedAt.Equal(sel.CreatedAt) {
		t.Errorf("created_at did not round-trip: %v", got.CreatedAt)
	}

	if err := ss.Delete(ctx, "2026-09-01"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ss.Get(ctx, "2026-09-01"); !errors.Is(err, domain.ErrNoSelection) {
		t.Errorf("expected ErrNoSelection after delete, got %v", err)
	}
}

// TestSelectionStore_CreateConflict tests that the selected_date primary
// key turns a second insert into ErrSelectionExists.
func TestSelectionStore_CreateConflict(t *testing.T) {
	ss, _ := newTestStores(t)
	ctx := context.Background()

	first := domain.Selection{SelectedDate: "2026-09-01", MemberIDs: []string{"m1", "m2"}, CreatedAt: time.Now()}
	if err := ss.Create(ctx, first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second := domain.Selection{SelectedDate: "2026-09-01", MemberIDs: []string{"m3", "m4"}, CreatedAt: time.Now()}
	if err := ss.Create(ctx, second); !errors.Is(err, domain.ErrSelectionExists) {
		t.Fatalf("expected ErrSelectionExists, got %v", err)
	}

	// The winner's row is untouched.
	got, err := ss.Get(ctx, "2026-09-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.MemberIDs[0] != "m1" {
		t.Errorf("losing insert overwrote the winner: %v", got.MemberIDs)
	}
}

// TestSelectionStore_GetMissing tests the no-selection sentinel.
func TestSelectionStore_GetMissing(t *testing.T) {
	ss, _ := newTestStores(t)
	if _, err := ss.Get(context.Background(), "2026-09-01"); !errors.Is(err, domain.ErrNoSelection) {
		t.Errorf("expected ErrNoSelection, got %v", err)
	}
}

// TestSelectionStore_DeleteAbsent tests that deleting nothing is a no-op.
func TestSelectionStore_DeleteAbsent(t *testing.T) {
	ss, _ := newTestStores(t)
	if err := ss.Delete(context.Background(), "2026-09-01"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// TestHistoryStore_RecordSelection tests the insert-or-increment upsert.
func TestHistoryStore_RecordSelection(t *testing.T) {
	_, hs := newTestStores(t)
	ctx := context.Background()

	if err := hs.RecordSelection(ctx, "m1", "2026-09-01"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := hs.RecordSelection(ctx, "m1", "2026-09-02"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := hs.RecordSelection(ctx, "m2", "2026-09-02"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries, err := hs.ListAll(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	byID := make(map[string]domain.HistoryEntry)
	for _, e := range entries {
		byID[e.MemberID] = e
	}
	if e := byID["m1"]; e.SelectionCount != 2 || e.LastSelectedDate != "2026-09-02" {
		t.Errorf("m1 entry wrong: %+v", e)
	}
	if e := byID["m2"]; e.SelectionCount != 1 {
		t.Errorf("m2 entry wrong: %+v", e)
	}
}
