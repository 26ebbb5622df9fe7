package web

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"pointsboard/internal/adapters/clock"
	"pointsboard/internal/adapters/storage"
	adminlogStore "pointsboard/internal/adapters/storage/adminlog"
	ledgerStore "pointsboard/internal/adapters/storage/ledger"
	memberStore "pointsboard/internal/adapters/storage/member"
	rotationStore "pointsboard/internal/adapters/storage/rotation"
	"pointsboard/internal/domain/member"
)

var testTime = time.Date(2026, time.September, 1, 10, 0, 0, 0, time.UTC)

// newTestAPI wires the full stack over an in-memory database.
func newTestAPI(t *testing.T) (http.Handler, *Stores) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := storage.InitDB(db); err != nil {
		t.Fatalf("failed to init database: %v", err)
	}

	stores := &Stores{
		MemberStore:    memberStore.NewSQLiteStore(db),
		SelectionStore: rotationStore.NewSelectionSQLiteStore(db),
		HistoryStore:   rotationStore.NewHistorySQLiteStore(db),
		LedgerStore:    ledgerStore.NewSQLiteStore(db),
		LogStore:       adminlogStore.NewSQLiteStore(db),
	}

	mux := NewMux(stores, Options{
		Clock:              clock.NewFixedProvider(testTime),
		Rand:               rand.New(rand.NewSource(42)),
		CSRFKey:            bytes.Repeat([]byte{7}, 32),
		RateLimitPerSecond: 1000,
	})
	return mux, stores
}

func seedMember(t *testing.T, stores *Stores, id, name string, points int) {
	t.Helper()
	err := stores.MemberStore.Save(context.Background(), member.Member{ID: id, Name: name, Points: points})
	if err != nil {
		t.Fatalf("failed to seed member %s: %v", id, err)
	}
}

func jsonRequest(method, path string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

// TestHandleSpeakersToday_CommitsThenRepeats verifies the first call
// commits a selection and later calls return the same pair.
func TestHandleSpeakersToday_CommitsThenRepeats(t *testing.T) {
	mux, stores := newTestAPI(t)
	for i := 0; i < 5; i++ {
		seedMember(t, stores, fmt.Sprintf("m%d", i), fmt.Sprintf("Member %d", i), 0)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, jsonRequest("GET", "/api/speakers/today", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var first selectionJSON
	decodeBody(t, rec, &first)
	if !first.Selected {
		t.Error("first call should commit a selection")
	}
	if first.Date != "2026-09-01" {
		t.Errorf("unexpected date: %s", first.Date)
	}
	if len(first.Speakers) != 2 {
		t.Fatalf("expected 2 speakers, got %d", len(first.Speakers))
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, jsonRequest("GET", "/api/speakers/today", nil))
	var second selectionJSON
	decodeBody(t, rec, &second)
	if second.Selected {
		t.Error("repeat call should not commit again")
	}
	if second.Speakers[0].ID != first.Speakers[0].ID || second.Speakers[1].ID != first.Speakers[1].ID {
		t.Errorf("repeat call returned a different pair: %v vs %v", second.Speakers, first.Speakers)
	}
}

// TestHandleReshuffleSpeakers verifies the admin override replaces the
// committed selection and requires an actor header.
func TestHandleReshuffleSpeakers(t *testing.T) {
	mux, stores := newTestAPI(t)
	for i := 0; i < 6; i++ {
		seedMember(t, stores, fmt.Sprintf("m%d", i), fmt.Sprintf("Member %d", i), 0)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, jsonRequest("GET", "/api/speakers/today", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("seed selection failed: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, jsonRequest("POST", "/api/speakers/reshuffle", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("reshuffle without actor should be 400, got %d", rec.Code)
	}

	req := jsonRequest("POST", "/api/speakers/reshuffle", nil)
	req.Header.Set("X-Actor-ID", "admin-1")
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var result selectionJSON
	decodeBody(t, rec, &result)
	if !result.Selected {
		t.Error("reshuffle should commit a fresh selection")
	}
}

// TestHandleAdjustPoints covers the happy path, the floor rejection and
// the actor requirement.
func TestHandleAdjustPoints(t *testing.T) {
	mux, stores := newTestAPI(t)
	seedMember(t, stores, "m1", "Anita", 10)

	req := jsonRequest("POST", "/api/members/m1/points", map[string]any{"delta": -4, "reason": "late"})
	req.Header.Set("X-Actor-ID", "admin-1")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Points int `json:"points"`
	}
	decodeBody(t, rec, &resp)
	if resp.Points != 6 {
		t.Errorf("expected 6 points, got %d", resp.Points)
	}

	// Driving the balance negative is rejected.
	req = jsonRequest("POST", "/api/members/m1/points", map[string]any{"delta": -7})
	req.Header.Set("X-Actor-ID", "admin-1")
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("floor violation should be 409, got %d", rec.Code)
	}

	// Missing actor header.
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, jsonRequest("POST", "/api/members/m1/points", map[string]any{"delta": 1}))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("missing actor should be 400, got %d", rec.Code)
	}

	// Unknown member.
	req = jsonRequest("POST", "/api/members/ghost/points", map[string]any{"delta": 1})
	req.Header.Set("X-Actor-ID", "admin-1")
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown member should be 404, got %d", rec.Code)
	}
}

// TestHandleGiveCard covers yellow, capped red and bad kind.
func TestHandleGiveCard(t *testing.T) {
	mux, stores := newTestAPI(t)
	seedMember(t, stores, "m1", "Anita", 3)

	req := jsonRequest("POST", "/api/members/m1/cards", map[string]any{"kind": "yellow", "reason": "talking"})
	req.Header.Set("X-Actor-ID", "admin-1")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Points      int `json:"points"`
		YellowCards int `json:"yellow_cards"`
		RedCards    int `json:"red_cards"`
	}
	decodeBody(t, rec, &resp)
	if resp.YellowCards != 1 || resp.Points != 3 {
		t.Errorf("yellow card changed points: %+v", resp)
	}

	// Red card with default penalty 5 against a balance of 3: capped.
	req = jsonRequest("POST", "/api/members/m1/cards", map[string]any{"kind": "red"})
	req.Header.Set("X-Actor-ID", "admin-1")
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	decodeBody(t, rec, &resp)
	if resp.Points != 0 || resp.RedCards != 1 {
		t.Errorf("red card should cap at zero and register: %+v", resp)
	}

	req = jsonRequest("POST", "/api/members/m1/cards", map[string]any{"kind": "green"})
	req.Header.Set("X-Actor-ID", "admin-1")
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad kind should be 400, got %d", rec.Code)
	}
}

// TestHandleResetScores verifies the bulk reset endpoint.
func TestHandleResetScores(t *testing.T) {
	mux, stores := newTestAPI(t)
	seedMember(t, stores, "m1", "Anita", 9)

	req := jsonRequest("POST", "/api/admin/reset", map[string]any{"scope": "points"})
	req.Header.Set("X-Actor-ID", "admin-1")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	m, err := stores.MemberStore.GetByID(context.Background(), "m1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Points != 0 {
		t.Errorf("expected points reset to 0, got %d", m.Points)
	}

	req = jsonRequest("POST", "/api/admin/reset", map[string]any{"scope": "bogus"})
	req.Header.Set("X-Actor-ID", "admin-1")
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown scope should be 400, got %d", rec.Code)
	}
}

// TestHandleScoreboard verifies ranking output.
func TestHandleScoreboard(t *testing.T) {
	mux, stores := newTestAPI(t)
	seedMember(t, stores, "m1", "Anita", 5)
	seedMember(t, stores, "m2", "Ben", 12)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, jsonRequest("GET", "/api/scoreboard", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Rows []struct {
			Rank   int    `json:"rank"`
			Name   string `json:"name"`
			Points int    `json:"points"`
		} `json:"rows"`
	}
	decodeBody(t, rec, &resp)
	if len(resp.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(resp.Rows))
	}
	if resp.Rows[0].Name != "Ben" || resp.Rows[0].Rank != 1 {
		t.Errorf("expected Ben ranked first, got %+v", resp.Rows[0])
	}
}

// TestHandleCreateAndDeleteMember exercises directory management.
func TestHandleCreateAndDeleteMember(t *testing.T) {
	mux, stores := newTestAPI(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, jsonRequest("POST", "/api/members", map[string]any{"name": "Chloe"}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created speakerJSON
	decodeBody(t, rec, &created)
	if created.ID == "" || created.Name != "Chloe" {
		t.Errorf("bad created member: %+v", created)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, jsonRequest("POST", "/api/members", map[string]any{"name": ""}))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty name should be 400, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, jsonRequest("DELETE", "/api/members/"+created.ID, nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if _, err := stores.MemberStore.GetByID(context.Background(), created.ID); err == nil {
		t.Error("member should be gone after delete")
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, jsonRequest("DELETE", "/api/members/ghost", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("deleting unknown member should be 404, got %d", rec.Code)
	}
}

// TestHandleLogHistory verifies audit entries are listed and filterable.
func TestHandleLogHistory(t *testing.T) {
	mux, stores := newTestAPI(t)
	seedMember(t, stores, "m1", "Anita", 10)
	seedMember(t, stores, "m2", "Ben", 10)

	for _, target := range []string{"m1", "m1", "m2"} {
		req := jsonRequest("POST", "/api/members/"+target+"/points", map[string]any{"delta": 1})
		req.Header.Set("X-Actor-ID", "admin-1")
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("seed adjustment failed: %d", rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, jsonRequest("GET", "/api/logs", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Entries []logEntryJSON `json:"entries"`
		Total   int            `json:"total"`
	}
	decodeBody(t, rec, &resp)
	if resp.Total != 3 || len(resp.Entries) != 3 {
		t.Fatalf("expected 3 log entries, got total=%d len=%d", resp.Total, len(resp.Entries))
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, jsonRequest("GET", "/api/logs?member_id=m1", nil))
	decodeBody(t, rec, &resp)
	if resp.Total != 2 {
		t.Errorf("expected 2 entries for m1, got %d", resp.Total)
	}
	for _, e := range resp.Entries {
		if e.MemberID != "m1" {
			t.Errorf("filter leaked entry for %s", e.MemberID)
		}
		if e.MemberName != "Anita" {
			t.Errorf("expected snapshotted name Anita, got %s", e.MemberName)
		}
	}
}
