package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	ledgerStore "pointsboard/internal/adapters/storage/ledger"
	"pointsboard/internal/application/listutil"
	"pointsboard/internal/application/orchestrators"
	"pointsboard/internal/application/projections"
	"pointsboard/internal/domain/member"
)

func (a *api) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/speakers/today", a.handleSpeakersToday)
	mux.HandleFunc("POST /api/speakers/reshuffle", a.handleReshuffleSpeakers)
	mux.HandleFunc("GET /api/scoreboard", a.handleScoreboard)
	mux.HandleFunc("POST /api/members", a.handleCreateMember)
	mux.HandleFunc("DELETE /api/members/{id}", a.handleDeleteMember)
	mux.HandleFunc("POST /api/members/{id}/points", a.handleAdjustPoints)
	mux.HandleFunc("POST /api/members/{id}/cards", a.handleGiveCard)
	mux.HandleFunc("POST /api/admin/reset", a.handleResetScores)
	mux.HandleFunc("GET /api/logs", a.handleLogHistory)
}

// internalError logs the real error and returns a generic message to the
// client, preventing internal detail leaks.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response_encode_failed", "error", err.Error())
	}
}

func errorJSON(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// actorID extracts the acting admin's identity, asserted upstream.
func actorID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-Actor-ID"))
}

// domainError maps known domain failures onto HTTP statuses. Unknown
// errors fall through to a logged 500.
func domainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, member.ErrNotFound):
		errorJSON(w, http.StatusNotFound, "member not found")
	case errors.Is(err, member.ErrInsufficientPoints):
		errorJSON(w, http.StatusConflict, "adjustment would make points negative")
	case errors.Is(err, member.ErrZeroDelta),
		errors.Is(err, member.ErrInvalidCardKind),
		errors.Is(err, ledgerStore.ErrUnknownScope):
		errorJSON(w, http.StatusBadRequest, err.Error())
	default:
		internalError(w, err)
	}
}

type speakerJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type selectionJSON struct {
	Date     string        `json:"date"`
	Speakers []speakerJSON `json:"speakers"`
	Selected bool          `json:"selected"`
}

func toSelectionJSON(result orchestrators.SelectSpeakersResult) selectionJSON {
	out := selectionJSON{Date: result.Date, Selected: result.Selected, Speakers: []speakerJSON{}}
	for _, s := range result.Speakers {
		out.Speakers = append(out.Speakers, speakerJSON{ID: s.ID, Name: s.Name})
	}
	return out
}

// handleSpeakersToday resolves today's speaker pair, committing a fresh
// selection if none exists yet (GET /api/speakers/today).
func (a *api) handleSpeakersToday(w http.ResponseWriter, r *http.Request) {
	result, err := orchestrators.ExecuteSelectSpeakers(r.Context(), orchestrators.SelectSpeakersInput{}, orchestrators.SelectSpeakersDeps{
		SelectionStore: a.stores.SelectionStore,
		HistoryStore:   a.stores.HistoryStore,
		MemberStore:    a.stores.MemberStore,
		Today:          a.clock.Today,
		Now:            a.clock.Now,
		Rand:           a.rng,
		Announcer:      a.announcer,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSelectionJSON(result))
}

// handleReshuffleSpeakers discards today's selection and picks again
// (POST /api/speakers/reshuffle). Admin override path.
func (a *api) handleReshuffleSpeakers(w http.ResponseWriter, r *http.Request) {
	actor := actorID(r)
	if actor == "" {
		errorJSON(w, http.StatusBadRequest, "X-Actor-ID header is required")
		return
	}

	result, err := orchestrators.ExecuteReshuffleSpeakers(r.Context(), orchestrators.ReshuffleSpeakersInput{
		ActorID: actor,
	}, orchestrators.ReshuffleSpeakersDeps{
		SelectionStore: a.stores.SelectionStore,
		HistoryStore:   a.stores.HistoryStore,
		MemberStore:    a.stores.MemberStore,
		Today:          a.clock.Today,
		Now:            a.clock.Now,
		Rand:           a.rng,
		Announcer:      a.announcer,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSelectionJSON(result))
}

// handleScoreboard returns the ranked member list (GET /api/scoreboard).
func (a *api) handleScoreboard(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetScoreboard(r.Context(), projections.GetScoreboardDeps{
		MemberStore:  a.stores.MemberStore,
		HistoryStore: a.stores.HistoryStore,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleCreateMember adds a member to the directory (POST /api/members).
func (a *api) handleCreateMember(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := strictDecode(r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	m := member.Member{ID: uuid.New().String(), Name: strings.TrimSpace(req.Name)}
	if err := m.Validate(); err != nil {
		errorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.stores.MemberStore.Save(r.Context(), m); err != nil {
		internalError(w, err)
		return
	}

	slog.Info("member_created", "member_id", m.ID, "name", m.Name)
	writeJSON(w, http.StatusCreated, speakerJSON{ID: m.ID, Name: m.Name})
}

// handleDeleteMember removes a member (DELETE /api/members/{id}).
// Speaker history cascades away; audit rows survive with the name
// snapshot taken at write time.
func (a *api) handleDeleteMember(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := a.stores.MemberStore.GetByID(r.Context(), id); err != nil {
		domainError(w, err)
		return
	}
	if err := a.stores.MemberStore.Delete(r.Context(), id); err != nil {
		internalError(w, err)
		return
	}

	slog.Info("member_deleted", "member_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// handleAdjustPoints applies a signed point delta
// (POST /api/members/{id}/points).
func (a *api) handleAdjustPoints(w http.ResponseWriter, r *http.Request) {
	actor := actorID(r)
	if actor == "" {
		errorJSON(w, http.StatusBadRequest, "X-Actor-ID header is required")
		return
	}

	var req struct {
		Delta  int    `json:"delta"`
		Reason string `json:"reason"`
	}
	if err := strictDecode(r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := orchestrators.ExecuteAdjustPoints(r.Context(), orchestrators.AdjustPointsInput{
		MemberID: r.PathValue("id"),
		Delta:    req.Delta,
		Reason:   req.Reason,
		ActorID:  actor,
	}, orchestrators.AdjustPointsDeps{Ledger: a.stores.LedgerStore, Now: a.clock.Now})
	if err != nil {
		domainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":     result.Member.ID,
		"name":   result.Member.Name,
		"points": result.NewPoints,
	})
}

// handleGiveCard records a yellow or red card
// (POST /api/members/{id}/cards).
func (a *api) handleGiveCard(w http.ResponseWriter, r *http.Request) {
	actor := actorID(r)
	if actor == "" {
		errorJSON(w, http.StatusBadRequest, "X-Actor-ID header is required")
		return
	}

	var req struct {
		Kind    string `json:"kind"`
		Penalty int    `json:"penalty"`
		Reason  string `json:"reason"`
	}
	if err := strictDecode(r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := orchestrators.ExecuteGiveCard(r.Context(), orchestrators.GiveCardInput{
		MemberID: r.PathValue("id"),
		Kind:     req.Kind,
		Penalty:  req.Penalty,
		Reason:   req.Reason,
		ActorID:  actor,
	}, orchestrators.GiveCardDeps{Ledger: a.stores.LedgerStore, Now: a.clock.Now})
	if err != nil {
		domainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":           result.Member.ID,
		"name":         result.Member.Name,
		"points":       result.Member.Points,
		"yellow_cards": result.Member.YellowCards,
		"red_cards":    result.Member.RedCards,
	})
}

// handleResetScores zeroes scoped counters for all members
// (POST /api/admin/reset).
func (a *api) handleResetScores(w http.ResponseWriter, r *http.Request) {
	actor := actorID(r)
	if actor == "" {
		errorJSON(w, http.StatusBadRequest, "X-Actor-ID header is required")
		return
	}

	var req struct {
		Scope string `json:"scope"`
	}
	if err := strictDecode(r, &req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err := orchestrators.ExecuteResetScores(r.Context(), orchestrators.ResetScoresInput{
		Scope:   req.Scope,
		ActorID: actor,
	}, orchestrators.ResetScoresDeps{Ledger: a.stores.LedgerStore})
	if err != nil {
		domainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset", "scope": req.Scope})
}

type logEntryJSON struct {
	ID            string `json:"id"`
	CreatedAt     string `json:"created_at"`
	MemberID      string `json:"member_id"`
	MemberName    string `json:"member_name"`
	PointsChanged int    `json:"points_changed"`
	Reason        string `json:"reason"`
	ActorID       string `json:"actor_id"`
}

// handleLogHistory returns a filtered page of the audit trail
// (GET /api/logs).
func (a *api) handleLogHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := projections.QueryGetLogHistory(r.Context(), projections.GetLogHistoryQuery{
		MemberID: q.Get("member_id"),
		ActorID:  q.Get("actor_id"),
		FromDate: q.Get("from"),
		ToDate:   q.Get("to"),
		Page:     listutil.ParsePageParams(q),
	}, projections.GetLogHistoryDeps{LogStore: a.stores.LogStore})
	if err != nil {
		internalError(w, err)
		return
	}

	entries := make([]logEntryJSON, 0, len(result.Entries))
	for _, e := range result.Entries {
		entries = append(entries, logEntryJSON{
			ID:            e.ID,
			CreatedAt:     e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			MemberID:      e.MemberID,
			MemberName:    e.MemberName,
			PointsChanged: e.PointsChanged,
			Reason:        e.Reason,
			ActorID:       e.ActorID,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"entries":     entries,
		"page":        result.PageInfo.Page,
		"per_page":    result.PageInfo.PerPage,
		"total":       result.PageInfo.Total,
		"total_pages": result.PageInfo.TotalPages,
	})
}
