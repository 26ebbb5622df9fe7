package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"
)

// ReshuffleSelectionStore adds the delete operation the reshuffle needs.
type ReshuffleSelectionStore interface {
	SchedulerSelectionStore
	Delete(ctx context.Context, date string) error
}

// ReshuffleSpeakersInput carries input for the admin reshuffle.
type ReshuffleSpeakersInput struct {
	Date    string // calendar date (YYYY-MM-DD); empty means Deps.Today()
	ActorID string // admin performing the override
}

// ReshuffleSpeakersDeps holds dependencies for the reshuffle.
type ReshuffleSpeakersDeps struct {
	SelectionStore ReshuffleSelectionStore
	HistoryStore   SchedulerHistoryStore
	MemberStore    SpeakerDirectory
	Today          func() string
	Now            func() time.Time
	Rand           *rand.Rand
	Announcer      *AnnounceSpeakersDeps
}

// schedulerDeps narrows reshuffle deps to the selection orchestrator's.
func (d ReshuffleSpeakersDeps) schedulerDeps() SelectSpeakersDeps {
	return SelectSpeakersDeps{
		SelectionStore: d.SelectionStore,
		HistoryStore:   d.HistoryStore,
		MemberStore:    d.MemberStore,
		Today:          d.Today,
		Now:            d.Now,
		Rand:           d.Rand,
		Announcer:      d.Announcer,
	}
}

// ExecuteReshuffleSpeakers discards the date's committed selection and
// runs the selection algorithm again. This is the only path that yields
// more than one selection for a date over time, and it is an explicit
// admin override, not part of the normal daily flow.
// PRE: ActorID identifies an authorized admin (enforced upstream)
// POST: A fresh selection is committed and returned
func ExecuteReshuffleSpeakers(ctx context.Context, input ReshuffleSpeakersInput, deps ReshuffleSpeakersDeps) (SelectSpeakersResult, error) {
	if input.ActorID == "" {
		return SelectSpeakersResult{}, errors.New("actor ID is required for a reshuffle")
	}
	date := input.Date
	if date == "" {
		date = deps.Today()
	}

	if err := deps.SelectionStore.Delete(ctx, date); err != nil {
		return SelectSpeakersResult{}, err
	}
	slog.Info("speakers_reshuffled", "date", date, "actor_id", input.ActorID)

	return ExecuteSelectSpeakers(ctx, SelectSpeakersInput{Date: date}, deps.schedulerDeps())
}
