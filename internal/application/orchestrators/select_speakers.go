package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"pointsboard/internal/domain/member"
	"pointsboard/internal/domain/rotation"
)

// maxSelectionAttempts bounds the commit-conflict retry loop. A lost
// race re-reads the winner's selection; pathological contention must not
// recurse forever.
const maxSelectionAttempts = 3

// ErrSelectionRetriesExhausted reports that the scheduler could neither
// commit a selection nor read a winner within the retry budget.
var ErrSelectionRetriesExhausted = errors.New("could not resolve daily selection after retries")

// SchedulerSelectionStore is the daily-selection store interface the
// scheduler needs.
type SchedulerSelectionStore interface {
	Get(ctx context.Context, date string) (rotation.Selection, error)
	Create(ctx context.Context, sel rotation.Selection) error
}

// SchedulerHistoryStore is the speaker-history store interface the
// scheduler needs.
type SchedulerHistoryStore interface {
	ListAll(ctx context.Context) ([]rotation.HistoryEntry, error)
	RecordSelection(ctx context.Context, memberID, date string) error
}

// SpeakerDirectory is the member directory interface the scheduler needs.
type SpeakerDirectory interface {
	List(ctx context.Context) ([]member.Member, error)
}

// SelectSpeakersInput carries input for the speaker selection orchestrator.
type SelectSpeakersInput struct {
	Date string // calendar date (YYYY-MM-DD); empty means Deps.Today()
}

// SelectSpeakersResult carries the resolved speaker set for the date.
type SelectSpeakersResult struct {
	Date     string
	Speakers []member.Member
	Selected bool // true if this call committed a new selection
}

// SelectSpeakersDeps holds dependencies for speaker selection.
type SelectSpeakersDeps struct {
	SelectionStore SchedulerSelectionStore
	HistoryStore   SchedulerHistoryStore
	MemberStore    SpeakerDirectory
	Today          func() string         // fixed-timezone calendar date provider
	Now            func() time.Time      // timestamp source for the commit record
	Rand           *rand.Rand            // nil seeds from the wall clock
	Announcer      *AnnounceSpeakersDeps // optional: nil skips announcement
}

// ExecuteSelectSpeakers returns the date's committed speaker set,
// selecting and committing one first if none exists. Repeated calls for
// the same date return the same pair; concurrent first callers serialize
// on the storage layer's unique date constraint, with losers re-reading
// the winner's selection.
// PRE: stores and Today/Now are wired
// POST: Exactly one committed selection exists for the date (directory
// size permitting) and its members are returned
func ExecuteSelectSpeakers(ctx context.Context, input SelectSpeakersInput, deps SelectSpeakersDeps) (SelectSpeakersResult, error) {
	date := input.Date
	if date == "" {
		date = deps.Today()
	}
	rng := deps.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	for attempt := 0; attempt < maxSelectionAttempts; attempt++ {
		sel, err := deps.SelectionStore.Get(ctx, date)
		if err == nil {
			speakers, err := resolveSpeakers(ctx, deps.MemberStore, sel.MemberIDs)
			if err != nil {
				return SelectSpeakersResult{}, err
			}
			return SelectSpeakersResult{Date: date, Speakers: speakers}, nil
		}
		if !errors.Is(err, rotation.ErrNoSelection) {
			return SelectSpeakersResult{}, err
		}

		members, err := deps.MemberStore.List(ctx)
		if err != nil {
			return SelectSpeakersResult{}, err
		}
		history, err := deps.HistoryStore.ListAll(ctx)
		if err != nil {
			return SelectSpeakersResult{}, err
		}

		ids := rotation.ChooseSpeakers(members, history, rng)

		// A directory below the speaker count yields whatever exists
		// and writes no rotation state.
		if len(ids) < rotation.SpeakersPerDay {
			return SelectSpeakersResult{Date: date, Speakers: pickMembers(members, ids)}, nil
		}

		sel = rotation.Selection{SelectedDate: date, MemberIDs: ids, CreatedAt: deps.Now()}
		if err := sel.Validate(); err != nil {
			return SelectSpeakersResult{}, err
		}

		err = deps.SelectionStore.Create(ctx, sel)
		if errors.Is(err, rotation.ErrSelectionExists) {
			// Lost the race: discard the local candidates and re-read
			// the winner's selection.
			continue
		}
		if err != nil {
			return SelectSpeakersResult{}, err
		}

		// The committed selection is the source of truth; history
		// updates are best-effort per member and eligible for
		// out-of-band repair.
		for _, id := range ids {
			if err := deps.HistoryStore.RecordSelection(ctx, id, date); err != nil {
				slog.Error("speaker_history_update_failed", "member_id", id, "date", date, "error", err)
			}
		}

		speakers := pickMembers(members, ids)
		slog.Info("speakers_selected", "date", date, "member_ids", ids)

		if deps.Announcer != nil {
			announceInput := AnnounceSpeakersInput{Date: date, Speakers: speakers}
			if err := ExecuteAnnounceSpeakers(ctx, announceInput, *deps.Announcer); err != nil {
				slog.Error("speaker_announcement_failed", "date", date, "error", err)
			}
		}

		return SelectSpeakersResult{Date: date, Speakers: speakers, Selected: true}, nil
	}

	return SelectSpeakersResult{}, ErrSelectionRetriesExhausted
}

// resolveSpeakers maps committed member ids back to directory entries.
// Members removed from the directory after selection are skipped.
func resolveSpeakers(ctx context.Context, directory SpeakerDirectory, ids []string) ([]member.Member, error) {
	members, err := directory.List(ctx)
	if err != nil {
		return nil, err
	}
	resolved := pickMembers(members, ids)
	if len(resolved) < len(ids) {
		slog.Warn("selected_speaker_missing_from_directory", "selected", ids, "resolved", len(resolved))
	}
	return resolved, nil
}

// pickMembers returns the directory entries matching ids, in id order.
func pickMembers(members []member.Member, ids []string) []member.Member {
	byID := make(map[string]member.Member, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}
	picked := make([]member.Member, 0, len(ids))
	for _, id := range ids {
		if m, ok := byID[id]; ok {
			picked = append(picked, m)
		}
	}
	return picked
}
