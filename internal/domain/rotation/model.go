package rotation

import (
	"errors"
	"math/rand"
	"sort"
	"time"

	"pointsboard/internal/domain/member"
)

// SpeakersPerDay is how many members are spotlighted each day.
const SpeakersPerDay = 2

// DateLayout is the calendar-date key format for all rotation state.
const DateLayout = "2006-01-02"

// Domain errors.
var (
	ErrSelectionExists  = errors.New("a selection already exists for this date")
	ErrNoSelection      = errors.New("no selection exists for this date")
	ErrInvalidDate      = errors.New("selected date must be formatted as YYYY-MM-DD")
	ErrTooFewMemberIDs  = errors.New("selection must hold at least one member id")
	ErrDuplicateMembers = errors.New("selection must hold distinct member ids")
)

// Selection is the committed speaker set for one calendar date.
// INVARIANT: At most one committed Selection per SelectedDate; immutable
// after commit except through an explicit admin reshuffle.
type Selection struct {
	SelectedDate string
	MemberIDs    []string
	CreatedAt    time.Time
}

// Validate checks the selection's invariants.
// POST: returns nil if valid, error describing the first violation otherwise
func (s *Selection) Validate() error {
	if _, err := time.Parse(DateLayout, s.SelectedDate); err != nil {
		return ErrInvalidDate
	}
	if len(s.MemberIDs) == 0 {
		return ErrTooFewMemberIDs
	}
	seen := make(map[string]bool, len(s.MemberIDs))
	for _, id := range s.MemberIDs {
		if seen[id] {
			return ErrDuplicateMembers
		}
		seen[id] = true
	}
	return nil
}

// HistoryEntry records how often and how recently a member has spoken.
// Absence of an entry means the member has never been selected.
type HistoryEntry struct {
	MemberID         string
	LastSelectedDate string
	SelectionCount   int
}

// ChooseSpeakers picks up to SpeakersPerDay distinct member ids using the
// tiered fairness policy:
//
//  1. Two or more members without history: uniform random pair from them.
//  2. Exactly one member without history: pair it with the spoken member
//     having the lowest selection count (oldest last date breaks ties);
//     that partner is deterministic, not random.
//  3. Everyone has spoken: uniform random pair from the full directory.
//     A least-recently-used pick would be stricter but the reset pass
//     keeps the rotation live once the first cycle completes.
//
// Directories smaller than SpeakersPerDay yield whatever exists.
// PRE: rng is non-nil; history has at most one entry per member
// POST: returned ids are distinct and drawn from members
func ChooseSpeakers(members []member.Member, history []HistoryEntry, rng *rand.Rand) []string {
	if len(members) == 0 {
		return nil
	}

	byMember := make(map[string]HistoryEntry, len(history))
	for _, h := range history {
		byMember[h.MemberID] = h
	}

	var unspoken, spoken []string
	for _, m := range members {
		if _, ok := byMember[m.ID]; ok {
			spoken = append(spoken, m.ID)
		} else {
			unspoken = append(unspoken, m.ID)
		}
	}

	if len(members) <= SpeakersPerDay {
		ids := make([]string, 0, len(members))
		for _, m := range members {
			ids = append(ids, m.ID)
		}
		return ids
	}

	switch {
	case len(unspoken) >= SpeakersPerDay:
		return samplePair(unspoken, rng)
	case len(unspoken) == 1:
		partner := leastSelected(spoken, byMember)
		return []string{unspoken[0], partner}
	default:
		all := make([]string, 0, len(members))
		for _, m := range members {
			all = append(all, m.ID)
		}
		return samplePair(all, rng)
	}
}

// samplePair shuffles a copy of the pool and takes the first two ids, so
// every candidate has equal selection probability.
func samplePair(pool []string, rng *rand.Rand) []string {
	shuffled := make([]string, len(pool))
	copy(shuffled, pool)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:SpeakersPerDay]
}

// leastSelected returns the spoken member with the lowest selection
// count, breaking ties by oldest last-selected date, then by id so the
// result is stable.
func leastSelected(spoken []string, byMember map[string]HistoryEntry) string {
	sorted := make([]string, len(spoken))
	copy(sorted, spoken)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := byMember[sorted[i]], byMember[sorted[j]]
		if a.SelectionCount != b.SelectionCount {
			return a.SelectionCount < b.SelectionCount
		}
		if a.LastSelectedDate != b.LastSelectedDate {
			return a.LastSelectedDate < b.LastSelectedDate
		}
		return sorted[i] < sorted[j]
	})
	return sorted[0]
}
