package member

import (
	"errors"
	"strings"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength = 100
)

// Card kind constants.
const (
	CardYellow = "yellow"
	CardRed    = "red"
)

// DefaultRedCardPenalty is the point deduction applied with a red card
// when the caller does not supply one.
const DefaultRedCardPenalty = 5

// Domain errors.
var (
	ErrNotFound           = errors.New("member not found")
	ErrInsufficientPoints = errors.New("adjustment would make points negative")
	ErrZeroDelta          = errors.New("point delta cannot be zero")
	ErrInvalidCardKind    = errors.New("card kind must be 'yellow' or 'red'")
	ErrNegativePenalty    = errors.New("card penalty cannot be negative")
)

// Member holds state for a tracked cohort participant.
// INVARIANT: Points, YellowCards and RedCards are never negative.
type Member struct {
	ID          string
	Name        string
	Points      int
	YellowCards int
	RedCards    int
}

// Validate checks if the Member has valid data.
// PRE: Member struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (m *Member) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return errors.New("member name cannot be empty")
	}
	if len(m.Name) > MaxNameLength {
		return errors.New("member name cannot exceed 100 characters")
	}
	if m.Points < 0 {
		return errors.New("points cannot be negative")
	}
	if m.YellowCards < 0 || m.RedCards < 0 {
		return errors.New("card counts cannot be negative")
	}
	return nil
}

// AdjustPoints applies a signed delta to the member's point balance.
// A delta that would drive the balance below zero is rejected outright
// and leaves the member unchanged, so the caller can report the deficit.
// PRE: delta != 0
// POST: Points = old Points + delta, or error with Points unchanged
func (m *Member) AdjustPoints(delta int) error {
	if delta == 0 {
		return ErrZeroDelta
	}
	candidate := m.Points + delta
	if candidate < 0 {
		return ErrInsufficientPoints
	}
	m.Points = candidate
	return nil
}

// GiveYellowCard records a yellow card. No point change.
// POST: YellowCards incremented by 1
func (m *Member) GiveYellowCard() {
	m.YellowCards++
}

// GiveRedCard records a red card and deducts up to penalty points.
// Unlike AdjustPoints, the deduction is capped at the current balance
// rather than rejected: the card always registers even when the point
// debt cannot be fully paid.
// PRE: penalty >= 0
// POST: RedCards incremented by 1; returns the deduction actually applied
func (m *Member) GiveRedCard(penalty int) (int, error) {
	if penalty < 0 {
		return 0, ErrNegativePenalty
	}
	applied := penalty
	if applied > m.Points {
		applied = m.Points
	}
	m.Points -= applied
	m.RedCards++
	return applied, nil
}
