package adminlog

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxReasonLength caps the free-text reason field.
const MaxReasonLength = 500

// Domain errors.
var (
	ErrEmptyMemberID = errors.New("member ID is required")
	ErrEmptyActorID  = errors.New("actor ID is required")
	ErrReasonTooLong = errors.New("reason cannot exceed 500 characters")
)

// Entry is one immutable audit record of a point-affecting admin action.
// MemberName is a deliberate snapshot taken at write time: members can be
// renamed later and the log must show who they were when it happened.
type Entry struct {
	ID            string
	CreatedAt     time.Time
	MemberID      string
	MemberName    string
	PointsChanged int
	Reason        string
	ActorID       string
}

// NewEntry builds an audit entry for a point or card action.
// PRE: memberID and actorID are non-empty
// POST: Entry has a fresh ID and the provided timestamp
func NewEntry(now time.Time, memberID, memberName string, pointsChanged int, reason, actorID string) Entry {
	return Entry{
		ID:            uuid.New().String(),
		CreatedAt:     now,
		MemberID:      memberID,
		MemberName:    memberName,
		PointsChanged: pointsChanged,
		Reason:        strings.TrimSpace(reason),
		ActorID:       actorID,
	}
}

// Validate checks that the Entry has valid data.
// POST: Returns nil if valid, error otherwise
func (e *Entry) Validate() error {
	if e.MemberID == "" {
		return ErrEmptyMemberID
	}
	if e.ActorID == "" {
		return ErrEmptyActorID
	}
	if len(e.Reason) > MaxReasonLength {
		return ErrReasonTooLong
	}
	if e.CreatedAt.IsZero() {
		return errors.New("created_at must be set")
	}
	return nil
}
