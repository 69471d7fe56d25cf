package match

import (
	"fmt"
	"time"
)

// Status is a match's position in the result lifecycle.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusLocked    Status = "locked"
)

var statusRank = map[Status]int{
	StatusScheduled: 0,
	StatusSubmitted: 1,
	StatusApproved:  2,
	StatusLocked:    3,
}

func (s Status) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// CanTransition reports whether a match may move from s to next. Transitions
// only move forward; submitted may skip approval and go straight to locked.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case StatusScheduled:
		return next == StatusSubmitted
	case StatusSubmitted:
		return next == StatusApproved || next == StatusLocked
	case StatusApproved:
		return next == StatusLocked
	default:
		return false
	}
}

// HasResult reports whether a match in this status must carry a result.
func (s Status) HasResult() bool {
	return statusRank[s] >= statusRank[StatusSubmitted]
}

// Match is one scheduled head-to-head between two players in a season week.
type Match struct {
	ID          string
	SeasonID    string
	WeekID      string
	PlayerAID   string
	PlayerBID   string
	VenueID     string
	ScheduledAt *time.Time
	RaceTo      int
	Status      Status
	Version     int64
}

func (m Match) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("match id is required")
	}
	if m.SeasonID == "" || m.WeekID == "" {
		return fmt.Errorf("match season and week are required")
	}
	if m.PlayerAID == "" || m.PlayerBID == "" {
		return fmt.Errorf("match players are required")
	}
	if m.PlayerAID == m.PlayerBID {
		return fmt.Errorf("match players must be different")
	}
	if !m.Status.Valid() {
		return fmt.Errorf("unknown match status: %s", m.Status)
	}

	return nil
}

func (m Match) PlayerIDs() []string {
	return []string{m.PlayerAID, m.PlayerBID}
}

// Result holds the reported score of a match and its approval trail.
type Result struct {
	MatchID     string
	PointsA     int
	PointsB     int
	Innings     *int
	HighRunA    *int
	HighRunB    *int
	Notes       string
	SubmittedBy string
	SubmittedAt time.Time
	ApprovedBy  string
	ApprovedAt  *time.Time
	LockedBy    string
	LockedAt    *time.Time
}

// WinnerID returns the winning player id, or empty on a tie.
func (r Result) WinnerID(m Match) string {
	switch {
	case r.PointsA > r.PointsB:
		return m.PlayerAID
	case r.PointsB > r.PointsA:
		return m.PlayerBID
	default:
		return ""
	}
}
