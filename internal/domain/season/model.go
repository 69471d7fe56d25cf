package season

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	DefaultRaceTo  = 100
	WeeksPerSeason = 12
)

var (
	ErrInvalidDateRange      = errors.New("season end date is before start date")
	ErrUnknownSubmissionRule = errors.New("unknown submission rule")
	ErrUnknownHandicapMethod = errors.New("unknown handicap method")
)

type SubmissionRule string

const (
	// SubmissionPlayerSubmits lets either participant or the owner report a result.
	SubmissionPlayerSubmits SubmissionRule = "player_submits"
	// SubmissionScorekeeperSubmits restricts reporting to the league owner.
	SubmissionScorekeeperSubmits SubmissionRule = "scorekeeper_submits"
)

type HandicapMethod string

const (
	HandicapAdjustedRaceTo HandicapMethod = "adjusted_race_to"
	HandicapSpotPoints     HandicapMethod = "spot_points"
	HandicapNone           HandicapMethod = "none"
)

// Season groups weekly matches under a shared rule set.
type Season struct {
	ID              string
	LeagueID        string
	Name            string
	StartDate       time.Time
	EndDate         time.Time
	RaceToDefault   int
	InningsRequired bool
	HighRunEnabled  bool
	HandicapMethod  HandicapMethod
	SubmissionRule  SubmissionRule
	CreatedAt       time.Time
}

// WithDefaults fills rule fields left empty by the caller.
func (s Season) WithDefaults() Season {
	if s.RaceToDefault <= 0 {
		s.RaceToDefault = DefaultRaceTo
	}
	if s.SubmissionRule == "" {
		s.SubmissionRule = SubmissionPlayerSubmits
	}
	if s.HandicapMethod == "" {
		s.HandicapMethod = HandicapAdjustedRaceTo
	}
	return s
}

func (s Season) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("season id is required")
	}
	if s.LeagueID == "" {
		return fmt.Errorf("season league id is required")
	}
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("season name is required")
	}
	if s.StartDate.IsZero() || s.EndDate.IsZero() {
		return fmt.Errorf("season start and end dates are required")
	}
	if s.EndDate.Before(s.StartDate) {
		return fmt.Errorf("%w: start=%s end=%s", ErrInvalidDateRange, s.StartDate.Format(time.DateOnly), s.EndDate.Format(time.DateOnly))
	}
	if s.RaceToDefault <= 0 {
		return fmt.Errorf("season race-to must be greater than zero")
	}
	switch s.SubmissionRule {
	case SubmissionPlayerSubmits, SubmissionScorekeeperSubmits:
	default:
		return fmt.Errorf("%w: %s", ErrUnknownSubmissionRule, s.SubmissionRule)
	}
	switch s.HandicapMethod {
	case HandicapAdjustedRaceTo, HandicapSpotPoints, HandicapNone:
	default:
		return fmt.Errorf("%w: %s", ErrUnknownHandicapMethod, s.HandicapMethod)
	}

	return nil
}

// Week is one scheduling period of a season.
type Week struct {
	ID        string
	SeasonID  string
	Number    int
	StartDate time.Time
	EndDate   time.Time
}
