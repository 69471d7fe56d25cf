package match

import (
	"errors"
	"fmt"
)

var (
	ErrNegativePoints       = errors.New("points cannot be negative")
	ErrInningsRequired      = errors.New("innings are required and must be greater than zero")
	ErrInvalidInnings       = errors.New("innings must be greater than zero")
	ErrNegativeHighRun      = errors.New("high run cannot be negative")
	ErrHighRunExceedsPoints = errors.New("high run cannot exceed points scored")
	ErrHighRunNotTracked    = errors.New("high runs are not tracked this season")
)

// ScoreRules is the slice of season configuration that governs result entry.
type ScoreRules struct {
	InningsRequired bool
	HighRunEnabled  bool
}

// Score is a reported result before it is attached to a match.
type Score struct {
	PointsA  int
	PointsB  int
	Innings  *int
	HighRunA *int
	HighRunB *int
}

// ValidateScore checks a reported score against the season rules. Checks run
// in a fixed order so the first violation is reported.
func ValidateScore(score Score, rules ScoreRules) error {
	if score.PointsA < 0 || score.PointsB < 0 {
		return ErrNegativePoints
	}

	if score.Innings == nil {
		if rules.InningsRequired {
			return ErrInningsRequired
		}
	} else if *score.Innings <= 0 {
		if rules.InningsRequired {
			return ErrInningsRequired
		}
		return ErrInvalidInnings
	}

	if !rules.HighRunEnabled && (score.HighRunA != nil || score.HighRunB != nil) {
		return ErrHighRunNotTracked
	}
	if err := validateHighRun("A", score.HighRunA, score.PointsA); err != nil {
		return err
	}
	if err := validateHighRun("B", score.HighRunB, score.PointsB); err != nil {
		return err
	}

	return nil
}

func validateHighRun(side string, highRun *int, points int) error {
	if highRun == nil {
		return nil
	}
	if *highRun < 0 {
		return fmt.Errorf("%w: player %s", ErrNegativeHighRun, side)
	}
	if *highRun > points {
		return fmt.Errorf("%w: player %s high run %d, points %d", ErrHighRunExceedsPoints, side, *highRun, points)
	}
	return nil
}
