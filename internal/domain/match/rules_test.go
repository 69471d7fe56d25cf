package match

import (
	"errors"
	"testing"
)

func intPtr(v int) *int {
	return &v
}

func TestValidateScore(t *testing.T) {
	tracked := ScoreRules{InningsRequired: true, HighRunEnabled: true}

	tests := []struct {
		name      string
		score     Score
		rules     ScoreRules
		targetErr error
	}{
		{
			name:  "valid full score",
			score: Score{PointsA: 100, PointsB: 72, Innings: intPtr(25), HighRunA: intPtr(14), HighRunB: intPtr(9)},
			rules: tracked,
		},
		{
			name:  "zero points allowed",
			score: Score{PointsA: 0, PointsB: 100, Innings: intPtr(12)},
			rules: tracked,
		},
		{
			name:      "negative points",
			score:     Score{PointsA: -1, PointsB: 100, Innings: intPtr(25)},
			rules:     tracked,
			targetErr: ErrNegativePoints,
		},
		{
			name:      "missing innings when required",
			score:     Score{PointsA: 100, PointsB: 80},
			rules:     tracked,
			targetErr: ErrInningsRequired,
		},
		{
			name:      "zero innings when required",
			score:     Score{PointsA: 100, PointsB: 80, Innings: intPtr(0)},
			rules:     tracked,
			targetErr: ErrInningsRequired,
		},
		{
			name:  "missing innings when optional",
			score: Score{PointsA: 100, PointsB: 80},
			rules: ScoreRules{HighRunEnabled: true},
		},
		{
			name:      "zero innings when optional",
			score:     Score{PointsA: 100, PointsB: 80, Innings: intPtr(0)},
			rules:     ScoreRules{HighRunEnabled: true},
			targetErr: ErrInvalidInnings,
		},
		{
			name:      "high run above points for player A",
			score:     Score{PointsA: 50, PointsB: 60, Innings: intPtr(20), HighRunA: intPtr(60)},
			rules:     tracked,
			targetErr: ErrHighRunExceedsPoints,
		},
		{
			name:      "high run above points for player B",
			score:     Score{PointsA: 50, PointsB: 10, Innings: intPtr(20), HighRunB: intPtr(11)},
			rules:     tracked,
			targetErr: ErrHighRunExceedsPoints,
		},
		{
			name:  "high run equal to points",
			score: Score{PointsA: 50, PointsB: 10, Innings: intPtr(20), HighRunA: intPtr(50), HighRunB: intPtr(10)},
			rules: tracked,
		},
		{
			name:      "negative high run",
			score:     Score{PointsA: 50, PointsB: 10, Innings: intPtr(20), HighRunA: intPtr(-2)},
			rules:     tracked,
			targetErr: ErrNegativeHighRun,
		},
		{
			name:      "high run when not tracked",
			score:     Score{PointsA: 50, PointsB: 10, Innings: intPtr(20), HighRunA: intPtr(5)},
			rules:     ScoreRules{InningsRequired: true},
			targetErr: ErrHighRunNotTracked,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateScore(tc.score, tc.rules)
			if tc.targetErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.targetErr) {
				t.Fatalf("expected error %v, got %v", tc.targetErr, err)
			}
		})
	}
}

func TestStatusCanTransition(t *testing.T) {
	allowed := map[Status][]Status{
		StatusScheduled: {StatusSubmitted},
		StatusSubmitted: {StatusApproved, StatusLocked},
		StatusApproved:  {StatusLocked},
		StatusLocked:    nil,
	}
	all := []Status{StatusScheduled, StatusSubmitted, StatusApproved, StatusLocked}

	for from, targets := range allowed {
		permitted := make(map[Status]bool, len(targets))
		for _, to := range targets {
			permitted[to] = true
		}
		for _, to := range all {
			if got := from.CanTransition(to); got != permitted[to] {
				t.Fatalf("%s -> %s: expected %v, got %v", from, to, permitted[to], got)
			}
		}
	}
}

func TestResultWinnerID(t *testing.T) {
	m := Match{PlayerAID: "a", PlayerBID: "b"}
	if got := (Result{PointsA: 3, PointsB: 1}).WinnerID(m); got != "a" {
		t.Fatalf("expected a, got %q", got)
	}
	if got := (Result{PointsA: 1, PointsB: 3}).WinnerID(m); got != "b" {
		t.Fatalf("expected b, got %q", got)
	}
	if got := (Result{PointsA: 2, PointsB: 2}).WinnerID(m); got != "" {
		t.Fatalf("expected tie, got %q", got)
	}
}
