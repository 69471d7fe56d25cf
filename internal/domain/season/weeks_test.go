package season

import (
	"fmt"
	"testing"
	"time"
)

func TestPlanWeeks(t *testing.T) {
	seq := 0
	newID := func() string {
		seq++
		return fmt.Sprintf("w%d", seq)
	}
	start := time.Date(2024, time.January, 1, 19, 30, 0, 0, time.FixedZone("x", 3600))

	weeks := PlanWeeks("s1", start, newID)
	if len(weeks) != WeeksPerSeason {
		t.Fatalf("expected %d weeks, got %d", WeeksPerSeason, len(weeks))
	}

	first := weeks[0]
	if first.Number != 1 || first.SeasonID != "s1" || first.ID != "w1" {
		t.Fatalf("unexpected first week: %+v", first)
	}
	if got := first.StartDate.Format(time.DateOnly); got != "2024-01-01" {
		t.Fatalf("unexpected week 1 start: %s", got)
	}
	if got := first.EndDate.Format(time.DateOnly); got != "2024-01-07" {
		t.Fatalf("unexpected week 1 end: %s", got)
	}

	last := weeks[11]
	if last.Number != 12 {
		t.Fatalf("expected last week number 12, got %d", last.Number)
	}
	if got := last.StartDate.Format(time.DateOnly); got != "2024-03-18" {
		t.Fatalf("unexpected week 12 start: %s", got)
	}
	if got := last.EndDate.Format(time.DateOnly); got != "2024-03-24" {
		t.Fatalf("unexpected week 12 end: %s", got)
	}

	for i := 1; i < len(weeks); i++ {
		gap := weeks[i].StartDate.Sub(weeks[i-1].StartDate)
		if gap != 7*24*time.Hour {
			t.Fatalf("week %d does not start seven days after week %d", weeks[i].Number, weeks[i-1].Number)
		}
	}
}

func TestSeasonValidate(t *testing.T) {
	base := Season{
		ID:        "s1",
		LeagueID:  "l1",
		Name:      "Spring 2024",
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 3, 24, 0, 0, 0, 0, time.UTC),
	}.WithDefaults()

	if base.RaceToDefault != DefaultRaceTo {
		t.Fatalf("expected default race-to %d, got %d", DefaultRaceTo, base.RaceToDefault)
	}
	if base.SubmissionRule != SubmissionPlayerSubmits || base.HandicapMethod != HandicapAdjustedRaceTo {
		t.Fatalf("unexpected defaults: %+v", base)
	}
	if err := base.Validate(); err != nil {
		t.Fatalf("expected valid season, got %v", err)
	}

	reversed := base
	reversed.EndDate = base.StartDate.AddDate(0, 0, -1)
	if err := reversed.Validate(); err == nil {
		t.Fatalf("expected error for end before start")
	}

	unknownRule := base
	unknownRule.SubmissionRule = "anyone"
	if err := unknownRule.Validate(); err == nil {
		t.Fatalf("expected error for unknown submission rule")
	}
}
