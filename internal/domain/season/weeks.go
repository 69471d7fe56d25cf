package season

import "time"

// PlanWeeks lays out the fixed weekly calendar of a season. Week n starts
// 7*(n-1) days after start and ends six days after its own start. Dates are
// truncated to UTC midnight.
func PlanWeeks(seasonID string, start time.Time, newID func() string) []Week {
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)

	weeks := make([]Week, 0, WeeksPerSeason)
	for n := 1; n <= WeeksPerSeason; n++ {
		weekStart := day.AddDate(0, 0, 7*(n-1))
		weeks = append(weeks, Week{
			ID:        newID(),
			SeasonID:  seasonID,
			Number:    n,
			StartDate: weekStart,
			EndDate:   weekStart.AddDate(0, 0, 6),
		})
	}
	return weeks
}
