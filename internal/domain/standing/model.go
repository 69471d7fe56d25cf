package standing

import (
	"sort"
	"time"
)

// Standing is one player's aggregated row in a season table. Rows are
// produced by the database aggregation and are read-only to the service.
type Standing struct {
	SeasonID          string
	PlayerID          string
	MatchesPlayed     int
	Wins              int
	Losses            int
	PointsFor         int
	PointsAgainst     int
	PointDifferential int
	TotalInnings      int
	PPI               float64
	HighRun           int
	UpdatedAt         time.Time
}

// Sort orders a season table by wins, then points per inning, then player id.
func Sort(rows []Standing) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Wins != rows[j].Wins {
			return rows[i].Wins > rows[j].Wins
		}
		if rows[i].PPI != rows[j].PPI {
			return rows[i].PPI > rows[j].PPI
		}
		return rows[i].PlayerID < rows[j].PlayerID
	})
}
