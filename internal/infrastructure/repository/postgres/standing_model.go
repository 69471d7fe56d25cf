package postgres

import (
	"database/sql"
	"time"
)

type standingTableModel struct {
	SeasonID          string    `db:"season_id"`
	PlayerID          string    `db:"player_id"`
	MatchesPlayed     int       `db:"matches_played"`
	Wins              int       `db:"wins"`
	Losses            int       `db:"losses"`
	PointsFor         int       `db:"points_for"`
	PointsAgainst     int       `db:"points_against"`
	PointDifferential int       `db:"point_differential"`
	TotalInnings      int       `db:"total_innings"`
	PPI               float64   `db:"ppi"`
	HighRun           int       `db:"high_run"`
	UpdatedAt         time.Time `db:"updated_at"`
}

type recomputeTaskTableModel struct {
	ID          string         `db:"id"`
	SeasonID    string         `db:"season_id"`
	Reason      string         `db:"reason"`
	Status      string         `db:"status"`
	Attempts    int            `db:"attempts"`
	LastError   sql.NullString `db:"last_error"`
	AvailableAt time.Time      `db:"available_at"`
	CreatedAt   time.Time      `db:"created_at"`
	CompletedAt *time.Time     `db:"completed_at"`
}

type recomputeTaskInsertModel struct {
	ID          string    `db:"id"`
	SeasonID    string    `db:"season_id"`
	Reason      string    `db:"reason"`
	Status      string    `db:"status"`
	Attempts    int       `db:"attempts"`
	AvailableAt time.Time `db:"available_at"`
	CreatedAt   time.Time `db:"created_at"`
}
