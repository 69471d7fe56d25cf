package postgres

import (
	"database/sql"
	"time"
)

type matchTableModel struct {
	ID          string         `db:"id"`
	SeasonID    string         `db:"season_id"`
	WeekID      string         `db:"week_id"`
	PlayerAID   string         `db:"player_a_id"`
	PlayerBID   string         `db:"player_b_id"`
	VenueID     sql.NullString `db:"venue_id"`
	ScheduledAt *time.Time     `db:"scheduled_at"`
	RaceTo      int            `db:"race_to"`
	Status      string         `db:"status"`
	Version     int64          `db:"version"`
}

type matchResultTableModel struct {
	MatchID     string         `db:"match_id"`
	PointsA     int            `db:"points_a"`
	PointsB     int            `db:"points_b"`
	Innings     sql.NullInt64  `db:"innings"`
	HighRunA    sql.NullInt64  `db:"high_run_a"`
	HighRunB    sql.NullInt64  `db:"high_run_b"`
	Notes       sql.NullString `db:"notes"`
	SubmittedBy string         `db:"submitted_by"`
	SubmittedAt time.Time      `db:"submitted_at"`
	ApprovedBy  sql.NullString `db:"approved_by"`
	ApprovedAt  *time.Time     `db:"approved_at"`
	LockedBy    sql.NullString `db:"locked_by"`
	LockedAt    *time.Time     `db:"locked_at"`
}

type matchResultInsertModel struct {
	MatchID     string        `db:"match_id"`
	PointsA     int           `db:"points_a"`
	PointsB     int           `db:"points_b"`
	Innings     sql.NullInt64 `db:"innings"`
	HighRunA    sql.NullInt64 `db:"high_run_a"`
	HighRunB    sql.NullInt64 `db:"high_run_b"`
	Notes       *string       `db:"notes"`
	SubmittedBy string        `db:"submitted_by"`
	SubmittedAt time.Time     `db:"submitted_at"`
}
