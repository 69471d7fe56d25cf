package postgres

import (
	"database/sql"
	"time"
)

type playerTableModel struct {
	ID          string         `db:"id"`
	LeagueID    string         `db:"league_id"`
	UserID      sql.NullString `db:"user_id"`
	DisplayName string         `db:"display_name"`
	Email       sql.NullString `db:"email"`
	Phone       sql.NullString `db:"phone"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
	DeletedAt   *time.Time     `db:"deleted_at"`
}

type playerInsertModel struct {
	ID          string  `db:"id"`
	LeagueID    string  `db:"league_id"`
	UserID      *string `db:"user_id"`
	DisplayName string  `db:"display_name"`
	Email       *string `db:"email"`
	Phone       *string `db:"phone"`
}

type seasonPlayerTableModel struct {
	ID             string          `db:"id"`
	SeasonID       string          `db:"season_id"`
	PlayerID       string          `db:"player_id"`
	HandicapPoints int             `db:"handicap_points"`
	Rating         sql.NullFloat64 `db:"rating"`
	IsActive       bool            `db:"is_active"`
}
