package postgres

import (
	"database/sql"
	"time"
)

type leagueTableModel struct {
	ID          string     `db:"id"`
	Name        string     `db:"name"`
	OwnerUserID string     `db:"owner_user_id"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
	DeletedAt   *time.Time `db:"deleted_at"`
}

type venueTableModel struct {
	ID        string         `db:"id"`
	LeagueID  string         `db:"league_id"`
	Name      string         `db:"name"`
	Address   sql.NullString `db:"address"`
	Notes     sql.NullString `db:"notes"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
	DeletedAt *time.Time     `db:"deleted_at"`
}
