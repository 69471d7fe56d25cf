package postgres

import "time"

type seasonTableModel struct {
	ID              string     `db:"id"`
	LeagueID        string     `db:"league_id"`
	Name            string     `db:"name"`
	StartDate       time.Time  `db:"start_date"`
	EndDate         time.Time  `db:"end_date"`
	RaceToDefault   int        `db:"race_to_default"`
	InningsRequired bool       `db:"innings_required"`
	HighRunEnabled  bool       `db:"high_run_enabled"`
	HandicapMethod  string     `db:"handicap_method"`
	SubmissionRule  string     `db:"submission_rule"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
	DeletedAt       *time.Time `db:"deleted_at"`
}

type seasonInsertModel struct {
	ID              string    `db:"id"`
	LeagueID        string    `db:"league_id"`
	Name            string    `db:"name"`
	StartDate       time.Time `db:"start_date"`
	EndDate         time.Time `db:"end_date"`
	RaceToDefault   int       `db:"race_to_default"`
	InningsRequired bool      `db:"innings_required"`
	HighRunEnabled  bool      `db:"high_run_enabled"`
	HandicapMethod  string    `db:"handicap_method"`
	SubmissionRule  string    `db:"submission_rule"`
	CreatedAt       time.Time `db:"created_at"`
}

type weekTableModel struct {
	ID        string    `db:"id"`
	SeasonID  string    `db:"season_id"`
	Number    int       `db:"week_number"`
	StartDate time.Time `db:"start_date"`
	EndDate   time.Time `db:"end_date"`
}
