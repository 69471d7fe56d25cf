package postgres

import "time"

type auditTableModel struct {
	ID          string    `db:"id"`
	LeagueID    string    `db:"league_id"`
	ActorUserID string    `db:"actor_user_id"`
	EntityType  string    `db:"entity_type"`
	EntityID    string    `db:"entity_id"`
	Action      string    `db:"action"`
	Payload     []byte    `db:"payload"`
	CreatedAt   time.Time `db:"created_at"`
}

type auditInsertModel struct {
	ID          string    `db:"id"`
	LeagueID    string    `db:"league_id"`
	ActorUserID string    `db:"actor_user_id"`
	EntityType  string    `db:"entity_type"`
	EntityID    string    `db:"entity_id"`
	Action      string    `db:"action"`
	Payload     string    `db:"payload"`
	CreatedAt   time.Time `db:"created_at"`
}
