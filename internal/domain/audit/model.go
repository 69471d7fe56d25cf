package audit

import "time"

type Action string

const (
	ActionSubmittedResult Action = "submitted_result"
	ActionApprovedResult  Action = "approved_result"
	ActionLockedResult    Action = "locked_result"
	ActionCreatedSeason   Action = "created_season"
	ActionAddedPlayer     Action = "added_player"
	ActionUpdatedHandicap Action = "updated_handicap"
)

type EntityType string

const (
	EntityMatch        EntityType = "match"
	EntitySeason       EntityType = "season"
	EntityPlayer       EntityType = "player"
	EntitySeasonPlayer EntityType = "season_player"
)

// Entry is an immutable record of one state-changing action.
type Entry struct {
	ID          string
	LeagueID    string
	ActorUserID string
	EntityType  EntityType
	EntityID    string
	Action      Action
	Payload     map[string]any
	CreatedAt   time.Time
}
