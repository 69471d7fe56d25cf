package player

import "context"

// Repository describes player persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, p Player) error
	GetByID(ctx context.Context, playerID string) (Player, bool, error)
	GetByIDs(ctx context.Context, playerIDs []string) ([]Player, error)
	ListByLeague(ctx context.Context, leagueID string) ([]Player, error)
	ListByUser(ctx context.Context, userID string) ([]Player, error)

	GetSeasonPlayer(ctx context.Context, seasonPlayerID string) (SeasonPlayer, bool, error)
	UpdateHandicap(ctx context.Context, seasonPlayerID string, handicapPoints int) error
}
