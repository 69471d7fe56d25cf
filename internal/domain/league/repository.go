package league

import "context"

// Repository reads leagues. Leagues are provisioned outside this service.
type Repository interface {
	GetByID(ctx context.Context, leagueID string) (League, bool, error)
	ListByOwner(ctx context.Context, ownerUserID string) ([]League, error)
}
