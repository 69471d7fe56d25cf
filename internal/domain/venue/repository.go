package venue

import "context"

type Repository interface {
	GetByID(ctx context.Context, venueID string) (Venue, bool, error)
	ListByLeague(ctx context.Context, leagueID string) ([]Venue, error)
}
