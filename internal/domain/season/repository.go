package season

import "context"

type Repository interface {
	GetByID(ctx context.Context, seasonID string) (Season, bool, error)
	ListByLeague(ctx context.Context, leagueID string) ([]Season, error)
	// GetCurrent returns the league season with the latest start date.
	GetCurrent(ctx context.Context, leagueID string) (Season, bool, error)
	// CreateWithWeeks persists the season and its weeks atomically.
	CreateWithWeeks(ctx context.Context, s Season, weeks []Week) error
	ListWeeks(ctx context.Context, seasonID string) ([]Week, error)
	GetWeek(ctx context.Context, weekID string) (Week, bool, error)
}
