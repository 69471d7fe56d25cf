package memory

import (
	"context"
	"sort"

	"github.com/riskibarqy/cuebook/internal/domain/league"
)

type LeagueRepository struct {
	leagues *table[league.League]
}

func NewLeagueRepository(leagues []league.League) *LeagueRepository {
	return &LeagueRepository{
		leagues: newTable(leagues, func(l league.League) string { return l.ID }),
	}
}

func (r *LeagueRepository) GetByID(_ context.Context, leagueID string) (league.League, bool, error) {
	l, ok := r.leagues.get(leagueID)
	return l, ok, nil
}

// ListByOwner orders by creation time like the postgres query does.
func (r *LeagueRepository) ListByOwner(_ context.Context, ownerUserID string) ([]league.League, error) {
	out := r.leagues.filter(func(l league.League) bool { return l.IsOwnedBy(ownerUserID) })
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
