package memory

import (
	"context"

	"github.com/riskibarqy/cuebook/internal/domain/venue"
)

type VenueRepository struct {
	venues *table[venue.Venue]
}

func NewVenueRepository(venues []venue.Venue) *VenueRepository {
	return &VenueRepository{
		venues: newTable(venues, func(v venue.Venue) string { return v.ID }),
	}
}

func (r *VenueRepository) GetByID(_ context.Context, venueID string) (venue.Venue, bool, error) {
	v, ok := r.venues.get(venueID)
	return v, ok, nil
}

func (r *VenueRepository) ListByLeague(_ context.Context, leagueID string) ([]venue.Venue, error) {
	return r.venues.filter(func(v venue.Venue) bool { return v.LeagueID == leagueID }), nil
}
