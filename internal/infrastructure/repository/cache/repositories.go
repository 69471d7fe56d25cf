package cache

import (
	"context"

	"github.com/riskibarqy/cuebook/internal/domain/league"
	"github.com/riskibarqy/cuebook/internal/domain/season"
	"github.com/riskibarqy/cuebook/internal/domain/venue"
	basecache "github.com/riskibarqy/cuebook/internal/platform/cache"
)

type cachedLookup[T any] struct {
	value  T
	exists bool
}

func lookup[T any](ctx context.Context, store *basecache.Store, key string, load func(context.Context) (T, bool, error)) (T, bool, error) {
	cached, err := basecache.Load(ctx, store, key, func(ctx context.Context) (cachedLookup[T], error) {
		item, exists, err := load(ctx)
		if err != nil {
			return cachedLookup[T]{}, err
		}
		return cachedLookup[T]{value: item, exists: exists}, nil
	})
	if err != nil {
		var zero T
		return zero, false, err
	}
	return cached.value, cached.exists, nil
}

func list[T any](ctx context.Context, store *basecache.Store, key string, load func(context.Context) ([]T, error)) ([]T, error) {
	items, err := basecache.Load(ctx, store, key, func(ctx context.Context) ([]T, error) {
		items, err := load(ctx)
		if err != nil {
			return nil, err
		}
		return append([]T(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}
	return append([]T(nil), items...), nil
}

type LeagueRepository struct {
	next  league.Repository
	cache *basecache.Store
}

func NewLeagueRepository(next league.Repository, cache *basecache.Store) *LeagueRepository {
	return &LeagueRepository{next: next, cache: cache}
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	return lookup(ctx, r.cache, "league:id:"+leagueID, func(ctx context.Context) (league.League, bool, error) {
		return r.next.GetByID(ctx, leagueID)
	})
}

func (r *LeagueRepository) ListByOwner(ctx context.Context, ownerUserID string) ([]league.League, error) {
	return list(ctx, r.cache, "league:owner:"+ownerUserID, func(ctx context.Context) ([]league.League, error) {
		return r.next.ListByOwner(ctx, ownerUserID)
	})
}

type VenueRepository struct {
	next  venue.Repository
	cache *basecache.Store
}

func NewVenueRepository(next venue.Repository, cache *basecache.Store) *VenueRepository {
	return &VenueRepository{next: next, cache: cache}
}

func (r *VenueRepository) GetByID(ctx context.Context, venueID string) (venue.Venue, bool, error) {
	return lookup(ctx, r.cache, "venue:id:"+venueID, func(ctx context.Context) (venue.Venue, bool, error) {
		return r.next.GetByID(ctx, venueID)
	})
}

func (r *VenueRepository) ListByLeague(ctx context.Context, leagueID string) ([]venue.Venue, error) {
	return list(ctx, r.cache, "venue:league:"+leagueID, func(ctx context.Context) ([]venue.Venue, error) {
		return r.next.ListByLeague(ctx, leagueID)
	})
}

// SeasonRepository caches season and week reads. Creating a season drops
// the league's cached lists and current season.
type SeasonRepository struct {
	next  season.Repository
	cache *basecache.Store
}

func NewSeasonRepository(next season.Repository, cache *basecache.Store) *SeasonRepository {
	return &SeasonRepository{next: next, cache: cache}
}

func (r *SeasonRepository) GetByID(ctx context.Context, seasonID string) (season.Season, bool, error) {
	return lookup(ctx, r.cache, "season:id:"+seasonID, func(ctx context.Context) (season.Season, bool, error) {
		return r.next.GetByID(ctx, seasonID)
	})
}

func (r *SeasonRepository) ListByLeague(ctx context.Context, leagueID string) ([]season.Season, error) {
	return list(ctx, r.cache, "season:league:"+leagueID+":list", func(ctx context.Context) ([]season.Season, error) {
		return r.next.ListByLeague(ctx, leagueID)
	})
}

func (r *SeasonRepository) GetCurrent(ctx context.Context, leagueID string) (season.Season, bool, error) {
	return lookup(ctx, r.cache, "season:league:"+leagueID+":current", func(ctx context.Context) (season.Season, bool, error) {
		return r.next.GetCurrent(ctx, leagueID)
	})
}

func (r *SeasonRepository) CreateWithWeeks(ctx context.Context, s season.Season, weeks []season.Week) error {
	if err := r.next.CreateWithWeeks(ctx, s, weeks); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, "season:league:"+s.LeagueID+":")
	r.cache.Delete(ctx, "season:id:"+s.ID, "season:weeks:"+s.ID)
	return nil
}

func (r *SeasonRepository) ListWeeks(ctx context.Context, seasonID string) ([]season.Week, error) {
	return list(ctx, r.cache, "season:weeks:"+seasonID, func(ctx context.Context) ([]season.Week, error) {
		return r.next.ListWeeks(ctx, seasonID)
	})
}

func (r *SeasonRepository) GetWeek(ctx context.Context, weekID string) (season.Week, bool, error) {
	return lookup(ctx, r.cache, "season:week:"+weekID, func(ctx context.Context) (season.Week, bool, error) {
		return r.next.GetWeek(ctx, weekID)
	})
}
