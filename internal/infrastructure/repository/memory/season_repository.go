package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/riskibarqy/cuebook/internal/domain/season"
)

type SeasonRepository struct {
	mu      sync.RWMutex
	seasons map[string]season.Season
	weeks   map[string]season.Week
	orders  []string
}

func NewSeasonRepository(seasons []season.Season, weeks []season.Week) *SeasonRepository {
	r := &SeasonRepository{
		seasons: make(map[string]season.Season, len(seasons)),
		weeks:   make(map[string]season.Week, len(weeks)),
	}
	for _, s := range seasons {
		r.seasons[s.ID] = s
		r.orders = append(r.orders, s.ID)
	}
	for _, w := range weeks {
		r.weeks[w.ID] = w
	}
	return r
}

func (r *SeasonRepository) GetByID(_ context.Context, seasonID string) (season.Season, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.seasons[seasonID]
	return s, ok, nil
}

func (r *SeasonRepository) ListByLeague(_ context.Context, leagueID string) ([]season.Season, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.byLeagueLocked(leagueID), nil
}

func (r *SeasonRepository) GetCurrent(_ context.Context, leagueID string) (season.Season, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := r.byLeagueLocked(leagueID)
	if len(items) == 0 {
		return season.Season{}, false, nil
	}
	return items[0], true, nil
}

func (r *SeasonRepository) CreateWithWeeks(_ context.Context, s season.Season, weeks []season.Week) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.seasons[s.ID]; exists {
		return fmt.Errorf("season id=%s already exists", s.ID)
	}
	for _, w := range weeks {
		if _, exists := r.weeks[w.ID]; exists {
			return fmt.Errorf("week id=%s already exists", w.ID)
		}
	}

	r.seasons[s.ID] = s
	r.orders = append(r.orders, s.ID)
	for _, w := range weeks {
		w.SeasonID = s.ID
		r.weeks[w.ID] = w
	}
	return nil
}

func (r *SeasonRepository) ListWeeks(_ context.Context, seasonID string) ([]season.Week, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]season.Week, 0, season.WeeksPerSeason)
	for _, w := range r.weeks {
		if w.SeasonID == seasonID {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (r *SeasonRepository) GetWeek(_ context.Context, weekID string) (season.Week, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	w, ok := r.weeks[weekID]
	return w, ok, nil
}

// byLeagueLocked returns the league's seasons, latest start first.
func (r *SeasonRepository) byLeagueLocked(leagueID string) []season.Season {
	out := make([]season.Season, 0)
	for _, id := range r.orders {
		if s := r.seasons[id]; s.LeagueID == leagueID {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.After(out[j].StartDate)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
