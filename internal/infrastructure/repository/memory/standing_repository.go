package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/cuebook/internal/domain/standing"
)

type StandingRepository struct {
	mu       sync.RWMutex
	bySeason map[string][]standing.Standing
}

func NewStandingRepository(rows []standing.Standing) *StandingRepository {
	r := &StandingRepository{bySeason: make(map[string][]standing.Standing)}
	for _, row := range rows {
		r.bySeason[row.SeasonID] = append(r.bySeason[row.SeasonID], row)
	}
	return r
}

func (r *StandingRepository) ListBySeason(_ context.Context, seasonID string) ([]standing.Standing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := append([]standing.Standing(nil), r.bySeason[seasonID]...)
	standing.Sort(out)
	return out, nil
}

func (r *StandingRepository) GetForPlayer(_ context.Context, seasonID, playerID string) (standing.Standing, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, row := range r.bySeason[seasonID] {
		if row.PlayerID == playerID {
			return row, true, nil
		}
	}
	return standing.Standing{}, false, nil
}

// Replace swaps a season's table, standing in for the database aggregation.
func (r *StandingRepository) Replace(seasonID string, rows []standing.Standing) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.bySeason[seasonID] = append([]standing.Standing(nil), rows...)
}

// Recomputer records which seasons were recomputed. The aggregation lives in
// the database, so the in-memory store only tracks calls; SetFailure makes
// every call fail until it is cleared.
type Recomputer struct {
	mu      sync.Mutex
	calls   []string
	failure error
}

func NewRecomputer() *Recomputer {
	return &Recomputer{}
}

func (r *Recomputer) Recompute(_ context.Context, seasonID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls = append(r.calls, seasonID)
	return r.failure
}

func (r *Recomputer) SetFailure(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.failure = err
}

func (r *Recomputer) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.calls...)
}
