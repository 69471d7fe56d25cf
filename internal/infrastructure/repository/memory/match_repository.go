package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/cuebook/internal/domain/match"
	"github.com/riskibarqy/cuebook/internal/domain/standing"
)

// MatchRepository keeps matches and results behind one mutex so status
// writes compare and swap the way the SQL conditional update does.
type MatchRepository struct {
	mu      sync.RWMutex
	matches map[string]match.Match
	results map[string]match.Result
	orders  []string
	tasks   *RecomputeTaskRepository
}

func NewMatchRepository(matches []match.Match, results []match.Result, tasks *RecomputeTaskRepository) *MatchRepository {
	r := &MatchRepository{
		matches: make(map[string]match.Match, len(matches)),
		results: make(map[string]match.Result, len(results)),
		tasks:   tasks,
	}
	for _, m := range matches {
		r.matches[m.ID] = m
		r.orders = append(r.orders, m.ID)
	}
	for _, res := range results {
		r.results[res.MatchID] = res
	}
	return r
}

func (r *MatchRepository) GetByID(_ context.Context, matchID string) (match.Match, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.matches[matchID]
	return m, ok, nil
}

func (r *MatchRepository) GetResult(_ context.Context, matchID string) (match.Result, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res, ok := r.results[matchID]
	return res, ok, nil
}

func (r *MatchRepository) ListResults(_ context.Context, matchIDs []string) ([]match.Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Result, 0, len(matchIDs))
	for _, id := range matchIDs {
		if res, ok := r.results[id]; ok {
			out = append(out, res)
		}
	}
	return out, nil
}

func (r *MatchRepository) ListBySeason(_ context.Context, seasonID, weekID string) ([]match.Match, error) {
	out := r.filter(func(m match.Match) bool {
		return m.SeasonID == seasonID && (weekID == "" || m.WeekID == weekID)
	})
	sortBySchedule(out, false)
	return out, nil
}

func (r *MatchRepository) ListByStatus(_ context.Context, seasonIDs []string, status match.Status) ([]match.Match, error) {
	seasons := make(map[string]struct{}, len(seasonIDs))
	for _, id := range seasonIDs {
		seasons[id] = struct{}{}
	}

	out := r.filter(func(m match.Match) bool {
		_, ok := seasons[m.SeasonID]
		return ok && m.Status == status
	})
	sortBySchedule(out, false)
	return out, nil
}

func (r *MatchRepository) ListByPlayers(_ context.Context, playerIDs []string, statuses []match.Status, limit int) ([]match.Match, error) {
	players := make(map[string]struct{}, len(playerIDs))
	for _, id := range playerIDs {
		players[id] = struct{}{}
	}
	allowed := make(map[match.Status]struct{}, len(statuses))
	upcoming := len(statuses) > 0
	for _, status := range statuses {
		allowed[status] = struct{}{}
		if status != match.StatusScheduled {
			upcoming = false
		}
	}

	out := r.filter(func(m match.Match) bool {
		_, a := players[m.PlayerAID]
		_, b := players[m.PlayerBID]
		if !a && !b {
			return false
		}
		if len(allowed) == 0 {
			return true
		}
		_, ok := allowed[m.Status]
		return ok
	})
	sortBySchedule(out, !upcoming)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MatchRepository) SubmitResult(_ context.Context, cmd match.SubmitCommand) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.expectStatusLocked(cmd.Result.MatchID, match.StatusScheduled)
	if err != nil {
		return err
	}
	if _, exists := r.results[m.ID]; exists {
		return fmt.Errorf("%w: result already recorded for match_id=%s", match.ErrStatusConflict, m.ID)
	}

	m.Status = match.StatusSubmitted
	m.Version++
	r.matches[m.ID] = m
	r.results[m.ID] = cmd.Result
	r.enqueue(cmd.Recompute)
	return nil
}

func (r *MatchRepository) Transition(_ context.Context, cmd match.TransitionCommand) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, err := r.expectStatusLocked(cmd.MatchID, cmd.From)
	if err != nil {
		return err
	}

	res, hasResult := r.results[m.ID]
	if (cmd.StampApproval || cmd.StampLock) && !hasResult {
		return fmt.Errorf("%w: match_id=%s", match.ErrResultMissing, m.ID)
	}
	at := cmd.At.UTC()
	if cmd.StampApproval {
		res.ApprovedBy = cmd.ActorUserID
		res.ApprovedAt = &at
	}
	if cmd.StampLock {
		res.LockedBy = cmd.ActorUserID
		res.LockedAt = &at
	}

	m.Status = cmd.To
	m.Version++
	r.matches[m.ID] = m
	if hasResult {
		r.results[m.ID] = res
	}
	r.enqueue(cmd.Recompute)
	return nil
}

func (r *MatchRepository) expectStatusLocked(matchID string, from match.Status) (match.Match, error) {
	m, ok := r.matches[matchID]
	if !ok || m.Status != from {
		return match.Match{}, fmt.Errorf("%w: match_id=%s expected=%s", match.ErrStatusConflict, matchID, from)
	}
	return m, nil
}

func (r *MatchRepository) enqueue(task standing.RecomputeTask) {
	if r.tasks == nil || task.ID == "" {
		return
	}
	r.tasks.add(task)
}

func (r *MatchRepository) filter(keep func(match.Match) bool) []match.Match {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]match.Match, 0)
	for _, id := range r.orders {
		if m := r.matches[id]; keep(m) {
			out = append(out, m)
		}
	}
	return out
}

func sortBySchedule(items []match.Match, newestFirst bool) {
	at := func(m match.Match) time.Time {
		if m.ScheduledAt == nil {
			return time.Time{}
		}
		return *m.ScheduledAt
	}
	sort.SliceStable(items, func(i, j int) bool {
		left, right := at(items[i]), at(items[j])
		if left.Equal(right) {
			return items[i].ID < items[j].ID
		}
		if newestFirst {
			return left.After(right)
		}
		return left.Before(right)
	})
}
