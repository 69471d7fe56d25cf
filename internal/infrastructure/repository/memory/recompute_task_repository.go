package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/riskibarqy/cuebook/internal/domain/standing"
)

type RecomputeTaskRepository struct {
	mu    sync.Mutex
	items map[string]standing.RecomputeTask
}

func NewRecomputeTaskRepository() *RecomputeTaskRepository {
	return &RecomputeTaskRepository{items: make(map[string]standing.RecomputeTask)}
}

func (r *RecomputeTaskRepository) add(task standing.RecomputeTask) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if task.Status == "" {
		task.Status = standing.TaskPending
	}
	r.items[task.ID] = task
}

func (r *RecomputeTaskRepository) ClaimDue(_ context.Context, now, leaseUntil time.Time, limit int) ([]standing.RecomputeTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	due := make([]standing.RecomputeTask, 0)
	for _, task := range r.items {
		if task.Status != standing.TaskPending && task.Status != standing.TaskRunning {
			continue
		}
		if task.AvailableAt.After(now) {
			continue
		}
		due = append(due, task)
	}
	sort.Slice(due, func(i, j int) bool {
		if !due[i].AvailableAt.Equal(due[j].AvailableAt) {
			return due[i].AvailableAt.Before(due[j].AvailableAt)
		}
		return due[i].CreatedAt.Before(due[j].CreatedAt)
	})
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}

	for i := range due {
		due[i].Status = standing.TaskRunning
		due[i].Attempts++
		due[i].AvailableAt = leaseUntil
		r.items[due[i].ID] = due[i]
	}
	return due, nil
}

func (r *RecomputeTaskRepository) MarkDone(_ context.Context, taskIDs []string, completedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range taskIDs {
		task, ok := r.items[id]
		if !ok {
			continue
		}
		at := completedAt
		task.Status = standing.TaskDone
		task.CompletedAt = &at
		task.LastError = ""
		r.items[id] = task
	}
	return nil
}

func (r *RecomputeTaskRepository) MarkFailed(_ context.Context, taskID, lastError string, retryAt time.Time, giveUp bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.items[taskID]
	if !ok {
		return nil
	}
	task.Status = standing.TaskPending
	if giveUp {
		task.Status = standing.TaskFailed
	}
	task.LastError = lastError
	task.AvailableAt = retryAt
	r.items[taskID] = task
	return nil
}

func (r *RecomputeTaskRepository) CountPending(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, task := range r.items {
		if task.Status == standing.TaskPending || task.Status == standing.TaskRunning {
			count++
		}
	}
	return count, nil
}

// Tasks returns a snapshot of every task, oldest first.
func (r *RecomputeTaskRepository) Tasks() []standing.RecomputeTask {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]standing.RecomputeTask, 0, len(r.items))
	for _, task := range r.items {
		out = append(out, task)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}
