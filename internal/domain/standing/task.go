package standing

import "time"

type TaskStatus string

const (
	TaskPending TaskStatus = "pending"
	TaskRunning TaskStatus = "running"
	TaskDone    TaskStatus = "done"
	TaskFailed  TaskStatus = "failed"
)

// RecomputeTask is an outbox row asking for a season's standings to be
// rebuilt. It is written in the same transaction as the change that made the
// standings stale.
type RecomputeTask struct {
	ID          string
	SeasonID    string
	Reason      string
	Status      TaskStatus
	Attempts    int
	LastError   string
	AvailableAt time.Time
	CreatedAt   time.Time
	CompletedAt *time.Time
}

func NewRecomputeTask(id, seasonID, reason string, now, availableAt time.Time) RecomputeTask {
	return RecomputeTask{
		ID:          id,
		SeasonID:    seasonID,
		Reason:      reason,
		Status:      TaskPending,
		AvailableAt: availableAt,
		CreatedAt:   now,
	}
}
