package standing

import (
	"context"
	"time"
)

type Repository interface {
	ListBySeason(ctx context.Context, seasonID string) ([]Standing, error)
	GetForPlayer(ctx context.Context, seasonID, playerID string) (Standing, bool, error)
}

// Recomputer triggers the external standings aggregation for one season.
type Recomputer interface {
	Recompute(ctx context.Context, seasonID string) error
}

type TaskRepository interface {
	// ClaimDue leases up to limit pending tasks whose available time has
	// passed, plus running tasks whose lease expired.
	ClaimDue(ctx context.Context, now, leaseUntil time.Time, limit int) ([]RecomputeTask, error)
	MarkDone(ctx context.Context, taskIDs []string, completedAt time.Time) error
	MarkFailed(ctx context.Context, taskID, lastError string, retryAt time.Time, giveUp bool) error
	CountPending(ctx context.Context) (int, error)
}
