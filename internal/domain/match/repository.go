package match

import (
	"context"
	"errors"
	"time"

	"github.com/riskibarqy/cuebook/internal/domain/standing"
)

var (
	// ErrStatusConflict means the match was not in the expected status when
	// the write was applied.
	ErrStatusConflict = errors.New("match status changed concurrently")
	ErrResultMissing  = errors.New("match result not found")
)

// SubmitCommand records a result and moves a scheduled match to submitted.
type SubmitCommand struct {
	Result    Result
	Recompute standing.RecomputeTask
}

// TransitionCommand moves a match from one status to the next and stamps the
// approval and lock trail on its result.
type TransitionCommand struct {
	MatchID       string
	From          Status
	To            Status
	ActorUserID   string
	At            time.Time
	StampApproval bool
	StampLock     bool
	Recompute     standing.RecomputeTask
}

// Repository describes match persistence needs from use cases. Writes are
// conditional on the current status and enqueue the recompute task in the
// same transaction.
type Repository interface {
	GetByID(ctx context.Context, matchID string) (Match, bool, error)
	GetResult(ctx context.Context, matchID string) (Result, bool, error)
	ListResults(ctx context.Context, matchIDs []string) ([]Result, error)
	ListBySeason(ctx context.Context, seasonID, weekID string) ([]Match, error)
	ListByStatus(ctx context.Context, seasonIDs []string, status Status) ([]Match, error)
	ListByPlayers(ctx context.Context, playerIDs []string, statuses []Status, limit int) ([]Match, error)
	SubmitResult(ctx context.Context, cmd SubmitCommand) error
	Transition(ctx context.Context, cmd TransitionCommand) error
}
