package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/cuebook/internal/domain/jobscheduler"
	"github.com/riskibarqy/cuebook/internal/domain/standing"
	"github.com/riskibarqy/cuebook/internal/infrastructure/repository/memory"
	standingmock "github.com/riskibarqy/cuebook/internal/mocks/domain/standing"
	"github.com/riskibarqy/cuebook/internal/platform/resilience"
	"github.com/stretchr/testify/mock"
)

type recordingQueue struct {
	mu    sync.Mutex
	paths []string
	keys  []string
	err   error
}

func (q *recordingQueue) Enqueue(_ context.Context, path string, _ any, _ time.Duration, deduplicationID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.paths = append(q.paths, path)
	q.keys = append(q.keys, deduplicationID)
	return q.err
}

func TestRecomputeService_DrainRetriesUntilSuccess(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()
	env.store.Recomputer.SetFailure(errors.New("deadlock detected"))

	if _, err := env.matches.Approve(ctx, ownerPrincipal, memory.MatchIDSubmitted); err != nil {
		t.Fatalf("approve: %v", err)
	}

	first, err := env.recompute.Drain(ctx)
	if err != nil {
		t.Fatalf("first drain: %v", err)
	}
	if first.Claimed != 1 || first.Failed != 1 || first.GaveUp != 0 {
		t.Fatalf("unexpected first drain: %+v", first)
	}

	env.store.Recomputer.SetFailure(nil)
	env.clock.advance(time.Minute)

	second, err := env.recompute.Drain(ctx)
	if err != nil {
		t.Fatalf("second drain: %v", err)
	}
	if second.Claimed != 1 || second.Succeeded != 1 {
		t.Fatalf("unexpected second drain: %+v", second)
	}

	tasks := env.store.Tasks.Tasks()
	if len(tasks) != 1 || tasks[0].Status != standing.TaskDone || tasks[0].CompletedAt == nil {
		t.Fatalf("expected the task to be done, got %+v", tasks)
	}
	pending, _ := env.store.Tasks.CountPending(ctx)
	if pending != 0 {
		t.Fatalf("expected no pending tasks, got %d", pending)
	}
}

func TestRecomputeService_DrainGivesUpAfterMaxAttempts(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	ctx := context.Background()
	env.store.Recomputer.SetFailure(errors.New("function does not exist"))

	if _, err := env.matches.Lock(ctx, ownerPrincipal, memory.MatchIDApproved); err != nil {
		t.Fatalf("lock: %v", err)
	}

	var last RecomputeDrainResult
	for attempt := 1; attempt <= 3; attempt++ {
		env.clock.advance(time.Minute)
		result, err := env.recompute.Drain(ctx)
		if err != nil {
			t.Fatalf("drain %d: %v", attempt, err)
		}
		if result.Claimed != 1 {
			t.Fatalf("drain %d: expected one claimed task, got %+v", attempt, result)
		}
		last = result
	}
	if last.GaveUp != 1 {
		t.Fatalf("expected the last drain to give up, got %+v", last)
	}

	tasks := env.store.Tasks.Tasks()
	if tasks[0].Status != standing.TaskFailed || tasks[0].Attempts != 3 {
		t.Fatalf("expected failed task after three attempts, got %+v", tasks[0])
	}
	if !strings.Contains(tasks[0].LastError, "function does not exist") {
		t.Fatalf("expected last error to be kept, got %q", tasks[0].LastError)
	}

	env.clock.advance(time.Hour)
	after, err := env.recompute.Drain(ctx)
	if err != nil {
		t.Fatalf("drain after give up: %v", err)
	}
	if after.Claimed != 0 {
		t.Fatalf("failed tasks must not be claimed again, got %+v", after)
	}
}

func TestRecomputeService_DrainRecomputesEachSeasonOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tasks := standingmock.NewTaskRepository(t)
	recomputer := standingmock.NewRecomputer(t)

	claimed := []standing.RecomputeTask{
		{ID: "task-1", SeasonID: "season-a", Attempts: 1},
		{ID: "task-2", SeasonID: "season-a", Attempts: 1},
		{ID: "task-3", SeasonID: "season-b", Attempts: 1},
	}
	tasks.On("ClaimDue", mock.Anything, mock.Anything, mock.Anything, 10).Return(claimed, nil).Once()
	recomputer.On("Recompute", mock.Anything, "season-a").Return(nil).Once()
	recomputer.On("Recompute", mock.Anything, "season-b").Return(errors.New("timeout")).Once()
	tasks.On("MarkDone", mock.Anything, []string{"task-1", "task-2"}, mock.Anything).Return(nil).Once()
	tasks.On("MarkFailed", mock.Anything, "task-3", mock.AnythingOfType("string"), mock.Anything, false).Return(nil).Once()

	svc := NewRecomputeService(recomputer, tasks, nil, nil, nil, &sequenceIDs{prefix: "task"}, RecomputeConfig{
		Workers:     4,
		BatchSize:   10,
		MaxAttempts: 3,
		RetryBase:   time.Second,
		RetryMax:    time.Minute,
		Lease:       time.Minute,
	}, nil)

	result, err := svc.Drain(ctx)
	if err != nil {
		t.Fatalf("drain: %v", err)
	}
	if result.Claimed != 3 || result.SeasonCount != 2 || result.Succeeded != 1 || result.Failed != 1 || result.WorkerCount != 2 {
		t.Fatalf("unexpected drain result: %+v", result)
	}
}

func TestRecomputeService_OpenBreakerReportsDependencyUnavailable(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	recomputer := standingmock.NewRecomputer(t)
	recomputer.On("Recompute", mock.Anything, "season-a").Return(errors.New("connection refused")).Once()

	tasks := standingmock.NewTaskRepository(t)
	tasks.On("MarkFailed", mock.Anything, mock.Anything, mock.Anything, mock.Anything, false).Return(nil)

	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{FailureThreshold: 1, OpenTimeout: time.Hour, HalfOpenMaxReq: 1})
	svc := NewRecomputeService(recomputer, tasks, nil, nil, breaker, &sequenceIDs{prefix: "task"}, RecomputeConfig{}, nil)

	task, err := svc.PlanTask("season-a", "approved_result")
	if err != nil {
		t.Fatalf("plan task: %v", err)
	}
	if err := svc.RefreshNow(ctx, task); err == nil {
		t.Fatalf("expected first refresh to fail")
	}

	err = svc.RefreshNow(ctx, task)
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable once the breaker opens, got %v", err)
	}
}

func TestRecomputeService_RefreshFailurePublishesDrain(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.NewStore(memory.SeedDataset())
	store.Recomputer.SetFailure(errors.New("timeout"))
	queue := &recordingQueue{}

	svc := NewRecomputeService(store.Recomputer, store.Tasks, queue, store.Dispatches, nil, &sequenceIDs{prefix: "task"}, RecomputeConfig{RetryBase: time.Minute}, nil)

	task, err := svc.PlanTask(memory.SeasonIDSpring2026, "submitted_result")
	if err != nil {
		t.Fatalf("plan task: %v", err)
	}
	if err := svc.RefreshNow(ctx, task); err == nil {
		t.Fatalf("expected refresh to fail")
	}

	if len(queue.paths) != 1 || queue.paths[0] != RecomputeJobPath {
		t.Fatalf("expected one drain job, got %v", queue.paths)
	}
	dispatch, err := svc.Dispatch(ctx, queue.keys[0])
	if err != nil || dispatch.Status != jobscheduler.StatusSent || dispatch.SeasonID != memory.SeasonIDSpring2026 {
		t.Fatalf("expected sent dispatch, got %+v err=%v", dispatch, err)
	}

	svc.CompleteDispatch(ctx, queue.keys[0], nil)
	dispatch, _ = svc.Dispatch(ctx, queue.keys[0])
	if dispatch.Status != jobscheduler.StatusCompleted || dispatch.SentAt == nil || dispatch.CompletedAt == nil {
		t.Fatalf("expected completed dispatch, got %+v", dispatch)
	}
	if dispatch.SeasonID != memory.SeasonIDSpring2026 {
		t.Fatalf("completion must keep the season, got %q", dispatch.SeasonID)
	}

	if _, err := svc.Dispatch(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRecomputeService_Backoff(t *testing.T) {
	t.Parallel()

	svc := NewRecomputeService(nil, nil, nil, nil, nil, &sequenceIDs{}, RecomputeConfig{
		RetryBase: time.Second,
		RetryMax:  5 * time.Second,
	}, nil)

	want := map[int]time.Duration{
		0: time.Second,
		1: time.Second,
		2: 2 * time.Second,
		3: 4 * time.Second,
		4: 5 * time.Second,
		9: 5 * time.Second,
	}
	for attempts, expected := range want {
		if got := svc.backoff(attempts); got != expected {
			t.Fatalf("backoff(%d): expected %s, got %s", attempts, expected, got)
		}
	}
}

func TestDedupKey(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, time.March, 20, 21, 14, 37, 0, time.UTC)
	got := dedupKey("recompute-standings", "season:spring 2026", at, time.Minute)
	if got != "recompute-standings-season-spring-2026-20260320T211400Z" {
		t.Fatalf("unexpected dedup key: %s", got)
	}
}
