package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/cuebook/internal/domain/jobscheduler"
	"github.com/riskibarqy/cuebook/internal/domain/standing"
	"github.com/riskibarqy/cuebook/internal/platform/id"
	"github.com/riskibarqy/cuebook/internal/platform/logging"
	"github.com/riskibarqy/cuebook/internal/platform/resilience"
	"go.opentelemetry.io/otel/attribute"
)

const RecomputeJobPath = "/v1/internal/jobs/recompute-standings"

type JobQueue interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

type noopJobQueue struct{}

func (noopJobQueue) Enqueue(_ context.Context, _ string, _ any, _ time.Duration, _ string) error {
	return nil
}

func NewNoopJobQueue() JobQueue {
	return noopJobQueue{}
}

// StandingsRefresher plans outbox tasks and runs the immediate recompute
// that follows a committed write.
type StandingsRefresher interface {
	PlanTask(seasonID, reason string) (standing.RecomputeTask, error)
	RefreshNow(ctx context.Context, task standing.RecomputeTask) error
}

type RecomputeConfig struct {
	Workers     int
	BatchSize   int
	MaxAttempts int
	RetryBase   time.Duration
	RetryMax    time.Duration
	Lease       time.Duration
	// InlineGrace delays worker pickup of a new task so the request that
	// created it gets the first attempt.
	InlineGrace time.Duration
}

type RecomputeDrainResult struct {
	Claimed     int `json:"claimed"`
	SeasonCount int `json:"season_count"`
	Succeeded   int `json:"succeeded"`
	Failed      int `json:"failed"`
	GaveUp      int `json:"gave_up"`
	WorkerCount int `json:"worker_count"`
}

// RecomputeService drains the standings outbox. Every stale season is
// rebuilt by the external aggregation until it succeeds or runs out of
// attempts.
type RecomputeService struct {
	recomputer   standing.Recomputer
	tasks        standing.TaskRepository
	queue        JobQueue
	dispatchRepo jobscheduler.Repository
	breaker      *resilience.CircuitBreaker
	idGen        id.Generator
	cfg          RecomputeConfig
	logger       *logging.Logger
	now          func() time.Time
}

var dedupUnsafeCharRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

func NewRecomputeService(
	recomputer standing.Recomputer,
	tasks standing.TaskRepository,
	queue JobQueue,
	dispatchRepo jobscheduler.Repository,
	breaker *resilience.CircuitBreaker,
	idGen id.Generator,
	cfg RecomputeConfig,
	logger *logging.Logger,
) *RecomputeService {
	if queue == nil {
		queue = NewNoopJobQueue()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 8
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 30 * time.Second
	}
	if cfg.RetryMax <= 0 {
		cfg.RetryMax = 30 * time.Minute
	}
	if cfg.Lease <= 0 {
		cfg.Lease = 2 * time.Minute
	}
	if cfg.InlineGrace < 0 {
		cfg.InlineGrace = 0
	}

	return &RecomputeService{
		recomputer:   recomputer,
		tasks:        tasks,
		queue:        queue,
		dispatchRepo: dispatchRepo,
		breaker:      breaker,
		idGen:        idGen,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
}

func (s *RecomputeService) PlanTask(seasonID, reason string) (standing.RecomputeTask, error) {
	taskID, err := s.idGen.NewID()
	if err != nil {
		return standing.RecomputeTask{}, fmt.Errorf("generate recompute task id: %w", err)
	}
	now := s.now().UTC()
	return standing.NewRecomputeTask(taskID, seasonID, reason, now, now.Add(s.cfg.InlineGrace)), nil
}

// RefreshNow recomputes the task's season right away. On failure the task
// stays in the outbox and a drain job is published so the retry does not wait
// for the next scheduler tick.
func (s *RecomputeService) RefreshNow(ctx context.Context, task standing.RecomputeTask) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.RecomputeService.RefreshNow",
		attribute.String("season_id", task.SeasonID),
		attribute.String("task_id", task.ID),
	)
	defer span.End()

	if err := s.recompute(ctx, task.SeasonID); err != nil {
		recordSpanError(span, err)
		now := s.now().UTC()
		if markErr := s.tasks.MarkFailed(ctx, task.ID, err.Error(), now.Add(s.cfg.RetryBase), false); markErr != nil {
			s.logger.WarnContext(ctx, "record inline recompute failure failed", "task_id", task.ID, "error", markErr)
		}
		s.publishDrain(ctx, task.SeasonID, s.cfg.RetryBase, now)
		return err
	}

	if err := s.tasks.MarkDone(ctx, []string{task.ID}, s.now().UTC()); err != nil {
		// The worker will rerun the task; recompute is idempotent.
		s.logger.WarnContext(ctx, "mark recompute task done failed", "task_id", task.ID, "error", err)
	}
	return nil
}

// Drain claims due outbox tasks and recomputes each affected season once on
// the worker pool.
func (s *RecomputeService) Drain(ctx context.Context) (RecomputeDrainResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RecomputeService.Drain")
	defer span.End()

	now := s.now().UTC()
	claimed, err := s.tasks.ClaimDue(ctx, now, now.Add(s.cfg.Lease), s.cfg.BatchSize)
	if err != nil {
		recordSpanError(span, err)
		return RecomputeDrainResult{}, fmt.Errorf("claim recompute tasks: %w", err)
	}
	span.SetAttributes(attribute.Int("claimed", len(claimed)))

	bySeason := make(map[string][]standing.RecomputeTask)
	for _, task := range claimed {
		bySeason[task.SeasonID] = append(bySeason[task.SeasonID], task)
	}
	seasonIDs := make([]string, 0, len(bySeason))
	for seasonID := range bySeason {
		seasonIDs = append(seasonIDs, seasonID)
	}
	sort.Strings(seasonIDs)

	result := RecomputeDrainResult{
		Claimed:     len(claimed),
		SeasonCount: len(seasonIDs),
		WorkerCount: min(s.cfg.Workers, len(seasonIDs)),
	}
	if len(seasonIDs) == 0 {
		return result, nil
	}

	pool, err := ants.NewPool(result.WorkerCount)
	if err != nil {
		return RecomputeDrainResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var succeeded, failed, gaveUp atomic.Int32
	var workers sync.WaitGroup
	for _, seasonID := range seasonIDs {
		tasks := bySeason[seasonID]
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			ok, dead := s.runSeason(ctx, seasonID, tasks)
			if ok {
				succeeded.Add(1)
				return
			}
			failed.Add(1)
			gaveUp.Add(int32(dead))
		}); err != nil {
			workers.Done()
			return RecomputeDrainResult{}, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}
	workers.Wait()

	result.Succeeded = int(succeeded.Load())
	result.Failed = int(failed.Load())
	result.GaveUp = int(gaveUp.Load())
	if result.Failed > 0 {
		s.logger.WarnContext(ctx, "standings recompute drain finished with failures",
			"claimed", result.Claimed,
			"failed", result.Failed,
			"gave_up", result.GaveUp,
		)
	}
	return result, nil
}

// CompleteDispatch records that a queued drain job was delivered.
func (s *RecomputeService) CompleteDispatch(ctx context.Context, dispatchID string, runErr error) {
	event := jobscheduler.DispatchEvent{
		DispatchID: strings.TrimSpace(dispatchID),
		JobName:    "recompute-standings",
		JobPath:    RecomputeJobPath,
		Status:     jobscheduler.StatusCompleted,
		OccurredAt: s.now().UTC(),
	}
	if runErr != nil {
		event.Status = jobscheduler.StatusFailed
		event.ErrorMessage = runErr.Error()
	}
	s.recordDispatchEvent(ctx, event)
}

// Dispatch reports the delivery state of a queued drain job.
func (s *RecomputeService) Dispatch(ctx context.Context, dispatchID string) (jobscheduler.Dispatch, error) {
	dispatchID = strings.TrimSpace(dispatchID)
	if dispatchID == "" {
		return jobscheduler.Dispatch{}, fmt.Errorf("%w: dispatch id is required", ErrInvalidInput)
	}
	if s.dispatchRepo == nil {
		return jobscheduler.Dispatch{}, fmt.Errorf("%w: job dispatch tracking is not configured", ErrDependencyUnavailable)
	}

	d, ok, err := s.dispatchRepo.GetDispatch(ctx, dispatchID)
	if err != nil {
		return jobscheduler.Dispatch{}, fmt.Errorf("get job dispatch: %w", err)
	}
	if !ok {
		return jobscheduler.Dispatch{}, fmt.Errorf("%w: job dispatch %s", ErrNotFound, dispatchID)
	}
	return d, nil
}

func (s *RecomputeService) runSeason(ctx context.Context, seasonID string, tasks []standing.RecomputeTask) (bool, int) {
	taskIDs := make([]string, 0, len(tasks))
	for _, task := range tasks {
		taskIDs = append(taskIDs, task.ID)
	}

	err := s.recompute(ctx, seasonID)
	now := s.now().UTC()
	if err == nil {
		if markErr := s.tasks.MarkDone(ctx, taskIDs, now); markErr != nil {
			s.logger.WarnContext(ctx, "mark recompute tasks done failed", "season_id", seasonID, "error", markErr)
		}
		return true, 0
	}

	dead := 0
	for _, task := range tasks {
		giveUp := task.Attempts >= s.cfg.MaxAttempts
		if giveUp {
			dead++
			s.logger.ErrorContext(ctx, "standings recompute gave up",
				"task_id", task.ID,
				"season_id", seasonID,
				"attempts", task.Attempts,
				"error", err,
			)
		}
		retryAt := now.Add(s.backoff(task.Attempts))
		if markErr := s.tasks.MarkFailed(ctx, task.ID, err.Error(), retryAt, giveUp); markErr != nil {
			s.logger.WarnContext(ctx, "mark recompute task failed failed", "task_id", task.ID, "error", markErr)
		}
	}
	return false, dead
}

func (s *RecomputeService) recompute(ctx context.Context, seasonID string) error {
	err := s.breaker.Do(func() error {
		return s.recomputer.Recompute(ctx, seasonID)
	}, nil)
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return fmt.Errorf("%w: standings recompute season=%s: %v", ErrDependencyUnavailable, seasonID, err)
	}
	if err != nil {
		return fmt.Errorf("recompute standings season=%s: %w", seasonID, err)
	}
	return nil
}

func (s *RecomputeService) backoff(attempts int) time.Duration {
	if attempts < 1 {
		attempts = 1
	}
	delay := s.cfg.RetryBase
	for i := 1; i < attempts; i++ {
		delay *= 2
		if delay >= s.cfg.RetryMax {
			return s.cfg.RetryMax
		}
	}
	return delay
}

func (s *RecomputeService) publishDrain(ctx context.Context, seasonID string, delay time.Duration, now time.Time) {
	dedupID := dedupKey("recompute-standings", seasonID, now.Add(delay), s.cfg.RetryBase)
	payload := map[string]any{
		"season_id":   seasonID,
		"dispatch_id": dedupID,
	}
	event := jobscheduler.DispatchEvent{
		DispatchID: dedupID,
		JobName:    "recompute-standings",
		JobPath:    RecomputeJobPath,
		SeasonID:   seasonID,
		Status:     jobscheduler.StatusSent,
		Payload:    payload,
		OccurredAt: now,
	}

	if err := s.queue.Enqueue(ctx, RecomputeJobPath, payload, delay, dedupID); err != nil {
		s.logger.WarnContext(ctx, "enqueue standings recompute failed", "season_id", seasonID, "error", err)
		event.Status = jobscheduler.StatusFailed
		event.ErrorMessage = err.Error()
	}
	s.recordDispatchEvent(ctx, event)
}

func (s *RecomputeService) recordDispatchEvent(ctx context.Context, event jobscheduler.DispatchEvent) {
	if s.dispatchRepo == nil || event.DispatchID == "" {
		return
	}
	event.TraceID, event.SpanID = traceMetaFromContext(ctx)
	if err := s.dispatchRepo.UpsertEvent(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "record job dispatch event failed",
			"dispatch_id", event.DispatchID,
			"status", event.Status,
			"error", err,
		)
	}
}

func dedupKey(prefix, seasonID string, at time.Time, bucket time.Duration) string {
	if bucket <= 0 {
		bucket = time.Minute
	}
	slot := at.UTC().Truncate(bucket).Format("20060102T150405Z")
	return sanitizeDedupSegment(prefix) + "-" + sanitizeDedupSegment(seasonID) + "-" + slot
}

func sanitizeDedupSegment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return dedupUnsafeCharRegex.ReplaceAllString(value, "-")
}

