package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/riskibarqy/cuebook/internal/platform/logging"
)

var ErrEmptyJobName = errors.New("job name is required")

// scheduler runs in-process background jobs such as the standings outbox
// sweep.
type scheduler struct {
	inner    gocron.Scheduler
	logger   *logging.Logger
	stopOnce sync.Once
	stopErr  error
}

func newScheduler(logger *logging.Logger) (*scheduler, error) {
	if logger == nil {
		logger = logging.Default()
	}

	inner, err := gocron.NewScheduler(
		gocron.WithGlobalJobOptions(
			gocron.WithEventListeners(
				gocron.AfterJobRunsWithPanic(func(jobID uuid.UUID, jobName string, recoverData any) {
					logger.Error("scheduler job panicked",
						"job_id", jobID.String(),
						"job_name", jobName,
						"panic", recoverData,
					)
				}),
			),
		),
	)
	if err != nil {
		return nil, err
	}

	return &scheduler{inner: inner, logger: logger}, nil
}

// every registers task to run once per interval. A run that is still busy
// when the next tick arrives pushes that tick back instead of overlapping.
func (s *scheduler) every(name string, interval, timeout time.Duration, task func(ctx context.Context) error) error {
	if name == "" {
		return ErrEmptyJobName
	}
	jobLogger := s.logger.With("job_name", name, "interval", interval.String())

	wrapped := func() {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		if err := task(ctx); err != nil {
			jobLogger.Warn("scheduler job failed", "error", err)
		}
	}

	_, err := s.inner.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(wrapped),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}
	jobLogger.Info("scheduler job registered")
	return nil
}

func (s *scheduler) start() {
	s.logger.Info("scheduler starting")
	s.inner.Start()
}

func (s *scheduler) stop() error {
	s.stopOnce.Do(func() {
		s.logger.Info("scheduler stopping")
		s.stopErr = s.inner.Shutdown()
	})
	return s.stopErr
}
