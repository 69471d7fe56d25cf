package observability

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/cuebook/internal/config"
	"github.com/riskibarqy/cuebook/internal/platform/logging"
)

// Telemetry owns the process-wide tracing, profiling and pprof listeners.
type Telemetry struct {
	logger   *logging.Logger
	stoppers []stopper
}

type stopper struct {
	name string
	stop func(ctx context.Context) error
}

// Start brings up every telemetry sink enabled in cfg. On error the sinks
// already started are stopped again.
func Start(cfg config.Config, logger *logging.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = logging.Default()
	}
	t := &Telemetry{logger: logger.Named("telemetry")}

	steps := []struct {
		name  string
		start func(config.Config, *logging.Logger) (func(context.Context) error, error)
	}{
		{name: "uptrace", start: startTracing},
		{name: "pyroscope", start: startProfiler},
		{name: "pprof", start: startPprof},
	}
	for _, step := range steps {
		stop, err := step.start(cfg, t.logger)
		if err != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = t.Shutdown(shutdownCtx)
			cancel()
			return nil, errors.Wrapf(err, "start %s", step.name)
		}
		if stop != nil {
			t.stoppers = append(t.stoppers, stopper{name: step.name, stop: stop})
		}
	}
	return t, nil
}

// Shutdown stops the sinks in reverse start order and reports every failure.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	var combined error
	for i := len(t.stoppers) - 1; i >= 0; i-- {
		s := t.stoppers[i]
		if err := s.stop(ctx); err != nil {
			combined = errors.CombineErrors(combined, errors.Wrapf(err, "stop %s", s.name))
			continue
		}
		t.logger.Debug("telemetry sink stopped", "sink", s.name)
	}
	t.stoppers = nil
	return combined
}
