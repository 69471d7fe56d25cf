package resilience

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type transition struct {
	from, to CircuitState
}

func newTestBreaker(threshold, probes int) (*CircuitBreaker, *time.Time, *[]transition) {
	now := time.Date(2026, 3, 12, 19, 0, 0, 0, time.UTC)
	var mu sync.Mutex
	var seen []transition

	b := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: threshold,
		OpenTimeout:      5 * time.Second,
		HalfOpenMaxReq:   probes,
	}).OnStateChange(func(from, to CircuitState) {
		mu.Lock()
		seen = append(seen, transition{from: from, to: to})
		mu.Unlock()
	})
	b.now = func() time.Time { return now }
	return b, &now, &seen
}

var errRecompute = errors.New("recompute failed")

func fail() error    { return errRecompute }
func succeed() error { return nil }

func TestCircuitBreaker_OpensAfterThresholdAndRecovers(t *testing.T) {
	b, now, seen := newTestBreaker(2, 1)

	_ = b.Do(fail, nil)
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after first failure, got %s", state)
	}
	_ = b.Do(fail, nil)
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("expected open after threshold failures, got %s", state)
	}

	called := false
	err := b.Do(func() error { called = true; return nil }, nil)
	if !errors.Is(err, ErrCircuitOpen) || called {
		t.Fatalf("open breaker must reject without calling, err=%v called=%t", err, called)
	}

	*now = now.Add(6 * time.Second)
	if state := b.State(); state != CircuitStateHalfOpen {
		t.Fatalf("expected half-open after timeout, got %s", state)
	}
	if err := b.Do(succeed, nil); err != nil {
		t.Fatalf("expected probe to pass, got %v", err)
	}
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected closed after successful probe, got %s", state)
	}

	want := []transition{
		{CircuitStateClosed, CircuitStateOpen},
		{CircuitStateOpen, CircuitStateHalfOpen},
		{CircuitStateHalfOpen, CircuitStateClosed},
	}
	if len(*seen) != len(want) {
		t.Fatalf("unexpected transitions: %+v", *seen)
	}
	for i := range want {
		if (*seen)[i] != want[i] {
			t.Fatalf("transition %d: want %+v, got %+v", i, want[i], (*seen)[i])
		}
	}
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	b, now, _ := newTestBreaker(1, 2)

	_ = b.Do(fail, nil)
	*now = now.Add(6 * time.Second)

	if err := b.Do(fail, nil); !errors.Is(err, errRecompute) {
		t.Fatalf("expected probe error, got %v", err)
	}
	if state := b.State(); state != CircuitStateOpen {
		t.Fatalf("failed probe must reopen, got %s", state)
	}
	if err := b.Do(succeed, nil); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("reopened breaker must wait a full timeout, got %v", err)
	}
}

func TestCircuitBreaker_IgnoredErrorsDoNotCount(t *testing.T) {
	b, _, _ := newTestBreaker(1, 1)
	notFound := errors.New("not found")

	err := b.Do(func() error { return notFound }, func(err error) bool { return errors.Is(err, notFound) })
	if !errors.Is(err, notFound) {
		t.Fatalf("expected ignored error to pass through, got %v", err)
	}
	if state := b.State(); state != CircuitStateClosed {
		t.Fatalf("expected ignored error to keep breaker closed, got %s", state)
	}
}

func TestCircuitBreaker_DisabledAndNil(t *testing.T) {
	if b := NewCircuitBreakerFromConfig(CircuitBreakerConfig{}); b != nil {
		t.Fatalf("disabled config must yield nil breaker")
	}

	var b *CircuitBreaker
	if err := b.Do(fail, nil); !errors.Is(err, errRecompute) {
		t.Fatalf("nil breaker must pass calls through, got %v", err)
	}
	if b.State() != CircuitStateClosed || b.OnStateChange(nil) != nil {
		t.Fatalf("nil breaker must report closed")
	}

	enabled := NewCircuitBreakerFromConfig(CircuitBreakerConfig{Enabled: true})
	if enabled == nil || enabled.cfg.FailureThreshold != 5 || enabled.cfg.HalfOpenMaxReq != 2 {
		t.Fatalf("expected defaults to fill zero values, got %+v", enabled)
	}
}
