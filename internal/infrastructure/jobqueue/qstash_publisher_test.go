package jobqueue

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/cuebook/internal/platform/resilience"
)

func TestQStashPublisher_Enqueue_SendsUpstashHeaders(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v2/publish/") {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer qstash-token" {
			t.Fatalf("unexpected authorization header: %s", got)
		}
		if got := r.Header.Get("Upstash-Delay"); got != "30s" {
			t.Fatalf("unexpected delay header: %s", got)
		}
		if got := r.Header.Get("Upstash-Deduplication-Id"); got != "recompute-standings-s1" {
			t.Fatalf("unexpected dedup header: %s", got)
		}
		if got := r.Header.Get("Upstash-Forward-X-Internal-Job-Token"); got != "job-secret" {
			t.Fatalf("unexpected forwarded token: %s", got)
		}

		var body map[string]any
		if err := sonic.ConfigDefault.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body["season_id"] != "s1" {
			t.Fatalf("unexpected body: %+v", body)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	publisher, err := NewQStashPublisher(QStashPublisherConfig{
		BaseURL:          srv.URL,
		Token:            "qstash-token",
		TargetBaseURL:    "https://cuebook.example.com",
		InternalJobToken: "job-secret",
	}, nil)
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}

	err = publisher.Enqueue(context.Background(), "/v1/internal/jobs/recompute-standings", map[string]any{"season_id": "s1"}, 30*time.Second, "recompute-standings-s1")
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
}

func TestQStashPublisher_Enqueue_OpensCircuitOnTransientFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	publisher, err := NewQStashPublisher(QStashPublisherConfig{
		BaseURL:       srv.URL,
		Token:         "qstash-token",
		TargetBaseURL: "https://cuebook.example.com",
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	}, nil)
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}

	if err := publisher.Enqueue(context.Background(), "jobs", nil, 0, ""); !errors.Is(err, errQStashTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
	if err := publisher.Enqueue(context.Background(), "jobs", nil, 0, ""); !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("expected circuit open error, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected one upstream call, got %d", got)
	}
}

func TestNewQStashPublisher_RejectsInvalidConfig(t *testing.T) {
	t.Parallel()

	if _, err := NewQStashPublisher(QStashPublisherConfig{BaseURL: "ftp://qstash", Token: "t", TargetBaseURL: "https://x"}, nil); err == nil {
		t.Fatalf("expected error for unsupported scheme")
	}
	if _, err := NewQStashPublisher(QStashPublisherConfig{BaseURL: "https://qstash", TargetBaseURL: "https://x"}, nil); err == nil {
		t.Fatalf("expected error for missing token")
	}
}

func TestNormalizeDelay(t *testing.T) {
	t.Parallel()

	if got := normalizeDelay(0); got != "0s" {
		t.Fatalf("unexpected zero delay: %s", got)
	}
	if got := normalizeDelay(1500 * time.Millisecond); got != "2s" {
		t.Fatalf("unexpected rounded delay: %s", got)
	}
}
