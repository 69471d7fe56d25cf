package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/riskibarqy/cuebook/internal/config"
	"github.com/riskibarqy/cuebook/internal/platform/logging"
)

func TestStart_AllDisabled(t *testing.T) {
	cfg := config.Config{
		UptraceEnabled: true,
		ServiceName:    "cuebook-api",
		ServiceVersion: "dev",
		AppEnv:         config.EnvDev,
	}

	telemetry, err := Start(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("start telemetry: %v", err)
	}
	if len(telemetry.stoppers) != 0 {
		t.Fatalf("expected no sinks without a DSN, got %d", len(telemetry.stoppers))
	}
	if err := telemetry.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestShutdown_ReverseOrderAndCombinedErrors(t *testing.T) {
	var order []string
	telemetry := &Telemetry{logger: logging.NewNop()}
	for _, name := range []string{"first", "second", "third"} {
		telemetry.stoppers = append(telemetry.stoppers, stopper{name: name, stop: func(context.Context) error {
			order = append(order, name)
			if name != "second" {
				return errors.New(name + " failed")
			}
			return nil
		}})
	}

	err := telemetry.Shutdown(context.Background())
	if strings.Join(order, ",") != "third,second,first" {
		t.Fatalf("unexpected stop order %v", order)
	}
	if err == nil || !strings.Contains(err.Error(), "stop third") {
		t.Fatalf("expected combined error, got %v", err)
	}
	if telemetry.stoppers != nil {
		t.Fatalf("stoppers must be cleared after shutdown")
	}

	var nilTelemetry *Telemetry
	if err := nilTelemetry.Shutdown(context.Background()); err != nil {
		t.Fatalf("nil shutdown: %v", err)
	}
}

func TestPprofServerRoutes(t *testing.T) {
	srv := newPprofServer("127.0.0.1:0")

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected pprof index, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/dashboard", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("pprof listener must not serve api routes, got %d", rec.Code)
	}
}

func TestProfileTags(t *testing.T) {
	tags := profileTags(config.Config{AppEnv: config.EnvProd, ServiceName: "cuebook-api", StorageDriver: "postgres"})
	if tags["env"] != config.EnvProd || tags["storage"] != "postgres" {
		t.Fatalf("unexpected tags: %+v", tags)
	}
}
