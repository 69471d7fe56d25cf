package config

import (
	"strings"
	"testing"
	"time"
)

func readerFor(values map[string]string) *envReader {
	return &envReader{lookup: func(key string) string { return values[key] }}
}

func TestEnvReader_CollectsEveryError(t *testing.T) {
	env := readerFor(map[string]string{
		"RECOMPUTE_WORKERS":    "four",
		"CACHE_TTL":            "soon",
		"QSTASH_ENABLED":       "maybe",
		"RATE_LIMIT_RPS":       " 2.5 ",
		"RECOMPUTE_RETRY_BASE": "",
	})

	if got := env.integer("RECOMPUTE_WORKERS", 4); got != 4 {
		t.Fatalf("bad int must fall back, got %d", got)
	}
	if got := env.duration("CACHE_TTL", time.Minute); got != time.Minute {
		t.Fatalf("bad duration must fall back, got %s", got)
	}
	env.boolean("QSTASH_ENABLED", false)
	if got := env.float("RATE_LIMIT_RPS", 0); got != 2.5 {
		t.Fatalf("expected trimmed float, got %v", got)
	}
	if got := env.duration("RECOMPUTE_RETRY_BASE", 30*time.Second); got != 30*time.Second {
		t.Fatalf("blank value must use fallback, got %s", got)
	}

	err := env.err()
	if err == nil {
		t.Fatalf("expected combined error")
	}
	for _, key := range []string{"RECOMPUTE_WORKERS", "CACHE_TTL", "QSTASH_ENABLED"} {
		if !strings.Contains(err.Error(), key) {
			t.Fatalf("error %q must mention %s", err, key)
		}
	}
}

func TestEnvReader_Circuit(t *testing.T) {
	env := readerFor(map[string]string{
		"ANUBIS_CIRCUIT_FAILURE_COUNT": "0",
		"ANUBIS_CIRCUIT_OPEN_TIMEOUT":  "30s",
	})

	s := env.circuit("ANUBIS")
	if !s.enabled || s.openTimeout != 30*time.Second || s.halfOpenMaxReq != 2 {
		t.Fatalf("unexpected circuit settings: %+v", s)
	}
	if err := env.err(); err == nil || !strings.Contains(err.Error(), "ANUBIS_CIRCUIT_FAILURE_COUNT") {
		t.Fatalf("expected failure count error, got %v", err)
	}
}

func TestDSNFromOTLPHeaders(t *testing.T) {
	cases := map[string]string{
		"":                                                   "",
		"x-team=pool":                                        "",
		`uptrace-dsn="https://t@api.uptrace.dev"`:            "https://t@api.uptrace.dev",
		"x-team=pool, Uptrace-DSN=https://t@u.dev?grpc=4317": "https://t@u.dev?grpc=4317",
	}
	for raw, want := range cases {
		if got := dsnFromOTLPHeaders(raw); got != want {
			t.Fatalf("dsnFromOTLPHeaders(%q) = %q, want %q", raw, got, want)
		}
	}
}
