package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// envReader parses typed environment values and keeps every problem so a
// bad deploy reports all of its mistakes at once.
type envReader struct {
	lookup func(string) string
	errs   []error
}

func newEnvReader() *envReader {
	return &envReader{lookup: os.Getenv}
}

func (r *envReader) fail(format string, args ...any) {
	r.errs = append(r.errs, fmt.Errorf(format, args...))
}

func (r *envReader) err() error {
	return errors.Join(r.errs...)
}

// str returns the trimmed value of key, or fallback when it is blank.
func (r *envReader) str(key, fallback string) string {
	value := strings.TrimSpace(r.lookup(key))
	if value == "" {
		return fallback
	}
	return value
}

func (r *envReader) boolean(key string, fallback bool) bool {
	raw := r.str(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		r.fail("parse %s: %w", key, err)
		return fallback
	}
	return v
}

func (r *envReader) integer(key string, fallback int) int {
	raw := r.str(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		r.fail("parse %s: %w", key, err)
		return fallback
	}
	return v
}

func (r *envReader) float(key string, fallback float64) float64 {
	raw := r.str(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		r.fail("parse %s: %w", key, err)
		return fallback
	}
	return v
}

func (r *envReader) duration(key string, fallback time.Duration) time.Duration {
	raw := r.str(key, "")
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		r.fail("parse %s: %w", key, err)
		return fallback
	}
	return v
}

// list splits a comma separated value and drops blank items.
func (r *envReader) list(key, fallback string) []string {
	parts := strings.Split(r.str(key, fallback), ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if item := strings.TrimSpace(part); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (r *envReader) require(ok bool, format string, args ...any) {
	if !ok {
		r.fail(format, args...)
	}
}
