package anubis

import (
	"crypto/sha256"
	"encoding/hex"
	stderrors "errors"
	"strings"

	"github.com/riskibarqy/cuebook/internal/platform/logging"
	"github.com/riskibarqy/cuebook/internal/platform/resilience"
)

// principalKey keys the principal cache by token digest so raw bearer
// tokens never sit in memory longer than the request.
func principalKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "anubis:principal:" + hex.EncodeToString(sum[:])
}

// endpointURL joins a configured path onto the base URL. Absolute URLs
// override the base.
func endpointURL(baseURL, path string) string {
	path = strings.TrimSpace(path)
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}

	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if path == "" {
		return baseURL
	}
	return baseURL + "/" + strings.TrimLeft(path, "/")
}

func isCircuitFailure(err error) bool {
	return stderrors.Is(err, errAnubisTransient)
}

func newBreaker(dependency string, cfg resilience.CircuitBreakerConfig, logger *logging.Logger) *resilience.CircuitBreaker {
	return resilience.NewCircuitBreakerFromConfig(cfg).OnStateChange(func(from, to resilience.CircuitState) {
		logger.Warn("circuit breaker state changed", "dependency", dependency, "from", from, "to", to)
	})
}
