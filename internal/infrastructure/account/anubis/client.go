package anubis

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/cuebook/internal/domain/user"
	"github.com/riskibarqy/cuebook/internal/platform/cache"
	"github.com/riskibarqy/cuebook/internal/platform/logging"
	"github.com/riskibarqy/cuebook/internal/platform/resilience"
	"github.com/riskibarqy/cuebook/internal/usecase"
)

var errAnubisTransient = crerr.New("anubis transient failure")

type Config struct {
	BaseURL        string
	IntrospectPath string
	RevokePath     string
	AdminKey       string
	PrincipalTTL   time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client verifies bearer tokens and ends sessions against the Anubis
// identity service.
type Client struct {
	httpClient    *http.Client
	introspectURL string
	revokeURL     string
	adminKey      string
	principals    *cache.Store
	breaker       *resilience.CircuitBreaker
	logger        *logging.Logger
}

func NewClient(httpClient *http.Client, cfg Config, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	ttl := cfg.PrincipalTTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return &Client{
		httpClient:    httpClient,
		introspectURL: endpointURL(cfg.BaseURL, cfg.IntrospectPath),
		revokeURL:     endpointURL(cfg.BaseURL, cfg.RevokePath),
		adminKey:      strings.TrimSpace(cfg.AdminKey),
		principals:    cache.NewStore(ttl),
		breaker:       newBreaker("anubis", cfg.CircuitBreaker, logger),
		logger:        logger,
	}
}

func (c *Client) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthenticated)
	}

	return cache.Load(ctx, c.principals, principalKey(token), func(ctx context.Context) (user.Principal, error) {
		var principal user.Principal
		err := c.call(ctx, func() error {
			var introspectErr error
			principal, introspectErr = c.introspect(ctx, token)
			return introspectErr
		})
		return principal, err
	})
}

// RevokeSession ends the session behind token. The cached principal is
// dropped first so the token stops working here even if the call fails.
func (c *Client) RevokeSession(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return fmt.Errorf("%w: token is required", usecase.ErrUnauthenticated)
	}
	c.principals.Delete(ctx, principalKey(token))

	return c.call(ctx, func() error {
		resp, err := c.post(ctx, c.revokeURL, tokenRequest{Token: token})
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusUnauthorized:
			return fmt.Errorf("%w: session already ended", usecase.ErrUnauthenticated)
		case resp.StatusCode/100 != 2:
			return c.statusError(ctx, "revoke", resp)
		}
		return nil
	})
}

func (c *Client) introspect(ctx context.Context, token string) (user.Principal, error) {
	resp, err := c.post(ctx, c.introspectURL, tokenRequest{Token: token})
	if err != nil {
		return user.Principal{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return user.Principal{}, fmt.Errorf("%w: introspection denied", usecase.ErrUnauthenticated)
	}
	if resp.StatusCode != http.StatusOK {
		return user.Principal{}, c.statusError(ctx, "introspect", resp)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return user.Principal{}, fmt.Errorf("%w: read introspect response: %v", errAnubisTransient, err)
	}

	var decoded introspectResponse
	if err := sonic.Unmarshal(body, &decoded); err != nil {
		return user.Principal{}, crerr.Wrap(err, "unmarshal introspect response")
	}
	if !decoded.Active {
		return user.Principal{}, fmt.Errorf("%w: inactive token", usecase.ErrUnauthenticated)
	}
	if strings.TrimSpace(decoded.UserID) == "" {
		return user.Principal{}, crerr.New("invalid introspect response: user_id is empty")
	}

	return user.Principal{
		UserID: decoded.UserID,
		Email:  decoded.Email,
	}, nil
}

func (c *Client) post(ctx context.Context, url string, payload any) (*http.Response, error) {
	encoded, err := sonic.Marshal(payload)
	if err != nil {
		return nil, crerr.Wrap(err, "marshal anubis request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return nil, crerr.Wrap(err, "create anubis request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.adminKey != "" {
		req.Header.Set("x-admin-key", c.adminKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request anubis %s: %v", errAnubisTransient, url, err)
	}
	return resp, nil
}

// statusError classifies a non-success response. A 403 means this service's
// admin key was refused, which callers cannot fix by signing in again.
func (c *Client) statusError(ctx context.Context, op string, resp *http.Response) error {
	c.logger.WarnContext(ctx, "anubis non-success response", "operation", op, "status_code", resp.StatusCode)

	if resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: anubis rejected service credentials on %s", usecase.ErrDependencyUnavailable, op)
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: anubis %s failed with status %d", errAnubisTransient, op, resp.StatusCode)
	}
	return crerr.Newf("anubis %s failed with status %d", op, resp.StatusCode)
}

// call runs fn behind the circuit breaker. Only transport and 5xx failures
// trip the breaker, and both surface as ErrDependencyUnavailable.
func (c *Client) call(ctx context.Context, fn func() error) error {
	err := c.breaker.Do(fn, func(err error) bool {
		return !isCircuitFailure(err)
	})
	switch {
	case stderrors.Is(err, resilience.ErrCircuitOpen):
		c.logger.WarnContext(ctx, "anubis circuit breaker rejected request", "state", c.breaker.State())
		return fmt.Errorf("%w: identity service is temporarily unavailable", usecase.ErrDependencyUnavailable)
	case isCircuitFailure(err):
		return fmt.Errorf("%w: %v", usecase.ErrDependencyUnavailable, err)
	default:
		return err
	}
}

type tokenRequest struct {
	Token string `json:"token"`
}

type introspectResponse struct {
	Active bool   `json:"active"`
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}
