package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/cuebook/internal/usecase"
)

const (
	googleAPIVersion = "2.0"
	errorDomain      = "cuebook"
)

type googleResponseEnvelope struct {
	APIVersion string           `json:"apiVersion"`
	Data       any              `json:"data,omitempty"`
	Error      *googleErrorBody `json:"error,omitempty"`
}

type googleErrorBody struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Status  string            `json:"status"`
	Errors  []googleErrorItem `json:"errors,omitempty"`
}

type googleErrorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type mappedError struct {
	sentinel   error
	HTTPStatus int
	Reason     string
	Status     string
}

// actionResultDTO is the body every state-changing endpoint answers with.
type actionResultDTO struct {
	Success      bool             `json:"success"`
	Error        string           `json:"error,omitempty"`
	Degraded     bool             `json:"degraded,omitempty"`
	Warnings     []string         `json:"warnings,omitempty"`
	Match        *matchDTO        `json:"match,omitempty"`
	Result       *matchResultDTO  `json:"result,omitempty"`
	Season       *seasonDTO       `json:"season,omitempty"`
	Weeks        []weekDTO        `json:"weeks,omitempty"`
	Player       *playerDTO       `json:"player,omitempty"`
	SeasonPlayer *seasonPlayerDTO `json:"season_player,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	_, span := startSpan(ctx, "httpapi.writeSuccess")
	defer span.End()

	writeJSON(w, status, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Data:       data,
	})
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	writeErrorWithData(ctx, w, err, nil)
}

// writeActionError answers a failed action with the mapped status and an
// unsuccessful action result alongside the error body.
func writeActionError(ctx context.Context, w http.ResponseWriter, err error) {
	mapped := mapError(err)
	writeErrorWithData(ctx, w, err, actionResultDTO{
		Success: false,
		Error:   publicMessage(mapped, err),
	})
}

func writeErrorWithData(ctx context.Context, w http.ResponseWriter, err error, data any) {
	_, span := startSpan(ctx, "httpapi.writeError")
	defer span.End()

	mapped := mapError(err)
	message := publicMessage(mapped, err)
	writeJSON(w, mapped.HTTPStatus, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Data:       data,
		Error: &googleErrorBody{
			Code:    mapped.HTTPStatus,
			Message: message,
			Status:  mapped.Status,
			Errors: []googleErrorItem{
				{
					Domain:  errorDomain,
					Reason:  mapped.Reason,
					Message: message,
				},
			},
		},
	})
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	writeError(ctx, w, errors.New("internal server error"))
}

func writeRateLimited(ctx context.Context, w http.ResponseWriter) {
	_, span := startSpan(ctx, "httpapi.writeRateLimited")
	defer span.End()

	const msg = "too many requests, slow down and try again"

	w.Header().Set("Retry-After", "1")
	writeJSON(w, http.StatusTooManyRequests, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    http.StatusTooManyRequests,
			Message: msg,
			Status:  "RESOURCE_EXHAUSTED",
			Errors: []googleErrorItem{
				{Domain: errorDomain, Reason: "rateLimited", Message: msg},
			},
		},
	})
}

// errorMappings is checked in order; the first sentinel in the chain wins.
var errorMappings = []mappedError{
	{sentinel: usecase.ErrInvalidInput, HTTPStatus: http.StatusBadRequest, Reason: "invalidInput", Status: "INVALID_ARGUMENT"},
	{sentinel: usecase.ErrUnauthenticated, HTTPStatus: http.StatusUnauthorized, Reason: "unauthenticated", Status: "UNAUTHENTICATED"},
	{sentinel: usecase.ErrForbidden, HTTPStatus: http.StatusForbidden, Reason: "forbidden", Status: "PERMISSION_DENIED"},
	{sentinel: usecase.ErrNotFound, HTTPStatus: http.StatusNotFound, Reason: "notFound", Status: "NOT_FOUND"},
	{sentinel: usecase.ErrInvalidState, HTTPStatus: http.StatusConflict, Reason: "invalidState", Status: "FAILED_PRECONDITION"},
	{sentinel: usecase.ErrDependencyUnavailable, HTTPStatus: http.StatusServiceUnavailable, Reason: "dependencyUnavailable", Status: "UNAVAILABLE"},
}

var internalErrorMapping = mappedError{HTTPStatus: http.StatusInternalServerError, Reason: "internalError", Status: "INTERNAL"}

func mapError(err error) mappedError {
	for _, m := range errorMappings {
		if errors.Is(err, m.sentinel) {
			return m
		}
	}
	return internalErrorMapping
}

// publicMessage strips the sentinel prefix from a classified error and hides
// the detail of unclassified ones.
func publicMessage(mapped mappedError, err error) string {
	if mapped.sentinel == nil {
		return "internal server error"
	}
	msg := err.Error()
	if trimmed := strings.TrimPrefix(msg, mapped.sentinel.Error()+": "); trimmed != "" {
		msg = trimmed
	}
	return msg
}
