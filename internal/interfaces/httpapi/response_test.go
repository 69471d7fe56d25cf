package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/cuebook/internal/usecase"
)

func TestWriteSuccess_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusOK, map[string]string{"status": "ok"})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	if got, _ := body["apiVersion"].(string); got != "2.0" {
		t.Fatalf("expected apiVersion=2.0, got %v", body["apiVersion"])
	}
	if _, ok := body["data"]; !ok {
		t.Fatalf("expected data key in success response")
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("did not expect error key in success response")
	}
}

func TestWriteError_GoogleEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(context.Background(), rec, fmt.Errorf("%w: bad payload", usecase.ErrInvalidInput))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}

	errorObj, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error object in response")
	}
	if got, _ := errorObj["status"].(string); got != "INVALID_ARGUMENT" {
		t.Fatalf("expected error status INVALID_ARGUMENT, got %v", errorObj["status"])
	}
	if got, _ := errorObj["message"].(string); got != "bad payload" {
		t.Fatalf("expected sentinel prefix to be stripped, got %q", got)
	}
}

func TestWriteActionError_CarriesUnsuccessfulResult(t *testing.T) {
	rec := httptest.NewRecorder()
	writeActionError(context.Background(), rec, fmt.Errorf("%w: result is already approved", usecase.ErrInvalidState))

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}

	var body struct {
		Data actionResultDTO `json:"data"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	if body.Data.Success || body.Data.Error != "result is already approved" {
		t.Fatalf("unexpected action result: %+v", body.Data)
	}
}

func TestMapError_Statuses(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{err: usecase.ErrInvalidInput, status: http.StatusBadRequest},
		{err: usecase.ErrUnauthenticated, status: http.StatusUnauthorized},
		{err: usecase.ErrForbidden, status: http.StatusForbidden},
		{err: usecase.ErrNotFound, status: http.StatusNotFound},
		{err: usecase.ErrInvalidState, status: http.StatusConflict},
		{err: usecase.ErrDependencyUnavailable, status: http.StatusServiceUnavailable},
		{err: errors.New("boom"), status: http.StatusInternalServerError},
	}

	for _, tc := range cases {
		wrapped := fmt.Errorf("%w: detail", tc.err)
		if got := mapError(wrapped).HTTPStatus; got != tc.status {
			t.Fatalf("error %v: expected %d, got %d", tc.err, tc.status, got)
		}
	}
}

func TestPublicMessage_HidesInternalDetail(t *testing.T) {
	err := errors.New("pq: connection refused at 10.0.0.4")
	if got := publicMessage(mapError(err), err); got != "internal server error" {
		t.Fatalf("expected generic message, got %q", got)
	}
}
