package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/cuebook/internal/domain/match"
	"github.com/riskibarqy/cuebook/internal/domain/user"
	"github.com/riskibarqy/cuebook/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/cuebook/internal/platform/id"
	"github.com/riskibarqy/cuebook/internal/platform/logging"
	"github.com/riskibarqy/cuebook/internal/usecase"
)

const testJobToken = "job-secret"

type stubVerifier map[string]user.Principal

func (s stubVerifier) VerifyAccessToken(_ context.Context, token string) (user.Principal, error) {
	p, ok := s[token]
	if !ok {
		return user.Principal{}, fmt.Errorf("%w: unknown token", usecase.ErrUnauthenticated)
	}
	return p, nil
}

type stubRevoker struct {
	err     error
	revoked []string
}

func (s *stubRevoker) RevokeSession(_ context.Context, token string) error {
	s.revoked = append(s.revoked, token)
	return s.err
}

var testTokens = stubVerifier{
	"token-owner":    {UserID: memory.UserIDOwner},
	"token-alice":    {UserID: memory.UserIDAlice},
	"token-stranger": {UserID: "user-stranger"},
}

type apiFixture struct {
	store   *memory.Store
	revoker *stubRevoker
	router  http.Handler
}

func newAPIFixture(limiter *RateLimiter) *apiFixture {
	store := memory.NewStore(memory.SeedDataset())
	ids := id.NewUUIDGenerator()
	logger := logging.NewNop()

	guard := usecase.NewGuard(store.Leagues, store.Players)
	auditor := usecase.NewAuditRecorder(store.Audit, ids)
	recompute := usecase.NewRecomputeService(store.Recomputer, store.Tasks, nil, store.Dispatches, nil, ids, usecase.RecomputeConfig{
		RetryBase: time.Millisecond,
		RetryMax:  time.Millisecond,
	}, logger)

	revoker := &stubRevoker{}
	handler := NewHandler(
		usecase.NewMatchService(store.Matches, store.Seasons, store.Players, store.Venues, store.Audit, guard, auditor, recompute, logger),
		usecase.NewSeasonService(store.Seasons, guard, auditor, ids, logger),
		usecase.NewPlayerService(store.Players, store.Seasons, store.Standings, store.Matches, guard, auditor, ids, logger),
		usecase.NewStandingService(store.Seasons, store.Standings, store.Players),
		usecase.NewDashboardService(store.Leagues, store.Players, store.Seasons, store.Standings, store.Matches),
		recompute,
		revoker,
		logger,
	)

	return &apiFixture{
		store:   store,
		revoker: revoker,
		router: NewRouter(handler, testTokens, limiter, logger, RouterConfig{
			ServiceName:      "cuebook-test",
			InternalJobToken: testJobToken,
		}),
	}
}

func (f *apiFixture) do(t *testing.T, method, path, token, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

type actionEnvelope struct {
	Data  actionResultDTO  `json:"data"`
	Error *googleErrorBody `json:"error"`
}

func decodeAction(t *testing.T, rec *httptest.ResponseRecorder) actionEnvelope {
	t.Helper()

	var body actionEnvelope
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestSubmitResult_JSON(t *testing.T) {
	f := newAPIFixture(nil)

	rec := f.do(t, http.MethodPost, "/v1/matches/"+memory.MatchIDScheduled+"/result", "token-alice", "application/json",
		`{"points_a":100,"points_b":87,"innings":15,"high_run_a":23,"high_run_b":18,"notes":"close one"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeAction(t, rec)
	if !body.Data.Success || body.Data.Degraded {
		t.Fatalf("unexpected action result: %+v", body.Data)
	}
	if body.Data.Match == nil || body.Data.Match.Status != string(match.StatusSubmitted) {
		t.Fatalf("expected submitted match, got %+v", body.Data.Match)
	}
	if body.Data.Result == nil || body.Data.Result.PointsA != 100 || body.Data.Result.SubmittedBy != memory.UserIDAlice {
		t.Fatalf("unexpected result: %+v", body.Data.Result)
	}
}

func TestSubmitResult_Form(t *testing.T) {
	f := newAPIFixture(nil)

	form := url.Values{}
	form.Set("points_a", "100")
	form.Set("points_b", "87")
	form.Set("innings", "15")
	form.Set("high_run_a", "23")
	form.Set("high_run_b", "18")

	rec := f.do(t, http.MethodPost, "/v1/matches/"+memory.MatchIDScheduled+"/result", "token-alice",
		"application/x-www-form-urlencoded", form.Encode())
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	stored, _, _ := f.store.Matches.GetByID(context.Background(), memory.MatchIDScheduled)
	if stored.Status != match.StatusSubmitted {
		t.Fatalf("expected stored status submitted, got %s", stored.Status)
	}
}

func TestSubmitResult_RejectsBadPayloads(t *testing.T) {
	cases := []struct {
		name        string
		contentType string
		body        string
	}{
		{name: "unknown field", contentType: "application/json", body: `{"points_a":100,"points_b":87,"winner":"alice"}`},
		{name: "missing points", contentType: "application/json", body: `{"points_a":100}`},
		{name: "negative points", contentType: "application/json", body: `{"points_a":-1,"points_b":87}`},
		{name: "empty body", contentType: "application/json", body: ``},
		{name: "non numeric form value", contentType: "application/x-www-form-urlencoded", body: "points_a=ten&points_b=87"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newAPIFixture(nil)

			rec := f.do(t, http.MethodPost, "/v1/matches/"+memory.MatchIDScheduled+"/result", "token-alice", tc.contentType, tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
			if body := decodeAction(t, rec); body.Data.Success || body.Data.Error == "" {
				t.Fatalf("expected unsuccessful action result, got %+v", body.Data)
			}
			if len(f.store.Audit.Entries()) != 0 {
				t.Fatalf("rejected payload must not write audit")
			}
		})
	}
}

func TestSubmitResult_StrangerIsForbidden(t *testing.T) {
	f := newAPIFixture(nil)

	rec := f.do(t, http.MethodPost, "/v1/matches/"+memory.MatchIDScheduled+"/result", "token-stranger", "application/json",
		`{"points_a":100,"points_b":87,"innings":15}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %s", rec.Code, rec.Body.String())
	}
	body := decodeAction(t, rec)
	if body.Data.Success || body.Error == nil || body.Error.Status != "PERMISSION_DENIED" {
		t.Fatalf("unexpected body: %+v", body)
	}
}

func TestActions_RequireBearerToken(t *testing.T) {
	f := newAPIFixture(nil)

	rec := f.do(t, http.MethodPost, "/v1/matches/"+memory.MatchIDSubmitted+"/approve", "", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/v1/matches/"+memory.MatchIDSubmitted+"/approve", "token-unknown", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown token, got %d", rec.Code)
	}
}

func TestApproveResult_InvalidStateIsConflict(t *testing.T) {
	f := newAPIFixture(nil)

	rec := f.do(t, http.MethodPost, "/v1/matches/"+memory.MatchIDLocked+"/approve", "token-owner", "", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	if body := decodeAction(t, rec); body.Data.Success {
		t.Fatalf("expected unsuccessful action result")
	}
}

func TestApproveResult_DegradedWhenRecomputeFails(t *testing.T) {
	f := newAPIFixture(nil)
	f.store.Recomputer.SetFailure(errors.New("connection reset"))

	rec := f.do(t, http.MethodPost, "/v1/matches/"+memory.MatchIDSubmitted+"/approve", "token-owner", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeAction(t, rec)
	if !body.Data.Success || !body.Data.Degraded || len(body.Data.Warnings) != 1 {
		t.Fatalf("expected degraded success, got %+v", body.Data)
	}
	if body.Data.Match.Status != string(match.StatusApproved) {
		t.Fatalf("expected approved match, got %s", body.Data.Match.Status)
	}
}

func TestActions_RateLimitedPerUser(t *testing.T) {
	f := newAPIFixture(NewRateLimiter(0.001, 1))

	first := f.do(t, http.MethodPost, "/v1/matches/"+memory.MatchIDSubmitted+"/approve", "token-owner", "", "")
	if first.Code != http.StatusOK {
		t.Fatalf("expected first approve to pass, got %d", first.Code)
	}

	second := f.do(t, http.MethodPost, "/v1/matches/"+memory.MatchIDApproved+"/lock", "token-owner", "", "")
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", second.Code)
	}
	if second.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}

	other := f.do(t, http.MethodGet, "/v1/matches/"+memory.MatchIDApproved, "token-owner", "", "")
	if other.Code != http.StatusOK {
		t.Fatalf("reads must not be rate limited, got %d", other.Code)
	}
}

func TestGetSchedule_WeekFilter(t *testing.T) {
	f := newAPIFixture(nil)

	rec := f.do(t, http.MethodGet, "/v1/seasons/"+memory.SeasonIDSpring2026+"/schedule?week=1", "token-alice", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data scheduleDTO `json:"data"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(body.Data.Matches) != 2 {
		t.Fatalf("expected 2 matches in week 1, got %d", len(body.Data.Matches))
	}

	rec = f.do(t, http.MethodGet, "/v1/seasons/"+memory.SeasonIDSpring2026+"/schedule?week=abc", "token-alice", "", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad week, got %d", rec.Code)
	}
}

func TestCreateSeason_Form(t *testing.T) {
	f := newAPIFixture(nil)

	form := url.Values{}
	form.Set("name", "Fall 2026")
	form.Set("start_date", "2026-09-03")
	form.Set("end_date", "2026-11-25")
	form.Set("innings_required", "on")
	form.Set("submission_rule", "scorekeeper_submits")

	rec := f.do(t, http.MethodPost, "/v1/leagues/"+memory.LeagueIDThursdayNine+"/seasons", "token-owner",
		"application/x-www-form-urlencoded", form.Encode())
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeAction(t, rec)
	if body.Data.Season == nil || !body.Data.Season.InningsRequired || body.Data.Season.SubmissionRule != "scorekeeper_submits" {
		t.Fatalf("unexpected season: %+v", body.Data.Season)
	}
	if len(body.Data.Weeks) != 12 {
		t.Fatalf("expected 12 weeks, got %d", len(body.Data.Weeks))
	}
}

func TestUpdateHandicap_RequiresOwner(t *testing.T) {
	f := newAPIFixture(nil)
	path := "/v1/season-players/" + memory.SeedSeasonPlayerID(memory.PlayerIDAlice) + "/handicap"

	rec := f.do(t, http.MethodPut, path, "token-alice", "application/json", `{"handicap_points":20}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodPut, path, "token-owner", "application/json", `{"handicap_points":12}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if body := decodeAction(t, rec); body.Data.SeasonPlayer == nil || body.Data.SeasonPlayer.HandicapPoints != 12 {
		t.Fatalf("unexpected season player: %+v", body.Data.SeasonPlayer)
	}
}

func TestSignOut_DegradedWhenRevokeFails(t *testing.T) {
	f := newAPIFixture(nil)
	f.revoker.err = errors.New("identity provider timeout")

	rec := f.do(t, http.MethodPost, "/v1/auth/signout", "token-alice", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := decodeAction(t, rec); !body.Data.Success || !body.Data.Degraded {
		t.Fatalf("expected degraded sign out, got %+v", body.Data)
	}
	if len(f.revoker.revoked) != 1 || f.revoker.revoked[0] != "token-alice" {
		t.Fatalf("expected the caller token to be revoked, got %v", f.revoker.revoked)
	}
}

func TestRunRecomputeJob_RequiresInternalToken(t *testing.T) {
	f := newAPIFixture(nil)

	rec := f.do(t, http.MethodPost, "/v1/internal/jobs/recompute-standings", "", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without job token, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/recompute-standings",
		strings.NewReader(`{"season_id":"`+memory.SeasonIDSpring2026+`","dispatch_id":"dispatch-1"}`))
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	req.Header.Set("Content-Type", "application/json")
	ok := httptest.NewRecorder()
	f.router.ServeHTTP(ok, req)
	if ok.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", ok.Code, ok.Body.String())
	}

	statusReq := httptest.NewRequest(http.MethodGet, "/v1/internal/jobs/dispatches/dispatch-1", nil)
	statusReq.Header.Set("X-Internal-Job-Token", testJobToken)
	status := httptest.NewRecorder()
	f.router.ServeHTTP(status, statusReq)
	if status.Code != http.StatusOK {
		t.Fatalf("expected 200 for dispatch status, got %d: %s", status.Code, status.Body.String())
	}
	var body struct {
		Data jobDispatchDTO `json:"data"`
	}
	if err := sonic.Unmarshal(status.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Data.Status != "completed" || body.Data.CompletedAt == nil {
		t.Fatalf("expected completed dispatch, got %+v", body.Data)
	}

	missingReq := httptest.NewRequest(http.MethodGet, "/v1/internal/jobs/dispatches/nope", nil)
	missingReq.Header.Set("X-Internal-Job-Token", testJobToken)
	missing := httptest.NewRecorder()
	f.router.ServeHTTP(missing, missingReq)
	if missing.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown dispatch, got %d", missing.Code)
	}
}

func TestGetDashboard(t *testing.T) {
	f := newAPIFixture(nil)

	rec := f.do(t, http.MethodGet, "/v1/dashboard", "token-alice", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body struct {
		Data dashboardDTO `json:"data"`
	}
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(body.Data.Players) != 1 || body.Data.Players[0].ID != memory.PlayerIDAlice {
		t.Fatalf("unexpected players: %+v", body.Data.Players)
	}
}
