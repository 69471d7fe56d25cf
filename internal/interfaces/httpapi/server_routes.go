package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

// authed wraps a read endpoint with bearer authentication.
func authed(verifier TokenVerifier, fn http.HandlerFunc) http.Handler {
	return RequireAuth(verifier, fn)
}

// action wraps a state-changing endpoint with authentication and the per
// caller rate limit.
func action(verifier TokenVerifier, limiter *RateLimiter, fn http.HandlerFunc) http.Handler {
	return RequireAuth(verifier, limiter.Wrap(fn))
}

func registerMatchRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier, limiter *RateLimiter) {
	mux.Handle("POST /v1/matches/{matchID}/result", action(verifier, limiter, handler.SubmitResult))
	mux.Handle("POST /v1/matches/{matchID}/approve", action(verifier, limiter, handler.ApproveResult))
	mux.Handle("POST /v1/matches/{matchID}/lock", action(verifier, limiter, handler.LockResult))
	mux.Handle("GET /v1/matches/{matchID}", authed(verifier, handler.GetMatch))
	mux.Handle("GET /v1/seasons/{seasonID}/schedule", authed(verifier, handler.GetSchedule))
	mux.Handle("GET /v1/leagues/{leagueID}/approvals", authed(verifier, handler.ListPendingApprovals))
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier, limiter *RateLimiter) {
	mux.Handle("POST /v1/leagues/{leagueID}/seasons", action(verifier, limiter, handler.CreateSeason))
	mux.Handle("GET /v1/leagues/{leagueID}/seasons", authed(verifier, handler.ListSeasons))
	mux.Handle("POST /v1/leagues/{leagueID}/players", action(verifier, limiter, handler.AddPlayer))
	mux.Handle("GET /v1/leagues/{leagueID}/players", authed(verifier, handler.ListPlayers))
	mux.Handle("GET /v1/players/{playerID}", authed(verifier, handler.GetPlayerProfile))
	mux.Handle("PUT /v1/season-players/{seasonPlayerID}/handicap", action(verifier, limiter, handler.UpdateHandicap))
}

func registerReadRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/seasons/{seasonID}/standings", authed(verifier, handler.ListSeasonStandings))
	mux.Handle("GET /v1/leagues/{leagueID}/standings", authed(verifier, handler.ListLeagueStandings))
	mux.Handle("GET /v1/dashboard", authed(verifier, handler.GetDashboard))
}

func registerAuthRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/auth/signout", authed(verifier, handler.SignOut))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/recompute-standings", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRecomputeJob)))
	mux.Handle("GET /v1/internal/jobs/dispatches/{dispatchID}", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.GetJobDispatch)))
}
