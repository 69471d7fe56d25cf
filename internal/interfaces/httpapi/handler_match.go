package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/riskibarqy/cuebook/internal/usecase"
)

func (h *Handler) SubmitResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitResult")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeActionError(ctx, w, err)
		return
	}

	var req submitResultRequest
	if err := h.bindAction(w, r, &req); err != nil {
		writeActionError(ctx, w, err)
		return
	}

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	result, err := h.matchService.Submit(ctx, principal, usecase.SubmitResultInput{
		MatchID:  matchID,
		PointsA:  *req.PointsA,
		PointsB:  *req.PointsB,
		Innings:  req.Innings,
		HighRunA: req.HighRunA,
		HighRunB: req.HighRunB,
		Notes:    req.Notes,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "submit result failed", "match_id", matchID, "user_id", principal.UserID, "error", err)
		writeActionError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchActionToDTO(result))
}

func (h *Handler) ApproveResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ApproveResult")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeActionError(ctx, w, err)
		return
	}
	if err := decodeRequest(w, r, &emptyRequest{}, true); err != nil {
		writeActionError(ctx, w, err)
		return
	}

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	result, err := h.matchService.Approve(ctx, principal, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "approve result failed", "match_id", matchID, "user_id", principal.UserID, "error", err)
		writeActionError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchActionToDTO(result))
}

func (h *Handler) LockResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.LockResult")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeActionError(ctx, w, err)
		return
	}
	if err := decodeRequest(w, r, &emptyRequest{}, true); err != nil {
		writeActionError(ctx, w, err)
		return
	}

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	result, err := h.matchService.Lock(ctx, principal, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "lock result failed", "match_id", matchID, "user_id", principal.UserID, "error", err)
		writeActionError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchActionToDTO(result))
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	matchID := strings.TrimSpace(r.PathValue("matchID"))
	detail, err := h.matchService.Get(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchDetailToDTO(detail))
}

func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetSchedule")
	defer span.End()

	weekNumber := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("week")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(ctx, w, fmt.Errorf("%w: week must be a positive whole number", usecase.ErrInvalidInput))
			return
		}
		weekNumber = parsed
	}

	seasonID := strings.TrimSpace(r.PathValue("seasonID"))
	schedule, err := h.matchService.ListSchedule(ctx, seasonID, weekNumber)
	if err != nil {
		h.logger.WarnContext(ctx, "list schedule failed", "season_id", seasonID, "week", weekNumber, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, scheduleToDTO(schedule))
}

func (h *Handler) ListPendingApprovals(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPendingApprovals")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	items, err := h.matchService.ListPendingApprovals(ctx, principal, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "list pending approvals failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchSummariesToDTO(items))
}
