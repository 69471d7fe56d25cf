package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/riskibarqy/cuebook/internal/usecase"
)

func (h *Handler) CreateSeason(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CreateSeason")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeActionError(ctx, w, err)
		return
	}

	var req createSeasonRequest
	if err := h.bindAction(w, r, &req); err != nil {
		writeActionError(ctx, w, err)
		return
	}

	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		writeActionError(ctx, w, fmt.Errorf("%w: start_date must be YYYY-MM-DD", usecase.ErrInvalidInput))
		return
	}
	endDate, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		writeActionError(ctx, w, fmt.Errorf("%w: end_date must be YYYY-MM-DD", usecase.ErrInvalidInput))
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	result, err := h.seasonService.CreateSeason(ctx, principal, leagueID, usecase.CreateSeasonInput{
		Name:            req.Name,
		StartDate:       startDate,
		EndDate:         endDate,
		RaceToDefault:   req.RaceToDefault,
		InningsRequired: req.InningsRequired,
		HighRunEnabled:  req.HighRunEnabled,
		HandicapMethod:  req.HandicapMethod,
		SubmissionRule:  req.SubmissionRule,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "create season failed", "league_id", leagueID, "user_id", principal.UserID, "error", err)
		writeActionError(ctx, w, err)
		return
	}

	created := seasonToDTO(result.Season)
	writeSuccess(ctx, w, http.StatusCreated, actionResultDTO{
		Success:  true,
		Degraded: result.Degraded,
		Warnings: result.Warnings,
		Season:   &created,
		Weeks:    weeksToDTO(result.Weeks),
	})
}

func (h *Handler) ListSeasons(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListSeasons")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	seasons, err := h.seasonService.ListSeasons(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "list seasons failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]seasonDTO, 0, len(seasons))
	for _, s := range seasons {
		items = append(items, seasonToDTO(s))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) AddPlayer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AddPlayer")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeActionError(ctx, w, err)
		return
	}

	var req addPlayerRequest
	if err := h.bindAction(w, r, &req); err != nil {
		writeActionError(ctx, w, err)
		return
	}

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	result, err := h.playerService.AddPlayer(ctx, principal, leagueID, usecase.CreatePlayerInput{
		DisplayName: req.DisplayName,
		Email:       req.Email,
		Phone:       req.Phone,
		UserID:      req.UserID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "add player failed", "league_id", leagueID, "user_id", principal.UserID, "error", err)
		writeActionError(ctx, w, err)
		return
	}

	created := playerToDTO(result.Player)
	writeSuccess(ctx, w, http.StatusCreated, actionResultDTO{
		Success:  true,
		Degraded: result.Degraded,
		Warnings: result.Warnings,
		Player:   &created,
	})
}

func (h *Handler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayers")
	defer span.End()

	leagueID := strings.TrimSpace(r.PathValue("leagueID"))
	players, err := h.playerService.ListPlayers(ctx, leagueID)
	if err != nil {
		h.logger.WarnContext(ctx, "list players failed", "league_id", leagueID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playersToDTO(players))
}

func (h *Handler) GetPlayerProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerProfile")
	defer span.End()

	playerID := strings.TrimSpace(r.PathValue("playerID"))
	profile, err := h.playerService.GetProfile(ctx, playerID)
	if err != nil {
		h.logger.WarnContext(ctx, "get player profile failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, playerProfileToDTO(profile))
}

func (h *Handler) UpdateHandicap(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateHandicap")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeActionError(ctx, w, err)
		return
	}

	var req updateHandicapRequest
	if err := h.bindAction(w, r, &req); err != nil {
		writeActionError(ctx, w, err)
		return
	}

	seasonPlayerID := strings.TrimSpace(r.PathValue("seasonPlayerID"))
	result, err := h.playerService.UpdateHandicap(ctx, principal, seasonPlayerID, *req.HandicapPoints)
	if err != nil {
		h.logger.WarnContext(ctx, "update handicap failed", "season_player_id", seasonPlayerID, "user_id", principal.UserID, "error", err)
		writeActionError(ctx, w, err)
		return
	}

	updated := seasonPlayerToDTO(result.SeasonPlayer)
	writeSuccess(ctx, w, http.StatusOK, actionResultDTO{
		Success:      true,
		Degraded:     result.Degraded,
		Warnings:     result.Warnings,
		SeasonPlayer: &updated,
	})
}
