package httpapi

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/riskibarqy/cuebook/internal/usecase"
)

var internalJobDispatchUnsafeRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// RunRecomputeJob drains the standings outbox. It is the callback target of
// queued recompute jobs and may also be triggered by hand.
func (h *Handler) RunRecomputeJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRecomputeJob")
	defer span.End()

	if h.recomputeService == nil {
		writeError(ctx, w, fmt.Errorf("%w: standings recompute is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req recomputeJobRequest
	if err := decodeRequest(w, r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}

	dispatchID := strings.TrimSpace(req.DispatchID)
	if dispatchID == "" {
		dispatchID = buildManualDispatchID("recompute-standings", req.SeasonID, time.Now())
	}

	result, err := h.recomputeService.Drain(ctx)
	h.recomputeService.CompleteDispatch(ctx, dispatchID, err)
	if err != nil {
		h.logger.WarnContext(ctx, "run recompute job failed", "dispatch_id", dispatchID, "season_id", req.SeasonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	h.logger.InfoContext(ctx, "recompute job finished",
		"dispatch_id", dispatchID,
		"claimed", result.Claimed,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
	)
	writeSuccess(ctx, w, http.StatusOK, result)
}

// GetJobDispatch reports whether a queued drain job was delivered.
func (h *Handler) GetJobDispatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetJobDispatch")
	defer span.End()

	if h.recomputeService == nil {
		writeError(ctx, w, fmt.Errorf("%w: standings recompute is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	dispatch, err := h.recomputeService.Dispatch(ctx, r.PathValue("dispatchID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, jobDispatchToDTO(dispatch))
}

func buildManualDispatchID(jobName, seasonID string, now time.Time) string {
	jobName = sanitizeDispatchPart(jobName)
	seasonID = sanitizeDispatchPart(seasonID)
	ts := now.UTC().Format("20060102T150405.000000000Z")
	return "manual-" + jobName + "-" + seasonID + "-" + ts
}

func sanitizeDispatchPart(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return internalJobDispatchUnsafeRegex.ReplaceAllString(value, "-")
}
