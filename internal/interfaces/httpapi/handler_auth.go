package httpapi

import "net/http"

// SignOut revokes the caller's identity session. A provider failure still
// signs the caller out locally and is reported as degraded.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SignOut")
	defer span.End()

	principal, err := requirePrincipal(ctx)
	if err != nil {
		writeActionError(ctx, w, err)
		return
	}

	result := actionResultDTO{Success: true}
	if h.sessionRevoker != nil {
		if err := h.sessionRevoker.RevokeSession(ctx, accessTokenFromContext(ctx)); err != nil {
			h.logger.WarnContext(ctx, "revoke session failed", "user_id", principal.UserID, "error", err)
			result.Degraded = true
			result.Warnings = []string{"Signed out here, but the session could not be revoked with the identity provider."}
		}
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}
