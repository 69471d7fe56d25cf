package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/cuebook/internal/domain/user"
	"github.com/riskibarqy/cuebook/internal/platform/logging"
	"github.com/riskibarqy/cuebook/internal/usecase"
)

type Handler struct {
	matchService     *usecase.MatchService
	seasonService    *usecase.SeasonService
	playerService    *usecase.PlayerService
	standingService  *usecase.StandingService
	dashboardService *usecase.DashboardService
	recomputeService *usecase.RecomputeService
	sessionRevoker   SessionRevoker
	logger           *logging.Logger
	validator        *validator.Validate
}

func NewHandler(
	matchService *usecase.MatchService,
	seasonService *usecase.SeasonService,
	playerService *usecase.PlayerService,
	standingService *usecase.StandingService,
	dashboardService *usecase.DashboardService,
	recomputeService *usecase.RecomputeService,
	sessionRevoker SessionRevoker,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		matchService:     matchService,
		seasonService:    seasonService,
		playerService:    playerService,
		standingService:  standingService,
		dashboardService: dashboardService,
		recomputeService: recomputeService,
		sessionRevoker:   sessionRevoker,
		logger:           logger,
		validator:        validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// bindAction decodes and validates an action body.
func (h *Handler) bindAction(w http.ResponseWriter, r *http.Request, dst formBinder) error {
	if err := decodeRequest(w, r, dst, false); err != nil {
		return err
	}
	return h.validateRequest(r.Context(), dst)
}

func requirePrincipal(ctx context.Context) (user.Principal, error) {
	principal, ok := principalFromContext(ctx)
	if !ok || principal.IsZero() {
		return user.Principal{}, fmt.Errorf("%w: sign in required", usecase.ErrUnauthenticated)
	}
	return principal, nil
}
