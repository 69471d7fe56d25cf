package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/cuebook/internal/domain/audit"
	"github.com/riskibarqy/cuebook/internal/domain/season"
	"github.com/riskibarqy/cuebook/internal/domain/user"
	"github.com/riskibarqy/cuebook/internal/platform/id"
	"github.com/riskibarqy/cuebook/internal/platform/logging"
)

type CreateSeasonInput struct {
	Name            string
	StartDate       time.Time
	EndDate         time.Time
	RaceToDefault   int
	InningsRequired bool
	HighRunEnabled  bool
	HandicapMethod  string
	SubmissionRule  string
}

type SeasonActionResult struct {
	Season season.Season
	Weeks  []season.Week
	ActionOutcome
}

type SeasonService struct {
	seasonRepo season.Repository
	guard      *Guard
	auditor    *AuditRecorder
	idGen      id.Generator
	logger     *logging.Logger
	now        func() time.Time
}

func NewSeasonService(
	seasonRepo season.Repository,
	guard *Guard,
	auditor *AuditRecorder,
	idGen id.Generator,
	logger *logging.Logger,
) *SeasonService {
	if logger == nil {
		logger = logging.Default()
	}

	return &SeasonService{
		seasonRepo: seasonRepo,
		guard:      guard,
		auditor:    auditor,
		idGen:      idGen,
		logger:     logger,
		now:        time.Now,
	}
}

// CreateSeason adds a season with its twelve-week calendar to a league the
// caller owns.
func (s *SeasonService) CreateSeason(ctx context.Context, principal user.Principal, leagueID string, input CreateSeasonInput) (SeasonActionResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.CreateSeason")
	defer span.End()

	owned, err := s.guard.RequireLeagueOwner(ctx, principal, leagueID)
	if err != nil {
		return SeasonActionResult{}, err
	}

	seasonID, err := s.idGen.NewID()
	if err != nil {
		return SeasonActionResult{}, fmt.Errorf("generate season id: %w", err)
	}

	item := season.Season{
		ID:              seasonID,
		LeagueID:        owned.ID,
		Name:            strings.TrimSpace(input.Name),
		StartDate:       dateOnly(input.StartDate),
		EndDate:         dateOnly(input.EndDate),
		RaceToDefault:   input.RaceToDefault,
		InningsRequired: input.InningsRequired,
		HighRunEnabled:  input.HighRunEnabled,
		HandicapMethod:  season.HandicapMethod(strings.TrimSpace(input.HandicapMethod)),
		SubmissionRule:  season.SubmissionRule(strings.TrimSpace(input.SubmissionRule)),
		CreatedAt:       s.now().UTC(),
	}.WithDefaults()
	if err := item.Validate(); err != nil {
		return SeasonActionResult{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	var idErr error
	weeks := season.PlanWeeks(item.ID, item.StartDate, func() string {
		weekID, err := s.idGen.NewID()
		if err != nil && idErr == nil {
			idErr = err
		}
		return weekID
	})
	if idErr != nil {
		return SeasonActionResult{}, fmt.Errorf("generate week id: %w", idErr)
	}

	if err := s.seasonRepo.CreateWithWeeks(ctx, item, weeks); err != nil {
		return SeasonActionResult{}, fmt.Errorf("create season: %w", err)
	}

	var outcome ActionOutcome
	if err := s.auditor.Record(ctx, principal, auditEvent{
		LeagueID:   owned.ID,
		EntityType: audit.EntitySeason,
		EntityID:   item.ID,
		Action:     audit.ActionCreatedSeason,
		Payload:    map[string]any{"name": item.Name},
	}); err != nil {
		s.logger.ErrorContext(ctx, "audit append failed", "action", audit.ActionCreatedSeason, "entity_id", item.ID, "error", err)
		outcome.degrade("Season created but the audit log entry could not be written.")
	}

	return SeasonActionResult{Season: item, Weeks: weeks, ActionOutcome: outcome}, nil
}

func (s *SeasonService) ListSeasons(ctx context.Context, leagueID string) ([]season.Season, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.ListSeasons")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return nil, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	items, err := s.seasonRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list seasons: %w", err)
	}
	return items, nil
}

// CurrentSeason returns the league season with the latest start date.
func (s *SeasonService) CurrentSeason(ctx context.Context, leagueID string) (season.Season, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SeasonService.CurrentSeason")
	defer span.End()

	return currentSeason(ctx, s.seasonRepo, leagueID)
}

func currentSeason(ctx context.Context, repo season.Repository, leagueID string) (season.Season, error) {
	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return season.Season{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	item, exists, err := repo.GetCurrent(ctx, leagueID)
	if err != nil {
		return season.Season{}, fmt.Errorf("get current season: %w", err)
	}
	if !exists {
		return season.Season{}, fmt.Errorf("%w: league=%s has no seasons", ErrNotFound, leagueID)
	}
	return item, nil
}

func dateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
