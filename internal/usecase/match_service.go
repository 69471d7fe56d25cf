package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/cuebook/internal/domain/audit"
	"github.com/riskibarqy/cuebook/internal/domain/match"
	"github.com/riskibarqy/cuebook/internal/domain/player"
	"github.com/riskibarqy/cuebook/internal/domain/season"
	"github.com/riskibarqy/cuebook/internal/domain/standing"
	"github.com/riskibarqy/cuebook/internal/domain/user"
	"github.com/riskibarqy/cuebook/internal/domain/venue"
	"github.com/riskibarqy/cuebook/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"
)

type SubmitResultInput struct {
	MatchID  string
	PointsA  int
	PointsB  int
	Innings  *int
	HighRunA *int
	HighRunB *int
	Notes    string
}

type MatchActionResult struct {
	Match  match.Match
	Result match.Result
	ActionOutcome
}

type MatchDetail struct {
	Match   match.Match
	Season  season.Season
	Week    season.Week
	PlayerA player.Player
	PlayerB player.Player
	Venue   *venue.Venue
	Result  *match.Result
	History []audit.Entry
}

type Schedule struct {
	Season  season.Season
	Weeks   []season.Week
	Matches []MatchSummary
}

type MatchService struct {
	matchRepo  match.Repository
	seasonRepo season.Repository
	playerRepo player.Repository
	venueRepo  venue.Repository
	auditRepo  audit.Repository
	guard      *Guard
	auditor    *AuditRecorder
	refresher  StandingsRefresher
	reader     matchReader
	logger     *logging.Logger
	now        func() time.Time
}

func NewMatchService(
	matchRepo match.Repository,
	seasonRepo season.Repository,
	playerRepo player.Repository,
	venueRepo venue.Repository,
	auditRepo audit.Repository,
	guard *Guard,
	auditor *AuditRecorder,
	refresher StandingsRefresher,
	logger *logging.Logger,
) *MatchService {
	if logger == nil {
		logger = logging.Default()
	}

	return &MatchService{
		matchRepo:  matchRepo,
		seasonRepo: seasonRepo,
		playerRepo: playerRepo,
		venueRepo:  venueRepo,
		auditRepo:  auditRepo,
		guard:      guard,
		auditor:    auditor,
		refresher:  refresher,
		reader:     matchReader{matchRepo: matchRepo, playerRepo: playerRepo},
		logger:     logger,
		now:        time.Now,
	}
}

// Submit records the score of a scheduled match. Either participant or the
// league owner may submit, unless the season reserves submission for the
// scorekeeper.
func (s *MatchService) Submit(ctx context.Context, principal user.Principal, input SubmitResultInput) (MatchActionResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Submit", attribute.String("match_id", input.MatchID))
	defer span.End()

	if principal.IsZero() {
		return MatchActionResult{}, fmt.Errorf("%w: you must be signed in to submit a result", ErrUnauthenticated)
	}

	m, err := s.loadMatch(ctx, input.MatchID)
	if err != nil {
		return MatchActionResult{}, err
	}
	if m.Status != match.StatusScheduled {
		return MatchActionResult{}, fmt.Errorf("%w: this match has already had a result submitted", ErrInvalidState)
	}

	ssn, err := s.loadSeason(ctx, m.SeasonID)
	if err != nil {
		return MatchActionResult{}, err
	}
	role, err := s.guard.RequireMatchParticipantOrOwner(ctx, principal, m, ssn.LeagueID)
	if err != nil {
		if errors.Is(err, ErrForbidden) {
			return MatchActionResult{}, fmt.Errorf("%w: you are not authorized to submit results for this match", ErrForbidden)
		}
		return MatchActionResult{}, err
	}
	if ssn.SubmissionRule == season.SubmissionScorekeeperSubmits && role != RoleOwner {
		return MatchActionResult{}, fmt.Errorf("%w: only the league scorekeeper can submit results this season", ErrForbidden)
	}

	score := match.Score{
		PointsA:  input.PointsA,
		PointsB:  input.PointsB,
		Innings:  input.Innings,
		HighRunA: input.HighRunA,
		HighRunB: input.HighRunB,
	}
	if err := match.ValidateScore(score, match.ScoreRules{
		InningsRequired: ssn.InningsRequired,
		HighRunEnabled:  ssn.HighRunEnabled,
	}); err != nil {
		return MatchActionResult{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	task, err := s.refresher.PlanTask(m.SeasonID, string(audit.ActionSubmittedResult))
	if err != nil {
		return MatchActionResult{}, err
	}

	result := match.Result{
		MatchID:     m.ID,
		PointsA:     score.PointsA,
		PointsB:     score.PointsB,
		Innings:     score.Innings,
		HighRunA:    score.HighRunA,
		HighRunB:    score.HighRunB,
		Notes:       strings.TrimSpace(input.Notes),
		SubmittedBy: principal.UserID,
		SubmittedAt: s.now().UTC(),
	}
	if err := s.matchRepo.SubmitResult(ctx, match.SubmitCommand{Result: result, Recompute: task}); err != nil {
		if errors.Is(err, match.ErrStatusConflict) {
			return MatchActionResult{}, fmt.Errorf("%w: this match has already had a result submitted", ErrInvalidState)
		}
		return MatchActionResult{}, fmt.Errorf("submit match result: %w", err)
	}
	m.Status = match.StatusSubmitted
	m.Version++

	outcome := s.afterWrite(ctx, principal, "Result submitted", task, auditEvent{
		LeagueID:   ssn.LeagueID,
		EntityType: audit.EntityMatch,
		EntityID:   m.ID,
		Action:     audit.ActionSubmittedResult,
		Payload: map[string]any{
			"points_a":   result.PointsA,
			"points_b":   result.PointsB,
			"innings":    result.Innings,
			"high_run_a": result.HighRunA,
			"high_run_b": result.HighRunB,
		},
	})

	return MatchActionResult{Match: m, Result: result, ActionOutcome: outcome}, nil
}

// Approve confirms a submitted result. Only the league owner may approve.
func (s *MatchService) Approve(ctx context.Context, principal user.Principal, matchID string) (MatchActionResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Approve", attribute.String("match_id", matchID))
	defer span.End()

	if principal.IsZero() {
		return MatchActionResult{}, fmt.Errorf("%w: you must be signed in to approve a result", ErrUnauthenticated)
	}

	m, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return MatchActionResult{}, err
	}
	if m.Status != match.StatusSubmitted {
		return MatchActionResult{}, fmt.Errorf("%w: match must be in submitted status to approve", ErrInvalidState)
	}

	res, err := s.transition(ctx, principal, m, transitionPlan{
		to:            match.StatusApproved,
		stampApproval: true,
		action:        audit.ActionApprovedResult,
		verb:          "Result approved",
		forbidden:     "only the league owner can approve results",
	})
	recordSpanError(span, err)
	return res, err
}

// Lock freezes a submitted or approved result. Locking a submitted result
// approves it at the same instant.
func (s *MatchService) Lock(ctx context.Context, principal user.Principal, matchID string) (MatchActionResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Lock", attribute.String("match_id", matchID))
	defer span.End()

	if principal.IsZero() {
		return MatchActionResult{}, fmt.Errorf("%w: you must be signed in to lock a result", ErrUnauthenticated)
	}

	m, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return MatchActionResult{}, err
	}
	if m.Status != match.StatusSubmitted && m.Status != match.StatusApproved {
		return MatchActionResult{}, fmt.Errorf("%w: match must be in submitted or approved status to lock", ErrInvalidState)
	}

	res, err := s.transition(ctx, principal, m, transitionPlan{
		to:            match.StatusLocked,
		stampApproval: m.Status == match.StatusSubmitted,
		stampLock:     true,
		action:        audit.ActionLockedResult,
		verb:          "Result locked",
		forbidden:     "only the league owner can lock results",
	})
	recordSpanError(span, err)
	return res, err
}

type transitionPlan struct {
	to            match.Status
	stampApproval bool
	stampLock     bool
	action        audit.Action
	verb          string
	forbidden     string
}

func (s *MatchService) transition(ctx context.Context, principal user.Principal, m match.Match, plan transitionPlan) (MatchActionResult, error) {
	ssn, err := s.loadSeason(ctx, m.SeasonID)
	if err != nil {
		return MatchActionResult{}, err
	}
	if _, err := s.guard.RequireLeagueOwner(ctx, principal, ssn.LeagueID); err != nil {
		if errors.Is(err, ErrForbidden) {
			return MatchActionResult{}, fmt.Errorf("%w: %s", ErrForbidden, plan.forbidden)
		}
		return MatchActionResult{}, err
	}

	task, err := s.refresher.PlanTask(m.SeasonID, string(plan.action))
	if err != nil {
		return MatchActionResult{}, err
	}

	at := s.now().UTC()
	err = s.matchRepo.Transition(ctx, match.TransitionCommand{
		MatchID:       m.ID,
		From:          m.Status,
		To:            plan.to,
		ActorUserID:   principal.UserID,
		At:            at,
		StampApproval: plan.stampApproval,
		StampLock:     plan.stampLock,
		Recompute:     task,
	})
	switch {
	case errors.Is(err, match.ErrStatusConflict):
		return MatchActionResult{}, fmt.Errorf("%w: match status changed from %s before the update was applied", ErrInvalidState, m.Status)
	case errors.Is(err, match.ErrResultMissing):
		return MatchActionResult{}, fmt.Errorf("%w: match=%s has no result", ErrInvalidState, m.ID)
	case err != nil:
		return MatchActionResult{}, fmt.Errorf("transition match to %s: %w", plan.to, err)
	}

	m.Status = plan.to
	m.Version++

	result, _, err := s.matchRepo.GetResult(ctx, m.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "reload match result failed", "match_id", m.ID, "error", err)
	}

	outcome := s.afterWrite(ctx, principal, plan.verb, task, auditEvent{
		LeagueID:   ssn.LeagueID,
		EntityType: audit.EntityMatch,
		EntityID:   m.ID,
		Action:     plan.action,
		Payload:    map[string]any{"status": string(plan.to)},
	})

	return MatchActionResult{Match: m, Result: result, ActionOutcome: outcome}, nil
}

// afterWrite runs the follow-up steps of a committed action. Their failures
// degrade the outcome but never fail the action.
func (s *MatchService) afterWrite(ctx context.Context, principal user.Principal, verb string, task standing.RecomputeTask, event auditEvent) ActionOutcome {
	var outcome ActionOutcome

	if err := s.refresher.RefreshNow(ctx, task); err != nil {
		s.logger.WarnContext(ctx, "standings recompute deferred",
			"match_id", event.EntityID,
			"season_id", task.SeasonID,
			"task_id", task.ID,
			"error", err,
		)
		outcome.degrade(verb + " but standings may be stale; they will be recomputed automatically.")
	}

	if err := s.auditor.Record(ctx, principal, event); err != nil {
		s.logger.ErrorContext(ctx, "audit append failed",
			"action", event.Action,
			"entity_id", event.EntityID,
			"error", err,
		)
		outcome.degrade(verb + " but the audit log entry could not be written.")
	}

	return outcome
}

func (s *MatchService) Get(ctx context.Context, matchID string) (MatchDetail, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.Get")
	defer span.End()

	m, err := s.loadMatch(ctx, matchID)
	if err != nil {
		return MatchDetail{}, err
	}
	detail := MatchDetail{Match: m}

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		ssn, err := s.loadSeason(ctx, m.SeasonID)
		detail.Season = ssn
		return err
	})
	p.Go(func(ctx context.Context) error {
		week, exists, err := s.seasonRepo.GetWeek(ctx, m.WeekID)
		if err != nil {
			return fmt.Errorf("get week: %w", err)
		}
		if exists {
			detail.Week = week
		}
		return nil
	})
	p.Go(func(ctx context.Context) error {
		players, err := s.playerRepo.GetByIDs(ctx, m.PlayerIDs())
		if err != nil {
			return fmt.Errorf("get match players: %w", err)
		}
		for _, item := range players {
			switch item.ID {
			case m.PlayerAID:
				detail.PlayerA = item
			case m.PlayerBID:
				detail.PlayerB = item
			}
		}
		return nil
	})
	p.Go(func(ctx context.Context) error {
		if m.VenueID == "" {
			return nil
		}
		item, exists, err := s.venueRepo.GetByID(ctx, m.VenueID)
		if err != nil {
			return fmt.Errorf("get venue: %w", err)
		}
		if exists {
			detail.Venue = &item
		}
		return nil
	})
	p.Go(func(ctx context.Context) error {
		result, exists, err := s.matchRepo.GetResult(ctx, m.ID)
		if err != nil {
			return fmt.Errorf("get match result: %w", err)
		}
		if exists {
			detail.Result = &result
		}
		return nil
	})
	p.Go(func(ctx context.Context) error {
		history, err := s.auditRepo.ListByEntity(ctx, audit.EntityMatch, m.ID)
		if err != nil {
			return fmt.Errorf("list match history: %w", err)
		}
		detail.History = history
		return nil
	})
	if err := p.Wait(); err != nil {
		return MatchDetail{}, err
	}

	return detail, nil
}

// ListSchedule returns a season's matches, optionally narrowed to one week
// number.
func (s *MatchService) ListSchedule(ctx context.Context, seasonID string, weekNumber int) (Schedule, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.ListSchedule")
	defer span.End()

	ssn, err := s.loadSeason(ctx, seasonID)
	if err != nil {
		return Schedule{}, err
	}

	weeks, err := s.seasonRepo.ListWeeks(ctx, ssn.ID)
	if err != nil {
		return Schedule{}, fmt.Errorf("list weeks: %w", err)
	}

	weekID := ""
	if weekNumber != 0 {
		for _, w := range weeks {
			if w.Number == weekNumber {
				weekID = w.ID
				break
			}
		}
		if weekID == "" {
			return Schedule{}, fmt.Errorf("%w: season=%s week=%d", ErrNotFound, ssn.ID, weekNumber)
		}
	}

	matches, err := s.matchRepo.ListBySeason(ctx, ssn.ID, weekID)
	if err != nil {
		return Schedule{}, fmt.Errorf("list season matches: %w", err)
	}
	summaries, err := s.reader.summarize(ctx, matches)
	if err != nil {
		return Schedule{}, err
	}

	return Schedule{Season: ssn, Weeks: weeks, Matches: summaries}, nil
}

// ListPendingApprovals returns submitted matches across the league's
// seasons for its owner.
func (s *MatchService) ListPendingApprovals(ctx context.Context, principal user.Principal, leagueID string) ([]MatchSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchService.ListPendingApprovals")
	defer span.End()

	owned, err := s.guard.RequireLeagueOwner(ctx, principal, leagueID)
	if err != nil {
		return nil, err
	}

	seasons, err := s.seasonRepo.ListByLeague(ctx, owned.ID)
	if err != nil {
		return nil, fmt.Errorf("list seasons: %w", err)
	}
	if len(seasons) == 0 {
		return []MatchSummary{}, nil
	}
	seasonIDs := make([]string, 0, len(seasons))
	for _, item := range seasons {
		seasonIDs = append(seasonIDs, item.ID)
	}

	matches, err := s.matchRepo.ListByStatus(ctx, seasonIDs, match.StatusSubmitted)
	if err != nil {
		return nil, fmt.Errorf("list submitted matches: %w", err)
	}
	return s.reader.summarize(ctx, matches)
}

func (s *MatchService) loadMatch(ctx context.Context, matchID string) (match.Match, error) {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return match.Match{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	m, exists, err := s.matchRepo.GetByID(ctx, matchID)
	if err != nil {
		return match.Match{}, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return match.Match{}, fmt.Errorf("%w: match not found", ErrNotFound)
	}
	return m, nil
}

func (s *MatchService) loadSeason(ctx context.Context, seasonID string) (season.Season, error) {
	return loadSeason(ctx, s.seasonRepo, seasonID)
}

func loadSeason(ctx context.Context, repo season.Repository, seasonID string) (season.Season, error) {
	seasonID = strings.TrimSpace(seasonID)
	if seasonID == "" {
		return season.Season{}, fmt.Errorf("%w: season id is required", ErrInvalidInput)
	}

	item, exists, err := repo.GetByID(ctx, seasonID)
	if err != nil {
		return season.Season{}, fmt.Errorf("get season: %w", err)
	}
	if !exists {
		return season.Season{}, fmt.Errorf("%w: season=%s", ErrNotFound, seasonID)
	}
	return item, nil
}
