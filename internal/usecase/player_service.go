package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/riskibarqy/cuebook/internal/domain/audit"
	"github.com/riskibarqy/cuebook/internal/domain/match"
	"github.com/riskibarqy/cuebook/internal/domain/player"
	"github.com/riskibarqy/cuebook/internal/domain/season"
	"github.com/riskibarqy/cuebook/internal/domain/standing"
	"github.com/riskibarqy/cuebook/internal/domain/user"
	"github.com/riskibarqy/cuebook/internal/platform/id"
	"github.com/riskibarqy/cuebook/internal/platform/logging"
	"github.com/sourcegraph/conc/pool"
)

const recentMatchLimit = 10

type CreatePlayerInput struct {
	DisplayName string
	Email       string
	Phone       string
	UserID      string
}

type PlayerActionResult struct {
	Player player.Player
	ActionOutcome
}

type HandicapActionResult struct {
	SeasonPlayer player.SeasonPlayer
	ActionOutcome
}

type PlayerProfile struct {
	Player        player.Player
	CurrentSeason *season.Season
	Standing      *standing.Standing
	RecentMatches []MatchSummary
}

type PlayerService struct {
	playerRepo   player.Repository
	seasonRepo   season.Repository
	standingRepo standing.Repository
	guard        *Guard
	auditor      *AuditRecorder
	idGen        id.Generator
	reader       matchReader
	logger       *logging.Logger
}

func NewPlayerService(
	playerRepo player.Repository,
	seasonRepo season.Repository,
	standingRepo standing.Repository,
	matchRepo match.Repository,
	guard *Guard,
	auditor *AuditRecorder,
	idGen id.Generator,
	logger *logging.Logger,
) *PlayerService {
	if logger == nil {
		logger = logging.Default()
	}

	return &PlayerService{
		playerRepo:   playerRepo,
		seasonRepo:   seasonRepo,
		standingRepo: standingRepo,
		guard:        guard,
		auditor:      auditor,
		idGen:        idGen,
		reader:       matchReader{matchRepo: matchRepo, playerRepo: playerRepo},
		logger:       logger,
	}
}

func (s *PlayerService) AddPlayer(ctx context.Context, principal user.Principal, leagueID string, input CreatePlayerInput) (PlayerActionResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.AddPlayer")
	defer span.End()

	owned, err := s.guard.RequireLeagueOwner(ctx, principal, leagueID)
	if err != nil {
		return PlayerActionResult{}, err
	}

	playerID, err := s.idGen.NewID()
	if err != nil {
		return PlayerActionResult{}, fmt.Errorf("generate player id: %w", err)
	}

	item := player.Player{
		ID:          playerID,
		LeagueID:    owned.ID,
		UserID:      strings.TrimSpace(input.UserID),
		DisplayName: strings.TrimSpace(input.DisplayName),
		Email:       strings.TrimSpace(input.Email),
		Phone:       strings.TrimSpace(input.Phone),
	}
	if err := item.Validate(); err != nil {
		return PlayerActionResult{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if err := s.playerRepo.Create(ctx, item); err != nil {
		if errors.Is(err, player.ErrDuplicate) {
			return PlayerActionResult{}, fmt.Errorf("%w: %w", ErrInvalidState, err)
		}
		return PlayerActionResult{}, fmt.Errorf("create player: %w", err)
	}

	var outcome ActionOutcome
	if err := s.auditor.Record(ctx, principal, auditEvent{
		LeagueID:   owned.ID,
		EntityType: audit.EntityPlayer,
		EntityID:   item.ID,
		Action:     audit.ActionAddedPlayer,
		Payload:    map[string]any{"display_name": item.DisplayName},
	}); err != nil {
		s.logger.ErrorContext(ctx, "audit append failed", "action", audit.ActionAddedPlayer, "entity_id", item.ID, "error", err)
		outcome.degrade("Player added but the audit log entry could not be written.")
	}

	return PlayerActionResult{Player: item, ActionOutcome: outcome}, nil
}

// UpdateHandicap sets a season enrollment's handicap. Only the owner of the
// season's league may change it.
func (s *PlayerService) UpdateHandicap(ctx context.Context, principal user.Principal, seasonPlayerID string, handicapPoints int) (HandicapActionResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.UpdateHandicap")
	defer span.End()

	if principal.IsZero() {
		return HandicapActionResult{}, fmt.Errorf("%w: sign in required", ErrUnauthenticated)
	}
	seasonPlayerID = strings.TrimSpace(seasonPlayerID)
	if seasonPlayerID == "" {
		return HandicapActionResult{}, fmt.Errorf("%w: season player id is required", ErrInvalidInput)
	}
	if handicapPoints < 0 {
		return HandicapActionResult{}, fmt.Errorf("%w: handicap points cannot be negative", ErrInvalidInput)
	}

	enrollment, exists, err := s.playerRepo.GetSeasonPlayer(ctx, seasonPlayerID)
	if err != nil {
		return HandicapActionResult{}, fmt.Errorf("get season player: %w", err)
	}
	if !exists {
		return HandicapActionResult{}, fmt.Errorf("%w: season player=%s", ErrNotFound, seasonPlayerID)
	}

	ssn, err := loadSeason(ctx, s.seasonRepo, enrollment.SeasonID)
	if err != nil {
		return HandicapActionResult{}, err
	}
	if _, err := s.guard.RequireLeagueOwner(ctx, principal, ssn.LeagueID); err != nil {
		return HandicapActionResult{}, err
	}

	if err := s.playerRepo.UpdateHandicap(ctx, enrollment.ID, handicapPoints); err != nil {
		return HandicapActionResult{}, fmt.Errorf("update handicap: %w", err)
	}
	enrollment.HandicapPoints = handicapPoints

	var outcome ActionOutcome
	if err := s.auditor.Record(ctx, principal, auditEvent{
		LeagueID:   ssn.LeagueID,
		EntityType: audit.EntitySeasonPlayer,
		EntityID:   enrollment.ID,
		Action:     audit.ActionUpdatedHandicap,
		Payload:    map[string]any{"handicap_points": handicapPoints},
	}); err != nil {
		s.logger.ErrorContext(ctx, "audit append failed", "action", audit.ActionUpdatedHandicap, "entity_id", enrollment.ID, "error", err)
		outcome.degrade("Handicap updated but the audit log entry could not be written.")
	}

	return HandicapActionResult{SeasonPlayer: enrollment, ActionOutcome: outcome}, nil
}

func (s *PlayerService) ListPlayers(ctx context.Context, leagueID string) ([]player.Player, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.ListPlayers")
	defer span.End()

	leagueID = strings.TrimSpace(leagueID)
	if leagueID == "" {
		return nil, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}

	items, err := s.playerRepo.ListByLeague(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return items, nil
}

// GetProfile returns a player with their current-season standing and most
// recent matches.
func (s *PlayerService) GetProfile(ctx context.Context, playerID string) (PlayerProfile, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PlayerService.GetProfile")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return PlayerProfile{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}

	item, exists, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return PlayerProfile{}, fmt.Errorf("get player: %w", err)
	}
	if !exists {
		return PlayerProfile{}, fmt.Errorf("%w: player=%s", ErrNotFound, playerID)
	}
	profile := PlayerProfile{Player: item}

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(func(ctx context.Context) error {
		ssn, exists, err := s.seasonRepo.GetCurrent(ctx, item.LeagueID)
		if err != nil {
			return fmt.Errorf("get current season: %w", err)
		}
		if !exists {
			return nil
		}
		profile.CurrentSeason = &ssn

		row, exists, err := s.standingRepo.GetForPlayer(ctx, ssn.ID, item.ID)
		if err != nil {
			return fmt.Errorf("get player standing: %w", err)
		}
		if exists {
			profile.Standing = &row
		}
		return nil
	})
	p.Go(func(ctx context.Context) error {
		matches, err := s.reader.matchRepo.ListByPlayers(ctx, []string{item.ID}, nil, recentMatchLimit)
		if err != nil {
			return fmt.Errorf("list player matches: %w", err)
		}
		summaries, err := s.reader.summarize(ctx, matches)
		if err != nil {
			return err
		}
		profile.RecentMatches = summaries
		return nil
	})
	if err := p.Wait(); err != nil {
		return PlayerProfile{}, err
	}

	return profile, nil
}
