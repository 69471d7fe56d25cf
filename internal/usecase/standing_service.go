package usecase

import (
	"context"
	"fmt"

	"github.com/riskibarqy/cuebook/internal/domain/player"
	"github.com/riskibarqy/cuebook/internal/domain/season"
	"github.com/riskibarqy/cuebook/internal/domain/standing"
)

type StandingRow struct {
	Rank       int
	PlayerName string
	Standing   standing.Standing
}

type StandingTable struct {
	Season season.Season
	Rows   []StandingRow
}

type StandingService struct {
	seasonRepo   season.Repository
	standingRepo standing.Repository
	playerRepo   player.Repository
}

func NewStandingService(seasonRepo season.Repository, standingRepo standing.Repository, playerRepo player.Repository) *StandingService {
	return &StandingService{
		seasonRepo:   seasonRepo,
		standingRepo: standingRepo,
		playerRepo:   playerRepo,
	}
}

func (s *StandingService) ListBySeason(ctx context.Context, seasonID string) (StandingTable, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingService.ListBySeason")
	defer span.End()

	ssn, err := loadSeason(ctx, s.seasonRepo, seasonID)
	if err != nil {
		return StandingTable{}, err
	}
	return s.table(ctx, ssn)
}

// ListCurrent returns the table of the league's latest season.
func (s *StandingService) ListCurrent(ctx context.Context, leagueID string) (StandingTable, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingService.ListCurrent")
	defer span.End()

	ssn, err := currentSeason(ctx, s.seasonRepo, leagueID)
	if err != nil {
		return StandingTable{}, err
	}
	return s.table(ctx, ssn)
}

func (s *StandingService) table(ctx context.Context, ssn season.Season) (StandingTable, error) {
	items, err := s.standingRepo.ListBySeason(ctx, ssn.ID)
	if err != nil {
		return StandingTable{}, fmt.Errorf("list season standings: %w", err)
	}
	standing.Sort(items)

	playerIDs := make([]string, 0, len(items))
	for _, item := range items {
		playerIDs = append(playerIDs, item.PlayerID)
	}
	players, err := s.playerRepo.GetByIDs(ctx, playerIDs)
	if err != nil {
		return StandingTable{}, fmt.Errorf("get standing players: %w", err)
	}
	names := make(map[string]string, len(players))
	for _, p := range players {
		names[p.ID] = p.DisplayName
	}

	rows := make([]StandingRow, 0, len(items))
	for i, item := range items {
		rows = append(rows, StandingRow{
			Rank:       i + 1,
			PlayerName: names[item.PlayerID],
			Standing:   item,
		})
	}
	return StandingTable{Season: ssn, Rows: rows}, nil
}
