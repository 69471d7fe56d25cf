package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/cuebook/internal/domain/standing"
	qb "github.com/riskibarqy/cuebook/internal/platform/querybuilder"
)

type StandingRepository struct {
	db *sqlx.DB
}

func NewStandingRepository(db *sqlx.DB) *StandingRepository {
	return &StandingRepository{db: db}
}

func (r *StandingRepository) ListBySeason(ctx context.Context, seasonID string) ([]standing.Standing, error) {
	query, args, err := qb.Select("*").From("season_standings").
		Where(qb.Eq("season_id", seasonID)).
		OrderBy("wins DESC", "ppi DESC", "player_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select season standings query: %w", err)
	}

	var rows []standingTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select season standings: %w", err)
	}

	out := make([]standing.Standing, 0, len(rows))
	for _, row := range rows {
		out = append(out, standingFromRow(row))
	}
	return out, nil
}

func (r *StandingRepository) GetForPlayer(ctx context.Context, seasonID, playerID string) (standing.Standing, bool, error) {
	query, args, err := qb.Select("*").From("season_standings").
		Where(
			qb.Eq("season_id", seasonID),
			qb.Eq("player_id", playerID),
		).
		ToSQL()
	if err != nil {
		return standing.Standing{}, false, fmt.Errorf("build get player standing query: %w", err)
	}

	var row standingTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return standing.Standing{}, false, nil
		}
		return standing.Standing{}, false, fmt.Errorf("get player standing: %w", err)
	}
	return standingFromRow(row), true, nil
}

// Recomputer calls the database-side aggregation. The procedure itself is
// owned outside this service.
type Recomputer struct {
	db *sqlx.DB
}

func NewRecomputer(db *sqlx.DB) *Recomputer {
	return &Recomputer{db: db}
}

func (r *Recomputer) Recompute(ctx context.Context, seasonID string) error {
	if _, err := r.db.ExecContext(ctx, `SELECT recompute_season_standings($1)`, seasonID); err != nil {
		return fmt.Errorf("recompute season standings season_id=%s: %w", seasonID, err)
	}
	return nil
}

func standingFromRow(row standingTableModel) standing.Standing {
	return standing.Standing{
		SeasonID:          row.SeasonID,
		PlayerID:          row.PlayerID,
		MatchesPlayed:     row.MatchesPlayed,
		Wins:              row.Wins,
		Losses:            row.Losses,
		PointsFor:         row.PointsFor,
		PointsAgainst:     row.PointsAgainst,
		PointDifferential: row.PointDifferential,
		TotalInnings:      row.TotalInnings,
		PPI:               row.PPI,
		HighRun:           row.HighRun,
		UpdatedAt:         row.UpdatedAt,
	}
}
