package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/cuebook/internal/domain/season"
	qb "github.com/riskibarqy/cuebook/internal/platform/querybuilder"
)

type SeasonRepository struct {
	db *sqlx.DB
}

func NewSeasonRepository(db *sqlx.DB) *SeasonRepository {
	return &SeasonRepository{db: db}
}

func (r *SeasonRepository) GetByID(ctx context.Context, seasonID string) (season.Season, bool, error) {
	query, args, err := qb.Select("*").From("seasons").
		Where(
			qb.Eq("id", seasonID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return season.Season{}, false, fmt.Errorf("build get season by id query: %w", err)
	}

	var row seasonTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return season.Season{}, false, nil
		}
		return season.Season{}, false, fmt.Errorf("get season by id: %w", err)
	}

	return seasonFromRow(row), true, nil
}

func (r *SeasonRepository) ListByLeague(ctx context.Context, leagueID string) ([]season.Season, error) {
	query, args, err := qb.Select("*").From("seasons").
		Where(
			qb.Eq("league_id", leagueID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("start_date DESC", "created_at DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select seasons by league query: %w", err)
	}

	var rows []seasonTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select seasons by league: %w", err)
	}

	out := make([]season.Season, 0, len(rows))
	for _, row := range rows {
		out = append(out, seasonFromRow(row))
	}
	return out, nil
}

func (r *SeasonRepository) GetCurrent(ctx context.Context, leagueID string) (season.Season, bool, error) {
	query, args, err := qb.Select("*").From("seasons").
		Where(
			qb.Eq("league_id", leagueID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("start_date DESC", "created_at DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return season.Season{}, false, fmt.Errorf("build get current season query: %w", err)
	}

	var row seasonTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return season.Season{}, false, nil
		}
		return season.Season{}, false, fmt.Errorf("get current season: %w", err)
	}

	return seasonFromRow(row), true, nil
}

func (r *SeasonRepository) CreateWithWeeks(ctx context.Context, s season.Season, weeks []season.Week) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create season tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query, args, err := qb.InsertModel("seasons", seasonInsertModel{
		ID:              s.ID,
		LeagueID:        s.LeagueID,
		Name:            s.Name,
		StartDate:       s.StartDate,
		EndDate:         s.EndDate,
		RaceToDefault:   s.RaceToDefault,
		InningsRequired: s.InningsRequired,
		HighRunEnabled:  s.HighRunEnabled,
		HandicapMethod:  string(s.HandicapMethod),
		SubmissionRule:  string(s.SubmissionRule),
		CreatedAt:       s.CreatedAt,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert season query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert season id=%s: %w", s.ID, err)
	}

	if len(weeks) > 0 {
		rows := make([]weekTableModel, 0, len(weeks))
		for _, w := range weeks {
			rows = append(rows, weekTableModel{
				ID:        w.ID,
				SeasonID:  s.ID,
				Number:    w.Number,
				StartDate: w.StartDate,
				EndDate:   w.EndDate,
			})
		}
		query, args, err = qb.InsertModels("weeks", rows, "")
		if err != nil {
			return fmt.Errorf("build insert weeks query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert weeks season_id=%s: %w", s.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create season tx: %w", err)
	}
	return nil
}

func (r *SeasonRepository) ListWeeks(ctx context.Context, seasonID string) ([]season.Week, error) {
	query, args, err := qb.Select("*").From("weeks").
		Where(qb.Eq("season_id", seasonID)).
		OrderBy("week_number").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select weeks query: %w", err)
	}

	var rows []weekTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select weeks: %w", err)
	}

	out := make([]season.Week, 0, len(rows))
	for _, row := range rows {
		out = append(out, weekFromRow(row))
	}
	return out, nil
}

func (r *SeasonRepository) GetWeek(ctx context.Context, weekID string) (season.Week, bool, error) {
	query, args, err := qb.Select("*").From("weeks").
		Where(qb.Eq("id", weekID)).
		ToSQL()
	if err != nil {
		return season.Week{}, false, fmt.Errorf("build get week query: %w", err)
	}

	var row weekTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return season.Week{}, false, nil
		}
		return season.Week{}, false, fmt.Errorf("get week: %w", err)
	}
	return weekFromRow(row), true, nil
}

func seasonFromRow(row seasonTableModel) season.Season {
	return season.Season{
		ID:              row.ID,
		LeagueID:        row.LeagueID,
		Name:            row.Name,
		StartDate:       row.StartDate.UTC(),
		EndDate:         row.EndDate.UTC(),
		RaceToDefault:   row.RaceToDefault,
		InningsRequired: row.InningsRequired,
		HighRunEnabled:  row.HighRunEnabled,
		HandicapMethod:  season.HandicapMethod(row.HandicapMethod),
		SubmissionRule:  season.SubmissionRule(row.SubmissionRule),
		CreatedAt:       row.CreatedAt,
	}
}

func weekFromRow(row weekTableModel) season.Week {
	return season.Week{
		ID:        row.ID,
		SeasonID:  row.SeasonID,
		Number:    row.Number,
		StartDate: row.StartDate.UTC(),
		EndDate:   row.EndDate.UTC(),
	}
}
