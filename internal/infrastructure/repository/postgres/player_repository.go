package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/cuebook/internal/domain/player"
	qb "github.com/riskibarqy/cuebook/internal/platform/querybuilder"
)

type PlayerRepository struct {
	db *sqlx.DB
}

var seasonPlayerSelectColumns = qb.Columns(seasonPlayerTableModel{}, "")

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) Create(ctx context.Context, p player.Player) error {
	query, args, err := qb.InsertModel("players", playerInsertModel{
		ID:          p.ID,
		LeagueID:    p.LeagueID,
		UserID:      optionalString(p.UserID),
		DisplayName: p.DisplayName,
		Email:       optionalString(p.Email),
		Phone:       optionalString(p.Phone),
	}, "")
	if err != nil {
		return fmt.Errorf("build insert player query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: league_id=%s", player.ErrDuplicate, p.LeagueID)
		}
		return fmt.Errorf("insert player id=%s: %w", p.ID, err)
	}
	return nil
}

func (r *PlayerRepository) GetByID(ctx context.Context, playerID string) (player.Player, bool, error) {
	query, args, err := qb.Select("*").From("players").
		Where(
			qb.Eq("id", playerID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return player.Player{}, false, fmt.Errorf("build get player by id query: %w", err)
	}

	var row playerTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("get player by id: %w", err)
	}
	return playerFromRow(row), true, nil
}

func (r *PlayerRepository) GetByIDs(ctx context.Context, playerIDs []string) ([]player.Player, error) {
	if len(playerIDs) == 0 {
		return []player.Player{}, nil
	}

	query, args, err := qb.Select("*").From("players").
		Where(
			qb.In("id", stringSliceToAny(playerIDs)),
			qb.IsNull("deleted_at"),
		).
		OrderBy("display_name", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select players by ids query: %w", err)
	}

	return r.selectPlayers(ctx, query, args, "select players by ids")
}

func (r *PlayerRepository) ListByLeague(ctx context.Context, leagueID string) ([]player.Player, error) {
	query, args, err := qb.Select("*").From("players").
		Where(
			qb.Eq("league_id", leagueID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("display_name", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select players by league query: %w", err)
	}

	return r.selectPlayers(ctx, query, args, "select players by league")
}

func (r *PlayerRepository) ListByUser(ctx context.Context, userID string) ([]player.Player, error) {
	query, args, err := qb.Select("*").From("players").
		Where(
			qb.Eq("user_id", userID),
			qb.IsNull("deleted_at"),
		).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select players by user query: %w", err)
	}

	return r.selectPlayers(ctx, query, args, "select players by user")
}

func (r *PlayerRepository) GetSeasonPlayer(ctx context.Context, seasonPlayerID string) (player.SeasonPlayer, bool, error) {
	query, args, err := qb.Select(seasonPlayerSelectColumns...).From("season_players").
		Where(qb.Eq("id", seasonPlayerID)).
		ToSQL()
	if err != nil {
		return player.SeasonPlayer{}, false, fmt.Errorf("build get season player query: %w", err)
	}

	var row seasonPlayerTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.SeasonPlayer{}, false, nil
		}
		return player.SeasonPlayer{}, false, fmt.Errorf("get season player: %w", err)
	}

	return player.SeasonPlayer{
		ID:             row.ID,
		SeasonID:       row.SeasonID,
		PlayerID:       row.PlayerID,
		HandicapPoints: row.HandicapPoints,
		Rating:         nullFloat64ToPointer(row.Rating),
		IsActive:       row.IsActive,
	}, true, nil
}

func (r *PlayerRepository) UpdateHandicap(ctx context.Context, seasonPlayerID string, handicapPoints int) error {
	query, args, err := qb.Update("season_players").
		Set("handicap_points", handicapPoints).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", seasonPlayerID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update handicap query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update handicap season_player_id=%s: %w", seasonPlayerID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read update handicap result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update handicap season_player_id=%s: no rows updated", seasonPlayerID)
	}
	return nil
}

func (r *PlayerRepository) selectPlayers(ctx context.Context, query string, args []any, op string) ([]player.Player, error) {
	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, playerFromRow(row))
	}
	return out, nil
}

func playerFromRow(row playerTableModel) player.Player {
	return player.Player{
		ID:          row.ID,
		LeagueID:    row.LeagueID,
		UserID:      row.UserID.String,
		DisplayName: row.DisplayName,
		Email:       row.Email.String,
		Phone:       row.Phone.String,
	}
}
