package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/riskibarqy/cuebook/internal/domain/match"
	qb "github.com/riskibarqy/cuebook/internal/platform/querybuilder"
)

type MatchRepository struct {
	db *sqlx.DB
}

var matchSelectColumns = qb.Columns(matchTableModel{}, "")

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID string) (match.Match, bool, error) {
	query, args, err := qb.Select(matchSelectColumns...).From("matches").
		Where(qb.Eq("id", matchID)).
		ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build get match by id query: %w", err)
	}

	var row matchTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("get match by id: %w", err)
	}
	return matchFromRow(row), true, nil
}

func (r *MatchRepository) GetResult(ctx context.Context, matchID string) (match.Result, bool, error) {
	query, args, err := qb.Select("*").From("match_results").
		Where(qb.Eq("match_id", matchID)).
		ToSQL()
	if err != nil {
		return match.Result{}, false, fmt.Errorf("build get match result query: %w", err)
	}

	var row matchResultTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Result{}, false, nil
		}
		return match.Result{}, false, fmt.Errorf("get match result: %w", err)
	}
	return resultFromRow(row), true, nil
}

func (r *MatchRepository) ListResults(ctx context.Context, matchIDs []string) ([]match.Result, error) {
	if len(matchIDs) == 0 {
		return []match.Result{}, nil
	}

	query, args, err := qb.Select("*").From("match_results").
		Where(qb.In("match_id", stringSliceToAny(matchIDs))).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select match results query: %w", err)
	}

	var rows []matchResultTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select match results: %w", err)
	}

	out := make([]match.Result, 0, len(rows))
	for _, row := range rows {
		out = append(out, resultFromRow(row))
	}
	return out, nil
}

func (r *MatchRepository) ListBySeason(ctx context.Context, seasonID, weekID string) ([]match.Match, error) {
	conditions := []qb.Condition{qb.Eq("m.season_id", seasonID)}
	if weekID != "" {
		conditions = append(conditions, qb.Eq("m.week_id", weekID))
	}

	query, args, err := qb.Select(qb.Columns(matchTableModel{}, "m")...).
		From("matches m JOIN weeks w ON w.id = m.week_id").
		Where(conditions...).
		OrderBy("w.week_number", "m.scheduled_at NULLS LAST", "m.id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select matches by season query: %w", err)
	}

	return r.selectMatches(ctx, query, args, "select matches by season")
}

func (r *MatchRepository) ListByStatus(ctx context.Context, seasonIDs []string, status match.Status) ([]match.Match, error) {
	if len(seasonIDs) == 0 {
		return []match.Match{}, nil
	}

	query, args, err := qb.Select(matchSelectColumns...).From("matches").
		Where(
			qb.In("season_id", stringSliceToAny(seasonIDs)),
			qb.Eq("status", string(status)),
		).
		OrderBy("scheduled_at NULLS LAST", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select matches by status query: %w", err)
	}

	return r.selectMatches(ctx, query, args, "select matches by status")
}

// ListByPlayers returns matches involving any of the players. Upcoming lists
// (scheduled only) are ordered soonest first; anything else is most recent
// first.
func (r *MatchRepository) ListByPlayers(ctx context.Context, playerIDs []string, statuses []match.Status, limit int) ([]match.Match, error) {
	if len(playerIDs) == 0 {
		return []match.Match{}, nil
	}

	conditions := []qb.Condition{
		qb.Expr("(player_a_id = ANY(?) OR player_b_id = ANY(?))", pq.Array(playerIDs), pq.Array(playerIDs)),
	}
	if len(statuses) > 0 {
		values := make([]any, 0, len(statuses))
		for _, status := range statuses {
			values = append(values, string(status))
		}
		conditions = append(conditions, qb.In("status", values))
	}

	order := "scheduled_at DESC NULLS LAST"
	if upcomingOnly(statuses) {
		order = "scheduled_at ASC NULLS LAST"
	}

	query, args, err := qb.Select(matchSelectColumns...).From("matches").
		Where(conditions...).
		OrderBy(order, "id").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select matches by players query: %w", err)
	}

	return r.selectMatches(ctx, query, args, "select matches by players")
}

func (r *MatchRepository) SubmitResult(ctx context.Context, cmd match.SubmitCommand) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin submit result tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := updateMatchStatus(ctx, tx, cmd.Result.MatchID, match.StatusScheduled, match.StatusSubmitted); err != nil {
		return err
	}

	res := cmd.Result
	query, args, err := qb.InsertModel("match_results", matchResultInsertModel{
		MatchID:     res.MatchID,
		PointsA:     res.PointsA,
		PointsB:     res.PointsB,
		Innings:     intPointerToNull(res.Innings),
		HighRunA:    intPointerToNull(res.HighRunA),
		HighRunB:    intPointerToNull(res.HighRunB),
		Notes:       optionalString(res.Notes),
		SubmittedBy: res.SubmittedBy,
		SubmittedAt: res.SubmittedAt,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert match result query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: result already recorded for match_id=%s", match.ErrStatusConflict, res.MatchID)
		}
		return fmt.Errorf("insert match result match_id=%s: %w", res.MatchID, err)
	}

	if err := insertRecomputeTask(ctx, tx, cmd.Recompute); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit submit result tx: %w", err)
	}
	return nil
}

func (r *MatchRepository) Transition(ctx context.Context, cmd match.TransitionCommand) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin match transition tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := updateMatchStatus(ctx, tx, cmd.MatchID, cmd.From, cmd.To); err != nil {
		return err
	}

	if cmd.StampApproval || cmd.StampLock {
		at := cmd.At.UTC()
		builder := qb.Update("match_results")
		if cmd.StampApproval {
			builder.Set("approved_by", cmd.ActorUserID).Set("approved_at", at)
		}
		if cmd.StampLock {
			builder.Set("locked_by", cmd.ActorUserID).Set("locked_at", at)
		}
		query, args, err := builder.Where(qb.Eq("match_id", cmd.MatchID)).ToSQL()
		if err != nil {
			return fmt.Errorf("build stamp match result query: %w", err)
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("stamp match result match_id=%s: %w", cmd.MatchID, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("read stamp match result: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("%w: match_id=%s", match.ErrResultMissing, cmd.MatchID)
		}
	}

	if err := insertRecomputeTask(ctx, tx, cmd.Recompute); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit match transition tx: %w", err)
	}
	return nil
}

func (r *MatchRepository) selectMatches(ctx context.Context, query string, args []any, op string) ([]match.Match, error) {
	var rows []matchTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		out = append(out, matchFromRow(row))
	}
	return out, nil
}

// updateMatchStatus applies the status change only when the row is still in
// the expected status; zero affected rows means another writer won.
func updateMatchStatus(ctx context.Context, tx *sqlx.Tx, matchID string, from, to match.Status) error {
	query, args, err := qb.Update("matches").
		Set("status", string(to)).
		SetExpr("version", "version + 1").
		Set("updated_at", time.Now().UTC()).
		Where(
			qb.Eq("id", matchID),
			qb.Eq("status", string(from)),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update match status query: %w", err)
	}

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update match status match_id=%s: %w", matchID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read update match status result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: match_id=%s expected=%s", match.ErrStatusConflict, matchID, from)
	}
	return nil
}

func upcomingOnly(statuses []match.Status) bool {
	if len(statuses) == 0 {
		return false
	}
	for _, status := range statuses {
		if status != match.StatusScheduled {
			return false
		}
	}
	return true
}

func matchFromRow(row matchTableModel) match.Match {
	return match.Match{
		ID:          row.ID,
		SeasonID:    row.SeasonID,
		WeekID:      row.WeekID,
		PlayerAID:   row.PlayerAID,
		PlayerBID:   row.PlayerBID,
		VenueID:     row.VenueID.String,
		ScheduledAt: row.ScheduledAt,
		RaceTo:      row.RaceTo,
		Status:      match.Status(row.Status),
		Version:     row.Version,
	}
}

func resultFromRow(row matchResultTableModel) match.Result {
	return match.Result{
		MatchID:     row.MatchID,
		PointsA:     row.PointsA,
		PointsB:     row.PointsB,
		Innings:     nullInt64ToPointer(row.Innings),
		HighRunA:    nullInt64ToPointer(row.HighRunA),
		HighRunB:    nullInt64ToPointer(row.HighRunB),
		Notes:       row.Notes.String,
		SubmittedBy: row.SubmittedBy,
		SubmittedAt: row.SubmittedAt,
		ApprovedBy:  row.ApprovedBy.String,
		ApprovedAt:  row.ApprovedAt,
		LockedBy:    row.LockedBy.String,
		LockedAt:    row.LockedAt,
	}
}
