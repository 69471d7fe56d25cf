package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/cuebook/internal/domain/standing"
	qb "github.com/riskibarqy/cuebook/internal/platform/querybuilder"
)

const recomputeTasksTable = "standing_recompute_tasks"

var recomputeTaskColumns = qb.Columns(recomputeTaskTableModel{}, "")

type RecomputeTaskRepository struct {
	db *sqlx.DB
}

func NewRecomputeTaskRepository(db *sqlx.DB) *RecomputeTaskRepository {
	return &RecomputeTaskRepository{db: db}
}

func (r *RecomputeTaskRepository) ClaimDue(ctx context.Context, now, leaseUntil time.Time, limit int) ([]standing.RecomputeTask, error) {
	if limit <= 0 {
		return []standing.RecomputeTask{}, nil
	}

	// A running task whose lease expired is due again, so a crashed worker
	// never strands it. SKIP LOCKED keeps concurrent drains disjoint.
	due := qb.Select("id").From(recomputeTasksTable).
		Where(
			qb.In("status", []any{string(standing.TaskPending), string(standing.TaskRunning)}),
			qb.Lte("available_at", now.UTC()),
		).
		OrderBy("available_at", "created_at").
		Limit(limit).
		Suffix("FOR UPDATE SKIP LOCKED")

	query, args, err := qb.Update(recomputeTasksTable).
		Set("status", string(standing.TaskRunning)).
		SetExpr("attempts", "attempts + 1").
		Set("available_at", leaseUntil.UTC()).
		Set("updated_at", now.UTC()).
		Where(qb.InQuery("id", due)).
		Returning(recomputeTaskColumns...).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build claim recompute tasks query: %w", err)
	}

	var rows []recomputeTaskTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("claim recompute tasks: %w", err)
	}

	out := make([]standing.RecomputeTask, 0, len(rows))
	for _, row := range rows {
		out = append(out, standing.RecomputeTask{
			ID:          row.ID,
			SeasonID:    row.SeasonID,
			Reason:      row.Reason,
			Status:      standing.TaskStatus(row.Status),
			Attempts:    row.Attempts,
			LastError:   row.LastError.String,
			AvailableAt: row.AvailableAt,
			CreatedAt:   row.CreatedAt,
			CompletedAt: row.CompletedAt,
		})
	}
	return out, nil
}

func (r *RecomputeTaskRepository) MarkDone(ctx context.Context, taskIDs []string, completedAt time.Time) error {
	if len(taskIDs) == 0 {
		return nil
	}

	query, args, err := qb.Update(recomputeTasksTable).
		Set("status", string(standing.TaskDone)).
		Set("completed_at", completedAt.UTC()).
		Set("last_error", nil).
		Set("updated_at", completedAt.UTC()).
		Where(qb.In("id", stringSliceToAny(taskIDs))).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build mark recompute tasks done query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark recompute tasks done: %w", err)
	}
	return nil
}

func (r *RecomputeTaskRepository) MarkFailed(ctx context.Context, taskID, lastError string, retryAt time.Time, giveUp bool) error {
	status := standing.TaskPending
	if giveUp {
		status = standing.TaskFailed
	}

	query, args, err := qb.Update(recomputeTasksTable).
		Set("status", string(status)).
		Set("last_error", optionalString(lastError)).
		Set("available_at", retryAt.UTC()).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", taskID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build mark recompute task failed query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark recompute task failed id=%s: %w", taskID, err)
	}
	return nil
}

func (r *RecomputeTaskRepository) CountPending(ctx context.Context) (int, error) {
	query, args, err := qb.Select("COUNT(1)").From(recomputeTasksTable).
		Where(qb.In("status", []any{string(standing.TaskPending), string(standing.TaskRunning)})).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count pending recompute tasks query: %w", err)
	}

	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count pending recompute tasks: %w", err)
	}
	return count, nil
}

func insertRecomputeTask(ctx context.Context, tx *sqlx.Tx, task standing.RecomputeTask) error {
	if task.ID == "" {
		return nil
	}

	status := task.Status
	if status == "" {
		status = standing.TaskPending
	}
	query, args, err := qb.InsertModel(recomputeTasksTable, recomputeTaskInsertModel{
		ID:          task.ID,
		SeasonID:    task.SeasonID,
		Reason:      task.Reason,
		Status:      string(status),
		Attempts:    task.Attempts,
		AvailableAt: task.AvailableAt.UTC(),
		CreatedAt:   task.CreatedAt.UTC(),
	}, "")
	if err != nil {
		return fmt.Errorf("build insert recompute task query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert recompute task season_id=%s: %w", task.SeasonID, err)
	}
	return nil
}
