package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/cuebook/internal/domain/jobscheduler"
	qb "github.com/riskibarqy/cuebook/internal/platform/querybuilder"
)

var jobDispatchColumns = qb.Columns(jobDispatchTableModel{}, "")

const upsertJobDispatchSuffix = `ON CONFLICT (dispatch_id) WHERE deleted_at IS NULL
DO UPDATE SET
    job_name = EXCLUDED.job_name,
    job_path = EXCLUDED.job_path,
    season_id = EXCLUDED.season_id,
    payload = EXCLUDED.payload,
    status = EXCLUDED.status,
    sent_at = EXCLUDED.sent_at,
    completed_at = EXCLUDED.completed_at,
    failed_at = EXCLUDED.failed_at,
    last_error = EXCLUDED.last_error,
    trace_id = EXCLUDED.trace_id,
    span_id = EXCLUDED.span_id,
    updated_at = NOW()`

type JobDispatchRepository struct {
	db *sqlx.DB
}

func NewJobDispatchRepository(db *sqlx.DB) *JobDispatchRepository {
	return &JobDispatchRepository{db: db}
}

// UpsertEvent folds event into the stored dispatch row under a row lock so
// the callback and a late publish record cannot overwrite each other.
func (r *JobDispatchRepository) UpsertEvent(ctx context.Context, event jobscheduler.DispatchEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}
	dispatchID := strings.TrimSpace(event.DispatchID)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin job dispatch tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	current, _, err := selectDispatch(ctx, tx, dispatchID, true)
	if err != nil {
		return err
	}
	next := current.Apply(event)

	model, err := jobDispatchModelFromDomain(next, event)
	if err != nil {
		return err
	}
	query, args, err := qb.InsertModel("job_dispatches", model, upsertJobDispatchSuffix)
	if err != nil {
		return fmt.Errorf("build upsert job dispatch query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert job dispatch dispatch_id=%s status=%s: %w", dispatchID, event.Status, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit job dispatch tx: %w", err)
	}
	return nil
}

func (r *JobDispatchRepository) GetDispatch(ctx context.Context, dispatchID string) (jobscheduler.Dispatch, bool, error) {
	return selectDispatch(ctx, r.db, strings.TrimSpace(dispatchID), false)
}

func selectDispatch(ctx context.Context, q sqlx.QueryerContext, dispatchID string, forUpdate bool) (jobscheduler.Dispatch, bool, error) {
	builder := qb.Select(jobDispatchColumns...).From("job_dispatches").
		Where(qb.Eq("dispatch_id", dispatchID), qb.IsNull("deleted_at"))
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return jobscheduler.Dispatch{}, false, fmt.Errorf("build get job dispatch query: %w", err)
	}

	var row jobDispatchTableModel
	if err := sqlx.GetContext(ctx, q, &row, query, args...); err != nil {
		if isNotFound(err) {
			return jobscheduler.Dispatch{}, false, nil
		}
		return jobscheduler.Dispatch{}, false, fmt.Errorf("get job dispatch dispatch_id=%s: %w", dispatchID, err)
	}
	return row.toDomain(), true, nil
}

func jobDispatchModelFromDomain(d jobscheduler.Dispatch, event jobscheduler.DispatchEvent) (jobDispatchTableModel, error) {
	payload, err := marshalPayload(d.Payload)
	if err != nil {
		return jobDispatchTableModel{}, fmt.Errorf("marshal job dispatch payload: %w", err)
	}

	jobName := d.JobName
	if jobName == "" {
		jobName = "unknown"
	}
	jobPath := d.JobPath
	if jobPath == "" {
		jobPath = "/unknown"
	}
	seasonID := d.SeasonID
	if seasonID == "" {
		seasonID = "all"
	}

	return jobDispatchTableModel{
		DispatchID:  d.DispatchID,
		JobName:     jobName,
		JobPath:     jobPath,
		SeasonID:    seasonID,
		Payload:     payload,
		Status:      string(d.Status),
		SentAt:      d.SentAt,
		CompletedAt: d.CompletedAt,
		FailedAt:    d.FailedAt,
		LastError:   optionalString(d.LastError),
		TraceID:     optionalString(event.TraceID),
		SpanID:      optionalString(event.SpanID),
	}, nil
}
