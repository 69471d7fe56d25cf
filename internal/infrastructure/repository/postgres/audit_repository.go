package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/cuebook/internal/domain/audit"
	qb "github.com/riskibarqy/cuebook/internal/platform/querybuilder"
)

type AuditRepository struct {
	db *sqlx.DB
}

func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Append(ctx context.Context, entry audit.Entry) error {
	payload, err := marshalPayload(entry.Payload)
	if err != nil {
		return fmt.Errorf("marshal audit payload: %w", err)
	}

	query, args, err := qb.InsertModel("audit_log", auditInsertModel{
		ID:          entry.ID,
		LeagueID:    entry.LeagueID,
		ActorUserID: entry.ActorUserID,
		EntityType:  string(entry.EntityType),
		EntityID:    entry.EntityID,
		Action:      string(entry.Action),
		Payload:     payload,
		CreatedAt:   entry.CreatedAt.UTC(),
	}, "")
	if err != nil {
		return fmt.Errorf("build insert audit entry query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert audit entry action=%s entity_id=%s: %w", entry.Action, entry.EntityID, err)
	}
	return nil
}

func (r *AuditRepository) ListByEntity(ctx context.Context, entityType audit.EntityType, entityID string) ([]audit.Entry, error) {
	query, args, err := qb.Select("*").From("audit_log").
		Where(
			qb.Eq("entity_type", string(entityType)),
			qb.Eq("entity_id", entityID),
		).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select audit entries query: %w", err)
	}

	var rows []auditTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select audit entries: %w", err)
	}

	out := make([]audit.Entry, 0, len(rows))
	for _, row := range rows {
		out = append(out, audit.Entry{
			ID:          row.ID,
			LeagueID:    row.LeagueID,
			ActorUserID: row.ActorUserID,
			EntityType:  audit.EntityType(row.EntityType),
			EntityID:    row.EntityID,
			Action:      audit.Action(row.Action),
			Payload:     unmarshalPayload(row.Payload),
			CreatedAt:   row.CreatedAt,
		})
	}
	return out, nil
}
