package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/cuebook/internal/domain/audit"
	"github.com/riskibarqy/cuebook/internal/domain/user"
	"github.com/riskibarqy/cuebook/internal/platform/id"
)

// AuditRecorder appends audit entries for actions that already committed.
type AuditRecorder struct {
	repo  audit.Repository
	idGen id.Generator
	now   func() time.Time
}

func NewAuditRecorder(repo audit.Repository, idGen id.Generator) *AuditRecorder {
	return &AuditRecorder{
		repo:  repo,
		idGen: idGen,
		now:   time.Now,
	}
}

type auditEvent struct {
	LeagueID   string
	EntityType audit.EntityType
	EntityID   string
	Action     audit.Action
	Payload    map[string]any
}

func (r *AuditRecorder) Record(ctx context.Context, principal user.Principal, event auditEvent) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.AuditRecorder.Record")
	defer span.End()

	entryID, err := r.idGen.NewID()
	if err != nil {
		return fmt.Errorf("generate audit entry id: %w", err)
	}

	entry := audit.Entry{
		ID:          entryID,
		LeagueID:    event.LeagueID,
		ActorUserID: principal.UserID,
		EntityType:  event.EntityType,
		EntityID:    event.EntityID,
		Action:      event.Action,
		Payload:     event.Payload,
		CreatedAt:   r.now().UTC(),
	}
	if err := r.repo.Append(ctx, entry); err != nil {
		return fmt.Errorf("append audit entry action=%s entity=%s: %w", event.Action, event.EntityID, err)
	}

	return nil
}
