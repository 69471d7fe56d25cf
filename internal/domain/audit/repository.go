package audit

import "context"

// Repository is append-only; entries are never updated or removed.
type Repository interface {
	Append(ctx context.Context, entry Entry) error
	ListByEntity(ctx context.Context, entityType EntityType, entityID string) ([]Entry, error)
}
