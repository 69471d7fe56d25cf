package jobscheduler

import "context"

type Repository interface {
	UpsertEvent(ctx context.Context, event DispatchEvent) error
	GetDispatch(ctx context.Context, dispatchID string) (Dispatch, bool, error)
}
