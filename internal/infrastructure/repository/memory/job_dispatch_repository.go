package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/riskibarqy/cuebook/internal/domain/jobscheduler"
)

type JobDispatchRepository struct {
	mu         sync.Mutex
	dispatches map[string]jobscheduler.Dispatch
}

func NewJobDispatchRepository() *JobDispatchRepository {
	return &JobDispatchRepository{dispatches: make(map[string]jobscheduler.Dispatch)}
}

func (r *JobDispatchRepository) UpsertEvent(_ context.Context, event jobscheduler.DispatchEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}
	dispatchID := strings.TrimSpace(event.DispatchID)

	r.mu.Lock()
	defer r.mu.Unlock()

	r.dispatches[dispatchID] = r.dispatches[dispatchID].Apply(event)
	return nil
}

func (r *JobDispatchRepository) GetDispatch(_ context.Context, dispatchID string) (jobscheduler.Dispatch, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.dispatches[strings.TrimSpace(dispatchID)]
	return d, ok, nil
}
