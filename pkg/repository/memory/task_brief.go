package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hiraku-lab/mentor/pkg/domain/model"
	"github.com/hiraku-lab/mentor/pkg/domain/types"
)

type taskBriefRepository struct {
	mu     sync.RWMutex
	briefs map[types.UserID]*model.TaskBrief
}

func newTaskBriefRepository() *taskBriefRepository {
	return &taskBriefRepository{
		briefs: make(map[types.UserID]*model.TaskBrief),
	}
}

func (r *taskBriefRepository) Put(ctx context.Context, brief *model.TaskBrief) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	stored := *brief
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
		brief.CreatedAt = now
	}
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = now
		brief.UpdatedAt = now
	}
	r.briefs[brief.UserID] = &stored
	return nil
}

func (r *taskBriefRepository) Get(ctx context.Context, userID types.UserID) (*model.TaskBrief, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	brief, exists := r.briefs[userID]
	if !exists {
		return nil, nil
	}
	copied := *brief
	return &copied, nil
}

func (r *taskBriefRepository) Clear(ctx context.Context, userID types.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.briefs, userID)
	return nil
}
