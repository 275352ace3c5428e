package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hiraku-lab/mentor/pkg/domain/model"
	"github.com/hiraku-lab/mentor/pkg/domain/types"
)

type focusRepository struct {
	mu      sync.RWMutex
	focuses map[types.UserID]*model.Focus
}

func newFocusRepository() *focusRepository {
	return &focusRepository{
		focuses: make(map[types.UserID]*model.Focus),
	}
}

func (r *focusRepository) Put(ctx context.Context, focus *model.Focus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *focus
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = time.Now().UTC()
		focus.UpdatedAt = stored.UpdatedAt
	}
	r.focuses[focus.UserID] = &stored
	return nil
}

func (r *focusRepository) Get(ctx context.Context, userID types.UserID) (*model.Focus, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	focus, exists := r.focuses[userID]
	if !exists {
		return nil, nil
	}
	copied := *focus
	return &copied, nil
}

func (r *focusRepository) Clear(ctx context.Context, userID types.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.focuses, userID)
	return nil
}
