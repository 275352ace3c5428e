package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hiraku-lab/mentor/pkg/domain/model"
	"github.com/hiraku-lab/mentor/pkg/domain/types"
)

type interactionRepository struct {
	mu   sync.RWMutex
	logs map[types.UserID][]*model.InteractionLog
}

func newInteractionRepository() *interactionRepository {
	return &interactionRepository{
		logs: make(map[types.UserID][]*model.InteractionLog),
	}
}

func copyInteraction(l *model.InteractionLog) *model.InteractionLog {
	copied := *l
	if l.Messages != nil {
		copied.Messages = make([]model.PromptMessage, len(l.Messages))
		copy(copied.Messages, l.Messages)
	}
	return &copied
}

func (r *interactionRepository) Put(ctx context.Context, log *model.InteractionLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := copyInteraction(log)
	if stored.ID == "" {
		stored.ID = model.NewInteractionID()
		log.ID = stored.ID
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
		log.CreatedAt = stored.CreatedAt
	}

	r.logs[stored.UserID] = append(r.logs[stored.UserID], stored)
	return nil
}

func (r *interactionRepository) ListByConversation(ctx context.Context, userID types.UserID, convID types.ConversationID) ([]*model.InteractionLog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.InteractionLog
	for _, l := range r.logs[userID] {
		if l.ConversationID == convID {
			result = append(result, copyInteraction(l))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Iteration < result[j].Iteration
	})
	return result, nil
}
