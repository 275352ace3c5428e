package interfaces

import (
	"context"

	"github.com/hiraku-lab/mentor/pkg/domain/model"
	"github.com/hiraku-lab/mentor/pkg/domain/types"
)

// InteractionRepository defines the interface for model-call audit logs
type InteractionRepository interface {
	// Put appends one interaction log entry
	Put(ctx context.Context, log *model.InteractionLog) error

	// ListByConversation retrieves all entries of one conversation in
	// ascending iteration order
	ListByConversation(ctx context.Context, userID types.UserID, convID types.ConversationID) ([]*model.InteractionLog, error)
}
