package interfaces

import (
	"context"

	"github.com/hiraku-lab/mentor/pkg/domain/model"
	"github.com/hiraku-lab/mentor/pkg/domain/types"
)

// TaskBriefRepository defines the interface for active task brief persistence.
// Each user has at most one active brief; setting a new one replaces the old
// brief entirely.
type TaskBriefRepository interface {
	// Put upserts the user's active task brief
	Put(ctx context.Context, brief *model.TaskBrief) error

	// Get retrieves the user's active task brief. Returns nil without
	// error when no brief is active.
	Get(ctx context.Context, userID types.UserID) (*model.TaskBrief, error)

	// Clear removes the user's active task brief. Clearing an absent
	// brief is not an error.
	Clear(ctx context.Context, userID types.UserID) error
}
