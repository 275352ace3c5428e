package interfaces

import (
	"context"

	"github.com/hiraku-lab/mentor/pkg/domain/model"
	"github.com/hiraku-lab/mentor/pkg/domain/types"
)

// FocusRepository defines the interface for current-focus persistence.
// Each user has at most one focus row, replaced on every write.
type FocusRepository interface {
	// Put upserts the user's current focus
	Put(ctx context.Context, focus *model.Focus) error

	// Get retrieves the user's current focus. Returns nil without error
	// when the user has no focus set.
	Get(ctx context.Context, userID types.UserID) (*model.Focus, error)

	// Clear removes the user's current focus. Clearing an absent focus
	// is not an error.
	Clear(ctx context.Context, userID types.UserID) error
}
