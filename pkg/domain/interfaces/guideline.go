package interfaces

import (
	"context"

	"github.com/hiraku-lab/mentor/pkg/domain/model"
	"github.com/hiraku-lab/mentor/pkg/domain/types"
)

// GuidelineRepository defines the interface for guideline document persistence.
// The document is append-only: each change creates a new version and old
// versions are never modified or removed.
type GuidelineRepository interface {
	// Latest retrieves the current (highest version) guideline document.
	// Returns types.ErrGuidelineNotFound when no version exists yet.
	Latest(ctx context.Context, userID types.UserID) (*model.GuidelineDocument, error)

	// Get retrieves a specific version of the guideline document
	Get(ctx context.Context, userID types.UserID, version int) (*model.GuidelineDocument, error)

	// History retrieves all versions in ascending version order
	History(ctx context.Context, userID types.UserID) ([]*model.GuidelineDocument, error)

	// Commit writes a new version on top of baseVersion. If another writer
	// committed since baseVersion was read, Commit fails with
	// types.ErrVersionConflict and writes nothing. baseVersion 0 creates
	// version 1 and requires that no version exists.
	Commit(ctx context.Context, userID types.UserID, content, diff string, baseVersion int) (*model.GuidelineDocument, error)
}
