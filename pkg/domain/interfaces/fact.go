package interfaces

import (
	"context"

	"github.com/hiraku-lab/mentor/pkg/domain/model"
	"github.com/hiraku-lab/mentor/pkg/domain/types"
)

// FactRepository defines the interface for Fact data persistence
type FactRepository interface {
	// Put creates a new fact for the user
	Put(ctx context.Context, userID types.UserID, fact *model.Fact) error

	// Get retrieves a fact by ID
	Get(ctx context.Context, userID types.UserID, id model.FactID) (*model.Fact, error)

	// Update replaces the content of an existing fact and bumps UpdatedAt
	Update(ctx context.Context, userID types.UserID, id model.FactID, content string) (*model.Fact, error)

	// List retrieves all facts for the user, newest UpdatedAt first
	List(ctx context.Context, userID types.UserID) ([]*model.Fact, error)

	// Search retrieves facts whose content matches the query
	// (case-insensitive substring match), newest UpdatedAt first
	Search(ctx context.Context, userID types.UserID, query string, limit int) ([]*model.Fact, error)
}
