package interfaces

import (
	"context"

	"github.com/hiraku-lab/mentor/pkg/domain/model"
	"github.com/hiraku-lab/mentor/pkg/domain/types"
)

// MemoryRepository defines the interface for conversational memory persistence
type MemoryRepository interface {
	// Put appends a new memory entry. Entries are immutable once written.
	Put(ctx context.Context, entry *model.MemoryEntry) error

	// FindNearest performs vector similarity search using cosine distance
	// within the given user's partition only. Returns up to limit entries
	// ordered by descending similarity.
	FindNearest(ctx context.Context, userID types.UserID, embedding []float32, limit int) ([]*model.ScoredMemory, error)

	// ListRecent retrieves the most recent entries for the user,
	// newest first
	ListRecent(ctx context.Context, userID types.UserID, limit int) ([]*model.MemoryEntry, error)
}
