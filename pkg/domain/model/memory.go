package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/hiraku-lab/mentor/pkg/domain/types"
)

// EmbeddingDimension is the fixed dimension of memory embeddings.
// It must match the output of the embedding generator; entries with a
// different dimension are a correctness bug, not a degradation.
const EmbeddingDimension = 768

// MemoryEntryID is a UUID-based identifier for MemoryEntry
type MemoryEntryID string

// NewMemoryEntryID generates a new UUID v4 MemoryEntryID
func NewMemoryEntryID() MemoryEntryID {
	return MemoryEntryID(uuid.New().String())
}

// MemoryEntry is one stored message (user or assistant) with its embedding.
// Entries are appended on every exchanged message and never mutated.
// Retrieval ranks by cosine similarity strictly within one user's partition.
type MemoryEntry struct {
	ID        MemoryEntryID
	UserID    types.UserID
	Role      types.Role
	Content   string
	Embedding []float32 // EmbeddingDimension values
	CreatedAt time.Time
}

// ScoredMemory pairs a memory entry with its similarity to a query embedding
type ScoredMemory struct {
	Entry      *MemoryEntry
	Similarity float64
}
