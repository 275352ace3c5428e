package memory

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/hiraku-lab/mentor/pkg/domain/model"
	"github.com/hiraku-lab/mentor/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type memoryStoreRepository struct {
	mu      sync.RWMutex
	entries map[types.UserID][]*model.MemoryEntry
}

func newMemoryStoreRepository() *memoryStoreRepository {
	return &memoryStoreRepository{
		entries: make(map[types.UserID][]*model.MemoryEntry),
	}
}

func copyMemoryEntry(e *model.MemoryEntry) *model.MemoryEntry {
	copied := *e
	if e.Embedding != nil {
		copied.Embedding = make([]float32, len(e.Embedding))
		copy(copied.Embedding, e.Embedding)
	}
	return &copied
}

func (r *memoryStoreRepository) Put(ctx context.Context, entry *model.MemoryEntry) error {
	if len(entry.Embedding) != model.EmbeddingDimension {
		return goerr.Wrap(types.ErrInvalidEmbedding, "unexpected embedding size",
			goerr.V("got", len(entry.Embedding)),
			goerr.V("want", model.EmbeddingDimension))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := copyMemoryEntry(entry)
	if stored.ID == "" {
		stored.ID = model.NewMemoryEntryID()
		entry.ID = stored.ID
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
		entry.CreatedAt = stored.CreatedAt
	}

	r.entries[stored.UserID] = append(r.entries[stored.UserID], stored)
	return nil
}

func (r *memoryStoreRepository) FindNearest(ctx context.Context, userID types.UserID, embedding []float32, limit int) ([]*model.ScoredMemory, error) {
	if len(embedding) != model.EmbeddingDimension {
		return nil, goerr.Wrap(types.ErrInvalidEmbedding, "unexpected query embedding size",
			goerr.V("got", len(embedding)),
			goerr.V("want", model.EmbeddingDimension))
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	bucket := r.entries[userID]
	candidates := make([]*model.ScoredMemory, 0, len(bucket))
	for _, e := range bucket {
		candidates = append(candidates, &model.ScoredMemory{
			Entry:      copyMemoryEntry(e),
			Similarity: cosineSimilarity(embedding, e.Embedding),
		})
	}

	sortScoredMemories(candidates)

	if limit > 0 && limit < len(candidates) {
		candidates = candidates[:limit]
	}
	return candidates, nil
}

// sortScoredMemories orders by similarity descending, ties broken by
// CreatedAt descending so equally relevant memories surface newest first
func sortScoredMemories(scored []*model.ScoredMemory) {
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Similarity != scored[j].Similarity {
			return scored[i].Similarity > scored[j].Similarity
		}
		return scored[i].Entry.CreatedAt.After(scored[j].Entry.CreatedAt)
	})
}

func (r *memoryStoreRepository) ListRecent(ctx context.Context, userID types.UserID, limit int) ([]*model.MemoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bucket := r.entries[userID]
	result := make([]*model.MemoryEntry, 0, len(bucket))
	for _, e := range bucket {
		result = append(result, copyMemoryEntry(e))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}

	return dot / denom
}
