package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/hiraku-lab/mentor/pkg/domain/interfaces"
	"github.com/hiraku-lab/mentor/pkg/domain/model"
	"github.com/hiraku-lab/mentor/pkg/domain/types"
	"github.com/hiraku-lab/mentor/pkg/repository/memory"
	"github.com/m-mizutani/gt"
)

func testEmbedding(weights map[int]float32) []float32 {
	emb := make([]float32, model.EmbeddingDimension)
	for i, w := range weights {
		emb[i] = w
	}
	return emb
}

func runMemoryRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Put assigns ID and preserves embedding", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		userID := newTestUserID()

		embedding := make([]float32, model.EmbeddingDimension)
		for i := range embedding {
			embedding[i] = float32(i) / float32(model.EmbeddingDimension)
		}

		entry := &model.MemoryEntry{
			UserID:    userID,
			Role:      types.RoleUser,
			Content:   "the venue deposit is 50000 yen",
			Embedding: embedding,
		}
		gt.NoError(t, repo.Memory().Put(ctx, entry)).Required()
		gt.String(t, string(entry.ID)).NotEqual("")

		entries, err := repo.Memory().ListRecent(ctx, userID, 10)
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(1)
		gt.Array(t, entries[0].Embedding).Length(model.EmbeddingDimension)
		expectedLast := float32(model.EmbeddingDimension-1) / float32(model.EmbeddingDimension)
		gt.Value(t, entries[0].Embedding[model.EmbeddingDimension-1]).Equal(expectedLast)
	})

	t.Run("Put rejects wrong embedding dimension", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		entry := &model.MemoryEntry{
			UserID:    newTestUserID(),
			Role:      types.RoleUser,
			Content:   "bad embedding",
			Embedding: []float32{0.1, 0.2, 0.3},
		}
		err := repo.Memory().Put(ctx, entry)
		gt.Value(t, err).NotNil()
		gt.Bool(t, errors.Is(err, types.ErrInvalidEmbedding)).True()
	})

	t.Run("FindNearest ranks by cosine similarity", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		userID := newTestUserID()

		gt.NoError(t, repo.Memory().Put(ctx, &model.MemoryEntry{
			UserID:    userID,
			Role:      types.RoleUser,
			Content:   "most similar",
			Embedding: testEmbedding(map[int]float32{0: 1.0}),
		})).Required()

		gt.NoError(t, repo.Memory().Put(ctx, &model.MemoryEntry{
			UserID:    userID,
			Role:      types.RoleAssistant,
			Content:   "somewhat similar",
			Embedding: testEmbedding(map[int]float32{0: 0.9, 1: 0.1}),
		})).Required()

		gt.NoError(t, repo.Memory().Put(ctx, &model.MemoryEntry{
			UserID:    userID,
			Role:      types.RoleUser,
			Content:   "dissimilar",
			Embedding: testEmbedding(map[int]float32{1: 0.9, 2: 0.1}),
		})).Required()

		results, err := repo.Memory().FindNearest(ctx, userID, testEmbedding(map[int]float32{0: 1.0}), 2)
		gt.NoError(t, err).Required()
		gt.Array(t, results).Length(2)
		gt.Value(t, results[0].Entry.Content).Equal("most similar")
		gt.Value(t, results[1].Entry.Content).Equal("somewhat similar")
		gt.Bool(t, results[0].Similarity >= results[1].Similarity).True()
	})

	t.Run("FindNearest breaks similarity ties by recency", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		userID := newTestUserID()

		emb := testEmbedding(map[int]float32{0: 1.0})
		now := time.Now().UTC()

		gt.NoError(t, repo.Memory().Put(ctx, &model.MemoryEntry{
			UserID:    userID,
			Role:      types.RoleUser,
			Content:   "older",
			Embedding: emb,
			CreatedAt: now.Add(-time.Hour),
		})).Required()

		gt.NoError(t, repo.Memory().Put(ctx, &model.MemoryEntry{
			UserID:    userID,
			Role:      types.RoleAssistant,
			Content:   "newer",
			Embedding: emb,
			CreatedAt: now,
		})).Required()

		results, err := repo.Memory().FindNearest(ctx, userID, emb, 2)
		gt.NoError(t, err).Required()
		gt.Array(t, results).Length(2)
		gt.Value(t, results[0].Entry.Content).Equal("newer")
		gt.Value(t, results[1].Entry.Content).Equal("older")
	})

	t.Run("FindNearest never crosses user partitions", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		alice := newTestUserID()
		bob := newTestUserID()

		emb := testEmbedding(map[int]float32{0: 1.0})
		gt.NoError(t, repo.Memory().Put(ctx, &model.MemoryEntry{
			UserID:    alice,
			Role:      types.RoleUser,
			Content:   "alice's private note",
			Embedding: emb,
		})).Required()

		results, err := repo.Memory().FindNearest(ctx, bob, emb, 10)
		gt.NoError(t, err).Required()
		gt.Array(t, results).Length(0)
	})

	t.Run("FindNearest respects limit", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		userID := newTestUserID()

		for i := 0; i < 5; i++ {
			gt.NoError(t, repo.Memory().Put(ctx, &model.MemoryEntry{
				UserID:    userID,
				Role:      types.RoleUser,
				Content:   fmt.Sprintf("note %d", i),
				Embedding: testEmbedding(map[int]float32{0: float32(i) * 0.1, 1: 0.5}),
			})).Required()
		}

		results, err := repo.Memory().FindNearest(ctx, userID, testEmbedding(map[int]float32{0: 0.4, 1: 0.5}), 3)
		gt.NoError(t, err).Required()
		gt.Array(t, results).Length(3)
	})

	t.Run("ListRecent returns newest entries first", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		userID := newTestUserID()

		first := &model.MemoryEntry{
			UserID:    userID,
			Role:      types.RoleUser,
			Content:   "older",
			Embedding: testEmbedding(map[int]float32{0: 1.0}),
		}
		gt.NoError(t, repo.Memory().Put(ctx, first)).Required()

		time.Sleep(10 * time.Millisecond)

		second := &model.MemoryEntry{
			UserID:    userID,
			Role:      types.RoleAssistant,
			Content:   "newer",
			Embedding: testEmbedding(map[int]float32{1: 1.0}),
		}
		gt.NoError(t, repo.Memory().Put(ctx, second)).Required()

		entries, err := repo.Memory().ListRecent(ctx, userID, 1)
		gt.NoError(t, err).Required()
		gt.Array(t, entries).Length(1)
		gt.Value(t, entries[0].Content).Equal("newer")
	})
}

func TestMemoryMemoryRepository(t *testing.T) {
	runMemoryRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestFirestoreMemoryRepository(t *testing.T) {
	runMemoryRepositoryTest(t, newFirestoreRepository)
}
