package firestore

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/hiraku-lab/mentor/pkg/domain/model"
	"github.com/hiraku-lab/mentor/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
)

// memoryEntryDoc is the Firestore document representation of
// model.MemoryEntry. Embedding is stored as firestore.Vector32 for
// FindNearest vector search.
type memoryEntryDoc struct {
	ID        model.MemoryEntryID `firestore:"ID"`
	UserID    types.UserID        `firestore:"UserID"`
	Role      types.Role          `firestore:"Role"`
	Content   string              `firestore:"Content"`
	Embedding firestore.Vector32  `firestore:"Embedding"`
	CreatedAt time.Time           `firestore:"CreatedAt"`
}

func toMemoryEntryDoc(e *model.MemoryEntry) *memoryEntryDoc {
	return &memoryEntryDoc{
		ID:        e.ID,
		UserID:    e.UserID,
		Role:      e.Role,
		Content:   e.Content,
		Embedding: firestore.Vector32(e.Embedding),
		CreatedAt: e.CreatedAt,
	}
}

func fromMemoryEntryDoc(d *memoryEntryDoc) *model.MemoryEntry {
	return &model.MemoryEntry{
		ID:        d.ID,
		UserID:    d.UserID,
		Role:      d.Role,
		Content:   d.Content,
		Embedding: []float32(d.Embedding),
		CreatedAt: d.CreatedAt,
	}
}

type memoryStoreRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newMemoryStoreRepository(client *firestore.Client) *memoryStoreRepository {
	return &memoryStoreRepository{client: client}
}

func (r *memoryStoreRepository) memoriesCollection(userID types.UserID) *firestore.CollectionRef {
	return userDoc(r.client, r.collectionPrefix, string(userID)).Collection("memories")
}

func (r *memoryStoreRepository) Put(ctx context.Context, entry *model.MemoryEntry) error {
	if len(entry.Embedding) != model.EmbeddingDimension {
		return goerr.Wrap(types.ErrInvalidEmbedding, "unexpected embedding size",
			goerr.V("got", len(entry.Embedding)),
			goerr.V("want", model.EmbeddingDimension))
	}

	if entry.ID == "" {
		entry.ID = model.NewMemoryEntryID()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	docRef := r.memoriesCollection(entry.UserID).Doc(string(entry.ID))
	if _, err := docRef.Set(ctx, toMemoryEntryDoc(entry)); err != nil {
		return goerr.Wrap(err, "failed to put memory entry", goerr.V("id", entry.ID))
	}
	return nil
}

func (r *memoryStoreRepository) FindNearest(ctx context.Context, userID types.UserID, embedding []float32, limit int) ([]*model.ScoredMemory, error) {
	if len(embedding) != model.EmbeddingDimension {
		return nil, goerr.Wrap(types.ErrInvalidEmbedding, "unexpected query embedding size",
			goerr.V("got", len(embedding)),
			goerr.V("want", model.EmbeddingDimension))
	}

	vq := r.memoriesCollection(userID).FindNearest(
		"Embedding",
		firestore.Vector32(embedding),
		limit,
		firestore.DistanceMeasureCosine,
		&firestore.FindNearestOptions{
			DistanceResultField: "vector_distance",
		},
	)

	iter := vq.Documents(ctx)
	defer iter.Stop()

	result := make([]*model.ScoredMemory, 0, limit)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate memory vector search results")
		}

		var d memoryEntryDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal memory entry from vector search")
		}

		// Cosine distance is 1 - similarity
		similarity := 0.0
		if v, err := doc.DataAt("vector_distance"); err == nil {
			if distance, ok := v.(float64); ok {
				similarity = 1 - distance
			}
		}

		result = append(result, &model.ScoredMemory{
			Entry:      fromMemoryEntryDoc(&d),
			Similarity: similarity,
		})
	}

	// Server ordering is by distance only; re-sort so equal-similarity
	// entries come back newest first
	sort.Slice(result, func(i, j int) bool {
		if result[i].Similarity != result[j].Similarity {
			return result[i].Similarity > result[j].Similarity
		}
		return result[i].Entry.CreatedAt.After(result[j].Entry.CreatedAt)
	})
	return result, nil
}

func (r *memoryStoreRepository) ListRecent(ctx context.Context, userID types.UserID, limit int) ([]*model.MemoryEntry, error) {
	q := r.memoriesCollection(userID).OrderBy("CreatedAt", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	result := make([]*model.MemoryEntry, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate memory entries", goerr.V("userID", userID))
		}

		var d memoryEntryDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal memory entry")
		}
		result = append(result, fromMemoryEntryDoc(&d))
	}
	return result, nil
}
