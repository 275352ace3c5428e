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
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type factDoc struct {
	ID        model.FactID `firestore:"ID"`
	Content   string       `firestore:"Content"`
	CreatedAt time.Time    `firestore:"CreatedAt"`
	UpdatedAt time.Time    `firestore:"UpdatedAt"`
}

func toFactDoc(f *model.Fact) *factDoc {
	return &factDoc{
		ID:        f.ID,
		Content:   f.Content,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

func fromFactDoc(d *factDoc) *model.Fact {
	return &model.Fact{
		ID:        d.ID,
		Content:   d.Content,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type factRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newFactRepository(client *firestore.Client) *factRepository {
	return &factRepository{client: client}
}

func (r *factRepository) factsCollection(userID types.UserID) *firestore.CollectionRef {
	return userDoc(r.client, r.collectionPrefix, string(userID)).Collection("facts")
}

func (r *factRepository) Put(ctx context.Context, userID types.UserID, fact *model.Fact) error {
	if fact.ID == "" {
		fact.ID = model.NewFactID()
	}
	now := time.Now().UTC()
	if fact.CreatedAt.IsZero() {
		fact.CreatedAt = now
	}
	if fact.UpdatedAt.IsZero() {
		fact.UpdatedAt = fact.CreatedAt
	}

	docRef := r.factsCollection(userID).Doc(string(fact.ID))
	if _, err := docRef.Set(ctx, toFactDoc(fact)); err != nil {
		return goerr.Wrap(err, "failed to put fact", goerr.V("id", fact.ID))
	}
	return nil
}

func (r *factRepository) Get(ctx context.Context, userID types.UserID, id model.FactID) (*model.Fact, error) {
	doc, err := r.factsCollection(userID).Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(types.ErrFactNotFound, "fact not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get fact", goerr.V("id", id))
	}

	var d factDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal fact", goerr.V("id", id))
	}
	return fromFactDoc(&d), nil
}

func (r *factRepository) Update(ctx context.Context, userID types.UserID, id model.FactID, content string) (*model.Fact, error) {
	docRef := r.factsCollection(userID).Doc(string(id))

	var updated *model.Fact
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return goerr.Wrap(types.ErrFactNotFound, "fact not found", goerr.V("id", id))
			}
			return goerr.Wrap(err, "failed to get fact", goerr.V("id", id))
		}

		var d factDoc
		if err := doc.DataTo(&d); err != nil {
			return goerr.Wrap(err, "failed to unmarshal fact", goerr.V("id", id))
		}

		d.Content = content
		d.UpdatedAt = time.Now().UTC()
		updated = fromFactDoc(&d)
		return tx.Set(docRef, &d)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *factRepository) List(ctx context.Context, userID types.UserID) ([]*model.Fact, error) {
	iter := r.factsCollection(userID).
		OrderBy("UpdatedAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	result := make([]*model.Fact, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate facts", goerr.V("userID", userID))
		}

		var d factDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal fact")
		}
		result = append(result, fromFactDoc(&d))
	}
	return result, nil
}

// Search ranks facts client-side. Firestore has no text queries and the
// per-user fact count stays small enough to scan.
func (r *factRepository) Search(ctx context.Context, userID types.UserID, query string, limit int) ([]*model.Fact, error) {
	all, err := r.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	type scored struct {
		fact  *model.Fact
		score int
	}

	var candidates []scored
	for _, f := range all {
		if s := f.MatchScore(query); s > 0 {
			candidates = append(candidates, scored{fact: f, score: s})
		}
	}

	// List returns newest first, so a stable sort keeps UpdatedAt desc
	// as the tiebreak within equal scores.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if limit > 0 && limit < len(candidates) {
		candidates = candidates[:limit]
	}

	result := make([]*model.Fact, len(candidates))
	for i, c := range candidates {
		result[i] = c.fact
	}
	return result, nil
}
