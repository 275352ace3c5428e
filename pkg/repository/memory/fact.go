package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hiraku-lab/mentor/pkg/domain/model"
	"github.com/hiraku-lab/mentor/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type factRepository struct {
	mu    sync.RWMutex
	facts map[types.UserID]map[model.FactID]*model.Fact
}

func newFactRepository() *factRepository {
	return &factRepository{
		facts: make(map[types.UserID]map[model.FactID]*model.Fact),
	}
}

func copyFact(f *model.Fact) *model.Fact {
	copied := *f
	return &copied
}

func (r *factRepository) Put(ctx context.Context, userID types.UserID, fact *model.Fact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.facts[userID]; !exists {
		r.facts[userID] = make(map[model.FactID]*model.Fact)
	}

	stored := copyFact(fact)
	if stored.ID == "" {
		stored.ID = model.NewFactID()
		fact.ID = stored.ID
	}
	now := time.Now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
		fact.CreatedAt = now
	}
	if stored.UpdatedAt.IsZero() {
		stored.UpdatedAt = stored.CreatedAt
		fact.UpdatedAt = stored.UpdatedAt
	}

	r.facts[userID][stored.ID] = stored
	return nil
}

func (r *factRepository) Get(ctx context.Context, userID types.UserID, id model.FactID) (*model.Fact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bucket := r.facts[userID]
	fact, exists := bucket[id]
	if !exists {
		return nil, goerr.Wrap(types.ErrFactNotFound, "fact not found", goerr.V("id", id))
	}
	return copyFact(fact), nil
}

func (r *factRepository) Update(ctx context.Context, userID types.UserID, id model.FactID, content string) (*model.Fact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	bucket := r.facts[userID]
	fact, exists := bucket[id]
	if !exists {
		return nil, goerr.Wrap(types.ErrFactNotFound, "fact not found", goerr.V("id", id))
	}

	fact.Content = content
	fact.UpdatedAt = time.Now().UTC()
	return copyFact(fact), nil
}

func (r *factRepository) List(ctx context.Context, userID types.UserID) ([]*model.Fact, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	bucket := r.facts[userID]
	result := make([]*model.Fact, 0, len(bucket))
	for _, f := range bucket {
		result = append(result, copyFact(f))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})
	return result, nil
}

func (r *factRepository) Search(ctx context.Context, userID types.UserID, query string, limit int) ([]*model.Fact, error) {
	all, err := r.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	return rankFacts(all, query, limit), nil
}

// rankFacts orders facts by token-overlap score with ties broken by
// UpdatedAt desc. The input must already be sorted newest first.
func rankFacts(facts []*model.Fact, query string, limit int) []*model.Fact {
	type scored struct {
		fact  *model.Fact
		score int
	}

	var candidates []scored
	for _, f := range facts {
		if s := f.MatchScore(query); s > 0 {
			candidates = append(candidates, scored{fact: f, score: s})
		}
	}

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
	return result
}
