package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hiraku-lab/mentor/pkg/domain/model"
	"github.com/hiraku-lab/mentor/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

type guidelineRepository struct {
	mu       sync.RWMutex
	versions map[types.UserID][]*model.GuidelineDocument
}

func newGuidelineRepository() *guidelineRepository {
	return &guidelineRepository{
		versions: make(map[types.UserID][]*model.GuidelineDocument),
	}
}

func copyGuideline(d *model.GuidelineDocument) *model.GuidelineDocument {
	copied := *d
	return &copied
}

func (r *guidelineRepository) Latest(ctx context.Context, userID types.UserID) (*model.GuidelineDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chain := r.versions[userID]
	if len(chain) == 0 {
		return nil, goerr.Wrap(types.ErrGuidelineNotFound, "no guideline versions", goerr.V("userID", userID))
	}
	return copyGuideline(chain[len(chain)-1]), nil
}

func (r *guidelineRepository) Get(ctx context.Context, userID types.UserID, version int) (*model.GuidelineDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chain := r.versions[userID]
	if version < 1 || version > len(chain) {
		return nil, goerr.Wrap(types.ErrGuidelineNotFound, "guideline version not found",
			goerr.V("userID", userID), goerr.V("version", version))
	}
	return copyGuideline(chain[version-1]), nil
}

func (r *guidelineRepository) History(ctx context.Context, userID types.UserID) ([]*model.GuidelineDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chain := r.versions[userID]
	result := make([]*model.GuidelineDocument, len(chain))
	for i, d := range chain {
		result[i] = copyGuideline(d)
	}
	return result, nil
}

func (r *guidelineRepository) Commit(ctx context.Context, userID types.UserID, content, diff string, baseVersion int) (*model.GuidelineDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	chain := r.versions[userID]
	if len(chain) != baseVersion {
		return nil, goerr.Wrap(types.ErrVersionConflict, "stale base version",
			goerr.V("userID", userID),
			goerr.V("baseVersion", baseVersion),
			goerr.V("currentVersion", len(chain)))
	}

	doc := &model.GuidelineDocument{
		Version:          baseVersion + 1,
		Content:          content,
		DiffFromPrevious: diff,
		CreatedAt:        time.Now().UTC(),
	}
	r.versions[userID] = append(chain, doc)
	return copyGuideline(doc), nil
}
