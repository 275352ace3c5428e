package repository_test

import (
	"context"
	"testing"

	"github.com/hiraku-lab/mentor/pkg/domain/interfaces"
	"github.com/hiraku-lab/mentor/pkg/domain/model"
	"github.com/hiraku-lab/mentor/pkg/repository/memory"
	"github.com/m-mizutani/gt"
)

func runFocusRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Get returns nil before any focus is set", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		focus, err := repo.Focus().Get(ctx, newTestUserID())
		gt.NoError(t, err).Required()
		gt.Value(t, focus).Nil()
	})

	t.Run("Put overwrites previous focus", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		userID := newTestUserID()

		gt.NoError(t, repo.Focus().Put(ctx, &model.Focus{
			UserID: userID,
			Focus:  "planning the birthday party",
		})).Required()

		gt.NoError(t, repo.Focus().Put(ctx, &model.Focus{
			UserID: userID,
			Focus:  "apartment hunting",
		})).Required()

		focus, err := repo.Focus().Get(ctx, userID)
		gt.NoError(t, err).Required()
		gt.Value(t, focus).NotNil().Required()
		gt.Value(t, focus.Focus).Equal("apartment hunting")
		gt.Bool(t, focus.UpdatedAt.IsZero()).False()
	})

	t.Run("Clear removes focus and is idempotent", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		userID := newTestUserID()

		gt.NoError(t, repo.Focus().Put(ctx, &model.Focus{
			UserID: userID,
			Focus:  "drafting the lease response",
		})).Required()

		gt.NoError(t, repo.Focus().Clear(ctx, userID)).Required()

		focus, err := repo.Focus().Get(ctx, userID)
		gt.NoError(t, err).Required()
		gt.Value(t, focus).Nil()

		gt.NoError(t, repo.Focus().Clear(ctx, userID))
	})
}

func TestMemoryFocusRepository(t *testing.T) {
	runFocusRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestFirestoreFocusRepository(t *testing.T) {
	runFocusRepositoryTest(t, newFirestoreRepository)
}
