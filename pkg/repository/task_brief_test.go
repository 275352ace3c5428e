package repository_test

import (
	"context"
	"testing"

	"github.com/hiraku-lab/mentor/pkg/domain/interfaces"
	"github.com/hiraku-lab/mentor/pkg/domain/model"
	"github.com/hiraku-lab/mentor/pkg/repository/memory"
	"github.com/m-mizutani/gt"
)

func runTaskBriefRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Get returns nil when no brief is active", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		brief, err := repo.TaskBrief().Get(ctx, newTestUserID())
		gt.NoError(t, err).Required()
		gt.Value(t, brief).Nil()
	})

	t.Run("Put stores the brief with timestamps", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		userID := newTestUserID()

		gt.NoError(t, repo.TaskBrief().Put(ctx, &model.TaskBrief{
			UserID: userID,
			Title:  "Organize team offsite",
			Brief:  "Find a venue for 12 people, book catering, send invites by Friday",
		})).Required()

		brief, err := repo.TaskBrief().Get(ctx, userID)
		gt.NoError(t, err).Required()
		gt.Value(t, brief).NotNil().Required()
		gt.Value(t, brief.Title).Equal("Organize team offsite")
		gt.Bool(t, brief.CreatedAt.IsZero()).False()
		gt.Bool(t, brief.UpdatedAt.IsZero()).False()
	})

	t.Run("new brief replaces the old one entirely", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		userID := newTestUserID()

		gt.NoError(t, repo.TaskBrief().Put(ctx, &model.TaskBrief{
			UserID: userID,
			Title:  "Old task",
			Brief:  "old details",
		})).Required()

		gt.NoError(t, repo.TaskBrief().Put(ctx, &model.TaskBrief{
			UserID: userID,
			Title:  "New task",
			Brief:  "new details",
		})).Required()

		brief, err := repo.TaskBrief().Get(ctx, userID)
		gt.NoError(t, err).Required()
		gt.Value(t, brief).NotNil().Required()
		gt.Value(t, brief.Title).Equal("New task")
		gt.Value(t, brief.Brief).Equal("new details")
	})

	t.Run("Clear removes brief and is idempotent", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		userID := newTestUserID()

		gt.NoError(t, repo.TaskBrief().Put(ctx, &model.TaskBrief{
			UserID: userID,
			Title:  "Transient task",
			Brief:  "details",
		})).Required()

		gt.NoError(t, repo.TaskBrief().Clear(ctx, userID)).Required()

		brief, err := repo.TaskBrief().Get(ctx, userID)
		gt.NoError(t, err).Required()
		gt.Value(t, brief).Nil()

		gt.NoError(t, repo.TaskBrief().Clear(ctx, userID))
	})

	t.Run("briefs are partitioned per user", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		alice := newTestUserID()
		bob := newTestUserID()

		gt.NoError(t, repo.TaskBrief().Put(ctx, &model.TaskBrief{
			UserID: alice,
			Title:  "Alice's task",
			Brief:  "details",
		})).Required()

		brief, err := repo.TaskBrief().Get(ctx, bob)
		gt.NoError(t, err).Required()
		gt.Value(t, brief).Nil()
	})
}

func TestMemoryTaskBriefRepository(t *testing.T) {
	runTaskBriefRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestFirestoreTaskBriefRepository(t *testing.T) {
	runTaskBriefRepositoryTest(t, newFirestoreRepository)
}
