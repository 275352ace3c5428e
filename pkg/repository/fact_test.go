package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hiraku-lab/mentor/pkg/domain/interfaces"
	"github.com/hiraku-lab/mentor/pkg/domain/model"
	"github.com/hiraku-lab/mentor/pkg/domain/types"
	"github.com/hiraku-lab/mentor/pkg/repository/memory"
	"github.com/m-mizutani/gt"
)

func runFactRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Put assigns ID and timestamps", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		userID := newTestUserID()

		fact := &model.Fact{Content: "Sarah's birthday is June 12"}
		gt.NoError(t, repo.Fact().Put(ctx, userID, fact)).Required()

		gt.String(t, string(fact.ID)).NotEqual("")

		retrieved, err := repo.Fact().Get(ctx, userID, fact.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, retrieved.Content).Equal("Sarah's birthday is June 12")
		gt.Bool(t, retrieved.CreatedAt.IsZero()).False()
		gt.Value(t, retrieved.UpdatedAt).Equal(retrieved.CreatedAt)
	})

	t.Run("Get returns error for non-existent fact", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Fact().Get(ctx, newTestUserID(), "non-existent-id")
		gt.Value(t, err).NotNil()
		gt.Bool(t, errors.Is(err, types.ErrFactNotFound)).True()
	})

	t.Run("Update replaces content and bumps UpdatedAt", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		userID := newTestUserID()

		fact := &model.Fact{Content: "dentist appointment on Tuesday"}
		gt.NoError(t, repo.Fact().Put(ctx, userID, fact)).Required()

		time.Sleep(10 * time.Millisecond)

		updated, err := repo.Fact().Update(ctx, userID, fact.ID, "dentist appointment moved to Thursday")
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Content).Equal("dentist appointment moved to Thursday")
		gt.Bool(t, updated.UpdatedAt.After(updated.CreatedAt)).True()
	})

	t.Run("Update returns error for non-existent fact", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Fact().Update(ctx, newTestUserID(), "missing", "anything")
		gt.Value(t, err).NotNil()
		gt.Bool(t, errors.Is(err, types.ErrFactNotFound)).True()
	})

	t.Run("List returns facts newest first", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		userID := newTestUserID()

		first := &model.Fact{Content: "first fact"}
		gt.NoError(t, repo.Fact().Put(ctx, userID, first)).Required()

		time.Sleep(10 * time.Millisecond)

		second := &model.Fact{Content: "second fact"}
		gt.NoError(t, repo.Fact().Put(ctx, userID, second)).Required()

		facts, err := repo.Fact().List(ctx, userID)
		gt.NoError(t, err).Required()
		gt.Array(t, facts).Length(2)
		gt.Value(t, facts[0].ID).Equal(second.ID)
		gt.Value(t, facts[1].ID).Equal(first.ID)
	})

	t.Run("Search ranks by token overlap", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		userID := newTestUserID()

		gt.NoError(t, repo.Fact().Put(ctx, userID, &model.Fact{Content: "The landlord raised the rent in March"})).Required()
		gt.NoError(t, repo.Fact().Put(ctx, userID, &model.Fact{Content: "Rent is due on the 27th"})).Required()
		gt.NoError(t, repo.Fact().Put(ctx, userID, &model.Fact{Content: "Sarah prefers morning meetings"})).Required()

		results, err := repo.Fact().Search(ctx, userID, "landlord rent", 10)
		gt.NoError(t, err).Required()
		gt.Array(t, results).Length(2).Required()
		// Two token matches beat one
		gt.Value(t, results[0].Content).Equal("The landlord raised the rent in March")
		gt.Value(t, results[1].Content).Equal("Rent is due on the 27th")

		results, err = repo.Fact().Search(ctx, userID, "SARAH", 10)
		gt.NoError(t, err).Required()
		gt.Array(t, results).Length(1)
	})

	t.Run("facts are partitioned per user", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		alice := newTestUserID()
		bob := newTestUserID()

		fact := &model.Fact{Content: "alice's secret fact"}
		gt.NoError(t, repo.Fact().Put(ctx, alice, fact)).Required()

		_, err := repo.Fact().Get(ctx, bob, fact.ID)
		gt.Value(t, err).NotNil()

		facts, err := repo.Fact().List(ctx, bob)
		gt.NoError(t, err).Required()
		gt.Array(t, facts).Length(0)
	})
}

func TestMemoryFactRepository(t *testing.T) {
	runFactRepositoryTest(t, func(t *testing.T) interfaces.Repository {
		return memory.New()
	})
}

func TestFirestoreFactRepository(t *testing.T) {
	runFactRepositoryTest(t, newFirestoreRepository)
}
