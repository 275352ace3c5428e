package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/hiraku-lab/mentor/pkg/domain/interfaces"
	"github.com/hiraku-lab/mentor/pkg/domain/types"
	"github.com/hiraku-lab/mentor/pkg/repository/firestore"
	"github.com/m-mizutani/gt"
)

// newTestUserID returns a unique user ID per call so suites running against
// a shared Firestore project do not interfere with each other.
func newTestUserID() types.UserID {
	return types.UserID(fmt.Sprintf("U%d", time.Now().UnixNano()))
}

func newFirestoreRepository(t *testing.T) interfaces.Repository {
	t.Helper()

	projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
	if projectID == "" {
		t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
	}

	databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")

	ctx := context.Background()
	repo, err := firestore.New(ctx, projectID, databaseID)
	gt.NoError(t, err).Required()
	t.Cleanup(func() {
		gt.NoError(t, repo.Close())
	})
	return repo
}
