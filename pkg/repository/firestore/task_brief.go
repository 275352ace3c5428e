package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/hiraku-lab/mentor/pkg/domain/model"
	"github.com/hiraku-lab/mentor/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type taskBriefDoc struct {
	Title     string    `firestore:"Title"`
	Brief     string    `firestore:"Brief"`
	CreatedAt time.Time `firestore:"CreatedAt"`
	UpdatedAt time.Time `firestore:"UpdatedAt"`
}

type taskBriefRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newTaskBriefRepository(client *firestore.Client) *taskBriefRepository {
	return &taskBriefRepository{client: client}
}

// briefDocRef returns users/{userID}/state/task_brief, a singleton document
func (r *taskBriefRepository) briefDocRef(userID types.UserID) *firestore.DocumentRef {
	return userDoc(r.client, r.collectionPrefix, string(userID)).Collection("state").Doc("task_brief")
}

func (r *taskBriefRepository) Put(ctx context.Context, brief *model.TaskBrief) error {
	now := time.Now().UTC()
	if brief.CreatedAt.IsZero() {
		brief.CreatedAt = now
	}
	if brief.UpdatedAt.IsZero() {
		brief.UpdatedAt = now
	}

	doc := &taskBriefDoc{
		Title:     brief.Title,
		Brief:     brief.Brief,
		CreatedAt: brief.CreatedAt,
		UpdatedAt: brief.UpdatedAt,
	}
	if _, err := r.briefDocRef(brief.UserID).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to put task brief", goerr.V("userID", brief.UserID))
	}
	return nil
}

func (r *taskBriefRepository) Get(ctx context.Context, userID types.UserID) (*model.TaskBrief, error) {
	doc, err := r.briefDocRef(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get task brief", goerr.V("userID", userID))
	}

	var d taskBriefDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal task brief", goerr.V("userID", userID))
	}

	return &model.TaskBrief{
		UserID:    userID,
		Title:     d.Title,
		Brief:     d.Brief,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

func (r *taskBriefRepository) Clear(ctx context.Context, userID types.UserID) error {
	if _, err := r.briefDocRef(userID).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to clear task brief", goerr.V("userID", userID))
	}
	return nil
}
