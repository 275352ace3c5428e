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

type focusDoc struct {
	Focus     string    `firestore:"Focus"`
	UpdatedAt time.Time `firestore:"UpdatedAt"`
}

type focusRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newFocusRepository(client *firestore.Client) *focusRepository {
	return &focusRepository{client: client}
}

// focusDocRef returns users/{userID}/state/focus, a singleton document
func (r *focusRepository) focusDocRef(userID types.UserID) *firestore.DocumentRef {
	return userDoc(r.client, r.collectionPrefix, string(userID)).Collection("state").Doc("focus")
}

func (r *focusRepository) Put(ctx context.Context, focus *model.Focus) error {
	if focus.UpdatedAt.IsZero() {
		focus.UpdatedAt = time.Now().UTC()
	}

	doc := &focusDoc{
		Focus:     focus.Focus,
		UpdatedAt: focus.UpdatedAt,
	}
	if _, err := r.focusDocRef(focus.UserID).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to put focus", goerr.V("userID", focus.UserID))
	}
	return nil
}

func (r *focusRepository) Get(ctx context.Context, userID types.UserID) (*model.Focus, error) {
	doc, err := r.focusDocRef(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get focus", goerr.V("userID", userID))
	}

	var d focusDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal focus", goerr.V("userID", userID))
	}

	return &model.Focus{
		UserID:    userID,
		Focus:     d.Focus,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

func (r *focusRepository) Clear(ctx context.Context, userID types.UserID) error {
	if _, err := r.focusDocRef(userID).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to clear focus", goerr.V("userID", userID))
	}
	return nil
}
