package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/hiraku-lab/mentor/pkg/domain/model"
	"github.com/hiraku-lab/mentor/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type guidelineDoc struct {
	Version          int       `firestore:"Version"`
	Content          string    `firestore:"Content"`
	DiffFromPrevious string    `firestore:"DiffFromPrevious"`
	CreatedAt        time.Time `firestore:"CreatedAt"`
}

func fromGuidelineDoc(d *guidelineDoc) *model.GuidelineDocument {
	return &model.GuidelineDocument{
		Version:          d.Version,
		Content:          d.Content,
		DiffFromPrevious: d.DiffFromPrevious,
		CreatedAt:        d.CreatedAt,
	}
}

type guidelineRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newGuidelineRepository(client *firestore.Client) *guidelineRepository {
	return &guidelineRepository{client: client}
}

// guidelinesCollection returns users/{userID}/guidelines. Documents are
// keyed by zero-padded version so lexical order matches version order.
func (r *guidelineRepository) guidelinesCollection(userID types.UserID) *firestore.CollectionRef {
	return userDoc(r.client, r.collectionPrefix, string(userID)).Collection("guidelines")
}

func versionDocID(version int) string {
	return fmt.Sprintf("v%08d", version)
}

func (r *guidelineRepository) Latest(ctx context.Context, userID types.UserID) (*model.GuidelineDocument, error) {
	iter := r.guidelinesCollection(userID).
		OrderBy("Version", firestore.Desc).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, goerr.Wrap(types.ErrGuidelineNotFound, "no guideline versions", goerr.V("userID", userID))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query latest guideline", goerr.V("userID", userID))
	}

	var d guidelineDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal guideline")
	}
	return fromGuidelineDoc(&d), nil
}

func (r *guidelineRepository) Get(ctx context.Context, userID types.UserID, version int) (*model.GuidelineDocument, error) {
	doc, err := r.guidelinesCollection(userID).Doc(versionDocID(version)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(types.ErrGuidelineNotFound, "guideline version not found",
				goerr.V("userID", userID), goerr.V("version", version))
		}
		return nil, goerr.Wrap(err, "failed to get guideline", goerr.V("version", version))
	}

	var d guidelineDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal guideline")
	}
	return fromGuidelineDoc(&d), nil
}

func (r *guidelineRepository) History(ctx context.Context, userID types.UserID) ([]*model.GuidelineDocument, error) {
	iter := r.guidelinesCollection(userID).
		OrderBy("Version", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	result := make([]*model.GuidelineDocument, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate guidelines", goerr.V("userID", userID))
		}

		var d guidelineDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal guideline")
		}
		result = append(result, fromGuidelineDoc(&d))
	}
	return result, nil
}

func (r *guidelineRepository) Commit(ctx context.Context, userID types.UserID, content, diff string, baseVersion int) (*model.GuidelineDocument, error) {
	newDoc := &guidelineDoc{
		Version:          baseVersion + 1,
		Content:          content,
		DiffFromPrevious: diff,
		CreatedAt:        time.Now().UTC(),
	}

	docRef := r.guidelinesCollection(userID).Doc(versionDocID(newDoc.Version))

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		// The latest version must still be baseVersion, and the target
		// version document must not exist yet.
		iter := tx.Documents(r.guidelinesCollection(userID).
			OrderBy("Version", firestore.Desc).
			Limit(1))
		defer iter.Stop()

		current := 0
		doc, err := iter.Next()
		if err == nil {
			var d guidelineDoc
			if err := doc.DataTo(&d); err != nil {
				return goerr.Wrap(err, "failed to unmarshal latest guideline")
			}
			current = d.Version
		} else if err != iterator.Done {
			return goerr.Wrap(err, "failed to query latest guideline")
		}

		if current != baseVersion {
			return goerr.Wrap(types.ErrVersionConflict, "stale base version",
				goerr.V("userID", userID),
				goerr.V("baseVersion", baseVersion),
				goerr.V("currentVersion", current))
		}

		return tx.Create(docRef, newDoc)
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil, goerr.Wrap(types.ErrVersionConflict, "concurrent guideline commit",
				goerr.V("userID", userID), goerr.V("version", newDoc.Version))
		}
		return nil, err
	}

	return fromGuidelineDoc(newDoc), nil
}
