package docstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/hiraku-lab/mentor/pkg/utils/safe"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
)

// gcsStore implements Service on a Cloud Storage bucket. Objects live under
// users/{userID}/docs/{name} so listings are naturally per user.
type gcsStore struct {
	client *storage.Client
	bucket string
}

func NewGCS(ctx context.Context, bucket string) (Service, error) {
	if bucket == "" {
		return nil, goerr.New("document bucket name is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}
	return &gcsStore{client: client, bucket: bucket}, nil
}

func objectPath(userID, name string) string {
	return fmt.Sprintf("users/%s/docs/%s", userID, name)
}

func (s *gcsStore) Save(ctx context.Context, userID, name, content string) error {
	obj := s.client.Bucket(s.bucket).Object(objectPath(userID, name))
	w := obj.NewWriter(ctx)
	w.ContentType = "text/markdown; charset=utf-8"

	if _, err := io.WriteString(w, content); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to write document", goerr.V("name", name))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to finalize document", goerr.V("name", name))
	}
	return nil
}

func (s *gcsStore) Get(ctx context.Context, userID, name string) (*Document, error) {
	obj := s.client.Bucket(s.bucket).Object(objectPath(userID, name))

	r, err := obj.NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to open document", goerr.V("name", name))
	}
	defer safe.Close(ctx, r)

	content, err := io.ReadAll(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read document", goerr.V("name", name))
	}

	doc := &Document{
		Name:    name,
		Content: string(content),
	}
	if attrs, err := obj.Attrs(ctx); err == nil {
		doc.UpdatedAt = attrs.Updated
	}
	return doc, nil
}

func (s *gcsStore) List(ctx context.Context, userID, prefix string) ([]string, error) {
	root := objectPath(userID, prefix)
	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: root})

	base := objectPath(userID, "")
	var names []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list documents", goerr.V("prefix", prefix))
		}
		names = append(names, strings.TrimPrefix(attrs.Name, base))
	}
	return names, nil
}
