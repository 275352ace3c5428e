package docstore

import (
	"context"
	"time"
)

// Document is a named text document owned by one user
type Document struct {
	Name      string
	Content   string
	UpdatedAt time.Time
}

// Service provides the document storage operations exposed to the agent
type Service interface {
	// Save writes a document, overwriting any previous content under the
	// same name
	Save(ctx context.Context, userID, name, content string) error

	// Get retrieves a document by name. Returns nil without error when the
	// document does not exist.
	Get(ctx context.Context, userID, name string) (*Document, error)

	// List returns the document names for a user, optionally filtered by
	// prefix, in lexical order
	List(ctx context.Context, userID, prefix string) ([]string, error)
}
