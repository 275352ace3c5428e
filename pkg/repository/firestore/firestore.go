package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/hiraku-lab/mentor/pkg/domain/interfaces"
	"github.com/m-mizutani/goerr/v2"
)

// Firestore is the durable Repository implementation. Data is laid out
// under users/{userID} subcollections so every query is naturally scoped
// to one user's partition.
type Firestore struct {
	client      *firestore.Client
	guideline   *guidelineRepository
	fact        *factRepository
	memoryStore *memoryStoreRepository
	focus       *focusRepository
	taskBrief   *taskBriefRepository
	interaction *interactionRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix prefixes the root collection name. Used by tests to
// isolate runs against a shared project.
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.guideline.collectionPrefix = prefix
		f.fact.collectionPrefix = prefix
		f.memoryStore.collectionPrefix = prefix
		f.focus.collectionPrefix = prefix
		f.taskBrief.collectionPrefix = prefix
		f.interaction.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client", goerr.V("projectID", projectID))
	}

	f := &Firestore{
		client:      client,
		guideline:   newGuidelineRepository(client),
		fact:        newFactRepository(client),
		memoryStore: newMemoryStoreRepository(client),
		focus:       newFocusRepository(client),
		taskBrief:   newTaskBriefRepository(client),
		interaction: newInteractionRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Guideline() interfaces.GuidelineRepository {
	return f.guideline
}

func (f *Firestore) Fact() interfaces.FactRepository {
	return f.fact
}

func (f *Firestore) Memory() interfaces.MemoryRepository {
	return f.memoryStore
}

func (f *Firestore) Focus() interfaces.FocusRepository {
	return f.focus
}

func (f *Firestore) TaskBrief() interfaces.TaskBriefRepository {
	return f.taskBrief
}

func (f *Firestore) Interaction() interfaces.InteractionRepository {
	return f.interaction
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

const usersCollection = "users"

func userDoc(client *firestore.Client, prefix, userID string) *firestore.DocumentRef {
	return client.Collection(prefix + usersCollection).Doc(userID)
}
