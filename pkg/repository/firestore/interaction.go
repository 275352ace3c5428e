package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/hiraku-lab/mentor/pkg/domain/model"
	"github.com/hiraku-lab/mentor/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
)

type promptMessageDoc struct {
	Role    string `firestore:"Role"`
	Content string `firestore:"Content"`
}

type interactionDoc struct {
	ID                  model.InteractionID  `firestore:"ID"`
	ConversationID      types.ConversationID `firestore:"ConversationID"`
	Iteration           int                  `firestore:"Iteration"`
	Provider            string               `firestore:"Provider"`
	Model               string               `firestore:"Model"`
	SystemPrompt        string               `firestore:"SystemPrompt"`
	Messages            []promptMessageDoc   `firestore:"Messages"`
	Response            string               `firestore:"Response"`
	Error               string               `firestore:"Error"`
	OriginalUserMessage string               `firestore:"OriginalUserMessage"`
	CurrentTaskBrief    string               `firestore:"CurrentTaskBrief"`
	CreatedAt           time.Time            `firestore:"CreatedAt"`
}

func toInteractionDoc(l *model.InteractionLog) *interactionDoc {
	d := &interactionDoc{
		ID:                  l.ID,
		ConversationID:      l.ConversationID,
		Iteration:           l.Iteration,
		Provider:            l.Provider,
		Model:               l.Model,
		SystemPrompt:        l.SystemPrompt,
		Response:            l.Response,
		Error:               l.Error,
		OriginalUserMessage: l.OriginalUserMessage,
		CurrentTaskBrief:    l.CurrentTaskBrief,
		CreatedAt:           l.CreatedAt,
	}
	for _, m := range l.Messages {
		d.Messages = append(d.Messages, promptMessageDoc{
			Role:    string(m.Role),
			Content: m.Content,
		})
	}
	return d
}

func fromInteractionDoc(userID types.UserID, d *interactionDoc) *model.InteractionLog {
	l := &model.InteractionLog{
		ID:                  d.ID,
		ConversationID:      d.ConversationID,
		UserID:              userID,
		Iteration:           d.Iteration,
		Provider:            d.Provider,
		Model:               d.Model,
		SystemPrompt:        d.SystemPrompt,
		Response:            d.Response,
		Error:               d.Error,
		OriginalUserMessage: d.OriginalUserMessage,
		CurrentTaskBrief:    d.CurrentTaskBrief,
		CreatedAt:           d.CreatedAt,
	}
	for _, m := range d.Messages {
		l.Messages = append(l.Messages, model.PromptMessage{
			Role:    types.Role(m.Role),
			Content: m.Content,
		})
	}
	return l
}

type interactionRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newInteractionRepository(client *firestore.Client) *interactionRepository {
	return &interactionRepository{client: client}
}

func (r *interactionRepository) interactionsCollection(userID types.UserID) *firestore.CollectionRef {
	return userDoc(r.client, r.collectionPrefix, string(userID)).Collection("interactions")
}

func (r *interactionRepository) Put(ctx context.Context, log *model.InteractionLog) error {
	if log.ID == "" {
		log.ID = model.NewInteractionID()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}

	docRef := r.interactionsCollection(log.UserID).Doc(string(log.ID))
	if _, err := docRef.Set(ctx, toInteractionDoc(log)); err != nil {
		return goerr.Wrap(err, "failed to put interaction log", goerr.V("id", log.ID))
	}
	return nil
}

func (r *interactionRepository) ListByConversation(ctx context.Context, userID types.UserID, convID types.ConversationID) ([]*model.InteractionLog, error) {
	iter := r.interactionsCollection(userID).
		Where("ConversationID", "==", string(convID)).
		OrderBy("Iteration", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	result := make([]*model.InteractionLog, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate interaction logs",
				goerr.V("conversationID", convID))
		}

		var d interactionDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal interaction log")
		}
		result = append(result, fromInteractionDoc(userID, &d))
	}
	return result, nil
}
