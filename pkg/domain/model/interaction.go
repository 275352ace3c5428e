package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/hiraku-lab/mentor/pkg/domain/types"
)

// InteractionID is a UUID-based identifier for InteractionLog
type InteractionID string

// NewInteractionID generates a new UUID v4 InteractionID
func NewInteractionID() InteractionID {
	return InteractionID(uuid.New().String())
}

// PromptMessage is one message of the prompt sent to the model,
// recorded for audit purposes.
type PromptMessage struct {
	Role    types.Role `json:"role"`
	Content string     `json:"content"`
}

// InteractionLog is the audit record of one model call inside an agent run.
// One run of N iterations produces N log entries sharing the same
// ConversationID. Logging is best effort: a failed write is reported but
// never aborts the run.
type InteractionLog struct {
	ID             InteractionID
	ConversationID types.ConversationID
	UserID         types.UserID
	Iteration      int
	Provider       string
	Model          string
	SystemPrompt   string
	Messages       []PromptMessage
	Response       string
	Error          string

	// Snapshot of the ambient state when the call was made
	OriginalUserMessage string
	CurrentTaskBrief    string

	CreatedAt time.Time
}
