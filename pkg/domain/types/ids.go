package types

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// UserID identifies the chat-platform user that owns a memory partition.
// For the Slack gateway this is the Slack user ID (e.g. "U0123456789").
type UserID string

func (x UserID) String() string { return string(x) }

// Validate checks if the UserID is valid
func (x UserID) Validate() error {
	if x == "" {
		return goerr.New("user ID is empty")
	}
	return nil
}

// ConversationID identifies one conversation (one channel/thread on the
// chat platform, or one REPL session).
type ConversationID string

func (x ConversationID) String() string { return string(x) }

// NewConversationID generates a new time-ordered ConversationID
func NewConversationID() ConversationID {
	return ConversationID(uuid.Must(uuid.NewV7()).String())
}

// RunID identifies a single agent run (one user message processed through
// a terminal state).
type RunID string

func (x RunID) String() string { return string(x) }

// NewRunID generates a new time-ordered RunID
func NewRunID() RunID {
	return RunID(uuid.Must(uuid.NewV7()).String())
}
