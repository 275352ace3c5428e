package slack

import (
	"context"
)

// Service provides the Slack API surface the assistant needs
type Service interface {
	// PostThreadMessage posts a reply into the thread identified by threadTS
	// and returns its timestamp
	PostThreadMessage(ctx context.Context, channelID, threadTS, text string) (string, error)

	// UpdateMessage replaces the text of an existing message
	UpdateMessage(ctx context.Context, channelID, timestamp, text string) error

	// BotUserID returns the bot's own user ID. The result is cached for the
	// lifetime of the service instance.
	BotUserID(ctx context.Context) (string, error)

	// GetUserInfo retrieves user information for the given user ID
	GetUserInfo(ctx context.Context, userID string) (*User, error)
}

// User represents a Slack user
type User struct {
	ID       string
	Name     string
	RealName string
	Email    string
	TZ       string
}
