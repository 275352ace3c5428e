package mailbox

import "context"

// Message is one mail message. ID and ThreadID are provider identifiers and
// must round-trip verbatim through tool observations.
type Message struct {
	ID       string
	ThreadID string
	Subject  string
	From     string
	To       string
	Date     string
	Snippet  string
	Body     string
}

// Draft is an unsent message held by the provider for user approval
type Draft struct {
	ID      string
	To      string
	Subject string
	Body    string
}

// Service provides the mailbox operations exposed to the agent. Drafts are
// always created first and sent only on explicit approval.
type Service interface {
	// Search returns messages matching a provider search query
	Search(ctx context.Context, query string, maxResults int) ([]*Message, error)

	// Read retrieves a full message including its body
	Read(ctx context.Context, messageID string) (*Message, error)

	// CreateDraft creates a draft. A non-empty replyToID threads the draft
	// as a reply to that message.
	CreateDraft(ctx context.Context, to, subject, body, replyToID string) (*Draft, error)

	// SendDraft sends a previously created draft and returns the sent
	// message ID
	SendDraft(ctx context.Context, draftID string) (string, error)
}
