package mailbox

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// gmailClient implements Service on top of the Gmail API
type gmailClient struct {
	svc *gmail.Service
}

// NewGmail creates a mailbox service backed by the Gmail API. Credentials
// come from the given client options (OAuth token or application default
// credentials).
func NewGmail(ctx context.Context, opts ...option.ClientOption) (Service, error) {
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create gmail service")
	}
	return &gmailClient{svc: svc}, nil
}

const gmailUser = "me"

func (c *gmailClient) Search(ctx context.Context, query string, maxResults int) ([]*Message, error) {
	if maxResults <= 0 {
		maxResults = 10
	}

	resp, err := c.svc.Users.Messages.List(gmailUser).
		Q(query).
		MaxResults(int64(maxResults)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to search messages", goerr.V("query", query))
	}

	result := make([]*Message, 0, len(resp.Messages))
	for _, ref := range resp.Messages {
		msg, err := c.svc.Users.Messages.Get(gmailUser, ref.Id).
			Format("metadata").
			MetadataHeaders("Subject", "From", "To", "Date").
			Context(ctx).
			Do()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to get message metadata", goerr.V("id", ref.Id))
		}
		result = append(result, fromGmailMessage(msg, false))
	}
	return result, nil
}

func (c *gmailClient) Read(ctx context.Context, messageID string) (*Message, error) {
	msg, err := c.svc.Users.Messages.Get(gmailUser, messageID).
		Format("full").
		Context(ctx).
		Do()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read message", goerr.V("id", messageID))
	}
	return fromGmailMessage(msg, true), nil
}

func (c *gmailClient) CreateDraft(ctx context.Context, to, subject, body, replyToID string) (*Draft, error) {
	var threadID, inReplyTo string
	if replyToID != "" {
		original, err := c.svc.Users.Messages.Get(gmailUser, replyToID).
			Format("metadata").
			MetadataHeaders("Message-ID").
			Context(ctx).
			Do()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to get original message for reply", goerr.V("id", replyToID))
		}
		threadID = original.ThreadId
		inReplyTo = headerValue(original.Payload, "Message-ID")
	}

	raw := encodeRFC2822(to, subject, body, inReplyTo)
	draft := &gmail.Draft{
		Message: &gmail.Message{
			Raw:      raw,
			ThreadId: threadID,
		},
	}

	created, err := c.svc.Users.Drafts.Create(gmailUser, draft).Context(ctx).Do()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create draft", goerr.V("to", to))
	}

	return &Draft{
		ID:      created.Id,
		To:      to,
		Subject: subject,
		Body:    body,
	}, nil
}

func (c *gmailClient) SendDraft(ctx context.Context, draftID string) (string, error) {
	sent, err := c.svc.Users.Drafts.Send(gmailUser, &gmail.Draft{Id: draftID}).Context(ctx).Do()
	if err != nil {
		return "", goerr.Wrap(err, "failed to send draft", goerr.V("draftID", draftID))
	}
	return sent.Id, nil
}

func fromGmailMessage(msg *gmail.Message, withBody bool) *Message {
	m := &Message{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		Snippet:  msg.Snippet,
	}
	if msg.Payload != nil {
		m.Subject = headerValue(msg.Payload, "Subject")
		m.From = headerValue(msg.Payload, "From")
		m.To = headerValue(msg.Payload, "To")
		m.Date = headerValue(msg.Payload, "Date")
		if withBody {
			m.Body = extractBody(msg.Payload)
		}
	}
	return m
}

func headerValue(payload *gmail.MessagePart, name string) string {
	for _, h := range payload.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// extractBody prefers the text/plain part, falling back to the first part
// carrying data
func extractBody(payload *gmail.MessagePart) string {
	if payload.Body != nil && payload.Body.Data != "" {
		return decodeBody(payload.Body.Data)
	}

	for _, part := range payload.Parts {
		if part.MimeType == "text/plain" && part.Body != nil && part.Body.Data != "" {
			return decodeBody(part.Body.Data)
		}
	}
	for _, part := range payload.Parts {
		if body := extractBody(part); body != "" {
			return body
		}
	}
	return ""
}

func decodeBody(data string) string {
	decoded, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(data)
	if err != nil {
		return ""
	}
	return string(decoded)
}

func encodeRFC2822(to, subject, body, inReplyTo string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "To: %s\r\n", to)
	fmt.Fprintf(&sb, "Subject: %s\r\n", subject)
	if inReplyTo != "" {
		fmt.Fprintf(&sb, "In-Reply-To: %s\r\n", inReplyTo)
		fmt.Fprintf(&sb, "References: %s\r\n", inReplyTo)
	}
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(body)

	return base64.URLEncoding.EncodeToString([]byte(sb.String()))
}
