package core

import (
	"context"
	"fmt"

	"github.com/hiraku-lab/mentor/pkg/agent"
	"github.com/hiraku-lab/mentor/pkg/agent/tool"
	"github.com/hiraku-lab/mentor/pkg/service/mailbox"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
)

// searchMailTool searches the user's mailbox
type searchMailTool struct {
	mail mailbox.Service
}

func (t *searchMailTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "search_mail",
		Description: "Search the user's mailbox. Supports provider query syntax such as from:, subject:, and newer_than:. Returns message IDs usable with read_mail and create_mail_draft.",
		Parameters: map[string]*gollem.Parameter{
			"query": {
				Type:        gollem.TypeString,
				Description: "The search query",
				Required:    true,
			},
			"max_results": {
				Type:        gollem.TypeNumber,
				Description: "Maximum number of messages to return (default 10)",
			},
		},
	}
}

func (t *searchMailTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	query, _ := args["query"].(string)
	if query == "" {
		return nil, goerr.Wrap(agent.ErrBadInput, "query is required")
	}

	maxResults := 0
	if v, ok := args["max_results"].(float64); ok {
		maxResults = int(v)
	}

	tool.Update(ctx, fmt.Sprintf("Searching mail for %q...", query))

	messages, err := t.mail.Search(ctx, query, maxResults)
	if err != nil {
		return nil, goerr.Wrap(err, "mail search failed", goerr.V("query", query))
	}

	results := make([]map[string]any, 0, len(messages))
	refs := make([]string, 0, len(messages))
	for _, m := range messages {
		results = append(results, map[string]any{
			"message_id": m.ID,
			"subject":    m.Subject,
			"from":       m.From,
			"date":       m.Date,
			"snippet":    m.Snippet,
		})
		refs = append(refs, m.ID)
	}

	return map[string]any{
		"count":    len(results),
		"messages": results,
		"refs":     refs,
	}, nil
}

// readMailTool retrieves a full message body
type readMailTool struct {
	mail mailbox.Service
}

func (t *readMailTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "read_mail",
		Description: "Read the full body of a message found with search_mail.",
		Parameters: map[string]*gollem.Parameter{
			"message_id": {
				Type:        gollem.TypeString,
				Description: "The message ID to read",
				Required:    true,
			},
		},
	}
}

func (t *readMailTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	messageID, _ := args["message_id"].(string)
	if messageID == "" {
		return nil, goerr.Wrap(agent.ErrBadInput, "message_id is required")
	}

	tool.Update(ctx, "Reading message...")

	msg, err := t.mail.Read(ctx, messageID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read message", goerr.V("message_id", messageID))
	}

	return map[string]any{
		"message_id": msg.ID,
		"subject":    msg.Subject,
		"from":       msg.From,
		"to":         msg.To,
		"date":       msg.Date,
		"body":       msg.Body,
		"refs":       []string{msg.ID},
	}, nil
}

// createMailDraftTool creates a draft for the user to approve
type createMailDraftTool struct {
	mail mailbox.Service
}

func (t *createMailDraftTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "create_mail_draft",
		Description: "Create a mail draft. Drafts are never sent automatically; present the draft to the user and only call send_mail_draft after explicit approval.",
		Parameters: map[string]*gollem.Parameter{
			"to": {
				Type:        gollem.TypeString,
				Description: "Recipient address",
				Required:    true,
			},
			"subject": {
				Type:        gollem.TypeString,
				Description: "Subject line",
				Required:    true,
			},
			"body": {
				Type:        gollem.TypeString,
				Description: "Plain-text body",
				Required:    true,
			},
			"reply_to": {
				Type:        gollem.TypeString,
				Description: "Message ID to reply to, threading the draft into that conversation",
			},
		},
	}
}

func (t *createMailDraftTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	to, _ := args["to"].(string)
	subject, _ := args["subject"].(string)
	body, _ := args["body"].(string)
	if to == "" || subject == "" || body == "" {
		return nil, goerr.Wrap(agent.ErrBadInput, "to, subject, and body are required")
	}
	replyTo, _ := args["reply_to"].(string)

	tool.Update(ctx, "Drafting mail to "+to+"...")

	draft, err := t.mail.CreateDraft(ctx, to, subject, body, replyTo)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create draft", goerr.V("to", to))
	}

	return map[string]any{
		"draft_id": draft.ID,
		"to":       draft.To,
		"subject":  draft.Subject,
		"body":     draft.Body,
		"refs":     []string{draft.ID},
	}, nil
}

// sendMailDraftTool sends a previously approved draft
type sendMailDraftTool struct {
	mail mailbox.Service
}

func (t *sendMailDraftTool) Spec() gollem.ToolSpec {
	return gollem.ToolSpec{
		Name:        "send_mail_draft",
		Description: "Send a draft created with create_mail_draft. Only call this after the user has approved the draft.",
		Parameters: map[string]*gollem.Parameter{
			"draft_id": {
				Type:        gollem.TypeString,
				Description: "The draft ID to send",
				Required:    true,
			},
		},
	}
}

func (t *sendMailDraftTool) Run(ctx context.Context, args map[string]any) (map[string]any, error) {
	draftID, _ := args["draft_id"].(string)
	if draftID == "" {
		return nil, goerr.Wrap(agent.ErrBadInput, "draft_id is required")
	}

	tool.Update(ctx, "Sending draft...")

	sentID, err := t.mail.SendDraft(ctx, draftID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to send draft", goerr.V("draft_id", draftID))
	}

	return map[string]any{
		"sent":       true,
		"message_id": sentID,
		"refs":       []string{sentID},
	}, nil
}
