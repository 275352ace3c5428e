package core_test

import (
	"context"
	"testing"
	"time"

	"github.com/hiraku-lab/mentor/pkg/agent/tool"
	"github.com/hiraku-lab/mentor/pkg/agent/tool/core"
	"github.com/hiraku-lab/mentor/pkg/domain/types"
	"github.com/hiraku-lab/mentor/pkg/repository/memory"
	"github.com/hiraku-lab/mentor/pkg/service/docstore"
	"github.com/hiraku-lab/mentor/pkg/service/mailbox"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"
)

const testUserID = types.UserID("U-tool-test")

// newCtxWithUpdateCapture returns a context that captures all update messages
// and a pointer to the slice where they are appended.
func newCtxWithUpdateCapture() (context.Context, *[]string) {
	var messages []string
	ctx := tool.WithUpdate(context.Background(), func(_ context.Context, msg string) {
		messages = append(messages, msg)
	})
	return ctx, &messages
}

func findTool(t *testing.T, tools []gollem.Tool, name string) gollem.Tool {
	t.Helper()
	for _, tl := range tools {
		if tl.Spec().Name == name {
			return tl
		}
	}
	t.Fatalf("tool %s not found", name)
	return nil
}

// ----- mock mailbox service -----

type mockMailbox struct {
	messages map[string]*mailbox.Message
	drafts   map[string]*mailbox.Draft
	sent     []string
}

func newMockMailbox() *mockMailbox {
	return &mockMailbox{
		messages: make(map[string]*mailbox.Message),
		drafts:   make(map[string]*mailbox.Draft),
	}
}

func (m *mockMailbox) Search(ctx context.Context, query string, maxResults int) ([]*mailbox.Message, error) {
	var result []*mailbox.Message
	for _, msg := range m.messages {
		result = append(result, msg)
	}
	return result, nil
}

func (m *mockMailbox) Read(ctx context.Context, messageID string) (*mailbox.Message, error) {
	msg, ok := m.messages[messageID]
	if !ok {
		return nil, goerr.New("message not found", goerr.V("id", messageID))
	}
	return msg, nil
}

func (m *mockMailbox) CreateDraft(ctx context.Context, to, subject, body, replyToID string) (*mailbox.Draft, error) {
	draft := &mailbox.Draft{
		ID:      "draft-001",
		To:      to,
		Subject: subject,
		Body:    body,
	}
	m.drafts[draft.ID] = draft
	return draft, nil
}

func (m *mockMailbox) SendDraft(ctx context.Context, draftID string) (string, error) {
	if _, ok := m.drafts[draftID]; !ok {
		return "", goerr.New("draft not found", goerr.V("id", draftID))
	}
	m.sent = append(m.sent, draftID)
	return "sent-" + draftID, nil
}

// ----- mock brief manager -----

type mockBriefs struct {
	title   string
	brief   string
	cleared bool
}

func (m *mockBriefs) Set(ctx context.Context, userID types.UserID, title, brief string) error {
	m.title = title
	m.brief = brief
	m.cleared = false
	return nil
}

func (m *mockBriefs) Clear(ctx context.Context, userID types.UserID) error {
	m.title = ""
	m.brief = ""
	m.cleared = true
	return nil
}

func TestFactTools(t *testing.T) {
	repo := memory.New()
	tools := core.New(repo, testUserID, nil, nil, nil, nil)

	t.Run("remember_fact stores and returns the ID", func(t *testing.T) {
		ctx, updates := newCtxWithUpdateCapture()

		result, err := findTool(t, tools, "remember_fact").Run(ctx, map[string]any{
			"content": "Sarah's birthday is June 12",
		})
		gt.NoError(t, err).Required()

		factID := gt.Cast[string](t, result["fact_id"])
		gt.String(t, factID).NotEqual("")
		gt.Array(t, *updates).Length(1)

		facts, err := repo.Fact().List(ctx, testUserID)
		gt.NoError(t, err).Required()
		gt.Array(t, facts).Length(1)
		gt.Value(t, facts[0].Content).Equal("Sarah's birthday is June 12")
	})

	t.Run("remember_fact rejects empty content", func(t *testing.T) {
		ctx, _ := newCtxWithUpdateCapture()

		_, err := findTool(t, tools, "remember_fact").Run(ctx, map[string]any{})
		gt.Error(t, err)
	})

	t.Run("update_fact replaces content", func(t *testing.T) {
		ctx, _ := newCtxWithUpdateCapture()

		created, err := findTool(t, tools, "remember_fact").Run(ctx, map[string]any{
			"content": "dentist on Tuesday",
		})
		gt.NoError(t, err).Required()
		factID := gt.Cast[string](t, created["fact_id"])

		updated, err := findTool(t, tools, "update_fact").Run(ctx, map[string]any{
			"fact_id": factID,
			"content": "dentist moved to Thursday",
		})
		gt.NoError(t, err).Required()
		gt.Value(t, updated["content"]).Equal("dentist moved to Thursday")
	})
}

func TestBriefTools(t *testing.T) {
	briefs := &mockBriefs{}
	tools := core.New(memory.New(), testUserID, briefs, nil, nil, nil)

	ctx, _ := newCtxWithUpdateCapture()

	_, err := findTool(t, tools, "set_task_brief").Run(ctx, map[string]any{
		"title": "Organize offsite",
		"brief": "Book a venue for 12 people by Friday",
	})
	gt.NoError(t, err).Required()
	gt.Value(t, briefs.title).Equal("Organize offsite")

	_, err = findTool(t, tools, "clear_task_brief").Run(ctx, map[string]any{})
	gt.NoError(t, err).Required()
	gt.Bool(t, briefs.cleared).True()
}

func TestMailTools(t *testing.T) {
	mail := newMockMailbox()
	mail.messages["msg-19a2f"] = &mailbox.Message{
		ID:      "msg-19a2f",
		Subject: "Venue contract",
		From:    "venue@example.com",
		Body:    "Please confirm the booking by Friday.",
	}
	tools := core.New(memory.New(), testUserID, nil, mail, nil, nil)

	t.Run("search returns message IDs as refs", func(t *testing.T) {
		ctx, _ := newCtxWithUpdateCapture()

		result, err := findTool(t, tools, "search_mail").Run(ctx, map[string]any{
			"query": "venue",
		})
		gt.NoError(t, err).Required()
		gt.Value(t, result["count"]).Equal(1)

		refs := gt.Cast[[]string](t, result["refs"])
		gt.Array(t, refs).Length(1)
		gt.Value(t, refs[0]).Equal("msg-19a2f")
	})

	t.Run("read returns full body", func(t *testing.T) {
		ctx, _ := newCtxWithUpdateCapture()

		result, err := findTool(t, tools, "read_mail").Run(ctx, map[string]any{
			"message_id": "msg-19a2f",
		})
		gt.NoError(t, err).Required()
		gt.Value(t, result["body"]).Equal("Please confirm the booking by Friday.")
	})

	t.Run("draft then send flow", func(t *testing.T) {
		ctx, _ := newCtxWithUpdateCapture()

		draft, err := findTool(t, tools, "create_mail_draft").Run(ctx, map[string]any{
			"to":       "venue@example.com",
			"subject":  "Re: Venue contract",
			"body":     "Confirmed, see you Friday.",
			"reply_to": "msg-19a2f",
		})
		gt.NoError(t, err).Required()
		draftID := gt.Cast[string](t, draft["draft_id"])
		gt.Value(t, draftID).Equal("draft-001")

		sent, err := findTool(t, tools, "send_mail_draft").Run(ctx, map[string]any{
			"draft_id": draftID,
		})
		gt.NoError(t, err).Required()
		gt.Value(t, sent["sent"]).Equal(true)
		gt.Array(t, mail.sent).Length(1)
	})
}

// ----- mock edit observer -----

type mockEditObserver struct {
	calls chan [2]string
}

func newMockEditObserver() *mockEditObserver {
	return &mockEditObserver{calls: make(chan [2]string, 4)}
}

func (m *mockEditObserver) ObserveEdit(ctx context.Context, userID types.UserID, original, edited string) error {
	m.calls <- [2]string{original, edited}
	return nil
}

func TestSaveDocumentReportsRevisions(t *testing.T) {
	docs := docstore.NewMemory()
	edits := newMockEditObserver()
	tools := core.New(memory.New(), testUserID, nil, nil, docs, edits)
	save := findTool(t, tools, "save_document")

	ctx, _ := newCtxWithUpdateCapture()

	_, err := save.Run(ctx, map[string]any{
		"name":    "invite.md",
		"content": "Dear team, please join us.",
	})
	gt.NoError(t, err).Required()

	t.Run("first save is not a revision", func(t *testing.T) {
		select {
		case got := <-edits.calls:
			t.Errorf("unexpected edit observation: %v", got)
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("overwrite with changed content is observed", func(t *testing.T) {
		_, err := save.Run(ctx, map[string]any{
			"name":    "invite.md",
			"content": "Hi all, join us if you can.",
		})
		gt.NoError(t, err).Required()

		select {
		case got := <-edits.calls:
			gt.Value(t, got[0]).Equal("Dear team, please join us.")
			gt.Value(t, got[1]).Equal("Hi all, join us if you can.")
		case <-time.After(time.Second):
			t.Error("edit observation never arrived")
		}
	})

	t.Run("overwrite with identical content is ignored", func(t *testing.T) {
		_, err := save.Run(ctx, map[string]any{
			"name":    "invite.md",
			"content": "Hi all, join us if you can.",
		})
		gt.NoError(t, err).Required()

		select {
		case got := <-edits.calls:
			t.Errorf("unexpected edit observation: %v", got)
		case <-time.After(50 * time.Millisecond):
		}
	})
}

func TestDocumentTools(t *testing.T) {
	docs := docstore.NewMemory()
	tools := core.New(memory.New(), testUserID, nil, nil, docs, nil)

	ctx, _ := newCtxWithUpdateCapture()

	_, err := findTool(t, tools, "save_document").Run(ctx, map[string]any{
		"name":    "party-plan.md",
		"content": "# Party Plan\n- book venue",
	})
	gt.NoError(t, err).Required()

	got, err := findTool(t, tools, "get_document").Run(ctx, map[string]any{
		"name": "party-plan.md",
	})
	gt.NoError(t, err).Required()
	gt.Value(t, got["found"]).Equal(true)
	gt.Value(t, got["content"]).Equal("# Party Plan\n- book venue")

	missing, err := findTool(t, tools, "get_document").Run(ctx, map[string]any{
		"name": "unknown.md",
	})
	gt.NoError(t, err).Required()
	gt.Value(t, missing["found"]).Equal(false)

	listed, err := findTool(t, tools, "list_documents").Run(ctx, map[string]any{
		"prefix": "party",
	})
	gt.NoError(t, err).Required()
	gt.Value(t, listed["count"]).Equal(1)
}
