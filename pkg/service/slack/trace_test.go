package slack_test

import (
	"context"
	"testing"

	"github.com/hiraku-lab/mentor/pkg/service/slack"
	"github.com/m-mizutani/gt"
)

type mockService struct {
	posted  []string
	updated []string
}

func (m *mockService) PostThreadMessage(ctx context.Context, channelID, threadTS, text string) (string, error) {
	m.posted = append(m.posted, text)
	return "1700000000.000002", nil
}

func (m *mockService) UpdateMessage(ctx context.Context, channelID, timestamp, text string) error {
	m.updated = append(m.updated, text)
	return nil
}

func (m *mockService) BotUserID(ctx context.Context) (string, error) {
	return "UBOT123", nil
}

func (m *mockService) GetUserInfo(ctx context.Context, userID string) (*slack.User, error) {
	return &slack.User{ID: userID}, nil
}

func TestTrace(t *testing.T) {
	ctx := context.Background()
	mock := &mockService{}

	trace, err := slack.NewTrace(ctx, mock, "C123", "1699999999.000001")
	gt.NoError(t, err).Required()
	gt.Array(t, mock.posted).Length(1)

	gt.NoError(t, trace.AppendStep(ctx, "Searching mailbox..."))
	gt.NoError(t, trace.AppendStep(ctx, "Drafting reply..."))
	gt.Array(t, mock.updated).Length(2).Required()
	gt.String(t, mock.updated[1]).Contains("• Searching mailbox...")
	gt.String(t, mock.updated[1]).Contains("• Drafting reply...")

	gt.NoError(t, trace.Finalize(ctx, "Here is the draft."))
	gt.Array(t, mock.updated).Length(3).Required()
	gt.Value(t, mock.updated[2]).Equal("Here is the draft.")
}
