package slack

import (
	"fmt"
	"strings"
	"time"

	"github.com/slack-go/slack/slackevents"
)

// Message represents an inbound Slack message domain model
type Message struct {
	id        string
	channelID string
	threadTS  string
	teamID    string
	userID    string
	text      string
	eventTS   string
	createdAt time.Time
}

// NewMessage creates a new Message from a Slack Events API event.
// It accepts app mentions and plain messages (including DMs); any other
// event type yields nil.
func NewMessage(ev *slackevents.EventsAPIEvent) *Message {
	if ev.Type != slackevents.CallbackEvent {
		return nil
	}

	now := time.Now()

	switch evt := ev.InnerEvent.Data.(type) {
	case *slackevents.AppMentionEvent:
		return &Message{
			id:        evt.TimeStamp,
			channelID: evt.Channel,
			threadTS:  evt.ThreadTimeStamp,
			teamID:    ev.TeamID,
			userID:    evt.User,
			text:      evt.Text,
			eventTS:   evt.EventTimeStamp,
			createdAt: now,
		}
	case *slackevents.MessageEvent:
		threadTS := ""
		if evt.ThreadTimeStamp != "" && evt.ThreadTimeStamp != evt.TimeStamp {
			threadTS = evt.ThreadTimeStamp
		}
		return &Message{
			id:        evt.TimeStamp,
			channelID: evt.Channel,
			threadTS:  threadTS,
			teamID:    ev.TeamID,
			userID:    evt.User,
			text:      evt.Text,
			eventTS:   evt.EventTimeStamp,
			createdAt: now,
		}
	default:
		return nil
	}
}

// Getters to maintain immutability
func (m *Message) ID() string {
	return m.id
}

func (m *Message) ChannelID() string {
	return m.channelID
}

func (m *Message) ThreadTS() string {
	return m.threadTS
}

func (m *Message) TeamID() string {
	return m.teamID
}

func (m *Message) UserID() string {
	return m.userID
}

func (m *Message) Text() string {
	return m.text
}

func (m *Message) EventTS() string {
	return m.eventTS
}

func (m *Message) CreatedAt() time.Time {
	return m.createdAt
}

// IsDM reports whether the message arrived via a direct message channel
func (m *Message) IsDM() bool {
	return strings.HasPrefix(m.channelID, "D")
}

// ThreadKey returns the timestamp that identifies the thread this message
// belongs to. For a top-level message this is the message's own timestamp,
// so replies posted with it open a thread on the original message.
func (m *Message) ThreadKey() string {
	if m.threadTS != "" {
		return m.threadTS
	}
	return m.id
}

// StrippedText returns the message text with the leading mention of the
// given bot user removed. Text without the mention is returned unchanged.
func (m *Message) StrippedText(botUserID string) string {
	mention := fmt.Sprintf("<@%s>", botUserID)
	text := strings.TrimSpace(m.text)
	if rest, ok := strings.CutPrefix(text, mention); ok {
		return strings.TrimSpace(rest)
	}
	return text
}
