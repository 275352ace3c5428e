package usecase

import (
	"context"

	"github.com/hiraku-lab/mentor/pkg/agent/tool"
	slackmodel "github.com/hiraku-lab/mentor/pkg/domain/model/slack"
	"github.com/hiraku-lab/mentor/pkg/domain/types"
	slacksvc "github.com/hiraku-lab/mentor/pkg/service/slack"
	"github.com/hiraku-lab/mentor/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack/slackevents"
)

// SlackUseCase bridges Slack events into the reasoning loop. DMs and app
// mentions start a run; everything else is ignored.
type SlackUseCase struct {
	chat         *ChatUseCase
	slackService slacksvc.Service
}

func NewSlackUseCase(chat *ChatUseCase, slackService slacksvc.Service) *SlackUseCase {
	return &SlackUseCase{
		chat:         chat,
		slackService: slackService,
	}
}

// HandleSlackEvent processes one Events API callback. It posts a progress
// trace into the thread, runs the agent, and replaces the trace with the
// answer.
func (uc *SlackUseCase) HandleSlackEvent(ctx context.Context, event *slackevents.EventsAPIEvent) error {
	logger := logging.From(ctx)

	msg := slackmodel.NewMessage(event)
	if msg == nil {
		logger.Debug("ignoring unsupported slack event", "type", event.InnerEvent.Type)
		return nil
	}

	botUserID, err := uc.slackService.BotUserID(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to resolve bot user ID")
	}
	if msg.UserID() == "" || msg.UserID() == botUserID {
		return nil
	}

	// Plain channel messages are only handled in DMs; in channels the bot
	// answers mentions, which arrive as app_mention events
	_, isMention := event.InnerEvent.Data.(*slackevents.AppMentionEvent)
	if !isMention && !msg.IsDM() {
		return nil
	}

	text := msg.StrippedText(botUserID)
	if text == "" {
		return nil
	}

	// Best effort; the run proceeds anonymously when the lookup fails
	senderName, senderTZ := "", ""
	if user, err := uc.slackService.GetUserInfo(ctx, msg.UserID()); err != nil {
		logger.Warn("failed to fetch slack user info", "error", err, "user_id", msg.UserID())
	} else {
		senderName = user.RealName
		if senderName == "" {
			senderName = user.Name
		}
		senderTZ = user.TZ
	}

	trace, err := slacksvc.NewTrace(ctx, uc.slackService, msg.ChannelID(), msg.ThreadKey())
	if err != nil {
		return goerr.Wrap(err, "failed to post trace message",
			goerr.V("channel_id", msg.ChannelID()))
	}

	ctx = tool.WithUpdate(ctx, func(ctx context.Context, step string) {
		if err := trace.AppendStep(ctx, step); err != nil {
			logging.From(ctx).Warn("failed to update trace", "error", err)
		}
	})

	result, err := uc.chat.HandleMessage(ctx, &ChatRequest{
		UserID:         types.UserID(msg.UserID()),
		ConversationID: types.ConversationID(msg.ChannelID() + ":" + msg.ThreadKey()),
		Text:           text,
		SenderName:     senderName,
		SenderTZ:       senderTZ,
	})
	if err != nil {
		if ferr := trace.Finalize(ctx, "Something went wrong, please try again."); ferr != nil {
			logger.Warn("failed to finalize trace", "error", ferr)
		}
		return goerr.Wrap(err, "agent run failed", goerr.V("user_id", msg.UserID()))
	}

	// A cancelled run was superseded; the newer run owns the conversation
	// and posts its own trace
	if result.State == types.TerminalCancelled {
		return nil
	}

	if err := trace.Finalize(ctx, result.Answer); err != nil {
		return goerr.Wrap(err, "failed to post final answer",
			goerr.V("channel_id", msg.ChannelID()))
	}
	return nil
}
