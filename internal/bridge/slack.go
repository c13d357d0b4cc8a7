package bridge

import (
	"context"
	"time"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"
	"go.uber.org/zap"
)

// SlackAdapter implements Adapter for Slack using Socket Mode.
type SlackAdapter struct {
	client  *slack.Client
	socket  *socketmode.Client
	handler MessageHandler
	logger  *zap.Logger
}

// NewSlackAdapter creates a Slack bridge adapter. botToken is the Bot User
// OAuth Token (xoxb-...), appToken the App-Level Token (xapp-...) required
// for Socket Mode.
func NewSlackAdapter(botToken, appToken string, logger *zap.Logger) *SlackAdapter {
	client := slack.New(botToken, slack.OptionAppLevelToken(appToken))
	socket := socketmode.New(client, socketmode.OptionLog(zap.NewStdLog(logger)))
	return &SlackAdapter{client: client, socket: socket, logger: logger}
}

func (a *SlackAdapter) Platform() string { return "slack" }

func (a *SlackAdapter) OnMessage(h MessageHandler) { a.handler = h }

func (a *SlackAdapter) Connect(ctx context.Context) error {
	go a.handleEvents(ctx)
	go func() {
		if err := a.socket.RunContext(ctx); err != nil {
			a.logger.Error("bridge: slack socket mode error", zap.Error(err))
		}
	}()
	a.logger.Info("bridge: slack adapter connected via socket mode")
	return nil
}

func (a *SlackAdapter) handleEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-a.socket.Events:
			if !ok {
				return
			}
			a.processEvent(evt)
		}
	}
}

func (a *SlackAdapter) processEvent(evt socketmode.Event) {
	if evt.Type != socketmode.EventTypeEventsAPI {
		return
	}
	eventsAPI, ok := evt.Data.(slackevents.EventsAPIEvent)
	if !ok {
		return
	}
	a.socket.Ack(*evt.Request)

	if eventsAPI.Type != slackevents.CallbackEvent {
		return
	}
	inner, ok := eventsAPI.InnerEvent.Data.(*slackevents.MessageEvent)
	if !ok || inner.BotID != "" || a.handler == nil {
		return
	}

	threadTS := inner.ThreadTimeStamp
	if threadTS == "" {
		threadTS = inner.TimeStamp
	}
	a.handler(&InboundMessage{
		Platform:  "slack",
		ChannelID: inner.Channel,
		UserID:    inner.User,
		UserName:  inner.User,
		Content:   inner.Text,
		Timestamp: time.Now(),
		ReplyTo:   threadTS,
	})
}

func (a *SlackAdapter) Send(_ context.Context, msg *OutboundMessage) error {
	opts := []slack.MsgOption{slack.MsgOptionText(msg.Content, false)}
	if msg.ReplyTo != "" {
		opts = append(opts, slack.MsgOptionTS(msg.ReplyTo))
	}
	_, _, err := a.client.PostMessage(msg.ChannelID, opts...)
	return err
}

// Close is a no-op; the socket context cancellation handles shutdown.
func (a *SlackAdapter) Close() error { return nil }
