package bridge

import (
	"context"
	"time"
)

// Adapter is the per-platform transport a Bridge drives. Slack and Discord
// satisfy it; any future chat platform is a third implementation, nothing
// else about Bridge changes.
type Adapter interface {
	Platform() string
	Connect(ctx context.Context) error
	Send(ctx context.Context, msg *OutboundMessage) error
	OnMessage(handler MessageHandler)
	Close() error
}

// MessageHandler processes inbound messages from any platform.
type MessageHandler func(msg *InboundMessage)

// InboundMessage is a normalized message from any platform.
type InboundMessage struct {
	Platform  string
	ChannelID string
	UserID    string
	UserName  string
	Content   string
	Timestamp time.Time
	ReplyTo   string
}

// OutboundMessage is a message sent to a specific platform channel.
type OutboundMessage struct {
	Platform  string
	ChannelID string
	Content   string
	ReplyTo   string
}
