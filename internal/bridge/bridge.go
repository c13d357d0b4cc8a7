// Package bridge demonstrates the kernel's external "agent layer" consumer
// contract: it never touches atomspace, replicator, process, scheduler, or
// syscall internals directly, only the kernel handle (Syscall, plus Kill and
// ProcessTable for shutdown). Slack and Discord messages become
// spawn_agent/think syscalls, and Relay drains replies via receive_thought;
// nothing here is part of the closed syscall surface itself.
package bridge

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/nidhogg/cogkernel/internal/kernel"
	syscallpkg "github.com/nidhogg/cogkernel/internal/syscall"
)

// Bridge routes inbound chat messages to a dedicated cognitive process per
// (platform, user) and relays that process's thoughts back out.
type Bridge struct {
	k        *kernel.Kernel
	adapters map[string]Adapter

	mu      sync.Mutex
	agentOf map[string]int // "platform:userID" -> pid

	logger *zap.Logger
}

// New constructs a Bridge bound to a running kernel.
func New(k *kernel.Kernel, logger *zap.Logger) *Bridge {
	return &Bridge{
		k:        k,
		adapters: make(map[string]Adapter),
		agentOf:  make(map[string]int),
		logger:   logger,
	}
}

// Register adds an adapter and wires its inbound handler to the bridge.
func (b *Bridge) Register(adapter Adapter) {
	b.adapters[adapter.Platform()] = adapter
	adapter.OnMessage(b.handleInbound)
	b.logger.Info("bridge: adapter registered", zap.String("platform", adapter.Platform()))
}

// ConnectAll starts every registered adapter.
func (b *Bridge) ConnectAll(ctx context.Context) error {
	for platform, adapter := range b.adapters {
		if err := adapter.Connect(ctx); err != nil {
			return fmt.Errorf("bridge: connect %s: %w", platform, err)
		}
	}
	return nil
}

// Close shuts down every registered adapter.
func (b *Bridge) Close() error {
	var firstErr error
	for platform, adapter := range b.adapters {
		if err := adapter.Close(); err != nil {
			b.logger.Warn("bridge: adapter close failed", zap.String("platform", platform), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (b *Bridge) agentKey(msg *InboundMessage) string {
	return fmt.Sprintf("%s:%s", msg.Platform, msg.UserID)
}

// pidFor returns the pid bound to this platform/user pair, spawning a new
// process via spawn_agent on first contact.
func (b *Bridge) pidFor(msg *InboundMessage) (int, error) {
	key := b.agentKey(msg)

	b.mu.Lock()
	defer b.mu.Unlock()

	if pid, found := b.agentOf[key]; found {
		return pid, nil
	}

	res := b.k.Syscall(0, syscallpkg.SpawnAgent, map[string]any{
		"name": msg.UserName,
		"role": "bridge:" + msg.Platform,
	})
	if !res.OK {
		return 0, fmt.Errorf("bridge: spawn_agent failed: %s", res.Errno)
	}
	data := res.Data.(map[string]any)
	pid := data["pid"].(int)
	b.agentOf[key] = pid
	return pid, nil
}

// handleInbound is the MessageHandler wired into every adapter: it drives
// think() on the bound process, then relays the thought back as a reply.
func (b *Bridge) handleInbound(msg *InboundMessage) {
	pid, err := b.pidFor(msg)
	if err != nil {
		b.logger.Error("bridge: could not resolve agent", zap.Error(err))
		return
	}

	res := b.k.Syscall(pid, syscallpkg.Think, map[string]any{
		"input":   msg.Content,
		"context": map[string]any{"channel": msg.ChannelID, "platform": msg.Platform},
	})
	if !res.OK {
		b.logger.Warn("bridge: think failed", zap.String("errno", string(res.Errno)))
		return
	}

	adapter, found := b.adapters[msg.Platform]
	if !found {
		return
	}

	data := res.Data.(map[string]any)
	reply := fmt.Sprintf("noted (thought %v)", data["thought_id"])
	outbound := &OutboundMessage{
		Platform:  msg.Platform,
		ChannelID: msg.ChannelID,
		Content:   reply,
		ReplyTo:   msg.ReplyTo,
	}
	if err := adapter.Send(context.Background(), outbound); err != nil {
		b.logger.Warn("bridge: send failed", zap.Error(err))
	}
}

// Relay delivers content from pid to every platform/channel bound to it, by
// first draining its outbound mailbox via receive_thought, so
// agent-initiated messages (not just replies) can reach chat. Nothing in
// cmd/kerneld calls it; a caller drives it explicitly.
func (b *Bridge) Relay(pid int, platform, channelID string) {
	adapter, found := b.adapters[platform]
	if !found {
		return
	}
	for {
		res := b.k.Syscall(pid, syscallpkg.ReceiveThought, map[string]any{"blocking": false})
		if !res.OK || res.Data == nil {
			return
		}
		data := res.Data.(map[string]any)
		outbound := &OutboundMessage{
			Platform:  platform,
			ChannelID: channelID,
			Content:   fmt.Sprintf("%v", data["payload"]),
		}
		if err := adapter.Send(context.Background(), outbound); err != nil {
			b.logger.Warn("bridge: relay send failed", zap.Error(err))
			return
		}
	}
}
