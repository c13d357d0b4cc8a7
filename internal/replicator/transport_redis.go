package replicator

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nidhogg/cogkernel/internal/collab"
)

const syncStreamPrefix = "cogkernel:sync:"

// RedisTransport implements collab.Transport over Redis Streams: each peer
// has its own stream, keyed by node id.
type RedisTransport struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// NewRedisTransport connects to redisURL and verifies liveness with a ping.
func NewRedisTransport(redisURL string, logger *zap.Logger) (*RedisTransport, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("replicator: parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("replicator: redis ping: %w", err)
	}
	return &RedisTransport{rdb: rdb, logger: logger}, nil
}

// Send publishes payload onto nodeID's sync stream and acknowledges once
// the write is durable on the Redis side.
func (t *RedisTransport) Send(ctx context.Context, nodeID string, payload []byte) (collab.Ack, error) {
	stream := syncStreamPrefix + nodeID
	_, err := t.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		Values: map[string]interface{}{
			"payload": base64.StdEncoding.EncodeToString(payload),
		},
	}).Result()
	if err != nil {
		return collab.Ack{Accepted: false, Reason: err.Error()}, fmt.Errorf("replicator: publish to %s: %w", stream, err)
	}
	t.logger.Debug("sync payload sent", zap.String("peer", nodeID), zap.Int("bytes", len(payload)))
	return collab.Ack{Accepted: true}, nil
}

// Receive blocks for up to block waiting for new sync payloads addressed to
// selfNodeID, starting after lastID ("$" for only-new). It returns the
// decoded payloads and the stream id to resume from.
func (t *RedisTransport) Receive(ctx context.Context, selfNodeID, lastID string, block time.Duration) ([][]byte, string, error) {
	stream := syncStreamPrefix + selfNodeID
	results, err := t.rdb.XRead(ctx, &redis.XReadArgs{
		Streams: []string{stream, lastID},
		Count:   32,
		Block:   block,
	}).Result()
	if err == redis.Nil {
		return nil, lastID, nil
	}
	if err != nil {
		return nil, lastID, fmt.Errorf("replicator: read %s: %w", stream, err)
	}

	var payloads [][]byte
	nextID := lastID
	for _, r := range results {
		for _, msg := range r.Messages {
			nextID = msg.ID
			encoded, ok := msg.Values["payload"].(string)
			if !ok {
				continue
			}
			decoded, err := base64.StdEncoding.DecodeString(encoded)
			if err != nil {
				continue
			}
			payloads = append(payloads, decoded)
		}
	}
	return payloads, nextID, nil
}

// Close releases the underlying Redis connection.
func (t *RedisTransport) Close() error {
	return t.rdb.Close()
}
