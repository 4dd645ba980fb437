package room

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/sugit/boardsync/internal/protocol"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const relayChannelPrefix = "discussion:"

// RedisRelay routes multicasts through a Redis pub/sub channel per
// discussion, so a room spans every server instance subscribed to the same
// Redis. Each instance delivers relayed messages to its local members only;
// the publisher's own members receive the message through the same
// subscription as everyone else's.
type RedisRelay struct {
	client *redis.Client
	local  *Manager
	logger *zap.Logger
	pubsub *redis.PubSub
}

func NewRedisRelay(ctx context.Context, client *redis.Client, local *Manager, logger *zap.Logger) (*RedisRelay, error) {
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	pubsub := client.PSubscribe(ctx, relayChannelPrefix+"*")

	relay := &RedisRelay{
		client: client,
		local:  local,
		logger: logger,
		pubsub: pubsub,
	}

	go relay.run()

	return relay, nil
}

func (r *RedisRelay) run() {
	for message := range r.pubsub.Channel() {
		discussionID := strings.TrimPrefix(message.Channel, relayChannelPrefix)

		var envelope protocol.Envelope
		if err := json.Unmarshal([]byte(message.Payload), &envelope); err != nil {
			r.logger.Error("discarding malformed relay message", zap.Error(err))
			continue
		}

		r.local.Multicast(discussionID, envelope)
	}
}

// Multicast publishes the message for every instance, this one included.
// Local delivery happens when the relayed message comes back through the
// subscription, keeping ordering identical on every instance.
func (r *RedisRelay) Multicast(discussionID string, message protocol.Envelope) {
	payload, err := json.Marshal(message)
	if err != nil {
		r.logger.Error("failed to serialize relay message", zap.Error(err))
		return
	}

	if err := r.client.Publish(context.Background(), relayChannelPrefix+discussionID, payload).Err(); err != nil {
		r.logger.Error("relay publish failed, delivering locally only", zap.Error(err))
		r.local.Multicast(discussionID, message)
	}
}

func (r *RedisRelay) Close() error {
	return r.pubsub.Close()
}
