package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"screw-inspection/domain/services"
	"screw-inspection/pkg/logger"
)

// InvalidationChannel carries cache invalidations between API instances
const InvalidationChannel = "screw-inspection:invalidate"

type invalidationMessage struct {
	Topic  services.InvalidationTopic `json:"topic"`
	Origin string                     `json:"origin"`
}

// InvalidationBus publishes and receives invalidations over redis pub/sub.
// Every instance drops its own caches before publishing, so messages that
// originate here are ignored on receipt.
type InvalidationBus struct {
	client     *goredis.Client
	instanceID string
}

func NewInvalidationBus(client *RedisClient) *InvalidationBus {
	return &InvalidationBus{client: client.Client(), instanceID: uuid.NewString()}
}

func (b *InvalidationBus) InstanceID() string {
	return b.instanceID
}

func (b *InvalidationBus) Publish(ctx context.Context, topic services.InvalidationTopic) error {
	payload, err := encodeInvalidation(topic, b.instanceID)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, InvalidationChannel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish invalidation: %w", err)
	}
	return nil
}

// Listen dispatches remote invalidations to handlers until ctx is cancelled
func (b *InvalidationBus) Listen(ctx context.Context, handlers map[services.InvalidationTopic]func()) {
	sub := b.client.Subscribe(ctx, InvalidationChannel)
	defer sub.Close()

	logger.Startup("invalidation_listening", "Listening for cache invalidations", map[string]interface{}{
		"channel":     InvalidationChannel,
		"instance_id": b.instanceID,
	})

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			b.dispatch(msg.Payload, handlers)
		}
	}
}

func (b *InvalidationBus) dispatch(payload string, handlers map[services.InvalidationTopic]func()) bool {
	var msg invalidationMessage
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		logger.Warn(logger.CategoryEngine, "invalidation_malformed", "Ignoring malformed invalidation", map[string]interface{}{
			"payload": payload,
		})
		return false
	}
	if msg.Origin == b.instanceID {
		return false
	}
	handler, ok := handlers[msg.Topic]
	if !ok {
		return false
	}
	handler()
	logger.Info(logger.CategoryEngine, "invalidation_applied", "Applied remote invalidation", map[string]interface{}{
		"topic":  msg.Topic,
		"origin": msg.Origin,
	})
	return true
}

func encodeInvalidation(topic services.InvalidationTopic, origin string) (string, error) {
	data, err := json.Marshal(invalidationMessage{Topic: topic, Origin: origin})
	if err != nil {
		return "", fmt.Errorf("failed to encode invalidation: %w", err)
	}
	return string(data), nil
}

// NopBus is used when redis is disabled; a single instance needs no fan-out
type NopBus struct{}

func (NopBus) Publish(context.Context, services.InvalidationTopic) error {
	return nil
}
