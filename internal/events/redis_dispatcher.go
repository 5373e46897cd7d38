package events

import (
	"context"
	"sync"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// redisDispatcher relays events through Redis pub/sub so every instance of the service
// sees changes made by any other.
type redisDispatcher struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewRedisDispatcher creates a dispatcher publishing on "<prefix>:<topic>" channels.
func NewRedisDispatcher(client *redis.Client, prefix string, logger *zap.Logger) Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &redisDispatcher{client: client, prefix: prefix, logger: logger}
}

func (d *redisDispatcher) channel(topic Topic) string {
	return d.prefix + ":" + string(topic)
}

func (d *redisDispatcher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return d.client.Publish(ctx, d.channel(event.Topic), payload).Err()
}

func (d *redisDispatcher) Subscribe(ctx context.Context, topic Topic, handler Handler) (func(), error) {
	pubsub := d.client.Subscribe(ctx, d.channel(topic))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range pubsub.Channel() {
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				d.logger.Warn("discarding malformed event", zap.String("channel", msg.Channel), zap.Error(err))
				continue
			}
			handler(event)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			if err := pubsub.Close(); err != nil {
				d.logger.Debug("closing subscription", zap.Error(err))
			}
			<-done
		})
	}, nil
}
