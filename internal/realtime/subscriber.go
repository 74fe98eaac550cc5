package realtime

import (
	"context"

	"relais/internal/events"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Subscribe relays changes published on channel to the hub until ctx ends.
// Every API instance publishes to redis, so each hub sees all changes
// regardless of which instance made them.
func (h *Hub) Subscribe(ctx context.Context, client *redis.Client, channel string) error {
	if channel == "" {
		channel = events.Channel
	}

	sub := client.Subscribe(ctx, channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			change, err := events.Decode(msg.Payload)
			if err != nil {
				h.log.Warn("decode change", zap.Error(err))
				continue
			}
			h.Broadcast(change)
		}
	}
}
