package notify

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// DefaultChannel is the Redis pub/sub channel change events travel on.
const DefaultChannel = "songcatalog:events"

// RedisBroadcaster fans events out across service instances over Redis
// pub/sub. Every instance forwards the channel into its local hub, so clients
// connected to any instance observe the same events.
type RedisBroadcaster struct {
	rdb     *redis.Client
	channel string
}

// NewRedisBroadcaster wires a broadcaster to the given Redis client.
// An empty channel name selects DefaultChannel.
func NewRedisBroadcaster(rdb *redis.Client, channel string) *RedisBroadcaster {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisBroadcaster{rdb: rdb, channel: channel}
}

// Publish encodes the event and publishes it to the Redis channel.
func (b *RedisBroadcaster) Publish(ctx context.Context, event Event) error {
	payload, err := Encode(event)
	if err != nil {
		return err
	}
	if err := b.rdb.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s event: %w", event.Name(), err)
	}
	return nil
}

// Forward subscribes to the Redis channel and relays every frame into the
// sink until the context is cancelled. Run it once per instance.
func (b *RedisBroadcaster) Forward(ctx context.Context, sink Sink) {
	pubsub := b.rdb.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				log.Warn().Str("channel", b.channel).Msg("Redis subscription closed")
				return
			}
			sink.Broadcast(Group, []byte(msg.Payload))
		}
	}
}
