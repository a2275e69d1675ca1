package ws

import (
	"context"
	"encoding/json"
	"time"

	"nexusboard/internal/domain"
	"nexusboard/internal/logger"

	"github.com/redis/go-redis/v9"
)

// RedisBridge fans events out across instances. Publish sends to a Redis
// channel; Run relays everything on that channel into the local hub.
type RedisBridge struct {
	rc      *redis.Client
	channel string
	hub     *Hub
}

func NewRedisBridge(rc *redis.Client, channel string, hub *Hub) *RedisBridge {
	return &RedisBridge{rc: rc, channel: channel, hub: hub}
}

// Publish falls back to local delivery when Redis is unreachable.
func (b *RedisBridge) Publish(ctx context.Context, ev domain.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		logger.Error("bridge marshal event", "error", err)
		return
	}
	if err := b.rc.Publish(ctx, b.channel, data).Err(); err != nil {
		logger.Warn("bridge publish failed, delivering locally", "error", err)
		b.hub.Broadcast(ev.Room(), string(ev.Type), data)
	}
}

// Run blocks until ctx is cancelled, resubscribing if the channel closes.
func (b *RedisBridge) Run(ctx context.Context) {
	for {
		sub := b.rc.Subscribe(ctx, b.channel)
		b.relay(ctx, sub.Channel())
		_ = sub.Close()

		if ctx.Err() != nil {
			return
		}
		logger.Error("pubsub channel closed, reconnecting", "channel", b.channel)
		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Second):
		}
	}
}

func (b *RedisBridge) relay(ctx context.Context, ch <-chan *redis.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var ev domain.Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil || ev.Type == "" {
				logger.Warn("bridge: unable to parse event", "payload", msg.Payload)
				continue
			}
			b.hub.Broadcast(ev.Room(), string(ev.Type), []byte(msg.Payload))
		}
	}
}
