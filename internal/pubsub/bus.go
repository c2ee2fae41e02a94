package pubsub

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RequestsChannel carries every request event, for list screens
const RequestsChannel = "requests"

// Bus fans request events out to Redis pub/sub, the replay stream and
// the WebSocket hub. A Bus without a Redis client only feeds the hub.
type Bus struct {
	rdb     *redis.Client
	log     *zap.Logger
	wsHub   WSHub
	streams *Streams
}

type WSHub interface {
	Publish(channel string, message map[string]interface{})
}

func New(rdb *redis.Client, log *zap.Logger) *Bus {
	b := &Bus{rdb: rdb, log: log}
	if rdb != nil {
		b.streams = NewStreams(rdb, log)
	}
	return b
}

// SetWSHub sets the WebSocket hub for event broadcasting
func (b *Bus) SetWSHub(hub WSHub) {
	b.wsHub = hub
}

// GetStreams returns the streams provider, nil without Redis
func (b *Bus) GetStreams() *Streams {
	return b.streams
}

// RequestChannel names the channel of a single request
func RequestChannel(requestID string) string {
	return "request:" + requestID
}

// PublishRequest publishes an event to a request's channel and to the
// shared requests channel
func (b *Bus) PublishRequest(ctx context.Context, requestID string, event map[string]interface{}) error {
	if err := b.Publish(ctx, RequestChannel(requestID), event); err != nil {
		return err
	}
	return b.Publish(ctx, RequestsChannel, event)
}

// Publish publishes an event to a channel
func (b *Bus) Publish(ctx context.Context, channel string, event map[string]interface{}) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	var seq int64
	if b.rdb != nil {
		if err := b.rdb.Publish(ctx, channel, data).Err(); err != nil {
			b.log.Error("Failed to publish event", zap.String("channel", channel), zap.Error(err))
			return err
		}

		seq, err = b.streams.PublishEvent(ctx, channel, event)
		if err != nil {
			// the live event already went out, replay just misses it
			b.log.Warn("Failed to publish to stream", zap.String("channel", channel), zap.Error(err))
		}
	}

	if b.wsHub != nil {
		eventWithSeq := make(map[string]interface{}, len(event)+1)
		for k, v := range event {
			eventWithSeq[k] = v
		}
		eventWithSeq["seq"] = seq
		b.wsHub.Publish(channel, eventWithSeq)
	}

	b.log.Debug("Published event", zap.String("channel", channel), zap.Int64("seq", seq), zap.ByteString("event", data))
	return nil
}
