package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// streamMaxLen caps every channel stream
const streamMaxLen = 1000

// StreamEvent represents an event stored in Redis Streams
type StreamEvent struct {
	Channel   string                 `json:"channel"`
	Sequence  int64                  `json:"seq"`
	Event     map[string]interface{} `json:"event"`
	Timestamp time.Time              `json:"timestamp"`
}

// Streams manages Redis Streams for event replay
type Streams struct {
	rdb *redis.Client
	log *zap.Logger
}

// NewStreams creates a new Streams manager
func NewStreams(rdb *redis.Client, log *zap.Logger) *Streams {
	return &Streams{rdb: rdb, log: log}
}

func streamKey(channel string) string {
	return "stream:" + channel
}

// PublishEvent appends an event to the channel's stream and returns its
// sequence number
func (s *Streams) PublishEvent(ctx context.Context, channel string, event map[string]interface{}) (int64, error) {
	seq, err := s.rdb.Incr(ctx, "seq:"+channel).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal event: %w", err)
	}

	id, err := s.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: streamKey(channel),
		MaxLen: streamMaxLen,
		ID:     "*",
		Values: map[string]interface{}{
			"seq":       seq,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"data":      string(data),
		},
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to add to stream: %w", err)
	}

	s.log.Debug("Published event to stream",
		zap.String("channel", channel),
		zap.Int64("sequence", seq),
		zap.String("stream_id", id),
	)

	return seq, nil
}

// ReplayEvents returns up to limit events with a sequence greater than
// sinceSeq, oldest first
func (s *Streams) ReplayEvents(ctx context.Context, channel string, sinceSeq int64, limit int) ([]StreamEvent, error) {
	msgs, err := s.rdb.XRange(ctx, streamKey(channel), "-", "+").Result()
	if err == redis.Nil {
		return []StreamEvent{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read stream: %w", err)
	}

	events := make([]StreamEvent, 0)
	for _, msg := range msgs {
		if limit > 0 && len(events) >= limit {
			break
		}

		seq, err := strconv.ParseInt(fmt.Sprint(msg.Values["seq"]), 10, 64)
		if err != nil || seq <= sinceSeq {
			continue
		}

		data, _ := msg.Values["data"].(string)
		var event map[string]interface{}
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			s.log.Warn("Failed to unmarshal event", zap.String("stream_id", msg.ID), zap.Error(err))
			continue
		}

		ts, _ := msg.Values["timestamp"].(string)
		timestamp, _ := time.Parse(time.RFC3339, ts)

		events = append(events, StreamEvent{
			Channel:   channel,
			Sequence:  seq,
			Event:     event,
			Timestamp: timestamp,
		})
	}

	return events, nil
}
