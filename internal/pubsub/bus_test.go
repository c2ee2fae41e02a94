package pubsub

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingHub struct {
	mu       sync.Mutex
	channels []string
	messages []map[string]interface{}
}

func (h *recordingHub) Publish(channel string, message map[string]interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.channels = append(h.channels, channel)
	h.messages = append(h.messages, message)
}

func setupTestRedis(t *testing.T) *redis.Client {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return rdb
}

func TestBus_PublishRequest(t *testing.T) {
	ctx := context.Background()
	rdb := setupTestRedis(t)

	sub := rdb.Subscribe(ctx, RequestChannel("r1"))
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	hub := &recordingHub{}
	bus := New(rdb, zap.NewNop())
	bus.SetWSHub(hub)

	err = bus.PublishRequest(ctx, "r1", map[string]interface{}{
		"type":      "request.submitted",
		"requestId": "r1",
	})
	require.NoError(t, err)

	select {
	case msg := <-sub.Channel():
		assert.Contains(t, msg.Payload, "request.submitted")
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}

	assert.Equal(t, []string{RequestChannel("r1"), RequestsChannel}, hub.channels)
	assert.EqualValues(t, 1, hub.messages[0]["seq"])
}

func TestBus_WithoutRedis(t *testing.T) {
	hub := &recordingHub{}
	bus := New(nil, zap.NewNop())
	bus.SetWSHub(hub)

	require.NoError(t, bus.PublishRequest(context.Background(), "r1", map[string]interface{}{"type": "request.feedback"}))
	assert.Len(t, hub.messages, 2)
	assert.Nil(t, bus.GetStreams())
}

func TestStreams_Replay(t *testing.T) {
	ctx := context.Background()
	streams := NewStreams(setupTestRedis(t), zap.NewNop())

	for i := 0; i < 5; i++ {
		seq, err := streams.PublishEvent(ctx, "request:r1", map[string]interface{}{"n": i})
		require.NoError(t, err)
		assert.EqualValues(t, i+1, seq)
	}

	events, err := streams.ReplayEvents(ctx, "request:r1", 2, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.EqualValues(t, 3, events[0].Sequence)
	assert.EqualValues(t, 4, events[1].Sequence)
	assert.EqualValues(t, 2, events[0].Event["n"])
	assert.False(t, events[0].Timestamp.IsZero())

	events, err = streams.ReplayEvents(ctx, "request:unknown", 0, 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}
