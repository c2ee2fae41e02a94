package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"aircarer/internal/model"
	"aircarer/internal/pubsub"
	"aircarer/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startHub(t *testing.T) (*Hub, *websocket.Conn) {
	t.Helper()
	hub := NewHub(zap.NewNop())
	go hub.Run()
	t.Cleanup(hub.Close)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn := NewConn(c, hub)
		hub.Register(conn)
		go conn.WritePump()
		go conn.ReadPump()
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return hub, client
}

func readJSON(t *testing.T, c *websocket.Conn) map[string]interface{} {
	t.Helper()
	require.NoError(t, c.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg map[string]interface{}
	require.NoError(t, c.ReadJSON(&msg))
	return msg
}

func TestHub_SubscribeAndPublish(t *testing.T) {
	hub, client := startHub(t)

	require.NoError(t, client.WriteJSON(map[string]interface{}{"type": "subscribe", "channel": "request:abc"}))
	ack := readJSON(t, client)
	assert.Equal(t, "ack", ack["type"])
	assert.Equal(t, "subscribed", ack["ack"])
	assert.Equal(t, 1, hub.Subscribers("request:abc"))

	hub.Publish("request:other", map[string]interface{}{"type": "request.submitted"})
	hub.Publish("request:abc", map[string]interface{}{"type": "request.status_changed", "status": "in_progress"})

	msg := readJSON(t, client)
	assert.Equal(t, "event", msg["type"])
	assert.Equal(t, "request:abc", msg["channel"])
	data := msg["data"].(map[string]interface{})
	assert.Equal(t, "in_progress", data["status"])

	require.NoError(t, client.WriteJSON(map[string]interface{}{"type": "unsubscribe", "channel": "request:abc"}))
	ack = readJSON(t, client)
	assert.Equal(t, "unsubscribed", ack["ack"])
	assert.Equal(t, 0, hub.Subscribers("request:abc"))
}

func TestHub_Ping(t *testing.T) {
	_, client := startHub(t)

	require.NoError(t, client.WriteJSON(map[string]interface{}{"type": "ping"}))
	assert.Equal(t, "pong", readJSON(t, client)["ack"])

	require.NoError(t, client.WriteJSON(map[string]interface{}{"type": "bogus"}))
	assert.Equal(t, "unknown_type", readJSON(t, client)["code"])
}

func TestHub_Resume(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	bus := pubsub.New(rdb, zap.NewNop())
	for _, status := range []string{"in_progress", "completed"} {
		require.NoError(t, bus.Publish(ctx, "request:abc", map[string]interface{}{"type": "request.status_changed", "status": status}))
	}

	hub, client := startHub(t)
	hub.SetStreamsProvider(bus.GetStreams())

	require.NoError(t, client.WriteJSON(map[string]interface{}{"type": "resume", "channel": "request:abc", "since": 1}))
	msg := readJSON(t, client)
	assert.Equal(t, "event", msg["type"])
	assert.Equal(t, float64(2), msg["seq"])
	assert.Equal(t, "completed", msg["data"].(map[string]interface{})["status"])
	assert.Equal(t, 1, hub.Subscribers("request:abc"))
}

func TestHub_ResumeWithoutStreams(t *testing.T) {
	_, client := startHub(t)

	require.NoError(t, client.WriteJSON(map[string]interface{}{"type": "resume", "channel": "requests", "since": 0}))
	assert.Equal(t, "replay_unavailable", readJSON(t, client)["code"])
}

func TestCommandHandler(t *testing.T) {
	ctx := context.Background()
	reg := service.NewRegistry(nil, nil, zap.NewNop())
	_, a := reg.Submit(ctx, service.SubmitInput{RoomType: model.RoomStudio, ServiceMode: model.ModeNonSteam, Address: "1 Beach Rd"})
	_, b := reg.Submit(ctx, service.SubmitInput{RoomType: model.RoomTwoBedTwoBath, ServiceMode: model.ModeSteam, Address: "9 Hill St"})
	require.NoError(t, reg.UpdateStatus(ctx, b.ID, model.StatusInProgress))

	hub, client := startHub(t)
	hub.SetCommandHandler(NewCommandHandler(reg, zap.NewNop()))

	send := func(op string, data map[string]interface{}) map[string]interface{} {
		require.NoError(t, client.WriteJSON(map[string]interface{}{"type": "cmd", "id": op, "op": op, "data": data}))
		msg := readJSON(t, client)
		assert.Equal(t, op, msg["id"])
		return msg
	}

	msg := send("getRequest", map[string]interface{}{"requestId": a.ID})
	assert.Equal(t, "response", msg["type"])
	data := msg["data"].(map[string]interface{})
	assert.Equal(t, a.ID, data["request"].(map[string]interface{})["id"])
	assert.Contains(t, data["statusMessage"], "in queue")

	msg = send("getRequest", map[string]interface{}{"requestId": "missing"})
	assert.Equal(t, "not_found", msg["code"])

	msg = send("listRequests", map[string]interface{}{"status": "in_progress"})
	page := msg["data"].(map[string]interface{})
	assert.Equal(t, float64(1), page["totalItems"])

	msg = send("listRequests", map[string]interface{}{"status": "nope"})
	assert.Equal(t, "invalid_input", msg["code"])

	msg = send("searchRequests", map[string]interface{}{"query": "beach"})
	items := msg["data"].(map[string]interface{})["items"].([]interface{})
	require.Len(t, items, 1)

	msg = send("hasPending", nil)
	assert.Equal(t, true, msg["data"].(map[string]interface{})["pending"])

	msg = send("deleteEverything", nil)
	assert.Equal(t, "unknown_command", msg["code"])
}

func TestHub_PublishAfterClose(t *testing.T) {
	hub := NewHub(zap.NewNop())
	done := make(chan struct{})
	go func() {
		hub.Run()
		close(done)
	}()

	hub.Close()
	hub.Close()
	assert.NotPanics(t, func() {
		hub.Publish("requests", map[string]interface{}{"type": "request.submitted"})
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("event loop did not stop")
	}
}
