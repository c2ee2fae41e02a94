package api

import (
	"net/http"

	"aircarer/internal/ws"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	// screens are served from other origins
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (d Dependencies) wsHandler(w http.ResponseWriter, r *http.Request) {
	if d.Hub == nil {
		d.Log.Error("WebSocket hub not initialized")
		WriteError(w, http.StatusServiceUnavailable, "ws_unavailable", "WebSocket hub not initialized", d.Log)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		d.Log.Error("Failed to upgrade connection", zap.Error(err))
		return
	}

	wsConn := ws.NewConn(conn, d.Hub)
	d.Hub.Register(wsConn)

	d.Log.Info("WebSocket connection opened",
		zap.String("connection", wsConn.ID()),
		zap.String("remote", r.RemoteAddr),
	)

	go wsConn.WritePump()
	go wsConn.ReadPump()
}
