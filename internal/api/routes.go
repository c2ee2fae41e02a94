package api

import (
	"context"
	"net/http"

	"aircarer/internal/pubsub"
	"aircarer/internal/schema"
	"aircarer/internal/service"
	"aircarer/internal/ws"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// EventReplayer reads back the events of a channel
type EventReplayer interface {
	ReplayEvents(ctx context.Context, channel string, sinceSeq int64, limit int) ([]pubsub.StreamEvent, error)
}

type Dependencies struct {
	Registry *service.Registry
	Schemas  *schema.Compiler
	Streams  EventReplayer // nil without Redis
	Hub      *ws.Hub
	Log      *zap.Logger

	// MaxPhotoBytes bounds multipart uploads
	MaxPhotoBytes int64
}

func Routes(d Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestLogger(d.Log))

	// Catalog endpoints
	r.Get("/catalog/addons", d.listAddOns)
	r.Get("/catalog/rooms", d.listRooms)
	r.Post("/quotes", d.createQuote)

	// Request endpoints
	r.Post("/requests", d.submitRequest)
	r.Get("/requests", d.listRequests)
	r.Get("/requests/search", d.searchRequests)
	r.Get("/requests/pending", d.pendingRequests)
	r.Get("/requests/{id}", d.getRequest)
	r.Post("/requests/{id}/status", d.updateStatus)
	r.Post("/requests/{id}/feedback", d.updateFeedback)
	r.Post("/requests/{id}/photos", d.uploadPhoto)
	r.Get("/requests/{id}/photos/{photoId}", d.getPhoto)
	r.Get("/requests/{id}/events", d.requestEvents)

	// WebSocket endpoint
	r.Get("/ws", d.wsHandler)

	return r
}
