package ws

import (
	"context"
	"errors"
	"strings"

	"aircarer/internal/model"
	"aircarer/internal/service"

	"go.uber.org/zap"
)

// RequestReader is the read side of the registry
type RequestReader interface {
	Get(id string) (model.Request, error)
	All() []model.Request
	ListByStatus(statuses ...model.TaskStatus) []model.Request
	Search(query string) []model.Request
	HasPending() bool
}

// CommandHandler answers read-only query commands sent over a connection.
// Mutations go through the HTTP API.
type CommandHandler struct {
	requests RequestReader
	log      *zap.Logger
}

func NewCommandHandler(requests RequestReader, log *zap.Logger) *CommandHandler {
	return &CommandHandler{
		requests: requests,
		log:      log,
	}
}

// HandleCommand processes a WebSocket command
func (h *CommandHandler) HandleCommand(ctx context.Context, conn *Conn, cmd map[string]interface{}) {
	op, _ := cmd["op"].(string)
	data, _ := cmd["data"].(map[string]interface{})
	msgID, _ := cmd["id"].(string)

	switch op {
	case "listRequests":
		h.handleListRequests(conn, msgID, data)
	case "getRequest":
		h.handleGetRequest(conn, msgID, data)
	case "searchRequests":
		h.handleSearchRequests(conn, msgID, data)
	case "hasPending":
		h.sendResponse(conn, msgID, map[string]interface{}{"pending": h.requests.HasPending()})
	default:
		h.sendError(conn, msgID, "unknown_command", "Unknown command: "+op)
	}
}

func (h *CommandHandler) handleListRequests(conn *Conn, msgID string, data map[string]interface{}) {
	var statuses []model.TaskStatus
	raw, _ := data["status"].(string)
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		st, err := model.ParseTaskStatus(part)
		if err != nil {
			h.sendError(conn, msgID, "invalid_input", err.Error())
			return
		}
		statuses = append(statuses, st)
	}

	items := h.requests.All()
	if len(statuses) > 0 {
		items = h.requests.ListByStatus(statuses...)
	}

	page, _ := data["page"].(float64)
	pageSize, _ := data["pageSize"].(float64)
	h.sendResponse(conn, msgID, service.Paginate(items, int(page), int(pageSize)))
}

func (h *CommandHandler) handleGetRequest(conn *Conn, msgID string, data map[string]interface{}) {
	requestID, _ := data["requestId"].(string)
	if requestID == "" {
		h.sendError(conn, msgID, "invalid_input", "requestId required")
		return
	}

	req, err := h.requests.Get(requestID)
	if errors.Is(err, service.ErrRequestNotFound) {
		h.sendError(conn, msgID, "not_found", "Request not found")
		return
	}
	if err != nil {
		h.sendError(conn, msgID, "internal", err.Error())
		return
	}

	h.sendResponse(conn, msgID, map[string]interface{}{
		"request":       req,
		"statusMessage": service.StatusMessage(req),
	})
}

func (h *CommandHandler) handleSearchRequests(conn *Conn, msgID string, data map[string]interface{}) {
	query, _ := data["query"].(string)
	h.sendResponse(conn, msgID, map[string]interface{}{
		"items": h.requests.Search(query),
	})
}

func (h *CommandHandler) sendResponse(conn *Conn, msgID string, data interface{}) {
	response := map[string]interface{}{
		"type": "response",
		"data": data,
	}
	if msgID != "" {
		response["id"] = msgID
	}
	if !conn.sendJSON(response) {
		h.log.Warn("Failed to send response, channel full")
	}
}

func (h *CommandHandler) sendError(conn *Conn, msgID, code, message string) {
	err := map[string]interface{}{
		"type":    "error",
		"code":    code,
		"message": message,
	}
	if msgID != "" {
		err["id"] = msgID
	}
	if !conn.sendJSON(err) {
		h.log.Warn("Failed to send error, channel full")
	}
}
