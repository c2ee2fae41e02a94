package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"aircarer/internal/schema"
	"aircarer/internal/service"
	"aircarer/internal/storage"

	"go.uber.org/zap"
)

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// WriteError writes a standardized error response
func WriteError(w http.ResponseWriter, code int, errCode, message string, log *zap.Logger) {
	if code >= http.StatusInternalServerError {
		log.Error("API error", zap.Int("status", code), zap.String("code", errCode), zap.String("message", message))
	} else {
		log.Warn("API error", zap.Int("status", code), zap.String("code", errCode), zap.String("message", message))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	resp := ErrorResponse{
		Error:   errCode,
		Message: message,
	}
	if errCode != "" {
		resp.Code = errCode
	}

	json.NewEncoder(w).Encode(resp)
}

// writeServiceError maps registry and storage errors to HTTP responses
func writeServiceError(w http.ResponseWriter, err error, log *zap.Logger) {
	switch {
	case errors.Is(err, service.ErrRequestNotFound):
		WriteError(w, http.StatusNotFound, "not_found", "Request not found", log)
	case errors.Is(err, service.ErrPhotoNotFound):
		WriteError(w, http.StatusNotFound, "photo_not_found", "Photo not found", log)
	case errors.Is(err, service.ErrInvalidStatusTransition):
		WriteError(w, http.StatusConflict, "invalid_transition", err.Error(), log)
	case errors.Is(err, service.ErrInvalidRating):
		WriteError(w, http.StatusUnprocessableEntity, "invalid_rating", err.Error(), log)
	case errors.Is(err, storage.ErrPolicyViolation):
		WriteError(w, http.StatusUnprocessableEntity, "policy_violation", err.Error(), log)
	case errors.Is(err, schema.ErrInvalidBody):
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error(), log)
	case errors.Is(err, service.ErrPhotosUnavailable):
		WriteError(w, http.StatusServiceUnavailable, "photos_unavailable", err.Error(), log)
	default:
		WriteError(w, http.StatusInternalServerError, "internal", err.Error(), log)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// RequestLogger logs HTTP requests and responses
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// WebSocket upgrades need the raw ResponseWriter
			if r.Header.Get("Upgrade") == "websocket" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			log.Info("HTTP request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", wrapped.statusCode),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote_addr", r.RemoteAddr),
			)
		})
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
