package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

// ServeHTTP exposes the relay as a plain net/http handler for local serving.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	correlationID := strings.TrimSpace(r.Header.Get(correlationHeader))
	if correlationID == "" {
		correlationID = newUUID()
	}

	var status int
	var payload any
	body, err := io.ReadAll(r.Body)
	if err != nil {
		status, payload = http.StatusBadRequest, errorResponse{
			Error:   invalidRequest,
			Details: fmt.Sprintf("read request body: %v", err),
			Code:    http.StatusBadRequest,
		}
	} else {
		status, payload = h.serve(r.Context(), r.Method, body, correlationID)
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(correlationHeader, correlationID)
	if status == http.StatusMethodNotAllowed {
		w.Header().Set("Allow", http.MethodPost)
	}
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Warn("write chat response", "correlation_id", correlationID, "err", err)
	}
}

// Routes mounts the relay at /api/chat.
func Routes(h *Handler) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/chat", h)
	return mux
}
