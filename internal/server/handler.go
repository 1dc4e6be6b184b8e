package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"fanlink/internal/node"
	"fanlink/internal/trigger"
)

// Handler routes the plugin contract endpoints
type Handler struct {
	node        *node.Node
	trigger     *trigger.Trigger
	maxBodySize int64
	mux         *http.ServeMux
	logger      zerolog.Logger
}

func NewHandler(n *node.Node, tr *trigger.Trigger, maxBodySize int64, logger zerolog.Logger) *Handler {
	h := &Handler{
		node:        n,
		trigger:     tr,
		maxBodySize: maxBodySize,
		logger:      logger.With().Str("component", "http").Logger(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/descriptor", h.handleDescriptor)
	mux.HandleFunc("/v1/execute", h.handleExecute)
	mux.HandleFunc("/v1/poll", h.handlePoll)
	mux.HandleFunc("/healthz", h.handleHealth)
	h.mux = mux
	return h
}

// ServeHTTP handles HTTP requests
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	h.mux.ServeHTTP(w, r)
	h.logger.Debug().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Dur("took", time.Since(start)).
		Msg("request handled")
}

func (h *Handler) handleDescriptor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	h.writeJSON(w, http.StatusOK, h.node.Descriptor())
}

func (h *Handler) handleExecute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	var req node.ExecuteRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.writeOpError(w, http.StatusBadRequest, &node.OpError{
			Kind:    node.KindValidation,
			Message: "malformed execute request",
			Detail:  err.Error(),
		})
		return
	}

	resp := h.node.Execute(r.Context(), req)
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePoll(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}

	var req trigger.Request
	if err := json.Unmarshal(body, &req); err != nil {
		h.writeOpError(w, http.StatusBadRequest, &node.OpError{
			Kind:    node.KindValidation,
			Message: "malformed poll request",
			Detail:  err.Error(),
		})
		return
	}

	resp := h.trigger.Poll(r.Context(), req)
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"stats":  h.node.Stats(),
	})
}

// readBody reads the request body under the configured size limit
func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	var body []byte
	var err error
	if h.maxBodySize > 0 {
		body, err = io.ReadAll(io.LimitReader(r.Body, h.maxBodySize+1))
		if err == nil && int64(len(body)) > h.maxBodySize {
			h.writeOpError(w, http.StatusRequestEntityTooLarge, &node.OpError{
				Kind:    node.KindValidation,
				Message: "request body too large",
			})
			return nil, false
		}
	} else {
		body, err = io.ReadAll(r.Body)
	}
	if err != nil {
		h.writeOpError(w, http.StatusBadRequest, &node.OpError{
			Kind:    node.KindValidation,
			Message: "failed to read request body",
		})
		return nil, false
	}
	return body, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error().Err(err).Msg("failed to write response")
	}
}

func (h *Handler) writeOpError(w http.ResponseWriter, status int, opErr *node.OpError) {
	h.writeJSON(w, status, map[string]interface{}{"error": opErr})
}

// writeError writes a plain HTTP error
func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	http.Error(w, message, status)
}
