package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/handmouse/internal/app"
)

// Runtime is the part of the capture loop the API controls.
type Runtime interface {
	Status() app.Status
	SetEnabled(enabled bool)
}

// StatusHandler serves GET /api/status.
type StatusHandler struct {
	runtime Runtime
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(rt Runtime) *StatusHandler {
	return &StatusHandler{runtime: rt}
}

func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, h.runtime.Status())
}

// TrackingHandler pauses and resumes the capture loop.
type TrackingHandler struct {
	runtime Runtime
}

// NewTrackingHandler creates a new TrackingHandler.
func NewTrackingHandler(rt Runtime) *TrackingHandler {
	return &TrackingHandler{runtime: rt}
}

type trackingRequest struct {
	Enabled *bool `json:"enabled"`
}

// ServeHTTP handles PUT /api/tracking with {"enabled": bool} and replies
// with the resulting status.
func (h *TrackingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req trackingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Enabled == nil {
		writeError(w, http.StatusBadRequest, "enabled is required")
		return
	}

	h.runtime.SetEnabled(*req.Enabled)
	writeJSON(w, http.StatusOK, h.runtime.Status())
}
