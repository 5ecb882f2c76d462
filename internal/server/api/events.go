package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/ayusman/handmouse/internal/store"
)

// MaxListLimit bounds the limit query parameter.
const MaxListLimit = 1000

// EventsHandler serves the session event journal.
type EventsHandler struct {
	store *store.Store
}

// NewEventsHandler creates a new EventsHandler with the given store.
func NewEventsHandler(s *store.Store) *EventsHandler {
	return &EventsHandler{store: s}
}

// ServeHTTP routes /api/events and /api/events/{id}.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/events")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodDelete:
			h.clear(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.get(w, r, path)
}

type listEventsResponse struct {
	Events []*store.Event `json:"events"`
}

// list handles GET /api/events?limit=n, newest first.
func (h *EventsHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := store.DefaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, MaxListLimit)
	}

	events, err := h.store.Events().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list events")
		return
	}
	if events == nil {
		events = []*store.Event{}
	}

	writeJSON(w, http.StatusOK, listEventsResponse{Events: events})
}

// get handles GET /api/events/{id}.
func (h *EventsHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	e, err := h.store.Events().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get event")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// clear handles DELETE /api/events.
func (h *EventsHandler) clear(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Events().Clear(); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to clear events")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CountsHandler serves per-label event counts.
type CountsHandler struct {
	store *store.Store
}

// NewCountsHandler creates a new CountsHandler with the given store.
func NewCountsHandler(s *store.Store) *CountsHandler {
	return &CountsHandler{store: s}
}

type countsResponse struct {
	Counts map[string]int `json:"counts"`
}

// ServeHTTP handles GET /api/counts.
func (h *CountsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	counts, err := h.store.Events().CountByLabel()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count events")
		return
	}

	writeJSON(w, http.StatusOK, countsResponse{Counts: counts})
}
