package api

import (
	"net/http"
	"strconv"

	"github.com/ayusman/nritya/internal/store"
)

// StateHandler serves GET /api/state.
type StateHandler struct {
	ctl Controller
}

// NewStateHandler creates a StateHandler.
func NewStateHandler(ctl Controller) *StateHandler {
	return &StateHandler{ctl: ctl}
}

func (h *StateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, h.ctl.Snapshot())
}

// UIHandler serves POST /api/ui/toggle.
type UIHandler struct {
	ctl Controller
}

// NewUIHandler creates a UIHandler.
func NewUIHandler(ctl Controller) *UIHandler {
	return &UIHandler{ctl: ctl}
}

type uiResponse struct {
	ShowUI bool `json:"show_ui"`
}

func (h *UIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	writeJSON(w, http.StatusOK, uiResponse{ShowUI: h.ctl.ToggleUI()})
}

// MaxEventLimit caps the limit query parameter of /api/events.
const MaxEventLimit = 500

// EventsHandler serves GET /api/events?limit=n.
type EventsHandler struct {
	ctl Controller
}

// NewEventsHandler creates an EventsHandler.
func NewEventsHandler(ctl Controller) *EventsHandler {
	return &EventsHandler{ctl: ctl}
}

type listEventsResponse struct {
	Events []*store.ShapeEvent `json:"events"`
}

func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	limit := store.DefaultEventLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, MaxEventLimit)
	}

	events, err := h.ctl.Events(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}
	writeJSON(w, http.StatusOK, listEventsResponse{Events: events})
}
