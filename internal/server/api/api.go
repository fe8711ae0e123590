// Package api provides the HTTP handlers for shape selection, application
// state and shape-change history.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/ayusman/nritya/internal/app"
	"github.com/ayusman/nritya/internal/shape"
	"github.com/ayusman/nritya/internal/state"
	"github.com/ayusman/nritya/internal/store"
)

// Controller is the application surface the handlers drive. *app.App
// implements it.
type Controller interface {
	Snapshot() app.Snapshot
	Select(t shape.Type, src state.Source) error
	Advance(src state.Source) shape.Type
	ToggleUI() bool
	Events(limit int) ([]*store.ShapeEvent, error)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// methodNotAllowed writes a 405 listing the allowed method.
func methodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
}
