package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ayusman/nritya/internal/shape"
	"github.com/ayusman/nritya/internal/state"
)

// ShapeHandler handles shape listing and selection.
//
//	GET  /api/shapes      list shapes in cycle order
//	POST /api/shape       select {"shape": "HEART"}
//	POST /api/shape/next  advance to the next shape
type ShapeHandler struct {
	ctl Controller
}

// NewShapeHandler creates a ShapeHandler.
func NewShapeHandler(ctl Controller) *ShapeHandler {
	return &ShapeHandler{ctl: ctl}
}

type shapeInfo struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	Key   int    `json:"key"`
}

type listShapesResponse struct {
	Shapes  []shapeInfo `json:"shapes"`
	Current string      `json:"current"`
}

type selectShapeRequest struct {
	Shape string `json:"shape"`
}

type shapeResponse struct {
	Shape string `json:"shape"`
	Label string `json:"label"`
}

// ServeHTTP routes by path.
func (h *ShapeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch strings.TrimSuffix(r.URL.Path, "/") {
	case "/api/shapes":
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		h.list(w, r)
	case "/api/shape":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}
		h.selectShape(w, r)
	case "/api/shape/next":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, http.MethodPost)
			return
		}
		h.next(w, r)
	default:
		writeError(w, http.StatusNotFound, "Not found")
	}
}

// list handles GET /api/shapes.
func (h *ShapeHandler) list(w http.ResponseWriter, r *http.Request) {
	resp := listShapesResponse{
		Shapes:  make([]shapeInfo, 0, len(shape.Order)),
		Current: h.ctl.Snapshot().Shape.String(),
	}
	for i, t := range shape.Order {
		resp.Shapes = append(resp.Shapes, shapeInfo{Name: t.String(), Label: t.Label(), Key: i + 1})
	}
	writeJSON(w, http.StatusOK, resp)
}

// selectShape handles POST /api/shape.
func (h *ShapeHandler) selectShape(w http.ResponseWriter, r *http.Request) {
	var req selectShapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Shape == "" {
		writeError(w, http.StatusBadRequest, "Shape is required")
		return
	}

	t, err := shape.Parse(req.Shape)
	if err == nil {
		err = h.ctl.Select(t, state.SourceAPI)
	}
	if err != nil {
		if errors.Is(err, shape.ErrUnknownShape) {
			writeError(w, http.StatusBadRequest, "Unknown shape")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to select shape")
		return
	}

	writeJSON(w, http.StatusOK, shapeResponse{Shape: t.String(), Label: t.Label()})
}

// next handles POST /api/shape/next.
func (h *ShapeHandler) next(w http.ResponseWriter, r *http.Request) {
	t := h.ctl.Advance(state.SourceAPI)
	writeJSON(w, http.StatusOK, shapeResponse{Shape: t.String(), Label: t.Label()})
}
