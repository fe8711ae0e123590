package server

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/nritya/internal/render"
)

// DefaultStreamFPS caps how often frames are pushed to stream clients.
const DefaultStreamFPS = 30

const writeWait = 2 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// FrameHub is a render.Sink that streams encoded frames to WebSocket clients.
// Each client holds at most one pending frame; slow clients skip frames.
type FrameHub struct {
	interval time.Duration
	logger   *slog.Logger

	mu      sync.RWMutex
	clients map[*frameClient]struct{}
	closed  bool
	done    chan struct{}

	// last is only touched by Render, which the render loop calls serially.
	last time.Time
}

type frameClient struct {
	send chan []byte
}

// NewFrameHub creates a hub pushing at most maxFPS frames per second.
func NewFrameHub(maxFPS int, logger *slog.Logger) *FrameHub {
	if maxFPS <= 0 {
		maxFPS = DefaultStreamFPS
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FrameHub{
		interval: time.Second / time.Duration(maxFPS),
		logger:   logger,
		clients:  make(map[*frameClient]struct{}),
		done:     make(chan struct{}),
	}
}

// Render encodes f and queues it for every client. It never blocks on the
// network and skips encoding when nobody is connected.
func (h *FrameHub) Render(f render.Frame) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.clients) == 0 {
		return nil
	}
	now := time.Now()
	if now.Sub(h.last) < h.interval {
		return nil
	}
	h.last = now

	msg := render.Encode(f)
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			// Replace the stale pending frame.
			select {
			case <-c.send:
			default:
			}
			select {
			case c.send <- msg:
			default:
			}
		}
	}
	return nil
}

// Clients returns the number of connected stream clients.
func (h *FrameHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects all clients and rejects new ones.
func (h *FrameHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	close(h.done)
}

// ServeHTTP upgrades the request and streams binary frames until the client
// disconnects or the hub is closed.
func (h *FrameHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade", slog.Any("error", err))
		return
	}
	defer conn.Close()

	c := &frameClient{send: make(chan []byte, 1)}
	if !h.add(c) {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
		return
	}
	defer h.remove(c)

	// Reads only detect disconnects; clients send nothing meaningful.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case <-h.done:
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
				time.Now().Add(writeWait))
			return
		case msg := <-c.send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
				return
			}
		}
	}
}

func (h *FrameHub) add(c *frameClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *FrameHub) remove(c *frameClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}
