package server

import (
	"bytes"
	"context"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/nritya/internal/app"
	"github.com/ayusman/nritya/internal/config"
	"github.com/ayusman/nritya/internal/logging"
	"github.com/ayusman/nritya/internal/render"
	"github.com/ayusman/nritya/internal/store"
)

const integrationCount = 500

func newIntegrationApp(t *testing.T) *app.App {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })

	cfg := config.Default()
	cfg.Particles.Count = integrationCount
	cfg.Camera.Enabled = false

	a, err := app.New(app.Options{
		Config: cfg,
		Store:  s,
		Rand:   rand.New(rand.NewPCG(7, 11)),
		Logger: logging.Nop(),
	})
	if err != nil {
		t.Fatalf("app.New() error = %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestAPI_ShapeWorkflow(t *testing.T) {
	a := newIntegrationApp(t)
	srv := New(Config{Controller: a, Logger: logging.Nop()})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	// 1. Select a shape
	resp, err := client.Post(ts.URL+"/api/shape", "application/json", bytes.NewBufferString(`{"shape": "heart"}`))
	if err != nil {
		t.Fatalf("POST /api/shape error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	resp.Body.Close()

	// 2. Advance
	resp, err = client.Post(ts.URL+"/api/shape/next", "application/json", nil)
	if err != nil {
		t.Fatalf("POST /api/shape/next error = %v", err)
	}
	var next struct {
		Shape string `json:"shape"`
	}
	json.NewDecoder(resp.Body).Decode(&next)
	resp.Body.Close()
	if next.Shape != "SNOW" {
		t.Errorf("next shape = %s, want SNOW", next.Shape)
	}

	// 3. State reflects the selection
	resp, _ = client.Get(ts.URL + "/api/state")
	var snap struct {
		Shape     string `json:"shape"`
		Particles int    `json:"particles"`
	}
	json.NewDecoder(resp.Body).Decode(&snap)
	resp.Body.Close()
	if snap.Shape != "SNOW" {
		t.Errorf("state shape = %s, want SNOW", snap.Shape)
	}
	if snap.Particles != integrationCount {
		t.Errorf("particles = %d, want %d", snap.Particles, integrationCount)
	}

	// 4. Events are recorded newest first
	var listed struct {
		Events []struct {
			From   string `json:"from"`
			To     string `json:"to"`
			Source string `json:"source"`
		} `json:"events"`
	}
	deadline := time.Now().Add(5 * time.Second)
	for len(listed.Events) < 2 && time.Now().Before(deadline) {
		resp, _ = client.Get(ts.URL + "/api/events?limit=10")
		json.NewDecoder(resp.Body).Decode(&listed)
		resp.Body.Close()
		if len(listed.Events) < 2 {
			time.Sleep(10 * time.Millisecond)
		}
	}
	if len(listed.Events) != 2 {
		t.Fatalf("events = %d, want 2", len(listed.Events))
	}
	if listed.Events[0].To != "SNOW" || listed.Events[1].To != "HEART" {
		t.Errorf("events = %+v, want SNOW then HEART", listed.Events)
	}
	if listed.Events[0].Source != "api" {
		t.Errorf("source = %s, want api", listed.Events[0].Source)
	}

	// 5. Toggle UI
	resp, _ = client.Post(ts.URL+"/api/ui/toggle", "application/json", nil)
	var ui struct {
		ShowUI bool `json:"show_ui"`
	}
	json.NewDecoder(resp.Body).Decode(&ui)
	resp.Body.Close()
	if ui.ShowUI {
		t.Error("expected UI to be hidden after toggle")
	}
}

func TestAPI_FrameStream(t *testing.T) {
	a := newIntegrationApp(t)
	hub := NewFrameHub(60, logging.Nop())
	srv := New(Config{Controller: a, Frames: hub, Logger: logging.Nop()})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.Run(ctx, hub)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/frames"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage() error = %v", err)
	}
	f, err := render.Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if f.Count() != integrationCount {
		t.Errorf("Count() = %d, want %d", f.Count(), integrationCount)
	}
	if f.Scale <= 0 {
		t.Errorf("Scale = %v, want positive", f.Scale)
	}
}
