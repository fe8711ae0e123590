package tray

import (
	"testing"

	"github.com/ayusman/nritya/internal/app"
	"github.com/ayusman/nritya/internal/shape"
	"github.com/ayusman/nritya/internal/state"
)

type fakeController struct {
	snap     app.Snapshot
	gestures bool
	selected []shape.Type
	sources  []state.Source
}

func (f *fakeController) Select(t shape.Type, src state.Source) error {
	f.selected = append(f.selected, t)
	f.sources = append(f.sources, src)
	f.snap.Shape = t
	return nil
}

func (f *fakeController) ToggleUI() bool {
	f.snap.ShowUI = !f.snap.ShowUI
	return f.snap.ShowUI
}

func (f *fakeController) SetGesturesEnabled(enabled bool) { f.gestures = enabled }
func (f *fakeController) GesturesEnabled() bool           { return f.gestures }
func (f *fakeController) Snapshot() app.Snapshot          { return f.snap }

var _ Controller = (*app.App)(nil)

func TestNew(t *testing.T) {
	tr := New(&fakeController{})
	if tr == nil {
		t.Fatal("New() returned nil")
	}
	if tr.menuShapes == nil {
		t.Error("menuShapes should be initialized")
	}
}

func TestTray_HandleSelect(t *testing.T) {
	ctl := &fakeController{}
	tr := New(ctl)

	tr.handleSelect(shape.Rose)

	if len(ctl.selected) != 1 || ctl.selected[0] != shape.Rose {
		t.Fatalf("selected = %v, want [ROSE]", ctl.selected)
	}
	if ctl.sources[0] != state.SourceTray {
		t.Errorf("source = %q, want %q", ctl.sources[0], state.SourceTray)
	}
}

func TestTray_HandleToggleUI(t *testing.T) {
	ctl := &fakeController{snap: app.Snapshot{ShowUI: true}}
	tr := New(ctl)

	tr.handleToggleUI()
	if ctl.snap.ShowUI {
		t.Error("expected UI hidden after toggle")
	}
	tr.handleToggleUI()
	if !ctl.snap.ShowUI {
		t.Error("expected UI shown after second toggle")
	}
}

func TestTray_HandleToggleGestures(t *testing.T) {
	ctl := &fakeController{gestures: true}
	tr := New(ctl)

	tr.handleToggleGestures()
	if ctl.gestures {
		t.Error("expected gestures paused")
	}
	tr.handleToggleGestures()
	if !ctl.gestures {
		t.Error("expected gestures resumed")
	}
}

func TestTray_OnQuit(t *testing.T) {
	tr := New(&fakeController{})
	called := false
	tr.OnQuit(func() { called = true })

	tr.mu.RLock()
	cb := tr.onQuit
	tr.mu.RUnlock()
	cb()

	if !called {
		t.Error("expected quit callback to be stored")
	}
}

func TestTitles(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"ui shown", uiTitle(true), "Hide UI"},
		{"ui hidden", uiTitle(false), "Show UI"},
		{"gestures on", gesturesTitle(true), "● Gestures on"},
		{"gestures paused", gesturesTitle(false), "○ Gestures paused"},
		{"camera ready", cameraTitle(true), "Camera: ready"},
		{"camera not ready", cameraTitle(false), "Camera: not ready"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}
