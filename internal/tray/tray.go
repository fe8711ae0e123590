// Package tray provides a system tray menu for choosing shapes.
package tray

import (
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/nritya/internal/app"
	"github.com/ayusman/nritya/internal/shape"
	"github.com/ayusman/nritya/internal/state"
)

// Controller is the application surface the tray drives.
type Controller interface {
	Select(t shape.Type, src state.Source) error
	ToggleUI() bool
	SetGesturesEnabled(enabled bool)
	GesturesEnabled() bool
	Snapshot() app.Snapshot
}

// Tray represents the system tray application.
type Tray struct {
	ctl    Controller
	onQuit func()
	mu     sync.RWMutex

	// Menu items stored for later updates
	menuShapes   map[shape.Type]*systray.MenuItem
	menuUI       *systray.MenuItem
	menuGestures *systray.MenuItem
	menuCamera   *systray.MenuItem
}

// New creates a new Tray driving ctl.
func New(ctl Controller) *Tray {
	return &Tray{
		ctl:        ctl,
		menuShapes: make(map[shape.Type]*systray.MenuItem),
	}
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Register starts the tray without taking over the main loop, for use next
// to another UI that owns it.
func (t *Tray) Register() {
	systray.Register(t.onReady, t.onExit)
}

// Quit removes the tray icon.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Nritya")
	systray.SetTooltip("Nritya particle shapes")

	snap := t.ctl.Snapshot()

	t.mu.Lock()
	clicks := make(chan shape.Type)
	for _, s := range shape.Order {
		item := systray.AddMenuItemCheckbox(s.Label(), "Show "+s.String(), s == snap.Shape)
		t.menuShapes[s] = item
		go func(s shape.Type, item *systray.MenuItem) {
			for range item.ClickedCh {
				clicks <- s
			}
		}(s, item)
	}
	systray.AddSeparator()

	t.menuUI = systray.AddMenuItem(uiTitle(snap.ShowUI), "Toggle the on-screen menu")
	t.menuGestures = systray.AddMenuItem(gesturesTitle(t.ctl.GesturesEnabled()), "Pause or resume hand gestures")
	t.menuCamera = systray.AddMenuItem(cameraTitle(snap.CameraReady), "Camera status")
	t.menuCamera.Disable()
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Nritya")
	t.mu.Unlock()

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case s := <-clicks:
				t.handleSelect(s)
			case <-t.menuUI.ClickedCh:
				t.handleToggleUI()
			case <-t.menuGestures.ClickedCh:
				t.handleToggleGestures()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

// handleSelect handles a shape menu item click.
func (t *Tray) handleSelect(s shape.Type) {
	if err := t.ctl.Select(s, state.SourceTray); err != nil {
		return
	}
	t.Refresh()
}

// handleToggleUI handles the UI menu item click.
func (t *Tray) handleToggleUI() {
	t.ctl.ToggleUI()
	t.Refresh()
}

// handleToggleGestures handles the gestures menu item click.
func (t *Tray) handleToggleGestures() {
	t.ctl.SetGesturesEnabled(!t.ctl.GesturesEnabled())
	t.Refresh()
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// Refresh updates the menu from the current application state. It is safe to
// call before the tray is ready.
func (t *Tray) Refresh() {
	snap := t.ctl.Snapshot()
	gestures := t.ctl.GesturesEnabled()

	t.mu.RLock()
	defer t.mu.RUnlock()

	for s, item := range t.menuShapes {
		if s == snap.Shape {
			item.Check()
		} else {
			item.Uncheck()
		}
	}
	if t.menuUI != nil {
		t.menuUI.SetTitle(uiTitle(snap.ShowUI))
	}
	if t.menuGestures != nil {
		t.menuGestures.SetTitle(gesturesTitle(gestures))
	}
	if t.menuCamera != nil {
		t.menuCamera.SetTitle(cameraTitle(snap.CameraReady))
	}
}

func uiTitle(show bool) string {
	if show {
		return "Hide UI"
	}
	return "Show UI"
}

func gesturesTitle(enabled bool) string {
	if enabled {
		return "● Gestures on"
	}
	return "○ Gestures paused"
}

func cameraTitle(ready bool) string {
	if ready {
		return "Camera: ready"
	}
	return "Camera: not ready"
}
