// Package state holds the values shared across the renderer, the gesture
// pipeline and the user-facing surfaces.
//
// Ownership:
//   - current shape: written by Select and Advance only
//   - scale factor: written by the gesture pipeline, read by the render tick
//   - UI visibility: written by the UI surfaces
//   - camera readiness: written by the gesture pipeline
package state

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/ayusman/nritya/internal/shape"
)

// Scale factor bounds and neutral value.
const (
	MinScale     = 0.5
	MaxScale     = 2.0
	NeutralScale = 1.0
)

// Source records who requested a shape change.
type Source string

const (
	SourceUI      Source = "ui"
	SourceGesture Source = "gesture"
	SourceAPI     Source = "api"
	SourceTray    Source = "tray"
	SourceRestore Source = "restore"
)

// Change describes a shape selection.
type Change struct {
	From   shape.Type
	To     shape.Type
	Source Source
}

// State is the shared store. The zero value is not usable; call New.
type State struct {
	mu          sync.Mutex
	current     shape.Type
	subscribers []func(Change)

	scale       atomic.Uint64
	showUI      atomic.Bool
	cameraReady atomic.Bool
}

// New creates a State showing initial with a neutral scale factor and the UI visible.
func New(initial shape.Type) *State {
	if !initial.Valid() {
		initial = shape.Order[0]
	}
	s := &State{current: initial}
	s.scale.Store(math.Float64bits(NeutralScale))
	s.showUI.Store(true)
	return s
}

// Subscribe registers fn to be called after every selection, including
// reselecting the current shape. Callbacks run on the caller's goroutine
// after the lock is released.
func (s *State) Subscribe(fn func(Change)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Current returns the selected shape.
func (s *State) Current() shape.Type {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Select jumps directly to t. Any shape may be selected from any other.
// Selecting the current shape notifies nobody.
func (s *State) Select(t shape.Type, src Source) error {
	if !t.Valid() {
		return shape.ErrUnknownShape
	}
	s.set(func(shape.Type) shape.Type { return t }, src)
	return nil
}

// Advance moves to the next shape in cycle order and returns it.
func (s *State) Advance(src Source) shape.Type {
	return s.set(shape.Type.Next, src).To
}

func (s *State) set(next func(shape.Type) shape.Type, src Source) Change {
	s.mu.Lock()
	c := Change{From: s.current, Source: src}
	c.To = next(s.current)
	if c.To == c.From {
		s.mu.Unlock()
		return c
	}
	s.current = c.To
	subs := append([]func(Change){}, s.subscribers...)
	s.mu.Unlock()

	// Notify outside the lock to prevent deadlocks
	for _, fn := range subs {
		fn(c)
	}
	return c
}

// ScaleFactor returns the gesture-driven target scale.
func (s *State) ScaleFactor() float64 {
	return math.Float64frombits(s.scale.Load())
}

// SetScaleFactor stores f clamped to [MinScale, MaxScale].
func (s *State) SetScaleFactor(f float64) {
	if math.IsNaN(f) {
		f = NeutralScale
	}
	f = min(max(f, MinScale), MaxScale)
	s.scale.Store(math.Float64bits(f))
}

// ShowUI reports whether the menu overlay is visible.
func (s *State) ShowUI() bool {
	return s.showUI.Load()
}

// SetShowUI sets the menu overlay visibility.
func (s *State) SetShowUI(v bool) {
	s.showUI.Store(v)
}

// ToggleUI flips the menu overlay visibility and returns the new value.
func (s *State) ToggleUI() bool {
	for {
		old := s.showUI.Load()
		if s.showUI.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// CameraReady reports whether the gesture pipeline is running.
func (s *State) CameraReady() bool {
	return s.cameraReady.Load()
}

// SetCameraReady records whether the gesture pipeline is running.
func (s *State) SetCameraReady(v bool) {
	s.cameraReady.Store(v)
}
