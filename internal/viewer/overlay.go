package viewer

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// FadeDuration is how long the overlay takes to fade in or out, in seconds.
const FadeDuration = 0.5

// overlay tracks the opacity of the menu and hint text.
type overlay struct {
	visible bool
	alpha   float32
	tween   *gween.Tween
}

func newOverlay(visible bool) *overlay {
	o := &overlay{visible: visible}
	if visible {
		o.alpha = 1
	}
	return o
}

// SetVisible starts a fade toward the new visibility from the current alpha.
// Repeating the current visibility is a no-op.
func (o *overlay) SetVisible(v bool) {
	if v == o.visible {
		return
	}
	o.visible = v
	to := float32(0)
	if v {
		to = 1
	}
	o.tween = gween.New(o.alpha, to, FadeDuration, ease.OutQuad)
}

// Update advances the fade by dt seconds and returns the alpha in [0, 1].
func (o *overlay) Update(dt float32) float32 {
	if o.tween == nil {
		return o.alpha
	}
	val, done := o.tween.Update(dt)
	o.alpha = min(max(val, 0), 1)
	if done {
		o.tween = nil
	}
	return o.alpha
}

// Alpha returns the current opacity.
func (o *overlay) Alpha() float32 {
	return o.alpha
}
