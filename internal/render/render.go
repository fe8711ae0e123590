// Package render defines the boundary between the particle engine and the
// surfaces that draw it.
package render

import (
	"time"

	"github.com/chewxy/math32"
)

// Frame is one tick's worth of renderable state. The slices alias the
// engine's live buffers and are only valid until the next tick.
type Frame struct {
	// Positions holds xyz triples, length 3N, before perturbation.
	Positions []float32
	// Colors holds rgb triples in [0, 1], length 3N.
	Colors []float32
	// Sizes holds per-particle size multipliers, length N.
	Sizes []float32
	// Scale is the uniform scale applied to the whole cloud.
	Scale float32
	// Elapsed is the time since the engine started, used by Perturb.
	Elapsed time.Duration
}

// Count returns the number of particles in the frame.
func (f Frame) Count() int {
	return len(f.Sizes)
}

// Sink consumes frames. Implementations must not retain the frame slices.
type Sink interface {
	Render(f Frame) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(f Frame) error

// Render calls fn(f).
func (fn SinkFunc) Render(f Frame) error {
	return fn(f)
}

// Perturbation amplitude and frequencies of the idle wobble.
const (
	wobbleAmp   = 0.03
	wobbleFreqX = 0.5
	wobbleFreqY = 0.3
	wobbleSpace = 0.2
)

// Perturb applies the time-varying wobble to a single position. The x offset
// uses the original y and the y offset uses the already shifted x.
func Perturb(x, y float32, elapsed time.Duration) (float32, float32) {
	t := float32(elapsed.Seconds())
	x += math32.Sin(t*wobbleFreqX+y*wobbleSpace) * wobbleAmp
	y += math32.Cos(t*wobbleFreqY+x*wobbleSpace) * wobbleAmp
	return x, y
}

// PerturbInto writes the perturbed positions of f into dst and returns it.
// dst is reallocated when its length differs from f.Positions.
func PerturbInto(dst []float32, f Frame) []float32 {
	if len(dst) != len(f.Positions) {
		dst = make([]float32, len(f.Positions))
	}
	for i := 0; i+2 < len(f.Positions); i += 3 {
		dst[i], dst[i+1] = Perturb(f.Positions[i], f.Positions[i+1], f.Elapsed)
		dst[i+2] = f.Positions[i+2]
	}
	return dst
}
