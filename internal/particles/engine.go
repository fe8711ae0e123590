package particles

import (
	"time"

	"github.com/ayusman/nritya/internal/render"
)

// Blend rates.
const (
	// DefaultLerpSpeed is the fraction of the remaining distance each element
	// moves toward its target per tick.
	DefaultLerpSpeed = 0.08
	// DefaultScaleSmoothing is the per-tick smoothing factor for the cloud scale.
	DefaultScaleSmoothing = 0.1
)

// ScaleSource provides the target scale factor the engine smooths toward.
type ScaleSource interface {
	ScaleFactor() float64
}

// EngineConfig holds the blend rates of an Engine.
type EngineConfig struct {
	LerpSpeed      float32
	ScaleSmoothing float32
}

// DefaultEngineConfig returns the standard blend rates.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		LerpSpeed:      DefaultLerpSpeed,
		ScaleSmoothing: DefaultScaleSmoothing,
	}
}

// Engine advances the current distribution toward the target once per tick.
// It is not safe for concurrent use; a single render loop owns it.
type Engine struct {
	store  *Store
	scale  ScaleSource
	config EngineConfig

	displayScale float32
	start        time.Time
	now          func() time.Time
}

// NewEngine creates an Engine over store. The scale source may be nil, in
// which case the target scale is always 1.
func NewEngine(store *Store, scale ScaleSource, config EngineConfig) *Engine {
	if config.LerpSpeed <= 0 || config.LerpSpeed > 1 {
		config.LerpSpeed = DefaultLerpSpeed
	}
	if config.ScaleSmoothing <= 0 || config.ScaleSmoothing > 1 {
		config.ScaleSmoothing = DefaultScaleSmoothing
	}
	return &Engine{
		store:        store,
		scale:        scale,
		config:       config,
		displayScale: 1,
		start:        time.Now(),
		now:          time.Now,
	}
}

// Tick moves every position and color component a fixed fraction of the way
// to its target, smooths the display scale, and returns the frame to render.
// Convergence is exponential and never checked; Tick always does the full pass.
func (e *Engine) Tick() render.Frame {
	cur := e.store.Current()
	tgt := e.store.Target()
	k := e.config.LerpSpeed

	for i := range cur.Positions {
		cur.Positions[i] += (tgt.Positions[i] - cur.Positions[i]) * k
		cur.Colors[i] += (tgt.Colors[i] - cur.Colors[i]) * k
	}

	target := float32(1)
	if e.scale != nil {
		target = float32(e.scale.ScaleFactor())
	}
	e.displayScale += (target - e.displayScale) * e.config.ScaleSmoothing

	return render.Frame{
		Positions: cur.Positions,
		Colors:    cur.Colors,
		Sizes:     e.store.Sizes(),
		Scale:     e.displayScale,
		Elapsed:   e.now().Sub(e.start),
	}
}

// DisplayScale returns the smoothed scale of the last tick.
func (e *Engine) DisplayScale() float32 {
	return e.displayScale
}
