// Package gesture turns hand landmark samples into a scale factor and
// next-shape triggers.
package gesture

import (
	"sync"
	"time"

	"github.com/ayusman/nritya/internal/detector"
)

// Thresholds holds the distances and timings that drive classification.
// Distances are in normalized image coordinates.
type Thresholds struct {
	// PinchClosed is the thumb-index distance below which the hand is closed.
	PinchClosed float64
	// SpanClosed is the thumb-pinky distance below which the hand is closed.
	SpanClosed float64
	// SpanOpen is the thumb-pinky distance above which the hand is open.
	SpanOpen float64
	// Cooldown is the minimum time between two triggers.
	Cooldown time.Duration

	// ScaleBase and ScaleGain map span to scale: base + gain*span.
	ScaleBase float64
	ScaleGain float64
	MinScale  float64
	MaxScale  float64
}

// DefaultThresholds returns the standard classification thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		PinchClosed: 0.06,
		SpanClosed:  0.15,
		SpanOpen:    0.25,
		Cooldown:    1000 * time.Millisecond,
		ScaleBase:   0.8,
		ScaleGain:   2.0,
		MinScale:    0.5,
		MaxScale:    2.0,
	}
}

// Sample is one observation from the hand detector.
type Sample struct {
	Hands     []detector.HandLandmarks
	Timestamp time.Time
}

// Result is the outcome of processing one Sample.
type Result struct {
	// Scale is the requested scale factor, 1.0 when no hand is visible.
	Scale float64
	// Next is true when the closed-then-open transition fired.
	Next bool
	// Hands is the number of hands in the sample.
	Hands int

	Pinch float64
	Span  float64
}

// Classifier detects a closed-then-open hand transition with a cooldown.
// Only the first hand of a sample is used.
type Classifier struct {
	th Thresholds

	mu          sync.Mutex
	isClosed    bool
	lastTrigger time.Time
}

// NewClassifier creates a Classifier. Zero-valued thresholds fall back to
// DefaultThresholds.
func NewClassifier(th Thresholds) *Classifier {
	def := DefaultThresholds()
	if th.PinchClosed <= 0 {
		th.PinchClosed = def.PinchClosed
	}
	if th.SpanClosed <= 0 {
		th.SpanClosed = def.SpanClosed
	}
	if th.SpanOpen <= 0 {
		th.SpanOpen = def.SpanOpen
	}
	if th.Cooldown <= 0 {
		th.Cooldown = def.Cooldown
	}
	if th.ScaleGain == 0 {
		th.ScaleBase, th.ScaleGain = def.ScaleBase, def.ScaleGain
	}
	if th.MinScale <= 0 || th.MaxScale < th.MinScale {
		th.MinScale, th.MaxScale = def.MinScale, def.MaxScale
	}
	return &Classifier{th: th}
}

// Thresholds returns the thresholds in use.
func (c *Classifier) Thresholds() Thresholds {
	return c.th
}

// Process classifies s and updates the closed/open state.
func (c *Classifier) Process(s Sample) Result {
	if len(s.Hands) == 0 {
		return Result{Scale: 1.0}
	}

	hand := &s.Hands[0]
	pinch := hand.PinchDistance()
	span := hand.SpanDistance()

	closed := pinch < c.th.PinchClosed || span < c.th.SpanClosed
	open := span > c.th.SpanOpen

	c.mu.Lock()
	defer c.mu.Unlock()

	fire := false
	if c.isClosed && open && (c.lastTrigger.IsZero() || s.Timestamp.Sub(c.lastTrigger) >= c.th.Cooldown) {
		fire = true
		c.lastTrigger = s.Timestamp
	}

	switch {
	case closed:
		c.isClosed = true
	case open:
		c.isClosed = false
	}

	return Result{
		Scale: c.scale(span),
		Next:  fire,
		Hands: len(s.Hands),
		Pinch: pinch,
		Span:  span,
	}
}

// State returns whether the hand is latched closed and the time of the last trigger.
func (c *Classifier) State() (closed bool, lastTrigger time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isClosed, c.lastTrigger
}

// Reset clears the latched state and trigger time.
func (c *Classifier) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.isClosed = false
	c.lastTrigger = time.Time{}
}

func (c *Classifier) scale(span float64) float64 {
	return min(max(c.th.ScaleBase+c.th.ScaleGain*span, c.th.MinScale), c.th.MaxScale)
}
