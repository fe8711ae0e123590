package gesture

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/nritya/internal/detector"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func sample(at time.Duration, hands ...detector.HandLandmarks) Sample {
	return Sample{Hands: hands, Timestamp: t0.Add(at)}
}

// handWithSpan returns a hand whose thumb-pinky distance is span and whose
// thumb-index distance is 0.3.
func handWithSpan(span float64) detector.HandLandmarks {
	var h detector.HandLandmarks
	h.Points[detector.ThumbTip] = detector.Point3D{X: 0.2, Y: 0.5}
	h.Points[detector.IndexTip] = detector.Point3D{X: 0.2, Y: 0.8}
	h.Points[detector.PinkyTip] = detector.Point3D{X: 0.2 + span, Y: 0.5}
	return h
}

func TestClassifier_InitialState(t *testing.T) {
	c := NewClassifier(DefaultThresholds())
	closed, last := c.State()
	assert.False(t, closed)
	assert.True(t, last.IsZero())
}

func TestClassifier_ClosedThenOpenTriggers(t *testing.T) {
	c := NewClassifier(DefaultThresholds())

	r := c.Process(sample(0, detector.FistLandmarks()))
	assert.False(t, r.Next)
	closed, _ := c.State()
	require.True(t, closed)

	r = c.Process(sample(100*time.Millisecond, detector.OpenPalmLandmarks()))
	assert.True(t, r.Next)
	assert.Equal(t, 1, r.Hands)

	closed, last := c.State()
	assert.False(t, closed)
	assert.Equal(t, t0.Add(100*time.Millisecond), last)
}

func TestClassifier_OpenWithoutCloseDoesNotTrigger(t *testing.T) {
	c := NewClassifier(DefaultThresholds())

	for i := 0; i < 5; i++ {
		r := c.Process(sample(time.Duration(i)*time.Second, detector.OpenPalmLandmarks()))
		assert.False(t, r.Next, "sample %d", i)
	}
}

func TestClassifier_CooldownSuppressesSecondTrigger(t *testing.T) {
	c := NewClassifier(DefaultThresholds())

	c.Process(sample(0, detector.FistLandmarks()))
	require.True(t, c.Process(sample(100*time.Millisecond, detector.OpenPalmLandmarks())).Next)

	// Second transition inside the cooldown window.
	c.Process(sample(300*time.Millisecond, detector.FistLandmarks()))
	r := c.Process(sample(600*time.Millisecond, detector.OpenPalmLandmarks()))
	assert.False(t, r.Next)

	closed, last := c.State()
	assert.False(t, closed, "open still releases the latch during cooldown")
	assert.Equal(t, t0.Add(100*time.Millisecond), last, "suppressed trigger keeps the previous time")

	// Exactly one cooldown after the first trigger.
	c.Process(sample(900*time.Millisecond, detector.FistLandmarks()))
	r = c.Process(sample(1100*time.Millisecond, detector.OpenPalmLandmarks()))
	assert.True(t, r.Next)
}

func TestClassifier_DeadZoneKeepsLatch(t *testing.T) {
	c := NewClassifier(DefaultThresholds())

	c.Process(sample(0, detector.FistLandmarks()))
	r := c.Process(sample(50*time.Millisecond, detector.RelaxedLandmarks()))
	assert.False(t, r.Next)
	closed, _ := c.State()
	assert.True(t, closed)

	r = c.Process(sample(100*time.Millisecond, detector.OpenPalmLandmarks()))
	assert.True(t, r.Next)
}

func TestClassifier_PinchWithWideSpan(t *testing.T) {
	c := NewClassifier(DefaultThresholds())

	// Closed and open at once: fires from a latched close, then latches again.
	c.Process(sample(0, detector.FistLandmarks()))
	r := c.Process(sample(100*time.Millisecond, detector.PinchLandmarks()))
	assert.True(t, r.Next)
	closed, _ := c.State()
	assert.True(t, closed)
}

func TestClassifier_NoHandsLeavesStateUnchanged(t *testing.T) {
	c := NewClassifier(DefaultThresholds())

	c.Process(sample(0, detector.FistLandmarks()))
	before, beforeLast := c.State()

	r := c.Process(sample(100 * time.Millisecond))
	assert.Equal(t, 1.0, r.Scale)
	assert.False(t, r.Next)
	assert.Equal(t, 0, r.Hands)

	after, afterLast := c.State()
	assert.Equal(t, before, after)
	assert.Equal(t, beforeLast, afterLast)

	// The latch survives the gap.
	assert.True(t, c.Process(sample(200*time.Millisecond, detector.OpenPalmLandmarks())).Next)
}

func TestClassifier_UsesFirstHandOnly(t *testing.T) {
	c := NewClassifier(DefaultThresholds())

	c.Process(sample(0, detector.OpenPalmLandmarks(), detector.FistLandmarks()))
	closed, _ := c.State()
	assert.False(t, closed)

	r := c.Process(sample(100*time.Millisecond, detector.FistLandmarks(), detector.OpenPalmLandmarks()))
	assert.False(t, r.Next)
	assert.Equal(t, 2, r.Hands)
	closed, _ = c.State()
	assert.True(t, closed)
}

func TestClassifier_Scale(t *testing.T) {
	tests := []struct {
		name string
		span float64
		want float64
	}{
		{"zero span", 0, 0.8},
		{"mid span", 0.3, 1.4},
		{"upper bound", 0.6, 2.0},
		{"clamped high", 0.7, 2.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(DefaultThresholds())
			r := c.Process(sample(0, handWithSpan(tt.span)))
			assert.InDelta(t, tt.want, r.Scale, 1e-9)
			assert.InDelta(t, tt.span, r.Span, 1e-9)
		})
	}
}

func TestClassifier_ScaleClampedLow(t *testing.T) {
	th := DefaultThresholds()
	th.ScaleBase = 0.1
	c := NewClassifier(th)

	r := c.Process(sample(0, handWithSpan(0.05)))
	assert.InDelta(t, 0.5, r.Scale, 1e-9)
}

func TestClassifier_ScaleAlwaysInRange(t *testing.T) {
	c := NewClassifier(DefaultThresholds())
	for i := 0; i <= 100; i++ {
		r := c.Process(sample(time.Duration(i)*time.Millisecond, handWithSpan(float64(i)/50)))
		assert.GreaterOrEqual(t, r.Scale, 0.5)
		assert.LessOrEqual(t, r.Scale, 2.0)
	}
}

func TestNewClassifier_ZeroThresholdsUseDefaults(t *testing.T) {
	c := NewClassifier(Thresholds{})
	assert.Equal(t, DefaultThresholds(), c.Thresholds())
}

func TestClassifier_Reset(t *testing.T) {
	c := NewClassifier(DefaultThresholds())
	c.Process(sample(0, detector.FistLandmarks()))
	c.Process(sample(100*time.Millisecond, detector.OpenPalmLandmarks()))
	c.Process(sample(200*time.Millisecond, detector.FistLandmarks()))

	c.Reset()
	closed, last := c.State()
	assert.False(t, closed)
	assert.True(t, last.IsZero())
}
