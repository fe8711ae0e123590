package particles

import (
	"errors"
	"math"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedScale float64

func (f fixedScale) ScaleFactor() float64 { return float64(f) }

func randomDistribution(r *rand.Rand, n int, span float32) Distribution {
	d := Distribution{
		Positions: make([]float32, 3*n),
		Colors:    make([]float32, 3*n),
	}
	for i := range d.Positions {
		d.Positions[i] = (r.Float32()*2 - 1) * span
		d.Colors[i] = r.Float32()
	}
	return d
}

func uniformSizes(n int) []float32 {
	sizes := make([]float32, n)
	for i := range sizes {
		sizes[i] = 0.75
	}
	return sizes
}

func TestNewStore_RejectsMismatchedLengths(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 1))
	d := randomDistribution(r, 10, 1)

	_, err := NewStore(d, uniformSizes(9))
	assert.True(t, errors.Is(err, ErrLengthMismatch))

	_, err = NewStore(Distribution{}, nil)
	assert.True(t, errors.Is(err, ErrLengthMismatch))
}

func TestStore_CurrentAndTargetStartEqual(t *testing.T) {
	r := rand.New(rand.NewPCG(2, 2))
	d := randomDistribution(r, 10, 5)

	s, err := NewStore(d, uniformSizes(10))
	require.NoError(t, err)

	assert.Equal(t, d.Positions, s.Current().Positions)
	assert.Equal(t, d.Positions, s.Target().Positions)

	// Current must not alias the caller's slices.
	s.Current().Positions[0] += 1
	assert.NotEqual(t, d.Positions[0], s.Current().Positions[0])
}

func TestStore_SetTarget(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 3))
	s, err := NewStore(randomDistribution(r, 10, 1), uniformSizes(10))
	require.NoError(t, err)

	before := s.Current().Clone()
	next := randomDistribution(r, 10, 1)
	require.NoError(t, s.SetTarget(next))

	assert.Equal(t, next.Positions, s.Target().Positions)
	assert.Equal(t, next.Colors, s.Target().Colors)
	assert.Equal(t, before, s.Current(), "SetTarget must not touch current")

	err = s.SetTarget(randomDistribution(r, 11, 1))
	assert.True(t, errors.Is(err, ErrLengthMismatch))
	assert.Equal(t, next.Positions, s.Target().Positions, "rejected target must not be applied")
}

func TestEngine_ConvergesToTarget(t *testing.T) {
	r := rand.New(rand.NewPCG(4, 4))
	const n = 1000
	start := randomDistribution(r, n, 1)
	target := randomDistribution(r, n, 1)

	s, err := NewStore(start, uniformSizes(n))
	require.NoError(t, err)
	require.NoError(t, s.SetTarget(target))

	e := NewEngine(s, nil, DefaultEngineConfig())
	for i := 0; i < 200; i++ {
		e.Tick()
	}

	cur := s.Current()
	for i := range cur.Positions {
		initial := math.Abs(float64(target.Positions[i] - start.Positions[i]))
		residual := math.Abs(float64(target.Positions[i] - cur.Positions[i]))
		if residual > 1e-6*math.Max(initial, 1) {
			t.Fatalf("position %d residual %g after 200 ticks (initial distance %g)", i, residual, initial)
		}
		if d := math.Abs(float64(target.Colors[i] - cur.Colors[i])); d > 1e-6 {
			t.Fatalf("color %d residual %g after 200 ticks", i, d)
		}
	}
}

func TestEngine_LargeDistancesConverge(t *testing.T) {
	r := rand.New(rand.NewPCG(5, 5))
	const n = 500
	s, err := NewStore(randomDistribution(r, n, 75), uniformSizes(n))
	require.NoError(t, err)
	target := randomDistribution(r, n, 75)
	require.NoError(t, s.SetTarget(target))

	e := NewEngine(s, nil, DefaultEngineConfig())
	for i := 0; i < 200; i++ {
		e.Tick()
	}

	assert.InDeltaSlice(t, target.Positions, s.Current().Positions, 1e-4)
}

func TestEngine_SingleStepIsExponential(t *testing.T) {
	start := Distribution{Positions: []float32{0, 10, -10}, Colors: []float32{0, 0, 0}}
	s, err := NewStore(start, uniformSizes(1))
	require.NoError(t, err)
	require.NoError(t, s.SetTarget(Distribution{Positions: []float32{100, 10, 10}, Colors: []float32{1, 1, 1}}))

	e := NewEngine(s, nil, DefaultEngineConfig())
	f := e.Tick()

	assert.InDeltaSlice(t, []float32{8, 10, -8.4}, f.Positions, 1e-5)
	assert.InDeltaSlice(t, []float32{0.08, 0.08, 0.08}, f.Colors, 1e-6)
	assert.Equal(t, s.Sizes(), f.Sizes)
}

func TestEngine_ScaleSmoothing(t *testing.T) {
	r := rand.New(rand.NewPCG(6, 6))
	s, err := NewStore(randomDistribution(r, 4, 1), uniformSizes(4))
	require.NoError(t, err)

	e := NewEngine(s, fixedScale(2), DefaultEngineConfig())
	f := e.Tick()
	assert.InDelta(t, 1.1, f.Scale, 1e-6)

	for i := 0; i < 300; i++ {
		f = e.Tick()
	}
	assert.InDelta(t, 2, f.Scale, 1e-5)
	assert.Equal(t, f.Scale, e.DisplayScale())
}

func TestEngine_NilScaleSourceIsNeutral(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 7))
	s, err := NewStore(randomDistribution(r, 4, 1), uniformSizes(4))
	require.NoError(t, err)

	e := NewEngine(s, nil, EngineConfig{})
	for i := 0; i < 10; i++ {
		assert.Equal(t, float32(1), e.Tick().Scale)
	}
}

func TestEngine_ConcurrentSetTarget(t *testing.T) {
	r := rand.New(rand.NewPCG(8, 8))
	const n = 200
	s, err := NewStore(randomDistribution(r, n, 1), uniformSizes(n))
	require.NoError(t, err)

	targets := make([]Distribution, 20)
	for i := range targets {
		targets[i] = randomDistribution(r, n, 1)
	}

	e := NewEngine(s, nil, DefaultEngineConfig())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for _, d := range targets {
			_ = s.SetTarget(d)
		}
	}()
	for i := 0; i < 100; i++ {
		f := e.Tick()
		require.Len(t, f.Positions, 3*n)
	}
	wg.Wait()
}
