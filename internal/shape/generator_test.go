package shape

import (
	"math/rand/v2"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGenerator(t *testing.T, seed uint64) *Generator {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Rand = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	g, err := NewGenerator(cfg)
	require.NoError(t, err)
	return g
}

func TestGenerate_LengthInvariant(t *testing.T) {
	g := newTestGenerator(t, 1)

	for _, s := range Order {
		t.Run(s.String(), func(t *testing.T) {
			for round := 0; round < 3; round++ {
				d := g.Generate(s)
				assert.Len(t, d.Positions, 3*DefaultCount)
				assert.Len(t, d.Colors, 3*DefaultCount)
				assert.True(t, d.Valid(DefaultCount))
			}
		})
	}
}

func TestGenerate_ColorsInUnitRange(t *testing.T) {
	g := newTestGenerator(t, 2)

	for _, s := range Order {
		colors := g.Colors(s)
		for i, c := range colors {
			if c < 0 || c > 1 {
				t.Fatalf("%s: color component %d = %f, want within [0, 1]", s, i, c)
			}
		}
	}
}

func TestGenerate_SmallCount(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Count = 500
	cfg.Rand = rand.New(rand.NewPCG(3, 3))
	g, err := NewGenerator(cfg)
	require.NoError(t, err)

	for _, s := range Order {
		d := g.Generate(s)
		assert.True(t, d.Valid(500), "%s should produce 500 particles", s)
	}
}

func TestGenerate_UnknownShapeRendersText(t *testing.T) {
	g := newTestGenerator(t, 4)

	pos := g.Positions(Type(42))
	require.Len(t, pos, 3*DefaultCount)

	for i := 2; i < len(pos); i += 3 {
		assert.Zero(t, pos[i], "text silhouette lies in the z=0 plane")
	}
}

func TestGenerate_SeededIsReproducible(t *testing.T) {
	a := newTestGenerator(t, 7)
	b := newTestGenerator(t, 7)

	for _, s := range []Type{Heart, Fireworks, Snow} {
		assert.Equal(t, a.Positions(s), b.Positions(s), "%s positions", s)
		assert.Equal(t, a.Colors(s), b.Colors(s), "%s colors", s)
	}
}

func TestFlatten_PadsCyclically(t *testing.T) {
	pts := []mgl32.Vec3{{1, 2, 3}, {4, 5, 6}}

	out := flatten(pts, 5)

	want := []float32{1, 2, 3, 4, 5, 6, 1, 2, 3, 4, 5, 6, 1, 2, 3}
	assert.Equal(t, want, out)
}

func TestFlatten_ClipsExtraPoints(t *testing.T) {
	pts := []mgl32.Vec3{{1, 1, 1}, {2, 2, 2}, {3, 3, 3}}

	out := flatten(pts, 2)

	assert.Equal(t, []float32{1, 1, 1, 2, 2, 2}, out)
}

func TestFlatten_EmptyInput(t *testing.T) {
	out := flatten(nil, 4)
	assert.Equal(t, make([]float32, 12), out)
}

func TestText_SilhouetteIsCentered(t *testing.T) {
	g := newTestGenerator(t, 5)

	g.mu.Lock()
	pts := g.textPoints("HI")
	g.mu.Unlock()
	require.NotEmpty(t, pts)

	var sumX, sumY float32
	for _, p := range pts {
		sumX += p.X()
		sumY += p.Y()
	}
	n := float32(len(pts))
	assert.InDelta(t, 0, sumX/n, 5, "glyphs should be centered horizontally")
	assert.InDelta(t, 0, sumY/n, 5, "glyphs should be centered vertically")

	// Canvas is 1024px mapped at 0.05 units per pixel.
	for _, p := range pts {
		assert.LessOrEqual(t, p.X(), float32(25.6))
		assert.GreaterOrEqual(t, p.X(), float32(-25.6))
	}
}

func TestText_MissingGlyphsUseFallback(t *testing.T) {
	g := newTestGenerator(t, 6)

	// Go Bold has no CJK glyphs, so the default text falls back.
	assert.False(t, g.hasGlyphs(DefaultConfig().Text))
	assert.True(t, g.hasGlyphs(DefaultConfig().FallbackText))

	g.mu.Lock()
	pts := g.textPoints(DefaultConfig().Text)
	fallback := g.textPoints(DefaultConfig().FallbackText)
	g.mu.Unlock()
	assert.Equal(t, fallback, pts)
}

func TestHeart_PointsFollowCurve(t *testing.T) {
	g := newTestGenerator(t, 8)
	pos := g.Positions(Heart)

	for i := 0; i < DefaultCount; i++ {
		x, y, z := pos[i*3], pos[i*3+1], pos[i*3+2]
		assert.LessOrEqual(t, abs(x), float32(16*0.8+1e-3))
		assert.LessOrEqual(t, abs(y), float32(21*0.8+1e-3))
		assert.LessOrEqual(t, abs(z), float32(1))
	}
}

func TestFireworks_ColorBands(t *testing.T) {
	g := newTestGenerator(t, 9)
	colors := g.Colors(Fireworks)

	// First burst is red: red channel dominates.
	for i := 0; i < fwBurst1; i += 97 {
		r, gg, b := colors[i*3], colors[i*3+1], colors[i*3+2]
		assert.Greater(t, r, gg, "index %d", i)
		assert.Greater(t, r, b, "index %d", i)
	}
	// Second burst is cyan: red channel is the weakest.
	for i := fwBurst1; i < fwBurst1+fwBurst2; i += 97 {
		r, gg, b := colors[i*3], colors[i*3+1], colors[i*3+2]
		assert.Less(t, r, gg, "index %d", i)
		assert.Less(t, r, b, "index %d", i)
	}
}

func TestRabbit_LineDrawingIsGreen(t *testing.T) {
	g := newTestGenerator(t, 10)
	colors := g.Colors(Rabbit)

	for i := 0; i < rabbitLines; i += 101 {
		assert.InDelta(t, 0x55/255.0, colors[i*3], 1e-6)
		assert.InDelta(t, 0xcc/255.0, colors[i*3+1], 1e-6)
		assert.InDelta(t, 0x55/255.0, colors[i*3+2], 1e-6)
	}
}

func TestRose_StructureIsWhite(t *testing.T) {
	g := newTestGenerator(t, 11)
	colors := g.Colors(Rose)

	for i := 0; i < roseMain*3; i++ {
		if colors[i] != 1 {
			t.Fatalf("rose structure component %d = %f, want 1", i, colors[i])
		}
	}
}

func TestSizes(t *testing.T) {
	g := newTestGenerator(t, 12)
	sizes := g.Sizes()

	require.Len(t, sizes, DefaultCount)
	for _, s := range sizes {
		assert.GreaterOrEqual(t, s, float32(0.5))
		assert.Less(t, s, float32(1))
	}
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
