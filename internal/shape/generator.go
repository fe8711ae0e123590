package shape

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"

	"github.com/ayusman/nritya/internal/particles"
)

// DefaultCount is the number of particles in every distribution.
const DefaultCount = 15000

// Index-range conventions shared by the position and color generators.
const (
	fwBurst1 = 4000
	fwBurst2 = 2500
	fwBurst3 = 2500

	// roseMain is the number of indices reserved for the rose structure
	// (bud, petals, stem). Indices past it are aura.
	roseMain = 11000

	// rabbitLines approximates the number of line-drawing points the rabbit
	// produces (about 10700); indices past it are aura.
	rabbitLines = 11000
)

// Config holds configuration options for a Generator.
type Config struct {
	// Count is the number of particles per distribution (default: DefaultCount).
	Count int

	// Rand is the random source for jitter. Nil uses a randomly seeded PCG.
	Rand *rand.Rand

	// Text is the string rasterized for the TEXT shape.
	Text string

	// FallbackText is rasterized when the font lacks a glyph used by Text.
	FallbackText string

	// FontData is a TrueType/OpenType font. Nil uses Go Bold.
	FontData []byte

	// Logger receives warnings about text rendering. Nil uses slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a Config with the standard particle count and text.
func DefaultConfig() Config {
	return Config{
		Count:        DefaultCount,
		Text:         "世界之外",
		FallbackText: "Beyond",
	}
}

// Generator builds point distributions for shapes. It is safe for concurrent use.
type Generator struct {
	count    int
	text     string
	fallback string
	font     *opentype.Font
	logger   *slog.Logger

	mu  sync.Mutex
	rng *rand.Rand
	// silhouettes caches rasterized text, keyed by the requested string.
	silhouettes map[string][]mgl32.Vec3
}

// NewGenerator creates a Generator from cfg.
func NewGenerator(cfg Config) (*Generator, error) {
	if cfg.Count <= 0 {
		cfg.Count = DefaultCount
	}
	if cfg.Text == "" {
		cfg.Text = DefaultConfig().Text
	}
	if cfg.FallbackText == "" {
		cfg.FallbackText = DefaultConfig().FallbackText
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	data := cfg.FontData
	if data == nil {
		data = gobold.TTF
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}

	return &Generator{
		count:       cfg.Count,
		text:        cfg.Text,
		fallback:    cfg.FallbackText,
		font:        f,
		logger:      cfg.Logger,
		rng:         cfg.Rand,
		silhouettes: make(map[string][]mgl32.Vec3),
	}, nil
}

// Count returns the number of particles per distribution.
func (g *Generator) Count() int {
	return g.count
}

// Generate returns the positions and colors for shape t.
func (g *Generator) Generate(t Type) particles.Distribution {
	return particles.Distribution{
		Positions: g.Positions(t),
		Colors:    g.Colors(t),
	}
}

// Positions returns 3N position components for shape t.
// Unknown shapes render the text "Error".
func (g *Generator) Positions(t Type) []float32 {
	g.mu.Lock()
	defer g.mu.Unlock()

	var pts []mgl32.Vec3
	switch t {
	case Text:
		pts = g.textPoints(g.text)
	case Heart:
		pts = g.heartPoints()
	case Fireworks:
		pts = g.fireworksPoints()
	case Rabbit:
		pts = g.rabbitPoints()
	case Snow:
		pts = g.snowPoints()
	case Rose:
		pts = g.rosePoints()
	default:
		pts = g.textPoints("Error")
	}
	return flatten(pts, g.count)
}

// Sizes returns N per-particle size multipliers in [0.5, 1).
func (g *Generator) Sizes() []float32 {
	g.mu.Lock()
	defer g.mu.Unlock()

	sizes := make([]float32, g.count)
	for i := range sizes {
		sizes[i] = 0.5 + g.rng.Float32()*0.5
	}
	return sizes
}

// flatten writes pts into a slice of exactly 3n components. Missing points are
// filled by repeating earlier ones cyclically; extra points are dropped.
// An empty pts yields n points at the origin.
func flatten(pts []mgl32.Vec3, n int) []float32 {
	out := make([]float32, 3*n)
	if len(pts) == 0 {
		return out
	}
	for i := 0; i < n; i++ {
		p := pts[i%len(pts)]
		out[i*3] = p.X()
		out[i*3+1] = p.Y()
		out[i*3+2] = p.Z()
	}
	return out
}

// uniform returns a value in [-span/2, span/2).
func (g *Generator) uniform(span float32) float32 {
	return (g.rng.Float32() - 0.5) * span
}
