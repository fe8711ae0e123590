package shape

import (
	colorful "github.com/lucasb-eyer/go-colorful"
)

var (
	rabbitGreen = colorful.MustParseHex("#55cc55")
	auraOrange  = colorful.MustParseHex("#ffaa00")
	auraYellow  = colorful.MustParseHex("#ffff00")
	white       = colorful.MustParseHex("#ffffff")
	rosePurple  = colorful.MustParseHex("#aa44ff")
)

// lightnessSpread is the width of the random lightness variation.
const lightnessSpread = 0.2

// Colors returns 3N RGB components for shape t. Components are in [0, 1].
// Colors are assigned by index range and must stay aligned with the index
// layout used by Positions.
func (g *Generator) Colors(t Type) []float32 {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]float32, 3*g.count)
	for i := 0; i < g.count; i++ {
		c := g.colorAt(t, i)
		out[i*3] = float32(c.R)
		out[i*3+1] = float32(c.G)
		out[i*3+2] = float32(c.B)
	}
	return out
}

// colorAt returns the color of particle i of shape t.
func (g *Generator) colorAt(t Type, i int) colorful.Color {
	v := float64(g.uniform(lightnessSpread))

	switch t {
	case Heart:
		return hsl(0.98, 0.9, 0.5+v)

	case Fireworks:
		switch {
		case i < fwBurst1:
			return hsl(0.0, 1.0, 0.6+v)
		case i < fwBurst1+fwBurst2:
			return hsl(0.5, 1.0, 0.6+v)
		case i < fwBurst1+fwBurst2+fwBurst3:
			return hsl(0.8, 1.0, 0.6+v)
		default:
			return hsl(g.rng.Float64(), 0.8, 0.8)
		}

	case Rabbit:
		if i < rabbitLines {
			return rabbitGreen
		}
		switch r := g.rng.Float64(); {
		case r < 0.4:
			return auraOrange
		case r < 0.7:
			return auraYellow
		default:
			return white
		}

	case Snow:
		return hsl(0.6, 0.2, 0.95+v)

	case Rose:
		if i < roseMain || g.rng.Float64() > 0.5 {
			return white
		}
		return rosePurple

	default:
		return hsl(0.6, 0.05, 0.9+v)
	}
}

// hsl converts hue, saturation and lightness in [0, 1] to a clamped RGB color.
// Out-of-range lightness is clamped first.
func hsl(h, s, l float64) colorful.Color {
	l = min(max(l, 0), 1)
	return colorful.Hsl(h*360, s, l).Clamped()
}
