package shape

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	roseBud         = 2000
	roseStemReserve = 1000
	rosePetalLayers = 8
)

// rosePoints builds a spiral bud, lobed petal layers and a swaying stem within
// the first roseMain indices, then an aura of spherical shells below.
func (g *Generator) rosePoints() []mgl32.Vec3 {
	pts := make([]mgl32.Vec3, 0, g.count)

	for i := 0; i < roseBud; i++ {
		frac := float32(i) / roseBud
		t := frac * math32.Pi * 10
		r := 0.1 * t
		pts = append(pts, mgl32.Vec3{math32.Cos(t) * r, math32.Sin(t)*r - 5, frac * 5})
	}

	perLayer := (roseMain - roseBud - roseStemReserve) / rosePetalLayers
	for l := 0; l < rosePetalLayers; l++ {
		radius := 3 + float32(l)*1.5
		height := 5 - float32(l)*0.8
		lobes := float32(3 + l%3)
		rot := float32(l)

		for p := 0; p < perLayer; p++ {
			t := float32(p) / float32(perLayer) * math32.Pi * 2
			r := radius + 1.5*math32.Sin(lobes*t)
			z := height + 2*math32.Cos(lobes*t)
			pts = append(pts, mgl32.Vec3{r * math32.Cos(t+rot), r*math32.Sin(t+rot) - 5, z})
		}
	}

	for len(pts) < roseMain {
		t := g.rng.Float32()
		pts = append(pts, mgl32.Vec3{math32.Sin(t*5) * 0.5, -5 - t*20, 0})
	}

	for len(pts) < g.count {
		p := g.unitVector().Mul(12 + g.rng.Float32()*8)
		p[1] -= 5
		pts = append(pts, p)
	}
	return pts[:g.count]
}
