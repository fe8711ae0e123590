package shape

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// heartPoints sweeps the parametric heart curve ten times over the particle
// budget. Each point lands on one of three scaled layers with random depth.
func (g *Generator) heartPoints() []mgl32.Vec3 {
	pts := make([]mgl32.Vec3, 0, g.count)
	for i := 0; i < g.count; i++ {
		t := float32(i) / float32(g.count) * math32.Pi * 2 * 10
		st := math32.Sin(t)
		x := 16 * st * st * st
		y := 13*math32.Cos(t) - 5*math32.Cos(2*t) - 2*math32.Cos(3*t) - math32.Cos(4*t)

		layer := g.rng.IntN(3)
		scale := 1 - float32(layer)*0.1
		z := g.uniform(2)

		pts = append(pts, mgl32.Vec3{x * scale * 0.8, y * scale * 0.8, z})
	}
	return pts
}
