package shape

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const rabbitJitter = 0.05

// path maps a curve parameter to a point in the drawing plane.
type path func(t float32) (x, y float32)

// rabbitPoints draws a cartoon rabbit from parametric strokes and fills the
// remaining budget with an annular aura.
func (g *Generator) rabbitPoints() []mgl32.Vec3 {
	pts := make([]mgl32.Vec3, 0, g.count)

	// Head.
	pts = g.stroke(pts, func(t float32) (float32, float32) {
		return -3 + 2.5*math32.Cos(t), 3 + 2.5*math32.Sin(t)
	}, 0, math32.Pi*2, 2500)

	// Long drooping ear.
	pts = g.stroke(pts, func(t float32) (float32, float32) {
		return -3.5 + 1.2*math32.Cos(t), 2 + 3.5*math32.Sin(t)
	}, math32.Pi*0.1, math32.Pi*2.9, 2500)

	// Back.
	pts = g.stroke(pts, func(t float32) (float32, float32) {
		return -2 + t*7, 1 + math32.Sin(t*math32.Pi)*1.5
	}, 0, 1, 2000)

	// Belly.
	pts = g.stroke(pts, func(t float32) (float32, float32) {
		return -2 + t*7, 1 - math32.Sin(t*math32.Pi) - 2
	}, 0.1, 0.9, 1500)

	// Tail.
	pts = g.stroke(pts, func(t float32) (float32, float32) {
		return 5.5 + 0.8*math32.Cos(t), 0.8 * math32.Sin(t)
	}, 0, math32.Pi*2, 800)

	// Front and back paws.
	pts = g.stroke(pts, func(t float32) (float32, float32) { return -2, -1 - t }, 0, 1.5, 600)
	pts = g.stroke(pts, func(t float32) (float32, float32) { return 4, -1 - t }, 0, 1.5, 600)

	// Eye.
	for i := 0; i < 200; i++ {
		r := g.rng.Float32() * 0.3
		a := g.rng.Float32() * math32.Pi * 2
		pts = append(pts, mgl32.Vec3{-2.2 + math32.Cos(a)*r, 4 + math32.Sin(a)*r, 0})
	}

	for len(pts) < g.count {
		r := 8 + g.rng.Float32()*20
		theta := g.rng.Float32() * math32.Pi * 2
		pts = append(pts, mgl32.Vec3{math32.Cos(theta) * r, math32.Sin(theta) * r, g.uniform(20)})
	}
	return pts[:g.count]
}

// stroke samples n points of f over [start, end) with a slight hand-drawn jitter.
func (g *Generator) stroke(pts []mgl32.Vec3, f path, start, end float32, n int) []mgl32.Vec3 {
	for i := 0; i < n; i++ {
		t := start + float32(i)/float32(n)*(end-start)
		x, y := f(t)
		pts = append(pts, mgl32.Vec3{x + g.uniform(rabbitJitter), y + g.uniform(rabbitJitter), 0})
	}
	return pts
}
