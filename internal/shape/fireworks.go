package shape

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const fwTrails = 40

// burst describes one firework explosion.
type burst struct {
	center mgl32.Vec3
	count  int
	scale  float32
}

var bursts = []burst{
	{center: mgl32.Vec3{0, 10, 0}, count: fwBurst1, scale: 1.2},
	{center: mgl32.Vec3{-20, -5, -5}, count: fwBurst2, scale: 0.8},
	{center: mgl32.Vec3{20, -2, 5}, count: fwBurst3, scale: 0.7},
}

// fireworksPoints builds three radial bursts followed by background sparks.
func (g *Generator) fireworksPoints() []mgl32.Vec3 {
	pts := make([]mgl32.Vec3, 0, g.count)
	for _, b := range bursts {
		pts = g.appendBurst(pts, b)
	}

	for len(pts) < g.count {
		pts = append(pts, mgl32.Vec3{g.uniform(120), g.uniform(120), g.uniform(80)})
	}
	return pts[:g.count]
}

// appendBurst adds fwTrails trails radiating from b.center in random directions.
// Points spread with a progress^0.8 falloff and sag downward with progress².
func (g *Generator) appendBurst(pts []mgl32.Vec3, b burst) []mgl32.Vec3 {
	perTrail := b.count / fwTrails
	for t := 0; t < fwTrails; t++ {
		dir := g.unitVector()
		length := (12 + g.rng.Float32()*8) * b.scale

		for i := 0; i < perTrail; i++ {
			progress := float32(i) / float32(perTrail)
			p := dir.Mul(math32.Pow(progress, 0.8) * length)
			p[1] -= progress * progress * 8 * b.scale
			pts = append(pts, p.Add(b.center))
		}
	}
	return pts
}

// unitVector returns a direction distributed uniformly over the unit sphere.
func (g *Generator) unitVector() mgl32.Vec3 {
	theta := g.rng.Float32() * math32.Pi * 2
	phi := math32.Acos(g.rng.Float32()*2 - 1)
	return mgl32.Vec3{
		math32.Sin(phi) * math32.Cos(theta),
		math32.Sin(phi) * math32.Sin(theta),
		math32.Cos(phi),
	}
}
