package shape

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	snowFlakes    = 15
	snowFlakePts  = 200
	snowBranches  = 6
	snowFeatherP  = 0.4
	snowFeatherRt = 0.6
)

// snowPoints scatters six-branched crystals through the volume and fills the
// rest with fine dust.
func (g *Generator) snowPoints() []mgl32.Vec3 {
	pts := make([]mgl32.Vec3, 0, g.count)

	for f := 0; f < snowFlakes; f++ {
		center := mgl32.Vec3{g.uniform(90), g.uniform(70), g.uniform(50)}
		scale := 2 + g.rng.Float32()*2

		for i := 0; i < snowFlakePts; i++ {
			branch := g.rng.IntN(snowBranches)
			angle := float32(branch) / snowBranches * math32.Pi * 2
			dist := g.rng.Float32() * scale

			px := math32.Cos(angle) * dist
			py := math32.Sin(angle) * dist

			if g.rng.Float32() < snowFeatherP {
				featherLen := (scale - dist) * snowFeatherRt
				featherAngle := angle + math32.Pi/3
				px += math32.Cos(featherAngle) * g.rng.Float32() * featherLen
				py += math32.Sin(featherAngle) * g.rng.Float32() * featherLen
			}
			pts = append(pts, mgl32.Vec3{center.X() + px, center.Y() + py, center.Z()})
		}
	}

	for len(pts) < g.count {
		pts = append(pts, mgl32.Vec3{g.uniform(150), g.uniform(150), g.uniform(80)})
	}
	return pts[:g.count]
}
