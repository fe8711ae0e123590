// Package particles holds the live particle buffers and blends them toward a target shape.
package particles

// Distribution is a renderable particle cloud: N positions and N RGB colors,
// stored as flat xyz/rgb slices of length 3N. Index i describes the same
// particle in both slices.
type Distribution struct {
	Positions []float32
	Colors    []float32
}

// Count returns the number of particles, N.
func (d Distribution) Count() int {
	return len(d.Positions) / 3
}

// Valid reports whether both slices hold exactly n particles.
func (d Distribution) Valid(n int) bool {
	return len(d.Positions) == 3*n && len(d.Colors) == 3*n
}

// Clone returns a deep copy of d.
func (d Distribution) Clone() Distribution {
	return Distribution{
		Positions: append([]float32(nil), d.Positions...),
		Colors:    append([]float32(nil), d.Colors...),
	}
}
