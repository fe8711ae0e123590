package particles

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// ErrLengthMismatch is returned when a distribution does not hold exactly N particles.
var ErrLengthMismatch = errors.New("distribution length mismatch")

// Store holds the live (current) and desired (target) distributions.
//
// Current is owned by the render tick: it is mutated in place by the Engine and
// never replaced. Target is swapped wholesale by SetTarget, which may be called
// from any goroutine.
type Store struct {
	count   int
	current Distribution
	target  atomic.Pointer[Distribution]
	sizes   []float32
}

// NewStore creates a Store whose current and target both start at initial.
// sizes holds one size multiplier per particle and is never changed afterwards.
func NewStore(initial Distribution, sizes []float32) (*Store, error) {
	n := len(sizes)
	if n == 0 || !initial.Valid(n) {
		return nil, fmt.Errorf("%w: %d positions, %d colors, %d sizes",
			ErrLengthMismatch, len(initial.Positions), len(initial.Colors), n)
	}

	s := &Store{
		count:   n,
		current: initial.Clone(),
		sizes:   sizes,
	}
	target := initial.Clone()
	s.target.Store(&target)
	return s, nil
}

// Count returns the number of particles, N.
func (s *Store) Count() int {
	return s.count
}

// SetTarget replaces the target distribution. Positions and colors are
// swapped together. The caller must not modify d afterwards.
func (s *Store) SetTarget(d Distribution) error {
	if !d.Valid(s.count) {
		return fmt.Errorf("%w: want %d particles, got %d positions and %d colors",
			ErrLengthMismatch, s.count, len(d.Positions)/3, len(d.Colors)/3)
	}
	s.target.Store(&d)
	return nil
}

// Target returns the current target distribution. Callers must treat it as read-only.
func (s *Store) Target() Distribution {
	return *s.target.Load()
}

// Current returns the live buffers. Only the render tick may modify them.
func (s *Store) Current() Distribution {
	return s.current
}

// Sizes returns the per-particle size multipliers.
func (s *Store) Sizes() []float32 {
	return s.sizes
}
