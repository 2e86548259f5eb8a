// Package random provides the single random source shared by selection and
// name generation. It is built once by the caller and passed down, so tests
// can seed it.
package random

import (
	"math/rand/v2"
	"time"
)

// Source wraps a seeded generator.
type Source struct {
	rng *rand.Rand
}

// New returns a deterministic source for the given seed.
func New(seed uint64) *Source {
	return &Source{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewFromTime seeds a source from the wall clock.
func NewFromTime() *Source {
	return New(uint64(time.Now().UnixNano()))
}

// IntN returns a uniform value in [0, n). It panics if n <= 0.
func (s *Source) IntN(n int) int {
	return s.rng.IntN(n)
}

// Letter returns a random letter in [from, to].
func (s *Source) Letter(from, to rune) rune {
	return from + rune(s.rng.IntN(int(to-from)+1))
}
