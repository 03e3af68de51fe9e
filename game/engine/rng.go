package engine

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// RNG is a thin wrapper around math/rand/v2 so episodes can be replayed from a seed.
type RNG struct {
	r    *rand.Rand
	seed int64
}

// NewRNG creates a deterministic RNG using the provided seed.
func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewPCG(uint64(seed), 0)), seed: seed}
}

// NewSeed draws a seed from crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}

// Seed returns the seed the RNG was created with.
func (r *RNG) Seed() int64 { return r.seed }

// Bool returns a fair coin flip.
func (r *RNG) Bool() bool { return r.r.IntN(2) == 1 }

// IntN returns a uniform int in [0, n).
func (r *RNG) IntN(n int) int { return r.r.IntN(n) }

// Bernoulli returns true with probability p.
func (r *RNG) Bernoulli(p float64) bool { return r.r.Float64() < p }

// Choice returns a uniformly chosen element of options.
func (r *RNG) Choice(options []int) int { return options[r.r.IntN(len(options))] }
