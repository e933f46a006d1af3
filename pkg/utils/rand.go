package utils

import (
	"math"
	"math/rand"
	"time"
)

// RandSource is an explicit pseudo-random stream. Each simulation run owns
// exactly one; it is not safe for concurrent use.
type RandSource struct {
	seed int64
	rng  *rand.Rand
}

// NewRandSource creates a random source with the given seed.
// A zero seed is replaced by the current wall-clock nanoseconds.
func NewRandSource(seed int64) *RandSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &RandSource{
		seed: seed,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// Seed returns the seed the stream was created with
func (r *RandSource) Seed() int64 {
	return r.seed
}

// Float64 returns a random float64 in [0.0, 1.0)
func (r *RandSource) Float64() float64 {
	return r.rng.Float64()
}

// Intn returns a random int in [0, n). A non-positive n yields 0.
func (r *RandSource) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return r.rng.Intn(n)
}

// ExpFloat64 returns an exponentially distributed value with the given rate.
// An infinite rate yields 0 and a non-positive rate yields +Inf.
func (r *RandSource) ExpFloat64(rate float64) float64 {
	if math.IsInf(rate, 1) {
		return 0
	}
	if rate <= 0 || math.IsNaN(rate) {
		return math.Inf(1)
	}
	return r.rng.ExpFloat64() / rate
}

// ExpMean returns an exponentially distributed value with the given mean.
// A non-positive mean yields 0.
func (r *RandSource) ExpMean(mean float64) float64 {
	if mean <= 0 || math.IsNaN(mean) {
		return 0
	}
	return r.rng.ExpFloat64() * mean
}

// BernoulliBool returns true with probability p
func (r *RandSource) BernoulliBool(p float64) bool {
	return r.rng.Float64() < p
}

// UniformFloat64 returns a uniformly distributed random number in [min, max)
func (r *RandSource) UniformFloat64(min, max float64) float64 {
	return min + r.rng.Float64()*(max-min)
}
