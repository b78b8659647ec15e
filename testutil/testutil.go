package testutil

import (
	"fmt"
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// UniformPoints generates points with coordinates in range [minVal, maxVal).
// Uses a single backing array for efficiency.
func (r *RNG) UniformPoints(num, dim int, minVal, maxVal float64) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	span := maxVal - minVal
	data := make([]float64, num*dim)
	points := make([][]float64, num)

	for i := range num {
		p := data[i*dim : (i+1)*dim : (i+1)*dim]
		for j := range p {
			p[j] = minVal + r.rand.Float64()*span
		}
		points[i] = p
	}

	return points
}

// ClusteredPoints generates points scattered around clusters random centres
// drawn from [-10, 10). Point i belongs to centre i%clusters.
func (r *RNG) ClusteredPoints(num, dim, clusters int, spread float64) [][]float64 {
	centres := r.UniformPoints(clusters, dim, -10, 10)

	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*dim)
	points := make([][]float64, num)

	for i := range num {
		centre := centres[i%clusters]
		p := data[i*dim : (i+1)*dim : (i+1)*dim]
		for j := range dim {
			p[j] = centre[j] + r.rand.NormFloat64()*spread
		}
		points[i] = p
	}

	return points
}

// ScriptedRand replays a fixed sequence of values from Intn. It panics
// when the script is exhausted or a value is out of range, which points at
// a broken test rather than a broken algorithm.
type ScriptedRand struct {
	values []int
	next   int
}

// NewScriptedRand returns a ScriptedRand replaying values in order.
func NewScriptedRand(values ...int) *ScriptedRand {
	return &ScriptedRand{values: values}
}

// Intn returns the next scripted value.
func (s *ScriptedRand) Intn(n int) int {
	if s.next >= len(s.values) {
		panic(fmt.Sprintf("testutil: script exhausted after %d values", len(s.values)))
	}
	v := s.values[s.next]
	s.next++
	if v < 0 || v >= n {
		panic(fmt.Sprintf("testutil: scripted value %d out of range [0,%d)", v, n))
	}
	return v
}
