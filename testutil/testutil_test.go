package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUniformPoints(t *testing.T) {
	rng := NewRNG(4711)

	p := rng.UniformPoints(8, 3, -1, 1)

	assert.Equal(t, 8, len(p))
	assert.Equal(t, 3, len(p[0]))
	for _, pt := range p {
		for _, v := range pt {
			assert.GreaterOrEqual(t, v, -1.0)
			assert.Less(t, v, 1.0)
		}
	}
}

func TestClusteredPoints(t *testing.T) {
	rng := NewRNG(4711)

	p := rng.ClusteredPoints(40, 2, 4, 0.1)

	assert.Equal(t, 40, len(p))
	// Appending to one point must not bleed into the next.
	_ = append(p[0], 99)
	assert.NotEqual(t, 99.0, p[1][0])
}

func TestRNGReset(t *testing.T) {
	rng := NewRNG(42)
	a := rng.UniformPoints(4, 2, 0, 1)
	rng.Reset()
	b := rng.UniformPoints(4, 2, 0, 1)

	assert.Equal(t, a, b)
	assert.Equal(t, int64(42), rng.Seed())
}

func TestScriptedRand(t *testing.T) {
	r := NewScriptedRand(2, 0)

	assert.Equal(t, 2, r.Intn(4))
	assert.Equal(t, 0, r.Intn(3))
	assert.Panics(t, func() { r.Intn(2) })

	assert.Panics(t, func() { NewScriptedRand(5).Intn(3) })
}
