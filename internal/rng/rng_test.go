package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNamedIsDeterministic(t *testing.T) {
	a := Named(42, "pso", "7", "3")
	b := Named(42, "pso", "7", "3")

	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestNamedContextChangesStream(t *testing.T) {
	a := Named(42, "pso", "7", "3")
	b := Named(42, "pso", "7", "4")

	assert.NotEqual(t, a.Float64(), b.Float64())
}

func TestNamedSeedChangesStream(t *testing.T) {
	a := Named(1, "spawn")
	b := Named(2, "spawn")

	assert.NotEqual(t, a.Float64(), b.Float64())
}

func TestFloat64StaysInUnitInterval(t *testing.T) {
	s := Named(7, "test")
	for i := 0; i < 1000; i++ {
		v := s.Float64()
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}

func TestRangeStaysWithinBounds(t *testing.T) {
	s := Named(7, "test")
	for i := 0; i < 1000; i++ {
		v := s.Range(5, 10)
		assert.GreaterOrEqual(t, v, 5.0)
		assert.Less(t, v, 10.0)
	}
}

func TestBoolRespectsExtremes(t *testing.T) {
	s := Named(1, "bool")
	assert.False(t, s.Bool(0))
	assert.True(t, s.Bool(1))
}

func TestForkDivergesFromParentAndIsDeterministic(t *testing.T) {
	parent1 := Named(9, "root")
	parent2 := Named(9, "root")

	child1 := parent1.Fork("particle-0")
	child2 := parent2.Fork("particle-0")

	assert.Equal(t, child1.Float64(), child2.Float64())
	assert.NotEqual(t, parent1.Float64(), child1.Float64())
}

func TestGaussCachesSecondSample(t *testing.T) {
	s := Named(3, "gauss")
	// Draw enough samples to exercise both the fresh-pair path and the
	// cached-second-sample path without asserting on exact distribution.
	for i := 0; i < 100; i++ {
		v := s.Gauss(0, 1)
		assert.False(t, isNaNOrInf(v))
	}
}

func isNaNOrInf(v float64) bool {
	return v != v || v > 1e300 || v < -1e300
}
