package vecmath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVector2Basics(t *testing.T) {
	a := Vector2{X: 3, Y: 4}
	b := Vector2{X: 1, Y: 1}

	assert.Equal(t, Vector2{X: 4, Y: 5}, a.Add(b))
	assert.Equal(t, Vector2{X: 2, Y: 3}, a.Sub(b))
	assert.Equal(t, 5.0, a.Length())
	assert.InDelta(t, 5.0, a.Dist(Vector2{}), 1e-9)
}

func TestBearingDegIsNorthUpClockwise(t *testing.T) {
	assert.InDelta(t, 0.0, Vector2{X: 0, Y: 1}.BearingDeg(), 1e-9)
	assert.InDelta(t, 90.0, Vector2{X: 1, Y: 0}.BearingDeg(), 1e-9)
	assert.InDelta(t, 180.0, Vector2{X: 0, Y: -1}.BearingDeg(), 1e-9)
	assert.InDelta(t, 270.0, Vector2{X: -1, Y: 0}.BearingDeg(), 1e-9)
}

func TestNormalizeDegFoldsIntoRange(t *testing.T) {
	assert.InDelta(t, 10.0, NormalizeDeg(370), 1e-9)
	assert.InDelta(t, 350.0, NormalizeDeg(-10), 1e-9)
	assert.InDelta(t, 0.0, NormalizeDeg(360), 1e-9)
}

func TestAngleDiffDegIsSignedSmallestPath(t *testing.T) {
	assert.InDelta(t, 10.0, AngleDiffDeg(350, 0), 1e-9)
	assert.InDelta(t, -10.0, AngleDiffDeg(0, 350), 1e-9)
	assert.InDelta(t, 180.0, AngleDiffDeg(0, 180), 1e-9)
}

func TestClampRestrictsToBounds(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-5, 0, 10))
	assert.Equal(t, 10.0, Clamp(15, 0, 10))
	assert.Equal(t, 5.0, Clamp(5, 0, 10))
	assert.Equal(t, 0, ClampInt(-5, 0, 10))
	assert.Equal(t, 10, ClampInt(15, 0, 10))
}

func TestMeanAndRMS(t *testing.T) {
	xs := []float64{1, 2, 3, 4}
	assert.InDelta(t, 2.5, Mean(xs), 1e-9)
	assert.Equal(t, 0.0, Mean(nil))

	assert.InDelta(t, 0.0, RMS(nil), 1e-9)
	assert.InDelta(t, 3.0, RMS([]float64{3, 3, 3}), 1e-9)
}

func TestPercentileMatchesKnownQuantiles(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5}
	assert.InDelta(t, 1.0, Percentile(xs, 0), 1e-9)
	assert.InDelta(t, 5.0, Percentile(xs, 1), 1e-9)
	assert.InDelta(t, 3.0, Percentile(xs, 0.5), 1e-9)
	assert.Equal(t, 0.0, Percentile(nil, 0.5))
	assert.Equal(t, 7.0, Percentile([]float64{7}, 0.9))
}

func TestPercentileDoesNotMutateInput(t *testing.T) {
	xs := []float64{5, 1, 3}
	_ = Percentile(xs, 0.5)
	assert.Equal(t, []float64{5, 1, 3}, xs)
}

func TestRectIoU(t *testing.T) {
	a := Rect{MinA: 0, MaxA: 10, MinR: 0, MaxR: 10}
	b := Rect{MinA: 5, MaxA: 15, MinR: 0, MaxR: 10}
	assert.InDelta(t, 1.0/3.0, a.IoU(b), 1e-9)

	disjoint := Rect{MinA: 20, MaxA: 30, MinR: 0, MaxR: 10}
	assert.Equal(t, 0.0, a.IoU(disjoint))

	assert.InDelta(t, 1.0, a.IoU(a), 1e-9)
}
