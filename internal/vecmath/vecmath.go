// Package vecmath collects the small numeric primitives shared across the
// simulation core: 2-D vectors, bearing/angle helpers, and the handful of
// statistics (mean, percentile) the detection and evaluation pipelines need
// on bounded scratch slices.
package vecmath

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Vector2 is a 2-D coordinate or displacement in meters.
type Vector2 struct {
	X, Y float64
}

// Add returns v+o.
func (v Vector2) Add(o Vector2) Vector2 { return Vector2{v.X + o.X, v.Y + o.Y} }

// Sub returns v-o.
func (v Vector2) Sub(o Vector2) Vector2 { return Vector2{v.X - o.X, v.Y - o.Y} }

// Scale returns v*k.
func (v Vector2) Scale(k float64) Vector2 { return Vector2{v.X * k, v.Y * k} }

// Length returns the Euclidean norm of v.
func (v Vector2) Length() float64 { return math.Hypot(v.X, v.Y) }

// Dist returns the Euclidean distance between v and o.
func (v Vector2) Dist(o Vector2) float64 { return v.Sub(o).Length() }

// BearingDeg returns the angle of v measured clockwise from +Y (north-up,
// matching the mount-bearing convention used for sonar headings), in
// [0, 360).
func (v Vector2) BearingDeg() float64 {
	deg := RadToDeg(math.Atan2(v.X, v.Y))
	return NormalizeDeg(deg)
}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 { return deg * math.Pi / 180.0 }

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 { return rad * 180.0 / math.Pi }

// NormalizeDeg folds an angle into [0, 360).
func NormalizeDeg(deg float64) float64 {
	deg = math.Mod(deg, 360.0)
	if deg < 0 {
		deg += 360.0
	}
	return deg
}

// AngleDiffDeg returns the signed smallest difference b-a in (-180, 180].
func AngleDiffDeg(a, b float64) float64 {
	d := math.Mod(b-a+180.0, 360.0)
	if d < 0 {
		d += 360.0
	}
	d -= 180.0
	if d <= -180.0 {
		d += 360.0
	}
	return d
}

// BearingFrom returns the absolute bearing in degrees from origin to point,
// using the same north-up, clockwise convention as Vector2.BearingDeg.
func BearingFrom(origin, point Vector2) float64 {
	return point.Sub(origin).BearingDeg()
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampInt restricts v to [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Mean returns the arithmetic mean of xs, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// RMS returns the root-mean-square of xs.
func RMS(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sumSq float64
	for _, x := range xs {
		sumSq += x * x
	}
	return math.Sqrt(sumSq / float64(len(xs)))
}

// Percentile returns the p-th percentile (p in [0,1]) of xs using linear
// interpolation between closest ranks, via gonum/stat's quantile estimator.
// xs is not mutated; a sorted copy is used internally. Returns 0 for an
// empty slice.
func Percentile(xs []float64, p float64) float64 {
	n := len(xs)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return xs[0]
	}
	sorted := make([]float64, n)
	copy(sorted, xs)
	sort.Float64s(sorted)

	// stat.LinInterp places quantile q at cumulative weight q*n; mapping p to
	// (p*(n-1)+1)/n lands it on the 0-based rank p*(n-1), so the result
	// interpolates between the two closest ranks.
	q := (Clamp(p, 0, 1)*float64(n-1) + 1) / float64(n)
	return stat.Quantile(q, stat.LinInterp, sorted, nil)
}

// Rect is an axis-aligned bounding box in whatever unit its caller uses
// (frame bins or meters), used both for polar-bin bboxes and ground-truth
// bboxes during IoU matching.
type Rect struct {
	MinA, MaxA float64
	MinR, MaxR float64
}

// IoU returns the intersection-over-union of two Rects in the same units.
func (r Rect) IoU(o Rect) float64 {
	ia := math.Min(r.MaxA, o.MaxA) - math.Max(r.MinA, o.MinA)
	ir := math.Min(r.MaxR, o.MaxR) - math.Max(r.MinR, o.MinR)
	if ia <= 0 || ir <= 0 {
		return 0
	}
	inter := ia * ir
	areaR := (r.MaxA - r.MinA) * (r.MaxR - r.MinR)
	areaO := (o.MaxA - o.MinA) * (o.MaxR - o.MinR)
	union := areaR + areaO - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}
