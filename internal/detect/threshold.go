package detect

import (
	"math"
	"sort"

	"github.com/PH-19/sonarscan-sim/internal/config"
	"github.com/PH-19/sonarscan-sim/internal/sonar"
	"gonum.org/v1/gonum/stat"
)

// strideSample returns every strideth cell of subtracted, for a cheap
// quantile estimate without scanning the whole frame.
func strideSample(subtracted []float32, stride int) []float64 {
	if stride < 1 {
		stride = 1
	}
	out := make([]float64, 0, len(subtracted)/stride+1)
	for i := 0; i < len(subtracted); i += stride {
		out = append(out, float64(subtracted[i]))
	}
	sort.Float64s(out)
	return out
}

// weakEchoThreshold computes the effective detection threshold for this
// frame: the larger of the tuned floor and the configured minimum, bounded
// below by the frame's own WEAK_ECHO_PERCENTILE quantile.
func weakEchoThreshold(f *sonar.Frame, tunedThreshold float64) float64 {
	sample := strideSample(f.Subtracted, 7)
	if len(sample) == 0 {
		return math.Max(tunedThreshold, config.WeakEchoMin)
	}
	q := stat.Quantile(config.WeakEchoPercentile, stat.Empirical, sample, nil)
	return math.Max(tunedThreshold, math.Max(config.WeakEchoMin, q))
}

// buildMask sets f.Mask[i] = 1 where subtracted >= threshold.
func buildMask(f *sonar.Frame, threshold float64) {
	for i, v := range f.Subtracted {
		if float64(v) >= threshold {
			f.Mask[i] = 1
		} else {
			f.Mask[i] = 0
		}
	}
}
