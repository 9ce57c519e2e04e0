package detect

import (
	"math"
	"sort"
	"strconv"

	"github.com/PH-19/sonarscan-sim/internal/config"
	"github.com/PH-19/sonarscan-sim/internal/rng"
	"github.com/PH-19/sonarscan-sim/internal/sonar"
	"github.com/PH-19/sonarscan-sim/internal/tuning"
	"github.com/PH-19/sonarscan-sim/internal/vecmath"
)

// Run executes the full detection pipeline on a just-finalized frame:
// warm-up shortcut, background subtraction, weak-echo elimination, the
// adaptive dual-kernel search with DBSCAN and physical filtering, candidate
// construction with measurement jitter, and the background-model update.
// frameTime is the sim-clock value at frame finalization, used both for the
// measurement-jitter RNG stream key and as each candidate's implied
// observation time.
func Run(f *sonar.Frame, sonarID int, mount vecmath.Vector2, absMin float64, swimmerCount int, tune tuning.Tuning, frameTime float64, seed uint32) []Candidate {
	if applyWarmup(f, swimmerCount) {
		return nil
	}

	subtractBackground(f)
	threshold := weakEchoThreshold(f, tune.Threshold)
	buildMask(f, threshold)

	capOdd := tune.KernelCap
	if capOdd%2 == 0 {
		capOdd--
	}
	if capOdd < 3 {
		capOdd = 3
	}

	var survivors []*clusterStats
	for k := 3; k <= capOdd; k += 2 {
		kLarge := k + 4
		if kLarge > capOdd {
			kLarge = capOdd
		}

		majorityFilter(f.Mask, f.MaskSmall, k)
		majorityFilter(f.Mask, f.MaskLarge, kLarge)

		dbscanGrid(f.MaskSmall, f.Labels, tune.DBSCANEpsBins, tune.DBSCANMinPts)
		clusters := clusterize(f.Labels, f.Subtracted, f.MaskLarge, config.ImagingFrameAngleBins*config.ImagingRangeBins)

		for _, st := range clusters {
			if physicallyPlausible(st) {
				survivors = append(survivors, st)
			}
		}
		if len(survivors) > 0 {
			break
		}
	}

	sort.Slice(survivors, func(i, j int) bool { return survivors[i].sumI > survivors[j].sumI })
	if len(survivors) > config.ImagingMaxClustersPerPing {
		survivors = survivors[:config.ImagingMaxClustersPerPing]
	}

	candidates := make([]Candidate, 0, len(survivors))
	timeBucketMs := strconv.FormatInt(int64(math.Round(frameTime*1000)), 10)
	sonarIDStr := strconv.Itoa(sonarID)
	frameIDStr := strconv.FormatUint(f.FrameID, 10)

	for i, st := range survivors {
		cand := toCandidate(sonarID, mount, absMin, st, tune.NoiseScale, threshold)

		stream := rng.Named(seed, "meas", sonarIDStr, frameIDStr, timeBucketMs, strconv.Itoa(i))
		jitterSigma := cand.MeasSigma * config.MeasJitterScale
		cand.Position.X += stream.Gauss(0, jitterSigma)
		cand.Position.Y += stream.Gauss(0, jitterSigma)
		cand.Position.X = vecmath.Clamp(cand.Position.X, 0, config.PoolWidth)
		cand.Position.Y = vecmath.Clamp(cand.Position.Y, 0, config.PoolLength)

		candidates = append(candidates, cand)
	}

	updateBackground(f)

	return candidates
}
