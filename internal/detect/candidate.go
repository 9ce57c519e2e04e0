package detect

import (
	"math"
	"sort"

	"github.com/PH-19/sonarscan-sim/internal/config"
	"github.com/PH-19/sonarscan-sim/internal/vecmath"
)

// Candidate is a surviving cluster from the detection pipeline: its polar
// bounding box and amplitude-weighted centroid, the derived Cartesian
// position, and the measurement-noise sigma used to seed tracker updates.
type Candidate struct {
	SonarID int

	AngleDeg float64 // absolute bearing of centroid
	RangeM   float64

	BBoxAngleDeg [2]float64 // [min, max] absolute degrees
	BBoxRangeM   [2]float64 // [min, max] meters

	Position  vecmath.Vector2
	MeasSigma float64
	SumI      float64
}

type clusterStats struct {
	id           int32
	cells        int
	overlapCells int
	sumI         float64
	wA, wR       float64 // amplitude-weighted sums for centroid
	aMin, aMax   int
	rMin, rMax   int
}

// clusterize walks labels (1..n) and maskLarge to accumulate per-cluster
// geometry and amplitude statistics.
func clusterize(labels []int32, subtracted []float32, maskLarge []uint8, n int) []*clusterStats {
	stats := make(map[int32]*clusterStats)
	for a := 0; a < config.ImagingFrameAngleBins; a++ {
		base := a * config.ImagingRangeBins
		for r := 0; r < config.ImagingRangeBins; r++ {
			lbl := labels[base+r]
			if lbl <= 0 {
				continue
			}
			st, ok := stats[lbl]
			if !ok {
				st = &clusterStats{id: lbl, aMin: a, aMax: a, rMin: r, rMax: r}
				stats[lbl] = st
			}
			amp := float64(subtracted[base+r])
			st.cells++
			st.sumI += amp
			st.wA += amp * (float64(a) + 0.5)
			st.wR += amp * (float64(r) + 0.5)
			if maskLarge[base+r] != 0 {
				st.overlapCells++
			}
			if a < st.aMin {
				st.aMin = a
			}
			if a > st.aMax {
				st.aMax = a
			}
			if r < st.rMin {
				st.rMin = r
			}
			if r > st.rMax {
				st.rMax = r
			}
		}
	}

	out := make([]*clusterStats, 0, len(stats))
	for _, st := range stats {
		out = append(out, st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// physicallyPlausible keeps clusters whose dual-kernel overlap ratio and
// bbox geometry (cross-range, range extent, aspect) fall inside the bounds
// a human-sized target can actually produce.
func physicallyPlausible(st *clusterStats) bool {
	if st.cells == 0 {
		return false
	}
	if float64(st.overlapCells)/float64(st.cells) < config.DenoiseOverlapMin {
		return false
	}

	angleStep := config.AngleStepDeg()
	rangeStep := config.RangeStepM()

	rCentroid := st.wR / math.Max(st.sumI, 1e-9)
	rangeAtCent := rCentroid * rangeStep

	angleSpanDeg := float64(st.aMax-st.aMin+1) * angleStep
	crossRange := rangeAtCent * vecmath.DegToRad(angleSpanDeg)

	rangeExtent := float64(st.rMax-st.rMin+1) * rangeStep

	if crossRange < config.MinCrossRangeM || crossRange > config.MaxCrossRangeM {
		return false
	}
	if rangeExtent < config.MinRangeExtentM || rangeExtent > config.MaxRangeExtentM {
		return false
	}
	aspect := crossRange / math.Max(rangeExtent, 1e-9)
	if aspect < config.MinAspect || aspect > config.MaxAspect {
		return false
	}
	return true
}

// toCandidate converts a surviving cluster to absolute polar/Cartesian
// units and the measurement-noise model. jitter is applied by the caller,
// which owns the RNG stream per candidate.
func toCandidate(sonarID int, mount vecmath.Vector2, absMin float64, st *clusterStats, noiseScale, threshold float64) Candidate {
	angleStep := config.AngleStepDeg()
	rangeStep := config.RangeStepM()

	aCentroid := st.wA / math.Max(st.sumI, 1e-9)
	rCentroid := st.wR / math.Max(st.sumI, 1e-9)

	angleDeg := absMin + aCentroid*angleStep
	rangeM := rCentroid * rangeStep

	angleStepRad := vecmath.DegToRad(angleStep)

	quantRangeStd := rangeStep / math.Sqrt(12)
	quantArcStd := rangeM * angleStepRad / math.Sqrt(12)
	quantStd := math.Hypot(quantRangeStd, quantArcStd)

	noiseSigma := config.NoiseToMeasSigmaM * (config.NoiseStd * noiseScale / math.Max(0.05, threshold))

	measSigma := config.MeasSigmaBase + config.MeasSigmaPerM*rangeM + quantStd + noiseSigma

	rad := vecmath.DegToRad(angleDeg)
	pos := vecmath.Vector2{
		X: mount.X + rangeM*math.Sin(rad),
		Y: mount.Y + rangeM*math.Cos(rad),
	}

	return Candidate{
		SonarID:  sonarID,
		AngleDeg: angleDeg,
		RangeM:   rangeM,
		BBoxAngleDeg: [2]float64{
			absMin + float64(st.aMin)*angleStep,
			absMin + float64(st.aMax+1)*angleStep,
		},
		BBoxRangeM: [2]float64{
			float64(st.rMin) * rangeStep,
			float64(st.rMax+1) * rangeStep,
		},
		Position:  pos,
		MeasSigma: measSigma,
		SumI:      st.sumI,
	}
}
