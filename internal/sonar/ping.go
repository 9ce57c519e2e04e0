package sonar

import (
	"math"

	"github.com/PH-19/sonarscan-sim/internal/config"
	"github.com/PH-19/sonarscan-sim/internal/rng"
	"github.com/PH-19/sonarscan-sim/internal/tuning"
	"github.com/PH-19/sonarscan-sim/internal/vecmath"
	"github.com/PH-19/sonarscan-sim/internal/world"
)

// PingTarget is the subset of swimmer state the ping writer needs: its true
// position, used to render its echo and ghost, never anything derived from
// a track or estimate.
type PingTarget struct {
	ID       uint64
	Position vecmath.Vector2
}

// WritePing renders one angle column (aIdx, the bin the ping bearing falls
// in) of the current frame: noise floor, speckle, weak bands, wall and lane
// geometry, and swimmer echoes with their multipath ghosts.
//
// streamStatic draws the noise-floor/speckle/weak-band/static-geometry
// component; streamDyn draws the multipath-ghost offsets, keeping the two
// keyed separately as required by the stream-key contract.
func (s *Sonar) WritePing(
	aIdx int,
	bearingDeg float64,
	targets []PingTarget,
	tune tuning.Tuning,
	streamStatic, streamDyn *rng.Stream,
) {
	rangeStep := config.RangeStepM()
	rMax := int(math.Floor(s.ScanRange / rangeStep))
	if rMax > config.ImagingRangeBins {
		rMax = config.ImagingRangeBins
	}
	if rMax < 0 {
		rMax = 0
	}

	col := make([]float32, config.ImagingRangeBins)

	for r := 0; r < rMax; r++ {
		noise := config.NoiseFloor + streamStatic.Gauss(0, config.NoiseStd*tune.NoiseScale)
		if noise < 0 {
			noise = 0
		}
		if streamStatic.Bool(tune.SpeckleProb) {
			u := streamStatic.Float64()
			noise += config.SpeckleStrength * (1.0/math.Pow(1-u, 1.0/2.2) - 1.0)
		}
		col[r] = float32(noise)
	}

	if streamStatic.Bool(config.WeakBandProb) && rMax > 0 {
		bandR := streamStatic.Range(0, float64(rMax))
		addGaussianBump(col, rMax, bandR, 2.5, config.StaticWallEchoStrength*0.4)
	}

	if wallDist, ok := raycastWall(s.Mount, bearingDeg); ok && wallDist <= s.ScanRange {
		wallR := wallDist / rangeStep
		addGaussianBump(col, rMax, wallR, 1.2, config.StaticWallEchoStrength)

		u := streamDyn.Float64()
		ghostDist := wallDist + config.GhostRangeOffsetM*(0.6+0.8*u)
		ghostR := ghostDist / rangeStep
		addGaussianBump(col, rMax, ghostR, 1.5, config.StaticWallEchoStrength*config.GhostRelStrength)
	}

	for lane := 1; lane < config.PoolLaneCount; lane++ {
		laneX := float64(lane) * config.PoolWidth / float64(config.PoolLaneCount)
		if laneDist, ok := raycastVerticalLine(s.Mount, bearingDeg, laneX); ok && laneDist <= s.ScanRange {
			laneR := laneDist / rangeStep
			addGaussianBump(col, rMax, laneR, 1.0, config.StaticWallEchoStrength*0.5)
		}
	}

	for _, t := range targets {
		disp := t.Position.Sub(s.Mount)
		dist := disp.Length()
		if dist > s.ScanRange {
			continue
		}
		trueBearing := disp.BearingDeg()
		if math.Abs(vecmath.AngleDiffDeg(bearingDeg, trueBearing)) > config.ImagingFOVDeg/2 {
			continue
		}

		amp := config.EchoStrength * math.Exp(-dist/config.AttenuationM)
		echoR := dist / rangeStep
		addGaussianBump(col, rMax, echoR, config.ImagingBlobRadiusBins, amp)

		u := streamDyn.Float64()
		ghostDist := dist + config.GhostRangeOffsetM*(0.6+0.8*u)
		ghostR := ghostDist / rangeStep
		addGaussianBump(col, rMax, ghostR, config.ImagingBlobRadiusBins, amp*config.GhostRelStrength)
	}

	base := Index(aIdx, 0)
	for r := 0; r < config.ImagingRangeBins; r++ {
		if r < rMax {
			s.Frame.Intensity[base+r] = col[r]
		}
	}
	s.Frame.ObservedAngles[aIdx] = true
}

// addGaussianBump adds a Gaussian-shaped contribution of peak amplitude amp
// and standard deviation sigmaBins centered at centerR (in range bins) onto
// col, truncated to [0, rMax).
func addGaussianBump(col []float32, rMax int, centerR, sigmaBins, amp float64) {
	if amp <= 0 {
		return
	}
	lo := int(math.Floor(centerR - 4*sigmaBins))
	hi := int(math.Ceil(centerR + 4*sigmaBins))
	if lo < 0 {
		lo = 0
	}
	if hi > rMax {
		hi = rMax
	}
	for r := lo; r < hi; r++ {
		d := float64(r) - centerR
		v := amp * math.Exp(-(d*d)/(2*sigmaBins*sigmaBins))
		col[r] += float32(v)
	}
}

// raycastWall analytically intersects the bearing ray from origin with the
// four pool edges and returns the distance to the nearest edge the ray
// actually points at.
func raycastWall(origin vecmath.Vector2, bearingDeg float64) (float64, bool) {
	rad := config.DegToRad(bearingDeg)
	dx, dy := math.Sin(rad), math.Cos(rad)

	best := math.Inf(1)
	found := false

	consider := func(t float64) {
		if t > 1e-9 && t < best {
			best = t
			found = true
		}
	}

	w, l := config.PoolWidth, config.PoolLength
	if dx > 1e-9 {
		consider((w - origin.X) / dx)
	} else if dx < -1e-9 {
		consider((0 - origin.X) / dx)
	}
	if dy > 1e-9 {
		consider((l - origin.Y) / dy)
	} else if dy < -1e-9 {
		consider((0 - origin.Y) / dy)
	}

	return best, found
}

// raycastVerticalLine intersects the bearing ray with the vertical line
// x = laneX, returning the distance if the intersection lies within the
// pool's along-track extent and ahead of the ray.
func raycastVerticalLine(origin vecmath.Vector2, bearingDeg, laneX float64) (float64, bool) {
	rad := config.DegToRad(bearingDeg)
	dx, dy := math.Sin(rad), math.Cos(rad)
	if math.Abs(dx) < 1e-9 {
		return 0, false
	}
	t := (laneX - origin.X) / dx
	if t <= 1e-9 {
		return 0, false
	}
	y := origin.Y + dy*t
	if y < 0 || y > config.PoolLength {
		return 0, false
	}
	dist := math.Hypot(laneX-origin.X, y-origin.Y)
	return dist, true
}

// TargetsFrom converts live swimmers into PingTargets (true positions only,
// never anything tracker-derived).
func TargetsFrom(swimmers []*world.Swimmer) []PingTarget {
	out := make([]PingTarget, len(swimmers))
	for i, sw := range swimmers {
		out[i] = PingTarget{ID: sw.ID, Position: sw.Position}
	}
	return out
}
