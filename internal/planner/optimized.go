package planner

import (
	"math"

	"github.com/PH-19/sonarscan-sim/internal/config"
	"github.com/PH-19/sonarscan-sim/internal/sonar"
	"github.com/PH-19/sonarscan-sim/internal/vecmath"
)

// sweepMemory is the hysteresis state an Optimized planner keeps per sonar:
// the last-committed sweep bounds, when they were last updated, and which
// way the head is currently ping-ponging between them.
type sweepMemory struct {
	hasBounds  bool
	min, max   float64
	lastUpdate float64
	direction  float64
}

// Optimized is the track-driven adaptive planner. It owns one sweepMemory
// per sonar id, since the hysteresis rule needs to compare this tick's
// desired bounds against what was last committed.
type Optimized struct {
	mem map[int]*sweepMemory
}

// NewOptimized constructs an Optimized planner with no sweep history.
func NewOptimized() *Optimized {
	return &Optimized{mem: make(map[int]*sweepMemory)}
}

// Plan computes the next decision for sonar s. assigned is the set of
// track ids this sonar was given by the most recent PSO pass (nil or empty
// means "not currently assigned anything", in which case all tracks in
// range are considered).
func (o *Optimized) Plan(s *sonar.Sonar, tracks []TrackEstimate, assigned map[uint64]bool, now float64) Decision {
	mem, ok := o.mem[s.ID]
	if !ok {
		mem = &sweepMemory{direction: 1}
		o.mem[s.ID] = mem
	}

	pool := tracks
	if len(assigned) > 0 {
		pool = make([]TrackEstimate, 0, len(tracks))
		for _, t := range tracks {
			if assigned[t.SwimmerID] {
				pool = append(pool, t)
			}
		}
	}

	type sectorTrack struct {
		relBearing float64
		dist       float64
	}
	var inSector []sectorTrack
	for _, t := range pool {
		rel, ok := bearingWithinSector(s, t.Position)
		if !ok {
			continue
		}
		inSector = append(inSector, sectorTrack{relBearing: rel, dist: t.Position.Dist(s.Mount)})
	}

	if len(inSector) == 0 {
		mem.hasBounds = true
		mem.min, mem.max = s.AbsMin(), s.AbsMax()
		mem.lastUpdate = now
		return o.sweepDecision(s, mem, config.MaxRangeNaive)
	}

	relMin, relMax := inSector[0].relBearing, inSector[0].relBearing
	maxDist := 0.0
	for _, it := range inSector {
		if it.relBearing < relMin {
			relMin = it.relBearing
		}
		if it.relBearing > relMax {
			relMax = it.relBearing
		}
		if it.dist > maxDist {
			maxDist = it.dist
		}
	}

	desiredMin := s.MountBearingDeg + relMin - config.TargetPaddingAngleDeg
	desiredMax := s.MountBearingDeg + relMax + config.TargetPaddingAngleDeg

	minWidth := math.Max(config.OptSweepMinDeg, 2*config.TargetPaddingAngleDeg)
	if desiredMax-desiredMin < minWidth {
		mid := (desiredMin + desiredMax) / 2
		desiredMin = mid - minWidth/2
		desiredMax = mid + minWidth/2
	}
	desiredMin, desiredMax = clampPreserveWidth(desiredMin, desiredMax, s.AbsMin(), s.AbsMax())

	scanRange := vecmath.Clamp(maxDist+config.TargetPaddingRangeM, 1, config.MaxRangeNaive)

	shouldReplan := !mem.hasBounds ||
		s.AtTarget() ||
		s.CurrentAngle < mem.min-1e-6 || s.CurrentAngle > mem.max+1e-6 ||
		(driftExceeds(mem.min, mem.max, desiredMin, desiredMax, config.OptSweepReplanDeg) && now-mem.lastUpdate >= config.OptSweepMaxHoldSec)

	if shouldReplan {
		mem.hasBounds = true
		mem.min, mem.max = desiredMin, desiredMax
		mem.lastUpdate = now
	}

	return o.sweepDecision(s, mem, scanRange)
}

// sweepDecision ping-pongs the head between mem's stored bounds: once the
// head reaches its current target, the direction flips; a mid-sweep bound
// change (a replan) is adopted immediately by re-reading mem.min/mem.max
// for whichever direction is already in effect.
func (o *Optimized) sweepDecision(s *sonar.Sonar, mem *sweepMemory, scanRange float64) Decision {
	if s.AtTarget() {
		mem.direction = -mem.direction
	}

	target := mem.min
	if mem.direction >= 0 {
		target = mem.max
	}

	return Decision{TargetAngle: target, Mode: sonar.Scanning, ScanRange: scanRange}
}

func driftExceeds(aMin, aMax, bMin, bMax, thresholdDeg float64) bool {
	return math.Abs(aMin-bMin) >= thresholdDeg || math.Abs(aMax-bMax) >= thresholdDeg
}

func clampPreserveWidth(minA, maxA, absMin, absMax float64) (float64, float64) {
	width := maxA - minA
	if minA < absMin {
		minA = absMin
		maxA = minA + width
	}
	if maxA > absMax {
		maxA = absMax
		minA = maxA - width
	}
	if minA < absMin {
		minA = absMin
	}
	if maxA > absMax {
		maxA = absMax
	}
	return minA, maxA
}
