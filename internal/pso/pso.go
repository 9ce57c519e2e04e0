// Package pso assigns swimmers (as tracks) to sonars so as to minimize the
// slowest sonar's estimated scan cycle, using a small particle-swarm
// optimizer reseeded deterministically every PSO_UPDATE_INTERVAL.
package pso

import (
	"math"
	"sort"
	"strconv"

	"github.com/PH-19/sonarscan-sim/internal/config"
	"github.com/PH-19/sonarscan-sim/internal/rng"
	"github.com/PH-19/sonarscan-sim/internal/sonar"
	"github.com/PH-19/sonarscan-sim/internal/vecmath"
)

// Track is the minimal per-track input the assignment needs: id and
// Kalman-predicted position.
type Track struct {
	ID       uint64
	Position vecmath.Vector2
}

// SonarInfo is the minimal per-sonar geometry the assignment needs.
type SonarInfo struct {
	ID              int
	Mount           vecmath.Vector2
	MountBearingDeg float64
}

// Assign runs the swarm and returns, for each sonar id, the list of track
// ids assigned to it. now and nTargets feed the deterministic stream key
// (seed, "pso", floor(now/UPDATE_INTERVAL), nTargets), so re-running the
// assignment with the same inputs always reproduces the same swarm.
func Assign(sonars []SonarInfo, tracks []Track, now float64, seed uint32) map[int][]uint64 {
	result := make(map[int][]uint64)
	if len(tracks) == 0 || len(sonars) == 0 {
		return result
	}

	bucket := int64(math.Floor(now / config.PSOUpdateIntervalS))
	stream := rng.Named(seed, "pso", strconv.FormatInt(bucket, 10), strconv.Itoa(len(tracks)))

	nTracks := len(tracks)
	nSonars := len(sonars)

	eligible := make([][]int, nTracks)
	for i, t := range tracks {
		for si, sn := range sonars {
			rel := vecmath.AngleDiffDeg(sn.MountBearingDeg, vecmath.BearingFrom(sn.Mount, t.Position))
			if math.Abs(rel) <= config.SonarSweepHalfWidthDeg {
				eligible[i] = append(eligible[i], si)
			}
		}
		if len(eligible[i]) == 0 {
			eligible[i] = []int{closestSonar(sonars, t.Position)}
		}
	}

	cost := func(pos []float64) float64 {
		groups := make(map[int][]Track)
		invalid := 0
		for i, v := range pos {
			si := decodeSonar(v, nSonars)
			groups[si] = append(groups[si], tracks[i])
			if !contains(eligible[i], si) {
				invalid++
			}
		}
		worst := 0.0
		for si, sn := range sonars {
			d := cycleDurationOptimized(sn, groups[si])
			if d > worst {
				worst = d
			}
		}
		return worst + config.PSOInvalidPenalty*float64(invalid)
	}

	particles := make([][]float64, config.PSOSwarmSize)
	velocities := make([][]float64, config.PSOSwarmSize)
	pBest := make([][]float64, config.PSOSwarmSize)
	pBestCost := make([]float64, config.PSOSwarmSize)

	var gBest []float64
	gBestCost := math.Inf(1)

	for p := 0; p < config.PSOSwarmSize; p++ {
		pos := make([]float64, nTracks)
		vel := make([]float64, nTracks)
		for i := range pos {
			if p == 0 {
				pos[i] = float64(eligible[i][0])
			} else {
				pos[i] = stream.Range(0, float64(nSonars))
			}
			vel[i] = stream.Range(-1, 1)
		}
		particles[p] = pos
		velocities[p] = vel
		c := cost(pos)
		pBest[p] = append([]float64(nil), pos...)
		pBestCost[p] = c
		if c < gBestCost {
			gBestCost = c
			gBest = append([]float64(nil), pos...)
		}
	}

	for iter := 0; iter < config.PSOIterations; iter++ {
		for p := 0; p < config.PSOSwarmSize; p++ {
			pos := particles[p]
			vel := velocities[p]
			for i := range pos {
				r1 := stream.Float64()
				r2 := stream.Float64()
				vel[i] = config.PSOInertia*vel[i] +
					config.PSOCognitive*r1*(pBest[p][i]-pos[i]) +
					config.PSOSocial*r2*(gBest[i]-pos[i])
				pos[i] = vecmath.Clamp(pos[i]+vel[i], 0, float64(nSonars-1))
			}
			c := cost(pos)
			if c < pBestCost[p] {
				pBestCost[p] = c
				pBest[p] = append([]float64(nil), pos...)
			}
			if c < gBestCost {
				gBestCost = c
				gBest = append([]float64(nil), pos...)
			}
		}
	}

	for i, v := range gBest {
		si := decodeSonar(v, nSonars)
		sonarID := sonars[si].ID
		result[sonarID] = append(result[sonarID], tracks[i].ID)
	}
	for _, ids := range result {
		sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
	}
	return result
}

func decodeSonar(v float64, n int) int {
	return vecmath.ClampInt(int(math.Round(v)), 0, n-1)
}

func contains(xs []int, v int) bool {
	for _, x := range xs {
		if x == v {
			return true
		}
	}
	return false
}

func closestSonar(sonars []SonarInfo, pos vecmath.Vector2) int {
	best, bestDist := 0, math.Inf(1)
	for i, s := range sonars {
		d := s.Mount.Dist(pos)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

type scanInterval struct {
	startDeg, endDeg float64
	rangeM           float64
}

// cycleDurationOptimized estimates the full scan-and-return cycle for a
// sonar given a hypothetical set of assigned tracks: per-track scan
// intervals (bearing +/- TARGET_PADDING_ANGLE, range padded by
// TARGET_PADDING_RANGE) are merged after sorting by start, gaps between
// merged intervals are slewed at SLEW_SPEED, and each merged interval is
// scanned at the speed its (worst-case) range allows. The result doubles
// the one-way pass to approximate the round trip back to the start angle.
func cycleDurationOptimized(sn SonarInfo, tracks []Track) float64 {
	if len(tracks) == 0 {
		return 0
	}

	intervals := make([]scanInterval, 0, len(tracks))
	for _, t := range tracks {
		bearing := vecmath.BearingFrom(sn.Mount, t.Position)
		rel := vecmath.AngleDiffDeg(sn.MountBearingDeg, bearing)
		abs := sn.MountBearingDeg + rel
		dist := t.Position.Dist(sn.Mount)
		intervals = append(intervals, scanInterval{
			startDeg: abs - config.TargetPaddingAngleDeg,
			endDeg:   abs + config.TargetPaddingAngleDeg,
			rangeM:   vecmath.Clamp(dist+config.TargetPaddingRangeM, 1, config.MaxRangeNaive),
		})
	}

	sort.Slice(intervals, func(i, j int) bool { return intervals[i].startDeg < intervals[j].startDeg })

	merged := []scanInterval{intervals[0]}
	for _, iv := range intervals[1:] {
		last := &merged[len(merged)-1]
		if iv.startDeg <= last.endDeg {
			if iv.endDeg > last.endDeg {
				last.endDeg = iv.endDeg
			}
			if iv.rangeM > last.rangeM {
				last.rangeM = iv.rangeM
			}
		} else {
			merged = append(merged, iv)
		}
	}

	oneWay := 0.0
	prevEnd := merged[0].startDeg
	for _, iv := range merged {
		gap := iv.startDeg - prevEnd
		if gap > 0 {
			oneWay += gap / config.SlewSpeedDegPerSec
		}
		width := iv.endDeg - iv.startDeg
		speed := sonar.EffectiveSpeedForRange(iv.rangeM)
		oneWay += width / speed
		prevEnd = iv.endDeg
	}

	return 2 * oneWay
}
