// Package evalmetrics performs the two candidate-to-ground-truth matchings
// run at every frame finalization, and rolls the resulting events up into
// the sliding-window EvalMetrics the engine reports to its caller.
package evalmetrics

import (
	"math"
	"sort"

	"github.com/PH-19/sonarscan-sim/internal/config"
	"github.com/PH-19/sonarscan-sim/internal/detect"
	"github.com/PH-19/sonarscan-sim/internal/vecmath"
)

// GroundTruth is one swimmer's true state as seen from a single sonar at
// frame-finalization time, used to build the IoU and distance gates.
type GroundTruth struct {
	SwimmerID uint64
	Position  vecmath.Vector2
	BearingDeg float64
	RangeM     float64
}

// IoUResult is the outcome of one frame's IoU matching: counts for the
// sliding-window precision/recall/f1/mdr/meanIoU rollup.
type IoUResult struct {
	TP, FP, FN int
	IoUSum     float64
}

// DistancePair is one accepted distance-match, handed to the tracker layer
// so it can update lastSeen/updateTimes/firstDetection/Kalman state.
type DistancePair struct {
	SwimmerID       uint64
	Candidate       detect.Candidate
	LocalizationErr float64
}

// gtBBox derives the polar ground-truth bbox for a swimmer: a half extent in
// angle of max(IMAGING_FOV_DEG/2, atan((diameter/2)/dist)), and in range of
// max(IMAGING_BLOB_RADIUS_BINS, (diameter/2)/rangeStep) bins converted back
// to the candidate's angle/range units (degrees, meters).
func gtBBox(gt GroundTruth) vecmath.Rect {
	halfDiam := config.SimSwimmerDiameterM / 2
	dist := math.Max(gt.RangeM, 0.01)

	halfAngleDeg := math.Max(config.ImagingFOVDeg/2, vecmath.RadToDeg(math.Atan(halfDiam/dist)))
	halfRangeBins := math.Max(config.ImagingBlobRadiusBins, halfDiam/config.RangeStepM())
	halfRangeM := halfRangeBins * config.RangeStepM()

	return vecmath.Rect{
		MinA: gt.BearingDeg - halfAngleDeg,
		MaxA: gt.BearingDeg + halfAngleDeg,
		MinR: dist - halfRangeM,
		MaxR: dist + halfRangeM,
	}
}

func candidateBBox(c detect.Candidate) vecmath.Rect {
	return vecmath.Rect{
		MinA: c.BBoxAngleDeg[0],
		MaxA: c.BBoxAngleDeg[1],
		MinR: c.BBoxRangeM[0],
		MaxR: c.BBoxRangeM[1],
	}
}

type iouEdge struct {
	ci, gi int
	iou    float64
}

// MatchIoU performs the detection-quality matching: greedy descending-IoU,
// one-to-one, additionally gated by Cartesian distance.
func MatchIoU(candidates []detect.Candidate, truths []GroundTruth) IoUResult {
	var edges []iouEdge
	for ci, c := range candidates {
		cb := candidateBBox(c)
		for gi, g := range truths {
			if c.Position.Dist(g.Position) > config.MatchGateRadiusM {
				continue
			}
			iou := cb.IoU(gtBBox(g))
			if iou >= config.AquascanIoUMatchThreshold {
				edges = append(edges, iouEdge{ci: ci, gi: gi, iou: iou})
			}
		}
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].iou > edges[j].iou })

	usedC := make(map[int]bool, len(candidates))
	usedG := make(map[int]bool, len(truths))
	var res IoUResult
	for _, e := range edges {
		if usedC[e.ci] || usedG[e.gi] {
			continue
		}
		usedC[e.ci] = true
		usedG[e.gi] = true
		res.TP++
		res.IoUSum += e.iou
	}
	res.FP = len(candidates) - len(usedC)
	res.FN = len(truths) - len(usedG)
	return res
}

type distEdge struct {
	ci, gi int
	dist   float64
}

// MatchDistance performs the tracker-metric matching: greedy
// ascending-distance, one-to-one, gated by MATCH_GATE_RADIUS_M. The
// returned pairs carry each match's raw localization error (candidate vs
// true position).
func MatchDistance(candidates []detect.Candidate, truths []GroundTruth) []DistancePair {
	var edges []distEdge
	for ci, c := range candidates {
		for gi, g := range truths {
			d := c.Position.Dist(g.Position)
			if d <= config.MatchGateRadiusM {
				edges = append(edges, distEdge{ci: ci, gi: gi, dist: d})
			}
		}
	}
	sort.Slice(edges, func(i, j int) bool { return edges[i].dist < edges[j].dist })

	usedC := make(map[int]bool, len(candidates))
	usedG := make(map[int]bool, len(truths))
	var pairs []DistancePair
	for _, e := range edges {
		if usedC[e.ci] || usedG[e.gi] {
			continue
		}
		usedC[e.ci] = true
		usedG[e.gi] = true
		pairs = append(pairs, DistancePair{
			SwimmerID:       truths[e.gi].SwimmerID,
			Candidate:       candidates[e.ci],
			LocalizationErr: e.dist,
		})
	}
	return pairs
}
