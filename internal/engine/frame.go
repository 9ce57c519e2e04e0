package engine

import (
	"math"

	"github.com/PH-19/sonarscan-sim/internal/config"
	"github.com/PH-19/sonarscan-sim/internal/detect"
	"github.com/PH-19/sonarscan-sim/internal/evalmetrics"
	"github.com/PH-19/sonarscan-sim/internal/kalman"
	"github.com/PH-19/sonarscan-sim/internal/sonar"
	"github.com/PH-19/sonarscan-sim/internal/vecmath"
	"github.com/PH-19/sonarscan-sim/internal/world"
)

// groundTruthForSector returns the swimmers within sonar s's 90 degree
// sector and within MAX_RANGE_NAIVE at the current instant: the ground
// truth set gathered at frame-finalization time for matching.
func groundTruthForSector(s *sonar.Sonar, swimmers []*world.Swimmer) []evalmetrics.GroundTruth {
	var out []evalmetrics.GroundTruth
	for _, sw := range swimmers {
		bearing := vecmath.BearingFrom(s.Mount, sw.Position)
		rel := vecmath.AngleDiffDeg(s.MountBearingDeg, bearing)
		if math.Abs(rel) > config.SonarSweepHalfWidthDeg {
			continue
		}
		dist := sw.Position.Dist(s.Mount)
		if dist > config.MaxRangeNaive {
			continue
		}
		out = append(out, evalmetrics.GroundTruth{
			SwimmerID:  sw.ID,
			Position:   sw.Position,
			BearingDeg: bearing,
			RangeM:     dist,
		})
	}
	return out
}

// finalizeFrame runs the detection pipeline on sonar s's completed frame,
// performs both matchings against ground truth, updates per-swimmer Kalman
// tracks on distance-matches, rolls the results into the metric tracker,
// and resets the frame buffer for the next segment.
func (e *Engine) finalizeFrame(s *sonar.Sonar, swimmers []*world.Swimmer) {
	truths := groundTruthForSector(s, swimmers)

	candidates := detect.Run(s.Frame, s.ID, s.Mount, s.AbsMin(), len(e.Swimmers), e.tuning, e.Time, e.Seed)

	iouRes := evalmetrics.MatchIoU(candidates, truths)
	e.tracker.RecordFrame(s.ID, e.Time, iouRes)

	pairs := evalmetrics.MatchDistance(candidates, truths)
	truthByID := make(map[uint64]vecmath.Vector2, len(truths))
	for _, g := range truths {
		truthByID[g.SwimmerID] = g.Position
	}

	for _, pair := range pairs {
		track, ok := e.tracks[pair.SwimmerID]
		if !ok {
			posVar := math.Max(4, 9*pair.Candidate.MeasSigma*pair.Candidate.MeasSigma)
			track = kalman.New(pair.Candidate.Position.X, pair.Candidate.Position.Y, e.Time, posVar, config.KalmanVelVar)
			e.tracks[pair.SwimmerID] = track
		}
		track.PredictTo(e.Time)
		track.Update(pair.Candidate.Position.X, pair.Candidate.Position.Y, pair.Candidate.MeasSigma)

		trackingErr := pair.LocalizationErr
		if truePos, ok := truthByID[pair.SwimmerID]; ok {
			tx, ty := track.Position()
			trackingErr = vecmath.Vector2{X: tx, Y: ty}.Dist(truePos)
		}

		e.tracker.RecordMatch(pair.SwimmerID, e.Time, pair.LocalizationErr, trackingErr)
		s.PushMatched(pair.Candidate.Position)
	}

	for _, c := range candidates {
		s.PushDetected(c.Position)
	}

	e.tracker.RecordFrameCompletion(s.ID, e.Time)
	s.Frame.Reset()
}
