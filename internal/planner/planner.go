// Package planner implements the two sweep strategies: NAIVE's bang-bang
// full-sector sweep, and OPTIMIZED's track-driven adaptive sweep with
// hysteresis on its stored bounds. Both produce a Decision the engine
// applies to a sonar's motion state; neither mutates the sonar directly.
package planner

import (
	"math"

	"github.com/PH-19/sonarscan-sim/internal/config"
	"github.com/PH-19/sonarscan-sim/internal/sonar"
	"github.com/PH-19/sonarscan-sim/internal/vecmath"
)

// Decision is what a planner hands back to the engine for one sonar, one
// tick: the next commanded target angle, motion mode, and scan range.
type Decision struct {
	TargetAngle float64
	Mode        sonar.Mode
	ScanRange   float64
}

// TrackEstimate is the planner's only window into target state: a
// Kalman-predicted position and velocity, never a swimmer's ground-truth
// position.
type TrackEstimate struct {
	SwimmerID uint64
	Position  vecmath.Vector2
	Velocity  vecmath.Vector2
}

// Naive computes the full-sector bang-bang decision: scan at MAX_RANGE_NAIVE
// always, flipping target to the opposite sector extreme once the head is
// within 1 degree of its current target.
func Naive(s *sonar.Sonar) Decision {
	target := s.TargetAngle
	if s.AtTarget() {
		if math.Abs(target-s.AbsMax()) < 1e-6 {
			target = s.AbsMin()
		} else {
			target = s.AbsMax()
		}
	}
	return Decision{TargetAngle: target, Mode: sonar.Scanning, ScanRange: config.MaxRangeNaive}
}

func bearingWithinSector(s *sonar.Sonar, pos vecmath.Vector2) (float64, bool) {
	bearing := vecmath.BearingFrom(s.Mount, pos)
	rel := vecmath.AngleDiffDeg(s.MountBearingDeg, bearing)
	if math.Abs(rel) > config.SonarSweepHalfWidthDeg {
		return rel, false
	}
	return rel, true
}
