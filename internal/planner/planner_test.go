package planner

import (
	"testing"

	"github.com/PH-19/sonarscan-sim/internal/config"
	"github.com/PH-19/sonarscan-sim/internal/sonar"
	"github.com/stretchr/testify/assert"
)

func TestNaiveAlwaysScansAtMaxRange(t *testing.T) {
	s := sonar.New(sonar.CornerConfigs()[0])
	d := Naive(s)
	assert.Equal(t, config.MaxRangeNaive, d.ScanRange)
	assert.Equal(t, sonar.Scanning, d.Mode)
}

func TestNaiveFlipsTargetOnceAtTarget(t *testing.T) {
	s := sonar.New(sonar.CornerConfigs()[0])
	s.CurrentAngle = s.AbsMax()
	s.TargetAngle = s.AbsMax()

	d := Naive(s)
	assert.InDelta(t, s.AbsMin(), d.TargetAngle, 1e-6)
}

func TestNaiveHoldsTargetUntilArrival(t *testing.T) {
	s := sonar.New(sonar.CornerConfigs()[0])
	s.CurrentAngle = s.MountBearingDeg
	s.TargetAngle = s.AbsMax()

	d := Naive(s)
	assert.Equal(t, s.AbsMax(), d.TargetAngle)
}

func TestNaiveStaysWithinSectorBounds(t *testing.T) {
	s := sonar.New(sonar.CornerConfigs()[0])
	for i := 0; i < 50; i++ {
		d := Naive(s)
		assert.GreaterOrEqual(t, d.TargetAngle, s.AbsMin()-1e-6)
		assert.LessOrEqual(t, d.TargetAngle, s.AbsMax()+1e-6)
		s.TargetAngle = d.TargetAngle
		s.CurrentAngle = d.TargetAngle
	}
}
