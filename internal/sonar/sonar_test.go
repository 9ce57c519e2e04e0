package sonar

import (
	"testing"

	"github.com/PH-19/sonarscan-sim/internal/config"
	"github.com/PH-19/sonarscan-sim/internal/tuning"
	"github.com/stretchr/testify/assert"
)

func TestCornerConfigsCoverFourCorners(t *testing.T) {
	cfgs := CornerConfigs()
	assert.Len(t, cfgs, 4)
	for i, c := range cfgs {
		assert.Equal(t, i, c.ID)
	}
}

func TestNewParksAtSectorCenterScanning(t *testing.T) {
	cfg := CornerConfigs()[0]
	s := New(cfg)

	assert.Equal(t, Scanning, s.Mode)
	assert.Equal(t, cfg.MountBearingDeg, s.CurrentAngle)
	assert.Equal(t, config.MaxRangeNaive, s.ScanRange)
	assert.NotNil(t, s.Frame)
}

func TestAbsMinMaxBoundSectorBySweepHalfWidth(t *testing.T) {
	cfg := Config{ID: 0, MountBearingDeg: 45}
	assert.Equal(t, 45-config.SonarSweepHalfWidthDeg, cfg.AbsMin())
	assert.Equal(t, 45+config.SonarSweepHalfWidthDeg, cfg.AbsMax())
}

func TestMoveTowardSnapsWithinStep(t *testing.T) {
	s := New(CornerConfigs()[0])
	s.CurrentAngle = 0
	s.TargetAngle = 5

	s.MoveToward(10)
	assert.Equal(t, 5.0, s.CurrentAngle)
	assert.True(t, s.AtTarget())
}

func TestMoveTowardStepsPartialAndTracksDirection(t *testing.T) {
	s := New(CornerConfigs()[0])
	s.CurrentAngle = 0
	s.TargetAngle = 100

	s.MoveToward(10)
	assert.Equal(t, 10.0, s.CurrentAngle)
	assert.Equal(t, 1.0, s.Direction)
	assert.False(t, s.AtTarget())

	s.TargetAngle = -100
	s.MoveToward(10)
	assert.Equal(t, -1.0, s.Direction)
}

func TestPingIntervalIsFloored(t *testing.T) {
	s := New(CornerConfigs()[0])
	s.ScanRange = 0.0001
	assert.GreaterOrEqual(t, s.PingInterval(), config.MinPingIntervalS)
}

func TestEffectiveSpeedForRangeDecreasesWithRange(t *testing.T) {
	near := EffectiveSpeedForRange(5)
	far := EffectiveSpeedForRange(50)
	assert.Greater(t, near, far)
	assert.Greater(t, far, 0.0)
}

func TestPushCappedEvictsFromFront(t *testing.T) {
	s := New(CornerConfigs()[0])
	for i := 0; i < config.SonarPointBufferCap+5; i++ {
		s.PushDetected(s.Mount)
	}
	assert.Len(t, s.DetectedPoints, config.SonarPointBufferCap)
}

// A short ping interval fires many pings within one tick; each must land on
// the angle column the head occupied at that moment, not collapse onto the
// tick's final column.
func TestAdvanceSpreadsMultiplePingsAcrossAngleColumns(t *testing.T) {
	s := New(CornerConfigs()[0])
	s.CurrentAngle = s.AbsMin()
	s.TargetAngle = s.AbsMax()
	s.ScanRange = 3 // near target: pingInterval floors at MinPingIntervalS

	s.Advance(0.05, 0, nil, tuning.Default(), 1)

	observed := 0
	for _, ok := range s.Frame.ObservedAngles {
		if ok {
			observed++
		}
	}
	assert.Greater(t, observed, 1)
}

func TestHeadingAtFractionInterpolatesLinearly(t *testing.T) {
	assert.InDelta(t, 10.0, headingAtFraction(10, 20, 0), 1e-9)
	assert.InDelta(t, 15.0, headingAtFraction(10, 20, 0.5), 1e-9)
	assert.InDelta(t, 20.0, headingAtFraction(10, 20, 1), 1e-9)
}
