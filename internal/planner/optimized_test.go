package planner

import (
	"testing"

	"github.com/PH-19/sonarscan-sim/internal/config"
	"github.com/PH-19/sonarscan-sim/internal/sonar"
	"github.com/PH-19/sonarscan-sim/internal/vecmath"
	"github.com/stretchr/testify/assert"
)

func TestOptimizedFallsBackToFullSectorWithNoTracks(t *testing.T) {
	s := sonar.New(sonar.CornerConfigs()[0])
	o := NewOptimized()

	d := o.Plan(s, nil, nil, 0)
	assert.Equal(t, config.MaxRangeNaive, d.ScanRange)
	assert.Equal(t, sonar.Scanning, d.Mode)
}

func TestOptimizedNarrowsTowardTrackAndClampsRange(t *testing.T) {
	cfg := sonar.CornerConfigs()[0]
	s := sonar.New(cfg)
	o := NewOptimized()

	// a track directly ahead of the sonar, well within the sector
	target := vecmath.Vector2{X: cfg.Mount.X + 2, Y: cfg.Mount.Y + 2}
	tracks := []TrackEstimate{{SwimmerID: 1, Position: target}}

	d := o.Plan(s, tracks, nil, 0)
	assert.LessOrEqual(t, d.ScanRange, config.MaxRangeNaive)
	assert.Equal(t, sonar.Scanning, d.Mode)
	// the sweep narrows to the track's bearing +/- TARGET_PADDING_ANGLE, and
	// the head, heading upward, targets the upper narrowed bound
	assert.InDelta(t, cfg.MountBearingDeg+config.TargetPaddingAngleDeg, d.TargetAngle, 1e-9)
}

func TestOptimizedScanRangeNeverExceedsMaxRangeNaive(t *testing.T) {
	cfg := sonar.CornerConfigs()[0]
	s := sonar.New(cfg)
	o := NewOptimized()

	far := vecmath.Vector2{X: cfg.Mount.X + 1, Y: cfg.Mount.Y + 1000}
	tracks := []TrackEstimate{{SwimmerID: 1, Position: far}}

	d := o.Plan(s, tracks, nil, 0)
	assert.LessOrEqual(t, d.ScanRange, config.MaxRangeNaive)
}

func TestOptimizedRespectsAssignmentFilter(t *testing.T) {
	cfg := sonar.CornerConfigs()[0]
	s := sonar.New(cfg)
	o := NewOptimized()

	inSector := vecmath.Vector2{X: cfg.Mount.X + 2, Y: cfg.Mount.Y + 2}
	tracks := []TrackEstimate{{SwimmerID: 7, Position: inSector}}

	// track 7 exists but is not in the assigned set, so the sonar should
	// fall back to a full-sector sweep rather than narrowing onto it.
	assigned := map[uint64]bool{99: true}
	d := o.Plan(s, tracks, assigned, 0)
	assert.Equal(t, config.MaxRangeNaive, d.ScanRange)
}
