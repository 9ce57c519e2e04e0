package pso

import (
	"testing"

	"github.com/PH-19/sonarscan-sim/internal/sonar"
	"github.com/PH-19/sonarscan-sim/internal/vecmath"
	"github.com/stretchr/testify/assert"
)

func cornerSonarInfos() []SonarInfo {
	cfgs := sonar.CornerConfigs()
	infos := make([]SonarInfo, len(cfgs))
	for i, c := range cfgs {
		infos[i] = SonarInfo{ID: c.ID, Mount: c.Mount, MountBearingDeg: c.MountBearingDeg}
	}
	return infos
}

func TestAssignEmptyInputsReturnEmptyMap(t *testing.T) {
	infos := cornerSonarInfos()
	assert.Empty(t, Assign(infos, nil, 0, 1))
	assert.Empty(t, Assign(nil, []Track{{ID: 1}}, 0, 1))
}

func TestAssignCoversEveryTrackExactlyOnce(t *testing.T) {
	infos := cornerSonarInfos()
	tracks := []Track{
		{ID: 1, Position: vecmath.Vector2{X: 2, Y: 2}},
		{ID: 2, Position: vecmath.Vector2{X: 18, Y: 2}},
		{ID: 3, Position: vecmath.Vector2{X: 10, Y: 25}},
	}

	assignments := Assign(infos, tracks, 0, 7)

	seen := make(map[uint64]bool)
	for _, ids := range assignments {
		for _, id := range ids {
			assert.False(t, seen[id], "track %d assigned more than once", id)
			seen[id] = true
		}
	}
	assert.Len(t, seen, len(tracks))
}

func TestAssignIsDeterministicForSameSeedAndTime(t *testing.T) {
	infos := cornerSonarInfos()
	tracks := []Track{
		{ID: 1, Position: vecmath.Vector2{X: 2, Y: 2}},
		{ID: 2, Position: vecmath.Vector2{X: 18, Y: 48}},
	}

	a := Assign(infos, tracks, 12.8, 42)
	b := Assign(infos, tracks, 12.8, 42)
	assert.Equal(t, a, b)
}

func TestCycleDurationOptimizedIsZeroWithNoTracks(t *testing.T) {
	sn := cornerSonarInfos()[0]
	assert.Equal(t, 0.0, cycleDurationOptimized(sn, nil))
}

func TestCycleDurationOptimizedGrowsWithMoreTargets(t *testing.T) {
	sn := cornerSonarInfos()[0]
	one := []Track{{ID: 1, Position: vecmath.Vector2{X: 2, Y: 2}}}
	many := []Track{
		{ID: 1, Position: vecmath.Vector2{X: 2, Y: 2}},
		{ID: 2, Position: vecmath.Vector2{X: 8, Y: 15}},
		{ID: 3, Position: vecmath.Vector2{X: 15, Y: 30}},
	}

	durOne := cycleDurationOptimized(sn, one)
	durMany := cycleDurationOptimized(sn, many)
	assert.Greater(t, durMany, durOne)
}

func TestDecodeSonarClampsToValidRange(t *testing.T) {
	assert.Equal(t, 0, decodeSonar(-5, 4))
	assert.Equal(t, 3, decodeSonar(99, 4))
	assert.Equal(t, 2, decodeSonar(2.4, 4))
}
