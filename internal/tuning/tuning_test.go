package tuning

import (
	"testing"

	"github.com/PH-19/sonarscan-sim/internal/config"
	"github.com/stretchr/testify/assert"
)

func f(v float64) *float64 { return &v }
func i(v int) *int         { return &v }

func TestMergeClampsOutOfRangeValues(t *testing.T) {
	base := Default()
	out := Merge(base, Partial{NoiseScale: f(999)})
	assert.Equal(t, 5.0, out.NoiseScale)

	out = Merge(base, Partial{NoiseScale: f(-5)})
	assert.Equal(t, 0.0, out.NoiseScale)
}

func TestMergeOnlyTouchesSetFields(t *testing.T) {
	base := Default()
	out := Merge(base, Partial{Threshold: f(3)})
	assert.Equal(t, 3.0, out.Threshold)
	assert.Equal(t, base.NoiseScale, out.NoiseScale)
	assert.Equal(t, base.SpeckleProb, out.SpeckleProb)
}

func TestMergeRoundsKernelCapDownToOdd(t *testing.T) {
	base := Default()
	out := Merge(base, Partial{KernelCap: i(8)})
	assert.Equal(t, 7, out.KernelCap)

	out = Merge(base, Partial{KernelCap: i(1)})
	assert.Equal(t, 3, out.KernelCap)
}

func TestMergeClampsDBSCANMinPtsAsInt(t *testing.T) {
	base := Default()
	out := Merge(base, Partial{DBSCANMinPts: i(1000)})
	assert.Equal(t, 200, out.DBSCANMinPts)
}

func TestDefaultMatchesConfigDefaults(t *testing.T) {
	d := Default()
	assert.Equal(t, config.DefaultNoiseScale, d.NoiseScale)
	assert.Equal(t, config.DefaultDBSCANMinPts, d.DBSCANMinPts)
}
