package detect

import (
	"testing"

	"github.com/PH-19/sonarscan-sim/internal/sonar"
	"github.com/PH-19/sonarscan-sim/internal/tuning"
	"github.com/PH-19/sonarscan-sim/internal/vecmath"
	"github.com/stretchr/testify/assert"
)

func TestRunWarmsUpWithNoSwimmersAndNoCandidates(t *testing.T) {
	f := sonar.NewFrame()
	tune := tuning.Default()

	before := f.WarmupFramesLeft
	cands := Run(f, 0, vecmath.Vector2{}, 0, 0, tune, 0, 1)

	assert.Nil(t, cands)
	assert.Equal(t, before-1, f.WarmupFramesLeft)
}

func TestRunOnAFlatFrameProducesNoCandidates(t *testing.T) {
	f := sonar.NewFrame()
	// exhaust warmup so the detector actually runs its threshold pipeline
	f.WarmupFramesLeft = 0
	tune := tuning.Default()

	cands := Run(f, 0, vecmath.Vector2{}, 0, 2, tune, 0, 1)
	assert.Empty(t, cands)
}

func TestRunNeverExceedsMaxClustersPerPing(t *testing.T) {
	f := sonar.NewFrame()
	f.WarmupFramesLeft = 0
	tune := tuning.Default()

	// light up several well-separated angle bands with strong, spatially
	// compact echoes so multiple clusters survive the physical-plausibility
	// filter, to exercise the top-N-by-amplitude cap.
	bands := []int{5, 20, 35, 50, 65, 80}
	for _, a := range bands {
		for da := 0; da < 2; da++ {
			for r := 40; r < 44; r++ {
				f.Intensity[sonar.Index(a+da, r)] = 9
			}
		}
	}

	cands := Run(f, 0, vecmath.Vector2{}, 0, 3, tune, 0, 1)
	assert.LessOrEqual(t, len(cands), 5)
}
