// Package detect implements the per-frame detection pipeline: background
// subtraction, weak-echo elimination, the adaptive dual-kernel denoiser,
// DBSCAN clustering in polar-bin space, physical-plausibility filtering,
// and candidate construction with measurement-noise modeling.
package detect

import (
	"github.com/PH-19/sonarscan-sim/internal/config"
	"github.com/PH-19/sonarscan-sim/internal/sonar"
)

// applyWarmup blends the current frame into the background model at the
// warm-up alpha and decrements the warm-up counter. Returns true if the
// warmup shortcut was taken (in which case no detection work runs and no
// candidates are emitted).
func applyWarmup(f *sonar.Frame, swimmerCount int) bool {
	if f.WarmupFramesLeft <= 0 || swimmerCount > 0 {
		return false
	}
	for i := range f.Intensity {
		f.Background[i] = (1-config.WarmupAlpha)*f.Background[i] + config.WarmupAlpha*f.Intensity[i]
	}
	f.WarmupFramesLeft--
	return true
}

// subtractBackground fills f.Subtracted = max(0, intensity - background).
func subtractBackground(f *sonar.Frame) {
	for i := range f.Intensity {
		d := f.Intensity[i] - f.Background[i]
		if d < 0 {
			d = 0
		}
		f.Subtracted[i] = d
	}
}

// updateBackground blends observed-angle columns into the background model
// at the standard EMA alpha, but only where intensity hasn't jumped past
// background+slack (a genuine echo shouldn't get absorbed into the
// background it's supposed to stand out from). Columns that received no
// ping this frame are left untouched; Frame.Reset already carried the
// background forward into them so they generate no detections next frame.
func updateBackground(f *sonar.Frame) {
	r := config.ImagingRangeBins
	for a := 0; a < config.ImagingFrameAngleBins; a++ {
		if !f.ObservedAngles[a] {
			continue
		}
		base := a * r
		for i := base; i < base+r; i++ {
			if f.Intensity[i] <= f.Background[i]+config.BackgroundUpdateSlack {
				f.Background[i] = (1-config.BackgroundAlpha)*f.Background[i] + config.BackgroundAlpha*f.Intensity[i]
			}
		}
	}
}
