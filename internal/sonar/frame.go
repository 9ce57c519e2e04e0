package sonar

import "github.com/PH-19/sonarscan-sim/internal/config"

// Frame is the polar intensity image a sonar accumulates ping by ping, plus
// its ancillary masks and the background model, which persists across
// frames. All arrays are fixed-size flat float32/uint8/int32 slices of
// A*R cells to keep the detection pipeline allocation-free on its hot path.
type Frame struct {
	Intensity  []float32
	Background []float32
	Subtracted []float32

	Mask      []uint8
	MaskSmall []uint8
	MaskLarge []uint8

	Labels []int32

	ObservedAngles []bool

	WarmupFramesLeft int
	FrameID          uint64
}

// NewFrame allocates a zeroed frame buffer sized A*R, with the background
// warm-up counter primed to its configured starting value.
func NewFrame() *Frame {
	n := config.ImagingFrameAngleBins * config.ImagingRangeBins
	return &Frame{
		Intensity:        make([]float32, n),
		Background:       make([]float32, n),
		Subtracted:       make([]float32, n),
		Mask:             make([]uint8, n),
		MaskSmall:        make([]uint8, n),
		MaskLarge:        make([]uint8, n),
		Labels:           make([]int32, n),
		ObservedAngles:   make([]bool, config.ImagingFrameAngleBins),
		WarmupFramesLeft: config.ImagingBackgroundWarmupFrames,
	}
}

// Index maps a (angle bin, range bin) pair to a flat cell index.
func Index(aIdx, rIdx int) int {
	return aIdx*config.ImagingRangeBins + rIdx
}

// Reset prepares the frame for the next accumulation cycle: intensity
// columns that received no ping last frame already carry the background
// forward (so subtraction there is zero); columns that did get a ping are
// re-primed for the new frame from the (possibly just-updated) background
// too, since each frame starts clean and is filled in only by the pings it
// actually receives.
func (f *Frame) Reset() {
	copy(f.Intensity, f.Background)
	for i := range f.ObservedAngles {
		f.ObservedAngles[i] = false
	}
	f.FrameID++
}
