package detect

import "github.com/PH-19/sonarscan-sim/internal/config"

// majorityFilter computes the range-direction 1-D edge-aware majority
// filter with the given window length, row by row (row = one angle bin's R
// range cells). Each output cell is 1 iff the count of set cells in the
// window, truncated to the row's bounds, exceeds floor(windowLen/2); the
// threshold stays pinned to the nominal windowLen even where the summed
// window is truncated, so edge cells face the same bar as interior cells.
// A sliding sum keeps the whole row O(R) regardless of windowLen.
func majorityFilter(mask []uint8, out []uint8, windowLen int) {
	r := config.ImagingRangeBins
	half := windowLen / 2

	for a := 0; a < config.ImagingFrameAngleBins; a++ {
		base := a * r

		lo, hi := 0, 0
		sum := 0
		for i := 0; i < r; i++ {
			newLo := i - half
			if newLo < 0 {
				newLo = 0
			}
			newHi := i + half
			if newHi > r-1 {
				newHi = r - 1
			}

			if i == 0 {
				for j := newLo; j <= newHi; j++ {
					sum += int(mask[base+j])
				}
			} else {
				if newHi > hi {
					sum += int(mask[base+newHi])
				}
				if newLo > lo {
					sum -= int(mask[base+lo])
				}
			}
			lo, hi = newLo, newHi

			if sum*2 > windowLen {
				out[base+i] = 1
			} else {
				out[base+i] = 0
			}
		}
	}
}
