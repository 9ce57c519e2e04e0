package detect

import (
	"math"

	"github.com/PH-19/sonarscan-sim/internal/config"
)

// point is a polar-bin coordinate seeded from a mask-on cell.
type point struct {
	a, r int
}

// dbscanGrid runs DBSCAN over the mask-on cells of mask, writing cluster
// labels into labels (0 = unvisited/unset, -1 = noise, >=1 = cluster id).
// Distance is Euclidean on (aIdx, rIdx); neighbor queries are bucketed on an
// eps-sized grid so the whole pass stays close to linear in the number of
// seed points rather than quadratic.
func dbscanGrid(mask []uint8, labels []int32, eps float64, minPts int) int {
	for i := range labels {
		labels[i] = 0
	}

	pts := make([]point, 0)
	for a := 0; a < config.ImagingFrameAngleBins; a++ {
		base := a * config.ImagingRangeBins
		for r := 0; r < config.ImagingRangeBins; r++ {
			if mask[base+r] != 0 {
				pts = append(pts, point{a, r})
			}
		}
	}
	if len(pts) == 0 {
		return 0
	}

	cell := eps
	if cell <= 0 {
		cell = 1
	}
	grid := make(map[[2]int][]int)
	cellOf := func(p point) [2]int {
		return [2]int{int(math.Floor(float64(p.a) / cell)), int(math.Floor(float64(p.r) / cell))}
	}
	for i, p := range pts {
		c := cellOf(p)
		grid[c] = append(grid[c], i)
	}

	neighbors := func(p point) []int {
		c := cellOf(p)
		out := make([]int, 0, minPts*2)
		for da := -1; da <= 1; da++ {
			for dr := -1; dr <= 1; dr++ {
				for _, j := range grid[[2]int{c[0] + da, c[1] + dr}] {
					q := pts[j]
					dA := float64(p.a - q.a)
					dR := float64(p.r - q.r)
					if dA*dA+dR*dR <= eps*eps {
						out = append(out, j)
					}
				}
			}
		}
		return out
	}

	visited := make([]bool, len(pts))
	clusterID := int32(0)

	var expand func(seed int, cid int32)
	expand = func(seed int, cid int32) {
		queue := []int{seed}
		for len(queue) > 0 {
			i := queue[0]
			queue = queue[1:]
			if !visited[i] {
				visited[i] = true
				nbrs := neighbors(pts[i])
				if len(nbrs) >= minPts {
					for _, j := range nbrs {
						if labels[idx(pts[j])] <= 0 {
							if labels[idx(pts[j])] == 0 {
								queue = append(queue, j)
							}
							labels[idx(pts[j])] = cid
						}
					}
				}
			}
			labels[idx(pts[i])] = cid
		}
	}

	for i, p := range pts {
		if labels[idx(p)] != 0 {
			continue
		}
		nbrs := neighbors(p)
		if len(nbrs) < minPts {
			labels[idx(p)] = -1
			continue
		}
		clusterID++
		expand(i, clusterID)
	}

	return int(clusterID)
}

func idx(p point) int {
	return p.a*config.ImagingRangeBins + p.r
}
