package engine

import (
	"sort"

	"github.com/PH-19/sonarscan-sim/internal/config"
	"github.com/PH-19/sonarscan-sim/internal/pso"
)

// maybeRunPSO re-runs the swarm assignment every PSO_UPDATE_INTERVAL
// seconds, or immediately when the track count changes. The first tick
// always runs it so optimizedAssignments reflects reality as soon as any
// tracks exist.
func (e *Engine) maybeRunPSO() {
	estimates := e.trackEstimates()
	trackCountChanged := e.ranPSO && len(estimates) != e.lastTrackCount
	if e.ranPSO && !trackCountChanged && e.Time-e.lastPSORun < config.PSOUpdateIntervalS {
		return
	}
	e.ranPSO = true
	e.lastPSORun = e.Time
	e.lastTrackCount = len(estimates)

	if len(estimates) == 0 {
		e.OptimizedAssignments = make(map[int][]uint64)
		return
	}

	infos := make([]pso.SonarInfo, len(e.Sonars))
	for i, s := range e.Sonars {
		infos[i] = pso.SonarInfo{ID: s.ID, Mount: s.Mount, MountBearingDeg: s.MountBearingDeg}
	}
	tracks := make([]pso.Track, len(estimates))
	for i, t := range estimates {
		tracks[i] = pso.Track{ID: t.SwimmerID, Position: t.Position}
	}

	assignments := pso.Assign(infos, tracks, e.Time, e.Seed)
	for _, ids := range assignments {
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}
	e.OptimizedAssignments = assignments
}
