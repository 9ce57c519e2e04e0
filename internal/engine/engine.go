// Package engine is the top-level orchestrator: it owns one strategy's
// world, sonars, tracks, and metric tracker, and advances all of them one
// tick at a time. It is the only package that imports sonar, detect,
// planner, pso, kalman, evalmetrics, and world together; none of those
// packages know about each other beyond what their own signatures need.
package engine

import (
	"math"
	"sort"
	"strconv"

	"github.com/PH-19/sonarscan-sim/internal/config"
	"github.com/PH-19/sonarscan-sim/internal/evalmetrics"
	"github.com/PH-19/sonarscan-sim/internal/kalman"
	"github.com/PH-19/sonarscan-sim/internal/planner"
	"github.com/PH-19/sonarscan-sim/internal/rng"
	"github.com/PH-19/sonarscan-sim/internal/sonar"
	"github.com/PH-19/sonarscan-sim/internal/tuning"
	"github.com/PH-19/sonarscan-sim/internal/vecmath"
	"github.com/PH-19/sonarscan-sim/internal/world"
)

// Strategy selects which planner an Engine runs.
type Strategy int

const (
	Naive Strategy = iota
	Optimized
)

func (s Strategy) String() string {
	if s == Naive {
		return "NAIVE"
	}
	return "OPTIMIZED"
}

// Engine is one independent simulation instance: a world, four sonars, the
// tracked swimmers' Kalman filters, and the metric tracker, all advanced
// together by Tick. Two engines sharing a seed but different Strategy run
// in lockstep and are directly comparable.
type Engine struct {
	Strategy Strategy
	Seed     uint32
	Time     float64

	World    *world.World
	Sonars   []*sonar.Sonar
	Swimmers map[uint64]*world.Swimmer

	OptimizedAssignments map[int][]uint64

	tuning  tuning.Tuning
	tracks  map[uint64]*kalman.Filter
	tracker *evalmetrics.Tracker

	optimizer      *planner.Optimized
	nextID         uint64
	lastPSORun     float64
	ranPSO         bool
	lastTrackCount int
}

// New constructs an Engine with four corner-mounted sonars, default tuning,
// and no swimmers.
func New(strategy Strategy, seed uint32) *Engine {
	cfgs := sonar.CornerConfigs()
	sonars := make([]*sonar.Sonar, len(cfgs))
	for i, c := range cfgs {
		sonars[i] = sonar.New(c)
	}
	return &Engine{
		Strategy:             strategy,
		Seed:                 seed,
		World:                world.NewWorld(),
		Sonars:               sonars,
		Swimmers:             make(map[uint64]*world.Swimmer),
		OptimizedAssignments: make(map[int][]uint64),
		tuning:               tuning.Default(),
		tracks:               make(map[uint64]*kalman.Filter),
		tracker:              evalmetrics.NewTracker(),
		optimizer:            planner.NewOptimized(),
	}
}

// SetTuning merges partial into the current tuning, clamping every field to
// its allowed interval, and returns the resulting tuning.
func (e *Engine) SetTuning(partial tuning.Partial) tuning.Tuning {
	e.tuning = tuning.Merge(e.tuning, partial)
	return e.tuning
}

// Tuning returns the engine's current tuning.
func (e *Engine) Tuning() tuning.Tuning { return e.tuning }

// AddSwimmer adds a swimmer with the given initial position and velocity.
func (e *Engine) AddSwimmer(pos, vel vecmath.Vector2) *world.Swimmer {
	id := e.nextID
	e.nextID++
	s := world.NewSwimmer(id, pos, vel, e.Time, e.Seed)
	e.Swimmers[id] = s
	e.tracker.AddSwimmer(id, e.Time)
	return s
}

// AddRandomSwimmer spawns a swimmer at a seeded-random position anywhere in
// the pool, moving at a seeded-random speed in [0.3, 1.3) m/s along a
// seeded-random heading, for callers with no specific placement in
// mind (the "addSwimmer() with nothing" form of the engine API).
func (e *Engine) AddRandomSwimmer() *world.Swimmer {
	stream := rng.Named(e.Seed, "spawn", strconv.FormatUint(e.nextID, 10))
	pos := vecmath.Vector2{
		X: stream.Range(0, config.PoolWidth),
		Y: stream.Range(0, config.PoolLength),
	}
	speed := stream.Range(0.3, 1.3)
	heading := stream.Range(0, 2*math.Pi)
	vel := vecmath.Vector2{X: speed * math.Sin(heading), Y: speed * math.Cos(heading)}
	return e.AddSwimmer(pos, vel)
}

// RemoveSwimmerById removes a swimmer and its track; returns false if the id
// is unknown.
func (e *Engine) RemoveSwimmerById(id uint64) bool {
	if _, ok := e.Swimmers[id]; !ok {
		return false
	}
	delete(e.Swimmers, id)
	delete(e.tracks, id)
	e.tracker.RemoveSwimmer(id)
	return true
}

// orderedSwimmerIDs returns swimmer ids in ascending order: a stable
// iteration order so two runs over the same map contents never diverge.
func (e *Engine) orderedSwimmerIDs() []uint64 {
	ids := make([]uint64, 0, len(e.Swimmers))
	for id := range e.Swimmers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (e *Engine) orderedSwimmers() []*world.Swimmer {
	ids := e.orderedSwimmerIDs()
	out := make([]*world.Swimmer, len(ids))
	for i, id := range ids {
		out[i] = e.Swimmers[id]
	}
	return out
}

// Tick advances the engine by dt seconds: dt <= 0 is a no-op. Callers are
// expected to clamp dt to at most 0.1s.
func (e *Engine) Tick(dt float64) {
	if dt <= 0 {
		return
	}

	swimmers := e.orderedSwimmers()
	e.World.Step(dt, swimmers)
	tickStart := e.Time
	e.Time = e.World.Time

	for _, id := range e.orderedSwimmerIDs() {
		if tr, ok := e.tracks[id]; ok {
			tr.PredictTo(e.Time)
		}
	}

	if e.Strategy == Optimized {
		e.maybeRunPSO()
	}

	for _, s := range e.Sonars {
		e.tickSonar(s, dt, tickStart, swimmers)
	}
}

func (e *Engine) tickSonar(s *sonar.Sonar, dt, tickStart float64, swimmers []*world.Swimmer) {
	decision := e.plan(s)

	if s.WouldFinalizeFrame(decision.Mode, decision.TargetAngle) {
		e.finalizeFrame(s, swimmers)
	}

	s.Transition(decision.Mode, decision.TargetAngle, decision.ScanRange)

	if s.Mode == sonar.Scanning {
		e.tracker.RecordScanRate(s.ID, e.Time, 1/s.PingInterval())
	}

	targets := sonar.TargetsFrom(swimmers)
	s.Advance(dt, tickStart, targets, e.tuning, e.Seed)
}

func (e *Engine) plan(s *sonar.Sonar) planner.Decision {
	if e.Strategy == Naive {
		return planner.Naive(s)
	}

	tracks := e.trackEstimates()
	assigned := make(map[uint64]bool)
	for _, id := range e.OptimizedAssignments[s.ID] {
		assigned[id] = true
	}
	return e.optimizer.Plan(s, tracks, assigned, e.Time)
}

// Metrics reports the sliding-window EvalMetrics over the trailing
// windowSec seconds.
func (e *Engine) Metrics(windowSec float64) evalmetrics.EvalMetrics {
	e.tracker.Prune(e.Time, maxRetentionSec(windowSec))
	return e.tracker.Metrics(e.Time, windowSec)
}

func maxRetentionSec(windowSec float64) float64 {
	if windowSec < 60 {
		return 60
	}
	return windowSec
}

func (e *Engine) trackEstimates() []planner.TrackEstimate {
	ids := make([]uint64, 0, len(e.tracks))
	for id := range e.tracks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]planner.TrackEstimate, 0, len(ids))
	for _, id := range ids {
		tr := e.tracks[id]
		x, y := tr.Position()
		vx, vy := tr.Velocity()
		out = append(out, planner.TrackEstimate{
			SwimmerID: id,
			Position:  vecmath.Vector2{X: x, Y: y},
			Velocity:  vecmath.Vector2{X: vx, Y: vy},
		})
	}
	return out
}
