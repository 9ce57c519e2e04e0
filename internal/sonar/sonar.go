// Package sonar owns the per-sonar mechanical state machine, its polar
// frame buffers, and the ping writer that synthesizes one angle column at a
// time. Scheduling decisions (what to scan next) are supplied by the
// planner package and orchestrated tick-by-tick by the engine package;
// this package only knows how to move, ping, and accumulate a frame.
package sonar

import (
	"math"

	"github.com/PH-19/sonarscan-sim/internal/config"
	"github.com/PH-19/sonarscan-sim/internal/vecmath"
)

// Mode is the sonar's current motion mode.
type Mode int

const (
	Scanning Mode = iota
	Slewing
)

func (m Mode) String() string {
	if m == Scanning {
		return "SCANNING"
	}
	return "SLEWING"
}

// Config is the fixed, immutable mount geometry of one sonar.
type Config struct {
	ID              int
	Mount           vecmath.Vector2
	MountBearingDeg float64 // inward-pointing center of the 90 deg sector
}

// AbsMin returns the sector's lower absolute bound in degrees.
func (c Config) AbsMin() float64 { return c.MountBearingDeg - config.SonarSweepHalfWidthDeg }

// AbsMax returns the sector's upper absolute bound in degrees.
func (c Config) AbsMax() float64 { return c.MountBearingDeg + config.SonarSweepHalfWidthDeg }

// CornerConfigs returns the four corner-mounted sonars with mount bearings
// pointing inward, each covering a 90 degree sector of the pool.
func CornerConfigs() []Config {
	w, l := config.PoolWidth, config.PoolLength
	return []Config{
		{ID: 0, Mount: vecmath.Vector2{X: 0, Y: 0}, MountBearingDeg: 45},
		{ID: 1, Mount: vecmath.Vector2{X: w, Y: 0}, MountBearingDeg: 315},
		{ID: 2, Mount: vecmath.Vector2{X: w, Y: l}, MountBearingDeg: 225},
		{ID: 3, Mount: vecmath.Vector2{X: 0, Y: l}, MountBearingDeg: 135},
	}
}

// Sonar is the full mutable per-sonar state: mount geometry, motion state,
// and its frame buffers.
type Sonar struct {
	Config

	CurrentAngle    float64
	TargetAngle     float64
	Mode            Mode
	ScanRange       float64
	PingAccumulator float64
	LastScanTime    float64
	CycleDuration   float64
	Direction       float64 // last nonzero sweep direction, +1 or -1

	DetectedPoints []vecmath.Vector2
	MatchedPoints  []vecmath.Vector2

	Frame *Frame
}

// New constructs a sonar parked at the center of its sector, SCANNING at
// MAX_RANGE_NAIVE, with a fresh warm-up frame buffer.
func New(cfg Config) *Sonar {
	s := &Sonar{
		Config:       cfg,
		CurrentAngle: cfg.MountBearingDeg,
		TargetAngle:  cfg.AbsMax(),
		Mode:         Scanning,
		ScanRange:    config.MaxRangeNaive,
		Direction:    1,
		Frame:        NewFrame(),
	}
	return s
}

// RoundTripTime returns the acoustic round-trip time for a ping out to
// range r meters.
func RoundTripTime(r float64) float64 {
	return 2 * r / config.SpeedOfSound
}

// PingInterval returns the current per-ping emission interval given the
// sonar's commanded scanRange, floored to avoid runaway CPU as scanRange
// approaches zero.
func (s *Sonar) PingInterval() float64 {
	return math.Max(config.MinPingIntervalS, RoundTripTime(s.ScanRange)+config.Ping360ProcessingOverheadS)
}

// EffectiveSpeed returns the rotation speed in deg/s while SCANNING, which
// is acoustically limited by the round-trip time of the commanded range.
func (s *Sonar) EffectiveSpeed() float64 {
	return EffectiveSpeedForRange(s.ScanRange)
}

// EffectiveSpeedForRange returns the acoustically-limited scan speed for an
// arbitrary commanded range, independent of any live Sonar instance. The
// PSO cost model uses this to estimate cycle durations for hypothetical
// per-target assignments before committing to them.
func EffectiveSpeedForRange(r float64) float64 {
	interval := math.Max(config.MinPingIntervalS, RoundTripTime(r)+config.Ping360ProcessingOverheadS)
	return config.ScanStepAngleDeg / interval
}

// pushCapped appends v to buf, evicting from the front once the buffer
// reaches SonarPointBufferCap, keeping a small fixed-size FIFO for
// visualization consumers.
func pushCapped(buf []vecmath.Vector2, v vecmath.Vector2) []vecmath.Vector2 {
	buf = append(buf, v)
	if len(buf) > config.SonarPointBufferCap {
		buf = buf[len(buf)-config.SonarPointBufferCap:]
	}
	return buf
}

// PushDetected records a candidate position for visualization bookkeeping.
func (s *Sonar) PushDetected(v vecmath.Vector2) {
	s.DetectedPoints = pushCapped(s.DetectedPoints, v)
}

// PushMatched records a matched position for visualization bookkeeping.
func (s *Sonar) PushMatched(v vecmath.Vector2) {
	s.MatchedPoints = pushCapped(s.MatchedPoints, v)
}

// MoveToward advances CurrentAngle toward TargetAngle by at most maxStep
// degrees, snapping once within maxStep, and records the sweep direction
// taken. When CurrentAngle already equals TargetAngle exactly, the previous
// direction is preserved rather than collapsing to zero.
func (s *Sonar) MoveToward(maxStep float64) {
	diff := s.TargetAngle - s.CurrentAngle
	if diff == 0 {
		return
	}
	dir := 1.0
	if diff < 0 {
		dir = -1.0
	}
	s.Direction = dir

	if math.Abs(diff) <= maxStep {
		s.CurrentAngle = s.TargetAngle
		return
	}
	s.CurrentAngle += dir * maxStep
}

// AtTarget reports whether the head is within 1 degree of TargetAngle, the
// tolerance used throughout the planner for direction flips and arrival
// checks.
func (s *Sonar) AtTarget() bool {
	return math.Abs(s.TargetAngle-s.CurrentAngle) < 1.0
}
