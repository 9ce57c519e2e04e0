package sonar

import (
	"math"
	"strconv"

	"github.com/PH-19/sonarscan-sim/internal/config"
	"github.com/PH-19/sonarscan-sim/internal/rng"
	"github.com/PH-19/sonarscan-sim/internal/tuning"
)

// WouldFinalizeFrame reports whether, given the planner's next decision,
// the current SCANNING segment ends this tick: either the mode is leaving
// SCANNING or the commanded target angle is changing. At most one frame
// finishes per sonar per tick.
func (s *Sonar) WouldFinalizeFrame(nextMode Mode, nextTarget float64) bool {
	return s.Mode == Scanning && (nextMode != Scanning || nextTarget != s.TargetAngle)
}

// Transition adopts the planner's decision. If the sonar is leaving
// SCANNING, the ping accumulator resets so the next scan segment starts
// from a clean slate.
func (s *Sonar) Transition(nextMode Mode, nextTarget, nextRange float64) {
	if s.Mode == Scanning && nextMode != Scanning {
		s.PingAccumulator = 0
	}
	s.Mode = nextMode
	s.TargetAngle = nextTarget
	s.ScanRange = nextRange
}

// Advance performs the motion and ping-emission step for this tick: SCANNING
// rotates at the acoustically-limited effective speed and emits pings as the
// accumulator crosses the ping interval; SLEWING rotates at the fixed
// mechanical rate and emits nothing.
// simTimeAtTickStart is the sim clock value at the start of this tick, used
// to compute each ping's millisecond time bucket for its RNG stream key.
func (s *Sonar) Advance(dt, simTimeAtTickStart float64, targets []PingTarget, tune tuning.Tuning, seed uint32) {
	switch s.Mode {
	case Scanning:
		s.advanceScanning(dt, simTimeAtTickStart, targets, tune, seed)
	case Slewing:
		s.MoveToward(config.SlewSpeedDegPerSec * dt)
	}
}

func (s *Sonar) advanceScanning(dt, simTimeAtTickStart float64, targets []PingTarget, tune tuning.Tuning, seed uint32) {
	pingInterval := s.PingInterval()
	effectiveSpeed := s.EffectiveSpeed()

	angleAtTickStart := s.CurrentAngle
	s.MoveToward(effectiveSpeed * dt)
	s.PingAccumulator += dt

	elapsedAtStep := 0.0
	for s.PingAccumulator >= pingInterval {
		s.PingAccumulator -= pingInterval
		elapsedAtStep += pingInterval

		fracThroughTick := 0.0
		if dt > 0 {
			fracThroughTick = math.Min(1, elapsedAtStep/dt)
		}
		pingTime := simTimeAtTickStart + fracThroughTick*dt
		bearing := headingAtFraction(angleAtTickStart, s.CurrentAngle, fracThroughTick)

		s.emitPing(bearing, pingTime, targets, tune, seed)
	}
}

// headingAtFraction returns the head's bearing at a moment partway through
// the current tick, linearly interpolated between the tick's start and end
// angles. A short ping interval can fire many pings within one tick, and
// each must land on the angle column the head actually occupied at that
// moment rather than collapsing onto the tick's final column.
func headingAtFraction(startAngle, endAngle, frac float64) float64 {
	return startAngle + frac*(endAngle-startAngle)
}

func (s *Sonar) emitPing(bearingDeg, pingTime float64, targets []PingTarget, tune tuning.Tuning, seed uint32) {
	angleStep := config.AngleStepDeg()
	aIdx := int(math.Floor((bearingDeg - s.AbsMin()) / angleStep))
	aIdx = clampInt(aIdx, 0, config.ImagingFrameAngleBins-1)

	timeBucketMs := strconv.FormatInt(int64(math.Round(pingTime*1000)), 10)
	sonarID := strconv.Itoa(s.ID)
	frameID := strconv.FormatUint(s.Frame.FrameID, 10)
	aIdxStr := strconv.Itoa(aIdx)

	streamStatic := rng.Named(seed, "ping", sonarID, frameID, timeBucketMs, aIdxStr)
	streamDyn := rng.Named(seed, "dyn", sonarID, frameID, timeBucketMs, aIdxStr)

	s.WritePing(aIdx, bearingDeg, targets, tune, streamStatic, streamDyn)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
