// Package world owns the pool geometry and swimmer kinematics: the thin
// collaborator that drives the scheduling challenge without itself being
// part of the imaging/scheduler core.
package world

import (
	"math"
	"strconv"

	"github.com/PH-19/sonarscan-sim/internal/config"
	"github.com/PH-19/sonarscan-sim/internal/rng"
	"github.com/PH-19/sonarscan-sim/internal/vecmath"
)

// Swimmer is a single moving point target.
type Swimmer struct {
	ID        uint64
	Position  vecmath.Vector2
	Velocity  vecmath.Vector2
	EnteredAt float64 // sim seconds

	maneuverOmega float64
	maneuverPhase float64
	maneuverAmp   float64
}

// NewSwimmer creates a swimmer whose maneuver parameters are drawn from the
// stream keyed by (seed, "maneuver", id), so replaying the same seed always
// gives the same swimmer the same turn-rate, phase, and amplitude.
func NewSwimmer(id uint64, pos, vel vecmath.Vector2, enteredAt float64, seed uint32) *Swimmer {
	s := rng.Named(seed, "maneuver", strconv.FormatUint(id, 10))
	return &Swimmer{
		ID:            id,
		Position:      pos,
		Velocity:      vel,
		EnteredAt:     enteredAt,
		maneuverOmega: s.Range(0.2, 1.2),
		maneuverPhase: s.Range(0, 2*math.Pi),
		maneuverAmp:   s.Range(0.05, 0.35),
	}
}

// World holds the pool extents and the simulation clock; the swimmer set is
// owned by the caller and passed to Step.
type World struct {
	Width, Length float64
	Time          float64
}

// NewWorld constructs a pool of the configured extents.
func NewWorld() *World {
	return &World{Width: config.PoolWidth, Length: config.PoolLength}
}

// Step advances the clock and moves every swimmer in the slice by dt
// seconds. Swimmers are independent of one another; order only matters
// within a single swimmer's own update.
func (w *World) Step(dt float64, swimmers []*Swimmer) {
	if dt <= 0 {
		return
	}
	w.Time += dt
	for _, s := range swimmers {
		w.stepSwimmer(s, dt)
	}
}

func (w *World) stepSwimmer(s *Swimmer, dt float64) {
	turnRate := s.maneuverAmp * math.Sin(s.maneuverOmega*(w.Time+s.maneuverPhase))
	dTheta := turnRate * dt

	cos, sin := math.Cos(dTheta), math.Sin(dTheta)
	vx := s.Velocity.X*cos - s.Velocity.Y*sin
	vy := s.Velocity.X*sin + s.Velocity.Y*cos
	s.Velocity = vecmath.Vector2{X: vx, Y: vy}

	s.Position = s.Position.Add(s.Velocity.Scale(dt))

	if s.Position.X <= 0 {
		s.Position.X = 0
		s.Velocity.X = -s.Velocity.X
	} else if s.Position.X >= w.Width {
		s.Position.X = w.Width
		s.Velocity.X = -s.Velocity.X
	}

	if s.Position.Y <= 0 {
		s.Position.Y = 0
		s.Velocity.Y = -s.Velocity.Y
	} else if s.Position.Y >= w.Length {
		s.Position.Y = w.Length
		s.Velocity.Y = -s.Velocity.Y
	}
}
