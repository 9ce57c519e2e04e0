package world

import (
	"testing"

	"github.com/PH-19/sonarscan-sim/internal/vecmath"
	"github.com/stretchr/testify/assert"
)

func TestStepAdvancesClockAndPosition(t *testing.T) {
	w := NewWorld()
	s := NewSwimmer(0, vecmath.Vector2{X: 5, Y: 5}, vecmath.Vector2{X: 1, Y: 0}, 0, 1)

	w.Step(1, []*Swimmer{s})

	assert.Equal(t, 1.0, w.Time)
	assert.Greater(t, s.Position.X, 5.0)
}

func TestStepNonPositiveDtIsNoOp(t *testing.T) {
	w := NewWorld()
	s := NewSwimmer(0, vecmath.Vector2{X: 5, Y: 5}, vecmath.Vector2{X: 1, Y: 0}, 0, 1)

	w.Step(0, []*Swimmer{s})
	assert.Equal(t, 0.0, w.Time)
	assert.Equal(t, 5.0, s.Position.X)
}

func TestStepClampsAtPoolBoundsAndReflects(t *testing.T) {
	w := NewWorld()
	s := NewSwimmer(0, vecmath.Vector2{X: w.Width - 0.05, Y: 10}, vecmath.Vector2{X: 5, Y: 0}, 0, 1)

	for i := 0; i < 10; i++ {
		w.Step(0.1, []*Swimmer{s})
		assert.GreaterOrEqual(t, s.Position.X, 0.0)
		assert.LessOrEqual(t, s.Position.X, w.Width)
	}
}

func TestNewSwimmerManeuverParamsAreDeterministicForSameSeedAndID(t *testing.T) {
	a := NewSwimmer(3, vecmath.Vector2{}, vecmath.Vector2{X: 1}, 0, 99)
	b := NewSwimmer(3, vecmath.Vector2{}, vecmath.Vector2{X: 1}, 0, 99)

	w1, w2 := NewWorld(), NewWorld()
	w1.Step(1, []*Swimmer{a})
	w2.Step(1, []*Swimmer{b})

	assert.Equal(t, a.Position, b.Position)
	assert.Equal(t, a.Velocity, b.Velocity)
}
