package kalman

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSeedsPositionAndZeroVelocity(t *testing.T) {
	f := New(10, 20, 0, 4, 25)
	x, y := f.Position()
	vx, vy := f.Velocity()

	assert.Equal(t, 10.0, x)
	assert.Equal(t, 20.0, y)
	assert.Equal(t, 0.0, vx)
	assert.Equal(t, 0.0, vy)
	assert.Equal(t, 0.0, f.Timestamp())
}

func TestPredictToNonPositiveDtIsNoOp(t *testing.T) {
	f := New(5, 5, 10, 4, 25)
	x0, y0 := f.Position()

	f.PredictTo(10) // dt == 0
	x1, y1 := f.Position()
	assert.Equal(t, x0, x1)
	assert.Equal(t, y0, y1)

	f.PredictTo(5) // dt < 0
	x2, y2 := f.Position()
	assert.Equal(t, x0, x2)
	assert.Equal(t, y0, y2)
	assert.Equal(t, 5.0, f.Timestamp())
}

func TestPredictToAdvancesPositionByVelocity(t *testing.T) {
	f := New(0, 0, 0, 4, 25)
	f.Update(0, 0, 0.5)
	f.PredictTo(1)
	f.Update(1, 0, 0.5)

	vx, _ := f.Velocity()
	assert.Greater(t, vx, 0.0)

	x0, y0 := f.Position()
	f.PredictTo(2)
	x1, y1 := f.Position()

	assert.Greater(t, x1, x0)
	assert.Equal(t, y0, y1)
}

func TestUpdatePullsEstimateTowardMeasurement(t *testing.T) {
	f := New(0, 0, 0, 100, 25)
	f.PredictTo(1)
	f.Update(10, 10, 0.1)

	x, y := f.Position()
	assert.InDelta(t, 10, x, 5)
	assert.InDelta(t, 10, y, 5)
}

func TestRepeatedUpdatesConvergeToMeasurement(t *testing.T) {
	f := New(0, 0, 0, 4, 25)
	t0 := 0.0
	for i := 1; i <= 20; i++ {
		t0 += 0.1
		f.PredictTo(t0)
		f.Update(5, 5, 0.2)
	}
	x, y := f.Position()
	assert.InDelta(t, 5, x, 0.5)
	assert.InDelta(t, 5, y, 0.5)
}

// The position/velocity transition matrices for +dt and -dt are exact
// inverses, so predicting forward then backward by the same dt must restore
// the state vector to (near) machine precision, independent of whatever the
// process noise did to the covariance along the way.
func TestPredictForwardThenBackwardRestoresState(t *testing.T) {
	f := New(12, -7, 0, 4, 25)
	f.Update(13, -6.5, 0.3)
	f.Update(14, -6, 0.3)

	x0, y0 := f.Position()
	vx0, vy0 := f.Velocity()

	f.predict(3.2)
	f.predict(-3.2)

	x1, y1 := f.Position()
	vx1, vy1 := f.Velocity()

	assert.InDelta(t, x0, x1, 1e-9)
	assert.InDelta(t, y0, y1, 1e-9)
	assert.InDelta(t, vx0, vx1, 1e-9)
	assert.InDelta(t, vy0, vy1, 1e-9)
}
