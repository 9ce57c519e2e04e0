// Package kalman implements the per-swimmer constant-velocity tracker: a
// 4-state (x, y, vx, vy) Kalman filter, predicted on demand and updated on
// a successful candidate match. Matrix algebra is done with gonum/mat rather
// than hand-rolled 4x4 arithmetic.
package kalman

import (
	"github.com/PH-19/sonarscan-sim/internal/config"
	"gonum.org/v1/gonum/mat"
)

// Filter is a 2-D constant-velocity Kalman filter over state [x, y, vx, vy].
type Filter struct {
	x *mat.VecDense // 4x1 state
	p *mat.Dense    // 4x4 covariance
	t float64       // last update timestamp, sim seconds

	accelStd float64
}

// New constructs a filter seeded at the given position and timestamp. Initial
// position variance is posVar, velocity variance is velVar (both diagonal).
func New(x, y, t, posVar, velVar float64) *Filter {
	f := &Filter{
		x:        mat.NewVecDense(4, []float64{x, y, 0, 0}),
		p:        mat.NewDense(4, 4, nil),
		t:        t,
		accelStd: config.KalmanAccelStd,
	}
	f.p.Set(0, 0, posVar)
	f.p.Set(1, 1, posVar)
	f.p.Set(2, 2, velVar)
	f.p.Set(3, 3, velVar)
	return f
}

// Position returns the current (x, y) estimate.
func (f *Filter) Position() (x, y float64) {
	return f.x.AtVec(0), f.x.AtVec(1)
}

// Velocity returns the current (vx, vy) estimate.
func (f *Filter) Velocity() (vx, vy float64) {
	return f.x.AtVec(2), f.x.AtVec(3)
}

// Timestamp returns the sim time of the last predict/update.
func (f *Filter) Timestamp() float64 { return f.t }

func transition(dt float64) *mat.Dense {
	return mat.NewDense(4, 4, []float64{
		1, 0, dt, 0,
		0, 1, 0, dt,
		0, 0, 1, 0,
		0, 0, 0, 1,
	})
}

// processNoise builds Q for the given dt and acceleration std, using the
// standard constant-velocity block pattern on (pos, vel) per axis:
//
//	q11 = dt^4/4 * sigma_a^2
//	q13 = dt^3/2 * sigma_a^2
//	q33 = dt^2   * sigma_a^2
func processNoise(dt, sigmaA float64) *mat.Dense {
	sa2 := sigmaA * sigmaA
	q11 := dt * dt * dt * dt / 4 * sa2
	q13 := dt * dt * dt / 2 * sa2
	q33 := dt * dt * sa2

	q := mat.NewDense(4, 4, nil)
	q.Set(0, 0, q11)
	q.Set(0, 2, q13)
	q.Set(2, 0, q13)
	q.Set(2, 2, q33)

	q.Set(1, 1, q11)
	q.Set(1, 3, q13)
	q.Set(3, 1, q13)
	q.Set(3, 3, q33)
	return q
}

// PredictTo advances the filter's state and covariance to time t and
// records t as the filter's timestamp. If t is not after the current
// timestamp (dt <= 0), (x, P) are left unchanged and only the stored
// timestamp is set to t.
func (f *Filter) PredictTo(t float64) {
	dt := t - f.t
	f.t = t
	if dt <= 0 {
		return
	}
	f.predict(dt)
}

func (f *Filter) predict(dt float64) {
	F := transition(dt)
	Q := processNoise(dt, f.accelStd)

	var xNext mat.VecDense
	xNext.MulVec(F, f.x)
	f.x = &xNext

	var fp mat.Dense
	fp.Mul(F, f.p)
	var fpft mat.Dense
	fpft.Mul(&fp, F.T())
	fpft.Add(&fpft, Q)
	f.p = &fpft
}

// Update incorporates a position measurement (mx, my) with isotropic
// measurement std sigmaM. If the innovation covariance S is singular, the
// update is skipped silently and the state is left unchanged.
func (f *Filter) Update(mx, my, sigmaM float64) {
	H := mat.NewDense(2, 4, []float64{
		1, 0, 0, 0,
		0, 1, 0, 0,
	})
	R := mat.NewDense(2, 2, []float64{
		sigmaM * sigmaM, 0,
		0, sigmaM * sigmaM,
	})

	z := mat.NewVecDense(2, []float64{mx, my})

	var hx mat.VecDense
	hx.MulVec(H, f.x)
	var y mat.VecDense
	y.SubVec(z, &hx)

	var hp mat.Dense
	hp.Mul(H, f.p)
	var s mat.Dense
	s.Mul(&hp, H.T())
	s.Add(&s, R)

	var sInv mat.Dense
	if err := sInv.Inverse(&s); err != nil {
		return
	}

	var pht mat.Dense
	pht.Mul(f.p, H.T())
	var k mat.Dense
	k.Mul(&pht, &sInv)

	var ky mat.VecDense
	ky.MulVec(&k, &y)
	var xNext mat.VecDense
	xNext.AddVec(f.x, &ky)
	f.x = &xNext

	identity := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		identity.Set(i, i, 1)
	}
	var kh mat.Dense
	kh.Mul(&k, H)
	var ikh mat.Dense
	ikh.Sub(identity, &kh)
	var pNext mat.Dense
	pNext.Mul(&ikh, f.p)
	f.p = &pNext
}
