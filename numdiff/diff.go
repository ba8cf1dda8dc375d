package numdiff

import (
	"errors"
	"math"

	"github.com/curioloop/descent/nonlinear"
)

var sqrtEps = math.Sqrt(math.Nextafter(1, 2) - 1)
var cubeEps = math.Pow(math.Nextafter(1, 2)-1, float64(1)/3)

type Method int

const (
	// Forward use the first order accuracy forward difference.
	Forward Method = iota
	// Central use the second order accuracy central difference.
	Central
)

// Approx estimates the gradient of a scalar function by finite differences.
//
// # Reference:
//
//   - https://en.wikipedia.org/wiki/Finite_difference
//   - https://github.com/scipy/scipy/blob/main/scipy/optimize/_numdiff.py
//
// # License
//
//   - https://github.com/scipy/scipy/blob/main/LICENSE.txt
//
// An Approx keeps scratch storage and must not be shared between goroutines.
type Approx struct {
	N int
	// Function of which to estimate the gradient.
	// The argument x passed to this function is an n-vector.
	Function nonlinear.Function
	// Finite difference method to use.
	Method Method
	// Relative step size used to compute absolute step size.
	// The default absolute step size is computed as h = RelStep * sign(x0) * max(1, abs(x0)) with RelStep being selected automatically.
	// Otherwise, absolute step size is computed as h = RelStep * sign(x0) * abs(x0) when RelStep is provided.
	RelStep float64
	// Absolute step size to use.
	// The RelStep is used when AbsStep is not provide.
	// For Central method the sign of AbsStep is ignored.
	AbsStep float64
	approxCtx
}

type approxCtx struct {
	xh      []float64
	absStep []float64
}

// Check the parameters and initialize approxCtx.
func (as *Approx) Check(x0, grad []float64) (err error) {

	switch {
	case as.N <= 0:
		err = errors.New("negative dimensions")
	case as.Method != Forward && as.Method != Central:
		err = errors.New("unknown method")
	case as.Function == nil:
		err = errors.New("object function is required")
	case as.N != len(x0):
		err = errors.New("invalid x0 dimensions")
	case as.N != len(grad):
		err = errors.New("invalid gradient dimensions")
	}

	if err != nil {
		return
	}

	if len(as.xh) != as.N {
		as.xh = make([]float64, as.N)
		as.absStep = make([]float64, as.N)
	}
	return
}

// Diff calculate approximation of gradient by finite differences.
func (as *Approx) Diff(x0, grad []float64) error {

	if err := as.Check(x0, grad); err != nil {
		return err
	}

	as.absoluteStep(x0)
	if as.Method == Central {
		as.approxCentral(x0, grad)
	} else {
		as.approxForward(x0, grad)
	}
	return nil
}

// Gradient has the signature of nonlinear.Gradient, so an Approx can stand in
// for an analytic gradient. It panics when Diff would return an error.
func (as *Approx) Gradient(x, g []float64) {
	if err := as.Diff(x, g); err != nil {
		panic(err)
	}
}

// MaxError returns the largest error of the analytic gradient at x0 relative
// to its finite difference approximation:
//
//	𝚖𝚊𝚡( |gᵢ - ĝᵢ| / 𝚖𝚊𝚡(1, |ĝᵢ|) )
func MaxError(grad nonlinear.Gradient, approx *Approx, x0 []float64) (float64, error) {

	if grad == nil {
		return 0, errors.New("gradient is required")
	}

	gradDiff := make([]float64, len(x0))
	if err := approx.Diff(x0, gradDiff); err != nil {
		return 0, err
	}

	gradTest := make([]float64, len(x0))
	grad(x0, gradTest)

	maxErr := 0.0
	for i, v := range gradDiff {
		absErr := math.Abs(gradTest[i] - v)
		absErr /= math.Max(1, math.Abs(v))
		if !(absErr <= maxErr) {
			maxErr = absErr
		}
	}
	return maxErr, nil
}

func (as *Approx) absoluteStep(x0 []float64) {
	h := as.absStep
	if len(h) != len(x0) {
		panic("bound check error")
	}

	var eps float64
	switch as.Method {
	case Forward:
		eps = sqrtEps
	case Central:
		eps = cubeEps
	default:
		panic("unknown method")
	}

	abs := as.AbsStep
	rel := as.RelStep
	if abs == 0 && rel == 0 {
		for i, v := range x0 {
			h[i] = math.Copysign(eps, v) * math.Max(1.0, math.Abs(v))
		}
	} else {
		for i, v := range x0 {
			s := abs
			if s == 0 {
				s = math.Copysign(rel, v) * math.Abs(v)
			}
			d := (v + s) - v
			if d == 0 {
				s = math.Copysign(eps, v) * math.Max(1.0, math.Abs(v))
			}
			h[i] = s
		}
	}

	if as.Method == Central {
		for i, v := range h {
			h[i] = math.Abs(v)
		}
	}
}

func (as *Approx) approxForward(x0, g []float64) {

	xh, h := as.xh, as.absStep
	if len(h) != len(x0) || len(g) != len(x0) {
		panic("bound check error")
	}

	fun := as.Function
	copy(xh, x0)
	f0 := fun(xh)
	for i, s := range h {
		xh[i] = x0[i] + s
		g[i] = (fun(xh) - f0) / s
		xh[i] = x0[i]
	}
}

func (as *Approx) approxCentral(x0, g []float64) {

	xh, h := as.xh, as.absStep
	if len(h) != len(x0) || len(g) != len(x0) {
		panic("bound check error")
	}

	fun := as.Function
	copy(xh, x0)
	for i, s := range h {
		xh[i] = x0[i] - s
		f1 := fun(xh)
		xh[i] = x0[i] + s
		f2 := fun(xh)
		g[i] = (f2 - f1) / (2 * s)
		xh[i] = x0[i]
	}
}
