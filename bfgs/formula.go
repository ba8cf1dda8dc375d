// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bfgs

import (
	"fmt"
	"math"

	"github.com/curioloop/descent/linalg"
	"github.com/curioloop/descent/nonlinear"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// iterVec wraps the vectors of a run for the gonum matrix kernels.
type iterVec struct {
	g, d, s, y, work *mat.VecDense
}

// directionH computes the direction d = -H·g.
func directionH(h *mat.Dense, v iterVec) error {
	v.d.MulVec(h, v.g)
	v.d.ScaleVec(-1, v.d)
	if !linalg.IsFinite(v.d.RawVector().Data) {
		return fmt.Errorf("%w: non-finite direction", nonlinear.ErrFunctionNaN)
	}
	return nil
}

// directionB solves B·d = -g by successive over-relaxation.
// The previous direction is the initial guess.
func directionB(b *mat.Dense, v iterVec, relax linalg.Relaxation) error {
	rhs, d := v.work.RawVector().Data, v.d.RawVector().Data
	floats.ScaleTo(rhs, -1, v.g.RawVector().Data)
	if _, err := linalg.SOR(b, d, rhs, relax); err != nil {
		return fmt.Errorf("%w: %w", nonlinear.ErrDirectionFailed, err)
	}
	if !linalg.IsFinite(d) {
		return fmt.Errorf("%w: non-finite direction", nonlinear.ErrFunctionNaN)
	}
	return nil
}

// updateH applies the BFGS update of the inverse Hessian approximation
//
//	H⁺ = H - (Hy·sᵀ + s·(Hy)ᵀ)/sᵀy + (1 + yᵀHy/sᵀy)·s·sᵀ/sᵀy
//
// when the curvature condition sᵀy > 0 holds.
func updateH(h *mat.Dense, v iterVec) (sy float64, updated bool, err error) {
	hy := v.work
	hy.MulVec(h, v.y)
	if floats.HasNaN(hy.RawVector().Data) {
		return 0, false, fmt.Errorf("%w: H·y", nonlinear.ErrFunctionNaN)
	}

	sy = mat.Dot(v.s, v.y)
	yHy := mat.Dot(v.y, hy)
	if math.IsNaN(sy) || math.IsNaN(yHy) {
		return sy, false, fmt.Errorf("%w: curvature", nonlinear.ErrFunctionNaN)
	}
	if !(sy > 0) {
		return sy, false, nil
	}

	h.RankOne(h, -1/sy, hy, v.s)
	h.RankOne(h, -1/sy, v.s, hy)
	h.RankOne(h, (1+yHy/sy)/sy, v.s, v.s)
	return sy, true, nil
}

// updateB applies the BFGS update of the Hessian approximation
//
//	B⁺ = B - Bs·(Bs)ᵀ/sᵀBs + y·yᵀ/sᵀy
//
// when the curvature condition sᵀy > 0 holds and sᵀBs > 0.
func updateB(b *mat.Dense, v iterVec) (sy float64, updated bool, err error) {
	bs := v.work
	bs.MulVec(b, v.s)
	if floats.HasNaN(bs.RawVector().Data) {
		return 0, false, fmt.Errorf("%w: B·s", nonlinear.ErrFunctionNaN)
	}

	sy = mat.Dot(v.s, v.y)
	sBs := mat.Dot(v.s, bs)
	if math.IsNaN(sy) || math.IsNaN(sBs) {
		return sy, false, fmt.Errorf("%w: curvature", nonlinear.ErrFunctionNaN)
	}
	if !(sy > 0) || !(sBs > 0) {
		return sy, false, nil
	}

	b.RankOne(b, -1/sBs, bs, bs)
	b.RankOne(b, 1/sy, v.y, v.y)
	return sy, true, nil
}
