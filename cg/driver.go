// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cg

import (
	"fmt"

	"github.com/curioloop/descent/linalg"
	"github.com/curioloop/descent/nonlinear"
	"gonum.org/v1/gonum/floats"
)

type iterLoc struct {
	x, g []float64
	f    float64
}

type iterDriver struct {
	optimizer *Optimizer
	workspace *Workspace
	location  *iterLoc

	alpha float64 // last accepted step
	gnorm float64 // ‖ g ‖∞ at the current iterate
	gg    float64 // gᵀg at the current iterate
}

func (d *iterDriver) mainLoop() (status nonlinear.Status) {

	o, w, loc := d.optimizer, d.workspace, d.location

	w.ctx.Reset()
	w.iter = 0

	// Calculate f₀ and g₀, d₀ = -g₀
	var err error
	loc.f, err = w.ctx.EvaluateBoth(loc.x, loc.g)
	floats.ScaleTo(w.d, -1, loc.g)
	d.gnorm = linalg.InfinityNorm(loc.g)
	d.gg = linalg.Dot(loc.g, loc.g)
	d.printInit()

	running := false
	switch {
	case err != nil:
		status = nonlinear.StatusOf(err)
	case d.gnorm < o.stop.Tolerance:
		status = nonlinear.Satisfied
	default:
		status, running = nonlinear.NoConvergence, true
	}

	for running && w.iter < o.stop.MaxIterations {

		if err = d.searchStep(); err != nil {
			status = nonlinear.StatusOf(err)
			break
		}

		d.printIter()

		if d.gnorm < o.stop.Tolerance {
			status = nonlinear.Satisfied
			break
		}

		if err = d.updateDirection(); err != nil {
			status = nonlinear.StatusOf(err)
			break
		}
	}

	d.printExit(status)
	return
}

// searchStep performs the line search along d and moves to x⁺ = x + αd.
// The current iterate is left untouched on failure.
func (d *iterDriver) searchStep() error {
	w, loc := d.workspace, d.location

	alpha, err := w.search.Search(loc.x, loc.g, w.d, w.ctx)
	if err != nil {
		return err
	}

	linalg.UpdateStep(w.xt, loc.x, alpha, w.d)
	ft := w.ctx.F
	if err = w.ctx.EvaluateGradient(w.xt, w.gt); err != nil {
		return err
	}

	copy(loc.x, w.xt)
	copy(loc.g, w.gt)
	loc.f = ft

	w.iter++
	d.alpha = alpha
	d.gnorm = linalg.InfinityNorm(loc.g)
	return nil
}

// updateDirection applies the Fletcher–Reeves update
//
//	β = g⁺ᵀg⁺ / gᵀg
//	d⁺ = -g⁺ + βd
func (d *iterDriver) updateDirection() error {
	w, loc := d.workspace, d.location

	gg := linalg.Dot(loc.g, loc.g)
	beta := gg / d.gg
	d.gg = gg

	floats.Scale(beta, w.d)
	floats.Sub(w.d, loc.g)
	if !linalg.IsFinite(w.d) {
		return fmt.Errorf("%w: non-finite direction", nonlinear.ErrFunctionNaN)
	}
	return nil
}

func (d *iterDriver) printInit() {
	o, loc := d.optimizer, d.location
	o.reporter.Start(Method, o.n, loc.f, d.gnorm)
}

func (d *iterDriver) printIter() {
	w, loc := d.workspace, d.location
	d.optimizer.reporter.Iterate(nonlinear.Progress{
		Iter:  w.iter,
		Alpha: d.alpha,
		F:     loc.f,
		GNorm: d.gnorm,
		X:     loc.x,
	})
}

func (d *iterDriver) printExit(status nonlinear.Status) {
	w, loc := d.workspace, d.location
	d.optimizer.reporter.Finish(nonlinear.Report{
		Method:  Method,
		Status:  status,
		Iter:    w.iter,
		NumFunc: w.ctx.NumFunc,
		NumGrad: w.ctx.NumGrad,
		F:       loc.f,
		GNorm:   d.gnorm,
		X:       loc.x,
	})
}
