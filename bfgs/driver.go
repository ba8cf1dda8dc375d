// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bfgs

import (
	"github.com/curioloop/descent/linalg"
	"github.com/curioloop/descent/nonlinear"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// iterLoc is the current iterate.
type iterLoc struct {
	x, g []float64
	f    float64
}

// clear resets the workspace before a run.
func (c *iterCtx) clear() {
	c.ctx.Reset()
	c.iter, c.skip = 0, 0
	for i := range c.d {
		c.d[i] = 0
	}
}

// iterDriver is the main driver for iterations in an optimization process,
// responsible for managing the flow of the optimization.
type iterDriver struct {
	optimizer *Optimizer
	workspace *Workspace
	location  *iterLoc
	matrix    *mat.Dense
	vec       iterVec

	alpha float64 // last accepted step
	gnorm float64 // ‖ g ‖∞ at the current iterate
}

// mainLoop is the main execution loop of the iteration process:
// search direction, line search, gradient at the new iterate,
// convergence check and matrix update.
func (d *iterDriver) mainLoop() (status nonlinear.Status) {

	o, w, loc := d.optimizer, d.workspace, d.location

	n := o.n
	d.vec = iterVec{
		g:    mat.NewVecDense(n, loc.g),
		d:    mat.NewVecDense(n, w.d),
		s:    mat.NewVecDense(n, w.s),
		y:    mat.NewVecDense(n, w.y),
		work: mat.NewVecDense(n, w.work),
	}

	w.clear()

	// Calculate f₀ and g₀
	var err error
	loc.f, err = w.ctx.EvaluateBoth(loc.x, loc.g)
	d.gnorm = linalg.InfinityNorm(loc.g)
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

		if err = d.searchDirection(); err == nil {
			err = d.searchStep()
		}
		if err != nil {
			status = nonlinear.StatusOf(err)
			break
		}

		d.printIter()

		if d.gnorm < o.stop.Tolerance {
			status = nonlinear.Satisfied
			break
		}

		if err = d.updateMatrix(); err != nil {
			status = nonlinear.StatusOf(err)
			break
		}
	}

	d.printExit(status)
	return
}

// searchDirection computes the descent direction of the current iterate.
func (d *iterDriver) searchDirection() error {
	o := d.optimizer
	if o.formula == BFormula {
		return directionB(d.matrix, d.vec, o.relax)
	}
	return directionH(d.matrix, d.vec)
}

// searchStep performs the line search along the direction and moves to
// x⁺ = x + αd, keeping s = x⁺ - x and y = g⁺ - g for the matrix update.
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

	floats.SubTo(w.s, w.xt, loc.x)
	floats.SubTo(w.y, w.gt, loc.g)
	copy(loc.x, w.xt)
	copy(loc.g, w.gt)
	loc.f = ft

	w.iter++
	d.alpha = alpha
	d.gnorm = linalg.InfinityNorm(loc.g)
	return nil
}

// updateMatrix applies the BFGS update with the latest s and y.
// A withheld update is reported and counted, the run continues.
func (d *iterDriver) updateMatrix() error {
	o, w := d.optimizer, d.workspace

	var sy float64
	var updated bool
	var err error
	if o.formula == BFormula {
		sy, updated, err = updateB(d.matrix, d.vec)
	} else {
		sy, updated, err = updateH(d.matrix, d.vec)
	}
	if err == nil && !updated {
		w.skip++
		o.reporter.Skip(w.iter, sy)
	}
	return err
}

func (d *iterDriver) printInit() {
	o, loc := d.optimizer, d.location
	o.reporter.Start(o.method(), o.n, loc.f, d.gnorm)
}

func (d *iterDriver) printIter() {
	o, w, loc := d.optimizer, d.workspace, d.location
	o.reporter.Iterate(nonlinear.Progress{
		Iter:  w.iter,
		Alpha: d.alpha,
		F:     loc.f,
		GNorm: d.gnorm,
		X:     loc.x,
	})
}

func (d *iterDriver) printExit(status nonlinear.Status) {
	o, w, loc := d.optimizer, d.workspace, d.location
	o.reporter.Finish(nonlinear.Report{
		Method:  o.method(),
		Status:  status,
		Iter:    w.iter,
		NumFunc: w.ctx.NumFunc,
		NumGrad: w.ctx.NumGrad,
		NumSkip: w.skip,
		F:       loc.f,
		GNorm:   d.gnorm,
		X:       loc.x,
	})
}
