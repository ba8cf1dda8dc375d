// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cg implements the nonlinear conjugate gradient method with the
// Fletcher–Reeves update. No matrix is kept, the work space is O(n).
package cg

import (
	"fmt"
	"math"
	"slices"

	"github.com/curioloop/descent/linesearch"
	"github.com/curioloop/descent/nonlinear"
)

const (
	defaultTolerance     = 1e-8
	defaultMaxIterations = 5000
)

// Method is the name reported for this optimizer.
const Method = "CG-FR"

// Termination specifies the stopping criteria for the optimization algorithm.
type Termination struct {
	// The iteration stop when the gradient satisfied:
	//   ‖ gₖ ‖∞ < 𝚝𝚘𝚕
	Tolerance float64
	// The iteration stop when the number of iteration exceeds limit.
	MaxIterations int
}

// Problem specifies the problem for conjugate gradient optimizer.
type Problem struct {
	N        int                    // The problem dimension
	Function nonlinear.Function     // Objective function
	Gradient nonlinear.Gradient     // Gradient of objective
	Search   linesearch.Kind        // Line search strategy
	Params   *linesearch.Parameters // Optional line-search config
	Stop     Termination            // Stop condition
}

// New creates a new conjugate gradient optimizer for given problem.
// A nil reporter discards the progress.
func (p *Problem) New(reporter nonlinear.Reporter) (optimizer *Optimizer, err error) {

	if reporter == nil {
		reporter = nonlinear.Silent{}
	}

	n, stop := p.N, p.Stop
	if stop.Tolerance == 0 {
		stop.Tolerance = defaultTolerance
	}
	if stop.MaxIterations == 0 {
		stop.MaxIterations = defaultMaxIterations
	}

	switch {
	case p.Function == nil || p.Gradient == nil:
		err = fmt.Errorf("%w: objective function and gradient are required", nonlinear.ErrNoFunction)
	case n <= 0:
		err = fmt.Errorf("%w: problem dimension must greater than 0", nonlinear.ErrNoParameter)
	case !(stop.Tolerance > 0):
		err = fmt.Errorf("%w: gradient tolerance must greater than 0", nonlinear.ErrNoParameter)
	case stop.MaxIterations < 0:
		err = fmt.Errorf("%w: max iteration must not less than 0", nonlinear.ErrNoParameter)
	case !p.Search.Valid():
		err = fmt.Errorf("%w: unknown line search", nonlinear.ErrNoParameter)
	}

	search := linesearch.Default()
	if err == nil && p.Params != nil {
		if err = p.Params.Validate(); err == nil {
			search = *p.Params
		}
	}
	if err != nil {
		return
	}

	optimizer = &Optimizer{
		n:        n,
		function: p.Function,
		gradient: p.Gradient,
		kind:     p.Search,
		search:   search,
		stop:     stop,
		reporter: reporter,
	}
	return
}

// Optimizer implemented using the conjugate gradient algorithm.
type Optimizer struct {
	n        int
	function nonlinear.Function
	gradient nonlinear.Gradient
	kind     linesearch.Kind
	search   linesearch.Parameters
	stop     Termination
	reporter nonlinear.Reporter
}

// Workspace contains the state and context of the optimization process.
// Given problem dimension n, total work space is approximately float64[5×n].
type Workspace struct {
	n      int
	ctx    *nonlinear.Context
	search linesearch.Searcher
	d      []float64 // conjugate direction
	xt, gt []float64 // x⁺ and g⁺
	iter   int
}

// Result contains the final result of the optimization process.
type Result struct {
	OK      bool      // Whether the optimization was converged.
	F       float64   // Final function value.
	X, G    []float64 // Final solution and gradient.
	Summary           // Optimization summary.
}

// Summary contains a summary of the optimization process.
type Summary struct {
	Status  nonlinear.Status // Final status after optimization.
	NumIter int              // Number of completed iterations.
	NumFunc int              // Number of function evaluations performed.
	NumGrad int              // Number of gradient evaluations performed.
}

// workVectors is the number of n-vectors held by a workspace and its searcher.
const workVectors = 5

// Init allocate the workspace for conjugate gradient optimizer.
// To avoid race conditions, separate workspaces need to be created for each goroutine.
// But multiple workspaces could share one optimizer.
func (o *Optimizer) Init() (w *Workspace, err error) {

	n := o.n
	if n > math.MaxInt/8/workVectors {
		return nil, fmt.Errorf("%w: %d×%d vectors", nonlinear.ErrOutOfMemory, workVectors, n)
	}

	defer func() {
		if r := recover(); r != nil {
			w, err = nil, fmt.Errorf("%w: %v", nonlinear.ErrOutOfMemory, r)
		}
	}()

	w = &Workspace{n: n}
	if w.ctx, err = nonlinear.NewContext(o.function, o.gradient); err != nil {
		return nil, err
	}
	if w.search, err = linesearch.New(o.kind, &o.search, n); err != nil {
		return nil, err
	}
	w.d = make([]float64, n)
	w.xt = make([]float64, n)
	w.gt = make([]float64, n)
	return
}

// Fit runs the optimization process using the initial guess x and workspace w.
// A nil x starts from the zero vector, otherwise x is left untouched.
func (o *Optimizer) Fit(x []float64, w *Workspace) *Result {

	if x == nil {
		x = make([]float64, o.n)
	}
	if len(x) != o.n {
		panic("initial x dimension not match problem")
	}

	if w.n != o.n {
		panic("workspace dimension not match problem")
	}

	loc := iterLoc{
		x: slices.Repeat(x, 1),
		g: make([]float64, o.n),
	}

	driver := iterDriver{
		optimizer: o,
		workspace: w,
		location:  &loc,
	}

	res := driver.mainLoop()
	return &Result{
		OK: res == nonlinear.Satisfied,
		X:  loc.x, F: loc.f, G: loc.g,
		Summary: Summary{
			Status:  res,
			NumIter: w.iter,
			NumFunc: w.ctx.NumFunc,
			NumGrad: w.ctx.NumGrad,
		},
	}
}

// Minimize runs one optimization of the problem p from x with a fresh workspace.
// Precondition failures are reported through the status of the result.
func Minimize(x []float64, p *Problem, reporter nonlinear.Reporter) *Result {
	o, err := p.New(reporter)
	var w *Workspace
	if err == nil {
		w, err = o.Init()
	}
	if err != nil {
		status := nonlinear.StatusOf(err)
		if reporter != nil {
			reporter.Finish(nonlinear.Report{Method: Method, Status: status, X: x})
		}
		return &Result{
			X:       slices.Clone(x),
			Summary: Summary{Status: status},
		}
	}
	return o.Fit(x, w)
}
