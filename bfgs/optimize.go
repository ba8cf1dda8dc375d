// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bfgs implements the quasi-Newton BFGS method with either the
// inverse Hessian approximation H or the Hessian approximation B.
package bfgs

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"slices"
	"strings"

	"github.com/curioloop/descent/linalg"
	"github.com/curioloop/descent/linesearch"
	"github.com/curioloop/descent/nonlinear"
	"gonum.org/v1/gonum/mat"
)

// Formula selects the matrix approximated by the BFGS update.
type Formula int

const (
	// HFormula approximates the inverse Hessian, the direction is d = -H·g.
	HFormula Formula = iota
	// BFormula approximates the Hessian, the direction solves B·d = -g by SOR.
	BFormula
)

func (f Formula) String() string {
	switch f {
	case HFormula:
		return "H"
	case BFormula:
		return "B"
	}
	return fmt.Sprintf("Formula(%d)", int(f))
}

// ParseFormula returns the Formula named s ("h" or "b", ignoring case).
func ParseFormula(s string) (Formula, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "h":
		return HFormula, nil
	case "b":
		return BFormula, nil
	}
	return 0, fmt.Errorf("%w: unknown formula %q", nonlinear.ErrNoParameter, s)
}

const (
	defaultTolerance     = 1e-8
	defaultMaxIterations = 5000
	defaultEpsilon       = 1e-10
	defaultOmega         = 0.5
)

// Termination specifies the stopping criteria for the optimization algorithm.
type Termination struct {
	// The iteration stop when the gradient satisfied:
	//   ‖ gₖ ‖∞ < 𝚝𝚘𝚕
	Tolerance float64
	// The iteration stop when the number of iteration exceeds limit.
	MaxIterations int
}

// Problem specifies the problem for BFGS optimizer.
type Problem struct {
	N        int                    // The problem dimension
	Function nonlinear.Function     // Objective function
	Gradient nonlinear.Gradient     // Gradient of objective
	Formula  Formula                // Approximated matrix
	Search   linesearch.Kind        // Line search strategy
	Params   *linesearch.Parameters // Optional line-search config
	Stop     Termination            // Stop condition
	Relax    *linalg.Relaxation     // Optional SOR config of B formula
}

// New creates a new BFGS optimizer for given problem.
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

	relax := linalg.Relaxation{Epsilon: defaultEpsilon, Omega: defaultOmega, MaxSweeps: linalg.DefaultMaxSweeps}
	if p.Relax != nil {
		if p.Relax.Epsilon != 0 {
			relax.Epsilon = p.Relax.Epsilon
		}
		if p.Relax.Omega != 0 {
			relax.Omega = p.Relax.Omega
		}
		if p.Relax.MaxSweeps != 0 {
			relax.MaxSweeps = p.Relax.MaxSweeps
		}
	}

	switch {
	case p.Function == nil:
		err = fmt.Errorf("%w: objective function is required", nonlinear.ErrNoFunction)
	case p.Gradient == nil:
		err = fmt.Errorf("%w: gradient is required", nonlinear.ErrNoFunction)
	case n <= 0:
		err = errors.New("problem dimension must greater than 0")
	case !(stop.Tolerance > 0):
		err = errors.New("gradient tolerance must greater than 0")
	case stop.MaxIterations < 0:
		err = errors.New("max iteration must not less than 0")
	case p.Formula != HFormula && p.Formula != BFormula:
		err = errors.New("unknown BFGS formula")
	case !p.Search.Valid():
		err = errors.New("unknown line search")
	case !(relax.Epsilon > 0):
		err = errors.New("relaxation epsilon must greater than 0")
	case !(relax.Omega > 0 && relax.Omega < 2):
		err = errors.New("relaxation factor must lie in (0,2)")
	case relax.MaxSweeps < 0:
		err = errors.New("relaxation sweeps must not less than 0")
	}

	search := linesearch.Default()
	if err == nil && p.Params != nil {
		if err = p.Params.Validate(); err == nil {
			search = *p.Params
		}
	}

	if err != nil {
		if !errors.Is(err, nonlinear.ErrNoFunction) && !errors.Is(err, nonlinear.ErrNoParameter) {
			err = fmt.Errorf("%w: %v", nonlinear.ErrNoParameter, err)
		}
		return
	}

	optimizer = &Optimizer{
		iterSpec{
			n:        n,
			function: p.Function,
			gradient: p.Gradient,
			formula:  p.Formula,
			kind:     p.Search,
			search:   search,
			stop:     stop,
			relax:    relax,
			reporter: reporter,
		},
	}
	return
}

// iterSpec holds the immutable configuration of an optimizer.
type iterSpec struct {
	n        int
	function nonlinear.Function
	gradient nonlinear.Gradient
	formula  Formula
	kind     linesearch.Kind
	search   linesearch.Parameters
	stop     Termination
	relax    linalg.Relaxation
	reporter nonlinear.Reporter
}

func (s *iterSpec) method() string {
	return "BFGS-" + s.formula.String()
}

// Optimizer implemented using the BFGS algorithm.
type Optimizer struct {
	iterSpec
}

// Workspace contains the state and context of the optimization process.
// Given problem dimension n, total work space is approximately float64[n² + 7×n].
type Workspace struct {
	n int
	iterCtx
}

// iterCtx holds the scratch of one run.
type iterCtx struct {
	ctx    *nonlinear.Context
	search linesearch.Searcher

	d      []float64 // descent direction
	xt, gt []float64 // x⁺ and g⁺
	s, y   []float64 // x⁺ - x and g⁺ - g
	work   []float64 // H·y or B·s, -g for the B direction
	m      *mat.Dense

	iter, skip int
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
	NumSkip int              // Number of matrix updates skipped.
}

// maxElements bounds the float64 count of a single allocation.
const maxElements = math.MaxInt / 8

// Init allocate the workspace for BFGS optimizer.
// To avoid race conditions, separate workspaces need to be created for each goroutine.
// But multiple workspaces could share one optimizer.
func (o *Optimizer) Init() (w *Workspace, err error) {

	n := o.n
	if hi, lo := bits.Mul64(uint64(n), uint64(n)); hi != 0 || lo > maxElements {
		return nil, fmt.Errorf("%w: %d×%d matrix", nonlinear.ErrOutOfMemory, n, n)
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
	w.s = make([]float64, n)
	w.y = make([]float64, n)
	w.work = make([]float64, n)
	w.m = mat.NewDense(n, n, nil)
	return
}

// Fit runs the optimization process using the initial guess x and workspace w.
//
// A nil x starts from the zero vector, otherwise x is left untouched.
// A nil m starts from the identity owned by the workspace, otherwise m is
// the initial approximation and is updated in place.
func (o *Optimizer) Fit(x []float64, m *mat.Dense, w *Workspace) *Result {

	if x == nil {
		x = make([]float64, o.n)
	}
	if len(x) != o.n {
		panic("initial x dimension not match problem")
	}

	if w.n != o.n {
		panic("workspace dimension not match problem")
	}

	if m == nil {
		m = w.m
		linalg.Identity(m)
	} else if r, c := m.Dims(); r != o.n || c != o.n {
		panic("matrix dimension not match problem")
	}

	loc := iterLoc{
		x: slices.Repeat(x, 1),
		g: make([]float64, o.n),
	}

	driver := iterDriver{
		optimizer: o,
		workspace: w,
		location:  &loc,
		matrix:    m,
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
			NumSkip: w.skip,
		},
	}
}

// Minimize runs one optimization of the problem p from x with a fresh workspace.
// Precondition failures are reported through the status of the result.
func Minimize(x []float64, m *mat.Dense, p *Problem, reporter nonlinear.Reporter) *Result {
	o, err := p.New(reporter)
	var w *Workspace
	if err == nil {
		w, err = o.Init()
	}
	if err != nil {
		status := nonlinear.StatusOf(err)
		if reporter != nil {
			reporter.Finish(nonlinear.Report{Method: "BFGS-" + p.Formula.String(), Status: status, X: x})
		}
		return &Result{
			X:       slices.Clone(x),
			Summary: Summary{Status: status},
		}
	}
	return o.Fit(x, m, w)
}
