// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package linesearch chooses a step length along a descent direction by
// multiplicative adjustment of a trial step. No interpolation is performed:
// each rejected trial is scaled by a fixed factor picked from the failed test.
package linesearch

import (
	"fmt"
	"math"

	"github.com/curioloop/descent/linalg"
	"github.com/curioloop/descent/nonlinear"
)

const maxStep = math.MaxFloat64

// Searcher finds a step length β along d from x.
//
// Each search evaluates f(x) once, then evaluates f (and ∇f when the
// decrease test passes) at trial points x + βd until a step is accepted.
// The accepted step is recorded in ctx.Alpha and ctx.F holds f(x + βd).
// A searcher owns scratch vectors and must not be shared between runs.
type Searcher interface {
	Search(x, g, d []float64, ctx *nonlinear.Context) (float64, error)
}

// New creates a searcher of given kind for problems of dimension n.
// Nil parameters take the defaults.
func New(kind Kind, p *Parameters, n int) (Searcher, error) {
	param := Default()
	if p != nil {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		param = p.withDefaults()
	}
	switch {
	case n <= 0:
		return nil, fmt.Errorf("%w: problem dimension must greater than 0", nonlinear.ErrNoParameter)
	case !kind.Valid():
		return nil, fmt.Errorf("%w: unknown line search %v", nonlinear.ErrNoParameter, kind)
	}

	b := base{
		param: param,
		xt:    make([]float64, n),
		gt:    make([]float64, n),
	}
	switch kind {
	case Armijo:
		return &armijo{b}, nil
	case Wolfe:
		return &wolfe{base: b}, nil
	case StrongWolfe:
		return &wolfe{base: b, strong: true}, nil
	case BacktrackingWolfe:
		return &backtracking{base: b}, nil
	default: // BacktrackingStrongWolfe
		return &backtracking{base: b, strong: true}, nil
	}
}

// trial holds the quantities a strategy needs to judge the step β.
type trial struct {
	beta float64 // trial step
	fx   float64 // f(x)
	gd   float64 // gᵀd
	ft   float64 // f(x + βd)
	d    []float64
}

// judge returns whether the trial is accepted, otherwise the factor applied to β.
type judge func(t *trial, ctx *nonlinear.Context) (ok bool, width float64, err error)

type base struct {
	param  Parameters
	xt, gt []float64
}

// decrease tests the sufficient decrease condition.
func (b *base) decrease(t *trial) bool {
	return t.ft <= t.fx+b.param.Xi*t.beta*t.gd
}

// slope evaluates ∇f at the trial point and returns g(x + βd)ᵀd.
func (b *base) slope(t *trial, ctx *nonlinear.Context) (float64, error) {
	if err := ctx.EvaluateGradient(b.xt, b.gt); err != nil {
		return 0, err
	}
	return linalg.Dot(b.gt, t.d), nil
}

func (b *base) search(x, g, d []float64, ctx *nonlinear.Context, accept judge) (float64, error) {

	if n := len(b.xt); len(x) != n || len(g) != n || len(d) != n {
		panic("bound check error")
	}

	fx, err := ctx.Evaluate(x)
	if err != nil {
		return 0, err
	}

	t := trial{
		beta: b.param.InitialStep,
		fx:   fx,
		gd:   linalg.Dot(g, d),
		d:    d,
	}

	for iter := 0; iter < b.param.MaxIterations; iter++ {
		// the trial step left the representable range
		if t.beta == 0 || t.beta > maxStep {
			break
		}

		linalg.UpdateStep(b.xt, x, t.beta, d)
		if t.ft, err = ctx.Evaluate(b.xt); err != nil {
			return 0, err
		}

		ok, width, err := accept(&t, ctx)
		if err != nil {
			return 0, err
		}
		if ok {
			ctx.Alpha = t.beta
			return t.beta, nil
		}
		t.beta *= width
	}
	return 0, nonlinear.ErrLineSearchFailed
}
