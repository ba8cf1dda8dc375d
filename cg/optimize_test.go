// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cg

import (
	"math"
	"testing"

	"github.com/curioloop/descent/linalg"
	"github.com/curioloop/descent/linesearch"
	"github.com/curioloop/descent/nonlinear"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Σ(eˣⁱ - xᵢ√(i+1)), minimized at xᵢ = ln√(i+1)
func exponential(x []float64) (f float64) {
	for i, v := range x {
		f += math.Exp(v) - v*math.Sqrt(float64(i+1))
	}
	return
}

func exponentialGrad(x, g []float64) {
	for i, v := range x {
		g[i] = math.Exp(v) - math.Sqrt(float64(i+1))
	}
}

// ½xᵀAx - bᵀx with A = [4 1 0; 1 3 1; 0 1 2] and b = (1, 2, 3)
func quadratic(x []float64) float64 {
	ax := []float64{4*x[0] + x[1], x[0] + 3*x[1] + x[2], x[1] + 2*x[2]}
	return linalg.Dot(ax, x)/2 - (x[0] + 2*x[1] + 3*x[2])
}

func quadraticGrad(x, g []float64) {
	g[0] = 4*x[0] + x[1] - 1
	g[1] = x[0] + 3*x[1] + x[2] - 2
	g[2] = x[1] + 2*x[2] - 3
}

type counter struct {
	start, iter, finish int
	last                nonlinear.Report
}

func (c *counter) Start(string, int, float64, float64) { c.start++ }
func (c *counter) Iterate(nonlinear.Progress)          { c.iter++ }
func (c *counter) Skip(int, float64)                   {}
func (c *counter) Finish(r nonlinear.Report)           { c.finish++; c.last = r }

func fit(t *testing.T, p *Problem, x []float64, r nonlinear.Reporter) *Result {
	o, err := p.New(r)
	require.NoError(t, err)
	w, err := o.Init()
	require.NoError(t, err)
	return o.Fit(x, w)
}

func ones(n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = 1
	}
	return x
}

func TestExponential(t *testing.T) {
	const n = 100
	cases := []struct {
		kind  linesearch.Kind
		tol   float64
		delta float64
	}{
		{linesearch.BacktrackingWolfe, 1e-6, 1e-5},
		{linesearch.BacktrackingStrongWolfe, 1e-7, 1e-6},
	}
	for _, c := range cases {
		t.Run(c.kind.String(), func(t *testing.T) {
			p := Problem{
				N:        n,
				Function: exponential,
				Gradient: exponentialGrad,
				Search:   c.kind,
				Params: &linesearch.Parameters{
					Xi: 0.001, Tau: 0.5, Sigma: 0.2,
					Decreasing: 0.5, Increasing: 2.1,
				},
				Stop: Termination{Tolerance: c.tol},
			}
			r := fit(t, &p, ones(n), nil)
			require.Equal(t, nonlinear.Satisfied, r.Status)
			assert.True(t, r.OK)
			for i, v := range r.X {
				require.InDelta(t, math.Log(math.Sqrt(float64(i+1))), v, c.delta, "x[%d]", i)
			}
			assert.Less(t, linalg.InfinityNorm(r.G), c.tol)
		})
	}
}

func TestQuadratic(t *testing.T) {
	c := new(counter)
	p := Problem{N: 3, Function: quadratic, Gradient: quadraticGrad, Stop: Termination{Tolerance: 1e-7}}
	r := fit(t, &p, nil, c)
	require.True(t, r.OK)
	assert.InDeltaSlice(t, []float64{2. / 9, 1. / 9, 13. / 9}, r.X, 1e-6)

	assert.Equal(t, 1, c.start)
	assert.Equal(t, r.NumIter, c.iter)
	assert.Equal(t, 1, c.finish)
	assert.Equal(t, Method, c.last.Method)
	assert.Equal(t, r.NumFunc, c.last.NumFunc)
	assert.Zero(t, c.last.NumSkip)
}

func TestFletcherReeves(t *testing.T) {
	p := Problem{N: 2, Function: exponential, Gradient: exponentialGrad}
	o, err := p.New(nil)
	require.NoError(t, err)
	w, err := o.Init()
	require.NoError(t, err)

	loc := iterLoc{x: []float64{0, 0}, g: []float64{3, -4}}
	d := iterDriver{optimizer: o, workspace: w, location: &loc, gg: 100}
	copy(w.d, []float64{-2, 1})

	// β = 25/100
	require.NoError(t, d.updateDirection())
	assert.Equal(t, []float64{-3.5, 4.25}, w.d)
	assert.Equal(t, 25.0, d.gg)

	loc.g[0] = math.Inf(1)
	assert.ErrorIs(t, d.updateDirection(), nonlinear.ErrFunctionNaN)
}

func TestFailures(t *testing.T) {
	c := new(counter)
	p := Problem{
		N:        3,
		Function: func([]float64) float64 { return math.NaN() },
		Gradient: quadraticGrad,
	}
	r := fit(t, &p, ones(3), c)
	assert.Equal(t, nonlinear.FunctionNaN, r.Status)
	assert.Zero(t, r.NumIter)
	assert.Equal(t, 1, r.NumFunc)
	assert.Equal(t, 1, c.finish)
	assert.Zero(t, c.iter)

	p = Problem{
		N:        100,
		Function: exponential,
		Gradient: exponentialGrad,
		Stop:     Termination{MaxIterations: 1},
	}
	r = fit(t, &p, ones(100), nil)
	assert.Equal(t, nonlinear.NoConvergence, r.Status)
	assert.Equal(t, 1, r.NumIter)
	assert.False(t, r.OK)

	p = Problem{
		N:        3,
		Function: quadratic,
		Gradient: quadraticGrad,
		Params:   &linesearch.Parameters{InitialStep: 1e3, MaxIterations: 2},
	}
	r = fit(t, &p, nil, nil)
	assert.Equal(t, nonlinear.LineSearchFailed, r.Status)
	assert.Equal(t, []float64{0, 0, 0}, r.X)
}

func TestFit(t *testing.T) {
	p := Problem{N: 3, Function: quadratic, Gradient: quadraticGrad, Stop: Termination{Tolerance: 1e-7}}
	o, err := p.New(nil)
	require.NoError(t, err)
	w, err := o.Init()
	require.NoError(t, err)

	x := []float64{1, 1, 1}
	r1 := o.Fit(x, w)
	r2 := o.Fit(x, w)
	assert.Equal(t, []float64{1, 1, 1}, x)
	assert.Equal(t, r1, r2)

	assert.Panics(t, func() { o.Fit([]float64{1}, w) })

	q := p
	q.N = 2
	o2, err := q.New(nil)
	require.NoError(t, err)
	w2, err := o2.Init()
	require.NoError(t, err)
	assert.Panics(t, func() { o.Fit(x, w2) })
}

func TestNew(t *testing.T) {
	valid := Problem{N: 3, Function: quadratic, Gradient: quadraticGrad}
	o, err := valid.New(nil)
	require.NoError(t, err)
	assert.Equal(t, defaultTolerance, o.stop.Tolerance)
	assert.Equal(t, defaultMaxIterations, o.stop.MaxIterations)
	assert.Equal(t, linesearch.Default(), o.search)

	cases := []struct {
		name string
		edit func(p *Problem)
		want nonlinear.Status
	}{
		{"no function", func(p *Problem) { p.Function = nil }, nonlinear.NoFunction},
		{"no gradient", func(p *Problem) { p.Gradient = nil }, nonlinear.NoFunction},
		{"dimension", func(p *Problem) { p.N = -1 }, nonlinear.NoParameter},
		{"tolerance", func(p *Problem) { p.Stop.Tolerance = math.NaN() }, nonlinear.NoParameter},
		{"iterations", func(p *Problem) { p.Stop.MaxIterations = -5 }, nonlinear.NoParameter},
		{"search", func(p *Problem) { p.Search = -1 }, nonlinear.NoParameter},
		{"params", func(p *Problem) { p.Params = &linesearch.Parameters{Increasing: 0.5} }, nonlinear.NoParameter},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := valid
			c.edit(&p)
			_, err := p.New(nil)
			assert.Equal(t, c.want, nonlinear.StatusOf(err))

			rep := new(counter)
			r := Minimize([]float64{1, 2, 3}, &p, rep)
			assert.Equal(t, c.want, r.Status)
			assert.Equal(t, []float64{1, 2, 3}, r.X)
			assert.Equal(t, 1, rep.finish)
			assert.Zero(t, rep.start)
		})
	}
}

func TestOutOfMemory(t *testing.T) {
	p := Problem{N: math.MaxInt / 8, Function: exponential, Gradient: exponentialGrad}
	r := Minimize(nil, &p, nil)
	assert.Equal(t, nonlinear.OutOfMemory, r.Status)
	assert.Nil(t, r.X)
}

func TestMinimize(t *testing.T) {
	p := Problem{N: 3, Function: quadratic, Gradient: quadraticGrad, Stop: Termination{Tolerance: 1e-7}}
	r := Minimize(nil, &p, nil)
	assert.True(t, r.OK)
	assert.InDeltaSlice(t, []float64{2. / 9, 1. / 9, 13. / 9}, r.X, 1e-6)
}
