// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package nonlinear holds what every descent method shares: the evaluation
// context wrapping the user objective, the status taxonomy and the reporter
// notified as a run progresses.
package nonlinear

import "fmt"

// Function evaluates the objective at x.
type Function func(x []float64) float64

// Gradient stores the gradient of the objective at x into g.
type Gradient func(x, g []float64)

// Context binds an objective and its gradient to the counters of one run.
// A context must not be shared between concurrent runs.
type Context struct {
	NumFunc int     // Number of objective evaluations.
	NumGrad int     // Number of gradient evaluations.
	F       float64 // Last objective value.
	Alpha   float64 // Last accepted step length.

	function Function
	gradient Gradient
}

// NewContext creates an evaluation context for the objective f and gradient g.
func NewContext(f Function, g Gradient) (*Context, error) {
	switch {
	case f == nil:
		return nil, fmt.Errorf("%w: objective is nil", ErrNoFunction)
	case g == nil:
		return nil, fmt.Errorf("%w: gradient is nil", ErrNoFunction)
	}
	return &Context{function: f, gradient: g}, nil
}

// Reset clears the counters and the recorded values.
func (c *Context) Reset() {
	c.NumFunc, c.NumGrad = 0, 0
	c.F, c.Alpha = 0, 0
}

// Evaluate computes f(x). The counter is incremented whatever the outcome.
func (c *Context) Evaluate(x []float64) (float64, error) {
	c.NumFunc++
	f := c.function(x)
	c.F = f
	if f != f {
		return f, ErrFunctionNaN
	}
	return f, nil
}

// EvaluateGradient stores ∇f(x) into g. The counter is incremented whatever the outcome.
func (c *Context) EvaluateGradient(x, g []float64) error {
	c.NumGrad++
	c.gradient(x, g)
	for _, v := range g {
		if v != v {
			return ErrFunctionNaN
		}
	}
	return nil
}

// EvaluateBoth computes f(x) and stores ∇f(x) into g.
// The gradient is not evaluated when f(x) is NaN.
func (c *Context) EvaluateBoth(x, g []float64) (float64, error) {
	f, err := c.Evaluate(x)
	if err != nil {
		return f, err
	}
	return f, c.EvaluateGradient(x, g)
}
