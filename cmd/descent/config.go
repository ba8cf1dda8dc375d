// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"strings"

	"github.com/curioloop/descent/bfgs"
	"github.com/curioloop/descent/cg"
	"github.com/curioloop/descent/linalg"
	"github.com/curioloop/descent/linesearch"
	"github.com/curioloop/descent/nonlinear"
	"github.com/curioloop/descent/problems"
)

// runConfig is the merged view of flags, environment and config file.
type runConfig struct {
	Method    string  `mapstructure:"method"`
	Formula   string  `mapstructure:"formula"`
	Search    string  `mapstructure:"search"`
	Dim       int     `mapstructure:"dim"`
	Tolerance float64 `mapstructure:"tolerance"`
	MaxIter   int     `mapstructure:"max-iter"`
	Step      float64 `mapstructure:"initial-step"`
	Xi        float64 `mapstructure:"xi"`
	Sigma     float64 `mapstructure:"sigma"`
	Omega     float64 `mapstructure:"omega"`
	Trace     int     `mapstructure:"trace"`
	Output    string  `mapstructure:"output"`
	All       bool    `mapstructure:"all"`
}

// outcome is one line of the run report.
type outcome struct {
	Problem string    `yaml:"problem"`
	Method  string    `yaml:"method"`
	Status  string    `yaml:"status"`
	N       int       `yaml:"n"`
	Iter    int       `yaml:"iterations"`
	NumFunc int       `yaml:"nfev"`
	NumGrad int       `yaml:"ngev"`
	NumSkip int       `yaml:"skipped,omitempty"`
	F       float64   `yaml:"f"`
	GNorm   float64   `yaml:"gnorm"`
	X       []float64 `yaml:"x,flow"`
	// ‖ x - x* ‖∞ when the minimizer is known.
	Error *float64 `yaml:"error,omitempty"`

	satisfied bool
}

func newOutcome(p *problems.Problem, method string, status nonlinear.Status, f float64, x, g []float64) *outcome {
	o := &outcome{
		Problem:   p.Name,
		Method:    method,
		Status:    status.String(),
		N:         p.N,
		F:         f,
		GNorm:     linalg.InfinityNorm(g),
		X:         x,
		satisfied: status == nonlinear.Satisfied,
	}
	if p.Solution != nil {
		diff := make([]float64, len(x))
		for i, v := range x {
			diff[i] = v - p.Solution[i]
		}
		e := linalg.InfinityNorm(diff)
		o.Error = &e
	}
	return o
}

// solver runs one problem, each call owns its workspace.
type solver func(p *problems.Problem, reporter nonlinear.Reporter) (*outcome, error)

func (c *runConfig) solver() (solver, error) {

	switch strings.ToLower(c.Output) {
	case "", "text", "yaml":
	default:
		return nil, fmt.Errorf("%w: unknown output format %q", nonlinear.ErrNoParameter, c.Output)
	}

	kind, err := linesearch.ParseKind(c.Search)
	if err != nil {
		return nil, err
	}
	params := &linesearch.Parameters{InitialStep: c.Step, Xi: c.Xi, Sigma: c.Sigma}
	if err = params.Validate(); err != nil {
		return nil, err
	}

	switch strings.ToLower(strings.TrimSpace(c.Method)) {
	case "bfgs":
		formula, err := bfgs.ParseFormula(c.Formula)
		if err != nil {
			return nil, err
		}
		return func(p *problems.Problem, reporter nonlinear.Reporter) (*outcome, error) {
			prob := bfgs.Problem{
				N:        p.N,
				Function: p.Function,
				Gradient: p.Gradient,
				Formula:  formula,
				Search:   kind,
				Params:   params,
				Stop:     bfgs.Termination{Tolerance: c.Tolerance, MaxIterations: c.MaxIter},
				Relax:    &linalg.Relaxation{Omega: c.Omega},
			}
			o, err := prob.New(reporter)
			if err != nil {
				return nil, err
			}
			w, err := o.Init()
			if err != nil {
				return nil, err
			}
			r := o.Fit(p.Initial(), nil, w)
			out := newOutcome(p, "BFGS-"+formula.String(), r.Status, r.F, r.X, r.G)
			out.Iter, out.NumFunc, out.NumGrad, out.NumSkip = r.NumIter, r.NumFunc, r.NumGrad, r.NumSkip
			return out, nil
		}, nil

	case "cg":
		return func(p *problems.Problem, reporter nonlinear.Reporter) (*outcome, error) {
			prob := cg.Problem{
				N:        p.N,
				Function: p.Function,
				Gradient: p.Gradient,
				Search:   kind,
				Params:   params,
				Stop:     cg.Termination{Tolerance: c.Tolerance, MaxIterations: c.MaxIter},
			}
			o, err := prob.New(reporter)
			if err != nil {
				return nil, err
			}
			w, err := o.Init()
			if err != nil {
				return nil, err
			}
			r := o.Fit(p.Initial(), w)
			out := newOutcome(p, cg.Method, r.Status, r.F, r.X, r.G)
			out.Iter, out.NumFunc, out.NumGrad = r.NumIter, r.NumFunc, r.NumGrad
			return out, nil
		}, nil
	}

	return nil, fmt.Errorf("%w: unknown method %q", nonlinear.ErrNoParameter, c.Method)
}
