// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package problems is a catalogue of benchmark objectives with analytic
// gradients, used to exercise the descent optimizers end to end.
package problems

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/curioloop/descent/nonlinear"
	"gonum.org/v1/gonum/optimize/functions"
)

// Problem is an objective together with its gradient and a starting point.
type Problem struct {
	Name     string
	N        int
	Function nonlinear.Function
	Gradient nonlinear.Gradient
	// Start is the conventional initial point.
	Start []float64
	// Solution is the global minimizer, nil when the optimizer is only
	// expected to reach some stationary point.
	Solution []float64
}

// Initial returns a copy of the starting point.
func (p *Problem) Initial() []float64 {
	return slices.Repeat(p.Start, 1)
}

type entry struct {
	dim   int  // default dimension
	min   int  // smallest dimension accepted
	fixed bool // dimension cannot change
	build func(n int) *Problem
}

var catalogue = map[string]entry{
	"quartic":     {dim: 2, min: 2, fixed: true, build: func(int) *Problem { return Quartic() }},
	"quadratic":   {dim: 3, min: 3, fixed: true, build: func(int) *Problem { return Quadratic() }},
	"exponential": {dim: 100, min: 1, build: Exponential},
	"griewank":    {dim: 10, min: 1, build: Griewank},
	"schwefel":    {dim: 10, min: 1, build: Schwefel},
	"rastrigin":   {dim: 10, min: 1, build: Rastrigin},
	"ackley":      {dim: 10, min: 1, build: Ackley},
	"rosenbrock":  {dim: 2, min: 2, build: Rosenbrock},
}

// Names lists the catalogue in lexical order.
func Names() []string {
	names := make([]string, 0, len(catalogue))
	for name := range catalogue {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup builds the named problem in n dimensions.
// A non-positive n selects the default dimension of the problem.
func Lookup(name string, n int) (*Problem, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	e, ok := catalogue[key]
	switch {
	case !ok:
		return nil, fmt.Errorf("%w: unknown problem %q", nonlinear.ErrNoParameter, name)
	case n <= 0:
		n = e.dim
	case e.fixed && n != e.dim:
		return nil, fmt.Errorf("%w: problem %s has fixed dimension %d", nonlinear.ErrNoParameter, key, e.dim)
	case n < e.min:
		return nil, fmt.Errorf("%w: problem %s needs at least %d dimensions", nonlinear.ErrNoParameter, key, e.min)
	}
	return e.build(n), nil
}

func fill(n int, v float64) []float64 {
	return slices.Repeat([]float64{v}, n)
}

// Quartic is
//
//	f(x) = ((x₁ - x₂²)² + (x₂ - 2)²) / 2
//
// with minimizer x* = (4, 2).
func Quartic() *Problem {
	return &Problem{
		Name: "quartic",
		N:    2,
		Function: func(x []float64) float64 {
			a := x[0] - x[1]*x[1]
			b := x[1] - 2
			return (a*a + b*b) / 2
		},
		Gradient: func(x, g []float64) {
			a := x[0] - x[1]*x[1]
			g[0] = a
			g[1] = -2*x[1]*a + x[1] - 2
		},
		Start:    fill(2, 0),
		Solution: []float64{4, 2},
	}
}

// Quadratic is the convex f(x) = ½xᵀAx - bᵀx with
//
//	A = [4 1 0; 1 3 1; 0 1 2], b = (1, 2, 3)
//
// and minimizer x* = A⁻¹b = (2/9, 1/9, 13/9).
func Quadratic() *Problem {
	a := [3][3]float64{{4, 1, 0}, {1, 3, 1}, {0, 1, 2}}
	b := [3]float64{1, 2, 3}
	grad := func(x, g []float64) {
		for i, row := range a {
			g[i] = row[0]*x[0] + row[1]*x[1] + row[2]*x[2] - b[i]
		}
	}
	return &Problem{
		Name: "quadratic",
		N:    3,
		Function: func(x []float64) (f float64) {
			for i, row := range a {
				ax := row[0]*x[0] + row[1]*x[1] + row[2]*x[2]
				f += x[i] * (ax/2 - b[i])
			}
			return
		},
		Gradient: grad,
		Start:    fill(3, 0),
		Solution: []float64{2. / 9, 1. / 9, 13. / 9},
	}
}

// Exponential is the separable f(x) = Σ eˣⁱ - xᵢ√i for i = 1..n
// with minimizer xᵢ* = ln √i.
func Exponential(n int) *Problem {
	sol := make([]float64, n)
	for i := range sol {
		sol[i] = math.Log(math.Sqrt(float64(i + 1)))
	}
	return &Problem{
		Name: "exponential",
		N:    n,
		Function: func(x []float64) (f float64) {
			for i, v := range x {
				f += math.Exp(v) - v*math.Sqrt(float64(i+1))
			}
			return
		},
		Gradient: func(x, g []float64) {
			for i, v := range x {
				g[i] = math.Exp(v) - math.Sqrt(float64(i+1))
			}
		},
		Start:    fill(n, 1),
		Solution: sol,
	}
}

// Griewank is
//
//	f(x) = 1 + Σ xᵢ²/4000 - Π cos(xᵢ/i)
//
// with global minimizer x* = 0.
func Griewank(n int) *Problem {
	return &Problem{
		Name: "griewank",
		N:    n,
		Function: func(x []float64) float64 {
			sum, prod := 0.0, 1.0
			for i, v := range x {
				sum += v * v
				prod *= math.Cos(v / float64(i+1))
			}
			return 1 + sum/4000 - prod
		},
		Gradient: func(x, g []float64) {
			for i, v := range x {
				prod := 1.0
				for j, u := range x {
					if j != i {
						prod *= math.Cos(u / float64(j+1))
					}
				}
				k := float64(i + 1)
				g[i] = v/2000 + math.Sin(v/k)*prod/k
			}
		},
		Start:    fill(n, 1),
		Solution: fill(n, 0),
	}
}

// Schwefel is the double sum f(x) = Σᵢ (Σⱼ≤ᵢ xⱼ)² with minimizer x* = 0.
func Schwefel(n int) *Problem {
	return &Problem{
		Name: "schwefel",
		N:    n,
		Function: func(x []float64) (f float64) {
			s := 0.0
			for _, v := range x {
				s += v
				f += s * s
			}
			return
		},
		Gradient: func(x, g []float64) {
			// ∂f/∂xₖ = 2 Σᵢ≥ₖ Sᵢ
			s := 0.0
			for i, v := range x {
				s += v
				g[i] = s
			}
			acc := 0.0
			for k := len(x) - 1; k >= 0; k-- {
				acc += g[k]
				g[k] = 2 * acc
			}
		},
		Start:    fill(n, 1),
		Solution: fill(n, 0),
	}
}

// Rastrigin is f(x) = Σ xᵢ² + 10(1 - cos 2πxᵢ), global minimizer x* = 0.
//
// It has a regular lattice of local minima, a descent from an arbitrary
// start finds one of them.
func Rastrigin(n int) *Problem {
	return &Problem{
		Name: "rastrigin",
		N:    n,
		Function: func(x []float64) (f float64) {
			for _, v := range x {
				f += v*v + 10*(1-math.Cos(2*math.Pi*v))
			}
			return
		},
		Gradient: func(x, g []float64) {
			for i, v := range x {
				g[i] = 2*v + 20*math.Pi*math.Sin(2*math.Pi*v)
			}
		},
		Start: fill(n, 1),
	}
}

// Ackley is the variant
//
//	f(x) = 20(1 - exp(-‖x‖₂ / 5√n)) + e - exp(Σ cos(2πxᵢ) / n)
//
// The first term is not differentiable at x = 0, its gradient is taken as 0 there.
func Ackley(n int) *Problem {
	rn := math.Sqrt(float64(n))
	return &Problem{
		Name: "ackley",
		N:    n,
		Function: func(x []float64) float64 {
			norm, cos := 0.0, 0.0
			for _, v := range x {
				norm += v * v
				cos += math.Cos(2 * math.Pi * v)
			}
			norm = math.Sqrt(norm)
			return 20*(1-math.Exp(-norm/(5*rn))) + (math.E - math.Exp(cos/float64(n)))
		},
		Gradient: func(x, g []float64) {
			norm, cos := 0.0, 0.0
			for _, v := range x {
				norm += v * v
				cos += math.Cos(2 * math.Pi * v)
			}
			norm = math.Sqrt(norm)
			radial := 0.0
			if norm > 0 {
				radial = 4 * math.Exp(-norm/(5*rn)) / (rn * norm)
			}
			wave := 2 * math.Pi * math.Exp(cos/float64(n)) / float64(n)
			for i, v := range x {
				g[i] = radial*v + wave*math.Sin(2*math.Pi*v)
			}
		},
		Start: fill(n, 1),
	}
}

// Rosenbrock is the extended Rosenbrock function
//
//	f(x) = Σ 100(xᵢ₊₁ - xᵢ²)² + (1 - xᵢ)²
//
// started from the classic (-1.2, 1, -1.2, 1, ...), with minimizer x* = 1.
func Rosenbrock(n int) *Problem {
	var fn functions.ExtendedRosenbrock
	start := make([]float64, n)
	for i := range start {
		if i%2 == 0 {
			start[i] = -1.2
		} else {
			start[i] = 1
		}
	}
	return &Problem{
		Name:     "rosenbrock",
		N:        n,
		Function: fn.Func,
		Gradient: func(x, g []float64) { fn.Grad(g, x) },
		Start:    start,
		Solution: fill(n, 1),
	}
}
