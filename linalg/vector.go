// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package linalg provides the small dense kernels shared by the descent
// optimizers: inner products, vector norms, the step update xₖ + αdₖ and a
// successive over-relaxation solver for the quasi-Newton B formula.
package linalg

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Dot returns the inner product xᵀy.
func Dot(x, y []float64) float64 {
	if len(x) != len(y) {
		panic("bound check error")
	}
	return floats.Dot(x, y)
}

// ManhattanNorm returns ‖ x ‖₁ = |x₀| + |x₁| + ... + |xₙ₋₁|.
func ManhattanNorm(x []float64) float64 {
	return floats.Norm(x, 1)
}

// EuclideanNorm returns ‖ x ‖₂.
func EuclideanNorm(x []float64) float64 {
	return floats.Norm(x, 2)
}

// InfinityNorm returns ‖ x ‖∞ = 𝚖𝚊𝚡( |xᵢ| ).
func InfinityNorm(x []float64) float64 {
	return floats.Norm(x, math.Inf(1))
}

// UpdateStep stores x + αd in dst and returns dst.
// A zero step copies x as is, even when d holds non-finite values.
func UpdateStep(dst, x []float64, alpha float64, d []float64) []float64 {
	if len(dst) != len(x) || len(x) != len(d) {
		panic("bound check error")
	}
	if alpha == 0 {
		copy(dst, x)
		return dst
	}
	return floats.AddScaledTo(dst, x, alpha, d)
}

// IsFinite reports whether every element of x is neither NaN nor ±Inf.
func IsFinite(x []float64) bool {
	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Identity overwrites the square matrix m with the identity.
func Identity(m *mat.Dense) {
	r, c := m.Dims()
	if r != c {
		panic("matrix is not square")
	}
	m.Zero()
	for i := 0; i < r; i++ {
		m.Set(i, i, 1)
	}
}

// NewIdentity allocates an n×n identity matrix.
func NewIdentity(n int) *mat.Dense {
	m := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		m.Set(i, i, 1)
	}
	return m
}
