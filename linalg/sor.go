// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linalg

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrZeroDiagonal is returned when a diagonal element of the system matrix is zero.
	ErrZeroDiagonal = errors.New("linalg: zero diagonal element")
	// ErrNotConverged is returned when the sweep bound is reached before the iteration settles.
	ErrNotConverged = errors.New("linalg: relaxation did not converge")

	// ErrInvalidRelaxation is returned when ε is not positive or ω lies outside (0,2).
	ErrInvalidRelaxation = errors.New("linalg: invalid relaxation parameter")
)

const (
	// DefaultMaxSweeps bounds the number of sweeps when Relaxation.MaxSweeps is not positive.
	DefaultMaxSweeps = 10000
)

// Relaxation configures the successive over-relaxation iteration.
type Relaxation struct {
	// The iteration stop when the largest coordinate change of a sweep satisfied:
	//   𝚖𝚊𝚡( |xᵢ⁽ᵏ⁺¹⁾ - xᵢ⁽ᵏ⁾| ) ≤ 𝚎𝚙𝚜𝚒𝚕𝚘𝚗
	Epsilon float64
	// Relaxation factor ω, the iteration reduce to Gauss-Seidel when ω = 1.
	Omega float64
	// The iteration fail when the number of sweeps exceeds limit.
	MaxSweeps int
}

// SOR solves A·x = b by successive over-relaxation and returns the number of sweeps.
//
// On entry x holds the initial guess, on return it holds the last iterate.
// Each sweep updates x in place row by row:
//
//	xᵢ ← xᵢ + ω((bᵢ - Σⱼ≠ᵢ aᵢⱼxⱼ)/aᵢᵢ - xᵢ)
//
// Convergence is not guaranteed for arbitrary A, the sweep bound keeps the
// iteration finite when the spectral radius of the iteration matrix is ≥ 1.
// The relaxation must satisfy ε > 0 and 0 < ω < 2.
func SOR(a *mat.Dense, x, b []float64, relax Relaxation) (sweeps int, err error) {

	n, c := a.Dims()
	if n != c || len(x) != n || len(b) != n {
		panic("bound check error")
	}

	if !(relax.Epsilon > 0) || !(relax.Omega > 0 && relax.Omega < 2) {
		return 0, ErrInvalidRelaxation
	}

	for i := 0; i < n; i++ {
		if a.At(i, i) == 0 {
			return 0, ErrZeroDiagonal
		}
	}

	limit := relax.MaxSweeps
	if limit <= 0 {
		limit = DefaultMaxSweeps
	}

	omega := relax.Omega
	for sweeps < limit {
		sweeps++
		change := 0.0
		for i := 0; i < n; i++ {
			row := a.RawRowView(i)
			old := x[i]
			sum := b[i]
			for j, v := range row[:i] {
				sum -= v * x[j]
			}
			for j, v := range row[i+1:] {
				sum -= v * x[i+1+j]
			}
			x[i] = old + omega*(sum/row[i]-old)
			if math.IsNaN(x[i]) || math.IsInf(x[i], 0) {
				return sweeps, ErrNotConverged
			}
			if d := math.Abs(x[i] - old); d > change {
				change = d
			}
		}
		if change <= relax.Epsilon {
			return sweeps, nil
		}
	}
	return sweeps, ErrNotConverged
}

// GaussSeidel solves A·x = b by the Gauss-Seidel iteration, that is SOR with ω = 1.
func GaussSeidel(a *mat.Dense, x, b []float64, epsilon float64, maxSweeps int) (int, error) {
	return SOR(a, x, b, Relaxation{Epsilon: epsilon, Omega: 1, MaxSweeps: maxSweeps})
}
