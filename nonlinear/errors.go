// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nonlinear

import "errors"

var (
	// ErrNoFunction indicates the objective or the gradient evaluator is missing.
	ErrNoFunction = errors.New("nonlinear: objective and gradient are required")

	// ErrNoParameter indicates a parameter record holds a value outside its domain.
	ErrNoParameter = errors.New("nonlinear: invalid parameter")

	// ErrOutOfMemory indicates the scratch storage of a run could not be allocated.
	ErrOutOfMemory = errors.New("nonlinear: workspace allocation failed")

	// ErrFunctionNaN indicates the objective or the gradient produced a NaN.
	ErrFunctionNaN = errors.New("nonlinear: evaluation produced NaN")

	// ErrLineSearchFailed indicates no acceptable step was found within the iteration bound.
	ErrLineSearchFailed = errors.New("nonlinear: line search failed")

	// ErrDirectionFailed indicates the linear system behind the descent direction could not be solved.
	ErrDirectionFailed = errors.New("nonlinear: descent direction not solved")
)
