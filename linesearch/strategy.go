// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linesearch

import (
	"math"

	"github.com/curioloop/descent/nonlinear"
)

type armijo struct {
	base
}

func (s *armijo) Search(x, g, d []float64, ctx *nonlinear.Context) (float64, error) {
	return s.search(x, g, d, ctx, func(t *trial, _ *nonlinear.Context) (bool, float64, error) {
		return s.decrease(t), s.param.Tau, nil
	})
}

// wolfe shrinks by τ whichever condition fails.
type wolfe struct {
	base
	strong bool
}

func (s *wolfe) Search(x, g, d []float64, ctx *nonlinear.Context) (float64, error) {
	return s.search(x, g, d, ctx, func(t *trial, ctx *nonlinear.Context) (bool, float64, error) {
		if !s.decrease(t) {
			return false, s.param.Tau, nil
		}
		gdt, err := s.slope(t, ctx)
		if err != nil {
			return false, 0, err
		}
		sgd := s.param.Sigma * t.gd
		ok := sgd <= gdt
		if s.strong {
			ok = ok && gdt <= math.Abs(sgd)
		}
		return ok, s.param.Tau, nil
	})
}

// backtracking moves β toward the region where both conditions hold:
// shrink past it on insufficient decrease or a too positive slope,
// grow towards it on a too steep slope.
type backtracking struct {
	base
	strong bool
}

func (s *backtracking) Search(x, g, d []float64, ctx *nonlinear.Context) (float64, error) {
	return s.search(x, g, d, ctx, func(t *trial, ctx *nonlinear.Context) (bool, float64, error) {
		if !s.decrease(t) {
			return false, s.param.Decreasing, nil
		}
		gdt, err := s.slope(t, ctx)
		if err != nil {
			return false, 0, err
		}
		sgd := s.param.Sigma * t.gd
		switch {
		case gdt < sgd:
			return false, s.param.Increasing, nil
		case s.strong && gdt > math.Abs(sgd):
			return false, s.param.Decreasing, nil
		}
		return true, 0, nil
	})
}
