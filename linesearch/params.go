// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linesearch

import (
	"fmt"
	"strings"

	"github.com/curioloop/descent/nonlinear"
)

// Kind selects the step acceptance strategy.
type Kind int

const (
	// BacktrackingWolfe shrinks on insufficient decrease and grows on insufficient curvature.
	BacktrackingWolfe Kind = iota
	// BacktrackingStrongWolfe is BacktrackingWolfe bounding the magnitude of the new slope.
	BacktrackingStrongWolfe
	// Armijo accepts the first step with sufficient decrease.
	Armijo
	// Wolfe shrinks until both sufficient decrease and curvature hold.
	Wolfe
	// StrongWolfe is Wolfe bounding the magnitude of the new slope.
	StrongWolfe
)

var kindNames = [...]string{
	BacktrackingWolfe:       "backtracking-wolfe",
	BacktrackingStrongWolfe: "backtracking-strong-wolfe",
	Armijo:                  "armijo",
	Wolfe:                   "wolfe",
	StrongWolfe:             "strong-wolfe",
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Valid reports whether k names a known strategy.
func (k Kind) Valid() bool {
	return k >= 0 && int(k) < len(kindNames)
}

// ParseKind returns the Kind named s, ignoring case.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown line search %q", nonlinear.ErrNoParameter, s)
}

// Parameters configures a line search. Zero fields take their default.
type Parameters struct {
	// Trial step of the first iteration, 1 when not positive.
	InitialStep float64
	// Shrink factor τ of Armijo, Wolfe and strong Wolfe.
	Tau float64
	// Sufficient decrease factor ξ, the step β is acceptable when
	//   f(x + βd) ≤ f(x) + ξβgᵀd
	Xi float64
	// Curvature factor σ, the step β is acceptable when
	//   σgᵀd ≤ g(x + βd)ᵀd            (Wolfe)
	//   σgᵀd ≤ g(x + βd)ᵀd ≤ |σgᵀd|   (strong Wolfe)
	Sigma float64
	// Shrink factor of the backtracking variants.
	Decreasing float64
	// Growth factor of the backtracking variants.
	Increasing float64
	// The search fail when the number of trial steps exceeds limit.
	MaxIterations int
}

// Default returns the default parameters.
func Default() Parameters {
	return Parameters{
		InitialStep:   1,
		Tau:           0.5,
		Xi:            0.001,
		Sigma:         0.2,
		Decreasing:    0.5,
		Increasing:    2.1,
		MaxIterations: 5000,
	}
}

func (p Parameters) withDefaults() Parameters {
	d := Default()
	if !(p.InitialStep > 0) {
		p.InitialStep = d.InitialStep
	}
	if p.Tau == 0 {
		p.Tau = d.Tau
	}
	if p.Xi == 0 {
		p.Xi = d.Xi
	}
	if p.Sigma == 0 {
		p.Sigma = d.Sigma
	}
	if p.Decreasing == 0 {
		p.Decreasing = d.Decreasing
	}
	if p.Increasing == 0 {
		p.Increasing = d.Increasing
	}
	if p.MaxIterations == 0 {
		p.MaxIterations = d.MaxIterations
	}
	return p
}

func inUnit(v float64) bool {
	return v > 0 && v < 1
}

// Validate reports whether every field, once defaulted, lies in its domain.
func (p Parameters) Validate() (err error) {
	p = p.withDefaults()
	switch {
	case p.InitialStep > maxStep:
		err = fmt.Errorf("%w: initial step must be finite", nonlinear.ErrNoParameter)
	case !inUnit(p.Tau):
		err = fmt.Errorf("%w: tau must lie in (0,1)", nonlinear.ErrNoParameter)
	case !inUnit(p.Xi):
		err = fmt.Errorf("%w: xi must lie in (0,1)", nonlinear.ErrNoParameter)
	case !inUnit(p.Sigma):
		err = fmt.Errorf("%w: sigma must lie in (0,1)", nonlinear.ErrNoParameter)
	case !inUnit(p.Decreasing):
		err = fmt.Errorf("%w: decreasing must lie in (0,1)", nonlinear.ErrNoParameter)
	case !(p.Increasing > 1) || p.Increasing > maxStep:
		err = fmt.Errorf("%w: increasing must be greater than 1", nonlinear.ErrNoParameter)
	case p.MaxIterations < 0:
		err = fmt.Errorf("%w: max iteration must not less than 0", nonlinear.ErrNoParameter)
	}
	return
}
