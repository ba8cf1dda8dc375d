// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package nonlinear

import (
	"errors"

	"github.com/curioloop/descent/linalg"
)

// Status is the outcome of an optimization run.
// Satisfied is the only successful outcome, NotUpdated is informational.
type Status int

const (
	Satisfied Status = iota
	FunctionNaN
	OutOfMemory
	NoFunction
	NoParameter
	LineSearchFailed
	NoConvergence
	NotUpdated
	DirectionFailed
)

var statusStrings = [...]string{
	Satisfied:        "Satisfied",
	FunctionNaN:      "FunctionNaN",
	OutOfMemory:      "OutOfMemory",
	NoFunction:       "NoFunction",
	NoParameter:      "NoParameter",
	LineSearchFailed: "LineSearchFailed",
	NoConvergence:    "NoConvergence",
	NotUpdated:       "NotUpdated",
	DirectionFailed:  "DirectionFailed",
}

func (s Status) String() string {
	if s < 0 || int(s) >= len(statusStrings) {
		return "UnknownStatus"
	}
	return statusStrings[s]
}

// StatusOf maps an error returned by this module to its Status.
// A nil error is Satisfied, unrecognized errors are reported as NoParameter.
func StatusOf(err error) Status {
	switch {
	case err == nil:
		return Satisfied
	case errors.Is(err, ErrFunctionNaN):
		return FunctionNaN
	case errors.Is(err, ErrOutOfMemory):
		return OutOfMemory
	case errors.Is(err, ErrNoFunction):
		return NoFunction
	case errors.Is(err, ErrLineSearchFailed):
		return LineSearchFailed
	case errors.Is(err, ErrDirectionFailed),
		errors.Is(err, linalg.ErrZeroDiagonal),
		errors.Is(err, linalg.ErrNotConverged):
		return DirectionFailed
	case errors.Is(err, linalg.ErrInvalidRelaxation):
		return NoParameter
	default:
		return NoParameter
	}
}
