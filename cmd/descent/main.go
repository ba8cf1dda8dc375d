// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command descent minimizes the benchmark problems of the catalogue with
// the BFGS and conjugate gradient optimizers.
//
//	descent list
//	descent check rosenbrock --dim 6
//	descent run quartic --method bfgs --formula b --search strong-wolfe
//	descent run --all --tolerance 1e-6 --output yaml
//
// Every flag can also be given by a DESCENT_* environment variable
// (DESCENT_MAX_ITER for --max-iter) or by a YAML file passed with --config.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
