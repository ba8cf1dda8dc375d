// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/curioloop/descent/nonlinear"
	"github.com/curioloop/descent/numdiff"
	"github.com/curioloop/descent/problems"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func parseDifference(s string) (numdiff.Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "forward":
		return numdiff.Forward, nil
	case "central":
		return numdiff.Central, nil
	}
	return 0, fmt.Errorf("%w: unknown difference %q", nonlinear.ErrNoParameter, s)
}

func (a *app) checkCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [problem...]",
		Short: "Compare analytic gradients against finite differences",
		Long: `Evaluate the analytic gradient of each problem at its starting point and
report the largest error relative to a finite difference approximation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := args
			if a.v.GetBool("all") {
				names = problems.Names()
			}
			if len(names) == 0 {
				return errors.New("no problem given, name one or pass --all")
			}

			method, err := parseDifference(a.v.GetString("difference"))
			if err != nil {
				return err
			}
			threshold := a.v.GetFloat64("threshold")

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-12s %5s %12s %s\n", "PROBLEM", "N", "MAX ERROR", "RESULT")

			failed := 0
			for _, name := range names {
				dim := a.v.GetInt("dim")
				if a.v.GetBool("all") {
					dim = 0
				}
				p, err := problems.Lookup(name, dim)
				if err != nil {
					return err
				}
				approx := &numdiff.Approx{N: p.N, Method: method, Function: p.Function}
				maxErr, err := numdiff.MaxError(p.Gradient, approx, p.Initial())
				if err != nil {
					return err
				}

				result := "ok"
				if !(maxErr <= threshold) {
					result = "FAIL"
					failed++
				}
				a.log.WithFields(logrus.Fields{
					"problem": p.Name,
					"n":       p.N,
					"error":   maxErr,
				}).Debug("gradient checked")
				fmt.Fprintf(out, "%-12s %5d %12.3e %s\n", p.Name, p.N, maxErr, result)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d gradients exceed %g", failed, len(names), threshold)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.Int("dim", 0, "problem dimension, 0 selects the default of each problem")
	f.String("difference", "central", "finite difference: forward or central")
	f.Float64("threshold", 1e-6, "largest relative error accepted")
	f.Bool("all", false, "check every problem of the catalogue")
	return cmd
}
