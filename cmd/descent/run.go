// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/curioloop/descent/linesearch"
	"github.com/curioloop/descent/nonlinear"
	"github.com/curioloop/descent/problems"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

func searchNames() []string {
	var names []string
	for k := linesearch.Kind(0); k.Valid(); k++ {
		names = append(names, k.String())
	}
	return names
}

func (a *app) runCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [problem...]",
		Short: "Minimize benchmark problems",
		Long: `Minimize each named problem from its conventional starting point.
Problems run side by side, each with its own workspace.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg runConfig
			if err := a.v.Unmarshal(&cfg); err != nil {
				return fmt.Errorf("failed to decode config: %w", err)
			}

			names := args
			if cfg.All {
				names = problems.Names()
				if cfg.Dim != 0 {
					a.log.WithField("dim", cfg.Dim).Warn("dimension ignored when running the whole catalogue")
					cfg.Dim = 0
				}
			}
			if len(names) == 0 {
				return errors.New("no problem given, name one or pass --all")
			}

			outcomes, err := a.run(cmd.Context(), &cfg, names, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if err = writeOutcomes(cmd.OutOrStdout(), cfg.Output, outcomes); err != nil {
				return err
			}

			failed := 0
			for _, o := range outcomes {
				if !o.satisfied {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d runs not satisfied", failed, len(outcomes))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.String("method", "bfgs", "optimizer: bfgs or cg")
	f.String("formula", "h", "BFGS formula: h (inverse Hessian) or b (Hessian)")
	f.String("search", linesearch.BacktrackingWolfe.String(), "line search: "+strings.Join(searchNames(), ", "))
	f.Int("dim", 0, "problem dimension, 0 selects the default of each problem")
	f.Float64("tolerance", 1e-8, "stop when the gradient infinity norm falls below")
	f.Int("max-iter", 5000, "iteration limit")
	f.Float64("initial-step", 1, "first trial step of every line search")
	f.Float64("xi", 0.001, "sufficient decrease factor")
	f.Float64("sigma", 0.2, "curvature factor")
	f.Float64("omega", 0.5, "SOR relaxation factor of the B formula")
	f.Int("trace", int(nonlinear.LogLast), "reporter level: -1 silent, 0 summary, n every n iterations, 99 every iteration")
	f.String("output", "text", "report format: text or yaml")
	f.Bool("all", false, "run every problem of the catalogue")
	return cmd
}

// run solves every named problem concurrently. The iteration tables are
// buffered per problem and flushed to table in order once all runs end.
func (a *app) run(ctx context.Context, cfg *runConfig, names []string, table io.Writer) ([]*outcome, error) {

	solve, err := cfg.solver()
	if err != nil {
		return nil, err
	}

	outcomes := make([]*outcome, len(names))
	tables := make([]bytes.Buffer, len(names))

	g, ctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p, err := problems.Lookup(name, cfg.Dim)
			if err != nil {
				return err
			}
			reporter := &nonlinear.Logger{
				Level: nonlinear.LogLevel(cfg.Trace),
				Msg:   a.log.WithField("problem", p.Name),
				Out:   &tables[i],
			}
			outcomes[i], err = solve(p, reporter)
			return err
		})
	}
	err = g.Wait()

	for i := range tables {
		if _, werr := tables[i].WriteTo(table); werr != nil && err == nil {
			err = werr
		}
	}
	if err != nil {
		return nil, err
	}
	return outcomes, nil
}

func writeOutcomes(w io.Writer, format string, outcomes []*outcome) error {
	if strings.ToLower(format) == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(outcomes); err != nil {
			return err
		}
		return enc.Close()
	}

	_, err := fmt.Fprintf(w, "%-12s %-6s %-16s %5s %6s %6s %6s %14s %10s\n",
		"PROBLEM", "METHOD", "STATUS", "N", "ITER", "NFEV", "NGEV", "F", "|G|")
	for _, o := range outcomes {
		if err != nil {
			break
		}
		_, err = fmt.Fprintf(w, "%-12s %-6s %-16s %5d %6d %6d %6d %14.6e %10.3e\n",
			o.Problem, o.Method, o.Status, o.N, o.Iter, o.NumFunc, o.NumGrad, o.F, o.GNorm)
	}
	return err
}
