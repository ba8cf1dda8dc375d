// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/curioloop/descent/problems"
	"github.com/spf13/cobra"
)

func (a *app) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the benchmark problems",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-12s %5s %s\n", "PROBLEM", "N", "MINIMIZER")
			for _, name := range problems.Names() {
				p, err := problems.Lookup(name, 0)
				if err != nil {
					return err
				}
				known := "unknown"
				if p.Solution != nil {
					known = "known"
				}
				fmt.Fprintf(out, "%-12s %5d %s\n", p.Name, p.N, known)
			}
			return nil
		},
	}
}
