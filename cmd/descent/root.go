// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries the state shared by the sub commands of one invocation.
type app struct {
	v   *viper.Viper
	log *logrus.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{v: viper.New(), log: logrus.New()}

	root := &cobra.Command{
		Use:   "descent",
		Short: "Unconstrained descent on benchmark problems",
		Long: `Minimize smooth benchmark objectives with the BFGS quasi-Newton method
(H or B formula) or the Fletcher-Reeves conjugate gradient method,
under a choice of inexact line searches.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.String("config", "", "YAML configuration file")
	pf.String("log-level", "info", "log level: debug, info, warn or error")

	a.v.SetEnvPrefix("DESCENT")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(a.listCommand(), a.checkCommand(), a.runCommand())
	return root
}

// setup binds the flags of the executing command, reads the optional
// configuration file and prepares the logger.
func (a *app) setup(cmd *cobra.Command) error {
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	if path := a.v.GetString("config"); path != "" {
		a.v.SetConfigFile(path)
		a.v.SetConfigType("yaml")
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	level, err := logrus.ParseLevel(a.v.GetString("log-level"))
	if err != nil {
		return err
	}
	a.log.SetLevel(level)
	a.log.SetOutput(cmd.ErrOrStderr())
	a.log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	return nil
}
