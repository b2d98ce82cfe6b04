/*
 * main.go, part of molview.
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

// Command molview inspects, converts and plays molecular trajectories.
package main

import (
	"os"

	"github.com/spf13/cobra"

	chem "github.com/rmera/molview"
	"github.com/rmera/molview/format"
	"github.com/rmera/molview/internal/config"
	"github.com/rmera/molview/internal/logging"
)

// app holds the global flags and the configuration they produce.
type app struct {
	configFile string
	envFile    string
	logLevel   string
	logFile    string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "molview",
		Short:         "inspect, convert and play molecular trajectories",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.PersistentFlags().StringVar(&a.configFile, "config", "molview.yaml", "config file path (yaml)")
	root.PersistentFlags().StringVar(&a.envFile, "env", ".env", "environment file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (overrides the config file)")
	root.PersistentFlags().StringVar(&a.logFile, "log-file", "", "log to this file instead of stderr")

	root.AddCommand(
		a.summaryCmd(),
		a.bondsCmd(),
		a.convertCmd(),
		a.rmsdCmd(),
		a.plotCmd(),
		a.playCmd(),
	)
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configFile)
	if err != nil {
		return err
	}
	if err := cfg.LoadEnv(a.envFile); err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if a.logFile != "" {
		cfg.Log.Output = a.logFile
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg
	return logging.Logger().Configure(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.MaxSizeMB)
}

// load reads path, taking the atom data from structure when it is given.
func load(path, structure string) (*chem.Trajectory, error) {
	if structure != "" {
		return format.LoadWithStructure(path, structure)
	}
	return format.Load(path)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logging.Component("cli").WithError(err).Error("command failed")
		os.Exit(1)
	}
}
