/*
Copyright © 2025 Your Name

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package handlers

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"chefpress/internal/config"
	"chefpress/internal/logger"
)

// app carries what the root command resolves for its subcommands.
type app struct {
	cfgFile   string
	logLevel  string
	logFormat string

	config *config.Config
}

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "chefpress",
		Short: "chefpress generates recipe articles with Gemini and publishes them to Blogger.",
		Long: `chefpress asks Gemini for an original recipe, checks it against minimum
content thresholds, enriches its SEO metadata and publishes it to a Blogger
blog. Every publish is recorded in a JSON tracking file.

Run a single cycle with "once", keep publishing on a schedule with "run",
and inspect what has been published with "report".`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ./.chefpress.yaml or $HOME/.chefpress.yaml)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log format: console or json")

	rootCmd.AddCommand(newOnceCmd(a))
	rootCmd.AddCommand(newRunCmd(a))
	rootCmd.AddCommand(newReportCmd(a))
	rootCmd.AddCommand(newAuthCmd(a))

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// load reads the configuration and sets up logging.
func (a *app) load() error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}
	if a.logLevel != "" {
		cfg.App.LogLevel = a.logLevel
	}
	if a.logFormat != "" {
		cfg.App.LogFormat = a.logFormat
	}

	logger.Configure(logger.Options{Level: cfg.App.LogLevel, Format: cfg.App.LogFormat})
	if cfg.App.ConfigFile != "" {
		logger.Debug("Using config file", "path", cfg.App.ConfigFile)
	}

	a.config = cfg
	return nil
}
