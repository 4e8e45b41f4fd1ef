/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

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
package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wanze/AppTranslator/internal/config"
)

var version = "0.3.0"

var (
	cfgFile string
	cfg     config.Config
	logger  *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "apptranslator",
	Short: "Front-end for the machine translation demo service",
	Long: `A front-end for a machine translation demo service. It sends strings or
Android XML string resources to one of several decoders (Moses, Solr,
Lamtram, TensorFlow) or to all of them for comparison, and shows the
results as a table.

Run "apptranslator serve" for the web interface, or use the translate,
upload and terms commands directly from the terminal.`,
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		cfg = c
		logger = newLogger(cfg.Log.Level)
		return nil
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default "+config.DefaultPath()+")")
	rootCmd.PersistentFlags().String("server-url", "", "Base URL of the translation service")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Timeout for each call to the translation service (0 = none)")
}
