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
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wanze/AppTranslator/internal/analysis"
	"github.com/wanze/AppTranslator/internal/app"
	"github.com/wanze/AppTranslator/internal/detector"
	"github.com/wanze/AppTranslator/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web interface",
	Long: `Serve the decoding wizard and the analysis view over HTTP. The server
keeps one decoding session shared by every browser.

Routes:
  /decode      input, decoder settings and results
  /analysis    top terms and term variations
  /health      liveness check
  /metrics     Prometheus metrics`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		langs, err := cfg.Languages()
		if err != nil {
			return err
		}

		c := newClient()
		session := app.New(c,
			app.WithLogger(logger),
			app.WithSelection(cfg.Selection()),
			app.WithLanguages(langs),
			app.WithDetector(detector.New()),
		)

		srv, err := web.New(session, analysis.New(c, logger), logger)
		if err != nil {
			return err
		}

		logger.WithFields(logrus.Fields{
			"addr":       cfg.Web.Addr,
			"server_url": cfg.Server.URL,
			"decoder":    cfg.Decoder.Kind,
		}).Info("Starting AppTranslator")

		return srv.ListenAndServe(ctx, cfg.Web.Addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (default :8080)")
}
