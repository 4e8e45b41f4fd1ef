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
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wanze/AppTranslator/internal/decoder"
	"github.com/wanze/AppTranslator/internal/markdown"
)

var decodersCmd = &cobra.Command{
	Use:   "decoders [decoder]",
	Short: "Describe the decoders and their configured settings",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kinds := decoder.Kinds
		if len(args) == 1 {
			k, err := decoder.ParseKind(args[0])
			if err != nil {
				return err
			}
			kinds = []decoder.Kind{k}
		}

		sel := cfg.Selection()
		for i, k := range kinds {
			if i > 0 {
				fmt.Println()
			}
			md, err := decoder.Help(k)
			if err != nil {
				return err
			}
			fmt.Println(markdown.ToPlainText(md))

			settings, err := sel.Config.For(k)
			if err != nil {
				continue
			}
			fmt.Println()
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			for _, f := range settings.Fields() {
				fmt.Fprintf(w, "  %s.%s\t%s\n", k, f.Name, f.Value)
			}
			if err := w.Flush(); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(decodersCmd)
}
