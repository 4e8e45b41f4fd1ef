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
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wanze/AppTranslator/internal/analysis"
)

// barWidth is the width of the longest bar in characters.
const barWidth = 40

var (
	topLang   string
	varSource string
	varTarget string
)

var termsCmd = &cobra.Command{
	Use:   "terms",
	Short: "Inspect term statistics of the translation corpus",
}

var termsTopCmd = &cobra.Command{
	Use:   "top",
	Short: "Show the most frequent terms of a language",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		view := analysis.New(newClient(), logger)
		if err := view.LoadTopTerms(ctx, topLang); err != nil {
			return fmt.Errorf("failed to load top terms: %w", err)
		}

		chart := view.State().Chart
		if len(chart.Bars) == 0 {
			fmt.Println("No terms found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TERM\tCOUNT\t")
		for _, b := range chart.Bars {
			fmt.Fprintf(w, "%s\t%d\t%s\n", b.Label, b.Count, strings.Repeat("█", b.Percent*barWidth/100))
		}
		return w.Flush()
	},
}

var termsVariationsCmd = &cobra.Command{
	Use:   "variations <term>",
	Short: "Show how a term was translated in the corpus",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		view := analysis.New(newClient(), logger)
		q := analysis.VariationQuery{
			Source: varSource,
			Target: varTarget,
			Term:   strings.Join(args, " "),
		}
		if err := view.LoadVariations(ctx, q); err != nil {
			return fmt.Errorf("failed to load term variations: %w", err)
		}

		variations := view.State().Variations
		if len(variations) == 0 {
			fmt.Println("No variations found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TRANSLATION\tCOUNT")
		for _, v := range variations {
			fmt.Fprintf(w, "%s\t%d\n", v.Term, v.Count)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(termsCmd)

	termsTopCmd.Flags().StringVarP(&topLang, "lang", "l", "en", "Language of the corpus")
	termsVariationsCmd.Flags().StringVarP(&varSource, "source", "s", "en", "Language of the term")
	termsVariationsCmd.Flags().StringVarP(&varTarget, "target", "t", "fr", "Language of the translations")

	termsCmd.AddCommand(termsTopCmd)
	termsCmd.AddCommand(termsVariationsCmd)
}
