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
	"errors"
	"fmt"
	"html"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wanze/AppTranslator/internal/app"
	"github.com/wanze/AppTranslator/internal/decoder"
	"github.com/wanze/AppTranslator/internal/detector"
	"github.com/wanze/AppTranslator/internal/input"
	"github.com/wanze/AppTranslator/internal/translation"
	"github.com/wanze/AppTranslator/internal/validator"
)

var (
	inputFile   string
	sourceLang  string
	targetLang  string
	decoderName string
	settings    map[string]string
	xmlFile     string
	uploadPath  string
	showDebug   bool
	checkLang   bool
)

var translateCmd = &cobra.Command{
	Use:   "translate [strings...]",
	Short: "Translate strings or an XML file",
	Long: `Translate strings or an Android XML string resource file with one of the
decoders, or with all of them for comparison.

Input is taken from, in order of precedence:
  --upload      a local XML file, uploaded first
  --xml         a file name returned by an earlier upload
  --input       a text file, one string per line
  arguments     one string per argument

Available decoders: moses, solr, lamtram, tensorflow, compare

Decoder settings are given as <decoder>.<field>=<value>:
  --set moses.stack=50 --set solr.rows=10

Use --source auto to detect the source language of strings, and --check
to warn about output that does not look like the target language.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		langs, err := cfg.Languages()
		if err != nil {
			return err
		}
		if sourceLang != "" {
			langs.Source = sourceLang
		}
		if targetLang != "" {
			langs.Target = targetLang
		}

		opts := []app.Option{
			app.WithLogger(logger),
			app.WithSelection(cfg.Selection()),
		}
		var det *detector.Detector
		if langs.Source == translation.AutoDetect || checkLang {
			det = detector.New()
			opts = append(opts, app.WithDetector(det))
		}
		var bar *uploadBar
		if uploadPath != "" {
			bar = newUploadBar(os.Stderr)
			opts = append(opts, app.WithProgress(bar.Set))
		}
		session := app.New(newClient(), opts...)

		if err := session.SetLanguages(langs); err != nil {
			return err
		}
		if decoderName != "" {
			if err := session.SelectDecoder(decoder.Kind(decoderName)); err != nil {
				return err
			}
		}
		if len(settings) > 0 {
			if err := session.ApplySettings(settings); err != nil {
				return err
			}
		}

		switch {
		case uploadPath != "":
			name, err := uploadFile(ctx, session, uploadPath, bar)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Uploaded %s as %s\n", uploadPath, name)
		case xmlFile != "":
			if err := session.UseUploaded(xmlFile); err != nil {
				return err
			}
		default:
			lines, err := readLines(inputFile, args)
			if err != nil {
				return err
			}
			session.SetStrings(lines)
		}

		if err := session.Submit(ctx); err != nil {
			return fmt.Errorf("translation failed: %w", err)
		}

		st := session.State()
		if err := printTable(os.Stdout, st.Table); err != nil {
			return err
		}
		if showDebug && st.Debug != "" {
			fmt.Fprintln(os.Stderr, html.UnescapeString(string(st.Debug)))
		}
		if checkLang {
			for _, m := range validator.New(det).CheckTable(st.Table, st.Langs.Target) {
				logger.WithFields(logrus.Fields{
					"row":      m.Row + 1,
					"column":   m.Column,
					"detected": m.Detected,
					"target":   st.Langs.Target,
				}).Warn("Output not in target language")
			}
		}
		return nil
	},
}

// readLines collects strings from a file and from arguments.
func readLines(path string, args []string) ([]string, error) {
	var lines []string
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read input file: %w", err)
		}
		lines = input.Lines(string(data))
	}
	lines = append(lines, input.Collect(args)...)
	if len(lines) == 0 {
		return nil, errors.New("nothing to translate: give strings as arguments or use --input")
	}
	return lines, nil
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVarP(&inputFile, "input", "i", "", "Text file with one string per line")
	translateCmd.Flags().StringVarP(&sourceLang, "source", "s", "", "Source language code, or auto (default from config)")
	translateCmd.Flags().StringVarP(&targetLang, "target", "t", "", "Target language code (default from config)")
	translateCmd.Flags().StringVarP(&decoderName, "decoder", "d", "", "Decoder to use (default from config)")
	translateCmd.Flags().StringToStringVar(&settings, "set", nil, "Decoder setting as <decoder>.<field>=<value>")
	translateCmd.Flags().StringVar(&xmlFile, "xml", "", "Server-side name of a previously uploaded XML file")
	translateCmd.Flags().StringVarP(&uploadPath, "upload", "u", "", "Local XML file to upload and translate")
	translateCmd.Flags().BoolVar(&showDebug, "debug", false, "Print the decoder debug output to stderr")
	translateCmd.Flags().BoolVar(&checkLang, "check", false, "Warn about output rows not detected as the target language")

	translateCmd.MarkFlagsMutuallyExclusive("upload", "xml", "input")
}
