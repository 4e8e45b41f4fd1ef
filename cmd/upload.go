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
	"context"
	"fmt"
	"io"
	"os"

	"github.com/schollz/progressbar/v2"
	"github.com/spf13/cobra"

	"github.com/wanze/AppTranslator/internal/app"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload an XML file to the translation service",
	Long: `Upload an Android XML string resource file. The printed server-side name
can be passed to "translate --xml".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		bar := newUploadBar(os.Stderr)
		session := app.New(newClient(), app.WithLogger(logger), app.WithProgress(bar.Set))

		name, err := uploadFile(ctx, session, args[0], bar)
		if err != nil {
			return err
		}
		fmt.Println(name)
		return nil
	},
}

// uploadBar shows upload progress as a percentage bar.
type uploadBar struct {
	bar *progressbar.ProgressBar
}

func newUploadBar(w io.Writer) *uploadBar {
	return &uploadBar{
		bar: progressbar.NewOptions(100,
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription("Uploading"),
		),
	}
}

func (b *uploadBar) Set(percent int) {
	b.bar.Set(percent)
}

func (b *uploadBar) Finish() {
	b.bar.Finish()
	fmt.Fprintln(os.Stderr)
}

// uploadFile streams path to the service and returns the server-side name.
func uploadFile(ctx context.Context, session *app.Controller, path string, bar *uploadBar) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat file: %w", err)
	}

	err = session.Upload(ctx, path, f, info.Size())
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}
	return session.State().Uploaded, nil
}

func init() {
	rootCmd.AddCommand(uploadCmd)
}
