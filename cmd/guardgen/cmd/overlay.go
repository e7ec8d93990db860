// Copyright 2026 The guardgen Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"guardgen.dev/go/guard/errors"
	"guardgen.dev/go/guard/load"
	"guardgen.dev/go/internal/guarddebug"
	"guardgen.dev/go/internal/overlay"
)

// defaultOverlayDir is created in the module root of the first package.
const defaultOverlayDir = ".guardgen"

func newOverlayCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "overlay [--dir dir] [--tests] [files|packages]",
		Short: "write rewritten files for go build -overlay",
		Long: `Overlay rewrites the given files or packages like the rewrite command, but
leaves the sources untouched. The rewritten files are stored in the overlay
directory together with an overlay.json file mapping each original file to
its rewritten copy. The path of overlay.json is printed, ready for

	go build -overlay=$(guardgen overlay ./...) ./...

The rewritten copies carry //line directives so that compiler errors and
stack traces point at the original files.

The overlay directory defaults to .guardgen in the root of the module of the
first package, or the current directory outside a module.
`,
		RunE: mkRunE(c, runOverlay),
	}
	cmd.Flags().String(string(flagDir), "", "directory for the overlay file and rewritten copies")
	addTestsFlag(cmd.Flags())
	return cmd
}

func runOverlay(cmd *Command, args []string) error {
	files := loadFiles(cmd, args, flagTests.Bool(cmd))
	w := &overlay.Writer{
		Dir:    overlayDir(cmd, files),
		Keep:   guarddebug.Flags.Keep,
		Logger: cmd.logger(),
	}
	exitOnErr(cmd, w.Ensure(), true)

	results := rewriteFiles(cmd, files)
	n := 0
	for _, r := range results {
		if !r.changed() {
			continue
		}
		if r.file.Filename == load.StdinName {
			exitOnErr(cmd, errors.New("cannot add standard input to an overlay"), false)
			continue
		}
		if _, err := w.Write(r.file.Filename, r.file.Src, r.out); err != nil {
			exitOnErr(cmd, errors.Promote(err, "cannot write overlay"), false)
			continue
		}
		n++
	}
	cmd.logger().Info("wrote overlay", zap.String("path", w.Path()), zap.Int("files", n))
	fmt.Fprintln(cmd.OutOrStdout(), w.Path())
	return nil
}

func overlayDir(cmd *Command, files []*load.File) string {
	if dir := flagDir.String(cmd); dir != "" {
		abs, err := filepath.Abs(dir)
		exitOnErr(cmd, err, true)
		return abs
	}
	for _, f := range files {
		if f.ModuleDir != "" {
			return filepath.Join(f.ModuleDir, defaultOverlayDir)
		}
	}
	cwd, err := os.Getwd()
	exitOnErr(cmd, err, true)
	return filepath.Join(cwd, defaultOverlayDir)
}
