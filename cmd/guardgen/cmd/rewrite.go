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

	"github.com/rogpeppe/go-internal/diff"
	"github.com/spf13/cobra"
	"golang.org/x/tools/txtar"

	"guardgen.dev/go/guard/errors"
	"guardgen.dev/go/guard/load"
)

func newRewriteCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rewrite [-w] [-l] [-d] [--tests] [files|packages]",
		Short: "insert validation guards into Go source",
		Long: `Rewrite inserts validation guards into the functions of the given files
or packages that carry a //guard:validate directive.

Arguments ending in .go name files, "-" reads standard input, and any other
argument is a package pattern as understood by the go command. Without
arguments the package in the current directory is used.

By default the rewritten source is printed. With a single input file it is
printed as is; otherwise the changed files are printed as a txtar archive
with one section per file.
`,
		RunE: mkRunE(c, runRewrite),
	}
	cmd.Flags().BoolP(string(flagWrite), "w", false, "write the result to the source files instead of standard output")
	cmd.Flags().BoolP(string(flagList), "l", false, "list the files whose source would change")
	cmd.Flags().BoolP(string(flagDiff), "d", false, "print diffs instead of rewritten files")
	addTestsFlag(cmd.Flags())
	return cmd
}

func runRewrite(cmd *Command, args []string) error {
	write := flagWrite.Bool(cmd)
	list := flagList.Bool(cmd)
	showDiff := flagDiff.Bool(cmd)

	files := loadFiles(cmd, args, flagTests.Bool(cmd))
	results := rewriteFiles(cmd, files)

	stdout := cmd.OutOrStdout()
	var archive txtar.Archive
	for _, r := range results {
		if r.err != nil {
			continue
		}
		name := displayName(r.file.Filename)
		switch {
		case list || write || showDiff:
			if !r.changed() {
				continue
			}
			if list {
				fmt.Fprintln(stdout, name)
			}
			if showDiff {
				stdout.Write(diff.Diff(name+".orig", r.file.Src, name, r.out))
			}
			if write {
				exitOnErr(cmd, writeFile(r.file, r.out), false)
			}
		case len(results) == 1:
			stdout.Write(r.out)
		case r.changed():
			archive.Files = append(archive.Files, txtar.File{Name: name, Data: r.out})
		}
	}
	if len(archive.Files) > 0 {
		stdout.Write(txtar.Format(&archive))
	}
	return nil
}

func writeFile(f *load.File, src []byte) error {
	if f.Filename == load.StdinName {
		return errors.New("cannot write result for standard input")
	}
	info, err := os.Stat(f.Filename)
	if err != nil {
		return errors.Promote(err, "cannot write file")
	}
	if err := os.WriteFile(f.Filename, src, info.Mode().Perm()); err != nil {
		return errors.Promote(err, "cannot write file")
	}
	return nil
}

// displayName returns filename relative to the working directory when it
// lies below it.
func displayName(filename string) string {
	if !filepath.IsAbs(filename) {
		return filepath.ToSlash(filename)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return filename
	}
	rel, err := filepath.Rel(cwd, filename)
	if err != nil || !filepath.IsLocal(rel) {
		return filename
	}
	return filepath.ToSlash(rel)
}
