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
	"bytes"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"guardgen.dev/go/guard/errors"
	"guardgen.dev/go/guard/inject"
	"guardgen.dev/go/guard/load"
)

func getLang() language.Tag {
	loc := os.Getenv("LC_ALL")
	if loc == "" {
		loc = os.Getenv("LANG")
	}
	loc, _, _ = strings.Cut(loc, ".")
	return language.Make(loc)
}

// exitOnErr prints err with positions relative to the working directory.
// If fatal is set the command stops.
func exitOnErr(cmd *Command, err error, fatal bool) {
	if err == nil {
		return
	}

	p := message.NewPrinter(getLang())
	format := func(w io.Writer, format string, args ...interface{}) {
		p.Fprintf(w, format, args...)
	}

	cwd, _ := os.Getwd()

	w := &bytes.Buffer{}
	errors.Print(w, err, &errors.Config{
		Format:  format,
		Cwd:     cwd,
		ToSlash: true,
	})

	_, _ = cmd.Stderr().Write(w.Bytes())
	if fatal {
		exit()
	}
}

// A result is the outcome of rewriting one file.
type result struct {
	file *load.File
	out  []byte
	err  error
}

func (r *result) changed() bool {
	return r.err == nil && !bytes.Equal(r.file.Src, r.out)
}

// loadFiles resolves args, failing the command on error.
func loadFiles(cmd *Command, args []string, tests bool) []*load.File {
	files, err := load.Files(&load.Config{
		Context: cmd.Context(),
		Tests:   tests,
		Stdin:   cmd.InOrStdin(),
		Logger:  cmd.logger(),
	}, args)
	exitOnErr(cmd, err, true)
	return files
}

// rewriteFiles rewrites files concurrently. Results are in the order of
// files; a failure in one file does not stop the others.
func rewriteFiles(cmd *Command, files []*load.File) []*result {
	cfg := &inject.Config{Logger: cmd.logger()}
	results := make([]*result, len(files))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, f := range files {
		g.Go(func() error {
			// Absolute names let errors print relative to the working
			// directory.
			name := f.Filename
			if name != load.StdinName {
				if abs, err := filepath.Abs(name); err == nil {
					name = abs
				}
			}
			out, err := cfg.Source(name, f.Src)
			results[i] = &result{file: f, out: out, err: err}
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range results {
		if r.err != nil {
			exitOnErr(cmd, r.err, false)
			continue
		}
		cmd.logger().Debug("processed file",
			zap.String("file", r.file.Filename),
			zap.Bool("changed", r.changed()),
		)
	}
	return results
}
