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

// Package load turns command-line arguments into Go source files to
// rewrite.
//
// An argument ending in ".go" names a file. The argument "-" stands for
// standard input. Any other argument is a package pattern as understood by
// the go command.
package load

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/go/packages"

	"guardgen.dev/go/guard/errors"
)

// StdinName is the filename used for source read from standard input.
const StdinName = "<stdin>"

// A Config configures loading. The zero value loads from the current
// directory without test files.
type Config struct {
	// Context bounds package loading and file reads. It defaults to
	// context.Background.
	Context context.Context

	// Dir is the directory in which to resolve relative file names and run
	// the go command. The empty string means the current directory.
	Dir string

	// Tests includes the test files of matched packages.
	Tests bool

	// Stdin is read for the argument "-". It defaults to os.Stdin.
	Stdin io.Reader

	// Env is the environment for the go command. Nil means os.Environ.
	Env []string

	Logger *zap.Logger
}

// A File is one Go source file to rewrite.
type File struct {
	Filename string
	Src      []byte

	// Package is the import path of the file's package, or "" if the file
	// was named directly.
	Package string

	// ModuleDir is the root directory of the file's module, or "" if
	// unknown.
	ModuleDir string
}

// Files resolves args to files and reads them. Files are returned in
// argument order; within a package they are in the order reported by the
// go command. A file matched more than once is returned once. No
// arguments means ".".
func Files(cfg *Config, args []string) ([]*File, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if len(args) == 0 {
		args = []string{"."}
	}

	// Resolve each argument into its own slot so that the output order
	// does not depend on scheduling.
	slots := make([][]*File, len(args))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, arg := range args {
		switch {
		case arg == "-":
			src, err := io.ReadAll(stdin(cfg))
			if err != nil {
				return nil, errors.Promote(err, "cannot read standard input")
			}
			slots[i] = []*File{{Filename: StdinName, Src: src}}

		case strings.HasSuffix(arg, ".go"):
			slots[i] = []*File{{Filename: cfg.path(arg)}}

		default:
			g.Go(func() error {
				files, err := loadPattern(gctx, cfg, arg)
				if err != nil {
					return err
				}
				log.Debug("loaded pattern", zap.String("pattern", arg), zap.Int("files", len(files)))
				slots[i] = files
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var files []*File
	seen := map[string]bool{}
	for _, slot := range slots {
		for _, f := range slot {
			if f.Filename != StdinName {
				if seen[f.Filename] {
					continue
				}
				seen[f.Filename] = true
			}
			files = append(files, f)
		}
	}

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, f := range files {
		if f.Src != nil {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			src, err := os.ReadFile(f.Filename)
			if err != nil {
				return errors.Promote(err, "cannot read file")
			}
			f.Src = src
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

func stdin(cfg *Config) io.Reader {
	if cfg.Stdin != nil {
		return cfg.Stdin
	}
	return os.Stdin
}

func (cfg *Config) path(name string) string {
	if cfg.Dir == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(cfg.Dir, name)
}

func loadPattern(ctx context.Context, cfg *Config, pattern string) ([]*File, error) {
	pcfg := &packages.Config{
		Context: ctx,
		Mode:    packages.NeedName | packages.NeedFiles | packages.NeedModule,
		Dir:     cfg.Dir,
		Env:     cfg.Env,
		Tests:   cfg.Tests,
	}
	pkgs, err := packages.Load(pcfg, pattern)
	if err != nil {
		return nil, errors.Promote(err, fmt.Sprintf("cannot load %s", pattern))
	}

	var errs errors.Error
	var files []*File
	for _, pkg := range pkgs {
		// The synthesized test main package.
		if strings.HasSuffix(pkg.ID, ".test") {
			continue
		}
		for _, e := range pkg.Errors {
			if e.Kind == packages.ListError {
				errs = errors.Append(errs, errors.Promote(e, ""))
			}
		}
		moduleDir := ""
		if pkg.Module != nil {
			moduleDir = pkg.Module.Dir
		}
		for _, name := range pkg.GoFiles {
			files = append(files, &File{
				Filename:  name,
				Package:   pkg.PkgPath,
				ModuleDir: moduleDir,
			})
		}
	}
	if errs != nil {
		return nil, errors.Sanitize(errs)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("pattern %s matched no Go files", pattern)
	}
	return files, nil
}
