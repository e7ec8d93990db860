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

// Package interp runs rewritten Go programs with the yaegi interpreter.
package interp

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"
)

// Options configures a run. Nil streams default to the process's own.
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Args are the program arguments, not including the program name.
	Args []string

	// Env is the program environment. Nil means os.Environ.
	Env []string
}

// Run interprets src, the source of a package main file, and runs its main
// function. The standard library and the guard package are available to
// the program. A panic in the program is returned as an error.
func Run(ctx context.Context, opts Options, filename string, src []byte) error {
	env := opts.Env
	if env == nil {
		env = os.Environ()
	}
	i := interp.New(interp.Options{
		Stdin:  opts.Stdin,
		Stdout: opts.Stdout,
		Stderr: opts.Stderr,
		Args:   append([]string{filename}, opts.Args...),
		Env:    env,
	})
	if err := i.Use(stdlib.Symbols); err != nil {
		return fmt.Errorf("cannot load standard library: %w", err)
	}
	if err := i.Use(Symbols); err != nil {
		return fmt.Errorf("cannot load guard package: %w", err)
	}

	// The main function of package main runs as part of the evaluation.
	_, err := i.EvalWithContext(ctx, string(src))
	if p, ok := err.(interp.Panic); ok {
		return fmt.Errorf("%s: panic: %v", filename, p.Value)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}
	return nil
}
