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
	"go/token"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"guardgen.dev/go/guard/errors"
	"guardgen.dev/go/internal/interp"
)

func newRunCmd(c *Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run file.go [arguments...]",
		Short: "rewrite and interpret a Go program",
		Long: `Run rewrites a single-file main package and interprets it. The remaining
arguments are passed to the program. The program may import the standard
library and guardgen.dev/go/guard.

An interrupt stops the program.
`,
		Args: cobra.MinimumNArgs(1),
		RunE: mkRunE(c, runRun),
	}
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func runRun(cmd *Command, args []string) error {
	name := args[0]
	if name != "-" && !strings.HasSuffix(name, ".go") {
		exitOnErr(cmd, errors.Newf(token.Position{}, "run: %s is not a Go file", name), true)
	}
	files := loadFiles(cmd, args[:1], false)
	results := rewriteFiles(cmd, files)
	r := results[0]
	if r.err != nil {
		exit()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	err := interp.Run(ctx, interp.Options{
		Stdin:  cmd.InOrStdin(),
		Stdout: cmd.OutOrStdout(),
		Stderr: cmd.OutOrStderr(),
		Args:   args[1:],
		Env:    os.Environ(),
	}, displayName(r.file.Filename), r.out)
	exitOnErr(cmd, err, true)
	return nil
}
