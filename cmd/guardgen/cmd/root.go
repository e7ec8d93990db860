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

// Package cmd implements the guardgen command line tool.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"guardgen.dev/go/internal/guarddebug"
)

type runFunction func(cmd *Command, args []string) error

func mkRunE(c *Command, f runFunction) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c.Command = cmd
		return f(c, args)
	}
}

func newRootCmd() *Command {
	cmd := &cobra.Command{
		Use:   "guardgen",
		Short: "guardgen inserts validation guards into Go functions.",
		Long: `guardgen rewrites Go functions annotated with a //guard:validate
directive. For every listed parameter it inserts a call to the parameter's
Validate method at the start of the function body, returning early with the
error when validation fails.

	//guard:validate amount, account
	func Transfer(amount Amount, account ID) (Receipt, error) {
		...
	}

The rewritten source can be printed, written in place, placed in an
overlay for "go build -overlay", or interpreted directly.`,

		SilenceUsage: true,
	}

	c := &Command{Command: cmd, root: cmd}
	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		c.Command = cmd
		return c.initLogger()
	}
	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		_ = c.logger().Sync()
	}

	addGlobalFlags(cmd.PersistentFlags())

	for _, sub := range []*cobra.Command{
		newRewriteCmd(c),
		newOverlayCmd(c),
		newRunCmd(c),
		newVersionCmd(c),
	} {
		cmd.AddCommand(sub)
	}
	return c
}

// Main runs the guardgen tool and returns the code for passing to os.Exit.
func Main() int {
	err := mainErr(context.Background(), os.Args[1:])
	if err != nil {
		if err != ErrPrintedError {
			fmt.Fprintln(os.Stderr, err)
		}
		return 1
	}
	return 0
}

func mainErr(ctx context.Context, args []string) error {
	cmd := New(args)
	return cmd.Run(ctx)
}

type Command struct {
	// The currently active command.
	*cobra.Command

	root *cobra.Command
	log  *zap.Logger

	hasErr bool
}

// New creates the root command with the given arguments.
func New(args []string) *Command {
	c := newRootCmd()
	c.root.SetArgs(args)
	return c
}

type errWriter Command

func (w *errWriter) Write(b []byte) (int, error) {
	c := (*Command)(w)
	c.hasErr = true
	return c.Command.OutOrStderr().Write(b)
}

// Stderr returns a writer for error messages. Anything written to it
// makes the command exit with a non-zero status.
func (c *Command) Stderr() io.Writer {
	return (*errWriter)(c)
}

func (c *Command) SetOutput(w io.Writer) {
	c.root.SetOut(w)
	c.root.SetErr(w)
}

func (c *Command) SetInput(r io.Reader) {
	c.root.SetIn(r)
}

// ErrPrintedError indicates error messages have been printed to stderr.
var ErrPrintedError = errors.New("terminating because of errors")

func (c *Command) Run(ctx context.Context) (err error) {
	defer recoverError(&err)

	if err := c.root.ExecuteContext(ctx); err != nil {
		return err
	}
	if c.hasErr {
		return ErrPrintedError
	}
	return nil
}

func (c *Command) logger() *zap.Logger {
	if c.log == nil {
		return zap.NewNop()
	}
	return c.log
}

// initLogger builds the logger from -v and GUARDGEN_DEBUG. Log lines go to
// the command's error stream without marking the command as failed.
func (c *Command) initLogger() error {
	if err := guarddebug.Init(); err != nil {
		return err
	}
	level := guarddebug.Flags.Log
	if flagVerbose.Bool(c) {
		level = zapcore.DebugLevel
	}
	var enc zapcore.Encoder
	if guarddebug.Flags.JSON {
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.TimeKey = ""
		enc = zapcore.NewConsoleEncoder(cfg)
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(c.OutOrStderr()), level)
	c.log = zap.New(core).Named("guardgen")
	return nil
}

type panicError struct {
	Err error
}

func recoverError(err *error) {
	switch e := recover().(type) {
	case nil:
	case panicError:
		*err = e.Err
	default:
		panic(e)
	}
}

func exit() {
	panic(panicError{ErrPrintedError})
}
