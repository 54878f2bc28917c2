// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// VirtualRuntime executes command lines using the built-in mvdan/sh
// POSIX interpreter. It requires no system shell and is therefore always
// available, which also makes it the runtime of choice for tests.
type VirtualRuntime struct{}

// NewVirtualRuntime creates a new virtual runtime.
func NewVirtualRuntime() *VirtualRuntime {
	return &VirtualRuntime{}
}

// Name returns the runtime name.
func (r *VirtualRuntime) Name() string {
	return "virtual"
}

// Available returns whether this runtime is available.
func (r *VirtualRuntime) Available() bool {
	// Virtual runtime is always available as it's built-in
	return true
}

// Validate checks if a command can be executed.
func (r *VirtualRuntime) Validate(ctx *ExecutionContext) error {
	if strings.TrimSpace(ctx.CommandLine) == "" {
		return fmt.Errorf("no command line to execute")
	}

	// Try to parse the command line to validate syntax
	_, err := syntax.NewParser().Parse(strings.NewReader(ctx.CommandLine), "task")
	if err != nil {
		return fmt.Errorf("command syntax error: %w", err)
	}

	return nil
}

// Execute runs a command line using the virtual shell.
func (r *VirtualRuntime) Execute(ctx *ExecutionContext) *Result {
	return r.run(ctx, ctx.Stdout, ctx.Stderr, nil)
}

// ExecuteCapture runs a command line and captures its output.
func (r *VirtualRuntime) ExecuteCapture(ctx *ExecutionContext) *Result {
	var stdout, stderr bytes.Buffer
	result := r.run(ctx, &stdout, &stderr, nil)
	result.Output = stdout.String()
	result.ErrOutput = stderr.String()
	return result
}

// run parses the command line and executes it through the interpreter.
func (r *VirtualRuntime) run(ctx *ExecutionContext, stdout, stderr io.Writer, extraOpts []interp.RunnerOption) *Result {
	parser := syntax.NewParser()
	prog, err := parser.Parse(strings.NewReader(ctx.CommandLine), "task")
	if err != nil {
		return &Result{ExitCode: 1, Error: fmt.Errorf("failed to parse command: %w", err)}
	}

	env, err := ctx.buildEnv()
	if err != nil {
		return &Result{ExitCode: 1, Error: fmt.Errorf("failed to build environment: %w", err)}
	}

	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(EnvToSlice(env)...)),
		interp.StdIO(ctx.Stdin, stdout, stderr),
	}
	if workDir := ctx.getWorkDir(); workDir != "" {
		opts = append(opts, interp.Dir(workDir))
	}
	opts = append(opts, extraOpts...)

	runner, err := interp.New(opts...)
	if err != nil {
		return &Result{ExitCode: 1, Error: fmt.Errorf("failed to create interpreter: %w", err)}
	}

	execCtx := ctx.Context
	if execCtx == nil {
		execCtx = context.Background()
	}

	if err := runner.Run(execCtx, prog); err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return &Result{ExitCode: int(exitStatus)}
		}
		return &Result{ExitCode: 1, Error: fmt.Errorf("command execution failed: %w", err)}
	}

	return &Result{ExitCode: 0}
}
