// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrNoShell is returned when the native runtime cannot locate a shell
// to execute command lines with.
var ErrNoShell = errors.New("no shell found")

// NativeRuntime executes command lines using the system's default shell.
type NativeRuntime struct {
	// Shell overrides the default shell
	Shell string
	// ShellArgs are arguments passed to the shell before the command line
	ShellArgs []string
}

// NewNativeRuntime creates a new native runtime.
func NewNativeRuntime() *NativeRuntime {
	return &NativeRuntime{}
}

// Name returns the runtime name.
func (r *NativeRuntime) Name() string {
	return "native"
}

// Available returns whether this runtime is available.
func (r *NativeRuntime) Available() bool {
	_, err := r.getShell()
	return err == nil
}

// Validate checks if a command can be executed.
func (r *NativeRuntime) Validate(ctx *ExecutionContext) error {
	if strings.TrimSpace(ctx.CommandLine) == "" {
		return fmt.Errorf("no command line to execute")
	}
	return nil
}

// Execute runs a command line using the system shell.
func (r *NativeRuntime) Execute(ctx *ExecutionContext) *Result {
	cmd, err := r.prepare(ctx)
	if err != nil {
		return &Result{ExitCode: 1, Error: err}
	}

	cmd.Stdout = ctx.Stdout
	cmd.Stderr = ctx.Stderr
	cmd.Stdin = ctx.Stdin

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return &Result{ExitCode: exitErr.ExitCode(), Error: nil}
		}
		return &Result{ExitCode: 1, Error: fmt.Errorf("failed to execute command: %w", err)}
	}

	return &Result{ExitCode: 0}
}

// ExecuteCapture runs a command line and captures its output.
func (r *NativeRuntime) ExecuteCapture(ctx *ExecutionContext) *Result {
	cmd, err := r.prepare(ctx)
	if err != nil {
		return &Result{ExitCode: 1, Error: err}
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	result := &Result{
		Output:    stdout.String(),
		ErrOutput: stderr.String(),
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = 1
			result.Error = err
		}
	}

	return result
}

// prepare builds the exec.Cmd for the context's command line.
func (r *NativeRuntime) prepare(ctx *ExecutionContext) (*exec.Cmd, error) {
	shell, err := r.getShell()
	if err != nil {
		return nil, err
	}

	args := append(r.getShellArgs(shell), ctx.CommandLine)
	cmd := exec.CommandContext(ctx.Context, shell, args...)

	if workDir := ctx.getWorkDir(); workDir != "" {
		cmd.Dir = workDir
	}

	env, err := ctx.buildEnv()
	if err != nil {
		return nil, err
	}
	cmd.Env = EnvToSlice(env)

	return cmd, nil
}

// getShell determines which shell to use.
func (r *NativeRuntime) getShell() (string, error) {
	// Use configured shell if set
	if r.Shell != "" {
		return r.Shell, nil
	}

	// Platform-specific defaults
	switch runtime.GOOS {
	case "windows":
		// Try PowerShell first, then cmd
		if pwsh, err := exec.LookPath("pwsh"); err == nil {
			return pwsh, nil
		}
		if ps, err := exec.LookPath("powershell"); err == nil {
			return ps, nil
		}
		if cmd, err := exec.LookPath("cmd"); err == nil {
			return cmd, nil
		}
		return "", ErrNoShell
	default:
		// Unix-like: use SHELL env var, or fall back to common shells
		if shell := os.Getenv("SHELL"); shell != "" {
			return shell, nil
		}
		if bash, err := exec.LookPath("bash"); err == nil {
			return bash, nil
		}
		if sh, err := exec.LookPath("sh"); err == nil {
			return sh, nil
		}
		return "", ErrNoShell
	}
}

// getShellArgs returns the arguments to pass to the shell.
func (r *NativeRuntime) getShellArgs(shell string) []string {
	if len(r.ShellArgs) > 0 {
		return r.ShellArgs
	}

	base := filepath.Base(shell)
	base = strings.TrimSuffix(base, ".exe")

	switch base {
	case "cmd":
		return []string{"/C"}
	case "powershell", "pwsh":
		return []string{"-NoProfile", "-Command"}
	default:
		// Assume POSIX shell
		return []string{"-c"}
	}
}
