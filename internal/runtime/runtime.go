// SPDX-License-Identifier: MPL-2.0

// Package runtime provides the task execution runtime interface and
// implementations. A runtime turns an opaque shell command line from a
// descriptor task into a running process and reports its exit status.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/denvhq/denv/pkg/denvfile"
)

// ErrRuntimeNotAvailable is wrapped by registry errors when the requested
// runtime is unknown or cannot be used on this system.
var ErrRuntimeNotAvailable = errors.New("runtime not available")

// Runtime type constants for the supported execution environments.
const (
	RuntimeTypeNative  RuntimeType = "native"
	RuntimeTypeVirtual RuntimeType = "virtual"
)

type (
	// ExecutionContext contains all information needed to execute one
	// command line from a descriptor.
	ExecutionContext struct {
		// Context is the Go context for cancellation.
		Context context.Context
		// CommandLine is the shell command line to execute.
		CommandLine string
		// Descriptor is the loaded denvfile; its env block is the lowest
		// descriptor-level layer and its directory the default workdir.
		Descriptor *denvfile.Denvfile
		// WorkflowEnv contains environment variables from the enclosing workflow.
		WorkflowEnv map[string]string
		// TaskEnv contains environment variables from the task itself.
		TaskEnv map[string]string
		// ExtraEnv contains CLI-provided overrides (highest priority).
		ExtraEnv map[string]string
		// WorkDir overrides the working directory.
		WorkDir string
		// Stdout is where to write standard output.
		Stdout io.Writer
		// Stderr is where to write standard error.
		Stderr io.Writer
		// Stdin is where to read standard input.
		Stdin io.Reader
		// EnvBuilder builds the process environment. Nil means DefaultEnvBuilder.
		EnvBuilder EnvBuilder
	}

	// Result contains the result of a command execution.
	Result struct {
		// ExitCode is the exit code of the command.
		ExitCode int
		// Error contains any error that occurred outside the command itself.
		Error error
		// Output contains captured stdout (if captured).
		Output string
		// ErrOutput contains captured stderr (if captured).
		ErrOutput string
	}

	// Runtime defines the interface for command execution.
	Runtime interface {
		// Name returns the runtime name.
		Name() string
		// Execute runs a command line in this runtime.
		Execute(ctx *ExecutionContext) *Result
		// Available returns whether this runtime is available on the current system.
		Available() bool
		// Validate checks if a command can be executed with this runtime.
		Validate(ctx *ExecutionContext) error
	}

	// CapturingRuntime is implemented by runtimes that support capturing output.
	CapturingRuntime interface {
		// ExecuteCapture runs a command and captures stdout/stderr.
		ExecuteCapture(ctx *ExecutionContext) *Result
	}

	// RuntimeType identifies the type of runtime.
	//
	//nolint:revive // RuntimeType is more descriptive than Type for external callers
	RuntimeType string

	// Registry holds all available runtimes.
	Registry struct {
		runtimes map[RuntimeType]Runtime
	}
)

// NewExecutionContext creates an execution context with defaults for the
// given command line and descriptor.
func NewExecutionContext(commandLine string, d *denvfile.Denvfile) *ExecutionContext {
	return &ExecutionContext{
		Context:     context.Background(),
		CommandLine: commandLine,
		Descriptor:  d,
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Stdin:       os.Stdin,
	}
}

// Success returns true if the command executed successfully.
func (r *Result) Success() bool {
	return r.ExitCode == 0 && r.Error == nil
}

// getWorkDir determines the working directory: an explicit override wins,
// otherwise the descriptor's directory is used.
func (ctx *ExecutionContext) getWorkDir() string {
	if ctx.WorkDir != "" {
		return ctx.WorkDir
	}
	if ctx.Descriptor != nil && ctx.Descriptor.FilePath != "" {
		return filepath.Dir(ctx.Descriptor.FilePath)
	}
	return ""
}

// buildEnv resolves the environment map through the configured builder.
func (ctx *ExecutionContext) buildEnv() (map[string]string, error) {
	b := ctx.EnvBuilder
	if b == nil {
		b = NewDefaultEnvBuilder()
	}
	return b.Build(ctx)
}

// NewRegistry creates a new runtime registry.
func NewRegistry() *Registry {
	return &Registry{
		runtimes: make(map[RuntimeType]Runtime),
	}
}

// NewDefaultRegistry creates a registry with the native and virtual
// runtimes registered.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(RuntimeTypeNative, NewNativeRuntime())
	r.Register(RuntimeTypeVirtual, NewVirtualRuntime())
	return r
}

// Register adds a runtime to the registry.
func (r *Registry) Register(typ RuntimeType, rt Runtime) {
	r.runtimes[typ] = rt
}

// Get returns a runtime by type.
func (r *Registry) Get(typ RuntimeType) (Runtime, error) {
	rt, ok := r.runtimes[typ]
	if !ok {
		return nil, fmt.Errorf("runtime '%s' not registered: %w", typ, ErrRuntimeNotAvailable)
	}
	return rt, nil
}

// Available returns all registered runtime types that are usable on this system.
func (r *Registry) Available() []RuntimeType {
	var types []RuntimeType
	for typ, rt := range r.runtimes {
		if rt.Available() {
			types = append(types, typ)
		}
	}
	return types
}

// Execute runs a command line using the requested runtime type.
func (r *Registry) Execute(typ RuntimeType, ctx *ExecutionContext) *Result {
	rt, err := r.Get(typ)
	if err != nil {
		return &Result{ExitCode: 1, Error: err}
	}

	if !rt.Available() {
		return &Result{
			ExitCode: 1,
			Error:    fmt.Errorf("runtime '%s' is not available on this system: %w", rt.Name(), ErrRuntimeNotAvailable),
		}
	}

	if err := rt.Validate(ctx); err != nil {
		return &Result{ExitCode: 1, Error: err}
	}

	return rt.Execute(ctx)
}

// EnvToSlice converts a map of environment variables to a "KEY=VALUE" slice.
func EnvToSlice(env map[string]string) []string {
	result := make([]string, 0, len(env))
	for k, v := range env {
		result = append(result, k+"="+v)
	}
	return result
}
