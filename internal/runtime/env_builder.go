// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"maps"
	"os"
	"strings"

	"github.com/denvhq/denv/pkg/denvfile"
)

type (
	// EnvBuilder builds environment variables for task execution.
	// It applies a 5-level precedence hierarchy (higher number wins):
	//
	//  1. Host environment
	//  2. Descriptor-level env
	//  3. Workflow-level env
	//  4. Task-level env
	//  5. ExtraEnv (--env-var flag) - HIGHEST priority
	//
	// This interface enables:
	//   - Testability: runtimes can be tested with mock env builders
	//   - Flexibility: alternative env building strategies for specific use cases
	//   - Documentation: the precedence hierarchy is explicitly documented
	EnvBuilder interface {
		Build(ctx *ExecutionContext) (map[string]string, error)
	}

	// DefaultEnvBuilder implements the standard 5-level precedence.
	DefaultEnvBuilder struct {
		// Environ returns the host environment as "KEY=VALUE" strings.
		// When nil, os.Environ() is used.
		Environ func() []string
	}

	// MockEnvBuilder is a test helper that returns a fixed environment map.
	// It can be used to test runtimes in isolation without real env building.
	MockEnvBuilder struct {
		// Env is the environment map to return from Build
		Env map[string]string
		// Err is the error to return from Build (if non-nil)
		Err error
	}
)

// NewDefaultEnvBuilder creates a new DefaultEnvBuilder.
func NewDefaultEnvBuilder() *DefaultEnvBuilder {
	return &DefaultEnvBuilder{}
}

// Build constructs the environment map following the 5-level precedence.
func (b *DefaultEnvBuilder) Build(ctx *ExecutionContext) (map[string]string, error) {
	environ := b.Environ
	if environ == nil {
		environ = os.Environ
	}

	env := make(map[string]string)

	// 1. Host environment
	for _, e := range environ() {
		if idx := strings.IndexByte(e, '='); idx >= 0 {
			env[e[:idx]] = e[idx+1:]
		}
	}

	// 2. Descriptor-level env
	if ctx.Descriptor != nil {
		maps.Copy(env, denvfile.EnvVars(ctx.Descriptor.Env))
	}

	// 3. Workflow-level env
	maps.Copy(env, ctx.WorkflowEnv)

	// 4. Task-level env
	maps.Copy(env, ctx.TaskEnv)

	// 5. CLI --env-var overrides (highest priority)
	maps.Copy(env, ctx.ExtraEnv)

	return env, nil
}

// Build returns the mock environment or error.
func (m *MockEnvBuilder) Build(_ *ExecutionContext) (map[string]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Env == nil {
		return make(map[string]string), nil
	}
	// Return a copy to prevent mutations
	result := make(map[string]string, len(m.Env))
	maps.Copy(result, m.Env)
	return result, nil
}
