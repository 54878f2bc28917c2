// SPDX-License-Identifier: MPL-2.0

package runtime

import (
	"errors"
	"testing"

	"github.com/denvhq/denv/pkg/denvfile"
)

// TestEnvBuilder_InterfaceContract verifies that DefaultEnvBuilder and MockEnvBuilder
// both satisfy the EnvBuilder interface.
func TestEnvBuilder_InterfaceContract(t *testing.T) {
	t.Parallel()

	var _ EnvBuilder = &DefaultEnvBuilder{}
	var _ EnvBuilder = &MockEnvBuilder{}
}

// TestDefaultEnvBuilder_Precedence verifies the full 5-level precedence chain:
// host < descriptor < workflow < task < extra.
func TestDefaultEnvBuilder_Precedence(t *testing.T) {
	t.Parallel()

	builder := &DefaultEnvBuilder{
		Environ: func() []string {
			return []string{
				"HOST_ONLY=host",
				"SHADOWED=host",
			}
		},
	}

	ctx := &ExecutionContext{
		Descriptor: &denvfile.Denvfile{
			Env: map[denvfile.EnvVarName]string{
				"SHADOWED":   "descriptor",
				"DESCRIPTOR": "descriptor",
				"WF_SHADOW":  "descriptor",
			},
		},
		WorkflowEnv: map[string]string{
			"WF_SHADOW":   "workflow",
			"TASK_SHADOW": "workflow",
		},
		TaskEnv: map[string]string{
			"TASK_SHADOW":  "task",
			"EXTRA_SHADOW": "task",
		},
		ExtraEnv: map[string]string{
			"EXTRA_SHADOW": "extra",
		},
	}

	env, err := builder.Build(ctx)
	if err != nil {
		t.Fatalf("Build() unexpected error: %v", err)
	}

	want := map[string]string{
		"HOST_ONLY":    "host",
		"SHADOWED":     "descriptor",
		"DESCRIPTOR":   "descriptor",
		"WF_SHADOW":    "workflow",
		"TASK_SHADOW":  "task",
		"EXTRA_SHADOW": "extra",
	}
	for key, wantVal := range want {
		if got := env[key]; got != wantVal {
			t.Errorf("env[%q] = %q, want %q", key, got, wantVal)
		}
	}
}

// TestDefaultEnvBuilder_MalformedHostEntries verifies entries without '='
// are skipped instead of corrupting the env map.
func TestDefaultEnvBuilder_MalformedHostEntries(t *testing.T) {
	t.Parallel()

	builder := &DefaultEnvBuilder{
		Environ: func() []string {
			return []string{"GOOD=value", "MALFORMED"}
		},
	}

	env, err := builder.Build(&ExecutionContext{})
	if err != nil {
		t.Fatalf("Build() unexpected error: %v", err)
	}

	if got := env["GOOD"]; got != "value" {
		t.Errorf("env[GOOD] = %q, want %q", got, "value")
	}
	if _, ok := env["MALFORMED"]; ok {
		t.Error("malformed entry should not appear in env map")
	}
}

// TestMockEnvBuilder_ReturnsConfiguredEnv verifies that MockEnvBuilder returns
// the configured environment map.
func TestMockEnvBuilder_ReturnsConfiguredEnv(t *testing.T) {
	t.Parallel()

	mock := &MockEnvBuilder{
		Env: map[string]string{
			"TEST_VAR": "test_value",
			"FOO":      "bar",
		},
	}

	env, err := mock.Build(nil)
	if err != nil {
		t.Fatalf("MockEnvBuilder.Build() unexpected error: %v", err)
	}

	if got := env["TEST_VAR"]; got != "test_value" {
		t.Errorf("TEST_VAR = %q, want %q", got, "test_value")
	}
	if got := env["FOO"]; got != "bar" {
		t.Errorf("FOO = %q, want %q", got, "bar")
	}
}

// TestMockEnvBuilder_ReturnsCopy verifies that MockEnvBuilder returns a copy
// of the environment, not the original map (preventing mutation).
func TestMockEnvBuilder_ReturnsCopy(t *testing.T) {
	t.Parallel()

	original := map[string]string{"KEY": "value"}
	mock := &MockEnvBuilder{Env: original}

	env1, _ := mock.Build(nil)
	env1["KEY"] = "mutated"

	env2, _ := mock.Build(nil)
	if got := env2["KEY"]; got != "value" {
		t.Errorf("MockEnvBuilder.Build() should return a copy; got mutated value %q", got)
	}
}

// TestMockEnvBuilder_ReturnsError verifies that MockEnvBuilder returns
// the configured error.
func TestMockEnvBuilder_ReturnsError(t *testing.T) {
	t.Parallel()

	expectedErr := errors.New("mock error")
	mock := &MockEnvBuilder{
		Err: expectedErr,
		Env: map[string]string{"KEY": "value"},
	}

	env, err := mock.Build(nil)
	if !errors.Is(err, expectedErr) {
		t.Errorf("MockEnvBuilder.Build() error = %v, want %v", err, expectedErr)
	}
	if env != nil {
		t.Errorf("MockEnvBuilder.Build() should return nil env when error is set")
	}
}
