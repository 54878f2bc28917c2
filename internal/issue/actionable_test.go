// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ActionableError
		want string
	}{
		{
			name: "operation only",
			err:  &ActionableError{Operation: "load denvfile"},
			want: "failed to load denvfile",
		},
		{
			name: "operation and resource",
			err:  &ActionableError{Operation: "load denvfile", Resource: "./denvfile.toml"},
			want: "failed to load denvfile: ./denvfile.toml",
		},
		{
			name: "operation, resource and cause",
			err: &ActionableError{
				Operation: "load denvfile",
				Resource:  "./denvfile.toml",
				Cause:     errors.New("no such file"),
			},
			want: "failed to load denvfile: ./denvfile.toml: no such file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestActionableError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &ActionableError{Operation: "run workflow", Cause: cause}

	if !errors.Is(err, cause) {
		t.Error("errors.Is() should find the wrapped cause")
	}
}

func TestActionableError_Format(t *testing.T) {
	err := &ActionableError{
		Operation:   "run workflow",
		Resource:    "Run Server",
		Suggestions: []string{"Check the workflow name", "Run 'denv workflows'"},
		Cause:       fmt.Errorf("outer: %w", errors.New("inner")),
	}

	concise := err.Format(false)
	if !strings.Contains(concise, "• Check the workflow name") {
		t.Errorf("Format(false) missing suggestion bullet:\n%s", concise)
	}
	if strings.Contains(concise, "Error chain") {
		t.Error("Format(false) should not include the error chain")
	}

	verbose := err.Format(true)
	if !strings.Contains(verbose, "Error chain:") {
		t.Errorf("Format(true) missing error chain:\n%s", verbose)
	}
	if !strings.Contains(verbose, "2. inner") {
		t.Errorf("Format(true) should unwrap the full chain:\n%s", verbose)
	}
}

func TestErrorContext_Builder(t *testing.T) {
	cause := errors.New("boom")

	err := NewErrorContext().
		WithOperation("deploy").
		WithResource("denvfile.toml").
		WithSuggestion("Add a [deployment] table").
		WithSuggestions("Check the target", "Check the run commands").
		Wrap(cause).
		Build()

	if err == nil {
		t.Fatal("Build() returned nil with operation set")
	}
	if err.Operation != "deploy" {
		t.Errorf("Operation = %q, want %q", err.Operation, "deploy")
	}
	if err.Resource != "denvfile.toml" {
		t.Errorf("Resource = %q, want %q", err.Resource, "denvfile.toml")
	}
	if len(err.Suggestions) != 3 {
		t.Errorf("Suggestions count = %d, want 3", len(err.Suggestions))
	}
	if !errors.Is(err, cause) {
		t.Error("built error should wrap the cause")
	}
}

func TestErrorContext_BuildWithoutOperation(t *testing.T) {
	if got := NewErrorContext().WithResource("x").Build(); got != nil {
		t.Errorf("Build() without operation = %v, want nil", got)
	}
	if got := NewErrorContext().BuildError(); got != nil {
		t.Errorf("BuildError() without operation = %v, want nil", got)
	}
}

func TestWrapHelpers(t *testing.T) {
	if got := WrapWithOperation(nil, "noop"); got != nil {
		t.Errorf("WrapWithOperation(nil) = %v, want nil", got)
	}
	if got := WrapWithContext(nil, "noop", "res"); got != nil {
		t.Errorf("WrapWithContext(nil) = %v, want nil", got)
	}

	cause := errors.New("boom")
	wrapped := WrapWithContext(cause, "parse denvfile", "denvfile.toml")
	if wrapped == nil {
		t.Fatal("WrapWithContext() returned nil for non-nil error")
	}
	if wrapped.Resource != "denvfile.toml" {
		t.Errorf("Resource = %q, want %q", wrapped.Resource, "denvfile.toml")
	}
}
