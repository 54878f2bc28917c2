// SPDX-License-Identifier: MPL-2.0

package denvfile

import (
	"errors"
	"fmt"
	"strings"
)

// Execution modes for workflows.
const (
	// ModeSequential runs tasks one after another, stopping at the first failure.
	ModeSequential ExecutionMode = "sequential"
	// ModeParallel launches all tasks concurrently.
	ModeParallel ExecutionMode = "parallel"
)

var (
	// ErrInvalidWorkflowName is the sentinel error wrapped by InvalidWorkflowNameError.
	ErrInvalidWorkflowName = errors.New("invalid workflow name")

	// ErrInvalidExecutionMode is the sentinel error wrapped by InvalidExecutionModeError.
	ErrInvalidExecutionMode = errors.New("invalid execution mode")
)

type (
	// WorkflowName is the unique identifier of a workflow within a
	// descriptor. Names may contain spaces (e.g. "Quiz App").
	WorkflowName string

	// InvalidWorkflowNameError is returned when a workflow name is empty
	// or whitespace-only.
	InvalidWorkflowNameError struct {
		Value WorkflowName
	}

	// ExecutionMode declares whether a workflow's tasks run sequentially
	// or concurrently. It is a scheduling directive for the runner.
	ExecutionMode string

	// InvalidExecutionModeError is returned when a workflow declares a
	// mode outside the sequential/parallel set.
	InvalidExecutionModeError struct {
		Value ExecutionMode
	}

	// Workflow is a named, ordered (or parallel) sequence of external
	// task invocations.
	Workflow struct {
		// Name uniquely identifies the workflow within the descriptor (required).
		Name WorkflowName `toml:"name"`
		// Author is a free-form authorship tag (optional).
		Author string `toml:"author,omitempty"`
		// Mode selects sequential or parallel execution. Defaults to sequential.
		Mode ExecutionMode `toml:"mode,omitempty"`
		// Env contains environment variables scoped to this workflow.
		Env map[EnvVarName]string `toml:"env,omitempty"`
		// Tasks is the ordered task list (required, at least one).
		Tasks []Task `toml:"tasks"`
	}
)

// Error implements the error interface.
func (e *InvalidWorkflowNameError) Error() string {
	return fmt.Sprintf("invalid workflow name %q: must not be empty", e.Value)
}

// Unwrap returns ErrInvalidWorkflowName for errors.Is() compatibility.
func (e *InvalidWorkflowNameError) Unwrap() error { return ErrInvalidWorkflowName }

// Validate returns nil if the WorkflowName is non-empty.
func (n WorkflowName) Validate() error {
	if strings.TrimSpace(string(n)) == "" {
		return &InvalidWorkflowNameError{Value: n}
	}
	return nil
}

// String returns the string representation of the WorkflowName.
func (n WorkflowName) String() string { return string(n) }

// Error implements the error interface.
func (e *InvalidExecutionModeError) Error() string {
	return fmt.Sprintf("invalid execution mode %q (valid modes: %s, %s)",
		e.Value, ModeSequential, ModeParallel)
}

// Unwrap returns ErrInvalidExecutionMode for errors.Is() compatibility.
func (e *InvalidExecutionModeError) Unwrap() error { return ErrInvalidExecutionMode }

// Validate returns nil if the ExecutionMode is sequential, parallel, or unset.
func (m ExecutionMode) Validate() error {
	switch m {
	case ModeSequential, ModeParallel, "":
		return nil
	default:
		return &InvalidExecutionModeError{Value: m}
	}
}

// String returns the string representation of the ExecutionMode.
func (m ExecutionMode) String() string { return string(m) }

// EffectiveMode returns the workflow's mode, defaulting to sequential
// when the descriptor leaves it unset.
func (w *Workflow) EffectiveMode() ExecutionMode {
	if w.Mode == "" {
		return ModeSequential
	}
	return w.Mode
}

// IsParallel reports whether the workflow's tasks may be launched concurrently.
func (w *Workflow) IsParallel() bool { return w.EffectiveMode() == ModeParallel }

// ReferencedWorkflows returns the names of workflows this workflow runs
// through workflow.run tasks, in task order.
func (w *Workflow) ReferencedWorkflows() []WorkflowName {
	var refs []WorkflowName
	for _, t := range w.Tasks {
		if t.Type == TaskWorkflowRun {
			refs = append(refs, WorkflowName(t.Args))
		}
	}
	return refs
}

// Validate checks the workflow's own fields and every task in it.
// Cross-workflow checks (name uniqueness, workflow.run references)
// are performed by Denvfile.validate.
func (w *Workflow) Validate() error {
	if err := w.Name.Validate(); err != nil {
		return err
	}
	if err := w.Mode.Validate(); err != nil {
		return fmt.Errorf("workflow %q: %w", w.Name, err)
	}
	if len(w.Tasks) == 0 {
		return fmt.Errorf("workflow %q must have at least one task", w.Name)
	}
	for i := range w.Tasks {
		if err := w.Tasks[i].Validate(); err != nil {
			return fmt.Errorf("workflow %q task #%d: %w", w.Name, i+1, err)
		}
	}
	if err := validateEnv(fmt.Sprintf("workflow %q env", w.Name), w.Env); err != nil {
		return err
	}
	return nil
}
