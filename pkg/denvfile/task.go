// SPDX-License-Identifier: MPL-2.0

package denvfile

import (
	"errors"
	"fmt"
	"strings"
)

// Task type identifiers for the supported external task invocations.
const (
	// TaskShellExec runs the task args as a shell command line.
	TaskShellExec TaskType = "shell.exec"
	// TaskPackagerInstall installs dependencies for the declared modules.
	// Args may optionally name a single language to install for.
	TaskPackagerInstall TaskType = "packager.install"
	// TaskWorkflowRun runs another workflow by name. Args is the name.
	TaskWorkflowRun TaskType = "workflow.run"
)

// ErrUnknownTaskType is the sentinel error wrapped by UnknownTaskTypeError.
var ErrUnknownTaskType = errors.New("unknown task type")

type (
	// TaskType identifies the kind of external invocation a task performs.
	TaskType string

	// UnknownTaskTypeError is returned when a task references a task type
	// outside the supported vocabulary.
	UnknownTaskTypeError struct {
		Value TaskType
	}

	// Task is a single external invocation within a workflow. Each task
	// belongs to exactly one workflow and executes in declared order (or
	// concurrently with its siblings when the workflow is parallel).
	Task struct {
		// Type identifies the task kind (required).
		Type TaskType `toml:"type"`
		// Args carries the task argument string. Required for shell.exec
		// (the command line) and workflow.run (the target workflow name);
		// optional for packager.install (a language filter).
		Args string `toml:"args,omitempty"`
		// Env contains environment variables scoped to this task.
		Env map[EnvVarName]string `toml:"env,omitempty"`
		// WaitForPort, when set on a shell.exec task, makes the runner
		// treat the task as ready once the port accepts connections,
		// leaving the process running for the rest of the workflow.
		WaitForPort PortNumber `toml:"wait_for_port,omitempty"`
		// Timeout bounds the task execution time (optional).
		Timeout Duration `toml:"timeout,omitempty"`
	}
)

// Error implements the error interface.
func (e *UnknownTaskTypeError) Error() string {
	return fmt.Sprintf("unknown task type %q (valid types: %s, %s, %s)",
		e.Value, TaskShellExec, TaskPackagerInstall, TaskWorkflowRun)
}

// Unwrap returns ErrUnknownTaskType for errors.Is() compatibility.
func (e *UnknownTaskTypeError) Unwrap() error { return ErrUnknownTaskType }

// Validate returns nil if the TaskType is part of the supported vocabulary.
func (t TaskType) Validate() error {
	switch t {
	case TaskShellExec, TaskPackagerInstall, TaskWorkflowRun:
		return nil
	default:
		return &UnknownTaskTypeError{Value: t}
	}
}

// String returns the string representation of the TaskType.
func (t TaskType) String() string { return string(t) }

// Validate checks the task's type, argument requirements, and optional
// port condition.
func (t *Task) Validate() error {
	if err := t.Type.Validate(); err != nil {
		return err
	}

	switch t.Type {
	case TaskShellExec:
		if strings.TrimSpace(t.Args) == "" {
			return fmt.Errorf("%s task must have a non-empty args command line", TaskShellExec)
		}
	case TaskWorkflowRun:
		if strings.TrimSpace(t.Args) == "" {
			return fmt.Errorf("%s task must name a target workflow in args", TaskWorkflowRun)
		}
	case TaskPackagerInstall:
		// Args is an optional language filter; nothing to check here.
	}

	if t.WaitForPort.IsSet() {
		if t.Type != TaskShellExec {
			return fmt.Errorf("wait_for_port is only valid on %s tasks", TaskShellExec)
		}
		if err := t.WaitForPort.Validate(); err != nil {
			return fmt.Errorf("wait_for_port: %w", err)
		}
	}

	if err := validateEnv("task env", t.Env); err != nil {
		return err
	}

	return nil
}
