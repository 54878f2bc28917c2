// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/denvhq/denv/internal/runtime"
	"github.com/denvhq/denv/pkg/denvfile"
)

// ErrWorkflowNotFound is the sentinel error wrapped by WorkflowNotFoundError.
var ErrWorkflowNotFound = errors.New("workflow not found")

type (
	// WorkflowNotFoundError is returned when a run names a workflow the
	// descriptor does not define.
	WorkflowNotFoundError struct {
		Name      denvfile.WorkflowName
		Available []denvfile.WorkflowName
	}

	// TaskError wraps a task failure with its position in the workflow.
	TaskError struct {
		Workflow denvfile.WorkflowName
		Index    int
		Type     denvfile.TaskType
		ExitCode runtime.ExitCode
		Err      error
	}

	// Options configures a Runner. The zero value is usable: it executes
	// on the native runtime in the descriptor's directory.
	Options struct {
		// Registry provides the runtimes. Nil means the default registry.
		Registry *runtime.Registry
		// RuntimeType selects the runtime used for shell.exec and
		// packager.install command lines. Empty means native.
		RuntimeType runtime.RuntimeType
		// Logger receives progress output. Nil means a stderr logger.
		Logger *log.Logger
		// PortWaitTimeout bounds readiness waits for service tasks.
		// Zero means DefaultPortWaitTimeout.
		PortWaitTimeout time.Duration
		// ExtraEnv contains CLI-provided env overrides (highest priority).
		ExtraEnv map[string]string
		// WorkDir overrides the working directory for all tasks.
		WorkDir string
		// Stdout and Stderr receive task output. Nil means the process streams.
		Stdout io.Writer
		Stderr io.Writer
		// Stdin feeds task input. Nil means no input.
		Stdin io.Reader
		// Packager derives packager.install command lines. Nil means a
		// packager over the descriptor's directory with default commands.
		Packager *Packager
		// EnvBuilder overrides environment construction, mainly for tests.
		EnvBuilder runtime.EnvBuilder
	}

	// serviceGroup collects the service tasks of a run together with the
	// context they execute under. Services must outlive the task groups
	// that start them, so they run under the run-wide context rather than
	// the per-workflow group context.
	serviceGroup struct {
		group *errgroup.Group
		ctx   context.Context
	}

	// Runner executes workflows from a descriptor.
	Runner struct {
		descriptor  *denvfile.Denvfile
		registry    *runtime.Registry
		runtimeType runtime.RuntimeType
		logger      *log.Logger
		portTimeout time.Duration
		extraEnv    map[string]string
		workDir     string
		stdout      io.Writer
		stderr      io.Writer
		stdin       io.Reader
		packager    *Packager
		envBuilder  runtime.EnvBuilder
	}
)

// Error implements the error interface.
func (e *WorkflowNotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("workflow %q not found: the descriptor defines no workflows", e.Name)
	}
	return fmt.Sprintf("workflow %q not found (defined workflows: %v)", e.Name, e.Available)
}

// Unwrap returns ErrWorkflowNotFound so callers can use errors.Is for programmatic detection.
func (e *WorkflowNotFoundError) Unwrap() error { return ErrWorkflowNotFound }

// Error implements the error interface.
func (e *TaskError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("workflow %q task #%d (%s): %v", e.Workflow, e.Index+1, e.Type, e.Err)
	}
	return fmt.Sprintf("workflow %q task #%d (%s) exited with code %s", e.Workflow, e.Index+1, e.Type, e.ExitCode)
}

// Unwrap returns the underlying cause, if any.
func (e *TaskError) Unwrap() error { return e.Err }

// New creates a Runner for the descriptor. The workflow reference graph
// is validated up front so that cyclic descriptors are rejected before
// any task runs.
func New(d *denvfile.Denvfile, opts Options) (*Runner, error) {
	if err := ValidateReferences(d); err != nil {
		return nil, err
	}

	r := &Runner{
		descriptor:  d,
		registry:    opts.Registry,
		runtimeType: opts.RuntimeType,
		logger:      opts.Logger,
		portTimeout: opts.PortWaitTimeout,
		extraEnv:    opts.ExtraEnv,
		workDir:     opts.WorkDir,
		stdout:      opts.Stdout,
		stderr:      opts.Stderr,
		stdin:       opts.Stdin,
		packager:    opts.Packager,
		envBuilder:  opts.EnvBuilder,
	}

	if r.registry == nil {
		r.registry = runtime.NewDefaultRegistry()
	}
	if r.runtimeType == "" {
		r.runtimeType = runtime.RuntimeTypeNative
	}
	if r.logger == nil {
		r.logger = log.NewWithOptions(os.Stderr, log.Options{
			Prefix: "denv",
		})
	}
	if r.portTimeout == 0 {
		r.portTimeout = DefaultPortWaitTimeout
	}
	if r.stdout == nil {
		r.stdout = os.Stdout
	}
	if r.stderr == nil {
		r.stderr = os.Stderr
	}
	if r.packager == nil {
		r.packager = NewPackager(r.projectDir())
	}

	return r, nil
}

// Run executes the named workflow. It returns once all tasks have
// completed and every service task started along the way has exited.
// Service tasks are expected to run until cancellation, so a run that
// starts services blocks until the context is cancelled or a service
// fails.
func (r *Runner) Run(ctx context.Context, name denvfile.WorkflowName) error {
	wf := r.descriptor.GetWorkflow(name)
	if wf == nil {
		return &WorkflowNotFoundError{Name: name, Available: r.descriptor.ListWorkflows()}
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	group, svcCtx := errgroup.WithContext(runCtx)
	services := &serviceGroup{group: group, ctx: svcCtx}

	if err := r.runWorkflow(svcCtx, services, wf); err != nil {
		cancel()
		_ = services.group.Wait()
		return err
	}

	return services.group.Wait()
}

// runWorkflow executes the tasks of one workflow, sequentially or in
// parallel depending on its mode. Service tasks are registered in the
// services group shared by the whole run.
func (r *Runner) runWorkflow(ctx context.Context, services *serviceGroup, wf *denvfile.Workflow) error {
	r.logger.Info("running workflow", "workflow", wf.Name, "mode", wf.EffectiveMode(), "tasks", len(wf.Tasks))

	if wf.IsParallel() {
		group, groupCtx := errgroup.WithContext(ctx)
		for i := range wf.Tasks {
			group.Go(func() error {
				return r.runTask(groupCtx, services, wf, i)
			})
		}
		return group.Wait()
	}

	for i := range wf.Tasks {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("workflow %q interrupted: %w", wf.Name, err)
		}
		if err := r.runTask(ctx, services, wf, i); err != nil {
			return err
		}
	}
	return nil
}

// runTask dispatches one task to its handler.
func (r *Runner) runTask(ctx context.Context, services *serviceGroup, wf *denvfile.Workflow, idx int) error {
	task := &wf.Tasks[idx]
	r.logger.Debug("running task", "workflow", wf.Name, "task", idx+1, "type", task.Type, "args", task.Args)

	switch task.Type {
	case denvfile.TaskShellExec:
		return r.runShellExec(ctx, services, wf, idx, task)
	case denvfile.TaskPackagerInstall:
		return r.runPackagerInstall(ctx, wf, idx, task)
	case denvfile.TaskWorkflowRun:
		return r.runWorkflowRef(ctx, services, wf, idx, task)
	default:
		// Unreachable after descriptor validation.
		return &TaskError{Workflow: wf.Name, Index: idx, Type: task.Type, Err: denvfile.ErrUnknownTaskType}
	}
}

// runShellExec executes a shell.exec task. Tasks with wait_for_port are
// started as services: the command keeps running in the services group
// while the task itself completes once the port accepts connections.
// The service command runs under the services group's own context so
// that finishing a parallel task group does not tear it down.
func (r *Runner) runShellExec(ctx context.Context, services *serviceGroup, wf *denvfile.Workflow, idx int, task *denvfile.Task) error {
	if !task.WaitForPort.IsSet() {
		execCtx := ctx
		if task.Timeout.IsSet() {
			var cancel context.CancelFunc
			execCtx, cancel = context.WithTimeout(ctx, task.Timeout.Std())
			defer cancel()
		}
		return r.execCommand(execCtx, wf, idx, task, task.Args)
	}

	services.group.Go(func() error {
		return r.execCommand(services.ctx, wf, idx, task, task.Args)
	})

	timeout := r.portTimeout
	if task.Timeout.IsSet() {
		timeout = task.Timeout.Std()
	}

	r.logger.Info("waiting for service port", "workflow", wf.Name, "task", idx+1, "port", task.WaitForPort, "timeout", timeout)
	if err := WaitForPort(ctx, task.WaitForPort, timeout); err != nil {
		return &TaskError{Workflow: wf.Name, Index: idx, Type: task.Type, Err: err}
	}

	r.logger.Info("service ready", "workflow", wf.Name, "task", idx+1, "port", task.WaitForPort)
	return nil
}

// runPackagerInstall derives and executes the install commands for the
// descriptor's modules, optionally filtered to one language by args.
func (r *Runner) runPackagerInstall(ctx context.Context, wf *denvfile.Workflow, idx int, task *denvfile.Task) error {
	commands, err := r.packager.Commands(r.descriptor.Modules, task.Args)
	if err != nil {
		return &TaskError{Workflow: wf.Name, Index: idx, Type: task.Type, Err: err}
	}

	if len(commands) == 0 {
		r.logger.Info("nothing to install", "workflow", wf.Name, "task", idx+1)
		return nil
	}

	for _, cmd := range commands {
		r.logger.Info("installing dependencies", "workflow", wf.Name, "task", idx+1, "command", cmd)
		if err := r.execCommand(ctx, wf, idx, task, cmd); err != nil {
			return err
		}
	}
	return nil
}

// runWorkflowRef executes a workflow.run task by running the referenced
// workflow inline, sharing the services group of the run.
func (r *Runner) runWorkflowRef(ctx context.Context, services *serviceGroup, wf *denvfile.Workflow, idx int, task *denvfile.Task) error {
	target := r.descriptor.GetWorkflow(denvfile.WorkflowName(task.Args))
	if target == nil {
		// Unreachable after descriptor validation.
		return &TaskError{
			Workflow: wf.Name,
			Index:    idx,
			Type:     task.Type,
			Err:      &WorkflowNotFoundError{Name: denvfile.WorkflowName(task.Args), Available: r.descriptor.ListWorkflows()},
		}
	}

	if err := r.runWorkflow(ctx, services, target); err != nil {
		return &TaskError{Workflow: wf.Name, Index: idx, Type: task.Type, Err: err}
	}
	return nil
}

// execCommand runs one command line through the configured runtime and
// maps a non-zero exit status to a TaskError.
func (r *Runner) execCommand(ctx context.Context, wf *denvfile.Workflow, idx int, task *denvfile.Task, commandLine string) error {
	execCtx := &runtime.ExecutionContext{
		Context:     ctx,
		CommandLine: commandLine,
		Descriptor:  r.descriptor,
		WorkflowEnv: denvfile.EnvVars(wf.Env),
		TaskEnv:     denvfile.EnvVars(task.Env),
		ExtraEnv:    r.extraEnv,
		WorkDir:     r.workDir,
		Stdout:      r.stdout,
		Stderr:      r.stderr,
		Stdin:       r.stdin,
		EnvBuilder:  r.envBuilder,
	}

	result := r.registry.Execute(r.runtimeType, execCtx)
	if result.Success() {
		return nil
	}

	return &TaskError{
		Workflow: wf.Name,
		Index:    idx,
		Type:     task.Type,
		ExitCode: runtime.ExitCode(result.ExitCode),
		Err:      result.Error,
	}
}

// projectDir returns the directory manifest files are searched in.
func (r *Runner) projectDir() string {
	if r.workDir != "" {
		return r.workDir
	}
	if r.descriptor.FilePath != "" {
		return filepath.Dir(r.descriptor.FilePath)
	}
	return "."
}
