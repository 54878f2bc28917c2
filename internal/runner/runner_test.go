// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denvhq/denv/internal/runtime"
	"github.com/denvhq/denv/pkg/denvfile"
)

// testOptions returns runner options suitable for tests: the virtual
// runtime (always available) and a silent logger.
func testOptions() Options {
	return Options{
		RuntimeType: runtime.RuntimeTypeVirtual,
		Logger:      log.New(io.Discard),
	}
}

func testRunDescriptor(t *testing.T, workflows ...denvfile.Workflow) (*denvfile.Denvfile, string) {
	t.Helper()
	dir := t.TempDir()
	return &denvfile.Denvfile{
		FilePath:  filepath.Join(dir, denvfile.DenvfileName),
		Workflows: workflows,
	}, dir
}

func shellTask(args string) denvfile.Task {
	return denvfile.Task{Type: denvfile.TaskShellExec, Args: args}
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestRunnerSequentialOrder(t *testing.T) {
	d, dir := testRunDescriptor(t, denvfile.Workflow{
		Name: "build",
		Mode: denvfile.ModeSequential,
		Tasks: []denvfile.Task{
			shellTask("echo one >> order.txt"),
			shellTask("echo two >> order.txt"),
			shellTask("echo three >> order.txt"),
		},
	})

	r, err := New(d, testOptions())
	require.NoError(t, err)

	require.NoError(t, r.Run(context.Background(), "build"))

	lines := readLines(t, filepath.Join(dir, "order.txt"))
	assert.Equal(t, []string{"one", "two", "three"}, lines)
}

func TestRunnerSequentialStopsAtFirstFailure(t *testing.T) {
	d, dir := testRunDescriptor(t, denvfile.Workflow{
		Name: "build",
		Tasks: []denvfile.Task{
			shellTask("echo ran > first.txt"),
			shellTask("exit 7"),
			shellTask("echo ran > never.txt"),
		},
	})

	r, err := New(d, testOptions())
	require.NoError(t, err)

	err = r.Run(context.Background(), "build")
	require.Error(t, err)

	var taskErr *TaskError
	require.ErrorAs(t, err, &taskErr)
	assert.Equal(t, 1, taskErr.Index)
	assert.Equal(t, runtime.ExitCode(7), taskErr.ExitCode)

	assert.FileExists(t, filepath.Join(dir, "first.txt"))
	assert.NoFileExists(t, filepath.Join(dir, "never.txt"))
}

func TestRunnerParallelRunsAllTasks(t *testing.T) {
	d, dir := testRunDescriptor(t, denvfile.Workflow{
		Name: "fanout",
		Mode: denvfile.ModeParallel,
		Tasks: []denvfile.Task{
			shellTask("echo a > a.txt"),
			shellTask("echo b > b.txt"),
			shellTask("echo c > c.txt"),
		},
	})

	r, err := New(d, testOptions())
	require.NoError(t, err)

	require.NoError(t, r.Run(context.Background(), "fanout"))

	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
}

func TestRunnerParallelFailurePropagates(t *testing.T) {
	d, _ := testRunDescriptor(t, denvfile.Workflow{
		Name: "fanout",
		Mode: denvfile.ModeParallel,
		Tasks: []denvfile.Task{
			shellTask("true"),
			shellTask("exit 2"),
		},
	})

	r, err := New(d, testOptions())
	require.NoError(t, err)

	err = r.Run(context.Background(), "fanout")
	var taskErr *TaskError
	require.ErrorAs(t, err, &taskErr)
	assert.Equal(t, runtime.ExitCode(2), taskErr.ExitCode)
}

func TestRunnerWorkflowReference(t *testing.T) {
	d, dir := testRunDescriptor(t,
		denvfile.Workflow{
			Name: "main",
			Tasks: []denvfile.Task{
				shellTask("echo before >> trace.txt"),
				{Type: denvfile.TaskWorkflowRun, Args: "sub"},
				shellTask("echo after >> trace.txt"),
			},
		},
		denvfile.Workflow{
			Name:  "sub",
			Tasks: []denvfile.Task{shellTask("echo inner >> trace.txt")},
		},
	)

	r, err := New(d, testOptions())
	require.NoError(t, err)

	require.NoError(t, r.Run(context.Background(), "main"))

	lines := readLines(t, filepath.Join(dir, "trace.txt"))
	assert.Equal(t, []string{"before", "inner", "after"}, lines)
}

func TestRunnerEnvPrecedence(t *testing.T) {
	d, dir := testRunDescriptor(t, denvfile.Workflow{
		Name: "env",
		Env:  map[denvfile.EnvVarName]string{"FLASK_ENV": "workflow"},
		Tasks: []denvfile.Task{
			{
				Type: denvfile.TaskShellExec,
				Args: `echo "$FLASK_APP $FLASK_ENV $OVERRIDE" > env.txt`,
				Env:  map[denvfile.EnvVarName]string{"OVERRIDE": "task"},
			},
		},
	})
	d.Env = map[denvfile.EnvVarName]string{
		"FLASK_APP": "app.py",
		"FLASK_ENV": "descriptor",
		"OVERRIDE":  "descriptor",
	}

	opts := testOptions()
	opts.ExtraEnv = map[string]string{"OVERRIDE": "cli"}

	r, err := New(d, opts)
	require.NoError(t, err)

	require.NoError(t, r.Run(context.Background(), "env"))

	lines := readLines(t, filepath.Join(dir, "env.txt"))
	require.Len(t, lines, 1)
	assert.Equal(t, "app.py workflow cli", lines[0])
}

func TestRunnerWorkflowNotFound(t *testing.T) {
	d, _ := testRunDescriptor(t, denvfile.Workflow{
		Name:  "known",
		Tasks: []denvfile.Task{shellTask("true")},
	})

	r, err := New(d, testOptions())
	require.NoError(t, err)

	err = r.Run(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWorkflowNotFound)

	var nfErr *WorkflowNotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, denvfile.WorkflowName("missing"), nfErr.Name)
	assert.Contains(t, nfErr.Available, denvfile.WorkflowName("known"))
}

func TestRunnerRejectsCyclicReferences(t *testing.T) {
	d, _ := testRunDescriptor(t,
		denvfile.Workflow{
			Name:  "a",
			Tasks: []denvfile.Task{{Type: denvfile.TaskWorkflowRun, Args: "b"}},
		},
		denvfile.Workflow{
			Name:  "b",
			Tasks: []denvfile.Task{{Type: denvfile.TaskWorkflowRun, Args: "a"}},
		},
	)

	_, err := New(d, testOptions())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrWorkflowCycle)
}

func TestRunnerServiceTaskReadyWhenPortOpen(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = listener.Close() }()

	port := listener.Addr().(*net.TCPAddr).Port

	d, dir := testRunDescriptor(t, denvfile.Workflow{
		Name: "serve",
		Tasks: []denvfile.Task{
			{
				Type:        denvfile.TaskShellExec,
				Args:        "echo served > served.txt",
				WaitForPort: denvfile.PortNumber(port),
			},
			shellTask("echo next > next.txt"),
		},
	})

	r, err := New(d, testOptions())
	require.NoError(t, err)

	require.NoError(t, r.Run(context.Background(), "serve"))
	assert.FileExists(t, filepath.Join(dir, "served.txt"))
	assert.FileExists(t, filepath.Join(dir, "next.txt"))
}

func TestRunnerParallelServiceTaskOutlivesTaskGroup(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = listener.Close() }()

	port := listener.Addr().(*net.TCPAddr).Port

	// The service command keeps running after the port check passes, so
	// it must survive the parallel group finishing its other tasks.
	d, dir := testRunDescriptor(t, denvfile.Workflow{
		Name: "serve",
		Mode: denvfile.ModeParallel,
		Tasks: []denvfile.Task{
			shellTask("echo sibling > sibling.txt"),
			{
				Type:        denvfile.TaskShellExec,
				Args:        "sleep 1 && echo served > served.txt",
				WaitForPort: denvfile.PortNumber(port),
			},
		},
	})

	r, err := New(d, testOptions())
	require.NoError(t, err)

	require.NoError(t, r.Run(context.Background(), "serve"))
	assert.FileExists(t, filepath.Join(dir, "sibling.txt"))
	assert.FileExists(t, filepath.Join(dir, "served.txt"))
}

func TestRunnerServiceTaskPortTimeout(t *testing.T) {
	// Reserve a port, then close it so nothing listens there.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())

	d, _ := testRunDescriptor(t, denvfile.Workflow{
		Name: "serve",
		Tasks: []denvfile.Task{
			{
				Type:        denvfile.TaskShellExec,
				Args:        "sleep 5",
				WaitForPort: denvfile.PortNumber(port),
				Timeout:     denvfile.Duration(300 * time.Millisecond),
			},
		},
	})

	r, err := New(d, testOptions())
	require.NoError(t, err)

	start := time.Now()
	err = r.Run(context.Background(), "serve")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPortWaitTimeout)
	assert.Less(t, time.Since(start), 5*time.Second, "run should not wait for the full service command")
}

func TestRunnerPackagerInstall(t *testing.T) {
	d, dir := testRunDescriptor(t, denvfile.Workflow{
		Name: "setup",
		Tasks: []denvfile.Task{
			{Type: denvfile.TaskPackagerInstall},
		},
	})
	d.Modules = []denvfile.ModuleID{"python-3.10", "web"}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "requirements.txt"), []byte("flask\n"), 0o644))

	opts := testOptions()
	opts.Packager = &Packager{
		Dir:           dir,
		PythonInstall: "echo installed > installed.txt",
	}

	r, err := New(d, opts)
	require.NoError(t, err)

	require.NoError(t, r.Run(context.Background(), "setup"))
	assert.FileExists(t, filepath.Join(dir, "installed.txt"))
}

func TestRunnerPackagerInstallUnknownFilter(t *testing.T) {
	d, _ := testRunDescriptor(t, denvfile.Workflow{
		Name: "setup",
		Tasks: []denvfile.Task{
			{Type: denvfile.TaskPackagerInstall, Args: "ruby"},
		},
	})
	d.Modules = []denvfile.ModuleID{"ruby-3.2"}

	r, err := New(d, testOptions())
	require.NoError(t, err)

	err = r.Run(context.Background(), "setup")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedLanguage)
}

func TestRunnerTaskTimeout(t *testing.T) {
	d, _ := testRunDescriptor(t, denvfile.Workflow{
		Name: "slow",
		Tasks: []denvfile.Task{
			{
				Type:    denvfile.TaskShellExec,
				Args:    "sleep 5",
				Timeout: denvfile.Duration(200 * time.Millisecond),
			},
		},
	})

	r, err := New(d, testOptions())
	require.NoError(t, err)

	start := time.Now()
	err = r.Run(context.Background(), "slow")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestTaskErrorMessage(t *testing.T) {
	err := &TaskError{
		Workflow: "build",
		Index:    2,
		Type:     denvfile.TaskShellExec,
		ExitCode: 1,
	}
	assert.Equal(t, `workflow "build" task #3 (shell.exec) exited with code 1`, err.Error())

	wrapped := &TaskError{
		Workflow: "build",
		Index:    0,
		Type:     denvfile.TaskWorkflowRun,
		Err:      errors.New("boom"),
	}
	assert.Equal(t, fmt.Sprintf("workflow %q task #1 (workflow.run): boom", "build"), wrapped.Error())
}
