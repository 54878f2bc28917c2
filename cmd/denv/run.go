// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/denvhq/denv/internal/config"
	"github.com/denvhq/denv/internal/runner"
	"github.com/denvhq/denv/internal/runtime"
	"github.com/denvhq/denv/pkg/denvfile"
)

var (
	runRuntime string
	runEnvVars []string
	runWorkDir string

	// runCmd executes a workflow from the denvfile
	runCmd = &cobra.Command{
		Use:   "run <workflow name>",
		Short: "Run a workflow from the denvfile",
		Long: `Run a workflow from the denvfile.

Workflow names may contain spaces; extra arguments are joined, so both
of these work:

  denv run "Run Server"
  denv run Run Server

Tasks run sequentially unless the workflow sets mode = "parallel".
Tasks with wait_for_port start as services: the workflow continues as
soon as the port accepts connections, and the run keeps the service
alive until interrupted.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runRun,
	}
)

func init() {
	runCmd.Flags().StringVar(&runRuntime, "runtime", "", "runtime to execute tasks with (native, virtual)")
	runCmd.Flags().StringArrayVarP(&runEnvVars, "env-var", "e", nil, "set an env var (KEY=VALUE), highest precedence; repeatable")
	runCmd.Flags().StringVar(&runWorkDir, "workdir", "", "working directory for tasks (default is the denvfile's directory)")
}

func runRun(cmd *cobra.Command, args []string) error {
	d, err := loadDescriptor()
	if err != nil {
		return err
	}

	name := denvfile.WorkflowName(strings.Join(args, " "))

	opts, err := buildRunnerOptions(d)
	if err != nil {
		return err
	}

	r, err := runner.New(d, opts)
	if err != nil {
		if id := classifyRunError(err); id != 0 {
			renderIssue(id)
		}
		return err
	}

	if err := r.Run(cmd.Context(), name); err != nil {
		if id := classifyRunError(err); id != 0 {
			renderIssue(id)
		}

		var taskErr *runner.TaskError
		if errors.As(err, &taskErr) && taskErr.ExitCode != 0 {
			return &ExitError{Code: taskErr.ExitCode, Err: err}
		}
		return err
	}

	fmt.Printf("%s Workflow %s finished\n", SuccessStyle.Render("✓"), CmdStyle.Render(string(name)))
	return nil
}

// buildRunnerOptions assembles runner options from the loaded config and
// the run command's flags.
func buildRunnerOptions(d *denvfile.Denvfile) (runner.Options, error) {
	cfg := config.Get()

	mode := cfg.DefaultRuntime
	if runRuntime != "" {
		mode = config.RuntimeMode(runRuntime)
	}
	if valid, errs := mode.IsValid(); !valid {
		return runner.Options{}, errors.Join(errs...)
	}

	extraEnv, err := parseEnvVarFlags(runEnvVars)
	if err != nil {
		return runner.Options{}, err
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "denv",
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}

	projectDir := runWorkDir
	if projectDir == "" && d.FilePath != "" {
		projectDir = filepath.Dir(d.FilePath)
	}
	packager := runner.NewPackager(projectDir)
	if cfg.Packager.PythonInstall != "" {
		packager.PythonInstall = cfg.Packager.PythonInstall
	}
	if cfg.Packager.NodeInstall != "" {
		packager.NodeInstall = cfg.Packager.NodeInstall
	}

	return runner.Options{
		RuntimeType:     runtime.RuntimeType(mode),
		Logger:          logger,
		PortWaitTimeout: cfg.PortWaitTimeout,
		ExtraEnv:        extraEnv,
		WorkDir:         runWorkDir,
		Packager:        packager,
	}, nil
}

// parseEnvVarFlags turns repeated KEY=VALUE flags into a map, validating
// the key against the descriptor's env var name rules.
func parseEnvVarFlags(flags []string) (map[string]string, error) {
	if len(flags) == 0 {
		return nil, nil
	}

	env := make(map[string]string, len(flags))
	for _, kv := range flags {
		key, value, found := strings.Cut(kv, "=")
		if !found {
			return nil, fmt.Errorf("invalid --env-var %q (expected KEY=VALUE)", kv)
		}
		if err := denvfile.EnvVarName(key).Validate(); err != nil {
			return nil, fmt.Errorf("invalid --env-var %q: %w", kv, err)
		}
		env[key] = value
	}
	return env, nil
}
