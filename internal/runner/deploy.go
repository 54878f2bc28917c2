// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/denvhq/denv/internal/runtime"
	"github.com/denvhq/denv/pkg/denvfile"
)

// ErrNoDeployment is returned when a descriptor defines no deployment section.
var ErrNoDeployment = errors.New("descriptor has no deployment section")

type (
	// DeployOptions controls a single deployment run.
	DeployOptions struct {
		// DryRun prints the deployment plan without executing anything.
		DryRun bool
		// SkipBuild skips the build phase and runs only the run commands.
		SkipBuild bool
	}

	// Deployer executes the deployment directive of a descriptor: the
	// build commands first, then the run commands.
	Deployer struct {
		descriptor  *denvfile.Denvfile
		registry    *runtime.Registry
		runtimeType runtime.RuntimeType
		logger      *log.Logger
		extraEnv    map[string]string
		workDir     string
		stdout      io.Writer
		stderr      io.Writer
		envBuilder  runtime.EnvBuilder
	}
)

// NewDeployer creates a Deployer sharing the Runner's option set.
func NewDeployer(d *denvfile.Denvfile, opts Options) *Deployer {
	dep := &Deployer{
		descriptor:  d,
		registry:    opts.Registry,
		runtimeType: opts.RuntimeType,
		logger:      opts.Logger,
		extraEnv:    opts.ExtraEnv,
		workDir:     opts.WorkDir,
		stdout:      opts.Stdout,
		stderr:      opts.Stderr,
		envBuilder:  opts.EnvBuilder,
	}

	if dep.registry == nil {
		dep.registry = runtime.NewDefaultRegistry()
	}
	if dep.runtimeType == "" {
		dep.runtimeType = runtime.RuntimeTypeNative
	}
	if dep.logger == nil {
		dep.logger = log.NewWithOptions(os.Stderr, log.Options{
			Prefix: "denv",
		})
	}
	if dep.stdout == nil {
		dep.stdout = os.Stdout
	}
	if dep.stderr == nil {
		dep.stderr = os.Stderr
	}

	return dep
}

// Deploy executes the descriptor's deployment directive. Build commands
// run first and abort the deployment on failure; run commands follow.
func (d *Deployer) Deploy(ctx context.Context, opts DeployOptions) error {
	deployment := d.descriptor.Deployment
	if deployment == nil {
		return ErrNoDeployment
	}

	if opts.DryRun {
		return d.printPlan(deployment, opts)
	}

	d.logger.Info("deploying", "target", deployment.Target)

	if !opts.SkipBuild {
		for i, cmd := range deployment.Build {
			d.logger.Info("build step", "step", i+1, "command", cmd)
			if err := d.execCommand(ctx, cmd); err != nil {
				return fmt.Errorf("build step #%d failed: %w", i+1, err)
			}
		}
	}

	for i, cmd := range deployment.Run {
		d.logger.Info("run step", "step", i+1, "command", cmd)
		if err := d.execCommand(ctx, cmd); err != nil {
			return fmt.Errorf("run step #%d failed: %w", i+1, err)
		}
	}

	return nil
}

// printPlan writes the ordered command plan without executing it.
func (d *Deployer) printPlan(deployment *denvfile.Deployment, opts DeployOptions) error {
	fmt.Fprintf(d.stdout, "deployment target: %s\n", deployment.Target)

	if !opts.SkipBuild {
		for i, cmd := range deployment.Build {
			fmt.Fprintf(d.stdout, "build #%d: %s\n", i+1, cmd)
		}
	}
	for i, cmd := range deployment.Run {
		fmt.Fprintf(d.stdout, "run   #%d: %s\n", i+1, cmd)
	}
	return nil
}

func (d *Deployer) execCommand(ctx context.Context, commandLine string) error {
	execCtx := &runtime.ExecutionContext{
		Context:     ctx,
		CommandLine: commandLine,
		Descriptor:  d.descriptor,
		ExtraEnv:    d.extraEnv,
		WorkDir:     d.workDir,
		Stdout:      d.stdout,
		Stderr:      d.stderr,
		EnvBuilder:  d.envBuilder,
	}

	result := d.registry.Execute(d.runtimeType, execCtx)
	if result.Success() {
		return nil
	}
	if result.Error != nil {
		return result.Error
	}
	return fmt.Errorf("command %q exited with code %d", commandLine, result.ExitCode)
}
