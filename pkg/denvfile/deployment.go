// SPDX-License-Identifier: MPL-2.0

package denvfile

import (
	"errors"
	"fmt"
	"strings"
)

// Deployment targets supported by the hosting platform.
const (
	// TargetAutoscale deploys the application behind the platform's autoscaler.
	TargetAutoscale DeploymentTarget = "autoscale"
	// TargetVM deploys the application to a single always-on machine.
	TargetVM DeploymentTarget = "vm"
	// TargetStatic deploys the build output as static assets.
	TargetStatic DeploymentTarget = "static"
)

// ErrInvalidDeploymentTarget is the sentinel error wrapped by InvalidDeploymentTargetError.
var ErrInvalidDeploymentTarget = errors.New("invalid deployment target")

type (
	// DeploymentTarget selects the platform deployment mode.
	DeploymentTarget string

	// InvalidDeploymentTargetError is returned when a deployment block
	// declares an unsupported target.
	InvalidDeploymentTargetError struct {
		Value DeploymentTarget
	}

	// Deployment is the directive the hosting platform consumes to build
	// and start the application. Build commands run in order before the
	// run commands; each command is an opaque shell command line.
	Deployment struct {
		// Target selects the deployment mode (required).
		Target DeploymentTarget `toml:"target"`
		// Build is the ordered list of build-step command lines (required,
		// at least one).
		Build []string `toml:"build"`
		// Run is the ordered list of start-step command lines (required,
		// at least one).
		Run []string `toml:"run"`
	}
)

// Error implements the error interface.
func (e *InvalidDeploymentTargetError) Error() string {
	return fmt.Sprintf("invalid deployment target %q (valid targets: %s, %s, %s)",
		e.Value, TargetAutoscale, TargetVM, TargetStatic)
}

// Unwrap returns ErrInvalidDeploymentTarget for errors.Is() compatibility.
func (e *InvalidDeploymentTargetError) Unwrap() error { return ErrInvalidDeploymentTarget }

// Validate returns nil if the DeploymentTarget is part of the supported set.
func (t DeploymentTarget) Validate() error {
	switch t {
	case TargetAutoscale, TargetVM, TargetStatic:
		return nil
	default:
		return &InvalidDeploymentTargetError{Value: t}
	}
}

// String returns the string representation of the DeploymentTarget.
func (t DeploymentTarget) String() string { return string(t) }

// Validate checks the target and command lists of the directive.
func (d *Deployment) Validate() error {
	if err := d.Target.Validate(); err != nil {
		return err
	}
	if len(d.Build) == 0 {
		return fmt.Errorf("deployment must have at least one build command")
	}
	if len(d.Run) == 0 {
		return fmt.Errorf("deployment must have at least one run command")
	}
	for i, cmd := range d.Build {
		if strings.TrimSpace(cmd) == "" {
			return fmt.Errorf("deployment build command #%d is empty", i+1)
		}
	}
	for i, cmd := range d.Run {
		if strings.TrimSpace(cmd) == "" {
			return fmt.Errorf("deployment run command #%d is empty", i+1)
		}
	}
	return nil
}
