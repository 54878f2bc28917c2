// SPDX-License-Identifier: MPL-2.0

package denvfile

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrInvalidEnvVarName is the sentinel error wrapped by InvalidEnvVarNameError.
	ErrInvalidEnvVarName = errors.New("invalid environment variable name")

	// envVarNameRegex validates environment variable names
	envVarNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

type (
	// EnvVarName represents an environment variable name.
	// A valid env var name starts with a letter or underscore, followed by
	// letters, digits, or underscores (matching POSIX conventions).
	EnvVarName string

	// InvalidEnvVarNameError is returned when an EnvVarName value is empty,
	// whitespace-only, or doesn't match the POSIX env var naming convention.
	InvalidEnvVarNameError struct {
		Value EnvVarName
	}
)

// Error implements the error interface.
func (e *InvalidEnvVarNameError) Error() string {
	return fmt.Sprintf("invalid environment variable name %q (must match [A-Za-z_][A-Za-z0-9_]*)", e.Value)
}

// Unwrap returns ErrInvalidEnvVarName so callers can use errors.Is for programmatic detection.
func (e *InvalidEnvVarNameError) Unwrap() error { return ErrInvalidEnvVarName }

// Validate returns nil if the EnvVarName is a valid POSIX environment variable name,
// or a validation error if it is not.
func (n EnvVarName) Validate() error {
	s := string(n)
	if strings.TrimSpace(s) == "" || !envVarNameRegex.MatchString(s) {
		return &InvalidEnvVarNameError{Value: n}
	}
	return nil
}

// String returns the string representation of the EnvVarName.
func (n EnvVarName) String() string { return string(n) }

// EnvVars converts a typed env map to a plain map[string]string for
// consumption by exec.Cmd.Env and maps.Copy callers. Returns nil when
// the input is empty.
func EnvVars(env map[EnvVarName]string) map[string]string {
	if len(env) == 0 {
		return nil
	}
	result := make(map[string]string, len(env))
	for k, v := range env {
		result[string(k)] = v
	}
	return result
}

// validateEnv checks every key of an env table. The section parameter
// names the owning block for error messages (e.g. "env", "workflow 'Run'").
func validateEnv(section string, env map[EnvVarName]string) error {
	for name := range env {
		if err := name.Validate(); err != nil {
			return fmt.Errorf("%s: %w", section, err)
		}
	}
	return nil
}
