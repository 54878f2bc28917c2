// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	// RuntimeNative runs task command lines in the host system shell.
	// Defined locally to avoid coupling config to internal/runtime.
	RuntimeNative RuntimeMode = "native"
	// RuntimeVirtual runs task command lines in the embedded mvdan/sh interpreter.
	RuntimeVirtual RuntimeMode = "virtual"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidConfigRuntimeMode is returned when a config RuntimeMode value is not recognized.
	ErrInvalidConfigRuntimeMode = errors.New("invalid runtime mode")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidPortWaitTimeout is returned when the port wait timeout is not positive.
	ErrInvalidPortWaitTimeout = errors.New("invalid port wait timeout")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// RuntimeMode specifies the execution runtime for task command lines.
	// Defined locally to avoid coupling config to internal/runtime;
	// the CLI casts to runtime.RuntimeType at the boundary.
	RuntimeMode string

	// InvalidConfigRuntimeModeError is returned when a config RuntimeMode value is not recognized.
	// It wraps ErrInvalidConfigRuntimeMode for errors.Is() compatibility.
	InvalidConfigRuntimeModeError struct {
		Value RuntimeMode
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// DefaultRuntime sets the global default runtime mode
		DefaultRuntime RuntimeMode `json:"default_runtime" mapstructure:"default_runtime"`
		// PortWaitTimeout bounds readiness waits for service tasks
		PortWaitTimeout time.Duration `json:"port_wait_timeout" mapstructure:"port_wait_timeout"`
		// Packager overrides dependency install command lines
		Packager PackagerConfig `json:"packager" mapstructure:"packager"`
		// UI configures the user interface
		UI UIConfig `json:"ui" mapstructure:"ui"`
	}

	// PackagerConfig overrides the command lines used by packager.install tasks.
	// Empty values mean the built-in defaults.
	PackagerConfig struct {
		// PythonInstall is the command line for python modules
		PythonInstall string `json:"python_install" mapstructure:"python_install"`
		// NodeInstall is the command line for nodejs modules
		NodeInstall string `json:"node_install" mapstructure:"node_install"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables verbose output
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}
)

// Error implements the error interface.
func (e *InvalidConfigRuntimeModeError) Error() string {
	return fmt.Sprintf("invalid runtime mode %q (valid modes: %s, %s)", e.Value, RuntimeNative, RuntimeVirtual)
}

// Unwrap returns ErrInvalidConfigRuntimeMode for errors.Is() compatibility.
func (e *InvalidConfigRuntimeModeError) Unwrap() error { return ErrInvalidConfigRuntimeMode }

// Error implements the error interface.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid schemes: %s, %s, %s)",
		e.Value, ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// IsValid returns whether the RuntimeMode is one of the supported modes,
// and a list of validation errors if it is not.
func (m RuntimeMode) IsValid() (bool, []error) {
	switch m {
	case RuntimeNative, RuntimeVirtual:
		return true, nil
	default:
		return false, []error{&InvalidConfigRuntimeModeError{Value: m}}
	}
}

// IsValid returns whether the ColorScheme is one of the supported schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// IsValid returns whether the Config has valid fields, and a list of
// validation errors if it does not.
func (c *Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.DefaultRuntime.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if c.PortWaitTimeout <= 0 {
		errs = append(errs, fmt.Errorf("%w: %s (must be positive)", ErrInvalidPortWaitTimeout, c.PortWaitTimeout))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		DefaultRuntime:  RuntimeNative,
		PortWaitTimeout: 30 * time.Second,
		Packager: PackagerConfig{
			PythonInstall: "", // Will use the built-in pip command if empty
			NodeInstall:   "", // Will use the built-in npm command if empty
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}
