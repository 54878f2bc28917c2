// SPDX-License-Identifier: MPL-2.0

package denvfile

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidPort is the sentinel error wrapped by InvalidPortError.
var ErrInvalidPort = errors.New("invalid port number")

type (
	// PortNumber represents a TCP port. Valid values are 1-65535;
	// the zero value means "unset".
	PortNumber int

	// InvalidPortError is returned when a PortNumber is outside the
	// valid 1-65535 range.
	InvalidPortError struct {
		Value PortNumber
	}

	// PortMapping maps a port the application listens on locally to the
	// port the hosting platform exposes externally. Mappings are static
	// and declared once per descriptor.
	PortMapping struct {
		// LocalPort is the port the application binds inside the environment.
		LocalPort PortNumber `toml:"local_port"`
		// ExternalPort is the port exposed to the outside world.
		ExternalPort PortNumber `toml:"external_port"`
	}
)

// Error implements the error interface.
func (e *InvalidPortError) Error() string {
	return fmt.Sprintf("invalid port number %d (must be in range 1-65535)", e.Value)
}

// Unwrap returns ErrInvalidPort for errors.Is() compatibility.
func (e *InvalidPortError) Unwrap() error { return ErrInvalidPort }

// Validate returns nil if the PortNumber is in the valid 1-65535 range.
func (p PortNumber) Validate() error {
	if p < 1 || p > 65535 {
		return &InvalidPortError{Value: p}
	}
	return nil
}

// IsSet returns true if the port has been assigned a non-zero value.
func (p PortNumber) IsSet() bool { return p != 0 }

// String returns the decimal string representation of the PortNumber.
func (p PortNumber) String() string { return strconv.Itoa(int(p)) }

// Validate checks that both sides of the mapping are valid port numbers.
func (m *PortMapping) Validate() error {
	if err := m.LocalPort.Validate(); err != nil {
		return fmt.Errorf("local_port: %w", err)
	}
	if err := m.ExternalPort.Validate(); err != nil {
		return fmt.Errorf("external_port: %w", err)
	}
	return nil
}

// String renders the mapping in "local->external" form.
func (m *PortMapping) String() string {
	return m.LocalPort.String() + "->" + m.ExternalPort.String()
}
