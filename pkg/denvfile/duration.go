// SPDX-License-Identifier: MPL-2.0

package denvfile

import (
	"fmt"
	"time"
)

// Duration is a time.Duration that unmarshals from TOML strings in Go
// duration syntax ("30s", "2m"). The zero value means "unset"; negative
// and explicit zero values are rejected.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	if parsed <= 0 {
		return fmt.Errorf("invalid duration %q: must be a positive duration", string(text))
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// IsSet returns true if the duration has been assigned a non-zero value.
func (d Duration) IsSet() bool { return d != 0 }
