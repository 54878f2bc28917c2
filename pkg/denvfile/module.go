// SPDX-License-Identifier: MPL-2.0

package denvfile

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrInvalidModuleID is the sentinel error wrapped by InvalidModuleIDError.
	ErrInvalidModuleID = errors.New("invalid module identifier")

	// moduleIDRegex validates runtime module identifiers such as
	// "python-3.10", "nodejs-20", or "postgresql-16".
	moduleIDRegex = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-zA-Z0-9.]+)*$`)
)

type (
	// ModuleID identifies a runtime module the hosting environment must
	// provision, in "language-version" form (e.g. "python-3.10").
	ModuleID string

	// InvalidModuleIDError is returned when a ModuleID is empty or does
	// not match the expected "language-version" form.
	InvalidModuleIDError struct {
		Value ModuleID
	}
)

// Error implements the error interface.
func (e *InvalidModuleIDError) Error() string {
	return fmt.Sprintf("invalid module identifier %q (expected lowercase language-version form, e.g. \"python-3.10\")", e.Value)
}

// Unwrap returns ErrInvalidModuleID for errors.Is() compatibility.
func (e *InvalidModuleIDError) Unwrap() error { return ErrInvalidModuleID }

// Validate returns nil if the ModuleID is well-formed.
func (m ModuleID) Validate() error {
	if m == "" || !moduleIDRegex.MatchString(string(m)) {
		return &InvalidModuleIDError{Value: m}
	}
	return nil
}

// Language returns the language token of the module, i.e. everything
// before the first '-' ("python-3.10" -> "python"). Identifiers without
// a version suffix are returned unchanged.
func (m ModuleID) Language() string {
	s := string(m)
	if idx := strings.IndexByte(s, '-'); idx > 0 {
		return s[:idx]
	}
	return s
}

// Version returns the version token of the module, i.e. everything after
// the first '-', or "" when the identifier carries no version.
func (m ModuleID) Version() string {
	s := string(m)
	if idx := strings.IndexByte(s, '-'); idx > 0 {
		return s[idx+1:]
	}
	return ""
}

// String returns the string representation of the ModuleID.
func (m ModuleID) String() string { return string(m) }
