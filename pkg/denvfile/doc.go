// SPDX-License-Identifier: MPL-2.0

// Package denvfile defines the schema, parsing, and validation for
// denvfile.toml development environment descriptors.
//
// A descriptor declares the runtime modules an environment provisions,
// the named workflows that drive it, a port mapping table, and an
// optional deployment directive. The descriptor is loaded once and is
// immutable for the lifetime of the process.
package denvfile
