// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for denv.
//
// This package implements the Cobra command hierarchy for the denv CLI,
// including the root command and subcommands for running workflows,
// validating descriptors, deploying, and inspecting descriptor contents.
package cmd
