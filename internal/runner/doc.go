// SPDX-License-Identifier: MPL-2.0

// Package runner orchestrates workflow execution. It resolves a named
// workflow from a descriptor, runs its tasks sequentially or in parallel,
// dispatches each task type to the appropriate handler, and keeps
// long-running service tasks alive until the run is cancelled or one of
// them fails.
package runner
