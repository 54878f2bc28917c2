// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"os"

	"github.com/denvhq/denv/internal/issue"
	"github.com/denvhq/denv/internal/runner"
	"github.com/denvhq/denv/internal/runtime"
	"github.com/denvhq/denv/pkg/denvfile"
)

// classifyRunError maps workflow execution failures to issue catalog IDs
// for CLI rendering. The zero Id means the failure has no dedicated issue
// card and the raw error message is enough on its own.
func classifyRunError(err error) issue.Id {
	switch {
	case errors.Is(err, runner.ErrWorkflowNotFound):
		return issue.WorkflowNotFoundId
	case errors.Is(err, runner.ErrWorkflowCycle):
		return issue.WorkflowCycleId
	case errors.Is(err, runner.ErrPortWaitTimeout):
		return issue.PortWaitTimeoutId
	case errors.Is(err, denvfile.ErrUnknownTaskType):
		return issue.UnknownTaskTypeId
	case errors.Is(err, runtime.ErrNoShell):
		return issue.ShellNotFoundId
	case errors.Is(err, runtime.ErrRuntimeNotAvailable):
		return issue.RuntimeNotAvailableId
	case errors.Is(err, os.ErrPermission):
		return issue.PermissionDeniedId
	default:
		return 0
	}
}
