// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"errors"
	"fmt"

	"github.com/dominikbraun/graph"

	"github.com/denvhq/denv/pkg/denvfile"
)

// ErrWorkflowCycle is the sentinel error wrapped by WorkflowCycleError.
var ErrWorkflowCycle = errors.New("workflow reference cycle")

// WorkflowCycleError is returned when workflow.run tasks form a cycle,
// which would make a run never terminate.
type WorkflowCycleError struct {
	From denvfile.WorkflowName
	To   denvfile.WorkflowName
}

// Error implements the error interface.
func (e *WorkflowCycleError) Error() string {
	return fmt.Sprintf("workflow %q cannot reference %q: the reference closes a cycle", e.From, e.To)
}

// Unwrap returns ErrWorkflowCycle so callers can use errors.Is for programmatic detection.
func (e *WorkflowCycleError) Unwrap() error { return ErrWorkflowCycle }

// ValidateReferences builds the directed graph of workflow.run references
// and rejects descriptors whose references are cyclic. Unknown reference
// targets are already rejected by descriptor validation, so only edge
// insertion can fail here.
func ValidateReferences(d *denvfile.Denvfile) error {
	g := graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles())

	for i := range d.Workflows {
		if err := g.AddVertex(string(d.Workflows[i].Name)); err != nil {
			return fmt.Errorf("failed to add workflow %q to reference graph: %w", d.Workflows[i].Name, err)
		}
	}

	for i := range d.Workflows {
		wf := &d.Workflows[i]
		for _, ref := range wf.ReferencedWorkflows() {
			err := g.AddEdge(string(wf.Name), string(ref))
			switch {
			case err == nil:
			case errors.Is(err, graph.ErrEdgeAlreadyExists):
				// The same target may be referenced by several tasks.
			case errors.Is(err, graph.ErrEdgeCreatesCycle):
				return &WorkflowCycleError{From: wf.Name, To: ref}
			default:
				return fmt.Errorf("failed to add reference %q -> %q: %w", wf.Name, ref, err)
			}
		}
	}

	return nil
}
