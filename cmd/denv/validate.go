// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/denvhq/denv/internal/issue"
	"github.com/denvhq/denv/internal/runner"
	"github.com/denvhq/denv/internal/runtime"
	"github.com/denvhq/denv/pkg/denvfile"
)

// validateCmd checks the denvfile without running anything
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the denvfile without running anything",
	Long: `Validate the denvfile without running anything.

Checks TOML syntax, the schema (unknown fields are rejected), module ID
and env var name formats, port ranges, workflow and task rules, workflow
reference resolution and cycles, the deployment directive, and the shell
syntax of every command line.`,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	d, err := loadDescriptor()
	if err != nil {
		return err
	}

	// Parse-level validation passed; check the reference graph too.
	if err := runner.ValidateReferences(d); err != nil {
		if errors.Is(err, runner.ErrWorkflowCycle) {
			renderIssue(issue.WorkflowCycleId)
		}
		return err
	}

	if err := validateCommandSyntax(d); err != nil {
		return err
	}

	fmt.Printf("%s %s is valid\n", SuccessStyle.Render("✓"), CmdStyle.Render(descriptorPath()))
	fmt.Printf("  %s %d, %s %d, %s %d\n",
		SubtitleStyle.Render("modules:"), len(d.Modules),
		SubtitleStyle.Render("ports:"), len(d.Ports),
		SubtitleStyle.Render("workflows:"), len(d.Workflows))
	if d.Deployment != nil {
		fmt.Printf("  %s %s\n", SubtitleStyle.Render("deployment:"), d.Deployment.Target)
	}
	return nil
}

// validateCommandSyntax parses every command line in the descriptor with
// the built-in shell so malformed commands are caught before a run.
func validateCommandSyntax(d *denvfile.Denvfile) error {
	rt := runtime.NewVirtualRuntime()

	check := func(commandLine string) error {
		return rt.Validate(runtime.NewExecutionContext(commandLine, d))
	}

	for _, wf := range d.Workflows {
		for i, task := range wf.Tasks {
			if task.Type != denvfile.TaskShellExec {
				continue
			}
			if err := check(task.Args); err != nil {
				return fmt.Errorf("workflow %q task #%d: %w", wf.Name, i+1, err)
			}
		}
	}

	if d.Deployment != nil {
		for i, cmd := range d.Deployment.Build {
			if err := check(cmd); err != nil {
				return fmt.Errorf("deployment build command #%d: %w", i+1, err)
			}
		}
		for i, cmd := range d.Deployment.Run {
			if err := check(cmd); err != nil {
				return fmt.Errorf("deployment run command #%d: %w", i+1, err)
			}
		}
	}

	return nil
}
