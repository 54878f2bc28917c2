// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/denvhq/denv/internal/issue"
	"github.com/denvhq/denv/internal/runner"
)

var (
	deployDryRun    bool
	deploySkipBuild bool

	// deployCmd executes the denvfile's deployment directive
	deployCmd = &cobra.Command{
		Use:   "deploy",
		Short: "Execute the denvfile's deployment directive",
		Long: `Execute the denvfile's deployment directive.

Build commands run first and abort the deployment if any of them fails;
the run commands follow. Use --dry-run to print the plan without
executing anything.`,
		RunE: runDeploy,
	}
)

func init() {
	deployCmd.Flags().BoolVar(&deployDryRun, "dry-run", false, "print the deployment plan without executing it")
	deployCmd.Flags().BoolVar(&deploySkipBuild, "skip-build", false, "skip the build commands")
}

func runDeploy(cmd *cobra.Command, args []string) error {
	d, err := loadDescriptor()
	if err != nil {
		return err
	}

	opts, err := buildRunnerOptions(d)
	if err != nil {
		return err
	}

	deployer := runner.NewDeployer(d, opts)
	if err := deployer.Deploy(cmd.Context(), runner.DeployOptions{
		DryRun:    deployDryRun,
		SkipBuild: deploySkipBuild,
	}); err != nil {
		if errors.Is(err, runner.ErrNoDeployment) {
			renderIssue(issue.DeploymentMissingId)
		}
		return err
	}

	return nil
}
