// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/denvhq/denv/pkg/denvfile"
)

var (
	initForce  bool
	initStdout bool

	// initCmd creates a new denvfile
	initCmd = &cobra.Command{
		Use:   "init",
		Short: "Create a new denvfile.toml in the current directory",
		Long: `Create a new denvfile.toml in the current directory with an example
setup: a python module, env vars, a port mapping, setup and server
workflows, and a deployment directive.`,
		RunE: runInit,
	}
)

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing denvfile")
	initCmd.Flags().BoolVar(&initStdout, "stdout", false, "print the scaffold instead of writing it")
}

func runInit(cmd *cobra.Command, args []string) error {
	content := denvfile.GenerateTOML(scaffoldDescriptor())

	if initStdout {
		fmt.Print(content)
		return nil
	}

	filename := descriptorPath()
	if _, err := os.Stat(filename); err == nil && !initForce {
		return fmt.Errorf("file '%s' already exists. Use --force to overwrite", filename)
	}

	if err := os.WriteFile(filename, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	absPath, _ := filepath.Abs(filename)
	fmt.Printf("%s Created %s\n", SuccessStyle.Render("✓"), absPath)
	fmt.Println()
	fmt.Println(SubtitleStyle.Render("Next steps:"))
	fmt.Println("  1. Edit the denvfile to match your project")
	fmt.Println("  2. Run 'denv workflows' to see the defined workflows")
	fmt.Println("  3. Run 'denv run <workflow>' to execute one")

	return nil
}

// scaffoldDescriptor builds the example descriptor written by denv init.
func scaffoldDescriptor() *denvfile.Denvfile {
	return &denvfile.Denvfile{
		Modules: []denvfile.ModuleID{"python-3.10", "web"},
		Env: map[denvfile.EnvVarName]string{
			"FLASK_APP": "app.py",
			"FLASK_ENV": "development",
		},
		Ports: []denvfile.PortMapping{
			{LocalPort: 3000, ExternalPort: 3000},
			{LocalPort: 5000, ExternalPort: 80},
		},
		Deployment: &denvfile.Deployment{
			Target: denvfile.TargetAutoscale,
			Build:  []string{"pip install -r requirements.txt"},
			Run:    []string{"gunicorn app:app"},
		},
		Workflows: []denvfile.Workflow{
			{
				Name: "Setup",
				Tasks: []denvfile.Task{
					{Type: denvfile.TaskPackagerInstall, Args: "python"},
				},
			},
			{
				Name: "Run Server",
				Tasks: []denvfile.Task{
					{Type: denvfile.TaskWorkflowRun, Args: "Setup"},
					{
						Type:        denvfile.TaskShellExec,
						Args:        "python app.py",
						WaitForPort: 5000,
					},
				},
			},
		},
	}
}
