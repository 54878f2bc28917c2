// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// workflowsCmd lists the workflows the denvfile defines
var workflowsCmd = &cobra.Command{
	Use:   "workflows",
	Short: "List the workflows the denvfile defines",
	RunE:  runWorkflows,
}

func runWorkflows(cmd *cobra.Command, args []string) error {
	d, err := loadDescriptor()
	if err != nil {
		return err
	}

	if len(d.Workflows) == 0 {
		fmt.Println(SubtitleStyle.Render("No workflows defined"))
		return nil
	}

	fmt.Println(TitleStyle.Render("Workflows"))
	fmt.Println()

	for i := range d.Workflows {
		wf := &d.Workflows[i]
		details := fmt.Sprintf("(%s, %d task(s))", wf.EffectiveMode(), len(wf.Tasks))
		fmt.Printf("  %s %s\n", CmdStyle.Render(string(wf.Name)), SubtitleStyle.Render(details))
		if wf.Author != "" {
			fmt.Printf("    %s %s\n", SubtitleStyle.Render("author:"), wf.Author)
		}
		if refs := wf.ReferencedWorkflows(); len(refs) > 0 {
			fmt.Printf("    %s", SubtitleStyle.Render("references:"))
			for _, ref := range refs {
				fmt.Printf(" %s", CmdStyle.Render(string(ref)))
			}
			fmt.Println()
		}
	}

	return nil
}
