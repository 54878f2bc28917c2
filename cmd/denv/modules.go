// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os/exec"

	"github.com/spf13/cobra"
)

var (
	modulesCheck bool

	// modulesCmd lists the denvfile's runtime modules
	modulesCmd = &cobra.Command{
		Use:   "modules",
		Short: "List the denvfile's runtime modules",
		Long: `List the denvfile's runtime modules.

Module IDs encode a language and an optional version, like python-3.10
or nodejs-20. With --check, the matching toolchain binary is looked up
in PATH to report whether it is installed.`,
		RunE: runModules,
	}
)

// toolchainBinaries maps module languages to the binary that proves the
// toolchain is installed. Languages not listed have no local toolchain.
var toolchainBinaries = map[string]string{
	"python":     "python3",
	"nodejs":     "node",
	"go":         "go",
	"ruby":       "ruby",
	"rust":       "cargo",
	"java":       "java",
	"postgresql": "psql",
}

func init() {
	modulesCmd.Flags().BoolVar(&modulesCheck, "check", false, "look up each module's toolchain binary in PATH")
}

func runModules(cmd *cobra.Command, args []string) error {
	d, err := loadDescriptor()
	if err != nil {
		return err
	}

	if len(d.Modules) == 0 {
		fmt.Println(SubtitleStyle.Render("No modules declared"))
		return nil
	}

	fmt.Println(TitleStyle.Render("Modules"))
	fmt.Println()

	for _, id := range d.Modules {
		line := "  " + CmdStyle.Render(string(id))
		if version := id.Version(); version != "" {
			line += "  " + SubtitleStyle.Render(fmt.Sprintf("(%s %s)", id.Language(), version))
		}

		if modulesCheck {
			line += "  " + toolchainStatus(id.Language())
		}
		fmt.Println(line)
	}

	return nil
}

// toolchainStatus reports whether the toolchain binary for a language is
// installed on this system.
func toolchainStatus(language string) string {
	binary, ok := toolchainBinaries[language]
	if !ok {
		return SubtitleStyle.Render("no toolchain check")
	}
	if _, err := exec.LookPath(binary); err != nil {
		return WarningStyle.Render(binary + " not found")
	}
	return SuccessStyle.Render(binary + " installed")
}
