// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/denvhq/denv/internal/config"
	"github.com/denvhq/denv/internal/issue"
)

// configCmd manages denv configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage denv configuration",
	Long: `Manage denv configuration.

Configuration is stored in:
  - Linux: ~/.config/denv/config.toml
  - macOS: ~/Library/Application Support/denv/config.toml
  - Windows: %APPDATA%\denv\config.toml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig()
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfigFile()
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath()
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output raw configuration as TOML",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Bypass the process-wide cache so the dump reflects the
			// file as it is right now.
			cfg, err := config.NewProvider().Load(cmd.Context(), config.LoadOptions{
				ConfigFilePath: cfgFile,
			})
			if err != nil {
				renderIssue(issue.ConfigLoadFailedId)
				return err
			}
			fmt.Print(config.GenerateTOML(cfg))
			return nil
		},
	})
}

func showConfig() error {
	cfg, err := config.Load()
	if err != nil {
		renderIssue(issue.ConfigLoadFailedId)
		return err
	}

	fmt.Println(TitleStyle.Render("Current Configuration"))
	fmt.Println()

	if path := config.ResolvedFilePath(); path != "" {
		fmt.Printf("%s: %s\n", CmdStyle.Render("Config file"), path)
	} else {
		fmt.Printf("%s: %s\n", CmdStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Println()

	fmt.Printf("%s: %s\n", CmdStyle.Render("default_runtime"), SuccessStyle.Render(string(cfg.DefaultRuntime)))
	fmt.Printf("%s: %s\n", CmdStyle.Render("port_wait_timeout"), SuccessStyle.Render(cfg.PortWaitTimeout.String()))
	fmt.Printf("%s: %s\n", CmdStyle.Render("packager.python_install"), SuccessStyle.Render(orDefault(cfg.Packager.PythonInstall)))
	fmt.Printf("%s: %s\n", CmdStyle.Render("packager.node_install"), SuccessStyle.Render(orDefault(cfg.Packager.NodeInstall)))
	fmt.Printf("%s: %s\n", CmdStyle.Render("ui.color_scheme"), SuccessStyle.Render(string(cfg.UI.ColorScheme)))
	fmt.Printf("%s: %v\n", CmdStyle.Render("ui.verbose"), cfg.UI.Verbose)

	return nil
}

func orDefault(value string) string {
	if value == "" {
		return "(built-in default)"
	}
	return value
}

func initConfigFile() error {
	if err := config.CreateDefaultConfig(); err != nil {
		return err
	}

	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	cfgPath := filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt)
	fmt.Printf("%s Config file ready at %s\n", SuccessStyle.Render("✓"), cfgPath)
	return nil
}

func showConfigPath() error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	cfgPath := filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt)
	fmt.Println(cfgPath)

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, SubtitleStyle.Render("(file does not exist yet; run 'denv config init')"))
	}
	return nil
}
