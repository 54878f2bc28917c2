// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"

	"github.com/denvhq/denv/internal/issue"
)

const (
	// AppName is the application name.
	AppName = "denv"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "toml"
)

// ConfigDir returns the denv configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	// Allow tests to override the config directory
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// loadWithOptions performs option-driven config loading without mutating
// package-level cache state. Callers that want caching can wrap this function.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	v.SetConfigType(ConfigFileExt)

	// Set defaults
	defaults := DefaultConfig()
	v.SetDefault("default_runtime", defaults.DefaultRuntime)
	v.SetDefault("port_wait_timeout", defaults.PortWaitTimeout)
	v.SetDefault("packager.python_install", defaults.Packager.PythonInstall)
	v.SetDefault("packager.node_install", defaults.Packager.NodeInstall)
	v.SetDefault("ui.color_scheme", defaults.UI.ColorScheme)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)

	resolvedPath := ""

	// If a custom config file path is set via --config flag, use it exclusively.
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				WithSuggestion("Use 'denv config show' to see default configuration").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		if err := readTOMLIntoViper(v, opts.ConfigFilePath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Check that the file contains valid TOML syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("See 'denv config --help' for configuration options").
				Wrap(err).
				BuildError()
		}
		resolvedPath = opts.ConfigFilePath
	} else {
		// Get config directory
		cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
		if err != nil {
			return nil, "", err
		}

		// Try to load the config file from the config directory, then the
		// current directory. If neither exists, defaults apply (no error).
		tomlPath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
		localPath := ConfigFileName + "." + ConfigFileExt

		switch {
		case fileExists(tomlPath):
			if err := readTOMLIntoViper(v, tomlPath); err != nil {
				return nil, "", issue.NewErrorContext().
					WithOperation("load configuration").
					WithResource(tomlPath).
					WithSuggestion("Check that the file contains valid TOML syntax").
					WithSuggestion("Verify the configuration values match the expected schema").
					WithSuggestion("See 'denv config --help' for configuration options").
					Wrap(err).
					BuildError()
			}
			resolvedPath = tomlPath
		case fileExists(localPath):
			if err := readTOMLIntoViper(v, localPath); err != nil {
				return nil, "", issue.NewErrorContext().
					WithOperation("load configuration").
					WithResource(localPath).
					WithSuggestion("Check that the file contains valid TOML syntax").
					WithSuggestion("Verify the configuration values match the expected schema").
					WithSuggestion("See 'denv config --help' for configuration options").
					Wrap(err).
					BuildError()
			}
			resolvedPath = localPath
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	// Validate constraints Viper cannot express: the runtime mode and color
	// scheme vocabularies and the timeout sign.
	if valid, errs := cfg.IsValid(); !valid {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Set default_runtime to 'native' or 'virtual'").
			WithSuggestion("Set ui.color_scheme to 'auto', 'dark' or 'light'").
			WithSuggestion("Use a positive duration string for port_wait_timeout, like '30s'").
			Wrap(errors.Join(errs...)).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

// readTOMLIntoViper reads a TOML file and merges its contents into Viper,
// preserving defaults for keys the file does not set.
func readTOMLIntoViper(v *viper.Viper, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := v.MergeConfig(f); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// EnsureConfigDir creates the config directory if it doesn't exist
func EnsureConfigDir() error {
	cfgDir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(cfgDir, 0o755)
}

// CreateDefaultConfig creates a default config file if it doesn't exist
func CreateDefaultConfig() error {
	cfgDir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	cfgPath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)

	// Check if file already exists
	if _, err := os.Stat(cfgPath); err == nil {
		return nil // File exists
	}

	defaults := DefaultConfig()
	tomlContent := GenerateTOML(defaults)

	if err := os.WriteFile(cfgPath, []byte(tomlContent), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Save writes the current configuration to file
func Save(cfg *Config) error {
	cfgDir, err := ConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	cfgPath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)

	tomlContent := GenerateTOML(cfg)

	if err := os.WriteFile(cfgPath, []byte(tomlContent), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateTOML generates a TOML representation of the configuration
func GenerateTOML(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("# denv configuration file\n")
	sb.WriteString("# See https://github.com/denvhq/denv for documentation.\n\n")

	sb.WriteString(fmt.Sprintf("default_runtime = %q\n", cfg.DefaultRuntime))
	sb.WriteString(fmt.Sprintf("port_wait_timeout = %q\n", cfg.PortWaitTimeout.String()))

	sb.WriteString("\n[packager]\n")
	sb.WriteString(fmt.Sprintf("python_install = %q\n", cfg.Packager.PythonInstall))
	sb.WriteString(fmt.Sprintf("node_install = %q\n", cfg.Packager.NodeInstall))

	sb.WriteString("\n[ui]\n")
	sb.WriteString(fmt.Sprintf("color_scheme = %q\n", cfg.UI.ColorScheme))
	sb.WriteString(fmt.Sprintf("verbose = %v\n", cfg.UI.Verbose))

	return sb.String()
}
