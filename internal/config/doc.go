// SPDX-License-Identifier: MPL-2.0

// Package config handles application configuration using Viper with TOML as the file format.
//
// Configuration is loaded from ~/.config/denv/config.toml (or XDG equivalent on Linux,
// ~/Library/Application Support/denv/config.toml on macOS, %APPDATA%\denv\config.toml
// on Windows). The package provides type-safe configuration access and supports runtime
// selection, port wait timeouts, packager command overrides, and UI settings.
package config
