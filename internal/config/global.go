// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"sync"
)

var (
	mu sync.Mutex

	// configDirOverride allows tests to override the config directory.
	// This is necessary because os.UserHomeDir() doesn't reliably respect
	// the HOME environment variable on all platforms (e.g., macOS in CI).
	configDirOverride string

	// configFilePathOverride forces loading from a specific file, set by
	// the --config flag.
	configFilePathOverride string

	// cached is the result of the last successful Load.
	cached *Config

	// cachedPath is the file the cached config was loaded from.
	cachedPath string
)

// Load loads the configuration, caching the result for Get. Subsequent
// calls reload only after Reset or an override change.
func Load() (*Config, error) {
	mu.Lock()
	defer mu.Unlock()

	if cached != nil {
		return cached, nil
	}

	cfg, resolvedPath, err := loadWithOptions(context.Background(), LoadOptions{
		ConfigFilePath: configFilePathOverride,
		ConfigDirPath:  configDirOverride,
	})
	if err != nil {
		return nil, err
	}

	cached = cfg
	cachedPath = resolvedPath
	return cfg, nil
}

// Get returns the cached configuration, loading it on first use.
// Load errors fall back to defaults; callers that need the error use Load.
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// ResolvedFilePath returns the path of the config file the cached
// configuration was loaded from. Empty means defaults are in effect.
func ResolvedFilePath() string {
	mu.Lock()
	defer mu.Unlock()
	return cachedPath
}

// SetConfigFilePathOverride forces loading from a specific config file,
// dropping any cached configuration.
func SetConfigFilePathOverride(path string) {
	mu.Lock()
	defer mu.Unlock()
	configFilePathOverride = path
	cached = nil
	cachedPath = ""
}

// SetConfigDirOverride sets a custom config directory path.
// This is primarily intended for testing to bypass os.UserHomeDir() which
// doesn't reliably respect the HOME env var on all platforms (e.g., macOS in CI).
func SetConfigDirOverride(dir string) {
	mu.Lock()
	defer mu.Unlock()
	configDirOverride = dir
	cached = nil
	cachedPath = ""
}

// Reset clears overrides and the cache. Call from test cleanup to restore defaults.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	configDirOverride = ""
	configFilePathOverride = ""
	cached = nil
	cachedPath = ""
}
