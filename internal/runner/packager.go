// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/denvhq/denv/pkg/denvfile"
)

// Default install command lines per language. They can be overridden
// through the user config.
const (
	DefaultPythonInstall = "pip install -r requirements.txt"
	DefaultNodeInstall   = "npm install"
)

// Manifest files that signal a project actually has dependencies to install.
const (
	pythonManifest = "requirements.txt"
	nodeManifest   = "package.json"
)

// ErrUnsupportedLanguage is the sentinel error wrapped by UnsupportedLanguageError.
var ErrUnsupportedLanguage = errors.New("unsupported packager language")

// UnsupportedLanguageError is returned when a packager.install filter names
// a language with no known install procedure.
type UnsupportedLanguageError struct {
	Language string
}

// Error implements the error interface.
func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("no install procedure for language %q (supported: python, nodejs)", e.Language)
}

// Unwrap returns ErrUnsupportedLanguage so callers can use errors.Is for programmatic detection.
func (e *UnsupportedLanguageError) Unwrap() error { return ErrUnsupportedLanguage }

// Packager derives dependency install command lines from a descriptor's
// module list. Install commands are only produced for languages whose
// manifest file is present in the project directory.
type Packager struct {
	// Dir is the project directory searched for manifest files.
	Dir string
	// PythonInstall is the command line used for python modules.
	PythonInstall string
	// NodeInstall is the command line used for nodejs modules.
	NodeInstall string
}

// NewPackager creates a Packager for the given project directory with
// default install commands.
func NewPackager(dir string) *Packager {
	return &Packager{
		Dir:           dir,
		PythonInstall: DefaultPythonInstall,
		NodeInstall:   DefaultNodeInstall,
	}
}

// Commands returns the install command lines for the given modules. When
// languageFilter is non-empty, only modules of that language are
// considered. Languages appearing in several modules (such as python-3.10
// plus python-poetry) produce a single install command.
func (p *Packager) Commands(modules []denvfile.ModuleID, languageFilter string) ([]string, error) {
	seen := make(map[string]bool)
	var commands []string

	for _, id := range modules {
		lang := id.Language()
		if languageFilter != "" && lang != languageFilter {
			continue
		}
		if seen[lang] {
			continue
		}
		seen[lang] = true

		switch lang {
		case "python":
			if p.hasManifest(pythonManifest) {
				commands = append(commands, p.installCommand(p.PythonInstall, DefaultPythonInstall))
			}
		case "nodejs":
			if p.hasManifest(nodeManifest) {
				commands = append(commands, p.installCommand(p.NodeInstall, DefaultNodeInstall))
			}
		default:
			if languageFilter != "" {
				return nil, &UnsupportedLanguageError{Language: lang}
			}
			// Without a filter, unknown languages are simply skipped:
			// modules like web or postgresql-16 have nothing to install.
		}
	}

	return commands, nil
}

func (p *Packager) hasManifest(name string) bool {
	info, err := os.Stat(filepath.Join(p.Dir, name))
	return err == nil && !info.IsDir()
}

func (p *Packager) installCommand(configured, fallback string) string {
	if configured != "" {
		return configured
	}
	return fallback
}
