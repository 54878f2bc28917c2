// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/denvhq/denv/internal/config"
	"github.com/denvhq/denv/internal/issue"
	"github.com/denvhq/denv/pkg/denvfile"
)

// descriptorPath resolves the denvfile path: the --file flag wins,
// otherwise denvfile.toml in the current directory.
func descriptorPath() string {
	if descriptorFile != "" {
		return descriptorFile
	}
	return denvfile.DenvfileName
}

// loadDescriptor loads and validates the denvfile, rendering the matching
// issue card on failure before returning the error.
func loadDescriptor() (*denvfile.Denvfile, error) {
	path := descriptorPath()

	if !fileExistsCheck(path) {
		renderIssue(issue.DenvfileNotFoundId)
		return nil, issue.NewErrorContext().
			WithOperation("load denvfile").
			WithResource(path).
			WithSuggestion("Run 'denv init' to create one").
			WithSuggestion("Use --file to point at an existing denvfile").
			Wrap(fmt.Errorf("denvfile not found: %s", path)).
			BuildError()
	}

	d, err := denvfile.Parse(path)
	if err != nil {
		renderIssue(issue.DenvfileParseErrorId)
		return nil, issue.NewErrorContext().
			WithOperation("parse denvfile").
			WithResource(path).
			WithSuggestion("Run 'denv validate' for details").
			Wrap(err).
			BuildError()
	}

	return d, nil
}

// renderIssue prints the rendered issue card for the given id to stderr.
// Rendering failures are ignored: the raw error still reaches the user.
func renderIssue(id issue.Id) {
	is := issue.Get(id)
	if is == nil {
		return
	}
	rendered, err := is.Render(issueStyle())
	if err != nil {
		return
	}
	fmt.Fprint(os.Stderr, rendered)
}

// issueStyle maps the configured color scheme to a glamour style name.
func issueStyle() string {
	switch config.Get().UI.ColorScheme {
	case config.ColorSchemeLight:
		return "light"
	case config.ColorSchemeDark:
		return "dark"
	default:
		return "auto"
	}
}

// fileExistsCheck checks if a file exists and is not a directory
func fileExistsCheck(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}
