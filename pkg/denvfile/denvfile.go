// SPDX-License-Identifier: MPL-2.0

package denvfile

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// DenvfileName is the standard file name for a descriptor.
const DenvfileName = "denvfile.toml"

// Denvfile represents the complete parsed development environment descriptor.
type Denvfile struct {
	// Modules is the set of runtime modules the environment provisions.
	Modules []ModuleID `toml:"modules,omitempty"`
	// Env contains environment variables applied to every workflow and
	// deployment command.
	Env map[EnvVarName]string `toml:"env,omitempty"`
	// Ports is the static port mapping table.
	Ports []PortMapping `toml:"ports,omitempty"`
	// Deployment is the platform build/run directive (optional).
	Deployment *Deployment `toml:"deployment,omitempty"`
	// Workflows defines the named workflows.
	Workflows []Workflow `toml:"workflows,omitempty"`

	// FilePath stores the path this descriptor was loaded from (not in TOML).
	FilePath string `toml:"-"`
}

// Parse reads and parses a descriptor from the given path.
func Parse(path string) (*Denvfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read descriptor at %s: %w", path, err)
	}
	return ParseBytes(data, path)
}

// ParseBytes parses descriptor content from bytes. The path parameter is
// used for error messages and for resolving relative paths later on.
// Unknown fields are rejected so typos surface at load time.
func ParseBytes(data []byte, path string) (*Denvfile, error) {
	var d Denvfile

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&d); err != nil {
		var se *toml.StrictMissingError
		if errors.As(err, &se) {
			return nil, fmt.Errorf("failed to parse descriptor at %s: unknown fields:\n%s", path, se.String())
		}
		var de *toml.DecodeError
		if errors.As(err, &de) {
			row, col := de.Position()
			return nil, fmt.Errorf("failed to parse descriptor at %s:%d:%d: %w", path, row, col, err)
		}
		return nil, fmt.Errorf("failed to parse descriptor at %s: %w", path, err)
	}

	d.FilePath = path

	if err := d.validate(); err != nil {
		return nil, fmt.Errorf("invalid descriptor at %s: %w", path, err)
	}

	return &d, nil
}

// validate checks the descriptor against its structural invariants:
// well-formed module IDs and env names, unique workflow names, valid
// task types, resolvable workflow.run references, in-range unique port
// mappings, and a usable deployment directive.
func (d *Denvfile) validate() error {
	for i, m := range d.Modules {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("modules[%d]: %w", i, err)
		}
	}

	if err := validateEnv("env", d.Env); err != nil {
		return err
	}

	// Workflow names must be unique within the file.
	seen := make(map[WorkflowName]int, len(d.Workflows))
	for i := range d.Workflows {
		w := &d.Workflows[i]
		if err := w.Validate(); err != nil {
			return err
		}
		if firstIdx, dup := seen[w.Name]; dup {
			return fmt.Errorf("duplicate workflow name %q (workflows #%d and #%d)", w.Name, firstIdx+1, i+1)
		}
		seen[w.Name] = i
	}

	// Every workflow.run task must reference an existing workflow.
	for i := range d.Workflows {
		w := &d.Workflows[i]
		for _, ref := range w.ReferencedWorkflows() {
			if _, ok := seen[ref]; !ok {
				return fmt.Errorf("workflow %q runs unknown workflow %q", w.Name, ref)
			}
		}
	}

	// Port mappings must be valid and unique on the local side.
	seenPorts := make(map[PortNumber]int, len(d.Ports))
	for i := range d.Ports {
		if err := d.Ports[i].Validate(); err != nil {
			return fmt.Errorf("ports[%d]: %w", i, err)
		}
		local := d.Ports[i].LocalPort
		if firstIdx, dup := seenPorts[local]; dup {
			return fmt.Errorf("ports[%d]: duplicate local_port %s (same as ports[%d])", i, local, firstIdx)
		}
		seenPorts[local] = i
	}

	if d.Deployment != nil {
		if err := d.Deployment.Validate(); err != nil {
			return fmt.Errorf("deployment: %w", err)
		}
	}

	return nil
}

// GetWorkflow finds a workflow by its name (names may contain spaces,
// e.g. "Quiz App"). Returns nil when no workflow matches.
func (d *Denvfile) GetWorkflow(name WorkflowName) *Workflow {
	for i := range d.Workflows {
		if d.Workflows[i].Name == name {
			return &d.Workflows[i]
		}
	}
	return nil
}

// ListWorkflows returns all workflow names in declaration order.
func (d *Denvfile) ListWorkflows() []WorkflowName {
	names := make([]WorkflowName, len(d.Workflows))
	for i := range d.Workflows {
		names[i] = d.Workflows[i].Name
	}
	return names
}

// GetMapping returns the port mapping for the given local port, or nil
// when the port is not declared.
func (d *Denvfile) GetMapping(local PortNumber) *PortMapping {
	for i := range d.Ports {
		if d.Ports[i].LocalPort == local {
			return &d.Ports[i]
		}
	}
	return nil
}

// Languages returns the distinct language tokens of the declared modules,
// in declaration order.
func (d *Denvfile) Languages() []string {
	seen := make(map[string]bool, len(d.Modules))
	var langs []string
	for _, m := range d.Modules {
		lang := m.Language()
		if !seen[lang] {
			seen[lang] = true
			langs = append(langs, lang)
		}
	}
	return langs
}
