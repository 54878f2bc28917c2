// SPDX-License-Identifier: MPL-2.0

package denvfile

import (
	"fmt"
	"sort"
	"strings"
)

// GenerateTOML renders a descriptor back to TOML. The output is stable
// (env tables are emitted in key order) and round-trips through Parse.
// Used by `denv init` and `denv config`-style scaffolding.
func GenerateTOML(d *Denvfile) string {
	var sb strings.Builder

	sb.WriteString("# denvfile - development environment descriptor\n")
	sb.WriteString("# See https://github.com/denvhq/denv for documentation.\n\n")

	if len(d.Modules) > 0 {
		sb.WriteString("modules = [")
		for i, m := range d.Modules {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%q", m)
		}
		sb.WriteString("]\n")
	}

	writeEnvTable(&sb, "env", d.Env)

	for i := range d.Ports {
		sb.WriteString("\n[[ports]]\n")
		fmt.Fprintf(&sb, "local_port = %d\n", d.Ports[i].LocalPort)
		fmt.Fprintf(&sb, "external_port = %d\n", d.Ports[i].ExternalPort)
	}

	if d.Deployment != nil {
		sb.WriteString("\n[deployment]\n")
		fmt.Fprintf(&sb, "target = %q\n", d.Deployment.Target)
		if len(d.Deployment.Build) > 0 {
			sb.WriteString("build = [")
			for i, cmd := range d.Deployment.Build {
				if i > 0 {
					sb.WriteString(", ")
				}
				fmt.Fprintf(&sb, "%q", cmd)
			}
			sb.WriteString("]\n")
		}
		sb.WriteString("run = [")
		for i, cmd := range d.Deployment.Run {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "%q", cmd)
		}
		sb.WriteString("]\n")
	}

	for i := range d.Workflows {
		w := &d.Workflows[i]
		sb.WriteString("\n[[workflows]]\n")
		fmt.Fprintf(&sb, "name = %q\n", w.Name)
		if w.Author != "" {
			fmt.Fprintf(&sb, "author = %q\n", w.Author)
		}
		if w.Mode != "" {
			fmt.Fprintf(&sb, "mode = %q\n", w.Mode)
		}
		writeEnvTable(&sb, "workflows.env", w.Env)

		for j := range w.Tasks {
			t := &w.Tasks[j]
			sb.WriteString("\n[[workflows.tasks]]\n")
			fmt.Fprintf(&sb, "type = %q\n", t.Type)
			if t.Args != "" {
				fmt.Fprintf(&sb, "args = %q\n", t.Args)
			}
			if t.WaitForPort.IsSet() {
				fmt.Fprintf(&sb, "wait_for_port = %d\n", t.WaitForPort)
			}
			if t.Timeout.IsSet() {
				fmt.Fprintf(&sb, "timeout = %q\n", t.Timeout.Std())
			}
			writeEnvTable(&sb, "workflows.tasks.env", t.Env)
		}
	}

	return sb.String()
}

// writeEnvTable emits a [section] table with keys in sorted order.
// Nothing is written when the env map is empty.
func writeEnvTable(sb *strings.Builder, section string, env map[EnvVarName]string) {
	if len(env) == 0 {
		return
	}
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	fmt.Fprintf(sb, "\n[%s]\n", section)
	for _, k := range keys {
		fmt.Fprintf(sb, "%s = %q\n", k, env[EnvVarName(k)])
	}
}
