// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"testing"

	"github.com/denvhq/denv/pkg/denvfile"
)

// TestScaffoldDescriptorIsValid verifies the denv init scaffold survives a
// full parse and validation round trip.
func TestScaffoldDescriptorIsValid(t *testing.T) {
	content := denvfile.GenerateTOML(scaffoldDescriptor())

	d, err := denvfile.ParseBytes([]byte(content), denvfile.DenvfileName)
	if err != nil {
		t.Fatalf("scaffold does not parse: %v\n%s", err, content)
	}

	if wf := d.GetWorkflow("Run Server"); wf == nil {
		t.Error("scaffold should define the 'Run Server' workflow")
	}
	if d.Deployment == nil || d.Deployment.Target != denvfile.TargetAutoscale {
		t.Error("scaffold should define an autoscale deployment")
	}
	if mapping := d.GetMapping(5000); mapping == nil || mapping.ExternalPort != 80 {
		t.Error("scaffold should map local port 5000 to external port 80")
	}
}
