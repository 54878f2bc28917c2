// SPDX-License-Identifier: MPL-2.0

package denvfile

import (
	"errors"
	"strings"
	"testing"
)

func TestDeploymentTarget_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		target  DeploymentTarget
		wantErr bool
	}{
		{"autoscale", TargetAutoscale, false},
		{"vm", TargetVM, false},
		{"static", TargetStatic, false},
		{"empty is invalid", DeploymentTarget(""), true},
		{"unknown is invalid", DeploymentTarget("kubernetes"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.target.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("DeploymentTarget(%q).Validate() returned nil, want error", tt.target)
				}
				if !errors.Is(err, ErrInvalidDeploymentTarget) {
					t.Errorf("error should wrap ErrInvalidDeploymentTarget, got: %v", err)
				}
			} else if err != nil {
				t.Errorf("DeploymentTarget(%q).Validate() returned unexpected error: %v", tt.target, err)
			}
		})
	}
}

func TestDeployment_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		deployment Deployment
		wantErr    string
	}{
		{
			"build and run",
			Deployment{
				Target: TargetAutoscale,
				Build:  []string{"pip install -r requirements.txt"},
				Run:    []string{"gunicorn --bind 0.0.0.0:5000 app:app"},
			},
			"",
		},
		{
			"missing build",
			Deployment{Target: TargetVM, Run: []string{"python app.py"}},
			"at least one build command",
		},
		{
			"missing run",
			Deployment{Target: TargetAutoscale, Build: []string{"make"}},
			"at least one run command",
		},
		{
			"bad target",
			Deployment{Target: "lambda", Build: []string{"make"}, Run: []string{"python app.py"}},
			"invalid deployment target",
		},
		{
			"blank build command",
			Deployment{Target: TargetAutoscale, Build: []string{"make", "  "}, Run: []string{"./server"}},
			"build command #2",
		},
		{
			"blank run command",
			Deployment{Target: TargetAutoscale, Build: []string{"make"}, Run: []string{""}},
			"run command #1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.deployment.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Deployment.Validate() returned unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Deployment.Validate() returned nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q should mention %q", err.Error(), tt.wantErr)
			}
		})
	}
}
