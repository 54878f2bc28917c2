// SPDX-License-Identifier: MPL-2.0

package denvfile

import (
	"errors"
	"testing"
)

func TestEnvVarName_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		varName EnvVarName
		wantErr bool
	}{
		{"standard name", EnvVarName("FLASK_APP"), false},
		{"lowercase name", EnvVarName("port"), false},
		{"leading underscore", EnvVarName("_PRIVATE"), false},
		{"digits after first char", EnvVarName("VAR2"), false},
		{"empty is invalid", EnvVarName(""), true},
		{"leading digit is invalid", EnvVarName("2VAR"), true},
		{"dash is invalid", EnvVarName("FLASK-APP"), true},
		{"space is invalid", EnvVarName("FLASK APP"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.varName.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("EnvVarName(%q).Validate() returned nil, want error", tt.varName)
				}
				if !errors.Is(err, ErrInvalidEnvVarName) {
					t.Errorf("error should wrap ErrInvalidEnvVarName, got: %v", err)
				}
				var nameErr *InvalidEnvVarNameError
				if !errors.As(err, &nameErr) {
					t.Errorf("error should be *InvalidEnvVarNameError, got: %T", err)
				}
			} else if err != nil {
				t.Errorf("EnvVarName(%q).Validate() returned unexpected error: %v", tt.varName, err)
			}
		})
	}
}

func TestEnvVars(t *testing.T) {
	t.Parallel()

	if got := EnvVars(nil); got != nil {
		t.Errorf("EnvVars(nil) = %v, want nil", got)
	}
	if got := EnvVars(map[EnvVarName]string{}); got != nil {
		t.Errorf("EnvVars(empty) = %v, want nil", got)
	}

	env := map[EnvVarName]string{
		"FLASK_APP": "app.py",
		"FLASK_ENV": "development",
	}
	got := EnvVars(env)
	if len(got) != 2 {
		t.Fatalf("EnvVars() returned %d entries, want 2", len(got))
	}
	if got["FLASK_APP"] != "app.py" {
		t.Errorf("EnvVars()[FLASK_APP] = %q, want %q", got["FLASK_APP"], "app.py")
	}
	if got["FLASK_ENV"] != "development" {
		t.Errorf("EnvVars()[FLASK_ENV] = %q, want %q", got["FLASK_ENV"], "development")
	}
}
