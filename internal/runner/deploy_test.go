// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/denvhq/denv/internal/runtime"
	"github.com/denvhq/denv/pkg/denvfile"
)

func testDeployDescriptor(t *testing.T, dep *denvfile.Deployment) (*denvfile.Denvfile, string) {
	t.Helper()
	dir := t.TempDir()
	return &denvfile.Denvfile{
		FilePath:   filepath.Join(dir, denvfile.DenvfileName),
		Deployment: dep,
	}, dir
}

func testDeployOptions() Options {
	return Options{
		RuntimeType: runtime.RuntimeTypeVirtual,
		Logger:      log.New(io.Discard),
	}
}

func TestDeployerRunsBuildThenRun(t *testing.T) {
	d, dir := testDeployDescriptor(t, &denvfile.Deployment{
		Target: denvfile.TargetAutoscale,
		Build:  []string{"echo build >> steps.txt"},
		Run:    []string{"echo run >> steps.txt"},
	})

	dep := NewDeployer(d, testDeployOptions())
	require.NoError(t, dep.Deploy(context.Background(), DeployOptions{}))

	lines := readLines(t, filepath.Join(dir, "steps.txt"))
	assert.Equal(t, []string{"build", "run"}, lines)
}

func TestDeployerSkipBuild(t *testing.T) {
	d, dir := testDeployDescriptor(t, &denvfile.Deployment{
		Target: denvfile.TargetVM,
		Build:  []string{"echo build >> steps.txt"},
		Run:    []string{"echo run >> steps.txt"},
	})

	dep := NewDeployer(d, testDeployOptions())
	require.NoError(t, dep.Deploy(context.Background(), DeployOptions{SkipBuild: true}))

	lines := readLines(t, filepath.Join(dir, "steps.txt"))
	assert.Equal(t, []string{"run"}, lines)
}

func TestDeployerBuildFailureAbortsRun(t *testing.T) {
	d, dir := testDeployDescriptor(t, &denvfile.Deployment{
		Target: denvfile.TargetAutoscale,
		Build:  []string{"exit 1"},
		Run:    []string{"echo run >> steps.txt"},
	})

	dep := NewDeployer(d, testDeployOptions())
	err := dep.Deploy(context.Background(), DeployOptions{})
	require.Error(t, err)
	assert.NoFileExists(t, filepath.Join(dir, "steps.txt"))
}

func TestDeployerDryRunPrintsPlan(t *testing.T) {
	d, dir := testDeployDescriptor(t, &denvfile.Deployment{
		Target: denvfile.TargetAutoscale,
		Build:  []string{"pip install -r requirements.txt"},
		Run:    []string{"gunicorn app:app"},
	})

	var out bytes.Buffer
	opts := testDeployOptions()
	opts.Stdout = &out

	dep := NewDeployer(d, opts)
	require.NoError(t, dep.Deploy(context.Background(), DeployOptions{DryRun: true}))

	output := out.String()
	assert.Contains(t, output, "deployment target: autoscale")
	assert.Contains(t, output, "pip install -r requirements.txt")
	assert.Contains(t, output, "gunicorn app:app")
	assert.NoFileExists(t, filepath.Join(dir, "steps.txt"))
}

func TestDeployerNoDeploymentSection(t *testing.T) {
	d, _ := testDeployDescriptor(t, nil)

	dep := NewDeployer(d, testDeployOptions())
	err := dep.Deploy(context.Background(), DeployOptions{})
	assert.ErrorIs(t, err, ErrNoDeployment)
}
