// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/curioloop/descent/nonlinear"
	"github.com/curioloop/descent/problems"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func decode(t *testing.T, out string) []outcome {
	t.Helper()
	var outcomes []outcome
	require.NoError(t, yaml.Unmarshal([]byte(out), &outcomes))
	return outcomes
}

func TestList(t *testing.T) {
	out, _, err := execute(t, "list")
	require.NoError(t, err)
	for _, name := range problems.Names() {
		assert.Contains(t, out, name)
	}
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), len(problems.Names())+1)
}

func TestRunYAML(t *testing.T) {
	out, _, err := execute(t, "run", "quartic", "--tolerance", "1e-7", "--output", "yaml", "--log-level", "error")
	require.NoError(t, err)

	outcomes := decode(t, out)
	require.Len(t, outcomes, 1)
	o := outcomes[0]
	assert.Equal(t, "quartic", o.Problem)
	assert.Equal(t, "BFGS-H", o.Method)
	assert.Equal(t, nonlinear.Satisfied.String(), o.Status)
	assert.InDeltaSlice(t, []float64{4, 2}, o.X, 1e-6)
	require.NotNil(t, o.Error)
	assert.Less(t, *o.Error, 1e-6)
	assert.Positive(t, o.NumFunc)
	assert.Less(t, o.GNorm, 1e-7)
}

func TestRunText(t *testing.T) {
	out, _, err := execute(t, "run", "quadratic", "rosenbrock", "--tolerance", "1e-6", "--log-level", "error")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "PROBLEM"))
	assert.True(t, strings.HasPrefix(lines[1], "quadratic"))
	assert.True(t, strings.HasPrefix(lines[2], "rosenbrock"))
	assert.Contains(t, lines[1], "Satisfied")
	assert.Contains(t, lines[2], "Satisfied")
}

func TestRunConcurrentKeepsOrder(t *testing.T) {
	names := []string{"schwefel", "quartic", "griewank", "quadratic", "exponential"}
	args := append([]string{"run"}, names...)
	args = append(args, "--tolerance", "1e-6", "--dim", "10", "--output", "yaml", "--log-level", "error")

	// quartic and quadratic have fixed dimensions
	_, _, err := execute(t, args...)
	assert.ErrorIs(t, err, nonlinear.ErrNoParameter)

	args = append([]string{"run"}, names...)
	args = append(args, "--tolerance", "1e-6", "--output", "yaml", "--log-level", "error")
	out, _, err := execute(t, args...)
	require.NoError(t, err)

	outcomes := decode(t, out)
	require.Len(t, outcomes, len(names))
	for i, o := range outcomes {
		assert.Equal(t, names[i], o.Problem)
		assert.Equal(t, nonlinear.Satisfied.String(), o.Status)
	}
}

func TestRunConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "descent.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
method: cg
search: backtracking-strong-wolfe
tolerance: 1e-6
dim: 10
output: yaml
log-level: error
`), 0o644))

	out, _, err := execute(t, "run", "schwefel", "--config", path)
	require.NoError(t, err)

	outcomes := decode(t, out)
	require.Len(t, outcomes, 1)
	assert.Equal(t, "CG-FR", outcomes[0].Method)
	assert.Equal(t, 10, outcomes[0].N)
	assert.Equal(t, nonlinear.Satisfied.String(), outcomes[0].Status)
	assert.InDeltaSlice(t, make([]float64, 10), outcomes[0].X, 1e-5)

	// flags take precedence over the file
	out, _, err = execute(t, "run", "schwefel", "--config", path, "--method", "bfgs")
	require.NoError(t, err)
	assert.Equal(t, "BFGS-H", decode(t, out)[0].Method)
}

func TestRunEnvironment(t *testing.T) {
	t.Setenv("DESCENT_FORMULA", "b")
	t.Setenv("DESCENT_MAX_ITER", "1")
	t.Setenv("DESCENT_LOG_LEVEL", "error")

	out, _, err := execute(t, "run", "quadratic", "--output", "yaml")
	assert.ErrorContains(t, err, "1 of 1 runs not satisfied")

	outcomes := decode(t, out)
	require.Len(t, outcomes, 1)
	assert.Equal(t, "BFGS-B", outcomes[0].Method)
	assert.Equal(t, nonlinear.NoConvergence.String(), outcomes[0].Status)
	assert.Equal(t, 1, outcomes[0].Iter)
}

func TestRunTrace(t *testing.T) {
	_, errOut, err := execute(t, "run", "quartic", "--tolerance", "1e-7", "--trace", "1")
	require.NoError(t, err)
	assert.Contains(t, errOut, "BFGS-H    N = 2")
	assert.Contains(t, errOut, "running descent")
	assert.Contains(t, errOut, "descent finished")
}

func TestRunErrors(t *testing.T) {
	for _, args := range [][]string{
		{"run", "nowhere"},
		{"run", "quartic", "--method", "newton"},
		{"run", "quartic", "--formula", "x"},
		{"run", "quartic", "--search", "exact"},
		{"run", "quartic", "--sigma", "2"},
		{"run", "quartic", "--output", "json"},
		{"run", "quartic", "--tolerance=-1"},
	} {
		_, _, err := execute(t, append(args, "--log-level", "error")...)
		assert.ErrorIs(t, err, nonlinear.ErrNoParameter, "%v", args)
	}

	_, _, err := execute(t, "run")
	assert.Error(t, err)

	_, _, err = execute(t, "run", "quartic", "--log-level", "loud")
	assert.Error(t, err)

	_, _, err = execute(t, "run", "quartic", "--config", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config")
}

func TestCheck(t *testing.T) {
	out, _, err := execute(t, "check", "--all")
	require.NoError(t, err)
	for _, name := range problems.Names() {
		assert.Contains(t, out, name)
	}
	assert.NotContains(t, out, "FAIL")

	out, _, err = execute(t, "check", "rosenbrock", "--dim", "6", "--difference", "forward", "--threshold", "1e-4")
	require.NoError(t, err)
	assert.Contains(t, out, "rosenbrock")

	_, _, err = execute(t, "check", "schwefel", "--difference", "forward", "--threshold", "1e-12")
	assert.ErrorContains(t, err, "1 of 1 gradients exceed")

	_, _, err = execute(t, "check", "quartic", "--dim", "3")
	assert.ErrorIs(t, err, nonlinear.ErrNoParameter)

	_, _, err = execute(t, "check", "quartic", "--difference", "backward")
	assert.ErrorIs(t, err, nonlinear.ErrNoParameter)
}
