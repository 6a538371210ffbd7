package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	root := newRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestEval_Derivative(t *testing.T) {
	out, err := run(t, "eval", "--op", "diff", "x**2")
	require.NoError(t, err)
	assert.Equal(t, "d/dx (x^2) = 2*x\n", out)
}

func TestEval_ImproperIntegralWithLaTeX(t *testing.T) {
	out, err := run(t, "eval", "--op", "definite", "--lower", "1", "--upper", "oo", "--latex", "1/x**2")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "∫_1^∞ 1/x^2 dx = 1", lines[0])
	assert.Equal(t, `\int_{1}^{\infty} \frac{1}{x^{2}} \, \mathrm{d}x = 1`, lines[1])
}

func TestEval_JSON(t *testing.T) {
	out, err := run(t, "eval", "--op", "limit", "--point", "0", "--json", "sin(x)/x")
	require.NoError(t, err)

	var got evalOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.True(t, got.OK)
	assert.Equal(t, "lim_{x->0} (sin(x)/x) = 1", got.Text)
}

func TestEval_ComputationError(t *testing.T) {
	out, err := run(t, "eval", "2x+")
	assert.ErrorIs(t, err, errEvaluationFailed)
	assert.Contains(t, out, "computation error:")
}

func TestEval_UnknownOperation(t *testing.T) {
	_, err := run(t, "eval", "--op", "solve", "x")
	assert.Error(t, err)
}

func TestEval_Save(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	_, err := run(t, "eval", "--op", "integrate", "--save", path, "cos(x)")
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "Operation: indefinite-integral")
	assert.Contains(t, string(b), "∫ cos(x) dx = sin(x)")
}

func TestConfigFileAndFlagPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gocalc.toml")
	require.NoError(t, os.WriteFile(path, []byte("variable = \"t\"\npoint = \"oo\"\n"), 0o644))

	out, err := run(t, "--config", path, "eval", "--op", "limit", "1/t")
	require.NoError(t, err)
	assert.Equal(t, "lim_{t->∞} (1/t) = 0\n", out)

	out, err = run(t, "--config", path, "eval", "--op", "limit", "--var", "x", "--point", "2", "x**2")
	require.NoError(t, err)
	assert.Equal(t, "lim_{x->2} (x^2) = 4\n", out)
}

func TestMissingConfigFile(t *testing.T) {
	_, err := run(t, "--config", filepath.Join(t.TempDir(), "nope.toml"), "ops")
	assert.Error(t, err)
}

func TestRenderAndOps(t *testing.T) {
	out, err := run(t, "render", "x^2 + 1")
	require.NoError(t, err)
	assert.Equal(t, "expression: x^2 + 1\nx^{2} + 1\n", out)

	out, err = run(t, "ops")
	require.NoError(t, err)
	assert.Contains(t, out, "definite-integral")
	assert.Contains(t, out, "variable, lower, upper")
}
