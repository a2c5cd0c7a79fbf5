package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/beamgridgo/internal/app"
	"github.com/specialistvlad/beamgridgo/internal/cli"
	"github.com/stretchr/testify/require"
)

func TestRun_GeneratesResult(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	settings := `
v1:
  input:
    value: 5
v2:
  output:
    function: v1+1
`
	filePath := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(filePath, []byte(settings), 0o600))
	out, logs := &bytes.Buffer{}, &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, logs, []string{"--log-level", "debug", filePath})

	// --- Assert ---
	require.NoError(t, err)
	require.Contains(t, out.String(), "v1: 5")
	require.Contains(t, out.String(), "v2: 6")
	require.Contains(t, logs.String(), "Settings files found.")
}

func TestRun_RuntimeError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// A syntax error makes loading fail after parsing succeeded.
	invalidHCL := `
variable "v1" {
  input {
`
	filePath := filepath.Join(t.TempDir(), "main.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(invalidHCL), 0o600))

	// --- Act ---
	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{filePath})

	// --- Assert ---
	require.Error(t, err)
	require.ErrorContains(t, err, "failed to decode settings file")
	var exitErr *cli.ExitError
	require.NotErrorAs(t, err, &exitErr)
}

func TestRun_CheckMismatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	settingsPath := filepath.Join(dir, "s.yaml")
	expectedPath := filepath.Join(dir, "expected.yaml")
	require.NoError(t, os.WriteFile(settingsPath, []byte("a:\n  input:\n    value: 1\n"), 0o600))
	require.NoError(t, os.WriteFile(expectedPath, []byte("a: 2\n"), 0o600))
	out := &bytes.Buffer{}

	err := run(context.Background(), out, &bytes.Buffer{}, []string{"--check", expectedPath, settingsPath})

	require.ErrorIs(t, err, app.ErrMismatch)
	require.Contains(t, out.String(), "mismatch: "+settingsPath)
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, &bytes.Buffer{}, []string{"-h"})

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Act ---
	err := run(context.Background(), &bytes.Buffer{}, &bytes.Buffer{}, []string{"--this-is-not-a-valid-flag"})

	// --- Assert ---
	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 2, exitErr.Code)
	require.Contains(t, err.Error(), "unknown flag: --this-is-not-a-valid-flag")
}
