package cli_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/specialistvlad/beamgridgo/internal/app"
	"github.com/specialistvlad/beamgridgo/internal/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	// --- Act ---
	cfg, shouldExit, err := cli.Parse([]string{"settings.yaml"}, &bytes.Buffer{})

	// --- Assert ---
	require.NoError(t, err)
	assert.False(t, shouldExit)
	assert.Equal(t, []string{"settings.yaml"}, cfg.SettingsPaths)
	assert.Equal(t, app.FormatYAML, cfg.Format)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 4, cfg.WorkerCount)
	assert.Equal(t, "snapshot", cfg.EmitEvent)
	assert.False(t, cfg.MatchedLengths)
}

func TestParse_AllFlags(t *testing.T) {
	args := []string{
		"-s", "a.yaml", "--settings", "dir,with,commas",
		"--matched-lengths", "--strict", "--physics", "--split",
		"-f", "JSON", "-o", "out.json",
		"--emit-url", "http://localhost:3000/socket.io/", "--emit-namespace", "/beam",
		"--emit-event", "shot", "--emit-timeout", "3s",
		"--workers", "8", "--log-format", "json", "--log-level", "DEBUG",
		"extra.hcl",
	}

	cfg, shouldExit, err := cli.Parse(args, &bytes.Buffer{})

	require.NoError(t, err)
	assert.False(t, shouldExit)
	assert.Equal(t, []string{"a.yaml", "dir,with,commas", "extra.hcl"}, cfg.SettingsPaths)
	assert.True(t, cfg.MatchedLengths)
	assert.True(t, cfg.Strict)
	assert.True(t, cfg.Physics)
	assert.True(t, cfg.Split)
	assert.Equal(t, app.FormatJSON, cfg.Format)
	assert.Equal(t, "out.json", cfg.OutputPath)
	assert.Equal(t, "http://localhost:3000/socket.io/", cfg.EmitURL)
	assert.Equal(t, "/beam", cfg.EmitNamespace)
	assert.Equal(t, "shot", cfg.EmitEvent)
	assert.Equal(t, 3*time.Second, cfg.EmitTimeout)
	assert.Equal(t, 8, cfg.WorkerCount)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestParse_ShouldExit(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{name: "help", args: []string{"-h"}},
		{name: "no paths", args: nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := &bytes.Buffer{}

			cfg, shouldExit, err := cli.Parse(tc.args, out)

			require.NoError(t, err)
			assert.True(t, shouldExit)
			assert.Nil(t, cfg)
			assert.Contains(t, out.String(), "Usage:")
		})
	}
}

func TestParse_UsageErrors(t *testing.T) {
	testCases := []struct {
		name string
		args []string
		want string
	}{
		{name: "unknown flag", args: []string{"--nope", "a.yaml"}, want: "unknown flag: --nope"},
		{name: "log format", args: []string{"--log-format", "xml", "a.yaml"}, want: "invalid log-format"},
		{name: "log level", args: []string{"--log-level", "loud", "a.yaml"}, want: "invalid log-level"},
		{name: "format", args: []string{"--format", "toml", "a.yaml"}, want: "invalid format"},
		{name: "workers", args: []string{"--workers", "0", "a.yaml"}, want: "workers must be at least 1"},
		{name: "modes", args: []string{"--explain", "--check", "want.yaml", "a.yaml"}, want: "cannot be combined"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, shouldExit, err := cli.Parse(tc.args, &bytes.Buffer{})

			assert.False(t, shouldExit)
			var exitErr *cli.ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.want)
		})
	}
}
