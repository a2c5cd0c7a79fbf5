package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/beamgridgo/internal/app"
	"github.com/spf13/pflag"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := pflag.NewFlagSet("beamgridgo", pflag.ContinueOnError)
	flagSet.SetOutput(output)
	flagSet.SortFlags = false

	flagSet.Usage = func() {
		fmt.Fprint(output, `
beamgridgo - expands variable sweep settings into parameter sets.

Usage:
  beamgridgo [options] [SETTINGS_PATH ...]

Arguments:
  SETTINGS_PATH
    A .yaml, .yml, .hcl or .json settings file, or a directory of them.

Options:
`)
		flagSet.PrintDefaults()
	}

	settingsFlag := flagSet.StringArrayP("settings", "s", nil, "Settings file or directory. May be repeated.")
	matchedFlag := flagSet.Bool("matched-lengths", false, "Pair list inputs index by index instead of taking every combination.")
	strictFlag := flagSet.Bool("strict", false, "Fail on unexpected settings keys instead of producing an empty result.")
	physicsFlag := flagSet.Bool("physics", false, "Make the relativistic kinematics functions available to formulas.")
	splitFlag := flagSet.Bool("split", false, "Group results by the '__' name prefix.")
	formatFlag := flagSet.StringP("format", "f", app.FormatYAML, "Result format. Options: 'yaml' or 'json'.")
	outputFlag := flagSet.StringP("output", "o", "", "Write results to this file instead of standard output.")
	explainFlag := flagSet.Bool("explain", false, "Print the order in which variables are computed and exit.")
	exportFlag := flagSet.Bool("export-hcl", false, "Print the settings in HCL and exit.")
	checkFlag := flagSet.String("check", "", "Compare the result with this expected-result YAML file.")
	casesFlag := flagSet.Bool("cases", false, "Treat settings files as settings/result document pairs and compare each.")
	watchFlag := flagSet.BoolP("watch", "w", false, "Regenerate whenever a settings file changes.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server while watching. 0 is disabled.")
	emitURLFlag := flagSet.String("emit-url", "", "Socket.IO endpoint that receives one event per result snapshot.")
	emitNamespaceFlag := flagSet.String("emit-namespace", "/", "Socket.IO namespace for emitted events.")
	emitEventFlag := flagSet.String("emit-event", "snapshot", "Socket.IO event name for emitted snapshots.")
	emitTimeoutFlag := flagSet.Duration("emit-timeout", 0, "Socket.IO connection timeout. 0 uses the default of 10s.")
	workersFlag := flagSet.Int("workers", 4, "Number of settings files expanded concurrently.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	paths := append(append([]string(nil), *settingsFlag...), flagSet.Args()...)
	slog.Debug("Settings paths determined.", "paths", paths)

	if len(paths) == 0 {
		slog.Debug("No settings path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	if !app.ValidLogLevel(logLevel) {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		SettingsPaths:   paths,
		MatchedLengths:  *matchedFlag,
		Strict:          *strictFlag,
		Physics:         *physicsFlag,
		Split:           *splitFlag,
		Format:          strings.ToLower(*formatFlag),
		OutputPath:      *outputFlag,
		Explain:         *explainFlag,
		ExportHCL:       *exportFlag,
		CheckPath:       *checkFlag,
		Cases:           *casesFlag,
		Watch:           *watchFlag,
		HealthcheckPort: *healthPortFlag,
		EmitURL:         *emitURLFlag,
		EmitNamespace:   *emitNamespaceFlag,
		EmitEvent:       *emitEventFlag,
		EmitTimeout:     *emitTimeoutFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		WorkerCount:     *workersFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
