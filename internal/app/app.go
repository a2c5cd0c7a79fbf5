package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/specialistvlad/beamgridgo/internal/ctxlog"
	"github.com/specialistvlad/beamgridgo/internal/engine"
	"github.com/specialistvlad/beamgridgo/internal/loader"
	"github.com/specialistvlad/beamgridgo/internal/physics"
)

// ErrMismatch is returned by check and case runs when a generated result
// differs from the expected one.
var ErrMismatch = errors.New("generated result does not match the expected result")

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	httpServer *http.Server

	mu      sync.Mutex
	lastErr error // outcome of the latest watch regeneration
}

// NewApp is the constructor for the main application. Results are written
// to outW (or to Config.OutputPath) and logs to logW.
func NewApp(outW, logW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")
	return &App{
		outW:   outW,
		logger: logger,
		config: cfg,
	}
}

// Run executes the main application logic based on the configuration.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")
	defer a.logger.Debug("App.Run method finished.")

	files, err := loader.FindSettingsFiles(ctx, a.config.SettingsPaths...)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no settings files found in %v", a.config.SettingsPaths)
	}
	a.logger.Info("Settings files found.", "count", len(files))

	switch {
	case a.config.Explain:
		return a.explain(ctx, files)
	case a.config.ExportHCL:
		return a.exportHCL(ctx, files)
	case a.config.CheckPath != "":
		return a.check(ctx, files)
	case a.config.Cases:
		return a.runCases(ctx, files)
	case a.config.Watch:
		return a.watch(ctx, files)
	default:
		return a.generateAll(ctx, files)
	}
}

// Close releases resources started by Run.
func (a *App) Close() error {
	return a.closeHealthCheckServer()
}

// engineOptions returns the Configuration options implied by the config.
func (a *App) engineOptions() []engine.Option {
	var opts []engine.Option
	if a.config.Physics {
		opts = append(opts, engine.WithFunctions(physics.Functions()), engine.WithConstants(physics.Constants()))
	}
	if a.config.Strict {
		opts = append(opts, engine.WithStrictValidation())
	}
	return opts
}

func (a *App) genOptions() []engine.GenOption {
	if a.config.MatchedLengths {
		return []engine.GenOption{engine.MatchedLengths()}
	}
	return nil
}
