package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/specialistvlad/beamgridgo/internal/ctxlog"
	"github.com/specialistvlad/beamgridgo/internal/engine"
	"github.com/specialistvlad/beamgridgo/internal/loader"
	"github.com/specialistvlad/beamgridgo/internal/sink"
	"github.com/specialistvlad/beamgridgo/internal/ulc"
	"golang.org/x/sync/errgroup"
)

// generate loads one settings file and expands it.
func (a *App) generate(ctx context.Context, path string) (*ulc.Container, error) {
	ctx, logger := ctxlog.With(ctx, "settings_file", path)
	raw, err := loader.Load(ctx, path)
	if err != nil {
		return nil, err
	}
	result, err := engine.New(raw, a.engineOptions()...).Gen(ctx, a.genOptions()...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Debug("Settings file expanded.", "snapshots", result.SnapshotCount())
	return result, nil
}

// generateAll expands every file on at most WorkerCount goroutines and
// delivers the results in file order once all of them succeeded.
func (a *App) generateAll(ctx context.Context, files []string) error {
	results := make([]*ulc.Container, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.config.WorkerCount)
	for i, file := range files {
		g.Go(func() error {
			res, err := a.generate(gctx, file)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	a.logger.Info("Generation finished.", "files", len(files))

	return a.deliver(ctx, files, results)
}

// deliver writes results to the output stream and, when configured, emits
// them to the socket.io endpoint.
func (a *App) deliver(ctx context.Context, files []string, results []*ulc.Container) error {
	out, closeOut, err := a.openOutput()
	if err != nil {
		return err
	}
	defer closeOut()

	var (
		writers []sink.Writer
		flush   func() error
	)
	switch a.config.Format {
	case FormatJSON:
		writers = append(writers, sink.NewJSON(out))
	default:
		y := sink.NewYAML(out)
		writers = append(writers, y)
		flush = y.Close
	}
	if a.config.EmitURL != "" {
		writers = append(writers, &sink.SocketIO{
			URL:       a.config.EmitURL,
			Namespace: a.config.EmitNamespace,
			Event:     a.config.EmitEvent,
			Timeout:   a.config.EmitTimeout,
		})
	}

	for i, file := range files {
		r := sink.Result{Source: file, Values: results[i]}
		if a.config.Split {
			if r, err = sink.Grouped(file, results[i]); err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
		}
		for _, w := range writers {
			if err := w.Write(ctx, r); err != nil {
				return err
			}
		}
	}
	if flush != nil {
		return flush()
	}
	return nil
}

// openOutput returns the result stream: the configured output file,
// truncated, or the App's writer.
func (a *App) openOutput() (io.Writer, func(), error) {
	if a.config.OutputPath == "" {
		return a.outW, func() {}, nil
	}
	f, err := os.Create(a.config.OutputPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() {
		if err := f.Close(); err != nil {
			a.logger.Error("Failed to close output file.", "path", a.config.OutputPath, "error", err)
		}
	}, nil
}
