package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/specialistvlad/beamgridgo/internal/loader"
)

// debounceDelay is how long the settings must stay quiet before a change
// triggers regeneration.
const debounceDelay = 200 * time.Millisecond

func (a *App) setLastError(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastErr = err
}

func (a *App) lastError() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastErr
}

// regenerate runs one generation and records its outcome. A failed run is
// logged and does not stop the watch.
func (a *App) regenerate(ctx context.Context) {
	files, err := loader.FindSettingsFiles(ctx, a.config.SettingsPaths...)
	if err == nil {
		err = a.generateAll(ctx, files)
	}
	a.setLastError(err)
	if err != nil {
		a.logger.Error("Regeneration failed.", "error", err)
		return
	}
	a.logger.Info("Regenerated.", "files", len(files))
}

// watch generates once, then again after every change to a supported file
// under the settings paths, until ctx is cancelled.
func (a *App) watch(ctx context.Context, files []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range watchDirs(a.config.SettingsPaths, files) {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		a.logger.Debug("Watching directory.", "directory", dir)
	}

	if err := a.startHealthCheckServer(); err != nil {
		return err
	}
	defer a.closeHealthCheckServer()

	a.regenerate(ctx)

	debounce := time.NewTimer(debounceDelay)
	debounce.Stop()
	defer debounce.Stop()

	for {
		select {
		case <-ctx.Done():
			a.logger.Info("Watch stopped.")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !loader.Supported(event.Name) || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) {
				continue
			}
			a.logger.Debug("Settings changed.", "path", event.Name, "op", event.Op.String())
			debounce.Reset(debounceDelay)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			a.logger.Error("Watcher error.", "error", err)

		case <-debounce.C:
			a.regenerate(ctx)
		}
	}
}

// watchDirs returns the directories to watch: every directory among paths
// and the parent of every file, without duplicates. Subdirectories found
// while listing files are watched too.
func watchDirs(paths, files []string) []string {
	var dirs []string
	seen := make(map[string]struct{})
	add := func(d string) {
		d = filepath.Clean(d)
		if _, dup := seen[d]; !dup {
			seen[d] = struct{}{}
			dirs = append(dirs, d)
		}
	}
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			add(p)
		}
	}
	for _, f := range files {
		add(filepath.Dir(f))
	}
	return dirs
}
