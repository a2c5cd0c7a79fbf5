package loader

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/specialistvlad/beamgridgo/internal/ctxlog"
)

// FindSettingsFiles resolves each path to the settings files it names. A
// file path must have a supported extension; a directory is walked
// recursively for supported files. Duplicates are dropped and the first
// occurrence keeps its position.
func FindSettingsFiles(ctx context.Context, paths ...string) ([]string, error) {
	logger := ctxlog.FromContext(ctx)
	var allFiles []string
	seen := make(map[string]struct{})

	add := func(p string) {
		clean := filepath.Clean(p)
		if _, wasSeen := seen[clean]; wasSeen {
			return
		}
		seen[clean] = struct{}{}
		allFiles = append(allFiles, clean)
	}

	for _, path := range paths {
		logger.Debug("Resolving settings path.", "path", path)
		info, err := os.Stat(path)
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("settings path not found: %s", path)
		}
		if err != nil {
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if !info.IsDir() {
			if !Supported(path) {
				return nil, fmt.Errorf("specified file is not a settings file (%v): %s", Extensions, path)
			}
			add(path)
			continue
		}

		logger.Debug("Path is a directory, scanning for settings files.", "directory", path)
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && Supported(p) {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	logger.Debug("Discovered settings files.", "count", len(allFiles))
	return allFiles, nil
}
