package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/beamgridgo/internal/ctxlog"
	"github.com/specialistvlad/beamgridgo/internal/settings"
)

// Extensions lists the file extensions Load understands.
var Extensions = []string{".yaml", ".yml", ".hcl", ".json"}

// Supported reports whether path has an extension Load understands.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Load reads and decodes one settings file.
func Load(ctx context.Context, path string) (*settings.Raw, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Loading settings file.", "path", path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
	}

	raw, err := Parse(path, data)
	if err != nil {
		return nil, err
	}
	logger.Debug("Settings file decoded.", "path", path, "variables", len(raw.Entries))
	return raw, nil
}

// Parse decodes settings from data, choosing the format by the extension
// of filename.
func Parse(filename string, data []byte) (*settings.Raw, error) {
	var (
		raw *settings.Raw
		err error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		raw, err = parseYAML(data)
	case ".hcl":
		raw, err = parseHCL(filename, data)
	case ".json":
		raw, err = parseHCLJSON(filename, data)
	default:
		return nil, fmt.Errorf("unsupported settings file extension: %s", filename)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode settings file %s: %w", filename, err)
	}
	return raw, nil
}
