package app

import (
	"errors"
	"fmt"
	"time"
)

// Output formats understood by Config.Format.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	SettingsPaths []string // files or directories

	MatchedLengths bool
	Strict         bool
	Physics        bool
	Split          bool

	Format     string
	OutputPath string // empty means the App's writer

	// At most one of these replaces the default generate-and-write run.
	Explain   bool
	ExportHCL bool
	CheckPath string // expected-result file
	Cases     bool   // settings paths hold settings/result pairs

	Watch           bool
	HealthcheckPort int

	EmitURL       string
	EmitNamespace string
	EmitEvent     string
	EmitTimeout   time.Duration

	LogFormat   string
	LogLevel    string
	WorkerCount int
}

func NewConfig(cfg Config) (*Config, error) {
	if len(cfg.SettingsPaths) == 0 {
		return nil, errors.New("at least one settings path is required")
	}

	switch cfg.Format {
	case "":
		cfg.Format = FormatYAML
	case FormatYAML, FormatJSON:
	default:
		return nil, fmt.Errorf("invalid format %q: must be '%s' or '%s'", cfg.Format, FormatYAML, FormatJSON)
	}

	if cfg.WorkerCount < 1 {
		return nil, fmt.Errorf("workers must be at least 1, got %d", cfg.WorkerCount)
	}

	modes := 0
	for _, on := range []bool{cfg.Explain, cfg.ExportHCL, cfg.CheckPath != "", cfg.Cases} {
		if on {
			modes++
		}
	}
	if modes > 1 {
		return nil, errors.New("explain, export-hcl, check and cases cannot be combined")
	}
	if cfg.Watch && modes > 0 {
		return nil, errors.New("watch only applies to generation runs")
	}
	if cfg.HealthcheckPort > 0 && !cfg.Watch {
		return nil, errors.New("healthcheck-port requires watch")
	}

	return &cfg, nil
}
