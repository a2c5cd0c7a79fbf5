package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/beamgridgo/internal/engine"
	"github.com/specialistvlad/beamgridgo/internal/loader"
	"github.com/specialistvlad/beamgridgo/internal/ulc"
)

// check generates a single settings file and compares it with the expected
// result file.
func (a *App) check(ctx context.Context, files []string) error {
	if len(files) != 1 {
		return fmt.Errorf("check needs exactly one settings file, found %d", len(files))
	}
	got, err := a.generate(ctx, files[0])
	if err != nil {
		return err
	}
	want, err := loader.LoadResult(a.config.CheckPath)
	if err != nil {
		return err
	}
	if !a.report(files[0], want, got) {
		return ErrMismatch
	}
	return nil
}

// runCases generates every settings document of each case file and
// compares it with the result document that follows it.
func (a *App) runCases(ctx context.Context, files []string) error {
	failed := 0
	for _, file := range files {
		cases, err := loader.LoadCases(file)
		if err != nil {
			return err
		}
		for i, c := range cases {
			name := fmt.Sprintf("%s#%d", file, i+1)
			got, err := engine.New(c.Settings, a.engineOptions()...).Gen(ctx, a.genOptions()...)
			if err != nil {
				fmt.Fprintf(a.outW, "error: %s: %v\n", name, err)
				failed++
				continue
			}
			if !a.report(name, c.Expected, got) {
				failed++
			}
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d case(s) failed: %w", failed, ErrMismatch)
	}
	return nil
}

// report prints the outcome of one comparison and returns whether it
// matched.
func (a *App) report(name string, want, got *ulc.Container) bool {
	if want.Equal(got) {
		fmt.Fprintf(a.outW, "match: %s\n", name)
		return true
	}
	fmt.Fprintf(a.outW, "mismatch: %s\n  expected:  %s\n  generated: %s\n", name, want, got)
	return false
}
