package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/beamgridgo/internal/engine"
	"github.com/specialistvlad/beamgridgo/internal/loader"
)

// explain prints, per file, the order in which variables are computed and
// which derived variables each one waits for.
func (a *App) explain(ctx context.Context, files []string) error {
	for _, file := range files {
		raw, err := loader.Load(ctx, file)
		if err != nil {
			return err
		}
		steps, err := engine.New(raw, a.engineOptions()...).Explain()
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		fmt.Fprintf(a.outW, "%s:\n", file)
		for i, step := range steps {
			if len(step.After) == 0 {
				fmt.Fprintf(a.outW, "  %d. %s\n", i+1, step.Name)
				continue
			}
			fmt.Fprintf(a.outW, "  %d. %s (after %s)\n", i+1, step.Name, strings.Join(step.After, ", "))
		}
	}
	return nil
}

// exportHCL prints every file in the HCL settings format.
func (a *App) exportHCL(ctx context.Context, files []string) error {
	for i, file := range files {
		raw, err := loader.Load(ctx, file)
		if err != nil {
			return err
		}
		out, err := loader.ExportHCL(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
		if i > 0 {
			fmt.Fprintln(a.outW)
		}
		if len(files) > 1 {
			fmt.Fprintf(a.outW, "# %s\n", file)
		}
		if _, err := a.outW.Write(out); err != nil {
			return err
		}
	}
	return nil
}
