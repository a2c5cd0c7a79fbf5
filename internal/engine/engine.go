package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/specialistvlad/beamgridgo/internal/ctxlog"
	"github.com/specialistvlad/beamgridgo/internal/formula"
	"github.com/specialistvlad/beamgridgo/internal/settings"
	"github.com/specialistvlad/beamgridgo/internal/sweep"
	"github.com/specialistvlad/beamgridgo/internal/ulc"
)

// Configuration expands one settings document. It holds no per-run state.
type Configuration struct {
	raw    *settings.Raw
	env    formula.Env
	strict bool
}

// Option configures a Configuration.
type Option func(*Configuration)

// WithFunctions adds functions to the formula namespace. They override
// default functions of the same name.
func WithFunctions(fns formula.Functions) Option {
	return func(c *Configuration) {
		c.env.Functions = formula.Merge(c.env.Functions, fns)
	}
}

// WithConstants adds named constants to the formula namespace.
func WithConstants(consts formula.Constants) Option {
	return func(c *Configuration) {
		c.env.Constants = formula.MergeConstants(c.env.Constants, consts)
	}
}

// WithStrictValidation makes Gen return structural errors instead of
// logging them and returning an all-None result.
func WithStrictValidation() Option {
	return func(c *Configuration) {
		c.strict = true
	}
}

// New creates a Configuration for raw. raw is not modified.
func New(raw *settings.Raw, opts ...Option) *Configuration {
	c := &Configuration{raw: raw, env: formula.DefaultEnv()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Validate checks the settings and returns their typed form.
func (c *Configuration) Validate() (*settings.Settings, error) {
	return settings.Validate(c.raw)
}

type genOptions struct {
	matchedLengths bool
}

// GenOption configures a single Gen call.
type GenOption func(*genOptions)

// MatchedLengths skips the combination expansion. All list-valued inputs
// must then already share one length.
func MatchedLengths() GenOption {
	return func(o *genOptions) {
		o.matchedLengths = true
	}
}

// run carries the state of one Gen call.
type run struct {
	logger *slog.Logger
	state  State
}

func (r *run) transition(s State) {
	r.logger.Debug("Gen state changed.", "from", r.state, "to", s)
	r.state = s
}

// Gen resolves every variable and returns a container holding each
// declared name in declaration order.
//
// A structural error in the settings is logged and yields a container in
// which every name is None, with a nil error; use WithStrictValidation to
// receive the error instead. Every other failure is returned.
func (c *Configuration) Gen(ctx context.Context, opts ...GenOption) (*ulc.Container, error) {
	var o genOptions
	for _, opt := range opts {
		opt(&o)
	}

	_, logger := ctxlog.With(ctx, "run_id", uuid.NewString())
	r := &run{logger: logger, state: StateCreated}
	r.logger.Debug("Gen started.", "matched_lengths", o.matchedLengths)

	s, err := c.Validate()
	if err != nil {
		var structural *settings.StructuralError
		if errors.As(err, &structural) && !c.strict {
			r.transition(StateErrored)
			r.logger.Error("Settings contain unexpected keys, returning an empty result.", "variable", structural.Variable, "keys", structural.Keys, "error", err)
			return ulc.WithKeys(c.raw.Names()), nil
		}
		return nil, err
	}
	r.transition(StateValidated)

	p, err := newPlan(s, c.env)
	if err != nil {
		return nil, err
	}

	inputs, err := c.generateInputs(s, o.matchedLengths, r)
	if err != nil {
		return nil, err
	}

	outputs := ulc.WithKeys(s.Names())
	res := newResolver(s, p, c.env, inputs, outputs)
	for _, name := range s.Names() {
		if _, err := res.resolve(name); err != nil {
			return nil, err
		}
	}
	r.transition(StateOutputsResolved)

	r.transition(StateDone)
	r.logger.Debug("Gen finished.", "variables", outputs.Len(), "snapshots", outputs.SnapshotCount())
	return outputs, nil
}

// generateInputs builds the input container: generated values for
// independent variables, None for the rest.
func (c *Configuration) generateInputs(s *settings.Settings, matched bool, r *run) (*ulc.Container, error) {
	vars := s.Variables()
	values := make([]ulc.Value, len(vars))
	var axes []int
	for i, v := range vars {
		val, err := sweep.Generate(v.Input)
		if err != nil {
			return nil, fmt.Errorf("generating input for %q: %w", v.Name, err)
		}
		values[i] = val
		if v.Independent() {
			axes = append(axes, i)
		}
	}
	r.transition(StateInputsGenerated)

	if !matched && len(axes) > 0 {
		cols := make([]ulc.Value, len(axes))
		for j, i := range axes {
			cols[j] = values[i]
		}
		r.logger.Debug("Expanding combinations.", "axes", len(axes), "combinations", sweep.Cardinality(cols))
		for j, col := range sweep.Expand(cols) {
			values[axes[j]] = col
		}
		r.transition(StateExpanded)
	}

	inputs := ulc.New()
	for i, v := range vars {
		if err := inputs.Set(v.Name, values[i]); err != nil {
			return nil, fmt.Errorf("input for %q: %w", v.Name, err)
		}
	}
	return inputs, nil
}

// Step is one entry of a resolution order.
type Step struct {
	Name string
	// After lists the derived variables that must be resolved first.
	After []string
}

// Explain returns the variables in the order their values can be computed:
// every derived variable after the derived variables it needs.
func (c *Configuration) Explain() ([]Step, error) {
	s, err := c.Validate()
	if err != nil {
		return nil, err
	}
	p, err := newPlan(s, c.env)
	if err != nil {
		return nil, err
	}
	order, err := p.graph.TopologicalOrder()
	if err != nil {
		return nil, cycleError(err)
	}
	steps := make([]Step, len(order))
	for i, name := range order {
		after, err := p.graph.Dependencies(name)
		if err != nil {
			return nil, err
		}
		steps[i] = Step{Name: name, After: after}
	}
	return steps, nil
}

// Split groups a result by the "__" name prefix. ok is false when no name
// contains the delimiter and the result should be used unchanged.
func Split(c *ulc.Container) (groups map[string]*ulc.Container, ok bool, err error) {
	return ulc.Split(c, ulc.DefaultDelimiter)
}
