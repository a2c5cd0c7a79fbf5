package engine

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/beamgridgo/internal/depgraph"
	"github.com/specialistvlad/beamgridgo/internal/formula"
	"github.com/specialistvlad/beamgridgo/internal/settings"
	"github.com/specialistvlad/beamgridgo/internal/ulc"
)

// plan holds the parsed formulas and the graph of derived variables that
// need other derived variables.
type plan struct {
	formulas map[string]*formula.Formula
	refs     map[string][]string
	graph    *depgraph.Graph
}

// newPlan parses every formula and fails fast on unknown functions and
// reference cycles.
//
// Only references to variables whose input is None become edges: any other
// variable is substituted by its input and never recursed into.
func newPlan(s *settings.Settings, env formula.Env) (*plan, error) {
	p := &plan{
		formulas: make(map[string]*formula.Formula),
		refs:     make(map[string][]string),
		graph:    depgraph.New(),
	}
	for _, name := range s.Names() {
		p.graph.AddNode(name)
	}

	for _, v := range s.Variables() {
		out, ok := v.Output.(settings.FormulaOutput)
		if !ok {
			continue
		}
		f, err := formula.Parse(v.Name, out.Function)
		if err != nil {
			return nil, err
		}
		if err := f.CheckFunctions(env); err != nil {
			return nil, err
		}
		refs, err := f.References(s.Has)
		if err != nil {
			return nil, err
		}
		p.formulas[v.Name] = f
		p.refs[v.Name] = refs

		for _, ref := range refs {
			dep, _ := s.Lookup(ref)
			if !noInputValue(dep.Input) {
				continue
			}
			if ref == v.Name {
				return nil, &formula.CycleError{Chain: []string{ref, ref}}
			}
			if err := p.graph.AddEdge(ref, v.Name); err != nil {
				return nil, err
			}
		}
	}

	if err := p.graph.DetectCycles(); err != nil {
		return nil, cycleError(err)
	}
	return p, nil
}

func noInputValue(spec settings.InputSpec) bool {
	switch in := spec.(type) {
	case settings.NoInput:
		return true
	case settings.FixedInput:
		return in.Value.IsNone()
	default:
		return false
	}
}

func cycleError(err error) error {
	var cycle *depgraph.CycleError
	if errors.As(err, &cycle) {
		return &formula.CycleError{Chain: cycle.Path}
	}
	return err
}

// resolver computes outputs on demand, memoizing each one.
type resolver struct {
	settings *settings.Settings
	plan     *plan
	env      formula.Env
	inputs   *ulc.Container
	outputs  *ulc.Container

	resolved map[string]bool
	visiting map[string]bool
	stack    []string
}

func newResolver(s *settings.Settings, p *plan, env formula.Env, inputs, outputs *ulc.Container) *resolver {
	return &resolver{
		settings: s,
		plan:     p,
		env:      env,
		inputs:   inputs,
		outputs:  outputs,
		resolved: make(map[string]bool),
		visiting: make(map[string]bool),
	}
}

// resolve returns the output value of name, computing it and everything it
// depends on first if needed.
func (r *resolver) resolve(name string) (ulc.Value, error) {
	if r.resolved[name] {
		v, _ := r.outputs.Get(name)
		return v, nil
	}
	if r.visiting[name] {
		chain := append([]string(nil), r.stack...)
		for i, n := range chain {
			if n == name {
				chain = chain[i:]
				break
			}
		}
		return ulc.None(), &formula.CycleError{Chain: append(chain, name)}
	}

	r.visiting[name] = true
	r.stack = append(r.stack, name)
	defer func() {
		delete(r.visiting, name)
		r.stack = r.stack[:len(r.stack)-1]
	}()

	var (
		val ulc.Value
		err error
	)
	if f, ok := r.plan.formulas[name]; ok {
		val, err = r.evaluate(f)
		if err != nil {
			return ulc.None(), err
		}
	} else {
		val, _ = r.inputs.Get(name)
	}

	if err := r.outputs.Set(name, val); err != nil {
		return ulc.None(), fmt.Errorf("output for %q: %w", name, err)
	}
	r.resolved[name] = true
	return val, nil
}

// evaluate substitutes each reference by its input value when it has one,
// and by its resolved output otherwise.
func (r *resolver) evaluate(f *formula.Formula) (ulc.Value, error) {
	refs := r.plan.refs[f.Variable]
	values := make(map[string]ulc.Value, len(refs))
	for _, ref := range refs {
		if in, _ := r.inputs.Get(ref); !in.IsNone() {
			values[ref] = in
			continue
		}
		out, err := r.resolve(ref)
		if err != nil {
			return ulc.None(), err
		}
		if out.IsNone() {
			return ulc.None(), &formula.Error{
				Variable: f.Variable,
				Formula:  f.Source,
				Err:      fmt.Errorf("referenced variable %q has no value", ref),
			}
		}
		values[ref] = out
	}
	return f.Evaluate(values, r.env)
}
