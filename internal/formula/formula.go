// Package formula parses, substitutes and evaluates the arithmetic
// expressions that define derived variables.
//
// A formula is written in Python-style arithmetic: a-b subtracts, x**y
// raises to a power and np. prefixes are accepted. It is rewritten into and
// parsed with the HCL expression grammar. Evaluation never uses
// an HCL eval context: references to declared variables are replaced in the
// source text by number or tuple literals, the result is re-parsed, and a
// restricted tree walk computes the value using only whitelisted operators,
// constants and functions.
package formula

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/specialistvlad/beamgridgo/internal/ulc"
	"github.com/zclconf/go-cty/cty"
)

const filename = "formula"

// ErrNoReference is wrapped by the error returned from References when a
// formula does not mention any declared variable.
var ErrNoReference = errors.New("formula references no declared variable")

// Formula is a parsed formula belonging to one variable.
type Formula struct {
	Variable string
	Source   string

	// text is Source rewritten into HCL syntax; expr ranges index into it.
	text string
	expr hclsyntax.Expression
}

// Parse parses src as the formula of the named variable.
func Parse(variable, src string) (*Formula, error) {
	text, err := normalize(src)
	if err != nil {
		return nil, &Error{Variable: variable, Formula: src, Err: err}
	}
	expr, diags := hclsyntax.ParseExpression([]byte(text), filename, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, &Error{Variable: variable, Formula: src, Err: diags}
	}
	return &Formula{Variable: variable, Source: src, text: text, expr: expr}, nil
}

// Analyze reports every identifier and function the formula mentions.
func (f *Formula) Analyze() Analysis {
	return Analyze(f.expr)
}

// References returns the declared variables the formula refers to, sorted.
// Identifiers that are not declared (constants, typos) are left for the
// evaluator to resolve or reject.
func (f *Formula) References(declared func(string) bool) ([]string, error) {
	var refs []string
	for _, name := range f.Analyze().Identifiers {
		if declared(name) {
			refs = append(refs, name)
		}
	}
	if len(refs) == 0 {
		return nil, f.errorf("%w", ErrNoReference)
	}
	return refs, nil
}

type span struct {
	start, end int
	name       string
}

// Substitute returns the formula, in HCL syntax, with every reference to a
// name in values replaced by that value as a number or tuple literal. Text
// between references is copied unchanged.
func (f *Formula) Substitute(values map[string]ulc.Value) (string, error) {
	var spans []span
	for _, traversal := range f.expr.Variables() {
		root, ok := traversal[0].(hcl.TraverseRoot)
		if !ok {
			continue
		}
		if _, known := values[root.Name]; !known {
			continue
		}
		spans = append(spans, span{
			start: root.SrcRange.Start.Byte,
			end:   root.SrcRange.End.Byte,
			name:  root.Name,
		})
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	var out []byte
	pos := 0
	for _, s := range spans {
		lit, err := Literal(values[s.name])
		if err != nil {
			return "", f.errorf("substituting %q: %w", s.name, err)
		}
		out = append(out, f.text[pos:s.start]...)
		out = append(out, lit...)
		pos = s.end
	}
	out = append(out, f.text[pos:]...)
	return string(out), nil
}

// Evaluate substitutes values into the formula and computes the result.
func (f *Formula) Evaluate(values map[string]ulc.Value, env Env) (ulc.Value, error) {
	src, err := f.Substitute(values)
	if err != nil {
		return ulc.None(), err
	}
	v, err := eval(src, env)
	if err != nil {
		return ulc.None(), &Error{Variable: f.Variable, Formula: f.Source, Err: err}
	}
	return v, nil
}

// CheckFunctions reports the first function the formula calls that env
// does not provide.
func (f *Formula) CheckFunctions(env Env) error {
	for _, name := range f.Analyze().Functions {
		if _, ok := env.Functions[name]; !ok {
			return f.errorf("unknown function %q", name)
		}
	}
	return nil
}

func (f *Formula) errorf(format string, args ...any) error {
	return &Error{Variable: f.Variable, Formula: f.Source, Err: fmt.Errorf(format, args...)}
}

// Literal renders a value as HCL source: a number for scalars and a tuple
// for lists. Negative numbers are parenthesized so the text can be spliced
// next to any operator.
func Literal(v ulc.Value) ([]byte, error) {
	switch {
	case v.IsScalar():
		toks, err := numberTokens(v.Float())
		if err != nil {
			return nil, err
		}
		return toks.Bytes(), nil
	case v.IsList():
		elems := make([]hclwrite.Tokens, 0, v.Len())
		for _, x := range v.Floats() {
			toks, err := numberTokens(x)
			if err != nil {
				return nil, err
			}
			elems = append(elems, toks)
		}
		return hclwrite.TokensForTuple(elems).Bytes(), nil
	default:
		return nil, errors.New("value is None")
	}
}

func numberTokens(x float64) (hclwrite.Tokens, error) {
	var toks hclwrite.Tokens
	switch {
	case math.IsNaN(x):
		return nil, errors.New("NaN has no literal form")
	case math.IsInf(x, 0):
		toks = hclwrite.TokensForIdentifier("inf")
	default:
		toks = hclwrite.TokensForValue(cty.NumberFloatVal(math.Abs(x)))
	}
	if x >= 0 {
		return toks, nil
	}
	wrapped := hclwrite.Tokens{
		{Type: hclsyntax.TokenOParen, Bytes: []byte("(")},
		{Type: hclsyntax.TokenMinus, Bytes: []byte("-")},
	}
	wrapped = append(wrapped, toks...)
	wrapped = append(wrapped, &hclwrite.Token{Type: hclsyntax.TokenCParen, Bytes: []byte(")")})
	return wrapped, nil
}
