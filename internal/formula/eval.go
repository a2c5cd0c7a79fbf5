package formula

import (
	"fmt"
	"math"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/beamgridgo/internal/ulc"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// Env is the namespace a formula is evaluated in.
type Env struct {
	Functions Functions
	Constants Constants
}

// DefaultEnv returns the default functions and constants.
func DefaultEnv() Env {
	return Env{Functions: DefaultFunctions(), Constants: DefaultConstants()}
}

// operators lists the arithmetic operations a formula may use. Comparison
// and logical operators are rejected.
var operators = map[*hclsyntax.Operation]string{
	hclsyntax.OpAdd:      "+",
	hclsyntax.OpSubtract: "-",
	hclsyntax.OpMultiply: "*",
	hclsyntax.OpDivide:   "/",
	hclsyntax.OpModulo:   "%",
	hclsyntax.OpNegate:   "-",
}

func eval(src string, env Env) (result ulc.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = ulc.None(), fmt.Errorf("evaluation panicked: %v", r)
		}
	}()

	expr, diags := hclsyntax.ParseExpression([]byte(src), filename, hcl.InitialPos)
	if diags.HasErrors() {
		return ulc.None(), diags
	}
	return (&evaluator{env: env}).eval(expr)
}

type evaluator struct {
	env Env
}

func (ev *evaluator) eval(expr hclsyntax.Expression) (ulc.Value, error) {
	switch e := expr.(type) {
	case *hclsyntax.LiteralValueExpr:
		return fromCty(e.Val, e.SrcRange)

	case *hclsyntax.ParenthesesExpr:
		return ev.eval(e.Expression)

	case *hclsyntax.TupleConsExpr:
		elems := make([]float64, 0, len(e.Exprs))
		for _, item := range e.Exprs {
			v, err := ev.eval(item)
			if err != nil {
				return ulc.None(), err
			}
			if !v.IsScalar() {
				return ulc.None(), fmt.Errorf("%s: nested lists are not supported", item.Range())
			}
			elems = append(elems, v.Float())
		}
		return ulc.List(elems), nil

	case *hclsyntax.ScopeTraversalExpr:
		name := e.Traversal.RootName()
		c, ok := ev.env.Constants[name]
		if !ok {
			return ulc.None(), fmt.Errorf("%s: unknown identifier %q", e.SrcRange, name)
		}
		return index(ulc.Scalar(c), e.Traversal[1:])

	case *hclsyntax.RelativeTraversalExpr:
		src, err := ev.eval(e.Source)
		if err != nil {
			return ulc.None(), err
		}
		return index(src, e.Traversal)

	case *hclsyntax.IndexExpr:
		coll, err := ev.eval(e.Collection)
		if err != nil {
			return ulc.None(), err
		}
		key, err := ev.eval(e.Key)
		if err != nil {
			return ulc.None(), err
		}
		if !key.IsScalar() {
			return ulc.None(), fmt.Errorf("%s: index must be a number", e.BracketRange)
		}
		return at(coll, key.Float(), e.BracketRange)

	case *hclsyntax.UnaryOpExpr:
		if _, ok := operators[e.Op]; !ok {
			return ulc.None(), fmt.Errorf("%s: operator is not supported", e.SymbolRange)
		}
		v, err := ev.eval(e.Val)
		if err != nil {
			return ulc.None(), err
		}
		return broadcast("-", e.Op.Impl, []ulc.Value{v})

	case *hclsyntax.BinaryOpExpr:
		sym, ok := operators[e.Op]
		if !ok {
			return ulc.None(), fmt.Errorf("%s: operator is not supported", e.SrcRange)
		}
		lhs, err := ev.eval(e.LHS)
		if err != nil {
			return ulc.None(), err
		}
		rhs, err := ev.eval(e.RHS)
		if err != nil {
			return ulc.None(), err
		}
		return broadcast(sym, e.Op.Impl, []ulc.Value{lhs, rhs})

	case *hclsyntax.FunctionCallExpr:
		fn, ok := ev.env.Functions[e.Name]
		if !ok {
			return ulc.None(), fmt.Errorf("%s: unknown function %q", e.NameRange, e.Name)
		}
		if e.ExpandFinal {
			return ulc.None(), fmt.Errorf("%s: argument expansion is not supported", e.CloseParenRange)
		}
		args := make([]ulc.Value, 0, len(e.Args))
		for _, a := range e.Args {
			v, err := ev.eval(a)
			if err != nil {
				return ulc.None(), err
			}
			args = append(args, v)
		}
		return broadcast(e.Name, fn, args)

	default:
		return ulc.None(), fmt.Errorf("%s: expression is not supported", expr.Range())
	}
}

func index(v ulc.Value, steps hcl.Traversal) (ulc.Value, error) {
	for _, step := range steps {
		idx, ok := step.(hcl.TraverseIndex)
		if !ok {
			return ulc.None(), fmt.Errorf("%s: only numeric indexing is supported", step.SourceRange())
		}
		if idx.Key.Type() != cty.Number || idx.Key.IsNull() {
			return ulc.None(), fmt.Errorf("%s: index must be a number", idx.SrcRange)
		}
		k, _ := idx.Key.AsBigFloat().Float64()
		var err error
		if v, err = at(v, k, idx.SrcRange); err != nil {
			return ulc.None(), err
		}
	}
	return v, nil
}

// at indexes a list. Negative indices count from the end.
func at(v ulc.Value, k float64, rng hcl.Range) (ulc.Value, error) {
	if !v.IsList() {
		return ulc.None(), fmt.Errorf("%s: only lists can be indexed", rng)
	}
	if k != math.Trunc(k) {
		return ulc.None(), fmt.Errorf("%s: index %v is not an integer", rng, k)
	}
	i := int(k)
	if i < 0 {
		i += v.Len()
	}
	if i < 0 || i >= v.Len() {
		return ulc.None(), fmt.Errorf("%s: index %v out of range for length %d", rng, k, v.Len())
	}
	return v.At(i), nil
}

// broadcast calls fn with args. Arguments for number parameters that are
// lists are applied element by element; all such lists must share one
// length and scalars are repeated against them. Arguments for list
// parameters are passed whole.
func broadcast(name string, fn function.Function, args []ulc.Value) (ulc.Value, error) {
	params := fn.Params()
	varParam := fn.VarParam()

	whole := make([]bool, len(args))
	n := -1
	for i, a := range args {
		var p *function.Parameter
		switch {
		case i < len(params):
			p = &params[i]
		case varParam != nil:
			p = varParam
		default:
			return ulc.None(), fmt.Errorf("%s: expected %d arguments, got %d", name, len(params), len(args))
		}
		if p.Type.IsListType() {
			whole[i] = true
			continue
		}
		if !a.IsList() {
			continue
		}
		switch {
		case n < 0:
			n = a.Len()
		case n != a.Len():
			return ulc.None(), fmt.Errorf("%s: operands could not be broadcast together with lengths %d and %d", name, n, a.Len())
		}
	}

	call := func(row int) (cty.Value, error) {
		in := make([]cty.Value, len(args))
		for i, a := range args {
			var err error
			switch {
			case whole[i]:
				in[i], err = listToCty(a)
			case a.IsList():
				in[i], err = toCty(a.At(row).Float())
			default:
				in[i], err = toCty(a.Float())
			}
			if err != nil {
				return cty.NilVal, fmt.Errorf("%s: %w", name, err)
			}
		}
		out, err := fn.Call(in)
		if err != nil {
			return cty.NilVal, fmt.Errorf("%s: %w", name, err)
		}
		return out, nil
	}

	if n < 0 {
		out, err := call(0)
		if err != nil {
			return ulc.None(), err
		}
		return fromCty(out, hcl.Range{Filename: filename})
	}

	col := make([]float64, n)
	for row := range col {
		out, err := call(row)
		if err != nil {
			return ulc.None(), err
		}
		if col[row], err = FloatOf(out); err != nil {
			return ulc.None(), fmt.Errorf("%s: %w", name, err)
		}
	}
	return ulc.List(col), nil
}

func toCty(x float64) (cty.Value, error) {
	if math.IsNaN(x) {
		return cty.NilVal, fmt.Errorf("argument is not a number")
	}
	return cty.NumberFloatVal(x), nil
}

func listToCty(v ulc.Value) (cty.Value, error) {
	if v.IsNone() {
		return cty.NilVal, fmt.Errorf("argument is None")
	}
	xs := v.Floats()
	if len(xs) == 0 {
		return cty.ListValEmpty(cty.Number), nil
	}
	elems := make([]cty.Value, len(xs))
	for i, x := range xs {
		var err error
		if elems[i], err = toCty(x); err != nil {
			return cty.NilVal, err
		}
	}
	return cty.ListVal(elems), nil
}

// fromCty converts a number, or a list or tuple of numbers, to a Value.
func fromCty(v cty.Value, rng hcl.Range) (ulc.Value, error) {
	ty := v.Type()
	switch {
	case v.IsNull():
		return ulc.None(), fmt.Errorf("%s: null is not a number", rng)
	case ty == cty.Number:
		f, _ := v.AsBigFloat().Float64()
		return ulc.Scalar(f), nil
	case ty.IsListType() || ty.IsTupleType():
		xs := make([]float64, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, el := it.Element()
			f, err := FloatOf(el)
			if err != nil {
				return ulc.None(), fmt.Errorf("%s: %w", rng, err)
			}
			xs = append(xs, f)
		}
		return ulc.List(xs), nil
	default:
		return ulc.None(), fmt.Errorf("%s: %s values are not supported", rng, ty.FriendlyName())
	}
}
