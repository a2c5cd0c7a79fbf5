package formula

import (
	"sort"

	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// Analysis lists what an expression refers to.
type Analysis struct {
	// Identifiers holds the unique root names of all variable traversals,
	// sorted.
	Identifiers []string
	// Functions holds the unique names of all called functions, sorted.
	Functions []string
}

// Analyze walks an expression to find its identifiers and function calls.
func Analyze(expr hclsyntax.Expression) Analysis {
	idents := make(map[string]struct{})
	funcs := make(map[string]struct{})

	if expr != nil {
		// Variables() already descends into every sub-expression.
		for _, traversal := range expr.Variables() {
			idents[traversal.RootName()] = struct{}{}
		}
		walkForFunctions(expr, funcs)
	}

	return Analysis{
		Identifiers: sortedSet(idents),
		Functions:   sortedSet(funcs),
	}
}

// walkForFunctions recursively walks the AST, looking only for function calls.
func walkForFunctions(expr hclsyntax.Expression, functions map[string]struct{}) {
	if expr == nil {
		return
	}
	switch e := expr.(type) {
	case *hclsyntax.FunctionCallExpr:
		functions[e.Name] = struct{}{}
		for _, arg := range e.Args {
			walkForFunctions(arg, functions)
		}
	case *hclsyntax.BinaryOpExpr:
		walkForFunctions(e.LHS, functions)
		walkForFunctions(e.RHS, functions)
	case *hclsyntax.ConditionalExpr:
		walkForFunctions(e.Condition, functions)
		walkForFunctions(e.TrueResult, functions)
		walkForFunctions(e.FalseResult, functions)
	case *hclsyntax.UnaryOpExpr:
		walkForFunctions(e.Val, functions)
	case *hclsyntax.TupleConsExpr:
		for _, item := range e.Exprs {
			walkForFunctions(item, functions)
		}
	case *hclsyntax.IndexExpr:
		walkForFunctions(e.Collection, functions)
		walkForFunctions(e.Key, functions)
	case *hclsyntax.RelativeTraversalExpr:
		walkForFunctions(e.Source, functions)
	case *hclsyntax.ParenthesesExpr:
		walkForFunctions(e.Expression, functions)
	}
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
