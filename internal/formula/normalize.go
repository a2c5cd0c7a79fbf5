package formula

import (
	"errors"
	"strings"
	"unicode"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
)

// namespaces are module prefixes accepted in front of a function or
// constant name and dropped before parsing: np.sqrt(x) is sqrt(x).
var namespaces = map[string]bool{"np": true, "numpy": true}

// piece is one lexed token together with the whitespace that preceded it.
type piece struct {
	typ  hclsyntax.TokenType
	pre  string
	text string
}

// normalize rewrites formula text into the HCL expression dialect:
//
//   - HCL lets identifiers contain '-', so a-b lexes as one name. Such
//     identifiers are split back into operands and subtractions.
//   - Namespace prefixes such as np. are dropped.
//   - x**y becomes pow(x, y). ** binds tighter than unary minus and
//     groups to the right.
//
// Text the lexer rejects is returned unchanged so that the parser reports
// the error.
func normalize(src string) (string, error) {
	toks, diags := hclsyntax.LexExpression([]byte(src), filename, hcl.InitialPos)
	if diags.HasErrors() {
		return src, nil
	}

	var ps []piece
	pos := 0
	for _, tok := range toks {
		if tok.Type == hclsyntax.TokenEOF {
			break
		}
		pre := src[pos:tok.Range.Start.Byte]
		pos = tok.Range.End.Byte
		if tok.Type == hclsyntax.TokenIdent && strings.Contains(string(tok.Bytes), "-") {
			ps = append(ps, splitIdent(pre, string(tok.Bytes))...)
			continue
		}
		ps = append(ps, piece{typ: tok.Type, pre: pre, text: string(tok.Bytes)})
	}
	tail := src[pos:]

	ps = mergeDecimals(ps)
	ps = dropNamespaces(ps)
	ps, err := rewritePower(ps)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, p := range ps {
		b.WriteString(p.pre)
		b.WriteString(p.text)
	}
	b.WriteString(tail)
	return b.String(), nil
}

// splitIdent turns an identifier such as v1-1 or a-b into operands joined
// by minus tokens. An exponent split by the lexer (x-1e-3) is rejoined.
func splitIdent(pre, ident string) []piece {
	parts := strings.Split(ident, "-")
	var ps []piece
	for i := 0; i < len(parts); i++ {
		part := parts[i]
		if isExponentPrefix(part) && i+1 < len(parts) && startsWithDigit(parts[i+1]) {
			part += "-" + parts[i+1]
			i++
		}
		if i > 0 {
			ps = append(ps, piece{typ: hclsyntax.TokenMinus, pre: " ", text: "-"})
			pre = " "
		}
		if part == "" {
			continue
		}
		typ := hclsyntax.TokenIdent
		if startsWithDigit(part) {
			typ = hclsyntax.TokenNumberLit
		}
		ps = append(ps, piece{typ: typ, pre: pre, text: part})
	}
	return ps
}

func startsWithDigit(s string) bool {
	return s != "" && unicode.IsDigit(rune(s[0]))
}

// isExponentPrefix reports whether s is a number cut off after its
// exponent marker, as in the "1e" of 1e-3.
func isExponentPrefix(s string) bool {
	if !startsWithDigit(s) {
		return false
	}
	last := s[len(s)-1]
	return last == 'e' || last == 'E'
}

// mergeDecimals rejoins a number cut out of an identifier with the
// fraction the lexer read after it: x-1.5 lexes as x-1, ".", 5.
func mergeDecimals(ps []piece) []piece {
	out := make([]piece, 0, len(ps))
	for i := 0; i < len(ps); i++ {
		p := ps[i]
		if p.typ == hclsyntax.TokenNumberLit && i+2 < len(ps) &&
			ps[i+1].typ == hclsyntax.TokenDot && ps[i+1].pre == "" &&
			ps[i+2].typ == hclsyntax.TokenNumberLit && ps[i+2].pre == "" {
			p.text += "." + ps[i+2].text
			i += 2
		}
		out = append(out, p)
	}
	return out
}

func dropNamespaces(ps []piece) []piece {
	out := make([]piece, 0, len(ps))
	for i := 0; i < len(ps); i++ {
		p := ps[i]
		if p.typ == hclsyntax.TokenIdent && namespaces[p.text] &&
			i+2 < len(ps) && ps[i+1].typ == hclsyntax.TokenDot && ps[i+2].typ == hclsyntax.TokenIdent {
			name := ps[i+2]
			name.pre = p.pre
			out = append(out, name)
			i += 2
			continue
		}
		out = append(out, p)
	}
	return out
}

var errPowerOperand = errors.New("operator ** is missing an operand")

// rewritePower replaces the rightmost x**y with pow(x, y) until none is
// left. Working from the right makes a**b**c group as a**(b**c).
func rewritePower(ps []piece) ([]piece, error) {
	for {
		i := lastPower(ps)
		if i < 0 {
			return ps, nil
		}
		start, ok := operandStart(ps, i-1)
		if !ok {
			return nil, errPowerOperand
		}
		end, ok := operandEnd(ps, i+2)
		if !ok {
			return nil, errPowerOperand
		}

		lhs := append([]piece(nil), ps[start:i]...)
		rhs := append([]piece(nil), ps[i+2:end+1]...)
		lhs[0].pre = ""
		rhs[0].pre = " "

		call := []piece{
			{typ: hclsyntax.TokenIdent, pre: ps[start].pre, text: "pow"},
			{typ: hclsyntax.TokenOParen, text: "("},
		}
		call = append(call, lhs...)
		call = append(call, piece{typ: hclsyntax.TokenComma, text: ","})
		call = append(call, rhs...)
		call = append(call, piece{typ: hclsyntax.TokenCParen, text: ")"})

		rest := append(call, ps[end+1:]...)
		ps = append(ps[:start:start], rest...)
	}
}

// lastPower returns the index of the first star of the rightmost **.
func lastPower(ps []piece) int {
	for i := len(ps) - 2; i >= 0; i-- {
		if ps[i].typ == hclsyntax.TokenStar && ps[i+1].typ == hclsyntax.TokenStar && ps[i+1].pre == "" {
			return i
		}
	}
	return -1
}

// operandStart finds where the operand ending at index end begins: a name,
// a number, a parenthesized group, a tuple, a call, or any of these
// followed by index brackets.
func operandStart(ps []piece, end int) (int, bool) {
	j := end
	for j >= 0 {
		switch ps[j].typ {
		case hclsyntax.TokenIdent, hclsyntax.TokenNumberLit:
			return j, true
		case hclsyntax.TokenCParen, hclsyntax.TokenCBrack:
			open := matchOpen(ps, j)
			if open < 0 {
				return 0, false
			}
			if open == 0 {
				return 0, true
			}
			prev := ps[open-1].typ
			switch {
			case ps[open].typ == hclsyntax.TokenOParen && prev == hclsyntax.TokenIdent:
				return open - 1, true
			case ps[open].typ == hclsyntax.TokenOBrack &&
				(prev == hclsyntax.TokenIdent || prev == hclsyntax.TokenCParen || prev == hclsyntax.TokenCBrack):
				j = open - 1
				continue
			}
			return open, true
		default:
			return 0, false
		}
	}
	return 0, false
}

// operandEnd finds the last index of the operand starting at index start.
// Leading unary minus signs belong to the operand.
func operandEnd(ps []piece, start int) (int, bool) {
	j := start
	for j < len(ps) && ps[j].typ == hclsyntax.TokenMinus {
		j++
	}
	if j >= len(ps) {
		return 0, false
	}
	var end int
	switch ps[j].typ {
	case hclsyntax.TokenIdent:
		end = j
		if j+1 < len(ps) && ps[j+1].typ == hclsyntax.TokenOParen {
			if end = matchClose(ps, j+1); end < 0 {
				return 0, false
			}
		}
	case hclsyntax.TokenNumberLit:
		end = j
	case hclsyntax.TokenOParen, hclsyntax.TokenOBrack:
		if end = matchClose(ps, j); end < 0 {
			return 0, false
		}
	default:
		return 0, false
	}
	for end+1 < len(ps) && ps[end+1].typ == hclsyntax.TokenOBrack {
		if end = matchClose(ps, end+1); end < 0 {
			return 0, false
		}
	}
	return end, true
}

func bracketDepth(t hclsyntax.TokenType) int {
	switch t {
	case hclsyntax.TokenOParen, hclsyntax.TokenOBrack, hclsyntax.TokenOBrace:
		return 1
	case hclsyntax.TokenCParen, hclsyntax.TokenCBrack, hclsyntax.TokenCBrace:
		return -1
	}
	return 0
}

func matchClose(ps []piece, open int) int {
	depth := 0
	for i := open; i < len(ps); i++ {
		depth += bracketDepth(ps[i].typ)
		if depth == 0 {
			return i
		}
	}
	return -1
}

func matchOpen(ps []piece, closing int) int {
	depth := 0
	for i := closing; i >= 0; i-- {
		depth += bracketDepth(ps[i].typ)
		if depth == 0 {
			return i
		}
	}
	return -1
}
