// Package hints implements the condition extractor of §4.C: a reduction of
// a CHECK AST to per-column {operator, value} hints that accelerate value
// synthesis without replacing evaluation as the authority on correctness.
package hints

import (
	"strings"

	"github.com/dbfiller/dbfiller/internal/expr"
)

// Hint is one {operator, rhs} pair collected for a column. rhs is kept as an
// unevaluated AST node since it may reference another column (e.g. `x < y`
// records {"<", y} under x) and must be resolved against the row in
// progress at synthesis time, not at extraction time.
type Hint struct {
	Operator string
	Items    []expr.Node // single element for scalar ops, >1 for IN/NOT IN
}

// Set maps column name to the hints collected for it. A column may carry
// multiple hints (e.g. both `x > 0` and `x < 100`).
type Set map[string][]Hint

// Extract walks node and returns the hint set for every column mentioned on
// the left of a comparison, per the rules of §4.C.
func Extract(node expr.Node) Set {
	s := Set{}
	walk(node, s, "")
	return s
}

func walk(node expr.Node, s Set, notPrefix string) {
	switch n := node.(type) {
	case *expr.BinOp:
		switch n.Op {
		case "AND", "OR":
			walk(n.L, s, notPrefix)
			walk(n.R, s, notPrefix)
			return
		}
		if id, ok := n.L.(*expr.Ident); ok {
			s[id.Name] = append(s[id.Name], Hint{Operator: notPrefix + n.Op, Items: []expr.Node{n.R}})
		}

	case *expr.UnaryNot:
		walk(n.E, s, notPrefix+"NOT ")

	case *expr.Between:
		if id, ok := n.V.(*expr.Ident); ok {
			s[id.Name] = append(s[id.Name],
				Hint{Operator: notPrefix + ">=", Items: []expr.Node{n.Lo}},
				Hint{Operator: notPrefix + "<=", Items: []expr.Node{n.Hi}},
			)
		}

	case *expr.InList:
		if id, ok := n.V.(*expr.Ident); ok {
			op := "IN"
			if n.Negate {
				op = "NOT IN"
			}
			s[id.Name] = append(s[id.Name], Hint{Operator: notPrefix + op, Items: n.Items})
		}

	case *expr.IsNull:
		if id, ok := n.V.(*expr.Ident); ok {
			op := "IS NULL"
			if n.Negate {
				op = "IS NOT NULL"
			}
			s[id.Name] = append(s[id.Name], Hint{Operator: notPrefix + op})
		}
	}
}

// RegexHint returns the pattern of a `REGEXP_LIKE(column, 'pattern')` call
// found anywhere in node for the given column, used by the value
// synthesizer's resolution-order item 3.
func RegexHint(node expr.Node, column string) (string, bool) {
	var found string
	var ok bool
	var visit func(n expr.Node)
	visit = func(n expr.Node) {
		if ok {
			return
		}
		switch v := n.(type) {
		case *expr.Func:
			if strings.EqualFold(v.Name, "REGEXP_LIKE") && len(v.Args) == 2 {
				if id, isID := v.Args[0].(*expr.Ident); isID && id.Name == column {
					if lit, isLit := v.Args[1].(*expr.Literal); isLit && lit.Kind == expr.StrLiteral {
						found, ok = lit.Str, true
						return
					}
				}
			}
			for _, a := range v.Args {
				visit(a)
			}
		case *expr.BinOp:
			visit(v.L)
			visit(v.R)
		case *expr.UnaryNot:
			visit(v.E)
		case *expr.Between:
			visit(v.V)
			visit(v.Lo)
			visit(v.Hi)
		case *expr.InList:
			visit(v.V)
			for _, it := range v.Items {
				visit(it)
			}
		case *expr.Like:
			visit(v.V)
		case *expr.IsNull:
			visit(v.V)
		case *expr.Extract:
			visit(v.Source)
		case *expr.DateFn:
			visit(v.Arg)
		}
	}
	visit(node)
	return found, ok
}

// LikeHint returns the pattern of a `column [NOT] LIKE 'pattern'` clause
// found anywhere in node for the given column, used by the condition-
// directed synthesizer's string branch (§4.D, final paragraph).
func LikeHint(node expr.Node, column string) (pattern string, negate bool, ok bool) {
	var visit func(n expr.Node)
	visit = func(n expr.Node) {
		if ok {
			return
		}
		switch v := n.(type) {
		case *expr.Like:
			if id, isID := v.V.(*expr.Ident); isID && id.Name == column {
				pattern, negate, ok = v.Pattern, v.Negate, true
				return
			}
		case *expr.Func:
			for _, a := range v.Args {
				visit(a)
			}
		case *expr.BinOp:
			visit(v.L)
			visit(v.R)
		case *expr.UnaryNot:
			visit(v.E)
		case *expr.Between:
			visit(v.V)
			visit(v.Lo)
			visit(v.Hi)
		case *expr.InList:
			visit(v.V)
			for _, it := range v.Items {
				visit(it)
			}
		case *expr.IsNull:
			visit(v.V)
		case *expr.Extract:
			visit(v.Source)
		case *expr.DateFn:
			visit(v.Arg)
		}
	}
	visit(node)
	return pattern, negate, ok
}
