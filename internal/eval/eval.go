// Package eval evaluates a §4.A CHECK-expression AST (internal/expr) against
// a row, implementing the operand-unification and operator semantics of
// §4.B. Bool is the CHECK boundary: it never returns an error, matching
// "the evaluator returns false on uncaught errors inside a CHECK".
package eval

import (
	"math"
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dbfiller/dbfiller/internal/expr"
	"github.com/dbfiller/dbfiller/internal/value"
)

// Row is a column-name → typed-value mapping, the evaluation environment.
type Row map[string]value.Value

// Clock is injected so CURRENT_DATE is testable; defaults to time.Now.
type Clock func() time.Time

var upperCaser = cases.Upper(language.Und)

// Bool evaluates node against row and reduces the result to a boolean,
// recovering any evaluation error to false (§4.B, §4.H "Unparseable CHECK
// expressions ... treated as always-false").
func Bool(node expr.Node, row Row, now Clock) bool {
	v, err := Eval(node, row, now)
	if err != nil {
		return false
	}
	b, err := asBool(v)
	if err != nil {
		return false
	}
	return b
}

// Eval evaluates node against row, returning the typed scalar result. Most
// callers of a CHECK expression want Bool; Eval is exposed so the condition
// extractor and tests can inspect sub-expression results directly.
func Eval(node expr.Node, row Row, now Clock) (value.Value, error) {
	if now == nil {
		now = time.Now
	}
	switch n := node.(type) {
	case *expr.Literal:
		return evalLiteral(n), nil

	case *expr.Ident:
		return resolveIdent(n.Name, row, now()), nil

	case *expr.BinOp:
		return evalBinOp(n, row, now)

	case *expr.UnaryNot:
		v, err := Eval(n.E, row, now)
		if err != nil {
			return value.Value{}, err
		}
		b, err := asBool(v)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewBool(!b), nil

	case *expr.Between:
		v, err := Eval(n.V, row, now)
		if err != nil {
			return value.Value{}, err
		}
		lo, err := Eval(n.Lo, row, now)
		if err != nil {
			return value.Value{}, err
		}
		hi, err := Eval(n.Hi, row, now)
		if err != nil {
			return value.Value{}, err
		}
		geLo, ok1 := compareOp(">=", v, lo)
		leHi, ok2 := compareOp("<=", v, hi)
		if !ok1 || !ok2 {
			return value.NewBool(false), nil
		}
		return value.NewBool(geLo && leHi), nil

	case *expr.InList:
		v, err := Eval(n.V, row, now)
		if err != nil {
			return value.Value{}, err
		}
		found := false
		for _, item := range n.Items {
			iv, err := Eval(item, row, now)
			if err != nil {
				return value.Value{}, err
			}
			if value.Equal(v, iv) {
				found = true
				break
			}
		}
		if n.Negate {
			found = !found
		}
		return value.NewBool(found), nil

	case *expr.Like:
		v, err := Eval(n.V, row, now)
		if err != nil {
			return value.Value{}, err
		}
		s, ok := asString(v)
		if !ok {
			return value.Value{}, typeMismatch("LIKE requires a string operand")
		}
		matched := likeMatch(s, n.Pattern)
		if n.Negate {
			matched = !matched
		}
		return value.NewBool(matched), nil

	case *expr.IsNull:
		v, err := Eval(n.V, row, now)
		if err != nil {
			return value.Value{}, err
		}
		isNull := v.IsNull()
		if n.Negate {
			isNull = !isNull
		}
		return value.NewBool(isNull), nil

	case *expr.Func:
		return evalFunc(n, row, now)

	case *expr.Extract:
		src, err := Eval(n.Source, row, now)
		if err != nil {
			return value.Value{}, err
		}
		t, ok := value.AsDate(src)
		if !ok {
			return value.Value{}, typeMismatch("EXTRACT requires a date-coercible operand")
		}
		field := upperCaser.String(n.Field)
		switch field {
		case "YEAR":
			return value.NewInt(int64(t.Year())), nil
		case "MONTH":
			return value.NewInt(int64(t.Month())), nil
		case "DAY":
			return value.NewInt(int64(t.Day())), nil
		}
		return value.Value{}, typeMismatch("EXTRACT field must be YEAR, MONTH, or DAY, got " + n.Field)

	case *expr.DateFn:
		arg, err := Eval(n.Arg, row, now)
		if err != nil {
			return value.Value{}, err
		}
		t, ok := value.AsDate(arg)
		if !ok {
			return value.Value{}, typeMismatch("DATE() requires a date-coercible operand")
		}
		return value.NewDate(t), nil
	}
	return value.Value{}, typeMismatch("unrecognized AST node")
}

func evalLiteral(n *expr.Literal) value.Value {
	switch n.Kind {
	case expr.NumLiteral:
		if n.Num == math.Trunc(n.Num) && !math.IsInf(n.Num, 0) {
			return value.NewInt(int64(n.Num))
		}
		return value.NewReal(n.Num)
	case expr.StrLiteral:
		return value.NewText(n.Str)
	case expr.BoolLiteral:
		return value.NewBool(n.Bool)
	}
	return value.NewNull()
}

// resolveIdent implements §4.B identifier lookup: row column, then
// CURRENT_DATE, then TRUE/FALSE, else the bare name as a string literal.
func resolveIdent(name string, row Row, now time.Time) value.Value {
	if v, ok := row[name]; ok {
		return v
	}
	switch upperCaser.String(name) {
	case "CURRENT_DATE":
		return value.NewDate(now)
	case "TRUE":
		return value.NewBool(true)
	case "FALSE":
		return value.NewBool(false)
	}
	return value.NewText(name)
}

func evalBinOp(n *expr.BinOp, row Row, now Clock) (value.Value, error) {
	switch n.Op {
	case "AND", "OR":
		l, err := Eval(n.L, row, now)
		if err != nil {
			return value.Value{}, err
		}
		lb, err := asBool(l)
		if err != nil {
			return value.Value{}, err
		}
		if n.Op == "AND" && !lb {
			return value.NewBool(false), nil
		}
		if n.Op == "OR" && lb {
			return value.NewBool(true), nil
		}
		r, err := Eval(n.R, row, now)
		if err != nil {
			return value.Value{}, err
		}
		rb, err := asBool(r)
		if err != nil {
			return value.Value{}, err
		}
		return value.NewBool(rb), nil

	case "+", "-", "*", "/":
		l, err := Eval(n.L, row, now)
		if err != nil {
			return value.Value{}, err
		}
		r, err := Eval(n.R, row, now)
		if err != nil {
			return value.Value{}, err
		}
		ln, ok := value.AsNumeric(l)
		if !ok {
			return value.Value{}, typeMismatch("arithmetic operand is not numeric")
		}
		rn, ok := value.AsNumeric(r)
		if !ok {
			return value.Value{}, typeMismatch("arithmetic operand is not numeric")
		}
		var result float64
		switch n.Op {
		case "+":
			result = ln + rn
		case "-":
			result = ln - rn
		case "*":
			result = ln * rn
		case "/":
			if rn == 0 {
				return value.Value{}, typeMismatch("division by zero")
			}
			result = ln / rn
		}
		if result == math.Trunc(result) {
			return value.NewInt(int64(result)), nil
		}
		return value.NewReal(result), nil

	default:
		l, err := Eval(n.L, row, now)
		if err != nil {
			return value.Value{}, err
		}
		r, err := Eval(n.R, row, now)
		if err != nil {
			return value.Value{}, err
		}
		b, ok := compareOp(n.Op, l, r)
		if !ok {
			return value.NewBool(false), nil
		}
		return value.NewBool(b), nil
	}
}

// compareOp implements the ordered-comparison operators over unified
// operands (§4.B). The second return is false when the operands are not
// comparable, in which case the caller treats the comparison as false
// rather than erroring.
func compareOp(op string, l, r value.Value) (bool, bool) {
	if op == "=" {
		return value.Equal(l, r), true
	}
	if op == "!=" || op == "<>" {
		return !value.Equal(l, r), true
	}
	if l.IsNull() || r.IsNull() {
		return false, true
	}
	c, ok := value.Compare(l, r)
	if !ok {
		return false, false
	}
	switch op {
	case "<":
		return c < 0, true
	case "<=":
		return c <= 0, true
	case ">":
		return c > 0, true
	case ">=":
		return c >= 0, true
	}
	return false, false
}

func asBool(v value.Value) (bool, error) {
	switch v.Kind {
	case value.Bool:
		return v.B, nil
	case value.Text:
		switch upperCaser.String(v.S) {
		case "TRUE":
			return true, nil
		case "FALSE":
			return false, nil
		}
	}
	return false, typeMismatch("expected a boolean-valued expression")
}

func asString(v value.Value) (string, bool) {
	switch v.Kind {
	case value.Text, value.UUID:
		return v.S, true
	case value.Date:
		return value.FormatDate(v.T), true
	case value.DateTime:
		return value.FormatDateTime(v.T), true
	default:
		return v.String(), true
	}
}

// likeMatch implements §9's "% and _ are SQL wildcards only in LIKE
// contexts": % → .*, _ → ., anchored at both ends.
func likeMatch(s, pattern string) bool {
	var b strings.Builder
	b.WriteByte('^')
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteByte('.')
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteByte('$')
	re, err := regexp.Compile("(?s)" + b.String())
	if err != nil {
		return false
	}
	return re.MatchString(s)
}
