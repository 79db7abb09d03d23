package eval

import (
	"math"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dbfiller/dbfiller/internal/expr"
	"github.com/dbfiller/dbfiller/internal/value"
)

var (
	lowerCaser = cases.Lower(language.Und)
	titleCaser = cases.Title(language.Und)
)

// evalFunc dispatches a generic function call. REGEXP_LIKE is mandatory per
// §4.B; the rest are the named "optional set" implementations chose to
// support rather than raise UnsupportedFunction for.
func evalFunc(n *expr.Func, row Row, now Clock) (value.Value, error) {
	args := make([]value.Value, len(n.Args))
	for i, a := range n.Args {
		v, err := Eval(a, row, now)
		if err != nil {
			return value.Value{}, err
		}
		args[i] = v
	}

	switch n.Name {
	case "REGEXP_LIKE":
		if len(args) != 2 {
			return value.Value{}, typeMismatch("REGEXP_LIKE expects 2 arguments")
		}
		s, ok := asString(args[0])
		if !ok {
			return value.Value{}, typeMismatch("REGEXP_LIKE first argument must be a string")
		}
		pat, ok := asString(args[1])
		if !ok {
			return value.Value{}, typeMismatch("REGEXP_LIKE pattern must be a string")
		}
		re, err := regexp.Compile("^(?:" + pat + ")")
		if err != nil {
			return value.Value{}, typeMismatch("invalid REGEXP_LIKE pattern: " + err.Error())
		}
		return value.NewBool(re.MatchString(s)), nil

	case "UPPER":
		s, ok := argString(args, 0)
		if !ok {
			return value.Value{}, typeMismatch("UPPER requires a string argument")
		}
		return value.NewText(upperCaser.String(s)), nil

	case "LOWER":
		s, ok := argString(args, 0)
		if !ok {
			return value.Value{}, typeMismatch("LOWER requires a string argument")
		}
		return value.NewText(lowerCaser.String(s)), nil

	case "INITCAP":
		s, ok := argString(args, 0)
		if !ok {
			return value.Value{}, typeMismatch("INITCAP requires a string argument")
		}
		return value.NewText(titleCaser.String(strings.ToLower(s))), nil

	case "LENGTH":
		s, ok := argString(args, 0)
		if !ok {
			return value.Value{}, typeMismatch("LENGTH requires a string argument")
		}
		return value.NewInt(int64(len([]rune(s)))), nil

	case "TRIM":
		s, ok := argString(args, 0)
		if !ok {
			return value.Value{}, typeMismatch("TRIM requires a string argument")
		}
		return value.NewText(strings.TrimSpace(s)), nil

	case "SUBSTRING", "SUBSTR":
		s, ok := argString(args, 0)
		if !ok || len(args) < 2 {
			return value.Value{}, typeMismatch("SUBSTRING requires (string, start[, length])")
		}
		start, ok := value.AsNumeric(args[1])
		if !ok {
			return value.Value{}, typeMismatch("SUBSTRING start must be numeric")
		}
		runes := []rune(s)
		from := clampIndex(int(start)-1, len(runes))
		to := len(runes)
		if len(args) >= 3 {
			ln, ok := value.AsNumeric(args[2])
			if !ok {
				return value.Value{}, typeMismatch("SUBSTRING length must be numeric")
			}
			to = clampIndex(from+int(ln), len(runes))
		}
		if to < from {
			to = from
		}
		return value.NewText(string(runes[from:to])), nil

	case "ROUND":
		n0, ok := value.AsNumeric(args[0])
		if !ok {
			return value.Value{}, typeMismatch("ROUND requires a numeric argument")
		}
		digits := 0
		if len(args) >= 2 {
			d, ok := value.AsNumeric(args[1])
			if !ok {
				return value.Value{}, typeMismatch("ROUND precision must be numeric")
			}
			digits = int(d)
		}
		mul := math.Pow(10, float64(digits))
		return value.NewReal(math.Round(n0*mul) / mul), nil

	case "ABS":
		n0, ok := value.AsNumeric(args[0])
		if !ok {
			return value.Value{}, typeMismatch("ABS requires a numeric argument")
		}
		return numericResult(math.Abs(n0)), nil

	case "POWER":
		if len(args) != 2 {
			return value.Value{}, typeMismatch("POWER expects 2 arguments")
		}
		base, ok1 := value.AsNumeric(args[0])
		exp, ok2 := value.AsNumeric(args[1])
		if !ok1 || !ok2 {
			return value.Value{}, typeMismatch("POWER requires numeric arguments")
		}
		return numericResult(math.Pow(base, exp)), nil

	case "MOD":
		if len(args) != 2 {
			return value.Value{}, typeMismatch("MOD expects 2 arguments")
		}
		a, ok1 := value.AsNumeric(args[0])
		b, ok2 := value.AsNumeric(args[1])
		if !ok1 || !ok2 {
			return value.Value{}, typeMismatch("MOD requires numeric arguments")
		}
		if b == 0 {
			return value.Value{}, typeMismatch("MOD by zero")
		}
		return numericResult(math.Mod(a, b)), nil

	case "COALESCE":
		for _, a := range args {
			if !a.IsNull() {
				return a, nil
			}
		}
		return value.NewNull(), nil

	case "CONCAT":
		var b strings.Builder
		for _, a := range args {
			s, _ := asString(a)
			b.WriteString(s)
		}
		return value.NewText(b.String()), nil
	}

	return value.Value{}, unsupportedFunc(n.Name)
}

func argString(args []value.Value, i int) (string, bool) {
	if i >= len(args) {
		return "", false
	}
	return asString(args[i])
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}

func numericResult(f float64) value.Value {
	if f == math.Trunc(f) {
		return value.NewInt(int64(f))
	}
	return value.NewReal(f)
}
