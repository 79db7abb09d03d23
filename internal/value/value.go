// Package value implements the tagged scalar representation shared by the
// CHECK-expression evaluator, the value synthesizer, and the row engine.
//
// A Value is one of Null, Int, Real, Decimal, Bool, Text, Date, DateTime,
// Time, or UUID. Operand unification for ordered comparisons lives here
// (Unify), since both the evaluator and the synthesizer need the same
// date/numeric coercion rules.
package value

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ncruces/go-strftime"
	"github.com/shopspring/decimal"
)

// Kind tags the concrete type carried by a Value.
type Kind int

const (
	Null Kind = iota
	Int
	Real
	Decimal
	Bool
	Text
	Date
	DateTime
	Time
	UUID
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Int:
		return "int"
	case Real:
		return "real"
	case Decimal:
		return "decimal"
	case Bool:
		return "bool"
	case Text:
		return "text"
	case Date:
		return "date"
	case DateTime:
		return "datetime"
	case Time:
		return "time"
	case UUID:
		return "uuid"
	default:
		return "unknown"
	}
}

// Value is a dynamically-typed scalar: exactly one of the fields below is
// meaningful, selected by Kind.
type Value struct {
	Kind Kind
	I    int64
	R    float64
	D    decimal.Decimal
	B    bool
	S    string
	T    time.Time
}

// Date layouts recognized by §4.B operand unification, in priority order.
var dateLayouts = []string{"2006-01-02", "01-02-2006", "02-01-2006"}

// strftimePatterns mirrors dateLayouts using the SQL-ish strftime notation
// named explicitly in the spec (%Y-%m-%d, %m-%d-%Y, %d-%m-%Y).
var strftimePatterns = []string{"%Y-%m-%d", "%m-%d-%Y", "%d-%m-%Y"}

func NewNull() Value                   { return Value{Kind: Null} }
func NewInt(i int64) Value             { return Value{Kind: Int, I: i} }
func NewReal(r float64) Value          { return Value{Kind: Real, R: r} }
func NewDecimal(d decimal.Decimal) Value { return Value{Kind: Decimal, D: d} }
func NewBool(b bool) Value             { return Value{Kind: Bool, B: b} }
func NewText(s string) Value           { return Value{Kind: Text, S: s} }
func NewDate(t time.Time) Value        { return Value{Kind: Date, T: t} }
func NewDateTime(t time.Time) Value    { return Value{Kind: DateTime, T: t} }
func NewTime(t time.Time) Value        { return Value{Kind: Time, T: t} }
func NewUUID(id uuid.UUID) Value       { return Value{Kind: UUID, S: id.String()} }

func (v Value) IsNull() bool { return v.Kind == Null }

// AsDate attempts to coerce v to a calendar date, trying each recognized
// strftime-style layout in turn. The second return is false if v is not a
// date-shaped string, date, or datetime.
func AsDate(v Value) (time.Time, bool) {
	switch v.Kind {
	case Date, DateTime:
		return v.T, true
	case Text:
		lit := strings.Trim(v.S, "'")
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, lit); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// AsNumeric attempts to coerce v to a float64 for comparison purposes.
func AsNumeric(v Value) (float64, bool) {
	switch v.Kind {
	case Int:
		return float64(v.I), true
	case Real:
		return v.R, true
	case Decimal:
		f, _ := v.D.Float64()
		return f, true
	case Text:
		if f, err := strconv.ParseFloat(v.S, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

// UnifyResult carries the unified operand pair plus a tag for which path
// the unification took, which callers use to pick a comparison strategy.
type UnifyResult struct {
	Mode string // "date", "numeric", or "raw"
	LDate, RDate time.Time
	LNum, RNum   float64
	L, R         Value
}

// Unify implements the three-step operand-unification rule of §4.B: try
// dates first (under any of the recognized layouts), then numeric, else
// leave the operands as-is for raw/string comparison.
func Unify(l, r Value) UnifyResult {
	if ld, ok := AsDate(l); ok {
		if rd, ok := AsDate(r); ok {
			return UnifyResult{Mode: "date", LDate: ld, RDate: rd}
		}
	}
	if ln, ok := AsNumeric(l); ok {
		if rn, ok := AsNumeric(r); ok {
			return UnifyResult{Mode: "numeric", LNum: ln, RNum: rn}
		}
	}
	return UnifyResult{Mode: "raw", L: l, R: r}
}

// Compare returns -1, 0, 1 following the unification rule above. The
// second return is false when the operands are not comparable (e.g. two
// incomparable raw kinds).
func Compare(l, r Value) (int, bool) {
	u := Unify(l, r)
	switch u.Mode {
	case "date":
		switch {
		case u.LDate.Before(u.RDate):
			return -1, true
		case u.LDate.After(u.RDate):
			return 1, true
		default:
			return 0, true
		}
	case "numeric":
		switch {
		case u.LNum < u.RNum:
			return -1, true
		case u.LNum > u.RNum:
			return 1, true
		default:
			return 0, true
		}
	default:
		ls, lok := asString(l)
		rs, rok := asString(r)
		if lok && rok {
			return strings.Compare(ls, rs), true
		}
		return 0, false
	}
}

func asString(v Value) (string, bool) {
	switch v.Kind {
	case Text, UUID:
		return v.S, true
	case Bool:
		if v.B {
			return "TRUE", true
		}
		return "FALSE", true
	}
	return "", false
}

// Equal reports whether l and r denote the same value under unification.
func Equal(l, r Value) bool {
	if l.IsNull() || r.IsNull() {
		return l.IsNull() && r.IsNull()
	}
	if c, ok := Compare(l, r); ok {
		return c == 0
	}
	return false
}

// FormatDate renders a Date value the way §6's SQL emitter and the CSV/JSON
// emitters require: 'YYYY-MM-DD'.
func FormatDate(t time.Time) string {
	return strftime.Format(strftimePatterns[0], t)
}

// FormatDateTime renders a DateTime value as 'YYYY-MM-DD HH:MM:SS'.
func FormatDateTime(t time.Time) string {
	return strftime.Format("%Y-%m-%d %H:%M:%S", t)
}

// FormatTime renders a Time-of-day value as HH:MM:SS.
func FormatTime(t time.Time) string {
	return strftime.Format("%H:%M:%S", t)
}

// String renders v in a default textual form, used for logging and for the
// "other" branch of §6's SQL literal rules.
func (v Value) String() string {
	switch v.Kind {
	case Null:
		return "NULL"
	case Int:
		return strconv.FormatInt(v.I, 10)
	case Real:
		return strconv.FormatFloat(v.R, 'g', -1, 64)
	case Decimal:
		return v.D.String()
	case Bool:
		if v.B {
			return "TRUE"
		}
		return "FALSE"
	case Text, UUID:
		return v.S
	case Date:
		return FormatDate(v.T)
	case DateTime:
		return FormatDateTime(v.T)
	case Time:
		return FormatTime(v.T)
	default:
		return fmt.Sprintf("<%s>", v.Kind)
	}
}
