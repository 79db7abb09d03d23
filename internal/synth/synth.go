// Package synth implements the value synthesizer of §4.D: given a column's
// type, any caller-supplied overrides, and hints extracted from CHECK
// constraints that mention it, produce one value following the fixed
// first-match-wins resolution order.
package synth

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dbfiller/dbfiller/internal/eval"
	"github.com/dbfiller/dbfiller/internal/expr"
	"github.com/dbfiller/dbfiller/internal/hints"
	"github.com/dbfiller/dbfiller/internal/rng"
	"github.com/dbfiller/dbfiller/internal/schema"
	"github.com/dbfiller/dbfiller/internal/value"
)

// CustomGenerator is a caller-supplied function of (rng, row) → value, the
// "custom generator" of §4.D item 2.
type CustomGenerator func(r *rng.Source, row map[string]value.Value) value.Value

// ColumnKey names a single table column for per-column option lookups.
type ColumnKey struct {
	Table  string
	Column string
}

// Options carries the caller-supplied overrides consulted in resolution
// order items 1 and 2: predefined values and custom generators, populated
// from the `predefined_values` and `column_type_mappings` config sections
// (§6).
type Options struct {
	PredefinedGlobal map[string][]value.Value
	PredefinedTable  map[ColumnKey][]value.Value
	CustomGenerators map[ColumnKey]CustomGenerator
	// NamedGeneratorOverride lets config pin a column to a specific
	// NamedGenerators key regardless of the column's own name.
	NamedGeneratorOverride map[ColumnKey]string
}

// Synthesizer produces column values for one generation run.
type Synthesizer struct {
	opts  Options
	cache *expr.Cache
}

// New builds a Synthesizer. A nil cache falls back to expr.DefaultCache.
func New(opts Options, cache *expr.Cache) *Synthesizer {
	if cache == nil {
		cache = expr.DefaultCache
	}
	return &Synthesizer{opts: opts, cache: cache}
}

// Generate implements the full six-step resolution order of §4.D for
// fill_remaining_columns and enforce_not_null.
func (s *Synthesizer) Generate(r *rng.Source, tableName string, col schema.Column, row map[string]value.Value, constraintSrcs []string) value.Value {
	return s.resolve(r, tableName, col, row, constraintSrcs, false)
}

// GenerateConditioned implements the condition-directed variant used by
// enforce_check (§4.G): identical resolution order, but the type-default
// branch is replaced by a hint-aware synthesizer that folds hints into a
// feasible interval or pattern rather than drawing a fresh unconstrained
// value (§4.D, final paragraph).
func (s *Synthesizer) GenerateConditioned(r *rng.Source, tableName string, col schema.Column, row map[string]value.Value, constraintSrcs []string) value.Value {
	return s.resolve(r, tableName, col, row, constraintSrcs, true)
}

func (s *Synthesizer) resolve(r *rng.Source, tableName string, col schema.Column, row map[string]value.Value, constraintSrcs []string, conditioned bool) value.Value {
	key := ColumnKey{Table: tableName, Column: col.Name}

	// 1. Predefined value.
	if vs, ok := s.opts.PredefinedTable[key]; ok && len(vs) > 0 {
		return vs[r.Choice(len(vs))]
	}
	if vs, ok := s.opts.PredefinedGlobal[col.Name]; ok && len(vs) > 0 {
		return vs[r.Choice(len(vs))]
	}

	// 2. Custom generator: explicit function, else a named atomic
	// generator matched by lower-cased column name.
	if gen, ok := s.opts.CustomGenerators[key]; ok {
		return gen(r, row)
	}
	if name, ok := s.opts.NamedGeneratorOverride[key]; ok {
		if gen, ok := NamedGenerators[strings.ToLower(name)]; ok {
			return gen(r, row)
		}
	}
	if gen, ok := NamedGenerators[strings.ToLower(col.Name)]; ok {
		return gen(r, row)
	}

	roots := s.parseAll(constraintSrcs)

	// 3. Regex hint.
	for _, root := range roots {
		if pat, ok := hints.RegexHint(root, col.Name); ok {
			return value.NewText(matchRegex(r, pat))
		}
	}

	colHints := mergeHints(roots, col.Name)

	// 4. Allowed-values hint.
	for _, h := range colHints {
		if h.Operator == "IN" && len(h.Items) > 0 {
			evaluated := evalAll(h.Items, row)
			if len(evaluated) > 0 {
				return evaluated[r.Choice(len(evaluated))]
			}
		}
	}

	ti := ParseType(col.SQLType)

	// 5 & 6 (or the condition-directed replacement of 6).
	if conditioned {
		return s.conditionedValue(r, ti, col, row, colHints, roots)
	}
	if lo, hi, ok := numericRangeFromHints(colHints, row); ok {
		return drawInRange(r, ti, lo, hi)
	}
	return s.typeDefault(r, ti, col)
}

func (s *Synthesizer) parseAll(srcs []string) []expr.Node {
	roots := make([]expr.Node, 0, len(srcs))
	for _, src := range srcs {
		if n, err := s.cache.Get(src); err == nil {
			roots = append(roots, n)
		}
	}
	return roots
}

func mergeHints(roots []expr.Node, column string) []hints.Hint {
	var out []hints.Hint
	for _, root := range roots {
		set := hints.Extract(root)
		out = append(out, set[column]...)
	}
	return out
}

func evalNode(n expr.Node, row map[string]value.Value) (value.Value, error) {
	return eval.Eval(n, eval.Row(row), nil)
}

func evalAll(nodes []expr.Node, row map[string]value.Value) []value.Value {
	out := make([]value.Value, 0, len(nodes))
	for _, n := range nodes {
		if v, err := evalNode(n, row); err == nil {
			out = append(out, v)
		}
	}
	return out
}

// numericRangeFromHints folds every >,>=,<,<=,=,BETWEEN hint into an
// [lo, hi] interval, evaluating RHS nodes against the row in progress. An
// infeasible interval (lo > hi) collapses to [lo, lo].
func numericRangeFromHints(hs []hints.Hint, row map[string]value.Value) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(-1), math.Inf(1)
	found := false
	for _, h := range hs {
		if len(h.Items) == 0 {
			continue
		}
		v, err := evalNode(h.Items[0], row)
		if err != nil {
			continue
		}
		n, numOK := value.AsNumeric(v)
		if !numOK {
			continue
		}
		switch h.Operator {
		case ">", ">=":
			if n > lo {
				lo = n
			}
			found = true
		case "<", "<=":
			if n < hi {
				hi = n
			}
			found = true
		case "=":
			lo, hi = n, n
			found = true
		}
	}
	if !found {
		return 0, 0, false
	}
	if lo > hi {
		hi = lo
	}
	return lo, hi, true
}

func drawInRange(r *rng.Source, ti TypeInfo, lo, hi float64) value.Value {
	switch ti.Family {
	case FamilyFloat, FamilyDecimal:
		f := r.FloatRange(lo, hi)
		if ti.Family == FamilyDecimal {
			return value.NewDecimal(decimal.NewFromFloat(f).Round(int32(ti.Scale)))
		}
		return value.NewReal(f)
	default:
		return value.NewInt(r.IntRange(int64(math.Ceil(lo)), int64(math.Floor(hi))))
	}
}

// typeDefault is resolution-order item 6, the unconstrained type-directed
// default.
func (s *Synthesizer) typeDefault(r *rng.Source, ti TypeInfo, col schema.Column) value.Value {
	switch ti.Family {
	case FamilyInt:
		if ti.Unsigned {
			return value.NewInt(r.IntRange(0, 10000))
		}
		return value.NewInt(r.IntRange(-10000, 10000))

	case FamilyDecimal:
		max := decimalBound(ti.Precision, ti.Scale)
		f := r.FloatRange(-max, max)
		return value.NewDecimal(decimal.NewFromFloat(f).Round(int32(ti.Scale)))

	case FamilyFloat:
		return value.NewReal(r.FloatRange(0, 10000))

	case FamilyBool:
		return value.NewBool(r.Bool())

	case FamilyDate:
		if start, end, ok := namedDateRange(col.Name); ok {
			return value.NewDate(randomDateBetween(r, start, end))
		}
		return value.NewDate(randomDate(r))

	case FamilyDateTime:
		d := randomDate(r)
		if start, end, ok := namedDateRange(col.Name); ok {
			d = randomDateBetween(r, start, end)
		}
		return value.NewDateTime(d.Add(time.Duration(r.IntRange(0, 86399)) * time.Second))

	case FamilyTime:
		return value.NewTime(time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(r.IntRange(0, 86399)) * time.Second))

	case FamilyUUID:
		return genUUID(r, nil)

	default:
		return value.NewText(randomText(r, ti.Length))
	}
}

// decimalBound computes 10^(precision-scale) - 1 via shopspring/decimal's
// exact arbitrary-precision exponentiation, so wide DECIMAL precisions
// never lose accuracy to float64 power math.
func decimalBound(precision, scale int) float64 {
	exp := precision - scale
	if exp <= 0 {
		exp = 1
	}
	bound := decimal.NewFromInt(10).Pow(decimal.NewFromInt(int64(exp))).Sub(decimal.NewFromInt(1))
	f, _ := bound.Float64()
	return f
}

func randomDate(r *rng.Source) time.Time {
	start := time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	days := r.IntRange(0, 365*60)
	return start.AddDate(0, 0, int(days))
}

// namedDateRange special-cases the handful of DATE/DATETIME column names
// whose plausible range isn't "any day since 1970": a birth_date should land
// in a real lifetime, a registration_date somewhere between the system's
// rollout and today.
func namedDateRange(colName string) (start, end time.Time, ok bool) {
	switch strings.ToLower(colName) {
	case "birth_date":
		return time.Date(1940, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2000, 12, 31, 0, 0, 0, 0, time.UTC), true
	case "registration_date":
		return time.Date(2010, 1, 1, 0, 0, 0, 0, time.UTC), time.Now().UTC(), true
	default:
		return time.Time{}, time.Time{}, false
	}
}

func randomDateBetween(r *rng.Source, start, end time.Time) time.Time {
	days := int(end.Sub(start).Hours() / 24)
	if days <= 0 {
		return start
	}
	return start.AddDate(0, 0, r.Intn(days+1))
}

const alphabet = "abcdefghijklmnopqrstuvwxyz"

// randomText implements §4.D item 6's character/text default: a value
// truncated to the declared length, with random alphabetic padding for
// short (<5) declared lengths and an empty string for length 0.
func randomText(r *rng.Source, length int) string {
	if length <= 0 {
		return ""
	}
	n := length
	if n > 40 {
		n = 40
	}
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteByte(alphabet[r.Intn(len(alphabet))])
	}
	return b.String()
}
