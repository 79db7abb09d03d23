package synth

import (
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dbfiller/dbfiller/internal/expr"
	"github.com/dbfiller/dbfiller/internal/hints"
	"github.com/dbfiller/dbfiller/internal/rng"
	"github.com/dbfiller/dbfiller/internal/schema"
	"github.com/dbfiller/dbfiller/internal/value"
)

// conditionedValue is the hint-aware replacement for typeDefault used by
// GenerateConditioned (§4.D, final paragraph): numeric and date types fold
// hints into a feasible interval and draw inside it (or return the lower
// bound when infeasible); strings honor an anchored LIKE hint.
func (s *Synthesizer) conditionedValue(r *rng.Source, ti TypeInfo, col schema.Column, row map[string]value.Value, colHints []hints.Hint, roots []expr.Node) value.Value {
	switch ti.Family {
	case FamilyInt:
		if lo, hi, ok := numericRangeFromHints(colHints, row); ok {
			return value.NewInt(drawIntOrFloor(r, lo, hi))
		}
		return s.typeDefault(r, ti, col)

	case FamilyDecimal, FamilyFloat:
		if lo, hi, ok := numericRangeFromHints(colHints, row); ok {
			const epsilon = 1e-6
			if hi-lo < epsilon {
				return wrapFloat(ti, lo)
			}
			return wrapFloat(ti, r.FloatRange(lo, hi))
		}
		return s.typeDefault(r, ti, col)

	case FamilyDate, FamilyDateTime:
		if lo, hi, ok := dateRangeFromHints(colHints, row); ok {
			days := int(hi.Sub(lo).Hours() / 24)
			if days <= 0 {
				return wrapDate(ti, lo)
			}
			return wrapDate(ti, lo.AddDate(0, 0, r.Intn(days+1)))
		}
		return s.typeDefault(r, ti, col)

	case FamilyText:
		for _, root := range roots {
			if pat, negate, ok := hints.LikeHint(root, col.Name); ok && !negate {
				return value.NewText(expandLikePattern(r, pat))
			}
		}
		return s.typeDefault(r, ti, col)

	default:
		return s.typeDefault(r, ti, col)
	}
}

func drawIntOrFloor(r *rng.Source, lo, hi float64) int64 {
	loI := int64(math.Ceil(lo))
	hiI := int64(math.Floor(hi))
	if hiI < loI {
		return loI
	}
	return r.IntRange(loI, hiI)
}

func wrapFloat(ti TypeInfo, f float64) value.Value {
	if ti.Family == FamilyDecimal {
		return value.NewDecimal(decimal.NewFromFloat(f).Round(int32(ti.Scale)))
	}
	return value.NewReal(f)
}

func wrapDate(ti TypeInfo, t time.Time) value.Value {
	if ti.Family == FamilyDateTime {
		return value.NewDateTime(t)
	}
	return value.NewDate(t)
}

// dateRangeFromHints mirrors numericRangeFromHints but folds date-coercible
// hint values into a [lo, hi] calendar-day interval; an infeasible interval
// collapses to [lo, lo].
func dateRangeFromHints(hs []hints.Hint, row map[string]value.Value) (lo, hi time.Time, ok bool) {
	lo = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)
	hi = time.Date(2069, 1, 1, 0, 0, 0, 0, time.UTC)
	found := false
	for _, h := range hs {
		if len(h.Items) == 0 {
			continue
		}
		v, err := evalNode(h.Items[0], row)
		if err != nil {
			continue
		}
		d, dateOK := value.AsDate(v)
		if !dateOK {
			continue
		}
		switch h.Operator {
		case ">", ">=":
			if d.After(lo) {
				lo = d
			}
			found = true
		case "<", "<=":
			if d.Before(hi) {
				hi = d
			}
			found = true
		case "=":
			lo, hi = d, d
			found = true
		}
	}
	if !found {
		return time.Time{}, time.Time{}, false
	}
	if hi.Before(lo) {
		hi = lo
	}
	return lo, hi, true
}

// expandLikePattern implements the anchored-prefix/anchored-suffix string
// rule of §4.D's final paragraph.
func expandLikePattern(r *rng.Source, pat string) string {
	switch {
	case strings.HasSuffix(pat, "%") && !strings.HasPrefix(pat, "%"):
		return pat[:len(pat)-1] + randomText(r, 5)
	case strings.HasPrefix(pat, "%") && !strings.HasSuffix(pat, "%"):
		return randomText(r, 5) + pat[1:]
	default:
		return strings.NewReplacer("%", "", "_", "").Replace(pat)
	}
}
