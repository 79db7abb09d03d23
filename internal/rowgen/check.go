package rowgen

import (
	"github.com/dbfiller/dbfiller/internal/eval"
	"github.com/dbfiller/dbfiller/internal/expr"
	"github.com/dbfiller/dbfiller/internal/rng"
	"github.com/dbfiller/dbfiller/internal/schema"
	"github.com/dbfiller/dbfiller/internal/value"
)

// enforceCheck implements §4.G's enforce_check: while any CHECK of t
// evaluates false against row, regenerate every column the failing CHECK
// mentions via the synthesizer's condition-directed path, bounded by a
// fixed iteration cap (§5's "recommend 500"). Exhaustion leaves the row as
// best-effort; the repair pass (§4.H) is the backstop that removes rows no
// fixed point was found for.
func (e *Engine) enforceCheck(t *schema.Table, row Row, r *rng.Source) {
	max := e.opts.checkMaxIterations()
	for iter := 0; iter < max; iter++ {
		failing, node := e.firstFailingCheck(t, row)
		if failing == "" {
			return
		}
		for _, col := range checkColumns(t, node) {
			row[col.Name] = e.synth.GenerateConditioned(r, t.Name, col, map[string]value.Value(row), e.constraintsMentioning(t, col.Name))
		}
	}
}

// firstFailingCheck returns the source and parsed AST of the first CHECK
// constraint of t that evaluates false against row, or "" if every CHECK
// holds. Unparseable CHECK expressions are treated as always-false (§4.H).
func (e *Engine) firstFailingCheck(t *schema.Table, row Row) (string, expr.Node) {
	for _, src := range t.CheckConstraints {
		node, err := e.cache.Get(src)
		if err != nil {
			return src, nil
		}
		if !eval.Bool(node, eval.Row(row), nil) {
			return src, node
		}
	}
	return "", nil
}

// checkColumns returns the table columns mentioned anywhere in node, the
// regeneration target set for one failing CHECK (§4.C/§4.G). A nil node
// (an unparseable constraint) has no identifiable target columns and is
// left to the repair pass.
func checkColumns(t *schema.Table, node expr.Node) []schema.Column {
	if node == nil {
		return nil
	}
	var out []schema.Column
	for _, col := range t.Columns {
		if mentionsColumn(node, col.Name) {
			out = append(out, col)
		}
	}
	return out
}
