package rowgen

import (
	"github.com/dbfiller/dbfiller/internal/rng"
	"github.com/dbfiller/dbfiller/internal/schema"
	"github.com/dbfiller/dbfiller/internal/value"
)

// fillRemainingColumns implements §4.G's fill_remaining_columns: every
// column not already present in row (PK and FK columns are filled by this
// point) gets either the next auto-increment counter value or a
// synthesizer draw conditioned on the CHECK constraints mentioning it.
func (e *Engine) fillRemainingColumns(t *schema.Table, row Row, autoBlocks map[string][]int64, rowIdx int, r *rng.Source) {
	for _, col := range t.Columns {
		if _, ok := row[col.Name]; ok {
			continue
		}
		if col.IsAutoIncrement {
			if block, ok := autoBlocks[col.Name]; ok {
				row[col.Name] = value.NewInt(block[rowIdx])
				continue
			}
		}
		row[col.Name] = e.synth.Generate(r, t.Name, col, map[string]value.Value(row), e.constraintsMentioning(t, col.Name))
	}
}

// enforceNotNull implements §4.G's enforce_not_null: any NOT NULL column
// still holding a null (or absent) value is regenerated via the
// synthesizer's default path, which never produces a null.
func (e *Engine) enforceNotNull(t *schema.Table, row Row, r *rng.Source) {
	for _, col := range t.Columns {
		if !col.HasConstraint(schema.NotNull) {
			continue
		}
		v, ok := row[col.Name]
		if ok && !v.IsNull() {
			continue
		}
		row[col.Name] = e.synth.Generate(r, t.Name, col, map[string]value.Value(row), e.constraintsMentioning(t, col.Name))
	}
}
