package rowgen

import (
	"github.com/dbfiller/dbfiller/internal/rng"
	"github.com/dbfiller/dbfiller/internal/schema"
	"github.com/dbfiller/dbfiller/internal/value"
)

const maxUniqueRetries = 100

// enforceUniqueSequential implements §4.G's enforce_unique as the
// single-threaded linearization point §5 requires. The primary key tuple
// of each row is already free of collisions (keys.AllocatePK only ever
// hands out distinct tuples and records them in the shared index itself);
// this pass is responsible for every other UNIQUE constraint, whose
// columns may have been touched by fill/enforce_not_null/enforce_check
// after PK allocation.
func (e *Engine) enforceUniqueSequential(t *schema.Table, rows []Row, r *rng.Source) {
	for i := range rows {
		row := rows[i]
		for _, cols := range t.UniqueConstraints {
			e.enforceOneUnique(t, row, cols, r)
		}
	}
}

func (e *Engine) enforceOneUnique(t *schema.Table, row Row, cols []string, r *rng.Source) {
	mutable := nonFKColumns(t, cols)
	for attempt := 0; attempt < maxUniqueRetries; attempt++ {
		values := valuesFor(row, cols)
		if !e.mgr.Contains(t.Name, cols, values) {
			e.mgr.Insert(t.Name, cols, values)
			return
		}
		if len(mutable) == 0 {
			// Every column in the tuple is FK-derived; nothing here can
			// legally change it. Left for the repair pass.
			return
		}
		for _, colName := range mutable {
			col, _ := t.Column(colName)
			row[colName] = e.synth.Generate(r, t.Name, col, map[string]value.Value(row), e.constraintsMentioning(t, colName))
		}
	}
}

func valuesFor(row Row, cols []string) []value.Value {
	out := make([]value.Value, len(cols))
	for i, c := range cols {
		out[i] = row[c]
	}
	return out
}

func nonFKColumns(t *schema.Table, cols []string) []string {
	var out []string
	for _, c := range cols {
		if !isFKColumn(t, c) {
			out = append(out, c)
		}
	}
	return out
}

func isFKColumn(t *schema.Table, column string) bool {
	for _, fk := range t.ForeignKeys {
		for _, c := range fk.Columns {
			if c == column {
				return true
			}
		}
	}
	return false
}
