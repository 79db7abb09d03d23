package keys

import (
	"context"
	"fmt"

	"github.com/cenkalti/backoff/v5"

	"github.com/dbfiller/dbfiller/internal/rng"
	"github.com/dbfiller/dbfiller/internal/schema"
	"github.com/dbfiller/dbfiller/internal/synth"
	"github.com/dbfiller/dbfiller/internal/value"
)

// CapacityWarning reports GenerationWarning::PrimaryKeyCapacity (§7):
// fewer rows than requested could be produced, typically because a
// composite key's Cartesian space is smaller than the request.
type CapacityWarning struct {
	Table     string
	Requested int
	Allocated int
}

func (w *CapacityWarning) Error() string {
	return fmt.Sprintf("table %s: requested %d primary keys, allocated %d (capacity exhausted)", w.Table, w.Requested, w.Allocated)
}

// ParentPool resolves the already-committed values of a referenced column,
// used to build the candidate pool for an FK-PK composite-key column.
type ParentPool func(refTable, refColumn string) []value.Value

// AllocatePK implements §4.F. It returns one row per allocated key
// (carrying only the PK columns) and a non-nil warning when fewer rows than
// requested could be produced.
func AllocatePK(t *schema.Table, n int, mgr *Manager, s *synth.Synthesizer, r *rng.Source, parentPool ParentPool) ([]map[string]value.Value, error) {
	if len(t.PrimaryKey) == 0 {
		rows := make([]map[string]value.Value, n)
		for i := range rows {
			rows[i] = map[string]value.Value{}
		}
		return rows, nil
	}

	if len(t.PrimaryKey) == 1 {
		if _, _, ok := fkForColumn(t, t.PrimaryKey[0]); !ok {
			return allocateScalarPK(t, n, mgr, s, r)
		}
		// A single-column PK that is also an FK column (an identifying
		// relationship) draws from the parent pool like any other FK-PK
		// column; the composite path already handles that uniformly.
	}
	return allocateCompositePK(t, n, mgr, s, r, parentPool)
}

func allocateScalarPK(t *schema.Table, n int, mgr *Manager, s *synth.Synthesizer, r *rng.Source) ([]map[string]value.Value, error) {
	colName := t.PrimaryKey[0]
	col, _ := t.Column(colName)
	ti := synth.ParseType(col.SQLType)

	rows := make([]map[string]value.Value, 0, n)

	if ti.Family == synth.FamilyInt {
		start := mgr.NextBlock(t.Name, colName, n)
		for i := 0; i < n; i++ {
			v := value.NewInt(start + int64(i))
			rows = append(rows, map[string]value.Value{colName: v})
			mgr.Insert(t.Name, []string{colName}, []value.Value{v})
		}
		return rows, nil
	}

	// Non-numeric scalar PK: draw from the synthesizer until n distinct
	// values are obtained, bounded by a finite retry budget (§4.F).
	seen := map[string]bool{}
	op := func() (value.Value, error) {
		v := s.Generate(r, t.Name, col, map[string]value.Value{}, nil)
		key := tupleKey([]value.Value{v})
		if seen[key] || mgr.Contains(t.Name, []string{colName}, []value.Value{v}) {
			return value.Value{}, fmt.Errorf("duplicate scalar PK candidate")
		}
		return v, nil
	}
	for len(rows) < n {
		v, err := backoff.Retry(context.Background(), op,
			backoff.WithMaxTries(50),
			backoff.WithBackOff(backoff.NewConstantBackOff(0)))
		if err != nil {
			break
		}
		key := tupleKey([]value.Value{v})
		seen[key] = true
		rows = append(rows, map[string]value.Value{colName: v})
		mgr.Insert(t.Name, []string{colName}, []value.Value{v})
	}
	if len(rows) < n {
		return rows, &CapacityWarning{Table: t.Name, Requested: n, Allocated: len(rows)}
	}
	return rows, nil
}

func allocateCompositePK(t *schema.Table, n int, mgr *Manager, s *synth.Synthesizer, r *rng.Source, parentPool ParentPool) ([]map[string]value.Value, error) {
	pools := make([][]value.Value, len(t.PrimaryKey))
	poolSize := n * 3
	if poolSize < 20 {
		poolSize = 20
	}

	for i, colName := range t.PrimaryKey {
		if fk, refCol, ok := fkForColumn(t, colName); ok {
			pools[i] = parentPool(fk.RefTable, refCol)
			continue
		}
		col, _ := t.Column(colName)
		pool := make([]value.Value, 0, poolSize)
		for j := 0; j < poolSize; j++ {
			pool = append(pool, s.Generate(r, t.Name, col, map[string]value.Value{}, nil))
		}
		pools[i] = pool
	}

	for _, p := range pools {
		if len(p) == 0 {
			return nil, fmt.Errorf("table %s: composite PK column pool is empty", t.Name)
		}
	}

	seen := map[string]bool{}
	rows := make([]map[string]value.Value, 0, n)
	maxAttempts := n * 50
	if maxAttempts < 500 {
		maxAttempts = 500
	}
	for attempt := 0; attempt < maxAttempts && len(rows) < n; attempt++ {
		tuple := make([]value.Value, len(pools))
		for i, p := range pools {
			tuple[i] = p[r.Intn(len(p))]
		}
		key := tupleKey(tuple)
		if seen[key] {
			continue
		}
		seen[key] = true
		row := map[string]value.Value{}
		for i, colName := range t.PrimaryKey {
			row[colName] = tuple[i]
		}
		rows = append(rows, row)
		mgr.Insert(t.Name, t.PrimaryKey, tuple)
	}

	if len(rows) < n {
		return rows, &CapacityWarning{Table: t.Name, Requested: n, Allocated: len(rows)}
	}
	return rows, nil
}

func fkForColumn(t *schema.Table, column string) (schema.ForeignKey, string, bool) {
	for _, fk := range t.ForeignKeys {
		for i, c := range fk.Columns {
			if c == column {
				return fk, fk.RefColumns[i], true
			}
		}
	}
	return schema.ForeignKey{}, "", false
}
