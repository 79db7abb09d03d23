package rowgen

import (
	"github.com/dbfiller/dbfiller/internal/rng"
	"github.com/dbfiller/dbfiller/internal/schema"
	"github.com/dbfiller/dbfiller/internal/value"
)

// ParentRows resolves the rows already committed for a parent table, the
// candidate set assign_foreign_keys draws from.
type ParentRows func(refTable string) []Row

// assignForeignKeys implements §4.G's assign_foreign_keys for every FK of
// t, following the three cases verbatim: all FK columns already set (true
// for FK-PK columns, which keys.AllocatePK already drew from the parent
// pool) are accepted as-is only if a matching parent row still exists,
// otherwise overwritten from a fresh random parent; some-set restricts the
// candidate pool to rows agreeing with whichever columns are already
// present, falling back to any parent when no partial match exists;
// none-set just picks any parent. A self-referencing FK (fk.RefTable ==
// t.Name) draws from parents' self-pool, which only carries primary-key
// columns; candidatesHaveColumns skips that FK rather than assign from rows
// missing the ref columns it actually needs.
func (e *Engine) assignForeignKeys(t *schema.Table, row Row, parents ParentRows, r *rng.Source) {
	for _, fk := range t.ForeignKeys {
		candidates := parents(fk.RefTable)
		if len(candidates) == 0 || !candidatesHaveColumns(candidates, fk.RefColumns) {
			continue
		}

		anySet, allSet := false, true
		for _, col := range fk.Columns {
			if _, ok := row[col]; ok {
				anySet = true
			} else {
				allSet = false
			}
		}

		matching := candidates
		if anySet {
			if m := filterMatchingParents(candidates, fk, row); len(m) > 0 {
				matching = m
				if allSet {
					continue // already set and a matching parent exists: accept as-is
				}
			}
		}

		chosen := matching[r.Intn(len(matching))]
		for i, col := range fk.Columns {
			row[col] = chosen[fk.RefColumns[i]]
		}
	}
}

// candidatesHaveColumns reports whether the first candidate row carries
// every column in cols. Ordinary parent pools are always fully populated,
// so this is a no-op there; it only matters for the self-reference pool,
// which carries primary-key columns alone.
func candidatesHaveColumns(candidates []Row, cols []string) bool {
	if len(candidates) == 0 {
		return false
	}
	first := candidates[0]
	for _, col := range cols {
		if _, ok := first[col]; !ok {
			return false
		}
	}
	return true
}

// filterMatchingParents restricts candidates to the rows whose ref columns
// agree with every FK column row already has set.
func filterMatchingParents(candidates []Row, fk schema.ForeignKey, row Row) []Row {
	var out []Row
	for _, parent := range candidates {
		ok := true
		for i, col := range fk.Columns {
			v, set := row[col]
			if !set {
				continue
			}
			if !value.Equal(v, parent[fk.RefColumns[i]]) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, parent)
		}
	}
	return out
}
