package rowgen

import (
	"github.com/dbfiller/dbfiller/internal/eval"
	"github.com/dbfiller/dbfiller/internal/expr"
	"github.com/dbfiller/dbfiller/internal/keys"
	"github.com/dbfiller/dbfiller/internal/schema"
	"github.com/dbfiller/dbfiller/internal/value"
)

// Repair implements §4.H: in dependency order, revalidate every row of
// every table against NOT NULL, every CHECK, and UNIQUE (nulls exempt from
// collision, per standard SQL), dropping invalid rows and cascading the
// delete to every child table whose FK columns matched the deleted row.
// Children further down the order are revisited automatically, since the
// dependency order guarantees a child is swept only after its parents. An
// FK between two distinct tables always points at an earlier level; a
// self-referencing FK is the one case where the cascade reaches the table
// just swept, removing the rows there that referenced a deleted row.
func Repair(sch *schema.Schema, ds *Dataset, cache *expr.Cache, mgr *keys.Manager) {
	back := sch.BuildFKBackMap()
	levels, err := sch.ResolveOrder()
	if err != nil {
		return
	}
	order := schema.FlatOrder(levels)
	for _, name := range order {
		t := sch.Tables[name]
		rows := ds.Tables[name]
		if len(rows) == 0 {
			continue
		}
		survivors, removed := sweepTable(t, rows, cache)
		ds.Tables[name] = survivors
		for _, row := range removed {
			removeFromIndex(mgr, t, row)
		}
		if len(removed) > 0 {
			cascadeDelete(sch, ds, back, mgr, name, removed)
		}
	}
}

// sweepTable applies the single-sweep revalidation of §4.H: first NOT
// NULL/CHECK, then UNIQUE (including PK) duplicate detection over the
// surviving set, keeping the first occurrence of each non-null tuple.
func sweepTable(t *schema.Table, rows []Row, cache *expr.Cache) ([]Row, []Row) {
	var passed, removed []Row
	for _, row := range rows {
		if rowSatisfiesConstraints(t, row, cache) {
			passed = append(passed, row)
		} else {
			removed = append(removed, row)
		}
	}

	uniqueSets := make([][]string, 0, len(t.UniqueConstraints)+1)
	if len(t.PrimaryKey) > 0 {
		uniqueSets = append(uniqueSets, t.PrimaryKey)
	}
	uniqueSets = append(uniqueSets, t.UniqueConstraints...)

	seen := make([]map[string]bool, len(uniqueSets))
	for i := range seen {
		seen[i] = map[string]bool{}
	}

	var survivors []Row
	for _, row := range passed {
		dup := false
		for i, cols := range uniqueSets {
			values := valuesFor(row, cols)
			if anyNull(values) {
				continue // NULL components never collide (§3 UNIQUE semantics)
			}
			key := rowKey(values)
			if seen[i][key] {
				dup = true
				break
			}
			seen[i][key] = true
		}
		if dup {
			removed = append(removed, row)
			continue
		}
		survivors = append(survivors, row)
	}
	return survivors, removed
}

func rowSatisfiesConstraints(t *schema.Table, row Row, cache *expr.Cache) bool {
	for _, col := range t.Columns {
		if col.HasConstraint(schema.NotNull) {
			v, ok := row[col.Name]
			if !ok || v.IsNull() {
				return false
			}
		}
	}
	for _, src := range t.CheckConstraints {
		node, err := cache.Get(src)
		if err != nil {
			// Unparseable CHECK: always-false (§4.H), the row is dropped.
			return false
		}
		if !eval.Bool(node, eval.Row(row), nil) {
			return false
		}
	}
	return true
}

func anyNull(values []value.Value) bool {
	for _, v := range values {
		if v.IsNull() {
			return true
		}
	}
	return false
}

func rowKey(values []value.Value) string {
	var b []byte
	for _, v := range values {
		b = append(b, v.Kind.String()...)
		b = append(b, ':')
		b = append(b, v.String()...)
		b = append(b, '\x1e')
	}
	return string(b)
}

func removeFromIndex(mgr *keys.Manager, t *schema.Table, row Row) {
	if len(t.PrimaryKey) > 0 {
		mgr.Remove(t.Name, t.PrimaryKey, valuesFor(row, t.PrimaryKey))
	}
	for _, cols := range t.UniqueConstraints {
		mgr.Remove(t.Name, cols, valuesFor(row, cols))
	}
}

// cascadeDelete removes every row of every child table of parentTable whose
// FK columns matched one of the deleted parent rows on its ref columns,
// then recurses into that child's own children for any rows removed here.
func cascadeDelete(sch *schema.Schema, ds *Dataset, back map[string][]schema.ChildFK, mgr *keys.Manager, parentTable string, deletedParents []Row) {
	for _, childFK := range back[parentTable] {
		childRows := ds.Tables[childFK.ChildTable]
		if len(childRows) == 0 {
			continue
		}
		deletedKeys := make(map[string]bool, len(deletedParents))
		for _, pr := range deletedParents {
			deletedKeys[rowKey(valuesFor(pr, childFK.ParentColumns))] = true
		}

		childTable := sch.Tables[childFK.ChildTable]
		var kept, removedChildren []Row
		for _, cr := range childRows {
			if deletedKeys[rowKey(valuesFor(cr, childFK.ChildColumns))] {
				removedChildren = append(removedChildren, cr)
				removeFromIndex(mgr, childTable, cr)
			} else {
				kept = append(kept, cr)
			}
		}
		ds.Tables[childFK.ChildTable] = kept
		if len(removedChildren) > 0 {
			cascadeDelete(sch, ds, back, mgr, childFK.ChildTable, removedChildren)
		}
	}
}
