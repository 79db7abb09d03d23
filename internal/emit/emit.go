// Package emit implements §6's three output serializers over a generated
// dataset: a chunked SQL INSERT stream, one CSV file per table, and one
// JSON file per table. All three walk the schema's own column order so
// output is stable across runs regardless of map iteration order.
package emit

import (
	"github.com/dbfiller/dbfiller/internal/rowgen"
	"github.com/dbfiller/dbfiller/internal/schema"
)

// Options configures emission, mirroring the config surface of §6.
type Options struct {
	MaxRowsPerInsert int // SQL INSERT chunk size, default 1000
}

func (o Options) maxRowsPerInsert() int {
	if o.MaxRowsPerInsert > 0 {
		return o.MaxRowsPerInsert
	}
	return 1000
}

// tablesInOrder returns the tables of sch that have at least one generated
// row, in schema insertion order, matching the teacher's own preference
// for deterministic, declaration-order output (ddl.go emits CREATE TABLE
// statements in the same order).
func tablesInOrder(sch *schema.Schema, ds *rowgen.Dataset) []*schema.Table {
	var out []*schema.Table
	for _, name := range sch.InsertOrder() {
		rows := ds.Tables[name]
		if len(rows) == 0 {
			continue
		}
		out = append(out, sch.Tables[name])
	}
	return out
}
