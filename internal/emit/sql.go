package emit

import (
	"fmt"
	"io"
	"strings"

	"github.com/dbfiller/dbfiller/internal/rowgen"
	"github.com/dbfiller/dbfiller/internal/schema"
	"github.com/dbfiller/dbfiller/internal/value"
)

// SQL writes one INSERT statement per chunk of opts.maxRowsPerInsert rows,
// per table, in schema order, following §6's literal rules exactly.
func SQL(w io.Writer, sch *schema.Schema, ds *rowgen.Dataset, opts Options) error {
	chunk := opts.maxRowsPerInsert()
	for _, t := range tablesInOrder(sch, ds) {
		rows := ds.Tables[t.Name]
		cols := columnNames(t)
		for start := 0; start < len(rows); start += chunk {
			end := start + chunk
			if end > len(rows) {
				end = len(rows)
			}
			if err := writeInsert(w, t.Name, cols, rows[start:end]); err != nil {
				return fmt.Errorf("emit sql: table %s: %w", t.Name, err)
			}
		}
	}
	return nil
}

func columnNames(t *schema.Table) []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

func writeInsert(w io.Writer, table string, cols []string, rows []rowgen.Row) error {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(table)
	b.WriteString(" (")
	b.WriteString(strings.Join(cols, ", "))
	b.WriteString(") VALUES\n")
	for i, row := range rows {
		b.WriteString("  (")
		for j, col := range cols {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString(sqlLiteral(row[col]))
		}
		b.WriteString(")")
		if i < len(rows)-1 {
			b.WriteString(",\n")
		} else {
			b.WriteString(";\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// sqlLiteral renders one value under §6's literal rules: null -> NULL,
// string single-quoted with embedded quotes doubled, datetime/date as
// quoted strftime-formatted literals, boolean as TRUE/FALSE, everything
// else via Value's default textual form.
func sqlLiteral(v value.Value) string {
	switch v.Kind {
	case value.Null:
		return "NULL"
	case value.Text, value.UUID:
		return quoteSQLString(v.S)
	case value.Date:
		return quoteSQLString(value.FormatDate(v.T))
	case value.DateTime:
		return quoteSQLString(value.FormatDateTime(v.T))
	case value.Time:
		return quoteSQLString(value.FormatTime(v.T))
	case value.Bool:
		if v.B {
			return "TRUE"
		}
		return "FALSE"
	default:
		return v.String()
	}
}

func quoteSQLString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
