package emit

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dbfiller/dbfiller/internal/rowgen"
	"github.com/dbfiller/dbfiller/internal/schema"
	"github.com/dbfiller/dbfiller/internal/value"
)

// CSVWriterFor resolves the per-table writer an emission run writes to,
// e.g. opening one file per table under an output directory. Kept as a
// function type so callers (cmd/dbfiller) control filesystem layout.
type CSVWriterFor func(table string) (io.WriteCloser, error)

// CSV writes one CSV file per table, via open, in schema column order.
// Absent values render as the empty string per §6.
func CSV(sch *schema.Schema, ds *rowgen.Dataset, open CSVWriterFor) error {
	for _, t := range tablesInOrder(sch, ds) {
		if err := writeTableCSV(t, ds.Tables[t.Name], open); err != nil {
			return fmt.Errorf("emit csv: table %s: %w", t.Name, err)
		}
	}
	return nil
}

func writeTableCSV(t *schema.Table, rows []rowgen.Row, open CSVWriterFor) error {
	f, err := open(t.Name)
	if err != nil {
		return err
	}
	defer f.Close()

	cols := columnNames(t)
	cw := csv.NewWriter(f)
	if err := cw.Write(cols); err != nil {
		return err
	}
	record := make([]string, len(cols))
	for _, row := range rows {
		for i, col := range cols {
			v, ok := row[col]
			if !ok || v.IsNull() {
				record[i] = ""
				continue
			}
			record[i] = csvField(v)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvField(v value.Value) string {
	switch v.Kind {
	case value.Date:
		return value.FormatDate(v.T)
	case value.DateTime:
		return value.FormatDateTime(v.T)
	case value.Time:
		return value.FormatTime(v.T)
	default:
		return v.String()
	}
}
