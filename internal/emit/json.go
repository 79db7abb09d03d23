package emit

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dbfiller/dbfiller/internal/rowgen"
	"github.com/dbfiller/dbfiller/internal/schema"
	"github.com/dbfiller/dbfiller/internal/value"
)

// JSON writes one JSON file per table, via open: an array of objects keyed
// by column name, dates/times rendered as ISO 8601 strings per §6.
func JSON(sch *schema.Schema, ds *rowgen.Dataset, open CSVWriterFor) error {
	for _, t := range tablesInOrder(sch, ds) {
		if err := writeTableJSON(t, ds.Tables[t.Name], open); err != nil {
			return fmt.Errorf("emit json: table %s: %w", t.Name, err)
		}
	}
	return nil
}

func writeTableJSON(t *schema.Table, rows []rowgen.Row, open CSVWriterFor) error {
	f, err := open(t.Name)
	if err != nil {
		return err
	}
	defer f.Close()

	cols := columnNames(t)
	objs := make([]map[string]any, len(rows))
	for i, row := range rows {
		obj := make(map[string]any, len(cols))
		for _, col := range cols {
			v, ok := row[col]
			if !ok || v.IsNull() {
				obj[col] = nil
				continue
			}
			obj[col] = jsonValue(v)
		}
		objs[i] = obj
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(objs)
}

func jsonValue(v value.Value) any {
	switch v.Kind {
	case value.Int:
		return v.I
	case value.Real:
		return v.R
	case value.Decimal:
		return v.D.String()
	case value.Bool:
		return v.B
	case value.Date:
		return value.FormatDate(v.T)
	case value.DateTime:
		return v.T.Format("2006-01-02T15:04:05Z07:00")
	case value.Time:
		return value.FormatTime(v.T)
	default:
		return v.String()
	}
}
