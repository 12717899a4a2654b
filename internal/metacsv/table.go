package metacsv

import (
	"io"

	"github.com/lmapcloud/lmapd/internal/model"
)

// WriteTable renders t as CSV rows (one table row per line, no header
// row — the column names live in the report's own metadata, not the
// .data payload), matching the ResultFormatCSV default path of
// spec.md §4.4.
func WriteTable(w io.Writer, t *model.Table) error {
	cw := NewWriter(w, Delimiter)
	for _, row := range t.Rows {
		for _, v := range row.Values {
			if err := cw.Field(v); err != nil {
				return err
			}
		}
		if err := cw.EndRecord(); err != nil {
			return err
		}
	}
	return nil
}

// ReadTable parses a CSV-formatted .data file back into a model.Table,
// the inverse of WriteTable, matching
// original_source/src/workspace.c's read_table(). columns, if non-nil,
// is assigned directly to the resulting table (the column names are not
// recoverable from the CSV payload itself).
func ReadTable(r io.Reader, columns []string) (*model.Table, error) {
	cr := NewReader(r, Delimiter)
	t := &model.Table{Columns: columns}

	for {
		fields, err := cr.ReadRecord()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(fields) == 1 && fields[0] == "" {
			continue
		}
		t.Rows = append(t.Rows, model.Row{Values: fields})
	}
	return t, nil
}
