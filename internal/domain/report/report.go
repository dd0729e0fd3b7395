package report

import (
	"bytes"
	"encoding/json"
)

// GrandTotalLabel is the dimension value of the grand-total row
const GrandTotalLabel = "Grand Total"

// Row is one ordered row of a report. Cells line up with the report columns.
type Row struct {
	columns []string
	cells   []Cell
}

func newRow(columns []string, cells []Cell) Row {
	return Row{columns: columns, cells: cells}
}

func headerRow(columns []string) Row {
	cells := make([]Cell, len(columns))
	for i, c := range columns {
		cells[i] = Text(c)
	}
	return newRow(columns, cells)
}

// Get returns the cell of a column and whether the column exists
func (r Row) Get(column string) (Cell, bool) {
	for i, c := range r.columns {
		if c == column {
			return r.cells[i], true
		}
	}
	return Cell{}, false
}

// Cell returns the cell of a column, or an empty text cell
func (r Row) Cell(column string) Cell {
	c, _ := r.Get(column)
	return c
}

// Cells returns the cells in column order
func (r Row) Cells() []Cell { return r.cells }

// MarshalJSON writes the row as an object whose keys keep column order
func (r Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := r.cells[i].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Report is the assembled output of one request. On the wire it is the
// sequence [header, grand total, rows...].
type Report struct {
	Columns   []string
	KeyColumn string
	Header    Row
	Total     Row
	Rows      []Row
}

func newReport(columns []string, keyColumn string, total Row, rows []Row) *Report {
	return &Report{
		Columns:   columns,
		KeyColumn: keyColumn,
		Header:    headerRow(columns),
		Total:     total,
		Rows:      rows,
	}
}

// Sequence returns the rows in transport order
func (r *Report) Sequence() []Row {
	out := make([]Row, 0, len(r.Rows)+2)
	out = append(out, r.Header, r.Total)
	return append(out, r.Rows...)
}

// Row finds a dimension row by its key column value
func (r *Report) Row(key string) (Row, bool) {
	for _, row := range r.Rows {
		if row.Cell(r.KeyColumn).String() == key {
			return row, true
		}
	}
	return Row{}, false
}

// MarshalJSON encodes the transport sequence
func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Sequence())
}
