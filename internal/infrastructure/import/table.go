package csvimport

// Row is one data row of an upload. LineNumber counts the header as line 1.
type Row struct {
	LineNumber int
	Data       map[string]string
	RawFields  []string
}

func newRow(line int, headers, fields []string) *Row {
	row := &Row{
		LineNumber: line,
		Data:       make(map[string]string, len(headers)),
		RawFields:  fields,
	}
	for i, h := range headers {
		if _, dup := row.Data[h]; dup {
			continue
		}
		if i < len(fields) {
			row.Data[h] = fields[i]
		} else {
			row.Data[h] = ""
		}
	}
	return row
}

// Get returns the value for a column by header name
func (r *Row) Get(header string) string {
	return r.Data[header]
}

// GetOrDefault returns the value for a column, or def when blank
func (r *Row) GetOrDefault(header, def string) string {
	if v, ok := r.Data[header]; ok && v != "" {
		return v
	}
	return def
}

// IsEmpty reports whether every field is blank
func (r *Row) IsEmpty() bool {
	for _, v := range r.RawFields {
		if trimSpaces(v) != "" {
			return false
		}
	}
	return true
}

// Values returns the fields aligned to headers: short rows are padded with
// blanks and extra trailing fields are kept.
func (r *Row) Values(headers []string) []string {
	n := max(len(headers), len(r.RawFields))
	out := make([]string, n)
	copy(out, r.RawFields)
	return out
}

// Table is a parsed upload regardless of its file format
type Table struct {
	Headers []string
	Rows    []*Row
}

// NewTable builds a table from a header row and raw records. The first
// record is numbered firstLine.
func NewTable(headers []string, records [][]string, firstLine int) *Table {
	t := &Table{Headers: headers}
	for i, rec := range records {
		row := newRow(firstLine+i, headers, rec)
		if row.IsEmpty() {
			continue
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// MissingHeaders returns the required headers the table lacks
func (t *Table) MissingHeaders(required []string) []string {
	idx := make(map[string]int, len(t.Headers))
	for i, h := range t.Headers {
		idx[h] = i
	}
	return missingHeaders(idx, required)
}

func missingHeaders(have map[string]int, required []string) []string {
	var missing []string
	for _, h := range required {
		if _, ok := have[h]; !ok {
			missing = append(missing, h)
		}
	}
	return missing
}
