// Package spreadsheet reads XLSX uploads and writes report workbooks.
package spreadsheet

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	csvimport "github.com/fieldsales/backend/internal/infrastructure/import"
	"github.com/xuri/excelize/v2"
)

// DateLayout is how serial date cells are rendered, matching the CSV exports
const DateLayout = "1/2/2006"

// ReaderOption configures ReadTable
type ReaderOption func(*reader)

type reader struct {
	sheet       string
	dateColumns map[string]struct{}
}

// WithSheet reads the named sheet instead of the first one
func WithSheet(name string) ReaderOption {
	return func(r *reader) { r.sheet = name }
}

// WithDateColumns converts numeric cells of the named columns from Excel
// serial dates to M/D/YYYY text
func WithDateColumns(columns ...string) ReaderOption {
	return func(r *reader) {
		for _, c := range columns {
			r.dateColumns[c] = struct{}{}
		}
	}
}

// ReadTable reads one sheet of a workbook into a table. Cell values are
// read raw so numbers keep full precision.
func ReadTable(src io.Reader, opts ...ReaderOption) (*csvimport.Table, error) {
	rd := &reader{dateColumns: make(map[string]struct{})}
	for _, opt := range opts {
		opt(rd)
	}

	wb, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer wb.Close()

	sheet := rd.sheet
	if sheet == "" {
		sheets := wb.GetSheetList()
		if len(sheets) == 0 {
			return nil, csvimport.ErrEmptyFile
		}
		sheet = sheets[0]
	}

	rows, err := wb.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, csvimport.ErrMissingHeader
	}

	headers := make([]string, len(rows[0]))
	dateIdx := make(map[int]struct{})
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
		if _, ok := rd.dateColumns[headers[i]]; ok {
			dateIdx[i] = struct{}{}
		}
	}

	records := rows[1:]
	for _, rec := range records {
		for i := range rec {
			rec[i] = strings.TrimSpace(rec[i])
			if _, ok := dateIdx[i]; ok {
				rec[i] = serialToDate(rec[i])
			}
		}
	}
	return csvimport.NewTable(headers, records, 2), nil
}

func serialToDate(v string) string {
	serial, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return v
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return v
	}
	return t.Format(DateLayout)
}
