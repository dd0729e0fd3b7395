package report

import (
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"
)

// NotAvailable is the sentinel emitted for an undefined ratio
const NotAvailable = "N/A"

// CellKind tells how a cell is rendered
type CellKind int

const (
	KindText CellKind = iota
	KindInt
	KindRatio
	KindNA
)

// Cell is one value of a report row: an integer sum, a ratio fixed to two
// decimals, free text, or the N/A sentinel.
type Cell struct {
	kind  CellKind
	text  string
	num   int64
	ratio decimal.Decimal
}

// Text creates a text cell
func Text(s string) Cell { return Cell{kind: KindText, text: s} }

// Int creates an integer cell
func Int(n int64) Cell { return Cell{kind: KindInt, num: n} }

// Ratio creates a ratio cell rounded half away from zero to 2 places
func Ratio(d decimal.Decimal) Cell { return Cell{kind: KindRatio, ratio: d.Round(2)} }

// NA creates the N/A sentinel cell
func NA() Cell { return Cell{kind: KindNA} }

// Kind returns the cell kind
func (c Cell) Kind() CellKind { return c.kind }

// IsNA reports whether the cell is the N/A sentinel
func (c Cell) IsNA() bool { return c.kind == KindNA }

// IntValue returns the integer of an Int cell, 0 otherwise
func (c Cell) IntValue() int64 {
	if c.kind != KindInt {
		return 0
	}
	return c.num
}

// Decimal returns the numeric value of an Int or Ratio cell, 0 otherwise
func (c Cell) Decimal() decimal.Decimal {
	switch c.kind {
	case KindInt:
		return decimal.NewFromInt(c.num)
	case KindRatio:
		return c.ratio
	}
	return decimal.Zero
}

// String renders the cell the way it appears in exports
func (c Cell) String() string {
	switch c.kind {
	case KindInt:
		return strconv.FormatInt(c.num, 10)
	case KindRatio:
		return c.ratio.StringFixed(2)
	case KindNA:
		return NotAvailable
	}
	return c.text
}

// MarshalJSON encodes integers as JSON numbers and everything else as
// strings, so ratios keep their two trailing decimals on the wire.
func (c Cell) MarshalJSON() ([]byte, error) {
	if c.kind == KindInt {
		return []byte(strconv.FormatInt(c.num, 10)), nil
	}
	return json.Marshal(c.String())
}
