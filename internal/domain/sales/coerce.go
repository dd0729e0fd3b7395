package sales

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// CoerceInt converts a stored numeric text to an integer. Integer text parses
// directly, decimal text is truncated toward zero, and anything else
// (blank, "NA", "#REF!") is 0.
func CoerceInt(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return 0
	}
	return d.IntPart()
}
