package report

import "sort"

// Market-wide report columns
const (
	ColChannel          = "Channel"
	ColMTDSellOut       = "MTD Sell out"
	ColLMTDSellOut      = "LMTD Sell out"
	ColYTDSellOut       = "YTD Sell out"
	ColLYTDSellOut      = "LYTD Sell out"
	ColMarketGrowth     = "%Gwth"
	ColMarketContribute = "Contribution"
)

// MarketColumns returns the column order for a period
func MarketColumns(p Period) []string {
	if p == PeriodYTD {
		return []string{ColChannel, ColYTDSellOut, ColLYTDSellOut, ColMarketGrowth, ColMarketContribute}
	}
	return []string{ColChannel, ColMTDSellOut, ColLMTDSellOut, ColMarketGrowth, ColMarketContribute}
}

// MarketInput feeds BuildMarketReport. Aggregations are grouped by
// DimChannel. For MTD, Prior may be nil: the LMTD columns carried on the
// current rows are used instead. For YTD, Prior is the LYTD pass.
type MarketInput struct {
	Window  Window
	Current *Aggregation
	Prior   *Aggregation
}

type marketLine struct {
	cur  int64
	prev int64
}

func (l marketLine) add(o marketLine) marketLine {
	return marketLine{cur: l.cur + o.cur, prev: l.prev + o.prev}
}

func (l marketLine) row(columns []string, label string, total int64) Row {
	return newRow(columns, []Cell{
		Text(label),
		Int(l.cur),
		Int(l.prev),
		Growth(l.cur, l.prev),
		Contribution(l.cur, total),
	})
}

// BuildMarketReport assembles the market-wide channel report. The row
// universe is the set of channels seen in the current window; rows are
// sorted by contribution, largest first, ties broken by channel name.
func BuildMarketReport(in MarketInput) *Report {
	columns := MarketColumns(in.Window.Period)
	keys := in.Current.Keys()

	lines := make(map[string]marketLine, len(keys))
	var total marketLine
	for _, k := range keys {
		g := in.Current.Get(k)
		l := marketLine{cur: g.Current, prev: g.SameRowPrior}
		if in.Prior != nil {
			l.prev = in.Prior.Get(k).Current
		}
		lines[k] = l
		total = total.add(l)
	}

	sort.SliceStable(keys, func(i, j int) bool {
		a, b := lines[keys[i]].cur, lines[keys[j]].cur
		if a != b && total.cur != 0 {
			// share order flips with the sign of the total
			return (a > b) == (total.cur > 0)
		}
		return keys[i] < keys[j]
	})

	rows := make([]Row, len(keys))
	for i, k := range keys {
		rows[i] = lines[k].row(columns, k, total.cur)
	}
	return newReport(columns, ColChannel, total.row(columns, GrandTotalLabel, total.cur), rows)
}
