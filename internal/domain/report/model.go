package report

import (
	"github.com/fieldsales/backend/internal/domain/sales"
)

// Model-wise report columns
const (
	ColPriceBand   = "Price Band"
	ColMarketName  = "Market Name"
	ColModelName   = "MODEL NAME"
	ColModelTarget = "Model Target"
	ColLMTD        = "LMTD"
	ColMTD         = "MTD"
	ColFTDVol      = "FTD Vol"
	ColGrowth      = "% Gwth"
	ColDP          = "DP"
	ColMktStk      = "Mkt Stk"
	ColDmddStk     = "Dmdd Stk"
	ColStockSum    = "M+S"
	ColDOS         = "DOS"
)

// ModelColumns is the column order of the model-wise report
var ModelColumns = []string{
	ColPriceBand, ColMarketName, ColModelName, ColModelTarget, ColLMTD, ColMTD, ColFTDVol,
	ColGrowth, ColADS, ColDP, ColMktStk, ColDmddStk, ColStockSum, ColDOS,
}

// ModelInput feeds BuildModelReport. Aggregations are grouped by
// DimModelCode over Sell Out volume; References are the rows of the period
// that contains the window's end day.
type ModelInput struct {
	Window     Window
	References []*sales.ModelReference
	Current    *Aggregation
	Prior      *Aggregation
	FTD        *Aggregation
}

type modelLine struct {
	target int64
	prev   int64
	cur    int64
	ftd    int64
	dp     int64
	mkt    int64
	dmd    int64
}

func (l modelLine) add(o modelLine) modelLine {
	return modelLine{
		target: l.target + o.target,
		prev:   l.prev + o.prev,
		cur:    l.cur + o.cur,
		ftd:    l.ftd + o.ftd,
		dp:     l.dp + o.dp,
		mkt:    l.mkt + o.mkt,
		dmd:    l.dmd + o.dmd,
	}
}

func (l modelLine) row(priceBand, market, name string, daysPassed int) Row {
	ads := AverageDaySale(l.cur, daysPassed)
	return newRow(ModelColumns, []Cell{
		Text(priceBand),
		Text(market),
		Text(name),
		Int(l.target),
		Int(l.prev),
		Int(l.cur),
		Int(l.ftd),
		Growth(l.cur, l.prev),
		Ratio(ads),
		Int(l.dp),
		Int(l.mkt),
		Int(l.dmd),
		Int(l.mkt + l.dmd),
		DaysOfSupply(l.mkt+l.dmd, ads),
	})
}

// BuildModelReport assembles the model-wise report. Reference rows come
// first in stored order, then models that only appear in sales, in the order
// the sales first name them. Price band and market name are the first values observed in sales,
// falling back to the reference row.
func BuildModelReport(in ModelInput) *Report {
	refs := make(map[string]*sales.ModelReference, len(in.References))
	var names []string
	for _, ref := range in.References {
		if ref == nil {
			continue
		}
		if _, dup := refs[ref.ModelName]; dup {
			continue
		}
		refs[ref.ModelName] = ref
		names = append(names, ref.ModelName)
	}

	var salesOnly []string
	for _, code := range in.Current.Keys() {
		if _, ok := refs[code]; !ok {
			salesOnly = append(salesOnly, code)
		}
	}
	names = append(names, salesOnly...)

	var total modelLine
	rows := make([]Row, 0, len(names))
	for _, name := range names {
		var l modelLine
		var priceBand, market string

		if ref, ok := refs[name]; ok {
			l.target = sales.CoerceInt(ref.ModelTarget)
			l.dp = sales.CoerceInt(ref.DealerPrice)
			l.mkt = sales.CoerceInt(ref.MarketStock)
			l.dmd = sales.CoerceInt(ref.DemandStock)
			priceBand, market = ref.PriceBand, ref.MarketName
		}
		if g, ok := in.Current.Lookup(name); ok {
			l.cur = g.Current
			if g.PriceBand != "" {
				priceBand = g.PriceBand
			}
			if g.Market != "" {
				market = g.Market
			}
		}
		l.prev = in.Prior.Get(name).Current
		l.ftd = in.FTD.Get(name).Current

		total = total.add(l)
		rows = append(rows, l.row(priceBand, market, name, in.Window.DaysPassed))
	}

	return newReport(ModelColumns, ColModelName, total.row("", "", GrandTotalLabel, in.Window.DaysPassed), rows)
}
