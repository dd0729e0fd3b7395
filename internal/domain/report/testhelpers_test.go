package report

import (
	"time"

	"github.com/fieldsales/backend/internal/domain/sales"
)

type recordOpt func(*sales.Record)

func withVolume(v string) recordOpt { return func(r *sales.Record) { r.MTDVolume = v } }
func withValue(v string) recordOpt  { return func(r *sales.Record) { r.MTDValue = v } }
func withLMTD(vol, val string) recordOpt {
	return func(r *sales.Record) { r.LMTDVolume, r.LMTDValue = vol, val }
}
func withTarget(vol, val string) recordOpt {
	return func(r *sales.Record) { r.TargetVolume, r.TargetValue = vol, val }
}
func withOutlet(o string) recordOpt  { return func(r *sales.Record) { r.OutletType = o } }
func withChannel(c string) recordOpt { return func(r *sales.Record) { r.Channel = c } }
func withModel(code, market, band string) recordOpt {
	return func(r *sales.Record) { r.ModelCode, r.Market, r.PriceBand = code, market, band }
}
func withSalesType(st sales.SalesType) recordOpt {
	return func(r *sales.Record) { r.SalesType = st }
}

func newRecord(opts ...recordOpt) *sales.Record {
	d := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	r := &sales.Record{Date: "3/10/2024", SaleDate: &d, SalesType: sales.SalesTypeSellOut}
	for _, o := range opts {
		o(r)
	}
	return r
}

func midMarch() Window {
	return Window{
		Period:     PeriodMTD,
		Current:    DateRange{From: day(2024, 3, 1), To: day(2024, 3, 15)},
		Prior:      DateRange{From: day(2024, 2, 1), To: day(2024, 2, 15)},
		FTD:        DateRange{From: day(2024, 3, 15), To: day(2024, 3, 15)},
		DaysPassed: 15,
	}
}
