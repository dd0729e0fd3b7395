package report

import (
	"fmt"
	"strings"

	"github.com/fieldsales/backend/internal/domain/sales"
	"github.com/fieldsales/backend/internal/domain/shared"
)

// Dimension is a grouping column
type Dimension string

const (
	DimOutletType Dimension = sales.ColOutletType
	DimChannel    Dimension = sales.ColChannel
	DimModelCode  Dimension = sales.ColModelCode
	DimSalesType  Dimension = sales.ColSalesType
)

// Of returns the record's value for the dimension
func (d Dimension) Of(r *sales.Record) string {
	switch d {
	case DimOutletType:
		return r.OutletType
	case DimChannel:
		return r.Channel
	case DimModelCode:
		return r.ModelCode
	case DimSalesType:
		return string(r.SalesType)
	}
	return ""
}

// Measure selects the value or the volume columns
type Measure string

const (
	MeasureValue  Measure = "value"
	MeasureVolume Measure = "volume"
)

// ParseMeasure reads a data_format parameter; blank yields def
func ParseMeasure(s string, def Measure) (Measure, error) {
	switch Measure(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return def, nil
	case MeasureValue:
		return MeasureValue, nil
	case MeasureVolume:
		return MeasureVolume, nil
	}
	return "", shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("unsupported data_format %q", s))
}

func (m Measure) current(r *sales.Record) int64 {
	if m == MeasureVolume {
		return r.Volume()
	}
	return r.Value()
}

func (m Measure) sameRowPrior(r *sales.Record) int64 {
	if m == MeasureVolume {
		return sales.CoerceInt(r.LMTDVolume)
	}
	return sales.CoerceInt(r.LMTDValue)
}

func (m Measure) target(r *sales.Record) int64 {
	if m == MeasureVolume {
		return sales.CoerceInt(r.TargetVolume)
	}
	return sales.CoerceInt(r.TargetValue)
}

// Group holds the sums of one dimension value
type Group struct {
	Key string

	Current      int64 // MTD column of the measure
	SameRowPrior int64 // LMTD column of the measure, carried on the same rows
	Target       int64 // TARGET column of the measure

	// first observed, never re-aggregated
	Market    string
	PriceBand string

	Records int
}

// Aggregation is the result of one grouping pass. Keys keep first-seen order.
type Aggregation struct {
	Dimension Dimension
	Measure   Measure
	keys      []string
	groups    map[string]*Group
}

// Aggregate groups records by dim and sums the measure's columns. Records
// are expected to be pre-filtered by window, sales type and scope.
func Aggregate(records []*sales.Record, dim Dimension, m Measure) *Aggregation {
	a := &Aggregation{Dimension: dim, Measure: m, groups: make(map[string]*Group)}
	for _, r := range records {
		if r == nil {
			continue
		}
		key := dim.Of(r)
		g, ok := a.groups[key]
		if !ok {
			g = &Group{Key: key, Market: r.Market, PriceBand: r.PriceBand}
			a.groups[key] = g
			a.keys = append(a.keys, key)
		}
		g.Current += m.current(r)
		g.SameRowPrior += m.sameRowPrior(r)
		g.Target += m.target(r)
		g.Records++
	}
	return a
}

// Keys returns the dimension values in first-seen order
func (a *Aggregation) Keys() []string {
	if a == nil {
		return nil
	}
	return append([]string(nil), a.keys...)
}

// Lookup returns the group of key
func (a *Aggregation) Lookup(key string) (*Group, bool) {
	if a == nil {
		return nil, false
	}
	g, ok := a.groups[key]
	return g, ok
}

// Get returns the group of key, or a zero group when key never occurred
func (a *Aggregation) Get(key string) Group {
	if g, ok := a.Lookup(key); ok {
		return *g
	}
	return Group{Key: key}
}

// Len returns the number of groups
func (a *Aggregation) Len() int {
	if a == nil {
		return 0
	}
	return len(a.keys)
}

// Total sums Current over every group
func (a *Aggregation) Total() int64 {
	var total int64
	if a == nil {
		return 0
	}
	for _, g := range a.groups {
		total += g.Current
	}
	return total
}
