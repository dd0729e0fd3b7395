// Package sales holds the sales fact model, the employee hierarchy and the
// ingestion identity rules.
package sales

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Source column names. These are the literal headers of the sales export and
// double as the compatibility surface for uploads.
const (
	ColDate         = "DATE"
	ColChannel      = "CHANNEL"
	ColOutletType   = "OLS TYPE"
	ColModelCode    = "MODEL CODE"
	ColMarket       = "MARKET"
	ColPriceBand    = "Segment New"
	ColSalesType    = "SALES TYPE"
	ColMTDVolume    = "MTD VOLUME"
	ColMTDValue     = "MTD VALUE"
	ColLMTDVolume   = "LMTD VOLUME"
	ColLMTDValue    = "LMTD VALUE"
	ColTargetVolume = "TARGET VOLUME"
	ColTargetValue  = "TARGET VALUE"
)

// SourceDateLayout is the layout of the DATE column. Single-digit months and
// days are accepted as well.
const SourceDateLayout = "1/2/2006"

// SalesType is the SALES TYPE column. The set is open; these are the values
// the reports know about.
type SalesType string

const (
	SalesTypeSellIn    SalesType = "Sell In"
	SalesTypeSellOut   SalesType = "Sell Out"
	SalesTypeSellThru2 SalesType = "Sell Thru2"
)

// IsSellIn reports whether the type is folded into the sell-in bucket
func (t SalesType) IsSellIn() bool {
	return t == SalesTypeSellIn || t == SalesTypeSellThru2
}

// Record is one immutable sales fact row.
//
// Numeric columns keep their source text. They are coerced with CoerceInt
// when aggregated, never trusted as numeric on the way in.
type Record struct {
	ID           uuid.UUID
	Identity     string
	IdentityHash string
	PeriodBucket int
	UploadID     uuid.UUID
	SourceLine   int

	Date       string
	SaleDate   *time.Time // nil when DATE does not parse
	Channel    string
	OutletType string
	ModelCode  string
	Market     string
	PriceBand  string
	SalesType  SalesType

	MTDVolume    string
	MTDValue     string
	LMTDVolume   string
	LMTDValue    string
	TargetVolume string
	TargetValue  string

	Hierarchy map[HierarchyLevel]string

	CreatedAt time.Time
}

// ParseSourceDate parses a DATE value into UTC midnight
func ParseSourceDate(raw string) (time.Time, bool) {
	t, err := time.ParseInLocation(SourceDateLayout, strings.TrimSpace(raw), time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// NewRecordFromRow maps an admitted raw row onto a Record. Missing columns
// become empty strings.
func NewRecordFromRow(row Admitted) *Record {
	r := &Record{
		ID:           uuid.New(),
		Identity:     row.Identity,
		IdentityHash: row.IdentityHash,
		PeriodBucket: row.PeriodBucket,
		SourceLine:   row.Line,
		Date:         row.Get(ColDate),
		Channel:      row.Get(ColChannel),
		OutletType:   row.Get(ColOutletType),
		ModelCode:    row.Get(ColModelCode),
		Market:       row.Get(ColMarket),
		PriceBand:    row.Get(ColPriceBand),
		SalesType:    SalesType(row.Get(ColSalesType)),
		MTDVolume:    row.Get(ColMTDVolume),
		MTDValue:     row.Get(ColMTDValue),
		LMTDVolume:   row.Get(ColLMTDVolume),
		LMTDValue:    row.Get(ColLMTDValue),
		TargetVolume: row.Get(ColTargetVolume),
		TargetValue:  row.Get(ColTargetValue),
		Hierarchy:    make(map[HierarchyLevel]string, len(HierarchyLevels())),
	}
	if t, ok := ParseSourceDate(r.Date); ok {
		r.SaleDate = &t
	}
	for _, level := range HierarchyLevels() {
		r.Hierarchy[level] = row.Get(string(level))
	}
	return r
}

// Volume returns the coerced MTD VOLUME
func (r *Record) Volume() int64 { return CoerceInt(r.MTDVolume) }

// Value returns the coerced MTD VALUE
func (r *Record) Value() int64 { return CoerceInt(r.MTDValue) }
