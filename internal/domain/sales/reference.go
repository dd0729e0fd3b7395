package sales

import (
	"time"

	"github.com/google/uuid"
)

// Model reference columns
const (
	ColModelStartDate = "START DATE"
	ColModelName      = "MODEL NAME"
	ColModelTarget    = "MODEL TARGET"
	ColMarketStock    = "MKT STK"
	ColDemandStock    = "DMDD STK"
	ColDealerPrice    = "DP"
	ColRefPriceBand   = "PRICE BAND"
	ColMarketName     = "MARKET NAME"
)

// Channel target columns
const (
	ColTargetMonth    = "MONTH"
	ColTargetChannel  = "CHANNEL"
	ColTargetPosition = "POSITION"
	ColTargetName     = "NAME"
)

// Employee directory columns
const (
	ColEmployeeCode     = "Code"
	ColEmployeeName     = "Name"
	ColEmployeePosition = "Position"
)

// ModelReference holds per-model attributes for one period. Numeric fields
// keep their source text; blank text reads as 0.
type ModelReference struct {
	ID          uuid.UUID
	StartDate   string // M/1/YYYY as uploaded
	PeriodStart time.Time
	ModelName   string
	ModelTarget string
	MarketStock string
	DemandStock string
	DealerPrice string
	PriceBand   string
	MarketName  string
}

// ChannelTarget is the target for one channel, one month and one employee scope
type ChannelTarget struct {
	ID           uuid.UUID
	PeriodStart  time.Time
	Channel      string
	Position     HierarchyLevel
	Name         string
	TargetVolume string
	TargetValue  string
}

// PeriodStartOf returns the first day of t's month at UTC midnight
func PeriodStartOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// ReferenceStartDate formats a period start the way model reference uploads
// carry it (M/1/YYYY, no padding).
func ReferenceStartDate(t time.Time) string {
	return PeriodStartOf(t).Format("1/2/2006")
}
