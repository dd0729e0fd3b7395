package models

import (
	"time"

	"github.com/fieldsales/backend/internal/domain/sales"
)

// ModelReferenceModel is the persistence model for per-period model attributes
type ModelReferenceModel struct {
	BaseModel
	ModelName   string    `gorm:"type:varchar(100);not null;uniqueIndex:uq_model_references_name_period,priority:1"`
	PeriodStart time.Time `gorm:"type:date;not null;uniqueIndex:uq_model_references_name_period,priority:2"`
	StartDate   string    `gorm:"type:varchar(20);not null"`
	ModelTarget string    `gorm:"type:varchar(50)"`
	MarketStock string    `gorm:"type:varchar(50)"`
	DemandStock string    `gorm:"type:varchar(50)"`
	DealerPrice string    `gorm:"type:varchar(50)"`
	PriceBand   string    `gorm:"type:varchar(100)"`
	MarketName  string    `gorm:"type:varchar(100)"`
	Position    int       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ModelReferenceModel) TableName() string {
	return "model_references"
}

// ToDomain converts the persistence model to a domain ModelReference
func (m *ModelReferenceModel) ToDomain() *sales.ModelReference {
	return &sales.ModelReference{
		ID:          m.ID,
		StartDate:   m.StartDate,
		PeriodStart: sales.PeriodStartOf(m.PeriodStart),
		ModelName:   m.ModelName,
		ModelTarget: m.ModelTarget,
		MarketStock: m.MarketStock,
		DemandStock: m.DemandStock,
		DealerPrice: m.DealerPrice,
		PriceBand:   m.PriceBand,
		MarketName:  m.MarketName,
	}
}

// FromDomain populates the persistence model from a domain ModelReference.
// position keeps the upload order within a period.
func (m *ModelReferenceModel) FromDomain(r *sales.ModelReference, position int) {
	m.ID = r.ID
	m.StartDate = r.StartDate
	m.PeriodStart = sales.PeriodStartOf(r.PeriodStart)
	m.ModelName = r.ModelName
	m.ModelTarget = r.ModelTarget
	m.MarketStock = r.MarketStock
	m.DemandStock = r.DemandStock
	m.DealerPrice = r.DealerPrice
	m.PriceBand = r.PriceBand
	m.MarketName = r.MarketName
	m.Position = position
}

// ChannelTargetModel is the persistence model for a channel target
type ChannelTargetModel struct {
	BaseModel
	PeriodStart  time.Time `gorm:"type:date;not null;uniqueIndex:uq_channel_targets_scope,priority:1"`
	Position     string    `gorm:"type:varchar(10);not null;uniqueIndex:uq_channel_targets_scope,priority:2"`
	Name         string    `gorm:"type:varchar(200);not null;uniqueIndex:uq_channel_targets_scope,priority:3"`
	Channel      string    `gorm:"type:varchar(100);not null;uniqueIndex:uq_channel_targets_scope,priority:4"`
	TargetVolume string    `gorm:"type:varchar(50)"`
	TargetValue  string    `gorm:"type:varchar(50)"`
}

// TableName returns the table name for GORM
func (ChannelTargetModel) TableName() string {
	return "channel_targets"
}

// ToDomain converts the persistence model to a domain ChannelTarget
func (m *ChannelTargetModel) ToDomain() *sales.ChannelTarget {
	return &sales.ChannelTarget{
		ID:           m.ID,
		PeriodStart:  sales.PeriodStartOf(m.PeriodStart),
		Channel:      m.Channel,
		Position:     sales.HierarchyLevel(m.Position),
		Name:         m.Name,
		TargetVolume: m.TargetVolume,
		TargetValue:  m.TargetValue,
	}
}

// FromDomain populates the persistence model from a domain ChannelTarget
func (m *ChannelTargetModel) FromDomain(t *sales.ChannelTarget) {
	m.ID = t.ID
	m.PeriodStart = sales.PeriodStartOf(t.PeriodStart)
	m.Channel = t.Channel
	m.Position = string(t.Position)
	m.Name = t.Name
	m.TargetVolume = t.TargetVolume
	m.TargetValue = t.TargetValue
}
