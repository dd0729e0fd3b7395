package models

import (
	"time"

	"github.com/fieldsales/backend/internal/domain/sales"
	"github.com/google/uuid"
)

// SalesRecordModel is the persistence model for one sales fact row.
// Numeric columns stay text; they are coerced when aggregated.
type SalesRecordModel struct {
	BaseModel
	Identity     string     `gorm:"type:text;not null"`
	IdentityHash string     `gorm:"type:char(64);not null;uniqueIndex:uq_sales_records_identity_hash"`
	PeriodBucket int        `gorm:"not null"`
	UploadID     uuid.UUID  `gorm:"type:uuid;index"`
	SourceLine   int        `gorm:"not null"`
	Date         string     `gorm:"column:date;type:varchar(32)"`
	SaleDate     *time.Time `gorm:"type:date;index:idx_sales_records_sale_date_type,priority:1"`
	SalesType    string     `gorm:"type:varchar(50);index:idx_sales_records_sale_date_type,priority:2"`
	Channel      string     `gorm:"type:varchar(100)"`
	OutletType   string     `gorm:"type:varchar(100)"`
	ModelCode    string     `gorm:"type:varchar(100)"`
	Market       string     `gorm:"type:varchar(100)"`
	PriceBand    string     `gorm:"type:varchar(100)"`
	MTDVolume    string     `gorm:"column:mtd_volume;type:varchar(50)"`
	MTDValue     string     `gorm:"column:mtd_value;type:varchar(50)"`
	LMTDVolume   string     `gorm:"column:lmtd_volume;type:varchar(50)"`
	LMTDValue    string     `gorm:"column:lmtd_value;type:varchar(50)"`
	TargetVolume string     `gorm:"type:varchar(50)"`
	TargetValue  string     `gorm:"type:varchar(50)"`
	ZSM          string     `gorm:"column:zsm;type:varchar(100);index"`
	RSO          string     `gorm:"column:rso;type:varchar(100);index"`
	ASM          string     `gorm:"column:asm;type:varchar(100);index"`
	ABM          string     `gorm:"column:abm;type:varchar(100);index"`
	ASE          string     `gorm:"column:ase;type:varchar(100);index"`
	TSE          string     `gorm:"column:tse;type:varchar(100);index"`
}

// TableName returns the table name for GORM
func (SalesRecordModel) TableName() string {
	return "sales_records"
}

// ToDomain converts the persistence model to a domain Record
func (m *SalesRecordModel) ToDomain() *sales.Record {
	r := &sales.Record{
		ID:           m.ID,
		Identity:     m.Identity,
		IdentityHash: m.IdentityHash,
		PeriodBucket: m.PeriodBucket,
		UploadID:     m.UploadID,
		SourceLine:   m.SourceLine,
		Date:         m.Date,
		Channel:      m.Channel,
		OutletType:   m.OutletType,
		ModelCode:    m.ModelCode,
		Market:       m.Market,
		PriceBand:    m.PriceBand,
		SalesType:    sales.SalesType(m.SalesType),
		MTDVolume:    m.MTDVolume,
		MTDValue:     m.MTDValue,
		LMTDVolume:   m.LMTDVolume,
		LMTDValue:    m.LMTDValue,
		TargetVolume: m.TargetVolume,
		TargetValue:  m.TargetValue,
		Hierarchy: map[sales.HierarchyLevel]string{
			sales.LevelZSM: m.ZSM,
			sales.LevelRSO: m.RSO,
			sales.LevelASM: m.ASM,
			sales.LevelABM: m.ABM,
			sales.LevelASE: m.ASE,
			sales.LevelTSE: m.TSE,
		},
		CreatedAt: m.CreatedAt,
	}
	if m.SaleDate != nil {
		d := time.Date(m.SaleDate.Year(), m.SaleDate.Month(), m.SaleDate.Day(), 0, 0, 0, 0, time.UTC)
		r.SaleDate = &d
	}
	return r
}

// FromDomain populates the persistence model from a domain Record
func (m *SalesRecordModel) FromDomain(r *sales.Record) {
	m.ID = r.ID
	m.CreatedAt = r.CreatedAt
	m.UpdatedAt = r.CreatedAt
	m.Identity = r.Identity
	m.IdentityHash = r.IdentityHash
	m.PeriodBucket = r.PeriodBucket
	m.UploadID = r.UploadID
	m.SourceLine = r.SourceLine
	m.Date = r.Date
	m.SaleDate = r.SaleDate
	m.SalesType = string(r.SalesType)
	m.Channel = r.Channel
	m.OutletType = r.OutletType
	m.ModelCode = r.ModelCode
	m.Market = r.Market
	m.PriceBand = r.PriceBand
	m.MTDVolume = r.MTDVolume
	m.MTDValue = r.MTDValue
	m.LMTDVolume = r.LMTDVolume
	m.LMTDValue = r.LMTDValue
	m.TargetVolume = r.TargetVolume
	m.TargetValue = r.TargetValue
	m.ZSM = sales.FieldFor(sales.LevelZSM, r)
	m.RSO = sales.FieldFor(sales.LevelRSO, r)
	m.ASM = sales.FieldFor(sales.LevelASM, r)
	m.ABM = sales.FieldFor(sales.LevelABM, r)
	m.ASE = sales.FieldFor(sales.LevelASE, r)
	m.TSE = sales.FieldFor(sales.LevelTSE, r)
}

// SalesRecordModelFromDomain creates a new persistence model from a domain Record
func SalesRecordModelFromDomain(r *sales.Record) *SalesRecordModel {
	m := &SalesRecordModel{}
	m.FromDomain(r)
	return m
}

// EmployeeModel is the persistence model for an employee directory entry
type EmployeeModel struct {
	BaseModel
	Code     string `gorm:"type:varchar(50);not null;uniqueIndex:uq_employees_code"`
	Name     string `gorm:"type:varchar(200);not null"`
	Position string `gorm:"type:varchar(10);not null"`
}

// TableName returns the table name for GORM
func (EmployeeModel) TableName() string {
	return "employees"
}

// ToDomain converts the persistence model to a domain Employee
func (m *EmployeeModel) ToDomain() *sales.Employee {
	return &sales.Employee{
		Code:     m.Code,
		Name:     m.Name,
		Position: sales.HierarchyLevel(m.Position),
	}
}

// FromDomain populates the persistence model from a domain Employee
func (m *EmployeeModel) FromDomain(e *sales.Employee) {
	m.Code = sales.NormalizeCode(e.Code)
	m.Name = e.Name
	m.Position = string(e.Position)
}
