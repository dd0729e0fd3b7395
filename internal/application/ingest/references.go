package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fieldsales/backend/internal/domain/sales"
	csvimport "github.com/fieldsales/backend/internal/infrastructure/import"
	"github.com/fieldsales/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Reference upload messages
const (
	MessageModelsStored    = "Model Data inserted into database!"
	MessageTargetsStored   = "Channel targets stored"
	MessageEmployeesStored = "Employee codes stored"
)

// ReferenceUploadResult summarizes an upload of reference rows. Rows that
// fail validation are skipped and reported; the others are upserted.
type ReferenceUploadResult struct {
	TotalRows   int                  `json:"total_rows"`
	Upserted    int64                `json:"upserted"`
	ErrorRows   int                  `json:"error_rows"`
	Errors      []csvimport.RowError `json:"errors,omitempty"`
	IsTruncated bool                 `json:"is_truncated,omitempty"`
	TotalErrors int                  `json:"total_errors,omitempty"`
	Message     string               `json:"message"`
}

// targetMonthLayouts are the accepted MONTH formats of a target upload
var targetMonthLayouts = []string{sales.SourceDateLayout, "2006-01-02", "2006-01", "Jan-2006", "January 2006"}

func parseTargetMonth(value string) (time.Time, error) {
	for _, layout := range targetMonthLayouts {
		if t, err := time.Parse(layout, strings.TrimSpace(value)); err == nil {
			return sales.PeriodStartOf(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("month must look like 3/1/2024 or 2024-03")
}

func validatePosition(value string) error {
	_, err := sales.ParseHierarchyLevel(value)
	return err
}

// validRows runs the rules over every row and returns the rows that passed
func validRows(table *csvimport.Table, rules []csvimport.FieldRule, result *ReferenceUploadResult) []*csvimport.Row {
	v := csvimport.NewFieldValidator(rules, maxRowErrors)
	out := make([]*csvimport.Row, 0, len(table.Rows))
	for _, row := range table.Rows {
		if v.ValidateRow(row) {
			out = append(out, row)
		} else {
			result.ErrorRows++
		}
	}

	errs := v.Errors()
	result.Errors = errs.Errors()
	result.IsTruncated = errs.IsTruncated()
	result.TotalErrors = errs.TotalCount()
	return out
}

// UploadModelReferences upserts model reference rows keyed by model name and
// the period of their START DATE
func (s *Service) UploadModelReferences(ctx context.Context, u Upload) (*ReferenceUploadResult, error) {
	table, err := s.readTable(u, sales.ColModelStartDate)
	if err != nil {
		return nil, err
	}
	if err := requireHeaders(table, sales.ColModelStartDate, sales.ColModelName); err != nil {
		return nil, err
	}

	result := &ReferenceUploadResult{TotalRows: len(table.Rows)}
	rows := validRows(table, []csvimport.FieldRule{
		csvimport.Field(sales.ColModelStartDate).Required().Date(sales.SourceDateLayout).Build(),
		csvimport.Field(sales.ColModelName).Required().Build(),
	}, result)

	refs := make([]*sales.ModelReference, 0, len(rows))
	for _, row := range rows {
		start, _ := time.Parse(sales.SourceDateLayout, strings.TrimSpace(row.Get(sales.ColModelStartDate)))
		refs = append(refs, &sales.ModelReference{
			StartDate:   sales.ReferenceStartDate(start),
			PeriodStart: sales.PeriodStartOf(start),
			ModelName:   strings.TrimSpace(row.Get(sales.ColModelName)),
			ModelTarget: row.Get(sales.ColModelTarget),
			MarketStock: row.Get(sales.ColMarketStock),
			DemandStock: row.Get(sales.ColDemandStock),
			DealerPrice: row.Get(sales.ColDealerPrice),
			PriceBand:   row.Get(sales.ColRefPriceBand),
			MarketName:  row.Get(sales.ColMarketName),
		})
	}

	if len(refs) > 0 {
		n, err := s.references.Upsert(ctx, refs)
		if err != nil {
			return nil, fmt.Errorf("failed to store model references: %w", err)
		}
		result.Upserted = n
	}
	result.Message = MessageModelsStored

	s.metrics.ReferencesUploaded(ctx, KindModelReferences, result.Upserted, result.ErrorRows)
	logger.For(ctx, s.logger).Info("Model reference upload processed",
		zap.String("file", u.FileName),
		zap.Int("total_rows", result.TotalRows),
		zap.Int64("upserted", result.Upserted),
		zap.Int("error_rows", result.ErrorRows),
	)
	return result, nil
}

// UploadChannelTargets upserts channel targets keyed by month, position,
// name and channel
func (s *Service) UploadChannelTargets(ctx context.Context, u Upload) (*ReferenceUploadResult, error) {
	table, err := s.readTable(u, sales.ColTargetMonth)
	if err != nil {
		return nil, err
	}
	if err := requireHeaders(table, sales.ColTargetMonth, sales.ColTargetChannel,
		sales.ColTargetPosition, sales.ColTargetName); err != nil {
		return nil, err
	}

	result := &ReferenceUploadResult{TotalRows: len(table.Rows)}
	rows := validRows(table, []csvimport.FieldRule{
		csvimport.Field(sales.ColTargetMonth).Required().Custom(func(v string) error {
			_, err := parseTargetMonth(v)
			return err
		}).Build(),
		csvimport.Field(sales.ColTargetChannel).Required().Build(),
		csvimport.Field(sales.ColTargetPosition).Required().Custom(validatePosition).Build(),
		csvimport.Field(sales.ColTargetName).Required().Build(),
	}, result)

	targets := make([]*sales.ChannelTarget, 0, len(rows))
	for _, row := range rows {
		period, _ := parseTargetMonth(row.Get(sales.ColTargetMonth))
		level, _ := sales.ParseHierarchyLevel(row.Get(sales.ColTargetPosition))
		targets = append(targets, &sales.ChannelTarget{
			PeriodStart:  period,
			Channel:      strings.TrimSpace(row.Get(sales.ColTargetChannel)),
			Position:     level,
			Name:         strings.TrimSpace(row.Get(sales.ColTargetName)),
			TargetVolume: row.Get(sales.ColTargetVolume),
			TargetValue:  row.Get(sales.ColTargetValue),
		})
	}

	if len(targets) > 0 {
		n, err := s.targets.Upsert(ctx, targets)
		if err != nil {
			return nil, fmt.Errorf("failed to store channel targets: %w", err)
		}
		result.Upserted = n
	}
	result.Message = MessageTargetsStored

	s.metrics.ReferencesUploaded(ctx, KindChannelTargets, result.Upserted, result.ErrorRows)
	logger.For(ctx, s.logger).Info("Channel target upload processed",
		zap.String("file", u.FileName),
		zap.Int("total_rows", result.TotalRows),
		zap.Int64("upserted", result.Upserted),
		zap.Int("error_rows", result.ErrorRows),
	)
	return result, nil
}

// UploadEmployees upserts the employee directory by code. A code repeated in
// the file keeps its last row.
func (s *Service) UploadEmployees(ctx context.Context, u Upload) (*ReferenceUploadResult, error) {
	table, err := s.readTable(u)
	if err != nil {
		return nil, err
	}
	if err := requireHeaders(table, sales.ColEmployeeCode, sales.ColEmployeeName, sales.ColEmployeePosition); err != nil {
		return nil, err
	}

	result := &ReferenceUploadResult{TotalRows: len(table.Rows)}
	rows := validRows(table, []csvimport.FieldRule{
		csvimport.Field(sales.ColEmployeeCode).Required().Build(),
		csvimport.Field(sales.ColEmployeeName).Required().Build(),
		csvimport.Field(sales.ColEmployeePosition).Required().Custom(validatePosition).Build(),
	}, result)

	employees := make([]*sales.Employee, 0, len(rows))
	for _, row := range rows {
		level, _ := sales.ParseHierarchyLevel(row.Get(sales.ColEmployeePosition))
		employees = append(employees, &sales.Employee{
			Code:     sales.NormalizeCode(row.Get(sales.ColEmployeeCode)),
			Name:     strings.TrimSpace(row.Get(sales.ColEmployeeName)),
			Position: level,
		})
	}

	if len(employees) > 0 {
		n, err := s.employees.Upsert(ctx, employees)
		if err != nil {
			return nil, fmt.Errorf("failed to store employees: %w", err)
		}
		result.Upserted = n
	}
	result.Message = MessageEmployeesStored

	s.metrics.ReferencesUploaded(ctx, KindEmployees, result.Upserted, result.ErrorRows)
	logger.For(ctx, s.logger).Info("Employee upload processed",
		zap.String("file", u.FileName),
		zap.Int("total_rows", result.TotalRows),
		zap.Int64("upserted", result.Upserted),
		zap.Int("error_rows", result.ErrorRows),
	)
	return result, nil
}
