package persistence

import (
	"context"
	"fmt"

	"github.com/fieldsales/backend/internal/domain/sales"
	"github.com/fieldsales/backend/internal/infrastructure/persistence/datascope"
	"github.com/fieldsales/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// insertBatchSize bounds the rows of one INSERT statement
	insertBatchSize = 500
	// hashLookupBatchSize bounds the parameters of one IN list
	hashLookupBatchSize = 1000
)

// GormSalesRecordRepository implements sales.RecordRepository using GORM
type GormSalesRecordRepository struct {
	db *gorm.DB
}

// NewGormSalesRecordRepository creates a new GormSalesRecordRepository
func NewGormSalesRecordRepository(db *gorm.DB) *GormSalesRecordRepository {
	return &GormSalesRecordRepository{db: db}
}

// FindInRange returns the records matching q in upload order
func (r *GormSalesRecordRepository) FindInRange(ctx context.Context, q sales.RecordQuery) ([]*sales.Record, error) {
	query := r.db.WithContext(ctx).
		Model(&models.SalesRecordModel{}).
		Where("sale_date IS NOT NULL").
		Scopes(datascope.HierarchyScope(q.Scope))

	if !q.From.IsZero() {
		query = query.Where("sale_date >= ?", q.From)
	}
	if !q.To.IsZero() {
		query = query.Where("sale_date <= ?", q.To)
	}
	if q.SalesType != "" {
		query = query.Where("sales_type = ?", string(q.SalesType))
	}

	var rows []models.SalesRecordModel
	if err := query.Order("created_at, source_line, id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find sales records: %w", err)
	}

	records := make([]*sales.Record, len(rows))
	for i := range rows {
		records[i] = rows[i].ToDomain()
	}
	return records, nil
}

// InsertIfAbsent stores the records whose identity hash is not yet present.
// Conflicting rows are skipped by the unique index, so concurrent uploads of
// the same file never store a fact twice.
func (r *GormSalesRecordRepository) InsertIfAbsent(ctx context.Context, records []*sales.Record) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}
	rows := make([]*models.SalesRecordModel, len(records))
	for i, rec := range records {
		rows[i] = models.SalesRecordModelFromDomain(rec)
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "identity_hash"}},
			DoNothing: true,
		}).
		CreateInBatches(rows, insertBatchSize)
	if result.Error != nil {
		return 0, fmt.Errorf("insert sales records: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// ExistingHashes returns the subset of hashes already stored
func (r *GormSalesRecordRepository) ExistingHashes(ctx context.Context, hashes []string) (sales.HashSet, error) {
	found := make(sales.HashSet, len(hashes))
	for start := 0; start < len(hashes); start += hashLookupBatchSize {
		end := min(start+hashLookupBatchSize, len(hashes))

		var chunk []string
		if err := r.db.WithContext(ctx).
			Model(&models.SalesRecordModel{}).
			Where("identity_hash IN ?", hashes[start:end]).
			Pluck("identity_hash", &chunk).Error; err != nil {
			return nil, fmt.Errorf("lookup identity hashes: %w", err)
		}
		for _, h := range chunk {
			found.Add(h)
		}
	}
	return found, nil
}

// Count returns the number of stored records
func (r *GormSalesRecordRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.SalesRecordModel{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count sales records: %w", err)
	}
	return count, nil
}

// Ensure GormSalesRecordRepository implements the interface
var _ sales.RecordRepository = (*GormSalesRecordRepository)(nil)
