package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/fieldsales/backend/internal/domain/sales"
	"github.com/fieldsales/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormModelReferenceRepository implements sales.ModelReferenceRepository using GORM
type GormModelReferenceRepository struct {
	db *gorm.DB
}

// NewGormModelReferenceRepository creates a new GormModelReferenceRepository
func NewGormModelReferenceRepository(db *gorm.DB) *GormModelReferenceRepository {
	return &GormModelReferenceRepository{db: db}
}

// FindByPeriod returns the reference rows of one month in upload order
func (r *GormModelReferenceRepository) FindByPeriod(ctx context.Context, periodStart time.Time) ([]*sales.ModelReference, error) {
	var rows []models.ModelReferenceModel
	if err := r.db.WithContext(ctx).
		Where("period_start = ?", sales.PeriodStartOf(periodStart)).
		Order("position, model_name").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find model references: %w", err)
	}
	refs := make([]*sales.ModelReference, len(rows))
	for i := range rows {
		refs[i] = rows[i].ToDomain()
	}
	return refs, nil
}

// Upsert inserts or replaces rows by (model name, period start). A later
// row for the same key replaces the attributes but keeps its slot.
func (r *GormModelReferenceRepository) Upsert(ctx context.Context, refs []*sales.ModelReference) (int64, error) {
	rows := dedupeModelReferences(refs)
	if len(rows) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "model_name"}, {Name: "period_start"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"start_date",
				"model_target",
				"market_stock",
				"demand_stock",
				"dealer_price",
				"price_band",
				"market_name",
				"updated_at",
			}),
		}).
		CreateInBatches(rows, insertBatchSize)
	if result.Error != nil {
		return 0, fmt.Errorf("upsert model references: %w", result.Error)
	}
	return int64(len(rows)), nil
}

// dedupeModelReferences collapses repeated keys of one upload; postgres
// rejects a single INSERT that touches the same conflict key twice.
func dedupeModelReferences(refs []*sales.ModelReference) []*models.ModelReferenceModel {
	type key struct {
		name   string
		period time.Time
	}
	index := make(map[key]int, len(refs))
	rows := make([]*models.ModelReferenceModel, 0, len(refs))
	for _, ref := range refs {
		if ref == nil || ref.ModelName == "" {
			continue
		}
		k := key{name: ref.ModelName, period: sales.PeriodStartOf(ref.PeriodStart)}
		if i, ok := index[k]; ok {
			rows[i].FromDomain(ref, rows[i].Position)
			continue
		}
		m := &models.ModelReferenceModel{}
		m.FromDomain(ref, len(rows))
		index[k] = len(rows)
		rows = append(rows, m)
	}
	return rows
}

// GormChannelTargetRepository implements sales.ChannelTargetRepository using GORM
type GormChannelTargetRepository struct {
	db *gorm.DB
}

// NewGormChannelTargetRepository creates a new GormChannelTargetRepository
func NewGormChannelTargetRepository(db *gorm.DB) *GormChannelTargetRepository {
	return &GormChannelTargetRepository{db: db}
}

// FindForScope returns the targets of one month for one employee
func (r *GormChannelTargetRepository) FindForScope(ctx context.Context, periodStart time.Time, scope sales.Scope) ([]*sales.ChannelTarget, error) {
	var rows []models.ChannelTargetModel
	if err := r.db.WithContext(ctx).
		Where("period_start = ? AND position = ? AND name = ?",
			sales.PeriodStartOf(periodStart), string(scope.Level), scope.Name).
		Order("channel").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find channel targets: %w", err)
	}
	targets := make([]*sales.ChannelTarget, len(rows))
	for i := range rows {
		targets[i] = rows[i].ToDomain()
	}
	return targets, nil
}

// Upsert inserts or replaces rows by (period, position, name, channel)
func (r *GormChannelTargetRepository) Upsert(ctx context.Context, targets []*sales.ChannelTarget) (int64, error) {
	type key struct {
		period                  time.Time
		position, name, channel string
	}
	index := make(map[key]int, len(targets))
	rows := make([]*models.ChannelTargetModel, 0, len(targets))
	for _, t := range targets {
		if t == nil {
			continue
		}
		k := key{sales.PeriodStartOf(t.PeriodStart), string(t.Position), t.Name, t.Channel}
		if i, ok := index[k]; ok {
			rows[i].FromDomain(t)
			continue
		}
		m := &models.ChannelTargetModel{}
		m.FromDomain(t)
		index[k] = len(rows)
		rows = append(rows, m)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "period_start"}, {Name: "position"}, {Name: "name"}, {Name: "channel"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"target_volume", "target_value", "updated_at"}),
		}).
		CreateInBatches(rows, insertBatchSize)
	if result.Error != nil {
		return 0, fmt.Errorf("upsert channel targets: %w", result.Error)
	}
	return int64(len(rows)), nil
}

var (
	_ sales.ModelReferenceRepository = (*GormModelReferenceRepository)(nil)
	_ sales.ChannelTargetRepository  = (*GormChannelTargetRepository)(nil)
)
