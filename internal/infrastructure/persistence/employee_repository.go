package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/fieldsales/backend/internal/domain/sales"
	"github.com/fieldsales/backend/internal/domain/shared"
	"github.com/fieldsales/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormEmployeeRepository implements sales.EmployeeRepository using GORM
type GormEmployeeRepository struct {
	db *gorm.DB
}

// NewGormEmployeeRepository creates a new GormEmployeeRepository
func NewGormEmployeeRepository(db *gorm.DB) *GormEmployeeRepository {
	return &GormEmployeeRepository{db: db}
}

// FindByCode finds an employee by code
func (r *GormEmployeeRepository) FindByCode(ctx context.Context, code string) (*sales.Employee, error) {
	var model models.EmployeeModel
	if err := r.db.WithContext(ctx).
		Where("code = ?", sales.NormalizeCode(code)).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("find employee: %w", err)
	}
	return model.ToDomain(), nil
}

// Upsert inserts or replaces directory entries by code
func (r *GormEmployeeRepository) Upsert(ctx context.Context, employees []*sales.Employee) (int64, error) {
	if len(employees) == 0 {
		return 0, nil
	}
	// Last entry wins for a code repeated within one upload
	index := make(map[string]int, len(employees))
	rows := make([]*models.EmployeeModel, 0, len(employees))
	for _, e := range employees {
		if e == nil || sales.NormalizeCode(e.Code) == "" {
			continue
		}
		m := &models.EmployeeModel{}
		m.FromDomain(e)
		if i, ok := index[m.Code]; ok {
			rows[i] = m
			continue
		}
		index[m.Code] = len(rows)
		rows = append(rows, m)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "position", "updated_at"}),
		}).
		CreateInBatches(rows, insertBatchSize)
	if result.Error != nil {
		return 0, fmt.Errorf("upsert employees: %w", result.Error)
	}
	return int64(len(rows)), nil
}

// Ensure GormEmployeeRepository implements the interface
var _ sales.EmployeeRepository = (*GormEmployeeRepository)(nil)
