package report

import (
	"context"
	"time"

	"github.com/fieldsales/backend/internal/domain/sales"
	"github.com/stretchr/testify/mock"
)

// MockRecordRepository is a mock implementation of sales.RecordRepository
type MockRecordRepository struct {
	mock.Mock
}

func (m *MockRecordRepository) FindInRange(ctx context.Context, q sales.RecordQuery) ([]*sales.Record, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*sales.Record), args.Error(1)
}

func (m *MockRecordRepository) InsertIfAbsent(ctx context.Context, records []*sales.Record) (int64, error) {
	args := m.Called(ctx, records)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRecordRepository) ExistingHashes(ctx context.Context, hashes []string) (sales.HashSet, error) {
	args := m.Called(ctx, hashes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(sales.HashSet), args.Error(1)
}

func (m *MockRecordRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockEmployeeRepository is a mock implementation of sales.EmployeeRepository
type MockEmployeeRepository struct {
	mock.Mock
}

func (m *MockEmployeeRepository) FindByCode(ctx context.Context, code string) (*sales.Employee, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Employee), args.Error(1)
}

func (m *MockEmployeeRepository) Upsert(ctx context.Context, employees []*sales.Employee) (int64, error) {
	args := m.Called(ctx, employees)
	return args.Get(0).(int64), args.Error(1)
}

// MockModelReferenceRepository is a mock implementation of sales.ModelReferenceRepository
type MockModelReferenceRepository struct {
	mock.Mock
}

func (m *MockModelReferenceRepository) FindByPeriod(ctx context.Context, periodStart time.Time) ([]*sales.ModelReference, error) {
	args := m.Called(ctx, periodStart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*sales.ModelReference), args.Error(1)
}

func (m *MockModelReferenceRepository) Upsert(ctx context.Context, refs []*sales.ModelReference) (int64, error) {
	args := m.Called(ctx, refs)
	return args.Get(0).(int64), args.Error(1)
}

// MockChannelTargetRepository is a mock implementation of sales.ChannelTargetRepository
type MockChannelTargetRepository struct {
	mock.Mock
}

func (m *MockChannelTargetRepository) FindForScope(ctx context.Context, periodStart time.Time, scope sales.Scope) ([]*sales.ChannelTarget, error) {
	args := m.Called(ctx, periodStart, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*sales.ChannelTarget), args.Error(1)
}

func (m *MockChannelTargetRepository) Upsert(ctx context.Context, targets []*sales.ChannelTarget) (int64, error) {
	args := m.Called(ctx, targets)
	return args.Get(0).(int64), args.Error(1)
}
