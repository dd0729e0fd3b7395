package sales

import (
	"context"
	"time"
)

// RecordQuery selects sales records for one aggregation pass. Zero-valued
// filters are not applied.
type RecordQuery struct {
	From      time.Time // inclusive, UTC midnight
	To        time.Time // inclusive, UTC midnight
	SalesType SalesType
	Scope     *Scope
}

// Scope restricts records to one employee's subtree: the column of Level
// must equal Name.
type Scope struct {
	Level HierarchyLevel
	Name  string
}

// Matches reports whether r satisfies the query. A record whose DATE does
// not parse never matches.
func (q RecordQuery) Matches(r *Record) bool {
	if r == nil || r.SaleDate == nil {
		return false
	}
	if !q.From.IsZero() && r.SaleDate.Before(q.From) {
		return false
	}
	if !q.To.IsZero() && r.SaleDate.After(q.To) {
		return false
	}
	if q.SalesType != "" && r.SalesType != q.SalesType {
		return false
	}
	if q.Scope != nil && FieldFor(q.Scope.Level, r) != q.Scope.Name {
		return false
	}
	return true
}

// RecordRepository stores sales facts
type RecordRepository interface {
	// FindInRange returns records whose sale date falls in [From, To] and that
	// match the query's equality filters
	FindInRange(ctx context.Context, q RecordQuery) ([]*Record, error)

	// InsertIfAbsent stores records whose identity is not yet present and
	// returns how many were inserted. Identity conflicts are not errors.
	InsertIfAbsent(ctx context.Context, records []*Record) (int64, error)

	// ExistingHashes returns the subset of hashes already stored
	ExistingHashes(ctx context.Context, hashes []string) (HashSet, error)

	// Count returns the number of stored records
	Count(ctx context.Context) (int64, error)
}

// EmployeeRepository is the employee directory
type EmployeeRepository interface {
	// FindByCode looks up a normalized code; returns shared.ErrNotFound when absent
	FindByCode(ctx context.Context, code string) (*Employee, error)

	// Upsert inserts or replaces entries by code
	Upsert(ctx context.Context, employees []*Employee) (int64, error)
}

// ModelReferenceRepository stores per-period model attributes
type ModelReferenceRepository interface {
	// FindByPeriod returns the reference rows of one period in upload order
	FindByPeriod(ctx context.Context, periodStart time.Time) ([]*ModelReference, error)

	// Upsert inserts or replaces rows by (model name, period start)
	Upsert(ctx context.Context, refs []*ModelReference) (int64, error)
}

// ChannelTargetRepository stores per-channel targets
type ChannelTargetRepository interface {
	// FindForScope returns the targets of one period for one employee scope
	FindForScope(ctx context.Context, periodStart time.Time, scope Scope) ([]*ChannelTarget, error)

	// Upsert inserts or replaces rows by (period, position, name, channel)
	Upsert(ctx context.Context, targets []*ChannelTarget) (int64, error)
}
