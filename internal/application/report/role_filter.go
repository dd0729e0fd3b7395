package report

import (
	"context"
	"errors"
	"fmt"

	"github.com/fieldsales/backend/internal/domain/sales"
	"github.com/fieldsales/backend/internal/domain/shared"
)

// RoleFilter restricts a report to the records of one employee's subtree
type RoleFilter struct {
	Code  string
	Level sales.HierarchyLevel
	Name  string
}

// Scope converts the filter into a record query scope
func (f RoleFilter) Scope() *sales.Scope {
	return &sales.Scope{Level: f.Level, Name: f.Name}
}

// RoleFilterResolver turns an employee code into a role filter
type RoleFilterResolver struct {
	employees sales.EmployeeRepository
}

// NewRoleFilterResolver creates a resolver over the employee directory
func NewRoleFilterResolver(employees sales.EmployeeRepository) *RoleFilterResolver {
	return &RoleFilterResolver{employees: employees}
}

// Employee looks up a directory entry. Codes match case-insensitively.
func (r *RoleFilterResolver) Employee(ctx context.Context, code string) (*sales.Employee, error) {
	normalized := sales.NormalizeCode(code)
	if normalized == "" {
		return nil, shared.NewDomainError("MISSING_PARAMETER", "Employee code is required")
	}

	emp, err := r.employees.FindByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Employee not found with the given code")
		}
		return nil, fmt.Errorf("failed to look up employee %s: %w", normalized, err)
	}
	return emp, nil
}

// Resolve returns the filter of the employee identified by code
func (r *RoleFilterResolver) Resolve(ctx context.Context, code string) (RoleFilter, error) {
	emp, err := r.Employee(ctx, code)
	if err != nil {
		return RoleFilter{}, err
	}
	if !emp.Position.IsValid() {
		return RoleFilter{}, shared.NewDomainError("INVALID_INPUT",
			fmt.Sprintf("employee %s has unknown position %q", emp.Code, emp.Position))
	}
	return RoleFilter{Code: emp.Code, Level: emp.Position, Name: emp.Name}, nil
}
