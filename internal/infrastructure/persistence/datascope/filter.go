// Package datascope restricts GORM queries to one branch of the sales
// hierarchy.
//
// Every sales record carries one column per hierarchy level (ZSM down to TSE).
// An employee sees the records whose column for their own level holds their
// name:
//
//	db.Scopes(datascope.HierarchyScope(&sales.Scope{Level: sales.LevelASM, Name: "Ravi"}))
//	// WHERE asm = 'Ravi'
//
// A nil scope means no restriction (the market-wide report).
package datascope

import (
	"github.com/fieldsales/backend/internal/domain/sales"
	"gorm.io/gorm"
)

// ScopeFunc is a GORM scope function
type ScopeFunc func(*gorm.DB) *gorm.DB

// HierarchyScope returns the predicate of scope. Column names come from a
// fixed whitelist; an unknown level or an empty name matches nothing.
func HierarchyScope(scope *sales.Scope) ScopeFunc {
	return func(db *gorm.DB) *gorm.DB {
		if scope == nil {
			return db
		}
		column, ok := scope.Level.Column()
		if !ok || !allowedScopeFields[column] || scope.Name == "" {
			return db.Where("1 = 0")
		}
		return db.Where(column+" = ?", scope.Name)
	}
}

var allowedScopeFields = map[string]bool{
	"zsm": true,
	"rso": true,
	"asm": true,
	"abm": true,
	"ase": true,
	"tse": true,
}
