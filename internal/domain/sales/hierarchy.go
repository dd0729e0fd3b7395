package sales

import (
	"fmt"
	"strings"
)

// HierarchyLevel is a position in the sales organization. The record schema
// carries one column per level, so scoping a report to an employee means
// filtering on the column of that employee's level.
type HierarchyLevel string

const (
	LevelZSM HierarchyLevel = "ZSM"
	LevelRSO HierarchyLevel = "RSO"
	LevelASM HierarchyLevel = "ASM"
	LevelABM HierarchyLevel = "ABM"
	LevelASE HierarchyLevel = "ASE"
	LevelTSE HierarchyLevel = "TSE"
)

var hierarchyLevels = []HierarchyLevel{LevelZSM, LevelRSO, LevelASM, LevelABM, LevelASE, LevelTSE}

// hierarchyColumns maps each level to its storage column. Only these columns
// may ever be interpolated into a query.
var hierarchyColumns = map[HierarchyLevel]string{
	LevelZSM: "zsm",
	LevelRSO: "rso",
	LevelASM: "asm",
	LevelABM: "abm",
	LevelASE: "ase",
	LevelTSE: "tse",
}

// HierarchyLevels returns all levels, top-down
func HierarchyLevels() []HierarchyLevel {
	out := make([]HierarchyLevel, len(hierarchyLevels))
	copy(out, hierarchyLevels)
	return out
}

// ParseHierarchyLevel accepts a position name in any case
func ParseHierarchyLevel(s string) (HierarchyLevel, error) {
	level := HierarchyLevel(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := hierarchyColumns[level]; !ok {
		return "", fmt.Errorf("unknown hierarchy level %q", s)
	}
	return level, nil
}

// IsValid reports whether the level is one of the known positions
func (l HierarchyLevel) IsValid() bool {
	_, ok := hierarchyColumns[l]
	return ok
}

// Column returns the storage column for the level
func (l HierarchyLevel) Column() (string, bool) {
	c, ok := hierarchyColumns[l]
	return c, ok
}

// FieldFor returns the record's value for the given level
func FieldFor(level HierarchyLevel, r *Record) string {
	if r == nil || r.Hierarchy == nil {
		return ""
	}
	return r.Hierarchy[level]
}
