package sales

import "strings"

// Employee is an entry of the employee directory
type Employee struct {
	Code     string
	Name     string
	Position HierarchyLevel
}

// NormalizeCode upper-cases and trims an employee code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
