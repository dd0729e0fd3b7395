package csvimport

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FieldType is the expected type of a column
type FieldType string

const (
	TypeString  FieldType = "string"
	TypeInt     FieldType = "int"
	TypeDecimal FieldType = "decimal"
	TypeDate    FieldType = "date"
)

// FieldRule validates one column
type FieldRule struct {
	Column     string
	Type       FieldType
	Required   bool
	DateFormat string
	Unique     bool
	CustomFunc func(value string) error
}

// FieldRuleBuilder builds a FieldRule fluently
type FieldRuleBuilder struct {
	rule FieldRule
}

// Field starts a rule for column
func Field(column string) *FieldRuleBuilder {
	return &FieldRuleBuilder{rule: FieldRule{Column: column, Type: TypeString, DateFormat: "2006-01-02"}}
}

// Required marks the column as required
func (b *FieldRuleBuilder) Required() *FieldRuleBuilder {
	b.rule.Required = true
	return b
}

// Int expects an integer, thousands separators allowed
func (b *FieldRuleBuilder) Int() *FieldRuleBuilder {
	b.rule.Type = TypeInt
	return b
}

// Decimal expects a decimal number, thousands separators allowed
func (b *FieldRuleBuilder) Decimal() *FieldRuleBuilder {
	b.rule.Type = TypeDecimal
	return b
}

// Date expects a date in layout
func (b *FieldRuleBuilder) Date(layout string) *FieldRuleBuilder {
	b.rule.Type = TypeDate
	b.rule.DateFormat = layout
	return b
}

// Unique rejects repeated values within the file
func (b *FieldRuleBuilder) Unique() *FieldRuleBuilder {
	b.rule.Unique = true
	return b
}

// Custom adds a validation function
func (b *FieldRuleBuilder) Custom(fn func(value string) error) *FieldRuleBuilder {
	b.rule.CustomFunc = fn
	return b
}

// Build returns the rule
func (b *FieldRuleBuilder) Build() FieldRule {
	return b.rule
}

// FieldValidator applies rules row by row and collects errors
type FieldValidator struct {
	rules  []FieldRule
	seen   map[string]map[string]int // column -> value -> first line
	errors *ErrorCollection
}

// NewFieldValidator creates a validator. Rules run in the given order.
func NewFieldValidator(rules []FieldRule, maxErrors int) *FieldValidator {
	return &FieldValidator{
		rules:  rules,
		seen:   make(map[string]map[string]int),
		errors: NewErrorCollection(maxErrors),
	}
}

// ValidateRow reports whether every rule passed for row
func (v *FieldValidator) ValidateRow(row *Row) bool {
	ok := true
	for _, rule := range v.rules {
		value := strings.TrimSpace(row.Get(rule.Column))

		if value == "" {
			if rule.Required {
				v.errors.AddRequiredError(row.LineNumber, rule.Column)
				ok = false
			}
			continue
		}

		if err := validateType(value, rule); err != nil {
			v.errors.AddTypeError(row.LineNumber, rule.Column, string(rule.Type), value)
			ok = false
			continue
		}

		if rule.Unique {
			if v.seen[rule.Column] == nil {
				v.seen[rule.Column] = make(map[string]int)
			}
			if first, dup := v.seen[rule.Column][value]; dup {
				e := NewRowError(row.LineNumber, rule.Column, ErrCodeImportDuplicateInFile,
					fmt.Sprintf("duplicate value '%s' (first seen in row %d)", value, first))
				e.Value = value
				v.errors.Add(e)
				ok = false
			} else {
				v.seen[rule.Column][value] = row.LineNumber
			}
		}

		if rule.CustomFunc != nil {
			if err := rule.CustomFunc(value); err != nil {
				v.errors.Add(NewRowError(row.LineNumber, rule.Column, ErrCodeImportValidation, err.Error()))
				ok = false
			}
		}
	}
	return ok
}

func validateType(value string, rule FieldRule) error {
	switch rule.Type {
	case TypeInt:
		_, err := strconv.ParseInt(strings.ReplaceAll(value, ",", ""), 10, 64)
		return err
	case TypeDecimal:
		_, err := decimal.NewFromString(strings.ReplaceAll(value, ",", ""))
		return err
	case TypeDate:
		_, err := time.Parse(rule.DateFormat, value)
		return err
	}
	return nil
}

// Errors returns the collected errors
func (v *FieldValidator) Errors() *ErrorCollection {
	return v.errors
}
