package csvimport

import (
	"github.com/shopspring/decimal"
)

// FieldType represents the expected type of a field
type FieldType string

const (
	TypeString   FieldType = "string"
	TypeQuantity FieldType = "quantity"
	TypeDecimal  FieldType = "decimal"
)

// FieldRule defines validation rules for a column
type FieldRule struct {
	Column    string
	Type      FieldType
	Required  bool
	MaxLength int
	// Positive requires numeric values greater than zero
	Positive bool
	// NonNegative requires numeric values of zero or more
	NonNegative bool
	Unique      bool
}

// FieldRuleBuilder helps build field rules fluently
type FieldRuleBuilder struct {
	rule FieldRule
}

// Field creates a new field rule builder
func Field(column string) *FieldRuleBuilder {
	return &FieldRuleBuilder{rule: FieldRule{Column: column, Type: TypeString}}
}

// Required marks the field as required
func (b *FieldRuleBuilder) Required() *FieldRuleBuilder {
	b.rule.Required = true
	return b
}

// Quantity sets the field type to whole quantity
func (b *FieldRuleBuilder) Quantity() *FieldRuleBuilder {
	b.rule.Type = TypeQuantity
	return b
}

// Decimal sets the field type to decimal amount
func (b *FieldRuleBuilder) Decimal() *FieldRuleBuilder {
	b.rule.Type = TypeDecimal
	return b
}

// MaxLength sets the maximum length in bytes
func (b *FieldRuleBuilder) MaxLength(n int) *FieldRuleBuilder {
	b.rule.MaxLength = n
	return b
}

// Positive requires a value greater than zero
func (b *FieldRuleBuilder) Positive() *FieldRuleBuilder {
	b.rule.Positive = true
	return b
}

// NonNegative requires a value of zero or more
func (b *FieldRuleBuilder) NonNegative() *FieldRuleBuilder {
	b.rule.NonNegative = true
	return b
}

// Unique requires the value to appear once in the file
func (b *FieldRuleBuilder) Unique() *FieldRuleBuilder {
	b.rule.Unique = true
	return b
}

// Build returns the built rule
func (b *FieldRuleBuilder) Build() FieldRule {
	return b.rule
}

// FieldValidator validates rows according to rules, in rule order
type FieldValidator struct {
	rules       []FieldRule
	uniqueCheck map[string]map[string]int
	errors      *ErrorCollection
}

// NewFieldValidator creates a new field validator
func NewFieldValidator(rules []FieldRule, maxErrors int) *FieldValidator {
	return &FieldValidator{
		rules:       rules,
		uniqueCheck: make(map[string]map[string]int),
		errors:      NewErrorCollection(maxErrors),
	}
}

// ValidateRow validates all ruled fields of a row and reports whether it is clean
func (v *FieldValidator) ValidateRow(row *Row) bool {
	ok := true

	for _, rule := range v.rules {
		value := row.Get(rule.Column)

		if value == "" {
			if rule.Required {
				v.errors.AddRequiredError(row.LineNumber, rule.Column)
				ok = false
			}
			continue
		}

		if rule.MaxLength > 0 && len(value) > rule.MaxLength {
			v.errors.AddLengthError(row.LineNumber, rule.Column, 0, rule.MaxLength)
			ok = false
		}

		switch rule.Type {
		case TypeQuantity:
			n, err := ParseQuantity(value)
			if err != nil {
				v.errors.AddTypeError(row.LineNumber, rule.Column, "whole number", value)
				ok = false
				continue
			}
			if !v.checkSign(row.LineNumber, rule, decimal.NewFromInt(n), value) {
				ok = false
			}
		case TypeDecimal:
			d, err := ParseDecimal(value)
			if err != nil {
				v.errors.AddTypeError(row.LineNumber, rule.Column, "number", value)
				ok = false
				continue
			}
			if !v.checkSign(row.LineNumber, rule, d, value) {
				ok = false
			}
		}

		if rule.Unique {
			seen := v.uniqueCheck[rule.Column]
			if seen == nil {
				seen = make(map[string]int)
				v.uniqueCheck[rule.Column] = seen
			}
			if first, dup := seen[value]; dup {
				v.errors.AddDuplicateError(row.LineNumber, first, rule.Column, value)
				ok = false
			} else {
				seen[value] = row.LineNumber
			}
		}
	}

	return ok
}

func (v *FieldValidator) checkSign(line int, rule FieldRule, d decimal.Decimal, raw string) bool {
	if rule.Positive && !d.IsPositive() {
		v.errors.AddRangeError(line, rule.Column, "greater than zero", raw)
		return false
	}
	if rule.NonNegative && d.IsNegative() {
		v.errors.AddRangeError(line, rule.Column, "zero or more", raw)
		return false
	}
	return true
}

// Errors returns the error collection
func (v *FieldValidator) Errors() *ErrorCollection {
	return v.errors
}

// Reset clears the validator state for reuse
func (v *FieldValidator) Reset() {
	v.uniqueCheck = make(map[string]map[string]int)
	v.errors.Clear()
}
