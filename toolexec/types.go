/*
types.go - Declarative tool catalog value types

GROUNDED ON:
  factory/policy.go's PolicyJSON-style declarative struct-describes-shape
  convention, here describing a tool's parameters instead of a policy's
  accrual rules.
*/
package toolexec

import "github.com/shopspring/decimal"

// ParamType is the declared type of one tool parameter.
type ParamType string

const (
	ParamString  ParamType = "string"
	ParamInt     ParamType = "int"
	ParamDecimal ParamType = "decimal"
)

// Parameter declares one named, typed tool input (spec.md §4.6).
type Parameter struct {
	Name        string
	Type        ParamType
	Required    bool
	Description string
}

// Definition is a tool's declarative description: name, category,
// human-readable purpose, and its declared parameter list.
type Definition struct {
	Name        string
	Category    string
	Description string
	Parameters  []Parameter
}

// Bag is the caller-supplied parameter values, before coercion. Handlers
// receive a NormalizedBag instead, never this raw form.
type Bag map[string]any

// NormalizedBag holds coerced values keyed by parameter name, after every
// declared parameter has been type-checked per spec.md §4.6 step 2.
type NormalizedBag map[string]any

func (b NormalizedBag) String(name string) string {
	v, _ := b[name].(string)
	return v
}

func (b NormalizedBag) Int(name string) int {
	v, _ := b[name].(int)
	return v
}

func (b NormalizedBag) Decimal(name string) decimal.Decimal {
	v, _ := b[name].(decimal.Decimal)
	return v
}
