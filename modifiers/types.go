/*
types.go - Modifier graph value types

GROUNDED ON:
  generic/policy.go's Policy/ReconciliationRule shape: small, flatly
  declared structs with no business logic of their own - all behavior
  lives in the engine that consults them.
*/
package modifiers

import "github.com/shopspring/decimal"

// AdjustmentKind is either a free modifier or a priced surcharge.
type AdjustmentKind string

const (
	Free      AdjustmentKind = "Free"
	Surcharge AdjustmentKind = "Surcharge"
)

// Modifier is one selectable product attribute (e.g. "iced").
type Modifier struct {
	ID             string
	Name           string
	GroupCode      string
	AdjustmentKind AdjustmentKind
	Value          decimal.Decimal
	IsAutomatic    bool
	DisplayOrder   int
}

// Group declares selection cardinality for a set of modifiers.
type Group struct {
	Code         string
	Name         string
	SingleSelect bool
	Required     bool
}

// Graph is the fully loaded, immutable modifier rule graph for one store,
// loaded once at store activation (spec.md §5) from the SQLite schema
// contract in spec.md §6.
type Graph struct {
	Modifiers map[string]Modifier // lower-cased id -> modifier
	Groups    map[string]Group    // lower-cased group code -> group

	Applicability          map[string]map[string]bool // sku -> set(modifierId)
	Implications           map[string]map[string]bool // modifierId -> set(impliedId)
	ModifierIncompatibility map[string]map[string]bool // modifierId -> set(modifierId)
	GroupIncompatibility    map[string]map[string]bool // modifierId -> set(groupCode)
}
