/*
engine.go - Modifier Rule Engine

PURPOSE:
  Implements storeext.ModifierService against a Graph loaded once at
  store activation. Runs the 8-step, data-driven validation algorithm of
  spec.md §4.3: no modifier code is ever hardcoded here.

ORDERING (spec.md §4.3):
  Implications are applied before compatibility checks, so implied
  modifiers participate in conflict detection. Required-group checks run
  last, so implied selections can satisfy them.

GROUNDED ON:
  generic/policy.go's ReconciliationEngine.applyAction: a dispatch over a
  small set of declarative rule kinds, each a pure function over the
  engine's loaded configuration plus the caller's input.
*/
package modifiers

import (
	"context"
	"strings"

	"github.com/posware/kernel/storeext"
	"github.com/shopspring/decimal"
)

// Engine implements storeext.ModifierService over an immutable Graph.
type Engine struct {
	graph Graph
}

// NewEngine wraps an already-loaded Graph. Use LoadFromDB to build one
// from a store's SQLite catalog database.
func NewEngine(graph Graph) *Engine {
	return &Engine{graph: graph}
}

func normalizeId(id string) string { return strings.ToLower(strings.TrimSpace(id)) }

// closedModifier is one modifier in the closure, with its accumulated
// quantity for pricing.
type closedModifier struct {
	modifier Modifier
	quantity int
}

func (e *Engine) resolveAndClose(productId string, selections []storeext.ModifierSelection) ([]closedModifier, error) {
	quantities := make(map[string]int)
	order := make([]string, 0, len(selections))

	// Step 1: resolve each selection, verify declared group if supplied.
	for _, sel := range selections {
		id := normalizeId(sel.ModifierId)
		mod, ok := e.graph.Modifiers[id]
		if !ok {
			return nil, unknownModifier(sel.ModifierId)
		}
		if sel.GroupCode != "" && !strings.EqualFold(sel.GroupCode, mod.GroupCode) {
			return nil, groupMismatch(sel.ModifierId, sel.GroupCode, mod.GroupCode)
		}

		// Step 2: applicability.
		if !e.isApplicable(productId, id) {
			return nil, notApplicable(sel.ModifierId, productId)
		}

		qty := sel.Quantity
		if qty <= 0 {
			qty = 1
		}
		if _, seen := quantities[id]; !seen {
			order = append(order, id)
		}
		quantities[id] += qty
	}

	// Step 3: closure under implications (breadth-first). Unknown implied
	// ids are silently skipped (advisory metadata, spec.md §4.3 step 3 /
	// SPEC_FULL.md §9 Open Question 2).
	queue := append([]string{}, order...)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for implied := range e.graph.Implications[current] {
			if _, already := quantities[implied]; already {
				continue
			}
			if _, ok := e.graph.Modifiers[implied]; !ok {
				continue // unknown implied modifier: advisory, skip silently
			}
			if !e.isApplicable(productId, implied) {
				return nil, notApplicable(implied, productId)
			}
			quantities[implied] = 1
			order = append(order, implied)
			queue = append(queue, implied)
		}
	}

	closed := make([]closedModifier, 0, len(order))
	for _, id := range order {
		closed = append(closed, closedModifier{modifier: e.graph.Modifiers[id], quantity: quantities[id]})
	}
	return closed, nil
}

func (e *Engine) isApplicable(productId, modifierId string) bool {
	set, ok := e.graph.Applicability[normalizeId(productId)]
	if !ok {
		return false
	}
	return set[modifierId]
}

// requiredGroupsFor returns the required groups reachable from productId via
// Applicability(sku->modifierId)->modifier.GroupCode - the only link between
// a product and a group the §6 schema provides. modification_groups is a
// store-wide table (spec.md §6), so a required group that belongs to a
// different product's category must not block validation of productId.
func (e *Engine) requiredGroupsFor(productId string) map[string]bool {
	required := make(map[string]bool)
	for modifierId := range e.graph.Applicability[normalizeId(productId)] {
		mod, ok := e.graph.Modifiers[modifierId]
		if !ok {
			continue
		}
		group, ok := e.graph.Groups[normalizeId(mod.GroupCode)]
		if !ok || !group.Required {
			continue
		}
		required[normalizeId(group.Code)] = true
	}
	return required
}

// checkCompatibility runs steps 4-7 over an already-closed selection set.
// required (from requiredGroupsFor) replaces a wholesale scan of
// e.graph.Groups so an unrelated product category's required group can't
// block validation of a product that has no modifier in it.
func (e *Engine) checkCompatibility(closed []closedModifier, required map[string]bool) error {
	ids := make([]string, len(closed))
	for i, c := range closed {
		ids[i] = normalizeId(c.modifier.ID)
	}

	// Step 4: pairwise modifier incompatibilities.
	for i, a := range ids {
		for j, b := range ids {
			if i == j {
				continue
			}
			if e.graph.ModifierIncompatibility[a][b] {
				return incompatible(closed[i].modifier.ID, closed[j].modifier.ID)
			}
		}
	}

	// Step 5: group incompatibilities.
	for i, a := range ids {
		forbidden := e.graph.GroupIncompatibility[a]
		if len(forbidden) == 0 {
			continue
		}
		for j, b := range ids {
			if i == j {
				continue
			}
			if forbidden[strings.ToLower(closed[j].modifier.GroupCode)] {
				return groupIncompatible(closed[i].modifier.ID, closed[j].modifier.GroupCode)
			}
		}
	}

	// Step 6: single-select groups allow at most one distinct modifier.
	bySingleSelectGroup := make(map[string]map[string]bool)
	for _, c := range closed {
		group, ok := e.graph.Groups[strings.ToLower(c.modifier.GroupCode)]
		if !ok || !group.SingleSelect {
			continue
		}
		key := strings.ToLower(group.Code)
		if bySingleSelectGroup[key] == nil {
			bySingleSelectGroup[key] = make(map[string]bool)
		}
		bySingleSelectGroup[key][normalizeId(c.modifier.ID)] = true
		if len(bySingleSelectGroup[key]) > 1 {
			return duplicateSingleSelect(group.Code)
		}
	}

	// Step 7: required groups (scoped to the product, via required) must
	// have a representative.
	present := make(map[string]bool)
	for _, c := range closed {
		present[strings.ToLower(c.modifier.GroupCode)] = true
	}
	for code := range required {
		if !present[code] {
			return missingRequired(e.graph.Groups[code].Code)
		}
	}

	return nil
}

func (e *Engine) price(closed []closedModifier) decimal.Decimal {
	total := decimal.Zero
	for _, c := range closed {
		if c.modifier.AdjustmentKind != Surcharge {
			continue
		}
		total = total.Add(c.modifier.Value.Mul(decimal.NewFromInt(int64(c.quantity))))
	}
	return total
}

// ValidateModifications implements storeext.ModifierService.
func (e *Engine) ValidateModifications(ctx context.Context, productId string, selections []storeext.ModifierSelection) (storeext.ModifierValidation, error) {
	closed, err := e.resolveAndClose(productId, selections)
	if err != nil {
		return storeext.ModifierValidation{IsValid: false, ErrorMessage: err.Error()}, nil
	}
	if err := e.checkCompatibility(closed, e.requiredGroupsFor(productId)); err != nil {
		return storeext.ModifierValidation{IsValid: false, ErrorMessage: err.Error()}, nil
	}
	return storeext.ModifierValidation{IsValid: true, TotalExtraPrice: e.price(closed)}, nil
}

// CalculateModificationTotal implements storeext.ModifierService. It is a
// pure pricing helper over an already-resolved selection set - it does
// not re-run applicability/compatibility checks; callers are expected to
// call ValidateModifications first (spec.md §4.3's "validate, then
// price" framing).
func (e *Engine) CalculateModificationTotal(ctx context.Context, selections []storeext.ModifierSelection) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, sel := range selections {
		mod, ok := e.graph.Modifiers[normalizeId(sel.ModifierId)]
		if !ok {
			return decimal.Zero, unknownModifier(sel.ModifierId)
		}
		if mod.AdjustmentKind != Surcharge {
			continue
		}
		qty := sel.Quantity
		if qty <= 0 {
			qty = 1
		}
		total = total.Add(mod.Value.Mul(decimal.NewFromInt(int64(qty))))
	}
	return total, nil
}
