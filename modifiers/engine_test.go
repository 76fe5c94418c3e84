package modifiers_test

import (
	"context"
	"testing"

	"github.com/posware/kernel/modifiers"
	"github.com/posware/kernel/storeext"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// newS6Graph builds the graph described in spec.md S6 - applicability
// {COFFEE -> {ICED, LESS_SUGAR, HOT}}, incompatibility {ICED <-> HOT},
// required single-select group TEMPERATURE {ICED, HOT} - plus a second,
// unrelated product category (SANDWICH, under its own required BREAD
// group) to exercise a store with more than one required group, per the
// §6 schema's modification_groups being a store-wide table with no direct
// product linkage: COFFEE's validation must never be blocked by BREAD
// having no representative, and vice versa.
func newS6Graph(t *testing.T) modifiers.Graph {
	t.Helper()
	return modifiers.Graph{
		Modifiers: map[string]modifiers.Modifier{
			"iced":       {ID: "iced", Name: "Iced", GroupCode: "TEMPERATURE", AdjustmentKind: modifiers.Surcharge, Value: decimal.NewFromFloat(0.50)},
			"hot":        {ID: "hot", Name: "Hot", GroupCode: "TEMPERATURE"},
			"less_sugar": {ID: "less_sugar", Name: "Less Sugar", GroupCode: "SWEETNESS"},
			"white":      {ID: "white", Name: "White Bread", GroupCode: "BREAD"},
			"wheat":      {ID: "wheat", Name: "Wheat Bread", GroupCode: "BREAD"},
		},
		Groups: map[string]modifiers.Group{
			"temperature": {Code: "TEMPERATURE", Name: "Temperature", SingleSelect: true, Required: true},
			"sweetness":   {Code: "SWEETNESS", Name: "Sweetness"},
			"bread":       {Code: "BREAD", Name: "Bread", SingleSelect: true, Required: true},
		},
		Applicability: map[string]map[string]bool{
			"coffee":   {"iced": true, "less_sugar": true, "hot": true},
			"sandwich": {"white": true, "wheat": true},
		},
		Implications: map[string]map[string]bool{},
		ModifierIncompatibility: map[string]map[string]bool{
			"iced": {"hot": true},
			"hot":  {"iced": true},
		},
		GroupIncompatibility: map[string]map[string]bool{},
	}
}

func TestModifierEngine_S6_RuleEngine(t *testing.T) {
	graph := newS6Graph(t)
	engine := modifiers.NewEngine(graph)
	ctx := context.Background()

	t.Run("iced alone is valid with the surcharge priced", func(t *testing.T) {
		result, err := engine.ValidateModifications(ctx, "COFFEE", []storeext.ModifierSelection{
			{ModifierId: "ICED", Quantity: 1},
		})
		require.NoError(t, err)
		require.True(t, result.IsValid, result.ErrorMessage)
		require.True(t, result.TotalExtraPrice.Equal(decimal.NewFromFloat(0.50)))
	})

	t.Run("iced and hot together are incompatible", func(t *testing.T) {
		result, err := engine.ValidateModifications(ctx, "COFFEE", []storeext.ModifierSelection{
			{ModifierId: "ICED", Quantity: 1},
			{ModifierId: "HOT", Quantity: 1},
		})
		require.NoError(t, err)
		require.False(t, result.IsValid)
		require.Contains(t, result.ErrorMessage, "cannot be combined")
	})

	t.Run("less sugar alone fails required group check", func(t *testing.T) {
		result, err := engine.ValidateModifications(ctx, "COFFEE", []storeext.ModifierSelection{
			{ModifierId: "LESS_SUGAR", Quantity: 1},
		})
		require.NoError(t, err)
		require.False(t, result.IsValid)
		require.Contains(t, result.ErrorMessage, "required group")
		require.Contains(t, result.ErrorMessage, "TEMPERATURE")
	})
}

// TestModifierEngine_RequiredGroupsAreScopedPerProduct guards against
// scoping the required-group check (step 7) to the store's entire
// modifier graph instead of the groups reachable from the product being
// validated: BREAD is required for SANDWICH, but COFFEE has no modifier
// in BREAD at all, so selecting ICED for COFFEE must not fail because
// BREAD has no representative - and the symmetric case for SANDWICH/
// TEMPERATURE must also pass.
func TestModifierEngine_RequiredGroupsAreScopedPerProduct(t *testing.T) {
	graph := newS6Graph(t)
	engine := modifiers.NewEngine(graph)
	ctx := context.Background()

	t.Run("coffee with its own required group satisfied ignores bread", func(t *testing.T) {
		result, err := engine.ValidateModifications(ctx, "COFFEE", []storeext.ModifierSelection{
			{ModifierId: "ICED", Quantity: 1},
		})
		require.NoError(t, err)
		require.True(t, result.IsValid, result.ErrorMessage)
	})

	t.Run("sandwich with its own required group satisfied ignores temperature", func(t *testing.T) {
		result, err := engine.ValidateModifications(ctx, "SANDWICH", []storeext.ModifierSelection{
			{ModifierId: "WHITE", Quantity: 1},
		})
		require.NoError(t, err)
		require.True(t, result.IsValid, result.ErrorMessage)
	})

	t.Run("sandwich still enforces its own required bread group", func(t *testing.T) {
		result, err := engine.ValidateModifications(ctx, "SANDWICH", []storeext.ModifierSelection{})
		require.NoError(t, err)
		require.False(t, result.IsValid)
		require.Contains(t, result.ErrorMessage, "required group")
		require.Contains(t, result.ErrorMessage, "BREAD")
	})
}

func TestModifierEngine_UnknownModifierFails(t *testing.T) {
	graph := newS6Graph(t)
	engine := modifiers.NewEngine(graph)

	result, err := engine.ValidateModifications(context.Background(), "COFFEE", []storeext.ModifierSelection{
		{ModifierId: "DOES_NOT_EXIST"},
	})
	require.NoError(t, err)
	require.False(t, result.IsValid)
}

func TestModifierEngine_ValidationIsDeterministic(t *testing.T) {
	graph := newS6Graph(t)
	engine := modifiers.NewEngine(graph)
	selections := []storeext.ModifierSelection{{ModifierId: "ICED", Quantity: 1}}

	first, err := engine.ValidateModifications(context.Background(), "COFFEE", selections)
	require.NoError(t, err)
	second, err := engine.ValidateModifications(context.Background(), "COFFEE", selections)
	require.NoError(t, err)

	require.Equal(t, first.IsValid, second.IsValid)
	require.True(t, first.TotalExtraPrice.Equal(second.TotalExtraPrice))
}
