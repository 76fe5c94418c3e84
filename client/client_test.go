package client_test

import (
	"context"
	"testing"

	"github.com/posware/kernel/client"
	"github.com/posware/kernel/currency"
	"github.com/posware/kernel/kernel"
	"github.com/posware/kernel/modifiers"
	"github.com/posware/kernel/money"
	"github.com/posware/kernel/storeext"
	"github.com/posware/kernel/toolexec"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// fakeCatalog is a tiny in-memory storeext.Catalog for tests, since the
// real SQLiteCatalog needs an on-disk database.
type fakeCatalog struct {
	products map[string]storeext.ProductInfo
}

func (f *fakeCatalog) ValidateProduct(ctx context.Context, productId string) (storeext.ProductValidation, error) {
	p, ok := f.products[productId]
	if !ok {
		return storeext.ProductValidation{IsValid: false, ErrorMessage: "not found"}, nil
	}
	return storeext.ProductValidation{IsValid: true, Product: &p, EffectivePrice: p.BasePrice}, nil
}

func (f *fakeCatalog) SearchProducts(ctx context.Context, term string, maxResults int) ([]storeext.ProductInfo, error) {
	return nil, nil
}

func (f *fakeCatalog) GetPopularItems(ctx context.Context) ([]storeext.ProductInfo, error) {
	return nil, nil
}

// newTestExtension wraps catalog with an empty modifier graph and the
// default currency formatter, matching how cmd/posd assembles a
// storeext.StoreExtension at store activation.
func newTestExtension(t *testing.T, catalog storeext.Catalog) *storeext.Extension {
	ext, err := storeext.NewExtension(catalog, modifiers.NewEngine(modifiers.Graph{}), currency.DefaultFormatter{})
	require.NoError(t, err)
	return ext
}

func TestTerminal_ToolCatalog_EndToEnd(t *testing.T) {
	engine, err := kernel.NewEngine(kernel.DefaultPaymentRules{})
	require.NoError(t, err)

	kc := client.New(engine)
	catalog := &fakeCatalog{products: map[string]storeext.ProductInfo{
		"COFFEE.SMALL": {SKU: "COFFEE.SMALL", Name: "Small Coffee", BasePrice: decimal.NewFromFloat(3.50), IsActive: true},
	}}

	terminal, err := client.NewTerminal(kc, newTestExtension(t, catalog), "TERM1", "OP1")
	require.NoError(t, err)

	executor := toolexec.New()
	client.RegisterReferenceTools(executor, terminal)

	_, err = executor.ExecuteTool(context.Background(), "start_transaction", toolexec.Bag{"currency": "USD"})
	require.NoError(t, err)

	_, err = executor.ExecuteTool(context.Background(), "add_item", toolexec.Bag{"productId": "COFFEE.SMALL", "quantity": 2})
	require.NoError(t, err)

	result, err := executor.ExecuteTool(context.Background(), "pay", toolexec.Bag{"amount": "7.00"})
	require.NoError(t, err)

	envelope, ok := result.(*client.Envelope)
	require.True(t, ok)
	require.True(t, envelope.Success, envelope.Errors)
	require.Equal(t, kernel.StateEndOfTransaction, envelope.Transaction.State)
	require.True(t, envelope.Transaction.Total.Equal(envelope.Transaction.Tendered))
}

func TestTerminal_AddItem_RejectsUnknownProduct(t *testing.T) {
	engine, err := kernel.NewEngine(kernel.DefaultPaymentRules{})
	require.NoError(t, err)

	kc := client.New(engine)
	catalog := &fakeCatalog{products: map[string]storeext.ProductInfo{}}
	terminal, err := client.NewTerminal(kc, newTestExtension(t, catalog), "TERM1", "OP1")
	require.NoError(t, err)

	started := terminal.StartTransaction("USD")
	require.True(t, started.Success)

	result := terminal.AddItem(context.Background(), "NO_SUCH_SKU", 1)
	require.False(t, result.Success)
}

func TestTerminal_AddItemWithModifiers_PricesSurchargeAsChildLine(t *testing.T) {
	engine, err := kernel.NewEngine(kernel.DefaultPaymentRules{})
	require.NoError(t, err)

	kc := client.New(engine)
	catalog := &fakeCatalog{products: map[string]storeext.ProductInfo{
		"COFFEE.SMALL": {SKU: "COFFEE.SMALL", Name: "Small Coffee", BasePrice: decimal.NewFromFloat(3.50), IsActive: true},
	}}
	graph := modifiers.Graph{
		Modifiers: map[string]modifiers.Modifier{
			"extra_shot": {ID: "EXTRA_SHOT", Name: "Extra Shot", GroupCode: "EXTRAS", AdjustmentKind: modifiers.Surcharge, Value: decimal.NewFromFloat(0.75)},
		},
		Groups:        map[string]modifiers.Group{"extras": {Code: "EXTRAS"}},
		Applicability: map[string]map[string]bool{"coffee.small": {"extra_shot": true}},
	}
	extension, err := storeext.NewExtension(catalog, modifiers.NewEngine(graph), currency.DefaultFormatter{})
	require.NoError(t, err)

	terminal, err := client.NewTerminal(kc, extension, "TERM1", "OP1")
	require.NoError(t, err)

	started := terminal.StartTransaction("USD")
	require.True(t, started.Success)

	result := terminal.AddItemWithModifiers(context.Background(), "COFFEE.SMALL", 1, []storeext.ModifierSelection{
		{ModifierId: "EXTRA_SHOT"},
	})
	require.True(t, result.Success, result.Errors)
	require.Len(t, result.Transaction.Lines, 2)
	modifierLine := result.Transaction.Lines[1]
	require.NotNil(t, modifierLine.ParentLineItemId)
	require.True(t, modifierLine.Extended.Equal(moneyFromFloatForTest(0.75, "USD")))
}

func moneyFromFloatForTest(amount float64, currency string) money.Money {
	return money.New(decimal.NewFromFloat(amount), currency)
}
