/*
contract.go - Store Extension contract

PURPOSE:
  Declares the three services a store extension must supply: a product
  catalog, a modifier service, and a currency formatter. The kernel never
  synthesizes product data, modifier rules, or display formatting - all of
  it is delegated here (spec.md §1 Non-goals, §4.3).

GROUNDED ON:
  generic/store.go's Store/EntityStore/TxStore interface-composition
  style: small single-purpose interfaces composed into one contract type.
*/
package storeext

import (
	"context"

	"github.com/shopspring/decimal"
)

// ProductInfo is returned by the catalog. The kernel never invents one.
type ProductInfo struct {
	SKU         string
	Name        string
	Description string
	Category    string
	BasePrice   decimal.Decimal
	IsActive    bool
}

// ProductValidation is the catalog's verdict on a product id.
type ProductValidation struct {
	IsValid       bool
	Product       *ProductInfo
	EffectivePrice decimal.Decimal
	ErrorMessage  string
}

// Catalog resolves and searches products. Pricing flows only through
// here - the kernel and its tool handlers must never invent a price.
type Catalog interface {
	ValidateProduct(ctx context.Context, productId string) (ProductValidation, error)
	SearchProducts(ctx context.Context, term string, maxResults int) ([]ProductInfo, error)
	GetPopularItems(ctx context.Context) ([]ProductInfo, error)
}

// ModifierSelection is one caller-supplied modifier choice for a product.
type ModifierSelection struct {
	ModifierId string
	GroupCode  string // optional; must match the modifier's stored group
	Quantity   int
}

// ModifierValidation is the Modifier Rule Engine's verdict on a selection
// set (spec.md §4.3's 8-step algorithm).
type ModifierValidation struct {
	IsValid        bool
	TotalExtraPrice decimal.Decimal
	ErrorMessage   string
}

// ModifierService validates and prices modifier selections.
type ModifierService interface {
	ValidateModifications(ctx context.Context, productId string, selections []ModifierSelection) (ModifierValidation, error)
	CalculateModificationTotal(ctx context.Context, selections []ModifierSelection) (decimal.Decimal, error)
}

// CurrencyFormatter owns all locale/culture-specific display logic. The
// kernel never touches user-facing text (spec.md §9).
type CurrencyFormatter interface {
	FormatCurrency(amount decimal.Decimal, currency, culture string) (string, error)
	GetCurrencySymbol(currency string) (string, error)
	GetDecimalPlaces(currency string) (int, error)
}

// StoreExtension composes the three services a store supplies.
type StoreExtension interface {
	Catalog() Catalog
	Modifications() ModifierService
	CurrencyFormatter() CurrencyFormatter
}

// Extension is the straightforward StoreExtension implementation: three
// held collaborators, assembled at store activation time.
type Extension struct {
	catalog    Catalog
	modifiers  ModifierService
	formatter  CurrencyFormatter
}

// NewExtension requires all three collaborators: a missing one is a
// construction-time failure (spec.md §9's nullable-injection redesign
// note), not a nil-check scattered through call sites.
func NewExtension(catalog Catalog, modifiers ModifierService, formatter CurrencyFormatter) (*Extension, error) {
	if catalog == nil {
		return nil, &ConfigurationMissingError{Field: "Catalog"}
	}
	if modifiers == nil {
		return nil, &ConfigurationMissingError{Field: "ModifierService"}
	}
	if formatter == nil {
		return nil, &ConfigurationMissingError{Field: "CurrencyFormatter"}
	}
	return &Extension{catalog: catalog, modifiers: modifiers, formatter: formatter}, nil
}

func (e *Extension) Catalog() Catalog                     { return e.catalog }
func (e *Extension) Modifications() ModifierService       { return e.modifiers }
func (e *Extension) CurrencyFormatter() CurrencyFormatter { return e.formatter }
