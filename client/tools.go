/*
tools.go - Reference tool catalog (spec.md §6)

PURPOSE:
  Registers start_transaction, add_item, pay, show, and the supplemented
  void_item/get_transaction tools (SPEC_FULL.md §10) on a toolexec.Executor,
  each a thin handler delegating straight to a Terminal. No handler here
  computes a price or a total - every number comes from the catalog or
  the engine.
*/
package client

import (
	"context"

	"github.com/posware/kernel/toolexec"
)

// RegisterReferenceTools wires the reference tool catalog onto executor,
// bridging every tool to terminal.
func RegisterReferenceTools(executor *toolexec.Executor, terminal *Terminal) {
	executor.Register(toolexec.Definition{
		Name:        "start_transaction",
		Category:    "transaction",
		Description: "Begins a new transaction in the given currency.",
		Parameters: []toolexec.Parameter{
			{Name: "currency", Type: toolexec.ParamString, Required: true, Description: "ISO-4217 currency code"},
		},
	}, func(ctx context.Context, params toolexec.NormalizedBag) (any, error) {
		return terminal.StartTransaction(params.String("currency")), nil
	})

	executor.Register(toolexec.Definition{
		Name:        "add_item",
		Category:    "transaction",
		Description: "Adds an item to the open transaction at the catalog's effective price.",
		Parameters: []toolexec.Parameter{
			{Name: "productId", Type: toolexec.ParamString, Required: true},
			{Name: "quantity", Type: toolexec.ParamInt, Required: true},
		},
	}, func(ctx context.Context, params toolexec.NormalizedBag) (any, error) {
		return terminal.AddItem(ctx, params.String("productId"), params.Int("quantity")), nil
	})

	executor.Register(toolexec.Definition{
		Name:        "pay",
		Category:    "transaction",
		Description: "Tenders a payment against the open transaction.",
		Parameters: []toolexec.Parameter{
			{Name: "amount", Type: toolexec.ParamDecimal, Required: true},
		},
	}, func(ctx context.Context, params toolexec.NormalizedBag) (any, error) {
		return terminal.Pay(params.Decimal("amount"), "cash"), nil
	})

	executor.Register(toolexec.Definition{
		Name:        "show",
		Category:    "transaction",
		Description: "Returns a read-only snapshot of the open transaction.",
	}, func(ctx context.Context, params toolexec.NormalizedBag) (any, error) {
		return terminal.Show(), nil
	})

	executor.Register(toolexec.Definition{
		Name:        "void_item",
		Category:    "transaction",
		Description: "Voids one line item (and its descendants) on the open transaction.",
		Parameters: []toolexec.Parameter{
			{Name: "lineItemId", Type: toolexec.ParamString, Required: true},
			{Name: "reason", Type: toolexec.ParamString, Required: false},
		},
	}, func(ctx context.Context, params toolexec.NormalizedBag) (any, error) {
		return terminal.VoidItem(params.String("lineItemId"), params.String("reason")), nil
	})

	executor.Register(toolexec.Definition{
		Name:        "get_transaction",
		Category:    "transaction",
		Description: "Returns a read-only snapshot of the open transaction (alias of show).",
	}, func(ctx context.Context, params toolexec.NormalizedBag) (any, error) {
		return terminal.Show(), nil
	})
}
