/*
terminal.go - Single-session terminal state for the reference tool catalog

PURPOSE:
  spec.md §6's reference tool catalog (start_transaction, add_item, pay,
  show) takes no sessionId/txId parameters - it assumes one active
  session and transaction, the way a single physical register does.
  Terminal holds that ambient state so toolexec handlers stay thin
  bridges, never touching pricing or totals themselves (spec.md §4.6).

GROUNDED ON:
  cmd/server/main.go's single-process, single-store wiring: one set of
  long-lived collaborators held for the process's lifetime, not
  per-request state.
*/
package client

import (
	"context"

	"github.com/posware/kernel/storeext"
	"github.com/shopspring/decimal"
)

// Terminal pairs a KernelClient with a store extension and tracks the
// currently open session/transaction for the reference tool catalog.
type Terminal struct {
	kc        *KernelClient
	extension storeext.StoreExtension

	sessionID string
	txID      string
}

// NewTerminal opens a fresh session immediately, the way a register
// session begins when an operator logs in.
func NewTerminal(kc *KernelClient, extension storeext.StoreExtension, terminalId, operatorId string) (*Terminal, error) {
	sessionID, err := kc.CreateSession(terminalId, operatorId)
	if err != nil {
		return nil, err
	}
	return &Terminal{kc: kc, extension: extension, sessionID: sessionID}, nil
}

// StartTransaction opens a new transaction on this terminal's session.
func (t *Terminal) StartTransaction(currency string) *Envelope {
	result := t.kc.StartTransaction(t.sessionID, currency)
	if result.Success {
		t.txID = string(result.Transaction.ID)
	}
	return result
}

// AddItem resolves productId through the catalog - the handler never
// invents a price - and appends a line at the catalog's effective price.
func (t *Terminal) AddItem(ctx context.Context, productId string, quantity int) *Envelope {
	return t.AddItemWithModifiers(ctx, productId, quantity, nil)
}

// AddItemWithModifiers adds productId at its catalog price, then - if any
// modifier selections are supplied - validates and prices them through the
// store extension's Modifier Rule Engine (spec.md §4.3) and appends their
// combined surcharge as one child line parented to the item, mirroring the
// parent/child line hierarchy of spec.md §4.2. No child line is added when
// the combined surcharge is zero (e.g. only free modifiers). Rejected modifier
// selections fail the whole call: no line is left half-priced.
func (t *Terminal) AddItemWithModifiers(ctx context.Context, productId string, quantity int, selections []storeext.ModifierSelection) *Envelope {
	if t.txID == "" {
		return &Envelope{Success: false, Errors: []string{"client: no open transaction; call start_transaction first"}}
	}

	validation, err := t.extension.Catalog().ValidateProduct(ctx, productId)
	if err != nil {
		return &Envelope{Success: false, Errors: []string{err.Error()}}
	}
	if !validation.IsValid {
		return &Envelope{Success: false, Errors: []string{validation.ErrorMessage}}
	}

	var modCheck storeext.ModifierValidation
	if len(selections) > 0 {
		modCheck, err = t.extension.Modifications().ValidateModifications(ctx, productId, selections)
		if err != nil {
			return &Envelope{Success: false, Errors: []string{err.Error()}}
		}
		if !modCheck.IsValid {
			return &Envelope{Success: false, Errors: []string{modCheck.ErrorMessage}}
		}
	}

	currency := t.currencyOf()
	unitPrice := moneyFromDecimal(validation.EffectivePrice, currency)
	productName := ""
	if validation.Product != nil {
		productName = validation.Product.Name
	}

	itemResult := t.kc.AddLineItem(t.sessionID, t.txID, productId, quantity, unitPrice, productName, "", nil)
	if !itemResult.Success || len(selections) == 0 || modCheck.TotalExtraPrice.IsZero() {
		return itemResult
	}

	parentId := lastLineId(itemResult)
	modifierPrice := moneyFromDecimal(modCheck.TotalExtraPrice, currency)
	return t.kc.AddLineItem(t.sessionID, t.txID, "MODIFIERS", quantity, modifierPrice, "Modifiers", "", &parentId)
}

// lastLineId returns the line item id of the most recently appended line,
// used to parent a modifier surcharge line to the item it decorates.
func lastLineId(envelope *Envelope) string {
	if envelope.Transaction == nil || len(envelope.Transaction.Lines) == 0 {
		return ""
	}
	return string(envelope.Transaction.Lines[len(envelope.Transaction.Lines)-1].LineItemId)
}

// Pay appends a tender to the open transaction. amount is an
// arbitrary-precision decimal straight from the tool parameter bag - the
// kernel imposes no rounding policy (spec.md §4.2), so no float64 round
// trip happens on this path.
func (t *Terminal) Pay(amount decimal.Decimal, paymentType string) *Envelope {
	if t.txID == "" {
		return &Envelope{Success: false, Errors: []string{"client: no open transaction; call start_transaction first"}}
	}
	return t.kc.ProcessPayment(t.sessionID, t.txID, moneyFromDecimal(amount, t.currencyOf()), paymentType)
}

// Show returns a read-only snapshot of the open transaction.
func (t *Terminal) Show() *Envelope {
	if t.txID == "" {
		return &Envelope{Success: false, Errors: []string{"client: no open transaction"}}
	}
	return t.kc.GetTransaction(t.sessionID, t.txID)
}

// VoidItem voids one line on the open transaction (supplemented tool,
// SPEC_FULL.md §10).
func (t *Terminal) VoidItem(lineItemId, reason string) *Envelope {
	if t.txID == "" {
		return &Envelope{Success: false, Errors: []string{"client: no open transaction"}}
	}
	return t.kc.VoidLineItem(t.sessionID, t.txID, lineItemId, reason)
}

func (t *Terminal) currencyOf() string {
	show := t.Show()
	if show.Success && show.Transaction != nil {
		return show.Transaction.Currency
	}
	return ""
}
