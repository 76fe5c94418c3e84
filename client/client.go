/*
client.go - Kernel Client

PURPOSE:
  The transport-neutral bridge described in spec.md §6. A direct
  in-process call is the reference binding: KernelClient is just a thin
  façade over kernel.Engine, adapting kernel.Result into the exact
  envelope shape described in §6 (success, transaction, errors,
  warnings) and converting kernel's opaque id types to and from plain
  strings for callers (e.g. toolexec handlers) that don't import kernel
  directly.

GROUNDED ON:
  api/handlers.go's Handler struct: one façade type wrapping the real
  collaborators (there: sqlite.Store + factory.PolicyFactory; here:
  kernel.Engine), exposing one method per Kernel Client operation.
*/
package client

import (
	"github.com/posware/kernel/kernel"
	"github.com/posware/kernel/money"
)

// Envelope is the Kernel Client's result shape (spec.md §6).
type Envelope struct {
	Success     bool
	Transaction *kernel.Transaction
	Errors      []string
	Warnings    []string
}

func fromResult(r *kernel.Result) *Envelope {
	return &Envelope{Success: r.Success, Transaction: r.Transaction, Errors: r.Errors, Warnings: r.Warnings}
}

// KernelClient is the single-call bridge between a tool handler (or any
// other caller) and the Transaction Engine.
type KernelClient struct {
	engine *kernel.Engine
}

// New wraps an already-constructed engine.
func New(engine *kernel.Engine) *KernelClient {
	return &KernelClient{engine: engine}
}

func (c *KernelClient) CreateSession(terminalId, operatorId string) (string, error) {
	id, err := c.engine.Sessions.CreateSession(terminalId, operatorId)
	if err != nil {
		return "", err
	}
	return string(id), nil
}

func (c *KernelClient) CloseSession(sessionId string) error {
	return c.engine.Sessions.CloseSession(kernel.SessionId(sessionId))
}

func (c *KernelClient) StartTransaction(sessionId, currency string) *Envelope {
	return fromResult(c.engine.StartTransaction(kernel.SessionId(sessionId), currency))
}

func (c *KernelClient) AddLineItem(
	sessionId, txId, productId string,
	quantity int,
	unitPrice money.Money,
	productName, productDescription string,
	parentLineItemId *string,
) *Envelope {
	var parent *kernel.LineItemId
	if parentLineItemId != nil {
		id := kernel.LineItemId(*parentLineItemId)
		parent = &id
	}
	return fromResult(c.engine.AddLineItem(
		kernel.SessionId(sessionId), kernel.TransactionId(txId), kernel.ProductId(productId),
		quantity, unitPrice, productName, productDescription, parent,
	))
}

func (c *KernelClient) ProcessPayment(sessionId, txId string, amount money.Money, paymentType string) *Envelope {
	return fromResult(c.engine.ProcessPayment(kernel.SessionId(sessionId), kernel.TransactionId(txId), amount, paymentType))
}

func (c *KernelClient) VoidLineItem(sessionId, txId, lineItemId, reason string) *Envelope {
	return fromResult(c.engine.VoidLineItem(kernel.SessionId(sessionId), kernel.TransactionId(txId), kernel.LineItemId(lineItemId), reason))
}

func (c *KernelClient) VoidTransaction(sessionId, txId, reason string) *Envelope {
	return fromResult(c.engine.VoidTransaction(kernel.SessionId(sessionId), kernel.TransactionId(txId), reason))
}

func (c *KernelClient) GetTransaction(sessionId, txId string) *Envelope {
	return fromResult(c.engine.GetTransaction(kernel.SessionId(sessionId), kernel.TransactionId(txId)))
}
