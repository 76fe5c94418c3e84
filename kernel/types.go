/*
types.go - Core value types: ids, Session, Transaction, TransactionLine

KEY CONCEPTS:
  SessionId / TransactionId / LineItemId / ProductId are opaque string
  wrappers, minted by uuid.New() at creation time, never guessed or
  parsed by callers.

LINE HIERARCHY:
  A TransactionLine's LineItemId is stable for the line's whole life.
  LineNumber is the 1-based position at recalculation time and MAY shift
  after a void; it is never used as identity (spec.md §3, §8 property 5).
*/
package kernel

import (
	"time"

	"github.com/google/uuid"
	"github.com/posware/kernel/money"
)

// SessionId opaquely identifies an operator session.
type SessionId string

// TransactionId opaquely identifies a transaction.
type TransactionId string

// LineItemId opaquely identifies a transaction line, stable across voids.
type LineItemId string

// ProductId opaquely identifies a catalog product.
type ProductId string

func newSessionId() SessionId         { return SessionId(uuid.New().String()) }
func newTransactionId() TransactionId { return TransactionId(uuid.New().String()) }
func newLineItemId() LineItemId       { return LineItemId(uuid.New().String()) }

// Session is an operator session for a (terminalId, operatorId) pair,
// keyed by its own ID.
type Session struct {
	ID         SessionId
	TerminalID string
	OperatorID string
	CreatedUtc time.Time
	Closed     bool
}

// TransactionState is the Transaction Engine's state machine.
type TransactionState string

const (
	StateStartTransaction TransactionState = "StartTransaction"
	StateItemsPending     TransactionState = "ItemsPending"
	StateEndOfTransaction TransactionState = "EndOfTransaction"
	StateVoided           TransactionState = "Voided"
)

// IsTerminal reports whether no further mutation is accepted.
func (s TransactionState) IsTerminal() bool {
	return s == StateEndOfTransaction || s == StateVoided
}

// LineType distinguishes merchandise lines from payment/change lines.
type LineType string

const (
	LineItem   LineType = "Item"
	LineTender LineType = "Tender"
	LineChange LineType = "Change"
)

// TransactionLine is one append-only row in a transaction. Only
// LineNumber, IsVoided, and VoidReason ever change after creation.
type TransactionLine struct {
	LineItemId         LineItemId
	LineNumber         int
	ParentLineItemId   *LineItemId
	ProductId          ProductId
	ProductName        string
	ProductDescription string
	Quantity           int
	UnitPrice          money.Money
	Extended           money.Money
	LineType           LineType
	TenderType         string
	IsVoided           bool
	VoidReason         string
	DisplayIndentLevel int
	Metadata           map[string]string
}

// Transaction is the engine's authoritative record of one sale.
type Transaction struct {
	ID         TransactionId
	SessionID  SessionId
	State      TransactionState
	Currency   string
	Lines      []TransactionLine
	Total      money.Money
	Tendered   money.Money
	ChangeDue  money.Money
	BalanceDue money.Money
}

// Snapshot returns a deep-enough copy safe for a caller to retain without
// observing subsequent mutation (Lines is copied; nested Money/pointer
// leaf values are immutable by convention).
func (t *Transaction) Snapshot() Transaction {
	cp := *t
	cp.Lines = make([]TransactionLine, len(t.Lines))
	copy(cp.Lines, t.Lines)
	return cp
}

// Result is the uniform result envelope every transaction operation of
// the Engine returns (spec.md §6).
type Result struct {
	Success     bool
	Transaction *Transaction
	Errors      []string
	Warnings    []string
}

func failure(errs ...string) *Result {
	return &Result{Success: false, Errors: errs}
}

func success(tx *Transaction, warnings ...string) *Result {
	return &Result{Success: true, Transaction: tx, Warnings: warnings}
}
