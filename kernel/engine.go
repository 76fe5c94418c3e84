/*
engine.go - Transaction Engine

PURPOSE:
  Owns every transaction in memory, mutates them only through the
  operations below, and after every mutation recalculates aggregates and
  asserts the invariants in spec.md §3. Integrity violations are fatal:
  they panic, because they indicate a bug in the engine itself, never a
  caller mistake.

GROUNDED ON:
  generic/types.go's Timeline/TimelineEvent append-only sequence plus
  Timeline.BalanceAt/Validate (replay-from-scratch aggregation) for
  recalculate/assertIntegrity; generic/ledger.go's DefaultLedger
  constructor-requires-Store shape for NewEngine's fail-at-construction
  behavior (spec.md §9's nullable-injection redesign note).
*/
package kernel

import (
	"fmt"
	"sync"

	"github.com/posware/kernel/money"
)

// Engine is the Transaction Engine: sessions + transactions + payment
// rules, all held in memory.
type Engine struct {
	Sessions *SessionManager

	rules PaymentRules

	mu     sync.RWMutex
	txs    map[TransactionId]*Transaction
	txLock map[TransactionId]*sync.Mutex
}

// NewEngine constructs a Transaction Engine. rules must not be nil: a
// missing collaborator is a construction-time ConfigurationMissing
// failure, per spec.md §9's "constructor-time required collaborators"
// redesign note, not a runtime nil check at the call site.
func NewEngine(rules PaymentRules) (*Engine, error) {
	if rules == nil {
		return nil, &ConfigurationMissingError{Field: "PaymentRules"}
	}
	return &Engine{
		Sessions: NewSessionManager(),
		rules:    rules,
		txs:      make(map[TransactionId]*Transaction),
		txLock:   make(map[TransactionId]*sync.Mutex),
	}, nil
}

func (e *Engine) lockFor(txId TransactionId) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.txLock[txId]
	if !ok {
		l = &sync.Mutex{}
		e.txLock[txId] = l
	}
	return l
}

func (e *Engine) getTx(txId TransactionId) (*Transaction, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	tx, ok := e.txs[txId]
	if !ok {
		return nil, ErrUnknownTransaction
	}
	return tx, nil
}

// StartTransaction creates a new transaction with currency verbatim (no
// normalization). Fails when currency is blank.
func (e *Engine) StartTransaction(sessionId SessionId, currency string) *Result {
	if err := e.Sessions.ValidateSession(sessionId); err != nil {
		return failure(err.Error())
	}
	if currency == "" {
		return failure((&InvalidArgumentError{Field: "currency", Reason: "must not be blank"}).Error())
	}

	tx := &Transaction{
		ID:         newTransactionId(),
		SessionID:  sessionId,
		State:      StateStartTransaction,
		Currency:   currency,
		Total:      money.Zero(currency),
		Tendered:   money.Zero(currency),
		ChangeDue:  money.Zero(currency),
		BalanceDue: money.Zero(currency),
	}

	e.mu.Lock()
	e.txs[tx.ID] = tx
	e.mu.Unlock()

	snap := tx.Snapshot()
	return success(&snap)
}

// AddLineItem appends an Item line, optionally linked under
// parentLineItemId, and recalculates.
func (e *Engine) AddLineItem(
	sessionId SessionId,
	txId TransactionId,
	productId ProductId,
	quantity int,
	unitPrice money.Money,
	productName, productDescription string,
	parentLineItemId *LineItemId,
) *Result {
	if err := e.Sessions.ValidateSession(sessionId); err != nil {
		return failure(err.Error())
	}
	tx, err := e.getTx(txId)
	if err != nil {
		return failure(err.Error())
	}

	lock := e.lockFor(txId)
	lock.Lock()
	defer lock.Unlock()

	if tx.State.IsTerminal() {
		return failure((&IllegalStateError{Operation: "addLineItem", State: tx.State}).Error())
	}
	if quantity <= 0 {
		return failure((&InvalidArgumentError{Field: "quantity", Reason: "must be positive"}).Error())
	}
	if unitPrice.Amount.IsNegative() {
		return failure((&InvalidArgumentError{Field: "unitPrice", Reason: "must not be negative"}).Error())
	}
	if unitPrice.Currency != tx.Currency {
		return failure((&InvalidArgumentError{Field: "unitPrice.currency", Reason: "must match transaction currency"}).Error())
	}

	indentLevel := 0
	if parentLineItemId != nil {
		parent := findLine(tx, *parentLineItemId)
		if parent == nil {
			return failure((&InvalidArgumentError{Field: "parentLineItemId", Reason: "unknown line item"}).Error())
		}
		if parent.IsVoided {
			return failure((&InvalidArgumentError{Field: "parentLineItemId", Reason: "parent is voided"}).Error())
		}
		indentLevel = parent.DisplayIndentLevel + 1
	}

	extended := unitPrice.Mul(decimalFromInt(quantity))

	line := TransactionLine{
		LineItemId:          newLineItemId(),
		ParentLineItemId:    parentLineItemId,
		ProductId:           productId,
		ProductName:         productName,
		ProductDescription:  productDescription,
		Quantity:            quantity,
		UnitPrice:           unitPrice,
		Extended:            extended,
		LineType:            LineItem,
		DisplayIndentLevel:  indentLevel,
	}

	before := tx.Snapshot()
	tx.Lines = append(tx.Lines, line)
	if tx.State == StateStartTransaction {
		tx.State = StateItemsPending
	}

	if err := e.recalculateAndAssert(tx); err != nil {
		*tx = before
		return failure(err.Error())
	}

	snap := tx.Snapshot()
	return success(&snap)
}

// ProcessPayment appends a Tender line (and a Change line, if permitted
// and due), per spec.md §4.2.
func (e *Engine) ProcessPayment(sessionId SessionId, txId TransactionId, amount money.Money, paymentType string) *Result {
	if err := e.Sessions.ValidateSession(sessionId); err != nil {
		return failure(err.Error())
	}
	tx, err := e.getTx(txId)
	if err != nil {
		return failure(err.Error())
	}

	lock := e.lockFor(txId)
	lock.Lock()
	defer lock.Unlock()

	if tx.State.IsTerminal() {
		return failure((&IllegalStateError{Operation: "processPayment", State: tx.State}).Error())
	}
	if !hasItemLine(tx) {
		return failure((&IllegalStateError{Operation: "processPayment", State: tx.State}).Error())
	}
	if !amount.Amount.IsPositive() {
		return failure((&InvalidArgumentError{Field: "amount", Reason: "must be positive"}).Error())
	}
	if paymentType == "" {
		return failure((&InvalidArgumentError{Field: "paymentType", Reason: "must not be blank"}).Error())
	}

	canonical, ok := e.rules.NormalizeTenderType(paymentType)
	if !ok {
		return failure((&PaymentPolicyViolationError{Reason: fmt.Sprintf("unknown tender %q", paymentType)}).Error())
	}

	before := tx.Snapshot()

	tenderLine := TransactionLine{
		LineItemId: newLineItemId(),
		ProductId:  "",
		Quantity:   1,
		UnitPrice:  amount.Neg(),
		Extended:   amount.Neg(),
		LineType:   LineTender,
		TenderType: canonical,
	}
	tx.Lines = append(tx.Lines, tenderLine)

	if err := e.recalculateAndAssert(tx); err != nil {
		*tx = before
		return failure(err.Error())
	}

	if tx.Tendered.GreaterThanOrEqual(tx.Total) {
		overpay, _ := tx.Tendered.Sub(tx.Total)
		if overpay.IsPositive() {
			if !e.rules.CanIssueChange(canonical) {
				*tx = before
				return failure((&PaymentPolicyViolationError{Reason: fmt.Sprintf("overpayment not allowed for tender %q", canonical)}).Error())
			}
			changeLine := TransactionLine{
				LineItemId: newLineItemId(),
				Quantity:   1,
				UnitPrice:  overpay,
				Extended:   overpay,
				LineType:   LineChange,
			}
			tx.Lines = append(tx.Lines, changeLine)
		}
		tx.State = StateEndOfTransaction
		if err := e.recalculateAndAssert(tx); err != nil {
			*tx = before
			return failure(err.Error())
		}
	}

	snap := tx.Snapshot()
	return success(&snap)
}

// VoidLineItem cascades void over the target and every reachable
// non-voided descendant, atomically.
func (e *Engine) VoidLineItem(sessionId SessionId, txId TransactionId, lineItemId LineItemId, reason string) *Result {
	if err := e.Sessions.ValidateSession(sessionId); err != nil {
		return failure(err.Error())
	}
	tx, err := e.getTx(txId)
	if err != nil {
		return failure(err.Error())
	}

	lock := e.lockFor(txId)
	lock.Lock()
	defer lock.Unlock()

	if tx.State.IsTerminal() {
		return failure((&IllegalStateError{Operation: "voidLineItem", State: tx.State}).Error())
	}

	target := findLine(tx, lineItemId)
	if target == nil {
		return failure((&InvalidArgumentError{Field: "lineItemId", Reason: "unknown line item"}).Error())
	}
	if target.IsVoided {
		return failure((&InvalidArgumentError{Field: "lineItemId", Reason: "already voided"}).Error())
	}

	before := tx.Snapshot()
	voidCascade(tx, lineItemId, reason)

	if err := e.recalculateAndAssert(tx); err != nil {
		*tx = before
		return failure(err.Error())
	}

	snap := tx.Snapshot()
	return success(&snap)
}

// VoidTransaction cascades void over every non-voided root line and then
// forces the transaction terminal, per SPEC_FULL.md §10 (supplemented;
// spec.md §9 Open Question 5 left this undecided). Idempotent: voiding an
// already-Voided transaction is a no-op success.
func (e *Engine) VoidTransaction(sessionId SessionId, txId TransactionId, reason string) *Result {
	if err := e.Sessions.ValidateSession(sessionId); err != nil {
		return failure(err.Error())
	}
	tx, err := e.getTx(txId)
	if err != nil {
		return failure(err.Error())
	}

	lock := e.lockFor(txId)
	lock.Lock()
	defer lock.Unlock()

	if tx.State == StateVoided {
		snap := tx.Snapshot()
		return success(&snap)
	}

	before := tx.Snapshot()
	for _, line := range tx.Lines {
		if line.ParentLineItemId == nil && !line.IsVoided {
			voidCascade(tx, line.LineItemId, reason)
		}
	}
	tx.State = StateVoided

	if err := e.recalculateAndAssert(tx); err != nil {
		*tx = before
		return failure(err.Error())
	}

	snap := tx.Snapshot()
	return success(&snap)
}

// GetTransaction returns a read-only snapshot.
func (e *Engine) GetTransaction(sessionId SessionId, txId TransactionId) *Result {
	if err := e.Sessions.ValidateSession(sessionId); err != nil {
		return failure(err.Error())
	}
	tx, err := e.getTx(txId)
	if err != nil {
		return failure(err.Error())
	}
	snap := tx.Snapshot()
	return success(&snap)
}
