/*
recalc.go - Central recalculation and integrity assertion

PURPOSE:
  recalculate walks non-voided lines once and derives total/tendered/
  changeDue/balanceDue under the sign conventions in spec.md §3.
  assertIntegrity independently re-derives the same sums and panics if
  they disagree or any invariant is violated - a FinancialIntegrityViolation
  is a programmer error, never silently masked (spec.md §4.2, §7).

GROUNDED ON:
  generic/types.go's Timeline.BalanceAt/Validate: both replay the entire
  append-only event sequence from scratch rather than trust incrementally
  maintained running totals.
*/
package kernel

import (
	"github.com/posware/kernel/money"
	"github.com/shopspring/decimal"
)

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

func findLine(tx *Transaction, id LineItemId) *TransactionLine {
	for i := range tx.Lines {
		if tx.Lines[i].LineItemId == id {
			return &tx.Lines[i]
		}
	}
	return nil
}

func hasItemLine(tx *Transaction) bool {
	for _, l := range tx.Lines {
		if l.LineType == LineItem {
			return true
		}
	}
	return false
}

// voidCascade marks id and every line reachable via ParentLineItemId edges
// (breadth-first) as voided, recording reason on each line voided for the
// first time. Re-voiding an already-voided line along the walk is a no-op.
func voidCascade(tx *Transaction, id LineItemId, reason string) {
	queue := []LineItemId{id}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		line := findLine(tx, current)
		if line == nil || line.IsVoided {
			continue
		}
		line.IsVoided = true
		line.VoidReason = reason

		for i := range tx.Lines {
			if tx.Lines[i].ParentLineItemId != nil && *tx.Lines[i].ParentLineItemId == current && !tx.Lines[i].IsVoided {
				queue = append(queue, tx.Lines[i].LineItemId)
			}
		}
	}
}

// recalculateAndAssert runs recalculate then assertIntegrity, panicking on
// any integrity violation per spec.md §7's propagation policy.
func (e *Engine) recalculateAndAssert(tx *Transaction) error {
	if err := recalculate(tx); err != nil {
		return err
	}
	assertIntegrity(tx)
	return nil
}

func recalculate(tx *Transaction) error {
	total := money.Zero(tx.Currency)
	tendered := money.Zero(tx.Currency)
	changeDue := money.Zero(tx.Currency)

	next := 1
	for i := range tx.Lines {
		if tx.Lines[i].IsVoided {
			continue
		}
		tx.Lines[i].LineNumber = next
		next++
	}

	for _, line := range tx.Lines {
		if line.IsVoided {
			continue
		}
		switch line.LineType {
		case LineItem:
			var err error
			total, err = total.Add(line.Extended)
			if err != nil {
				return err
			}
		case LineTender:
			var err error
			tendered, err = tendered.Add(line.Extended.Neg())
			if err != nil {
				return err
			}
		case LineChange:
			var err error
			changeDue, err = changeDue.Add(line.Extended)
			if err != nil {
				return err
			}
		}
	}

	tx.Total = total
	tx.Tendered = tendered
	tx.ChangeDue = changeDue

	balance, err := total.Sub(tendered)
	if err != nil {
		return err
	}
	balance, err = balance.Add(changeDue)
	if err != nil {
		return err
	}
	tx.BalanceDue = balance
	return nil
}

// assertIntegrity independently re-derives every aggregate from the raw
// line slice and checks every invariant in spec.md §3. Any violation
// panics: it indicates corruption in the engine itself.
func assertIntegrity(tx *Transaction) {
	total := money.Zero(tx.Currency)
	tendered := money.Zero(tx.Currency)
	changeDue := money.Zero(tx.Currency)

	byId := make(map[LineItemId]*TransactionLine, len(tx.Lines))
	for i := range tx.Lines {
		byId[tx.Lines[i].LineItemId] = &tx.Lines[i]
	}

	for i := range tx.Lines {
		line := &tx.Lines[i]

		if line.ParentLineItemId != nil {
			parent := byId[*line.ParentLineItemId]
			if parent != nil && !line.IsVoided && !parent.IsVoided && line.DisplayIndentLevel != parent.DisplayIndentLevel+1 {
				panic(&FinancialIntegrityViolationError{
					Invariant: "child-indent",
					Detail:    "child line's displayIndentLevel must equal parent's + 1",
				})
			}
		}

		if line.IsVoided {
			continue
		}

		switch line.LineType {
		case LineItem:
			expected := line.UnitPrice.Mul(decimalFromInt(line.Quantity))
			if !line.Extended.Equal(expected) || line.Extended.Currency != tx.Currency {
				panic(&FinancialIntegrityViolationError{
					Invariant: "item-extended",
					Detail:    "extended must equal unitPrice*quantity in the transaction currency",
				})
			}
			sum, err := total.Add(line.Extended)
			if err != nil {
				panic(&FinancialIntegrityViolationError{Invariant: "currency", Detail: err.Error()})
			}
			total = sum
		case LineTender:
			if !line.Extended.IsNegative() {
				panic(&FinancialIntegrityViolationError{
					Invariant: "tender-sign",
					Detail:    "non-voided Tender line must have negative extended",
				})
			}
			sum, err := tendered.Add(line.Extended.Neg())
			if err != nil {
				panic(&FinancialIntegrityViolationError{Invariant: "currency", Detail: err.Error()})
			}
			tendered = sum
		case LineChange:
			if !line.Extended.IsPositive() {
				panic(&FinancialIntegrityViolationError{
					Invariant: "change-sign",
					Detail:    "non-voided Change line must have positive extended",
				})
			}
			sum, err := changeDue.Add(line.Extended)
			if err != nil {
				panic(&FinancialIntegrityViolationError{Invariant: "currency", Detail: err.Error()})
			}
			changeDue = sum
		}
	}

	if !total.Equal(tx.Total) {
		panic(&FinancialIntegrityViolationError{Invariant: "total", Detail: "transaction.total must equal sum of non-voided Item extended"})
	}
	if !tendered.Equal(tx.Tendered) {
		panic(&FinancialIntegrityViolationError{Invariant: "tendered", Detail: "transaction.tendered must equal sum of negated non-voided Tender extended"})
	}
	if !changeDue.Equal(tx.ChangeDue) {
		panic(&FinancialIntegrityViolationError{Invariant: "changeDue", Detail: "transaction.changeDue must equal sum of non-voided Change extended"})
	}

	overTender, err := tendered.Sub(total)
	if err != nil {
		panic(&FinancialIntegrityViolationError{Invariant: "currency", Detail: err.Error()})
	}
	maxChange := overTender
	if maxChange.IsNegative() {
		maxChange = money.Zero(tx.Currency)
	}
	if changeDue.Amount.GreaterThan(maxChange.Amount) {
		panic(&FinancialIntegrityViolationError{Invariant: "changeDue-bound", Detail: "changeDue must not exceed max(tendered-total,0)"})
	}
	if changeDue.IsPositive() && !tendered.GreaterThanOrEqual(total) {
		panic(&FinancialIntegrityViolationError{Invariant: "changeDue-implies-paid", Detail: "changeDue>0 implies tendered>=total"})
	}

	balance, err := total.Sub(tendered)
	if err == nil {
		balance, err = balance.Add(changeDue)
	}
	if err != nil {
		panic(&FinancialIntegrityViolationError{Invariant: "currency", Detail: err.Error()})
	}
	if !balance.Equal(tx.BalanceDue) {
		panic(&FinancialIntegrityViolationError{Invariant: "balanceDue", Detail: "balanceDue must equal total-tendered+changeDue"})
	}
	if tx.State == StateEndOfTransaction && !tx.BalanceDue.IsZero() {
		panic(&FinancialIntegrityViolationError{Invariant: "balanceDue-zero-at-eot", Detail: "balanceDue must be zero at EndOfTransaction"})
	}
}
