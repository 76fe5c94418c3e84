package kernel_test

import (
	"testing"

	"github.com/posware/kernel/kernel"
	"github.com/posware/kernel/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *kernel.Engine {
	t.Helper()
	e, err := kernel.NewEngine(kernel.DefaultPaymentRules{})
	require.NoError(t, err)
	return e
}

func mustStartSessionAndTx(t *testing.T, e *kernel.Engine, currency string) (kernel.SessionId, kernel.TransactionId) {
	t.Helper()
	sessionId, err := e.Sessions.CreateSession("TERM1", "OP1")
	require.NoError(t, err)

	startResult := e.StartTransaction(sessionId, currency)
	require.True(t, startResult.Success, startResult.Errors)
	return sessionId, startResult.Transaction.ID
}

// S1 - Basic lifecycle.
func TestEngine_S1_BasicLifecycle(t *testing.T) {
	e := newTestEngine(t)
	sessionId, txId := mustStartSessionAndTx(t, e, "USD")

	// WHEN two coffees at 3.50 are added and paid for exactly in cash
	addResult := e.AddLineItem(sessionId, txId, "COFFEE.SMALL", 2, money.NewFromFloat(3.50, "USD"), "Small Coffee", "", nil)
	require.True(t, addResult.Success, addResult.Errors)

	payResult := e.ProcessPayment(sessionId, txId, money.NewFromFloat(7.00, "USD"), "cash")
	require.True(t, payResult.Success, payResult.Errors)

	// THEN the transaction is closed out at exactly 7.00 with no change line
	tx := payResult.Transaction
	require.Equal(t, kernel.StateEndOfTransaction, tx.State)
	require.True(t, tx.Total.Equal(money.NewFromFloat(7.00, "USD")))
	require.True(t, tx.Tendered.Equal(money.NewFromFloat(7.00, "USD")))
	require.True(t, tx.ChangeDue.IsZero())
	require.Len(t, tx.Lines, 2)
	require.Equal(t, kernel.LineItem, tx.Lines[0].LineType)
	require.Equal(t, kernel.LineTender, tx.Lines[1].LineType)
}

// S2 - Over-tender with cash.
func TestEngine_S2_OverTenderWithCash(t *testing.T) {
	e := newTestEngine(t)
	sessionId, txId := mustStartSessionAndTx(t, e, "USD")

	addResult := e.AddLineItem(sessionId, txId, "SKU1", 1, money.NewFromFloat(8.00, "USD"), "", "", nil)
	require.True(t, addResult.Success, addResult.Errors)

	payResult := e.ProcessPayment(sessionId, txId, money.NewFromFloat(10.00, "USD"), "cash")
	require.True(t, payResult.Success, payResult.Errors)

	tx := payResult.Transaction
	require.Equal(t, kernel.StateEndOfTransaction, tx.State)
	require.True(t, tx.Tendered.Equal(money.NewFromFloat(10.00, "USD")))
	require.True(t, tx.ChangeDue.Equal(money.NewFromFloat(2.00, "USD")))

	var tenderCount, changeCount int
	for _, l := range tx.Lines {
		switch l.LineType {
		case kernel.LineTender:
			tenderCount++
		case kernel.LineChange:
			changeCount++
		}
	}
	require.Equal(t, 1, tenderCount)
	require.Equal(t, 1, changeCount)
}

// S3 - Partial tenders.
func TestEngine_S3_PartialTenders(t *testing.T) {
	e := newTestEngine(t)
	sessionId, txId := mustStartSessionAndTx(t, e, "USD")

	addResult := e.AddLineItem(sessionId, txId, "SKU1", 1, money.NewFromFloat(5.00, "USD"), "", "", nil)
	require.True(t, addResult.Success, addResult.Errors)

	first := e.ProcessPayment(sessionId, txId, money.NewFromFloat(2.00, "USD"), "cash")
	require.True(t, first.Success, first.Errors)
	require.Equal(t, kernel.StateItemsPending, first.Transaction.State)
	require.True(t, first.Transaction.Tendered.Equal(money.NewFromFloat(2.00, "USD")))

	second := e.ProcessPayment(sessionId, txId, money.NewFromFloat(3.00, "USD"), "cash")
	require.True(t, second.Success, second.Errors)
	require.Equal(t, kernel.StateEndOfTransaction, second.Transaction.State)
	require.True(t, second.Transaction.Tendered.Equal(money.NewFromFloat(5.00, "USD")))
	require.True(t, second.Transaction.ChangeDue.IsZero())

	third := e.ProcessPayment(sessionId, txId, money.NewFromFloat(1.00, "USD"), "cash")
	require.False(t, third.Success)
}

// S4 - Modifier cascade void.
func TestEngine_S4_ModifierCascadeVoid(t *testing.T) {
	e := newTestEngine(t)
	sessionId, txId := mustStartSessionAndTx(t, e, "USD")

	parentResult := e.AddLineItem(sessionId, txId, "DRINK", 1, money.NewFromFloat(5.00, "USD"), "", "", nil)
	require.True(t, parentResult.Success, parentResult.Errors)
	parentId := parentResult.Transaction.Lines[0].LineItemId

	icedResult := e.AddLineItem(sessionId, txId, "MOD_ICED", 1, money.NewFromFloat(0.10, "USD"), "", "", &parentId)
	require.True(t, icedResult.Success, icedResult.Errors)

	sugarResult := e.AddLineItem(sessionId, txId, "MOD_LESS_SUGAR", 1, money.NewFromFloat(0.00, "USD"), "", "", &parentId)
	require.True(t, sugarResult.Success, sugarResult.Errors)

	require.True(t, sugarResult.Transaction.Total.Equal(money.NewFromFloat(5.10, "USD")))

	voidResult := e.VoidLineItem(sessionId, txId, parentId, "customer changed mind")
	require.True(t, voidResult.Success, voidResult.Errors)

	tx := voidResult.Transaction
	require.True(t, tx.Total.IsZero())
	for _, l := range tx.Lines {
		require.True(t, l.IsVoided)
	}
}

// S5 - Non-cash overpay rejected.
func TestEngine_S5_NonCashOverpayRejected(t *testing.T) {
	e := newTestEngine(t)

	// exact card payment succeeds
	sessionId, txId := mustStartSessionAndTx(t, e, "USD")
	add := e.AddLineItem(sessionId, txId, "SKU1", 1, money.NewFromFloat(5.00, "USD"), "", "", nil)
	require.True(t, add.Success, add.Errors)
	exact := e.ProcessPayment(sessionId, txId, money.NewFromFloat(5.00, "USD"), "card")
	require.True(t, exact.Success, exact.Errors)
	require.Equal(t, kernel.StateEndOfTransaction, exact.Transaction.State)

	// overpay by card is rejected
	_, txId2 := mustStartSessionAndTx(t, e, "USD")
	add2 := e.AddLineItem(sessionId, txId2, "SKU1", 1, money.NewFromFloat(5.00, "USD"), "", "", nil)
	require.True(t, add2.Success, add2.Errors)

	overpay := e.ProcessPayment(sessionId, txId2, money.NewFromFloat(10.00, "USD"), "card")
	require.False(t, overpay.Success)

	get := e.GetTransaction(sessionId, txId2)
	require.True(t, get.Success)
	require.Equal(t, kernel.StateItemsPending, get.Transaction.State)
	for _, l := range get.Transaction.Lines {
		require.NotEqual(t, kernel.LineTender, l.LineType)
	}
}

func TestEngine_VoidTransaction_IsIdempotent(t *testing.T) {
	e := newTestEngine(t)
	sessionId, txId := mustStartSessionAndTx(t, e, "USD")
	add := e.AddLineItem(sessionId, txId, "SKU1", 1, money.NewFromFloat(5.00, "USD"), "", "", nil)
	require.True(t, add.Success, add.Errors)

	first := e.VoidTransaction(sessionId, txId, "cancelled")
	require.True(t, first.Success)
	require.Equal(t, kernel.StateVoided, first.Transaction.State)

	second := e.VoidTransaction(sessionId, txId, "cancelled again")
	require.True(t, second.Success)
	require.Equal(t, kernel.StateVoided, second.Transaction.State)
}

func TestEngine_AddLineItem_RejectsNonPositiveQuantity(t *testing.T) {
	e := newTestEngine(t)
	sessionId, txId := mustStartSessionAndTx(t, e, "USD")

	result := e.AddLineItem(sessionId, txId, "SKU1", 0, money.NewFromFloat(1.00, "USD"), "", "", nil)
	require.False(t, result.Success)
}

func TestEngine_Session_UnknownOrClosedFailsStartTransaction(t *testing.T) {
	e := newTestEngine(t)

	result := e.StartTransaction("no-such-session", "USD")
	require.False(t, result.Success)

	sessionId, err := e.Sessions.CreateSession("TERM1", "OP1")
	require.NoError(t, err)
	require.NoError(t, e.Sessions.CloseSession(sessionId))

	closedResult := e.StartTransaction(sessionId, "USD")
	require.False(t, closedResult.Success)
}

func TestMoney_ArithmeticUsesExactDecimals(t *testing.T) {
	a := money.New(decimal.NewFromFloat(0.1), "USD")
	b := money.New(decimal.NewFromFloat(0.2), "USD")
	sum, err := a.Add(b)
	require.NoError(t, err)
	require.True(t, sum.Equal(money.NewFromFloat(0.3, "USD")))
}
