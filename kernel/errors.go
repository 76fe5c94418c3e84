/*
errors.go - Kernel error taxonomy

PURPOSE:
  Centralizes every error the Transaction Engine and Session Manager can
  return, following the error taxonomy by MEANING rather than by type name:
  ConfigurationMissing, InvalidArgument, IllegalState,
  PaymentPolicyViolation, and FinancialIntegrityViolation.

PROPAGATION:
  FinancialIntegrityViolation is never returned as an ordinary error - it
  panics. ConfigurationMissing is returned by NewEngine at construction
  time, never from a mutating operation. Every other kind flows back
  through a Result envelope's Errors slice.
*/
package kernel

import (
	"errors"
	"fmt"
)

// Sentinel errors for classification via errors.Is.
var (
	ErrUnknownSession     = errors.New("kernel: unknown session")
	ErrSessionClosed      = errors.New("kernel: session closed")
	ErrUnknownTransaction = errors.New("kernel: unknown transaction")
	ErrUnknownLineItem    = errors.New("kernel: unknown line item")
	ErrTerminalState      = errors.New("kernel: transaction is in a terminal state")
)

// ConfigurationMissingError signals a required collaborator was never
// wired. It is always raised at construction or first use, never masked.
type ConfigurationMissingError struct {
	Field string
}

func (e *ConfigurationMissingError) Error() string {
	return fmt.Sprintf("kernel: configuration missing: %s", e.Field)
}

// InvalidArgumentError names the offending field per spec.md's "short,
// specific message naming the offending field" requirement.
type InvalidArgumentError struct {
	Field  string
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("kernel: invalid argument %q: %s", e.Field, e.Reason)
}

// IllegalStateError names the operation attempted and the state it was
// attempted in.
type IllegalStateError struct {
	Operation string
	State     TransactionState
}

func (e *IllegalStateError) Error() string {
	return fmt.Sprintf("kernel: illegal state for %s: transaction is %s", e.Operation, e.State)
}

func (e *IllegalStateError) Unwrap() error { return ErrTerminalState }

// PaymentPolicyViolationError covers unknown tenders and disallowed
// overpayment, including overpayment on an exact-required tender type. An
// underpayment on an exact-required tender is not rejected: it is accepted
// as a partial tender like any other.
type PaymentPolicyViolationError struct {
	Reason string
}

func (e *PaymentPolicyViolationError) Error() string {
	return fmt.Sprintf("kernel: payment policy violation: %s", e.Reason)
}

// FinancialIntegrityViolationError is fatal: it indicates the engine's own
// invariants (spec.md §3) were broken after a recalculation. It is only
// ever surfaced via panic(&FinancialIntegrityViolationError{...}).
type FinancialIntegrityViolationError struct {
	Invariant string
	Detail    string
}

func (e *FinancialIntegrityViolationError) Error() string {
	return fmt.Sprintf("kernel: FATAL financial integrity violation (%s): %s", e.Invariant, e.Detail)
}

// IsConfigurationMissing reports whether err is a ConfigurationMissingError.
func IsConfigurationMissing(err error) bool {
	var e *ConfigurationMissingError
	return errors.As(err, &e)
}

// IsInvalidArgument reports whether err is an InvalidArgumentError.
func IsInvalidArgument(err error) bool {
	var e *InvalidArgumentError
	return errors.As(err, &e)
}

// IsIllegalState reports whether err is an IllegalStateError.
func IsIllegalState(err error) bool {
	var e *IllegalStateError
	return errors.As(err, &e)
}

// IsPaymentPolicyViolation reports whether err is a
// PaymentPolicyViolationError.
func IsPaymentPolicyViolation(err error) bool {
	var e *PaymentPolicyViolationError
	return errors.As(err, &e)
}
