/*
payment_rules.go - Pluggable tender normalization and change policy

GROUNDED ON:
  generic/policy.go's declarative, data-driven Policy/Constraints style:
  pure functions consulting a struct of flags, never a hardcoded switch
  over specific tender literals.
*/
package kernel

import "strings"

// PaymentRules is the pluggable policy consulted by processPayment.
type PaymentRules interface {
	// NormalizeTenderType returns the canonical form of raw, or ("", false)
	// when raw is not acceptable input.
	NormalizeTenderType(raw string) (canonical string, ok bool)
	// CanIssueChange reports whether an overpay on this canonical tender
	// may be returned as a Change line.
	CanIssueChange(canonical string) bool
}

// DefaultPaymentRules is spec.md §4.4's default policy: any non-blank
// trimmed string is an acceptable canonical tender, and only "cash"
// (case-insensitive) permits change.
type DefaultPaymentRules struct{}

func (DefaultPaymentRules) NormalizeTenderType(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}
	return trimmed, true
}

func (DefaultPaymentRules) CanIssueChange(canonical string) bool {
	return strings.EqualFold(canonical, "cash")
}

// TenderTypePaymentRules is driven by a store's configured
// PaymentTenderType flags (allowsChange, requiresExact) rather than a
// hardcoded "cash" literal.
type TenderTypePaymentRules struct {
	// Lookup resolves a canonical tender id to its configured flags. A
	// missing id is treated as unknown input by NormalizeTenderType.
	Lookup func(canonical string) (allowsChange, requiresExact bool, known bool)
}

func (r TenderTypePaymentRules) NormalizeTenderType(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", false
	}
	if r.Lookup == nil {
		return trimmed, true
	}
	_, _, known := r.Lookup(trimmed)
	if !known {
		return "", false
	}
	return trimmed, true
}

// CanIssueChange resolves Open Question 4 (spec.md §9): requiresExact
// takes precedence over allowsChange when both are configured true, since
// "requires exact" is the stronger, more specific constraint.
func (r TenderTypePaymentRules) CanIssueChange(canonical string) bool {
	if r.Lookup == nil {
		return false
	}
	allowsChange, requiresExact, known := r.Lookup(canonical)
	if !known {
		return false
	}
	if requiresExact {
		return false
	}
	return allowsChange
}
