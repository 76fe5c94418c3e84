package modifiers

import (
	"errors"
	"fmt"
)

var ErrUnknownModifier = errors.New("modifiers: unknown modifier")

// RuleViolationError covers every ModifierRuleViolation outcome in
// spec.md §7: unknown, non-applicable, incompatible,
// duplicate-in-single-select, missing-required.
type RuleViolationError struct {
	Reason string
}

func (e *RuleViolationError) Error() string {
	return fmt.Sprintf("modifiers: %s", e.Reason)
}

func unknownModifier(id string) error {
	return &RuleViolationError{Reason: fmt.Sprintf("modifier %q is not known", id)}
}

func notApplicable(modifierId, productId string) error {
	return &RuleViolationError{Reason: fmt.Sprintf("modifier %q is not applicable to product %q", modifierId, productId)}
}

func incompatible(a, b string) error {
	return &RuleViolationError{Reason: fmt.Sprintf("modifiers %q and %q cannot be combined", a, b)}
}

func groupIncompatible(modifierId, groupCode string) error {
	return &RuleViolationError{Reason: fmt.Sprintf("modifier %q cannot be combined with group %q", modifierId, groupCode)}
}

func duplicateSingleSelect(groupCode string) error {
	return &RuleViolationError{Reason: fmt.Sprintf("group %q allows only a single selection", groupCode)}
}

func missingRequired(groupCode string) error {
	return &RuleViolationError{Reason: fmt.Sprintf("required group %q has no selection", groupCode)}
}

func groupMismatch(modifierId, declared, stored string) error {
	return &RuleViolationError{Reason: fmt.Sprintf("modifier %q's declared group %q does not match stored group %q", modifierId, declared, stored)}
}

// IsRuleViolation reports whether err is a RuleViolationError.
func IsRuleViolation(err error) bool {
	var e *RuleViolationError
	return errors.As(err, &e)
}
